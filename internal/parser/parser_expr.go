package parser

import (
	"strconv"
	"strings"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/token"
)

// LOWEST is the precedence floor passed to parseExpr by every caller
// that wants a full binary-operator expression.
const LOWEST = 0

// parseExpression is the expression grammar's entry point: a binary
// expression, optionally extended by a trailing `orelse` fallback or a
// `..` range.
func (p *Parser) parseExpression() ast.Expr {
	left := p.parseOrElse()
	if p.curIs(token.DOTDOT) {
		pos := p.cur.Pos
		p.advance()
		right := p.parseOrElse()
		return &ast.RangeExpr{Lo: left, Hi: right, Pos: pos}
	}
	return left
}

// parseOrElse handles `e orelse f`, the lowest-precedence binary-like
// form; `orelse` is a plain identifier lexeme, not a keyword token.
func (p *Parser) parseOrElse() ast.Expr {
	left := p.parseExpr(LOWEST)
	for p.curIs(token.IDENT) && p.cur.Literal == "orelse" {
		pos := p.cur.Pos
		p.advance()
		right := p.parseExpr(LOWEST)
		left = &ast.OrElseExpr{Operand: left, Default: right, Pos: pos}
	}
	return left
}

// parseExpr implements precedence-climbing binary-operator parsing: a
// binary operator at the current position is consumed only while its
// precedence exceeds minPrec, and the recursive call on its right-hand
// side uses its own precedence as the new floor, which yields
// left-associative grouping once control returns to the enclosing
// loop.
func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec := p.cur.Precedence()
		if prec <= minPrec {
			break
		}
		op := p.cur
		p.advance()
		right := p.parseExpr(prec)
		left = &ast.BinaryExpr{Op: op.Kind, LHS: left, RHS: right, Pos: op.Pos}
	}
	return left
}

// parseUnary handles the prefix operators: `-`, `!`, `&` (ref), `*`
// (deref), `catch`, `try`.
func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Kind {
	case token.MINUS, token.BANG:
		op := p.cur
		p.advance()
		return &ast.UnaryExpr{Op: op.Kind, Operand: p.parseUnary(), Pos: op.Pos}
	case token.REF:
		pos := p.cur.Pos
		p.advance()
		return &ast.RefExpr{Operand: p.parseUnary(), Pos: pos}
	case token.STAR:
		pos := p.cur.Pos
		p.advance()
		return &ast.DerefExpr{Operand: p.parseUnary(), Pos: pos}
	case token.CATCH:
		pos := p.cur.Pos
		p.advance()
		return &ast.CatchErrExpr{Operand: p.parseUnary(), Pos: pos}
	case token.TRY:
		pos := p.cur.Pos
		p.advance()
		return &ast.TryErrExpr{Operand: p.parseUnary(), Pos: pos}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles `.field`, `[index]`, `(args)`, and the postfix
// unwrap `!`, chained onto a primary expression.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.DOT:
			pos := p.cur.Pos
			p.advance()
			if !p.curIs(token.IDENT) {
				p.reportf(errors.PAR001, p.cur.Pos, "expected field name after '.', got %s", p.cur.Kind)
				return expr
			}
			field := p.cur.Literal
			p.advance()
			expr = &ast.MemberExpr{Base: expr, Field: field, Pos: pos}
		case token.LBRACKET:
			pos := p.cur.Pos
			p.advance()
			index := p.parseExpression()
			if !p.expect(token.RBRACKET) {
				p.synchronizeOn(map[token.Kind]bool{token.SEMICOLON: true})
			}
			expr = &ast.ArrayAtExpr{Base: expr, Index: index, Pos: pos}
		case token.LPAREN:
			pos := p.cur.Pos
			args := parseList(p, token.LPAREN, token.RPAREN, p.parseExpression)
			expr = &ast.CallExpr{Callee: expr, Args: args, Pos: pos}
		case token.BANG:
			pos := p.cur.Pos
			p.advance()
			expr = &ast.ErrUnwrapExpr{Operand: expr, Pos: pos}
		default:
			return expr
		}
	}
}

// parsePrimary parses a literal, identifier, path, group, or
// aggregate-instantiation expression.
func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.INT:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		p.advance()
		return &ast.IntLiteral{Value: v, Pos: pos}
	case token.FLOAT:
		v, _ := strconv.ParseFloat(p.cur.Literal, 64)
		p.advance()
		return &ast.FloatLiteral{Value: v, Pos: pos}
	case token.CHAR:
		var v rune
		for _, r := range p.cur.Literal {
			v = r
			break
		}
		p.advance()
		return &ast.CharLiteral{Value: v, Pos: pos}
	case token.STRING:
		v := p.cur.Literal
		p.advance()
		return &ast.StringLiteral{Value: v, Pos: pos}
	case token.TRUE:
		p.advance()
		return &ast.BoolLiteral{Value: true, Pos: pos}
	case token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Value: false, Pos: pos}
	case token.AT:
		p.advance()
		if !p.curIs(token.IDENT) {
			p.reportf(errors.PAR001, p.cur.Pos, "expected error name after '@', got %s", p.cur.Kind)
			return &ast.ErrorInPlaceExpr{Pos: pos}
		}
		name := p.cur.Literal
		p.advance()
		return &ast.ErrorInPlaceExpr{Name: name, Pos: pos}
	case token.DOT:
		p.advance()
		if !p.curIs(token.IDENT) {
			p.reportf(errors.PAR001, p.cur.Pos, "expected field name after '.', got %s", p.cur.Kind)
			return &ast.SelfMemberExpr{Pos: pos}
		}
		field := p.cur.Literal
		p.advance()
		return &ast.SelfMemberExpr{Field: field, Pos: pos}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression()
		if !p.expect(token.RPAREN) {
			p.synchronizeOn(map[token.Kind]bool{token.SEMICOLON: true})
		}
		return &ast.GroupExpr{Inner: inner, Pos: pos}
	case token.LBRACE:
		return p.parseArrayInstantiation()
	case token.IDENT:
		switch p.cur.Literal {
		case "null":
			p.advance()
			return &ast.NullLiteral{Pos: pos}
		case "sizeof":
			p.advance()
			if !p.expect(token.LPAREN) {
				p.synchronizeOn(map[token.Kind]bool{token.SEMICOLON: true})
				return &ast.SizeofExpr{Type: &ast.VoidType{Pos: pos}, Pos: pos}
			}
			typ := p.parseType()
			if !p.expect(token.RPAREN) {
				p.synchronizeOn(map[token.Kind]bool{token.SEMICOLON: true})
			}
			return &ast.SizeofExpr{Type: typ, Pos: pos}
		}
		return p.parseIdentOrPath(pos)
	default:
		p.reportf(errors.PAR001, pos, "expected an expression, got %s", p.cur.Kind)
		p.synchronize()
		return &ast.NullLiteral{Pos: pos}
	}
}

// parseIdentOrPath parses a plain identifier, a `::`-separated path, an
// explicit generic call `name<T,...>(args)`, or a struct instantiation
// `Name{ field: value, ... }`, all of which start the same way.
func (p *Parser) parseIdentOrPath(pos token.Pos) ast.Expr {
	path := p.parsePath()
	if len(path) == 1 {
		name := path[0]
		if p.curIs(token.LT) {
			if call, ok := p.tryParseGenericCall(name, pos); ok {
				return call
			}
		}
		if p.curIs(token.LBRACE) && !p.has(StructNotAllowed) {
			return p.parseStructInstantiation(&ast.NamedType{Name: name, Pos: pos})
		}
		return &ast.DeclRefExpr{Name: name, Pos: pos}
	}
	if p.curIs(token.LBRACE) && !p.has(StructNotAllowed) {
		joined := strings.Join(path, "::")
		return p.parseStructInstantiation(&ast.NamedType{Name: joined, Pos: pos})
	}
	return &ast.ImportExpr{Path: path, Pos: pos}
}

// tryParseGenericCall speculatively parses `<Type,...>(args)` following
// a bare name. It rolls back completely (lexer position, tokens, and
// any diagnostics emitted during the attempt) if the type-argument list
// is not immediately followed by `(`, so `a<b>c` is left untouched and
// falls through to ordinary comparison-chain parsing.
func (p *Parser) tryParseGenericCall(name string, pos token.Pos) (*ast.CallExpr, bool) {
	cp := p.mark()
	typeArgs := parseList(p, token.LT, token.GT, p.parseType)
	if !p.curIs(token.LPAREN) {
		p.reset(cp)
		return nil, false
	}
	args := parseList(p, token.LPAREN, token.RPAREN, p.parseExpression)
	return &ast.CallExpr{
		Callee:   &ast.DeclRefExpr{Name: name, Pos: pos},
		TypeArgs: typeArgs,
		Args:     args,
		Pos:      pos,
	}, true
}

func (p *Parser) parseArrayInstantiation() ast.Expr {
	pos := p.cur.Pos
	elems := parseList(p, token.LBRACE, token.RBRACE, p.parseExpression)
	return &ast.ArrayInstantiationExpr{Elements: elems, Pos: pos}
}

func (p *Parser) parseStructInstantiation(name ast.Type) ast.Expr {
	pos := name.Position()
	fields := parseList(p, token.LBRACE, token.RBRACE, p.parseFieldInit)
	return &ast.StructInstantiationExpr{Name: name, Fields: fields, Pos: pos}
}
