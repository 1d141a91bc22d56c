package parser

import (
	"strconv"
	"strings"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/token"
)

// parseType parses one syntactic type, handling the prefix forms (`&T`,
// `*T`, `[]T`, `[N]T`, `(T1, T2) -> R`) before falling through to a base
// type, then applying any trailing `?` optional markers.
func (p *Parser) parseType() ast.Type {
	var t ast.Type
	switch p.cur.Kind {
	case token.REF:
		pos := p.cur.Pos
		p.advance()
		t = &ast.RefType{Elem: p.parseType(), Pos: pos}
	case token.STAR:
		pos := p.cur.Pos
		p.advance()
		t = &ast.PointerType{Elem: p.parseType(), Pos: pos}
	case token.LBRACKET:
		t = p.parseArrayOrSliceType()
	case token.LPAREN:
		t = p.parseFunctionType()
	default:
		t = p.parseBaseType()
	}
	for p.curIs(token.QUESTION) {
		pos := p.cur.Pos
		p.advance()
		t = &ast.OptionalType{Elem: t, Pos: pos}
	}
	return t
}

func (p *Parser) parseArrayOrSliceType() ast.Type {
	pos := p.cur.Pos
	p.advance() // consume '['
	if p.curIs(token.RBRACKET) {
		p.advance() // consume ']'
		return &ast.SliceType{Elem: p.parseType(), Pos: pos}
	}
	length := p.parseExpression()
	if !p.expect(token.RBRACKET) {
		p.synchronizeOn(map[token.Kind]bool{token.SEMICOLON: true})
		return &ast.ArrayType{Elem: &ast.VoidType{Pos: pos}, Len: length, Pos: pos}
	}
	return &ast.ArrayType{Elem: p.parseType(), Len: length, Pos: pos}
}

func (p *Parser) parseFunctionType() ast.Type {
	pos := p.cur.Pos
	params := parseList(p, token.LPAREN, token.RPAREN, p.parseType)
	if !p.expect(token.ARROW) {
		return &ast.FunctionType{Params: params, Ret: &ast.VoidType{Pos: pos}, Pos: pos}
	}
	ret := p.parseType()
	return &ast.FunctionType{Params: params, Ret: ret, Pos: pos}
}

func (p *Parser) parseBaseType() ast.Type {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case token.VOID:
		p.advance()
		return &ast.VoidType{Pos: pos}
	case token.BOOL:
		p.advance()
		return &ast.BoolType{Pos: pos}
	case token.NUMTYPE:
		lit := p.cur.Literal
		p.advance()
		return parseNumberType(lit, pos)
	case token.IDENT:
		name := p.cur.Literal
		p.advance()
		var typeArgs []ast.Type
		if p.curIs(token.LT) {
			typeArgs = parseList(p, token.LT, token.GT, p.parseType)
		}
		return &ast.NamedType{Name: name, TypeArgs: typeArgs, Pos: pos}
	default:
		p.reportf(errors.PAR009, pos, "expected a type, got %s", p.cur.Kind)
		p.synchronizeOn(map[token.Kind]bool{token.SEMICOLON: true, token.RPAREN: true, token.RBRACE: true})
		return &ast.NamedType{Name: "<error>", Pos: pos}
	}
}

// parseNumberType decodes an `iN`/`uN`/`fN` lexeme, already validated by
// the lexer to be that shape, into its signedness and bit width.
func parseNumberType(lit string, pos token.Pos) *ast.NumberType {
	bits, _ := strconv.Atoi(strings.TrimLeft(lit, "iuf"))
	n := &ast.NumberType{Bits: bits, Pos: pos}
	switch lit[0] {
	case 'i':
		n.Signed = true
	case 'u':
		n.Unsigned = true
	case 'f':
		n.Float = true
	}
	return n
}
