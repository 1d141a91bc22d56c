package parser

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/token"
)

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	pos := p.cur.Pos
	isExtern := p.curIs(token.EXTERN)
	if isExtern {
		p.advance() // consume 'extern'
	}
	if !p.expect(token.FN) {
		p.synchronize()
		return &ast.FuncDecl{Pos: pos, IsExtern: isExtern, ReturnType: &ast.VoidType{Pos: pos}}
	}
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR003, p.cur.Pos, "expected a function name, got %s", p.cur.Kind)
	}
	name := p.cur.Literal
	if p.curIs(token.IDENT) {
		p.advance()
	}
	owner := ""
	if p.curIs(token.DOT) {
		p.advance()
		if !p.curIs(token.IDENT) {
			p.reportf(errors.PAR003, p.cur.Pos, "expected a struct name after '.', got %s", p.cur.Kind)
		} else {
			owner = p.cur.Literal
			p.advance()
		}
	}
	var typeParams []*ast.GenericParam
	if p.curIs(token.LT) {
		typeParams = parseList(p, token.LT, token.GT, p.parseGenericParam)
	}
	params := parseList(p, token.LPAREN, token.RPAREN, p.parseParamDecl)
	var ret ast.Type = &ast.VoidType{Pos: p.cur.Pos}
	if p.curIs(token.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	fn := &ast.FuncDecl{
		Name:        name,
		StructOwner: owner,
		TypeParams:  typeParams,
		Params:      params,
		ReturnType:  ret,
		IsExtern:    isExtern,
		Pos:         pos,
	}
	if isExtern {
		if !p.expect(token.SEMICOLON) {
			p.synchronize()
		}
		return fn
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseGenericParam() *ast.GenericParam {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR001, pos, "expected a type-parameter name, got %s", p.cur.Kind)
	} else {
		p.advance()
	}
	return &ast.GenericParam{Name: name, Pos: pos}
}

func (p *Parser) parseParamDecl() *ast.ParamDecl {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR003, pos, "expected a parameter name, got %s", p.cur.Kind)
	} else {
		p.advance()
	}
	if !p.expect(token.COLON) {
		return &ast.ParamDecl{Name: name, Type: &ast.VoidType{Pos: pos}, Pos: pos}
	}
	return &ast.ParamDecl{Name: name, Type: p.parseType(), Pos: pos}
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	pos := p.cur.Pos
	p.advance() // consume 'struct'
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR006, p.cur.Pos, "expected a struct name, got %s", p.cur.Kind)
	}
	name := p.cur.Literal
	if p.curIs(token.IDENT) {
		p.advance()
	}
	var typeParams []*ast.GenericParam
	if p.curIs(token.LT) {
		typeParams = parseList(p, token.LT, token.GT, p.parseGenericParam)
	}
	fields := parseList(p, token.LBRACE, token.RBRACE, p.parseFieldDecl)
	return &ast.StructDecl{Name: name, TypeParams: typeParams, Fields: fields, Pos: pos}
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR006, pos, "expected a field name, got %s", p.cur.Kind)
	} else {
		p.advance()
	}
	if !p.expect(token.COLON) {
		return &ast.FieldDecl{Name: name, Type: &ast.VoidType{Pos: pos}, Pos: pos}
	}
	return &ast.FieldDecl{Name: name, Type: p.parseType(), Pos: pos}
}

func (p *Parser) parseErrGroupDecl() *ast.ErrGroupDecl {
	pos := p.cur.Pos
	p.advance() // consume 'err'
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR007, p.cur.Pos, "expected an error-group name, got %s", p.cur.Kind)
	}
	name := p.cur.Literal
	if p.curIs(token.IDENT) {
		p.advance()
	}
	errDecls := parseList(p, token.LBRACE, token.RBRACE, p.parseErrDecl)
	return &ast.ErrGroupDecl{Name: name, Errors: errDecls, Pos: pos}
}

func (p *Parser) parseErrDecl() *ast.ErrDecl {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR007, pos, "expected an error constant name, got %s", p.cur.Kind)
	} else {
		p.advance()
	}
	return &ast.ErrDecl{Name: name, Pos: pos}
}

// parseTestDecl parses `test "name" { ... }`. "test" is recognized as a
// plain identifier lexeme by parseTopLevelDecl's lookahead, not a
// keyword token.
func (p *Parser) parseTestDecl() *ast.TestDecl {
	pos := p.cur.Pos
	p.advance() // consume 'test'
	name := ""
	if p.curIs(token.STRING) {
		name = p.cur.Literal
		p.advance()
	} else {
		p.reportf(errors.PAR008, p.cur.Pos, "expected a test name string, got %s", p.cur.Kind)
	}
	return &ast.TestDecl{Name: name, Body: p.parseBlock(), Pos: pos}
}

func (p *Parser) parseTopLevelVarDecl() ast.Decl {
	decl := p.parseVarDecl()
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return decl
}

// parseVarDecl parses the declaration half of `let`/`const`, shared by
// top-level variable declarations and in-body declaration statements.
func (p *Parser) parseVarDecl() *ast.VarDecl {
	pos := p.cur.Pos
	isConst := p.curIs(token.CONST)
	p.advance() // consume 'let'/'const'
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR001, p.cur.Pos, "expected a variable name, got %s", p.cur.Kind)
	}
	name := p.cur.Literal
	if p.curIs(token.IDENT) {
		p.advance()
	}
	var typ ast.Type
	if p.curIs(token.COLON) {
		p.advance()
		typ = p.parseType()
	}
	var init ast.Expr
	if p.curIs(token.ASSIGN) {
		p.advance()
		init = p.parseExpression()
	}
	return &ast.VarDecl{Name: name, Type: typ, Init: init, IsConst: isConst, Pos: pos}
}
