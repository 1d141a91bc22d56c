package parser

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/token"
)

func (p *Parser) parseBlock() *ast.Block {
	pos := p.cur.Pos
	if !p.expect(token.LBRACE) {
		return &ast.Block{Pos: pos}
	}
	var stmts []ast.Stmt
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
	}
	if !p.expect(token.RBRACE) {
		p.synchronize()
	}
	return &ast.Block{Stmts: stmts, Pos: pos}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.LBRACE:
		return p.parseBlock()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.SWITCH:
		return p.parseSwitchStmt()
	case token.RETURN:
		return p.parseReturnStmt()
	case token.LET, token.CONST:
		return p.parseDeclStmt()
	case token.DEFER:
		return p.parseDeferStmt()
	case token.ERRDEFER:
		return p.parseErrDeferStmt()
	case token.SEMICOLON:
		// a stray ';' is an empty statement; consume and move on rather
		// than reporting an error for it.
		p.advance()
		return nil
	default:
		return p.parseAssignmentOrExprStmt()
	}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	pos := p.cur.Pos
	p.advance() // consume 'if'
	if !p.expect(token.LPAREN) {
		p.synchronize()
	}
	var cond ast.Expr
	p.withRestrictions(StructNotAllowed, func() {
		cond = p.parseExpression()
	})
	if !p.expect(token.RPAREN) {
		p.synchronize()
	}
	then := p.parseBlock()
	var elseStmt ast.Stmt
	if p.curIs(token.ELSE) {
		p.advance()
		if p.curIs(token.IF) {
			elseStmt = p.parseIfStmt()
		} else {
			elseStmt = p.parseBlock()
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: elseStmt, Pos: pos}
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.cur.Pos
	p.advance() // consume 'while'
	if !p.expect(token.LPAREN) {
		p.synchronize()
	}
	var cond ast.Expr
	p.withRestrictions(StructNotAllowed, func() {
		cond = p.parseExpression()
	})
	if !p.expect(token.RPAREN) {
		p.synchronize()
	}
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Pos: pos}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	pos := p.cur.Pos
	p.advance() // consume 'for'
	if !p.expect(token.LPAREN) {
		p.synchronize()
	}
	var captures []*ast.Capture
	var conds []ast.Expr
	p.withRestrictions(StructNotAllowed, func() {
		captures = append(captures, p.parseCapture())
		for p.curIs(token.COMMA) {
			p.advance()
			captures = append(captures, p.parseCapture())
		}
		if p.curIs(token.IDENT) && p.cur.Literal == "in" {
			p.advance()
		} else {
			p.reportf(errors.PAR001, p.cur.Pos, "expected 'in', got %s", p.cur.Kind)
		}
		conds = append(conds, p.parseExpression())
		for p.curIs(token.COMMA) {
			p.advance()
			conds = append(conds, p.parseExpression())
		}
	})
	if !p.expect(token.RPAREN) {
		p.synchronize()
	}
	body := p.parseBlock()
	return &ast.ForStmt{Captures: captures, Conditions: conds, Body: body, Pos: pos}
}

func (p *Parser) parseCapture() *ast.Capture {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR001, pos, "expected a capture name, got %s", p.cur.Kind)
	} else {
		p.advance()
	}
	return &ast.Capture{Name: name, Pos: pos}
}

func (p *Parser) parseSwitchStmt() *ast.SwitchStmt {
	pos := p.cur.Pos
	p.advance() // consume 'switch'
	if !p.expect(token.LPAREN) {
		p.synchronize()
	}
	var cond ast.Expr
	p.withRestrictions(StructNotAllowed, func() {
		cond = p.parseExpression()
	})
	if !p.expect(token.RPAREN) {
		p.synchronize()
	}
	if !p.expect(token.LBRACE) {
		p.synchronize()
	}
	var cases []*ast.CaseClause
	var elseBlock *ast.Block
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		switch p.cur.Kind {
		case token.CASE:
			cases = append(cases, p.parseCaseClause())
		case token.ELSE:
			elsePos := p.cur.Pos
			p.advance()
			if !p.expect(token.COLON) {
				p.synchronize()
			}
			elseBlock = p.parseCaseBody(elsePos)
		default:
			p.reportf(errors.PAR001, p.cur.Pos, "expected 'case' or 'else', got %s", p.cur.Kind)
			p.synchronize()
		}
	}
	if !p.expect(token.RBRACE) {
		p.synchronize()
	}
	if elseBlock == nil {
		p.reportf(errors.PAR001, pos, "switch is missing its mandatory 'else' clause")
		elseBlock = &ast.Block{Pos: pos}
	}
	return &ast.SwitchStmt{Cond: cond, Cases: cases, Else: elseBlock, Pos: pos}
}

func (p *Parser) parseCaseClause() *ast.CaseClause {
	pos := p.cur.Pos
	p.advance() // consume 'case'
	var values []ast.Expr
	values = append(values, p.parseExpression())
	for p.curIs(token.COMMA) {
		p.advance()
		values = append(values, p.parseExpression())
	}
	if !p.expect(token.COLON) {
		p.synchronize()
	}
	body := p.parseCaseBody(pos)
	return &ast.CaseClause{Values: values, Body: body, Pos: pos}
}

// parseCaseBody collects statements up to the next case/else/closing
// brace; a switch arm has no block delimiters of its own.
func (p *Parser) parseCaseBody(pos token.Pos) *ast.Block {
	var stmts []ast.Stmt
	for !p.curIs(token.CASE) && !p.curIs(token.ELSE) && !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if s := p.parseStmt(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return &ast.Block{Stmts: stmts, Pos: pos}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.cur.Pos
	if p.has(ReturnNotAllowed) {
		p.reportf(errors.PAR011, pos, "return is not allowed inside a deferred block")
	}
	p.advance() // consume 'return'
	var value ast.Expr
	if !p.curIs(token.SEMICOLON) {
		value = p.parseExpression()
	}
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return &ast.ReturnStmt{Value: value, Pos: pos}
}

func (p *Parser) parseDeclStmt() *ast.DeclStmt {
	pos := p.cur.Pos
	decl := p.parseVarDecl()
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return &ast.DeclStmt{Decl: decl, Pos: pos}
}

func (p *Parser) parseDeferStmt() *ast.DeferStmt {
	pos := p.cur.Pos
	p.advance() // consume 'defer'
	var body *ast.Block
	p.withRestrictions(ReturnNotAllowed, func() {
		body = p.parseBlock()
	})
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return &ast.DeferStmt{Body: body, Pos: pos}
}

func (p *Parser) parseErrDeferStmt() *ast.ErrDeferStmt {
	pos := p.cur.Pos
	p.advance() // consume 'errdefer'
	var body *ast.Block
	p.withRestrictions(ReturnNotAllowed, func() {
		body = p.parseBlock()
	})
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return &ast.ErrDeferStmt{Body: body, Pos: pos}
}

// parseAssignmentOrExprStmt parses an expression, then checks whether it
// is immediately followed by an assignment operator; if not, the
// expression is wrapped as a statement on its own (e.g. a bare call).
func (p *Parser) parseAssignmentOrExprStmt() ast.Stmt {
	pos := p.cur.Pos
	target := p.parseExpression()
	switch p.cur.Kind {
	case token.ASSIGN, token.PLUSEQ, token.MINUSEQ, token.STAREQ, token.SLASHEQ:
		op := p.cur.Kind
		p.advance()
		value := p.parseExpression()
		if !p.expect(token.SEMICOLON) {
			p.synchronize()
		}
		return &ast.Assignment{Target: target, Op: op, Value: value, Pos: pos}
	default:
		if !p.expect(token.SEMICOLON) {
			p.synchronize()
		}
		return &ast.ExprStmt{X: target, Pos: pos}
	}
}

// parseFieldInit parses one `name` or `name: value` entry of a struct
// instantiation's field list.
func (p *Parser) parseFieldInit() *ast.FieldInitStmt {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR001, pos, "expected a field name, got %s", p.cur.Kind)
	} else {
		p.advance()
	}
	if p.curIs(token.COLON) {
		p.advance()
		value := p.parseExpression()
		return &ast.FieldInitStmt{Name: name, Value: value, Pos: pos}
	}
	return &ast.FieldInitStmt{Name: name, Pos: pos}
}
