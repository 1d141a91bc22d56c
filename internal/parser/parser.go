// Package parser implements a recursive-descent parser with
// precedence-climbing expression parsing, restriction-flag gated
// primary parsing, and synchronized panic-mode error recovery.
package parser

import (
	"fmt"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/lexer"
	"github.com/dmzlang/dmzc/internal/token"
)

// Restriction is a bitmask that modulates primary-expression parsing.
type Restriction uint8

const (
	// StructNotAllowed forbids `ident { ... }` from being parsed as a
	// struct instantiation; active inside if/while/switch/for conditions
	// so that `{` there is unambiguously a block opener.
	StructNotAllowed Restriction = 1 << iota
	// ReturnNotAllowed forbids a `return` statement; active inside a
	// defer/errdefer body.
	ReturnNotAllowed
)

// Parser turns a token stream into an untyped AST.
//
// Convention: p.cur is always the next unconsumed token — every parse
// function starts by examining p.cur and returns with p.cur already
// positioned on the first token it did not consume. p.peek gives one
// token of extra lookahead for decisions that must not consume
// anything yet (e.g. "is this `<` a comparison or a generic call?").
// lex is held by value (it carries no pointers or slices, only a
// string and scanner offsets) so a Parser can snapshot and restore its
// entire lexical position cheaply for speculative parses.
type Parser struct {
	lex lexer.Lexer

	cur, peek token.Token

	restrictions Restriction

	errs          []*errors.Report
	incompleteAST bool
	hasMain       bool

	file string
}

// New creates a Parser reading from lex.
func New(lex *lexer.Lexer, filename string) *Parser {
	p := &Parser{lex: *lex, file: filename}
	p.advance()
	p.advance()
	return p
}

// Errors returns every diagnostic collected during parsing.
func (p *Parser) Errors() []*errors.Report { return p.errs }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) curIs(k token.Kind) bool  { return p.cur.Kind == k }
func (p *Parser) peekIs(k token.Kind) bool { return p.peek.Kind == k }

// expect requires p.cur to be k; if so it consumes it (advancing cur to
// the following token) and returns true. Otherwise it reports PAR001 at
// p.cur and returns false, leaving the cursor unchanged so the caller
// can decide how to recover.
func (p *Parser) expect(k token.Kind) bool {
	if p.curIs(k) {
		p.advance()
		return true
	}
	p.reportf(errors.PAR001, p.cur.Pos, "expected %s, got %s", k, p.cur.Kind)
	return false
}

func (p *Parser) reportf(code string, pos token.Pos, format string, args ...any) {
	rep := errors.New(code, errors.Phase(code), pos, fmt.Sprintf(format, args...))
	p.errs = append(p.errs, rep)
	p.incompleteAST = true
}

// withRestrictions pushes add into the restriction mask for the
// duration of fn, then restores the previous mask.
func (p *Parser) withRestrictions(add Restriction, fn func()) {
	prev := p.restrictions
	p.restrictions |= add
	fn()
	p.restrictions = prev
}

func (p *Parser) has(r Restriction) bool { return p.restrictions&r != 0 }

// checkpoint is a saved lexical/token position, used to backtrack out of
// a speculative parse that turned out not to match (e.g. an attempted
// `ident<Type,...>(` generic-call prefix that was actually a
// comparison chain).
type checkpoint struct {
	lex           lexer.Lexer
	cur           token.Token
	peek          token.Token
	errN          int
	incompleteAST bool
}

func (p *Parser) mark() checkpoint {
	return checkpoint{lex: p.lex, cur: p.cur, peek: p.peek, errN: len(p.errs), incompleteAST: p.incompleteAST}
}

func (p *Parser) reset(c checkpoint) {
	p.lex = c.lex
	p.cur = c.cur
	p.peek = c.peek
	p.errs = p.errs[:c.errN]
	p.incompleteAST = c.incompleteAST
}

// synchronize consumes tokens until a statement boundary: a balancing
// `}` or a `;`, so the next top-level parse attempt starts clean.
func (p *Parser) synchronize() {
	p.synchronizeOn(nil)
}

// synchronizeOn consumes tokens until a balanced `}`, a `;`, EOF, or a
// token kind in stop.
func (p *Parser) synchronizeOn(stop map[token.Kind]bool) {
	depth := 0
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) && depth == 0 {
			p.advance()
			return
		}
		if p.curIs(token.LBRACE) {
			depth++
		}
		if p.curIs(token.RBRACE) {
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				return
			}
		}
		if stop != nil && depth == 0 && stop[p.cur.Kind] {
			return
		}
		p.advance()
	}
}

// ParseFile parses one source file into an *ast.File. It does not
// require a `main` declaration; it only records whether the file has
// one in File.HasMain, and no later pass reads that flag, so a missing
// or duplicated `main` is not reported.
func ParseFile(src []byte, filename string) (*ast.File, []*errors.Report) {
	lx := lexer.New(lexer.Normalize(src), filename)
	p := New(lx, filename)
	file := p.parseFile()
	return file, p.errs
}

func (p *Parser) parseFile() *ast.File {
	file := &ast.File{Path: p.file, Pos: p.cur.Pos}

	for !p.curIs(token.EOF) {
		switch {
		case p.curIs(token.MODULE):
			if file.Module != nil {
				p.reportf(errors.MOD002, p.cur.Pos, "multiple module declarations in one file")
			}
			file.Module = p.parseModuleDecl()
		case p.curIs(token.IMPORT):
			file.Imports = append(file.Imports, p.parseImportDecl())
		default:
			if d := p.parseTopLevelDecl(); d != nil {
				file.Decls = append(file.Decls, d)
				if fn, ok := d.(*ast.FuncDecl); ok && fn.Name == "main" && !fn.IsMemberFunction() {
					p.hasMain = true
				}
			}
		}
	}
	file.HasMain = p.hasMain
	return file
}

func (p *Parser) parseTopLevelDecl() ast.Decl {
	switch p.cur.Kind {
	case token.FN, token.EXTERN:
		return p.parseFuncDecl()
	case token.STRUCT:
		return p.parseStructDecl()
	case token.ERR:
		return p.parseErrGroupDecl()
	case token.PUB:
		return p.parsePubDecl()
	case token.LET, token.CONST:
		return p.parseTopLevelVarDecl()
	default:
		if p.cur.Kind == token.IDENT && p.cur.Literal == "test" {
			return p.parseTestDecl()
		}
		p.reportf(errors.PAR001, p.cur.Pos, "expected a declaration, got %s", p.cur.Kind)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parsePubDecl() ast.Decl {
	pubPos := p.cur.Pos
	p.advance() // consume 'pub'
	switch p.cur.Kind {
	case token.FN, token.EXTERN:
		d := p.parseFuncDecl()
		if fn, ok := d.(*ast.FuncDecl); ok {
			fn.IsPub = true
		}
		return d
	case token.STRUCT:
		d := p.parseStructDecl()
		if s, ok := d.(*ast.StructDecl); ok {
			s.IsPub = true
		}
		return d
	default:
		p.reportf(errors.PAR001, pubPos, "expected fn or struct after pub, got %s", p.cur.Kind)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	pos := p.cur.Pos
	p.advance() // consume 'module'
	path := p.parsePath()
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return &ast.ModuleDecl{Path: path, Pos: pos}
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	pos := p.cur.Pos
	p.advance() // consume 'import'
	path := p.parsePath()
	alias := ""
	if p.curIs(token.AS) {
		p.advance() // cur == alias identifier (hopefully)
		if p.curIs(token.IDENT) {
			alias = p.cur.Literal
			p.advance()
		} else {
			p.reportf(errors.PAR001, p.cur.Pos, "expected identifier after 'as', got %s", p.cur.Kind)
		}
	}
	if !p.expect(token.SEMICOLON) {
		p.synchronize()
	}
	return &ast.ImportDecl{Path: path, Alias: alias, Pos: pos}
}

// parsePath parses `ident (:: ident)*`. p.cur must already be on the
// first identifier on entry; on return p.cur is positioned on the
// token following the last path identifier.
func (p *Parser) parsePath() []string {
	var path []string
	if !p.curIs(token.IDENT) {
		p.reportf(errors.PAR001, p.cur.Pos, "expected module path identifier, got %s", p.cur.Kind)
		return path
	}
	path = append(path, p.cur.Literal)
	p.advance()
	for p.curIs(token.DCOLON) {
		p.advance() // cur == identifier after '::'
		if !p.curIs(token.IDENT) {
			p.reportf(errors.PAR001, p.cur.Pos, "expected identifier after '::', got %s", p.cur.Kind)
			break
		}
		path = append(path, p.cur.Literal)
		p.advance()
	}
	return path
}

// parseList parses `open (item (',' item)* ','?)? close` generically,
// reused for every comma-delimited bracketed list in the grammar. p.cur
// must be positioned on open on entry; item must leave p.cur positioned
// on the token following whatever it consumed. On return p.cur is
// positioned on the token following close (or wherever synchronization
// landed, on error).
func parseList[T any](p *Parser, open, close token.Kind, item func() T) []T {
	var items []T
	if !p.expect(open) {
		return items
	}
	if p.curIs(close) {
		p.advance()
		return items
	}
	for {
		items = append(items, item())
		if !p.curIs(token.COMMA) {
			break
		}
		p.advance() // cur == token after comma
		if p.curIs(close) {
			break // trailing comma
		}
	}
	if !p.expect(close) {
		p.synchronizeOn(map[token.Kind]bool{close: true})
	}
	return items
}
