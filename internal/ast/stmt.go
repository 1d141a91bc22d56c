package ast

import (
	"fmt"
	"strings"

	"github.com/dmzlang/dmzc/internal/token"
)

// Block is `{ stmt* }`.
type Block struct {
	Stmts []Stmt
	Pos   token.Pos
}

func (b *Block) Position() token.Pos { return b.Pos }
func (b *Block) String() string      { return fmt.Sprintf("{ %d stmts }", len(b.Stmts)) }
func (b *Block) stmtNode()           {}

// IfStmt is `if (cond) then [else elseBranch]`. Else is nil, a
// *Block, or another *IfStmt (for an `else if` chain).
type IfStmt struct {
	Cond   Expr
	Then   *Block
	Else   Stmt
	Pos    token.Pos
}

func (i *IfStmt) Position() token.Pos { return i.Pos }
func (i *IfStmt) String() string      { return "if (...)" }
func (i *IfStmt) stmtNode()           {}

// WhileStmt is `while (cond) body`.
type WhileStmt struct {
	Cond Expr
	Body *Block
	Pos  token.Pos
}

func (w *WhileStmt) Position() token.Pos { return w.Pos }
func (w *WhileStmt) String() string      { return "while (...)" }
func (w *WhileStmt) stmtNode()           {}

// Capture is one name bound by a `for` loop's capture list.
type Capture struct {
	Name string
	Pos  token.Pos
}

// ForStmt is `for (cap, cap2 in cond, cond2) body`: a capture list
// paired with one-or-more conditions, so several ranges/slices can be
// iterated in lockstep.
type ForStmt struct {
	Captures   []*Capture
	Conditions []Expr // one range/slice expression per capture
	Body       *Block
	Pos        token.Pos
}

func (f *ForStmt) Position() token.Pos { return f.Pos }
func (f *ForStmt) String() string      { return fmt.Sprintf("for (%d captures)", len(f.Captures)) }
func (f *ForStmt) stmtNode()           {}

// CaseClause is one `case value1, value2: body` arm of a switch.
type CaseClause struct {
	Values []Expr
	Body   *Block
	Pos    token.Pos
}

// SwitchStmt is `switch (cond) { case ...: ... else: ... }`. The else
// clause is mandatory.
type SwitchStmt struct {
	Cond  Expr
	Cases []*CaseClause
	Else  *Block
	Pos   token.Pos
}

func (s *SwitchStmt) Position() token.Pos { return s.Pos }
func (s *SwitchStmt) String() string      { return fmt.Sprintf("switch (...) { %d cases }", len(s.Cases)) }
func (s *SwitchStmt) stmtNode()           {}

// ReturnStmt is `return [expr];`.
type ReturnStmt struct {
	Value Expr // nil for a bare `return;`
	Pos   token.Pos
}

func (r *ReturnStmt) Position() token.Pos { return r.Pos }
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", r.Value)
}
func (r *ReturnStmt) stmtNode() {}

// DeclStmt wraps a VarDecl as a statement: `let x: T = e;` / `const ...`.
type DeclStmt struct {
	Decl *VarDecl
	Pos  token.Pos
}

func (d *DeclStmt) Position() token.Pos { return d.Pos }
func (d *DeclStmt) String() string      { return d.Decl.String() + ";" }
func (d *DeclStmt) stmtNode()           {}

// ExprStmt wraps a bare expression used as a statement, e.g. a call
// `foo();` whose result is discarded.
type ExprStmt struct {
	X   Expr
	Pos token.Pos
}

func (e *ExprStmt) Position() token.Pos { return e.Pos }
func (e *ExprStmt) String() string      { return e.X.String() + ";" }
func (e *ExprStmt) stmtNode()           {}

// Assignment is `target = value;` or a compound form `target += value;`.
type Assignment struct {
	Target Expr
	Op     token.Kind // ASSIGN, PLUSEQ, MINUSEQ, STAREQ, SLASHEQ
	Value  Expr
	Pos    token.Pos
}

func (a *Assignment) Position() token.Pos { return a.Pos }
func (a *Assignment) String() string      { return fmt.Sprintf("%s %s %s;", a.Target, a.Op, a.Value) }
func (a *Assignment) stmtNode()           {}

// DeferStmt is `defer { ... };`. The block is parsed under
// ReturnNotAllowed: a deferred block may not itself return.
type DeferStmt struct {
	Body *Block
	Pos  token.Pos
}

func (d *DeferStmt) Position() token.Pos { return d.Pos }
func (d *DeferStmt) String() string      { return "defer { ... }" }
func (d *DeferStmt) stmtNode()           {}

// ErrDeferStmt is `errdefer { ... };`: runs only on an error exit path.
type ErrDeferStmt struct {
	Body *Block
	Pos  token.Pos
}

func (e *ErrDeferStmt) Position() token.Pos { return e.Pos }
func (e *ErrDeferStmt) String() string      { return "errdefer { ... }" }
func (e *ErrDeferStmt) stmtNode()           {}

// FieldInitStmt is one `name: value` (or bare `name`) entry inside a
// struct-instantiation expression's field-init list. It is modeled as
// a Stmt, but it is parsed only by the parser's parseFieldInit inside
// that braced list and only ever appears nested inside a
// StructInstantiationExpr.
type FieldInitStmt struct {
	Name  string
	Value Expr // nil selects DefaultInit: the field is left zero-initialized
	Pos   token.Pos
}

func (f *FieldInitStmt) Position() token.Pos { return f.Pos }
func (f *FieldInitStmt) String() string {
	if f.Value == nil {
		return f.Name
	}
	return fmt.Sprintf("%s: %s", f.Name, f.Value)
}
func (f *FieldInitStmt) stmtNode() {}

func joinStmts(stmts []Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.String()
	}
	return strings.Join(parts, " ")
}
