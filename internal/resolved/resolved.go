// Package resolved defines the typed tree produced by the two-phase
// resolver (internal/sema): a parallel variant tree to internal/ast
// where every expression, statement, and declaration additionally
// carries its types.Type and a back-reference to the internal/ast node
// it was resolved from. Grounded on internal/typedast/typed_ast.go
// (teacher), which wraps every Core node in a Typed* counterpart
// carrying a monomorphic Type and the untyped node it annotates; this
// package follows the same one-struct-per-variant-plus-embedded-base
// shape, adapted from AILANG's Core/ANF intermediate form to dmz's
// direct resolved-AST shape (there is no separate "core" desugaring
// pass here — sema resolves the parsed AST directly).
package resolved

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// Node is implemented by every resolved tree node.
type Node interface {
	Position() token.Pos
}

// Decl is a resolved top-level or nested declaration.
type Decl interface {
	Node
	// SymbolName is the fully-qualified name assigned by the
	// post-order symbol-naming pass (sema.assignSymbolNames):
	// enclosing module identifiers joined with ".", member functions
	// prefixed by their struct's symbol name, `main` renamed to
	// "__builtin_main", specializations suffixed with their concrete
	// type-argument list.
	SymbolName() string
	resolvedDeclNode()
}

// Stmt is a resolved statement.
type Stmt interface {
	Node
	resolvedStmtNode()
}

// Expr is a resolved expression; every Expr carries the types.Type it
// was resolved to.
type Expr interface {
	Node
	ExprType() types.Type
	resolvedExprNode()
}

// declBase is embedded by every Decl variant: the untyped node it was
// resolved from, plus the symbol name assigned after the declaration
// pass completes (empty until then).
type declBase struct {
	Orig   ast.Decl
	Symbol string
	Pos    token.Pos
}

func (d *declBase) Position() token.Pos { return d.Pos }
func (d *declBase) SymbolName() string  { return d.Symbol }

// exprBase is embedded by every Expr variant.
type exprBase struct {
	Orig ast.Expr
	Type types.Type
	Pos  token.Pos
}

func (e *exprBase) Position() token.Pos  { return e.Pos }
func (e *exprBase) ExprType() types.Type { return e.Type }
func (e *exprBase) resolvedExprNode()    {}

// stmtBase is embedded by every Stmt variant.
type stmtBase struct {
	Orig ast.Stmt
	Pos  token.Pos
}

func (s *stmtBase) Position() token.Pos { return s.Pos }
func (s *stmtBase) resolvedStmtNode()   {}
