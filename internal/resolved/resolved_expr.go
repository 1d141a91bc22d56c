package resolved

import (
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// IntLiteral is a resolved integer literal; Type is always
// types.Number{i32}. The enclosing context does not change the
// literal's width or signedness.
type IntLiteral struct {
	exprBase
	Value int64
}

// FloatLiteral is a resolved floating-point literal.
type FloatLiteral struct {
	exprBase
	Value float64
}

// CharLiteral is a resolved character literal (always types.Number{u8}).
type CharLiteral struct {
	exprBase
	Value rune
}

// BoolLiteral is a resolved boolean literal.
type BoolLiteral struct {
	exprBase
	Value bool
}

// StringLiteral is a resolved string literal (always types.Slice{u8}).
type StringLiteral struct {
	exprBase
	Value string
}

// NullLiteral is a resolved `null`, typed Optional{Void} whatever
// Optional the context expects. The node is also the value of an
// omitted struct field (typed DefaultInit) and the stand-in for an
// expression that could not be resolved (typed Void).
type NullLiteral struct {
	exprBase
}

// DeclRef is a resolved reference to a variable, parameter, or
// function found through the lexical scope stack or the enclosing
// module.
type DeclRef struct {
	exprBase
	Name string
	Decl Decl
}

// MemberExpr is a resolved `base.field`, either a struct field read or
// a bound member-function reference (Decl is the FieldDecl or
// FuncDecl found on base's struct, or the public decl found on a
// module base).
type MemberExpr struct {
	exprBase
	Base  Expr
	Field string
	Decl  Node
}

// SelfMemberExpr is a resolved `.field` inside a member function,
// desugared to member access on Self (the implicit first parameter).
type SelfMemberExpr struct {
	exprBase
	Field string
	Self  *ParamDecl
	Decl  Node
}

// ArrayAtExpr is a resolved `base[index]`.
type ArrayAtExpr struct {
	exprBase
	Base  Expr
	Index Expr
}

// ArrayInstantiationExpr is a resolved `{e1, e2, ...}` array literal.
type ArrayInstantiationExpr struct {
	exprBase
	Elements []Expr
}

// FieldInit is one resolved `name: value` (or `name` shorthand) entry
// of a struct instantiation.
type FieldInit struct {
	Name  string
	Value Expr
	Field *FieldDecl
}

// StructInstantiationExpr is a resolved `Name{ field: value, ... }`.
// Fields omitted from the source literal are filled from the struct's
// zero-value convention during lowering, not recorded here.
type StructInstantiationExpr struct {
	exprBase
	Decl   *StructDecl
	Fields []*FieldInit
}

// UnaryExpr is a resolved prefix `-`/`!`.
type UnaryExpr struct {
	exprBase
	Op      token.Kind
	Operand Expr
}

// BinaryExpr is a resolved binary operator expression.
type BinaryExpr struct {
	exprBase
	Op  token.Kind
	LHS Expr
	RHS Expr
}

// RefExpr is a resolved `&operand`.
type RefExpr struct {
	exprBase
	Operand Expr
}

// DerefExpr is a resolved `*operand`.
type DerefExpr struct {
	exprBase
	Operand Expr
}

// CallExpr is a resolved function call. Generic type arguments come
// only from an explicit `<T,...>` list; none are inferred from the
// call's arguments. If Callee's declaration is
// generic, Specialization names the concrete instantiation lowering
// should call.
type CallExpr struct {
	exprBase
	Callee         Expr
	Args           []Expr
	TypeArgs       []types.Type // resolved explicit `<T,...>` arguments, if any
	Specialization string
}

// SizeofExpr is a resolved `sizeof(Type)`, foldable to an IntLiteral
// by internal/consteval once layout sizes are known.
type SizeofExpr struct {
	exprBase
	Of types.Type
}

// RangeExpr is a resolved `lo..hi`, valid only as a `for` condition.
type RangeExpr struct {
	exprBase
	Lo Expr
	Hi Expr
}

// ErrorInPlaceExpr is a resolved `@Name` error literal; Decl is the
// ErrDecl it names once narrowed to a concrete error-group by context,
// or nil if it stands for the generic types.Error.
type ErrorInPlaceExpr struct {
	exprBase
	Name string
	Decl *ErrDecl
}

// CatchErrExpr is a resolved `catch operand`: evaluates operand
// (an Optional), yielding its Error if present and its inner value's
// zero value otherwise is not applicable — `catch` is only valid where
// the enclosing statement context discards a failed evaluation; see
// CFG handling for its control-flow edge.
type CatchErrExpr struct {
	exprBase
	Operand Expr
}

// TryErrExpr is a resolved `try operand`: unwraps an Optional,
// propagating its Error through the enclosing function's own Optional
// return immediately on failure.
type TryErrExpr struct {
	exprBase
	Operand Expr
}

// ErrUnwrapExpr is a resolved postfix `operand!`: asserts operand (an
// Optional) is present, trapping at runtime if it is not.
type ErrUnwrapExpr struct {
	exprBase
	Operand Expr
}

// OrElseExpr is a resolved `operand orelse fallback`.
type OrElseExpr struct {
	exprBase
	Operand  Expr
	Fallback Expr
}

// ModuleRefExpr is a resolved `A::B::C` path used as a value-position
// expression (the base of a further `.member` access, or naming an
// imported module directly).
type ModuleRefExpr struct {
	exprBase
	Path []string
	Decl *ModuleDecl
}
