package ast

import (
	"fmt"
	"strings"

	"github.com/dmzlang/dmzc/internal/token"
)

// IntLiteral is an integer literal.
type IntLiteral struct {
	Value int64
	Pos   token.Pos
}

func (l *IntLiteral) Position() token.Pos { return l.Pos }
func (l *IntLiteral) String() string      { return fmt.Sprintf("%d", l.Value) }
func (l *IntLiteral) exprNode()           {}

// FloatLiteral is a floating-point literal.
type FloatLiteral struct {
	Value float64
	Pos   token.Pos
}

func (l *FloatLiteral) Position() token.Pos { return l.Pos }
func (l *FloatLiteral) String() string      { return fmt.Sprintf("%g", l.Value) }
func (l *FloatLiteral) exprNode()           {}

// CharLiteral is a character literal.
type CharLiteral struct {
	Value rune
	Pos   token.Pos
}

func (l *CharLiteral) Position() token.Pos { return l.Pos }
func (l *CharLiteral) String() string      { return fmt.Sprintf("'%c'", l.Value) }
func (l *CharLiteral) exprNode()           {}

// BoolLiteral is `true` or `false`.
type BoolLiteral struct {
	Value bool
	Pos   token.Pos
}

func (l *BoolLiteral) Position() token.Pos { return l.Pos }
func (l *BoolLiteral) String() string      { return fmt.Sprintf("%t", l.Value) }
func (l *BoolLiteral) exprNode()           {}

// StringLiteral is a string literal.
type StringLiteral struct {
	Value string
	Pos   token.Pos
}

func (l *StringLiteral) Position() token.Pos { return l.Pos }
func (l *StringLiteral) String() string      { return fmt.Sprintf("%q", l.Value) }
func (l *StringLiteral) exprNode()           {}

// NullLiteral is the `null` literal used to build an absent Optional.
type NullLiteral struct {
	Pos token.Pos
}

func (l *NullLiteral) Position() token.Pos { return l.Pos }
func (l *NullLiteral) String() string      { return "null" }
func (l *NullLiteral) exprNode()           {}

// DeclRefExpr is a bare identifier reference.
type DeclRefExpr struct {
	Name string
	Pos  token.Pos
}

func (d *DeclRefExpr) Position() token.Pos { return d.Pos }
func (d *DeclRefExpr) String() string      { return d.Name }
func (d *DeclRefExpr) exprNode()           {}

// MemberExpr is `base.field`.
type MemberExpr struct {
	Base  Expr
	Field string
	Pos   token.Pos
}

func (m *MemberExpr) Position() token.Pos { return m.Pos }
func (m *MemberExpr) String() string      { return fmt.Sprintf("%s.%s", m.Base, m.Field) }
func (m *MemberExpr) exprNode()           {}

// SelfMemberExpr is `.field`, valid only inside a member function body;
// it desugars during resolution to member access on the implicit first
// parameter.
type SelfMemberExpr struct {
	Field string
	Pos   token.Pos
}

func (s *SelfMemberExpr) Position() token.Pos { return s.Pos }
func (s *SelfMemberExpr) String() string      { return "." + s.Field }
func (s *SelfMemberExpr) exprNode()           {}

// ArrayAtExpr is `base[index]`.
type ArrayAtExpr struct {
	Base  Expr
	Index Expr
	Pos   token.Pos
}

func (a *ArrayAtExpr) Position() token.Pos { return a.Pos }
func (a *ArrayAtExpr) String() string      { return fmt.Sprintf("%s[%s]", a.Base, a.Index) }
func (a *ArrayAtExpr) exprNode()           {}

// ArrayInstantiationExpr is `{e1, e2, ...}` in array-literal position.
type ArrayInstantiationExpr struct {
	Elements []Expr
	Pos      token.Pos
}

func (a *ArrayInstantiationExpr) Position() token.Pos { return a.Pos }
func (a *ArrayInstantiationExpr) String() string {
	parts := make([]string, len(a.Elements))
	for i, e := range a.Elements {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (a *ArrayInstantiationExpr) exprNode() {}

// StructInstantiationExpr is `Name{field: value, ...}`.
type StructInstantiationExpr struct {
	Name   Type
	Fields []*FieldInitStmt
	Pos    token.Pos
}

func (s *StructInstantiationExpr) Position() token.Pos { return s.Pos }
func (s *StructInstantiationExpr) String() string {
	return fmt.Sprintf("%s{ %d fields }", s.Name, len(s.Fields))
}
func (s *StructInstantiationExpr) exprNode() {}

// GroupExpr is a parenthesized expression `(e)`.
type GroupExpr struct {
	Inner Expr
	Pos   token.Pos
}

func (g *GroupExpr) Position() token.Pos { return g.Pos }
func (g *GroupExpr) String() string      { return fmt.Sprintf("(%s)", g.Inner) }
func (g *GroupExpr) exprNode()           {}

// UnaryExpr is a prefix unary operator: `- ! & *` applied to Operand.
// Op REF / STAR are handled by the dedicated RefExpr/DerefExpr nodes;
// UnaryExpr only ever carries MINUS or BANG.
type UnaryExpr struct {
	Op      token.Kind
	Operand Expr
	Pos     token.Pos
}

func (u *UnaryExpr) Position() token.Pos { return u.Pos }
func (u *UnaryExpr) String() string      { return fmt.Sprintf("%s%s", u.Op, u.Operand) }
func (u *UnaryExpr) exprNode()           {}

// BinaryExpr is `lhs op rhs`.
type BinaryExpr struct {
	Op  token.Kind
	LHS Expr
	RHS Expr
	Pos token.Pos
}

func (b *BinaryExpr) Position() token.Pos { return b.Pos }
func (b *BinaryExpr) String() string      { return fmt.Sprintf("(%s %s %s)", b.LHS, b.Op, b.RHS) }
func (b *BinaryExpr) exprNode()           {}

// RefExpr is `&operand`, taking a reference/pointer.
type RefExpr struct {
	Operand Expr
	Pos     token.Pos
}

func (r *RefExpr) Position() token.Pos { return r.Pos }
func (r *RefExpr) String() string      { return "&" + r.Operand.String() }
func (r *RefExpr) exprNode()           {}

// DerefExpr is `*operand`, dereferencing a pointer.
type DerefExpr struct {
	Operand Expr
	Pos     token.Pos
}

func (d *DerefExpr) Position() token.Pos { return d.Pos }
func (d *DerefExpr) String() string      { return "*" + d.Operand.String() }
func (d *DerefExpr) exprNode()           {}

// CallExpr is `callee<TypeArgs...>(args...)`.
type CallExpr struct {
	Callee   Expr
	TypeArgs []Type // empty unless the call supplies explicit generic args
	Args     []Expr
	Pos      token.Pos
}

func (c *CallExpr) Position() token.Pos { return c.Pos }
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee, strings.Join(parts, ", "))
}
func (c *CallExpr) exprNode() {}

// SizeofExpr is `sizeof(Type)`.
type SizeofExpr struct {
	Type Type
	Pos  token.Pos
}

func (s *SizeofExpr) Position() token.Pos { return s.Pos }
func (s *SizeofExpr) String() string      { return fmt.Sprintf("sizeof(%s)", s.Type) }
func (s *SizeofExpr) exprNode()           {}

// RangeExpr is `lo..hi`, used both as a for-loop condition and (when
// applied via ArrayAtExpr-like slicing syntax) to build a slice.
type RangeExpr struct {
	Lo  Expr
	Hi  Expr
	Pos token.Pos
}

func (r *RangeExpr) Position() token.Pos { return r.Pos }
func (r *RangeExpr) String() string      { return fmt.Sprintf("%s..%s", r.Lo, r.Hi) }
func (r *RangeExpr) exprNode()           {}

// ErrorInPlaceExpr is an interned error-tag literal `@Name`.
type ErrorInPlaceExpr struct {
	Name string
	Pos  token.Pos
}

func (e *ErrorInPlaceExpr) Position() token.Pos { return e.Pos }
func (e *ErrorInPlaceExpr) String() string      { return "@" + e.Name }
func (e *ErrorInPlaceExpr) exprNode()           {}

// CatchErrExpr is `catch e`: evaluates to e's error slot.
type CatchErrExpr struct {
	Operand Expr
	Pos     token.Pos
}

func (c *CatchErrExpr) Position() token.Pos { return c.Pos }
func (c *CatchErrExpr) String() string      { return "catch " + c.Operand.String() }
func (c *CatchErrExpr) exprNode()           {}

// TryErrExpr is `try e`: propagates e's error to the caller.
type TryErrExpr struct {
	Operand Expr
	Pos     token.Pos
}

func (t *TryErrExpr) Position() token.Pos { return t.Pos }
func (t *TryErrExpr) String() string      { return "try " + t.Operand.String() }
func (t *TryErrExpr) exprNode()           {}

// ErrUnwrapExpr is the postfix `e!` unwrap, equivalent to `try e` used
// in postfix position.
type ErrUnwrapExpr struct {
	Operand Expr
	Pos     token.Pos
}

func (e *ErrUnwrapExpr) Position() token.Pos { return e.Pos }
func (e *ErrUnwrapExpr) String() string      { return e.Operand.String() + "!" }
func (e *ErrUnwrapExpr) exprNode()           {}

// OrElseExpr is `e orelse f`.
type OrElseExpr struct {
	Operand Expr
	Default Expr
	Pos     token.Pos
}

func (o *OrElseExpr) Position() token.Pos { return o.Pos }
func (o *OrElseExpr) String() string      { return fmt.Sprintf("%s orelse %s", o.Operand, o.Default) }
func (o *OrElseExpr) exprNode()           {}

// ImportExpr is a bare module-path expression `A::B::C` used as the
// base of a MemberExpr when the module is referenced by its full path
// rather than through a bound import alias.
type ImportExpr struct {
	Path []string
	Pos  token.Pos
}

func (i *ImportExpr) Position() token.Pos { return i.Pos }
func (i *ImportExpr) String() string      { return strings.Join(i.Path, "::") }
func (i *ImportExpr) exprNode()           {}
