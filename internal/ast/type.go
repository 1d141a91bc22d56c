package ast

import (
	"fmt"
	"strings"

	"github.com/dmzlang/dmzc/internal/token"
)

// VoidType is the `void` keyword type.
type VoidType struct{ Pos token.Pos }

func (v *VoidType) Position() token.Pos { return v.Pos }
func (v *VoidType) String() string      { return "void" }
func (v *VoidType) typeNode()           {}

// BoolType is the `bool` keyword type.
type BoolType struct{ Pos token.Pos }

func (b *BoolType) Position() token.Pos { return b.Pos }
func (b *BoolType) String() string      { return "bool" }
func (b *BoolType) typeNode()           {}

// NumberType is one of the `iN`/`uN`/`fN` numeric-type keywords.
type NumberType struct {
	Signed   bool
	Unsigned bool
	Float    bool
	Bits     int
	Pos      token.Pos
}

func (n *NumberType) Position() token.Pos { return n.Pos }
func (n *NumberType) String() string {
	switch {
	case n.Float:
		return fmt.Sprintf("f%d", n.Bits)
	case n.Unsigned:
		return fmt.Sprintf("u%d", n.Bits)
	default:
		return fmt.Sprintf("i%d", n.Bits)
	}
}
func (n *NumberType) typeNode() {}

// NamedType is an identifier in type position: a reference to a struct,
// error-group, module, or generic-type parameter, or (before resolution)
// an unresolved "custom" placeholder.
type NamedType struct {
	Name     string
	TypeArgs []Type // explicit generic arguments, e.g. List<i32>
	Pos      token.Pos
}

func (c *NamedType) Position() token.Pos { return c.Pos }
func (c *NamedType) String() string {
	if len(c.TypeArgs) == 0 {
		return c.Name
	}
	parts := make([]string, len(c.TypeArgs))
	for i, t := range c.TypeArgs {
		parts[i] = t.String()
	}
	return c.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (c *NamedType) typeNode() {}

// SliceType is `[]T`.
type SliceType struct {
	Elem Type
	Pos  token.Pos
}

func (s *SliceType) Position() token.Pos { return s.Pos }
func (s *SliceType) String() string      { return "[]" + s.Elem.String() }
func (s *SliceType) typeNode()           {}

// ArrayType is `[N]T`, where Len is a constant-evaluable expression.
type ArrayType struct {
	Elem Type
	Len  Expr
	Pos  token.Pos
}

func (a *ArrayType) Position() token.Pos { return a.Pos }
func (a *ArrayType) String() string      { return fmt.Sprintf("[%s]%s", a.Len, a.Elem) }
func (a *ArrayType) typeNode()           {}

// PointerType is `*T`.
type PointerType struct {
	Elem Type
	Pos  token.Pos
}

func (p *PointerType) Position() token.Pos { return p.Pos }
func (p *PointerType) String() string      { return "*" + p.Elem.String() }
func (p *PointerType) typeNode()           {}

// RefType is the leading `&T` reference decoration: a type is an
// `&`-prefixed optional reference wrapping a base type.
type RefType struct {
	Elem Type
	Pos  token.Pos
}

func (r *RefType) Position() token.Pos { return r.Pos }
func (r *RefType) String() string      { return "&" + r.Elem.String() }
func (r *RefType) typeNode()           {}

// OptionalType is the trailing `T?` decoration.
type OptionalType struct {
	Elem Type
	Pos  token.Pos
}

func (o *OptionalType) Position() token.Pos { return o.Pos }
func (o *OptionalType) String() string      { return o.Elem.String() + "?" }
func (o *OptionalType) typeNode()           {}

// FunctionType is `(T1, T2) -> R`, used for function-typed parameters
// and variables.
type FunctionType struct {
	Params []Type
	Ret    Type
	Pos    token.Pos
}

func (f *FunctionType) Position() token.Pos { return f.Pos }
func (f *FunctionType) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret)
}
func (f *FunctionType) typeNode() {}
