// Package types defines the resolved type system: a closed family of
// types assigned to every resolved declaration and expression by the
// two-phase resolver (internal/sema). Unlike the teacher's
// Hindley-Milner lattice (internal/types in the teacher repo, with type
// variables, unification, and substitution-driven inference), this
// family is closed and nominal/numeric: every type is one of a fixed
// set of variants, and "inference" here is resolution against an
// already fully-typed declaration, not constraint solving.
package types

import (
	"fmt"
	"strings"
)

// Type is implemented by every resolved type variant. Equals is
// structural for every variant except Struct/Module/ErrorGroup, which
// compare by declaration identity (see each type's Equals).
type Type interface {
	String() string
	Equals(Type) bool
	// Substitute replaces every Generic{decl} leaf whose declaration
	// name is a key of subs with the corresponding concrete type. Used
	// by the on-demand monomorphizer to turn a generic declaration's
	// parameter types into one specialization's concrete types.
	Substitute(subs map[string]Type) Type
}

// Void is the absence of a value, used for functions with no return
// expression and for statements.
type Void struct{}

func (Void) String() string             { return "void" }
func (Void) Equals(o Type) bool          { _, ok := o.(Void); return ok }
func (t Void) Substitute(map[string]Type) Type { return t }

// NumberKind distinguishes the three numeric families; bit width is
// carried separately so e.g. i8/i16/i32/i64 all share Kind Signed.
type NumberKind uint8

const (
	Signed NumberKind = iota
	Unsigned
	Float
)

func (k NumberKind) String() string {
	switch k {
	case Signed:
		return "i"
	case Unsigned:
		return "u"
	case Float:
		return "f"
	default:
		return "?"
	}
}

// Number is a fixed-width integer or floating-point type, e.g. i32,
// u64, f64.
type Number struct {
	Kind NumberKind
	Bits int
}

func (n Number) String() string { return fmt.Sprintf("%s%d", n.Kind, n.Bits) }
func (n Number) Equals(o Type) bool {
	on, ok := o.(Number)
	return ok && n.Kind == on.Kind && n.Bits == on.Bits
}
func (n Number) Substitute(map[string]Type) Type { return n }

// Bool is the boolean type. It is kept distinct from Number (rather
// than folded into Number{Unsigned, 1} the way the original's
// ResolvedTypeBool inherits from ResolvedTypeNumber) because spec.md's
// closed type family lists Bool as its own variant alongside Number.
type Bool struct{}

func (Bool) String() string             { return "bool" }
func (Bool) Equals(o Type) bool          { _, ok := o.(Bool); return ok }
func (t Bool) Substitute(map[string]Type) Type { return t }

// Struct is the type of a value of a declared struct. Decl holds the
// *resolved.StructDecl that defines it, carried as `any` so this
// package never imports internal/resolved (the dependency runs the
// other way: resolved nodes carry a types.Type field). Equality is
// declaration identity: two Struct values are equal iff Decl is the
// same pointer, matching spec.md's "declaration identity" rule and
// letting two structurally-identical-but-distinct struct declarations
// stay distinct types.
type Struct struct {
	Decl any
	Name string // for String()/diagnostics only; not part of equality
}

func (s Struct) String() string { return s.Name }
func (s Struct) Equals(o Type) bool {
	os, ok := o.(Struct)
	return ok && s.Decl == os.Decl
}
func (s Struct) Substitute(map[string]Type) Type { return s }

// Pointer is `&T`: a non-nullable reference to a T.
type Pointer struct{ Inner Type }

func (p Pointer) String() string { return "&" + p.Inner.String() }
func (p Pointer) Equals(o Type) bool {
	op, ok := o.(Pointer)
	return ok && p.Inner.Equals(op.Inner)
}
func (p Pointer) Substitute(subs map[string]Type) Type {
	return Pointer{Inner: p.Inner.Substitute(subs)}
}

// Array is `[N]T`: a fixed-length, inline sequence of T.
type Array struct {
	Inner Type
	Len   int64
}

func (a Array) String() string { return fmt.Sprintf("[%d]%s", a.Len, a.Inner) }
func (a Array) Equals(o Type) bool {
	oa, ok := o.(Array)
	return ok && a.Len == oa.Len && a.Inner.Equals(oa.Inner)
}
func (a Array) Substitute(subs map[string]Type) Type {
	return Array{Inner: a.Inner.Substitute(subs), Len: a.Len}
}

// Slice is `[]T`: a pointer-plus-length view over a sequence of T.
type Slice struct{ Inner Type }

func (s Slice) String() string { return "[]" + s.Inner.String() }
func (s Slice) Equals(o Type) bool {
	os, ok := o.(Slice)
	return ok && s.Inner.Equals(os.Inner)
}
func (s Slice) Substitute(subs map[string]Type) Type {
	return Slice{Inner: s.Inner.Substitute(subs)}
}

// Optional is `T?`, the optional/error-union type: a value is either a
// present T or an Error. `void?` (Optional{Void{}}) is the common
// "may fail, otherwise returns nothing" shape.
type Optional struct{ Inner Type }

func (o Optional) String() string { return o.Inner.String() + "?" }
func (o Optional) Equals(other Type) bool {
	oo, ok := other.(Optional)
	return ok && o.Inner.Equals(oo.Inner)
}
func (o Optional) Substitute(subs map[string]Type) Type {
	return Optional{Inner: o.Inner.Substitute(subs)}
}

// Error is the generic "an error occurred" type: the type of a
// `catch`ed or `@Name`-literal error value that has not been narrowed
// to one error-group's constants.
type Error struct{}

func (Error) String() string             { return "error" }
func (Error) Equals(o Type) bool          { _, ok := o.(Error); return ok }
func (t Error) Substitute(map[string]Type) Type { return t }

// ErrorGroup is the type of a value belonging to one declared `err`
// group's named constants. Equality is declaration identity, like
// Struct.
type ErrorGroup struct {
	Decl any
	Name string
}

func (e ErrorGroup) String() string { return e.Name }
func (e ErrorGroup) Equals(o Type) bool {
	oe, ok := o.(ErrorGroup)
	return ok && e.Decl == oe.Decl
}
func (e ErrorGroup) Substitute(map[string]Type) Type { return e }

// Module is the type of a module reference used as the base of a
// `::`-qualified member access. Equality is declaration identity.
type Module struct {
	Decl any
	Name string
}

func (m Module) String() string { return "module " + m.Name }
func (m Module) Equals(o Type) bool {
	om, ok := o.(Module)
	return ok && m.Decl == om.Decl
}
func (m Module) Substitute(map[string]Type) Type { return m }

// Generic is an unbound reference to one of the enclosing
// declaration's generic type parameters, e.g. `T` inside `struct
// Box<T> { value: T }`. It only appears inside a generic declaration's
// own resolved tree, before on-demand monomorphization; Substitute is
// how it gets replaced by a concrete type for one specialization.
type Generic struct {
	Decl any
	Name string
}

func (g Generic) String() string    { return g.Name }
func (g Generic) Equals(o Type) bool {
	og, ok := o.(Generic)
	return ok && g.Decl == og.Decl && g.Name == og.Name
}
func (g Generic) Substitute(subs map[string]Type) Type {
	if sub, ok := subs[g.Name]; ok {
		return sub
	}
	return g
}

// Function is the type of a function value: its parameter types in
// order and its return type.
type Function struct {
	Params []Type
	Ret    Type
}

func (f Function) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret)
}
func (f Function) Equals(o Type) bool {
	of, ok := o.(Function)
	if !ok || len(f.Params) != len(of.Params) || !f.Ret.Equals(of.Ret) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equals(of.Params[i]) {
			return false
		}
	}
	return true
}
func (f Function) Substitute(subs map[string]Type) Type {
	params := make([]Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Substitute(subs)
	}
	return Function{Params: params, Ret: f.Ret.Substitute(subs)}
}

// Specialized is a generic declaration (Base, a Struct or Function
// whose decl is generic) instantiated with concrete Args, produced by
// on-demand monomorphization the first time a call site or
// instantiation expression supplies a particular argument list.
type Specialized struct {
	Base Type
	Args []Type
}

func (s Specialized) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", s.Base, strings.Join(parts, ", "))
}
func (s Specialized) Equals(o Type) bool {
	os, ok := o.(Specialized)
	if !ok || !s.Base.Equals(os.Base) || len(s.Args) != len(os.Args) {
		return false
	}
	for i := range s.Args {
		if !s.Args[i].Equals(os.Args[i]) {
			return false
		}
	}
	return true
}
func (s Specialized) Substitute(subs map[string]Type) Type {
	args := make([]Type, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Substitute(subs)
	}
	return Specialized{Base: s.Base.Substitute(subs), Args: args}
}

// SpecializationKey renders a stable cache key for one set of type
// arguments, used to deduplicate monomorphizations of the same
// generic declaration with the same concrete arguments.
func SpecializationKey(args []Type) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

// DefaultInit is a transient placeholder type assigned to an
// aggregate-instantiation expression (`{...}`) before its element/field
// types are known from context; it must never survive into the IR
// lowering pass as a real operand type.
type DefaultInit struct{}

func (DefaultInit) String() string             { return "<default-init>" }
func (DefaultInit) Equals(o Type) bool          { _, ok := o.(DefaultInit); return ok }
func (t DefaultInit) Substitute(map[string]Type) Type { return t }

// IsNumeric reports whether t is Number or Bool (the two "arithmetic
// or comparable as bits" resolved types).
func IsNumeric(t Type) bool {
	switch t.(type) {
	case Number, Bool:
		return true
	default:
		return false
	}
}

// Underlying unwraps Optional to its inner type; for any other type it
// returns t unchanged. Used where a non-optional value is required but
// an optional is tolerated via `!`/`orelse`/`catch` unwrapping.
func Underlying(t Type) Type {
	if o, ok := t.(Optional); ok {
		return o.Inner
	}
	return t
}
