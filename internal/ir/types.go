// Package ir implements the code generator (C7): lowering the resolved
// tree (internal/resolved) into a typed SSA module suitable for
// handoff to the external backend (spec.md §1, "out of scope (external
// collaborators)"). Grounded on internal/core/core.go (teacher) for the
// stable-ID, embedded-base node shape, generalized from AILANG's ANF
// form to an explicit basic-block SSA module with alloca/load/store,
// and on internal/elaborate/core.go (teacher) for the resolved-tree ->
// IR lowering-pass structure (a Builder walking a typed tree, emitting
// into a sequence of IR nodes rather than returning an expression
// value directly).
package ir

import (
	"fmt"
	"strings"
)

// Type is the IR-level type of every value and slot. Unlike
// types.Type (the resolved front-end's nominal/closed family), Type is
// purely a machine layout description: struct and optional/error-union
// types have already been reduced to their field lists by the time
// anything in this package touches them.
type Type interface {
	String() string
	irType()
}

// VoidType is the type of an instruction with no result (a Store, a
// Br, a Ret).
type VoidType struct{}

func (VoidType) String() string { return "void" }
func (VoidType) irType()        {}

// IntType is a fixed-width integer, signed or unsigned. Bool is
// IntType{Bits: 1}.
type IntType struct {
	Bits   int
	Signed bool
}

func (t IntType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Bits)
	}
	return fmt.Sprintf("u%d", t.Bits)
}
func (IntType) irType() {}

// FloatType is a fixed-width IEEE float.
type FloatType struct{ Bits int }

func (t FloatType) String() string { return fmt.Sprintf("f%d", t.Bits) }
func (FloatType) irType()          {}

// PointerType is a machine pointer to Elem.
type PointerType struct{ Elem Type }

func (t PointerType) String() string { return "*" + t.Elem.String() }
func (PointerType) irType()          {}

// ArrayType is a fixed-length inline sequence of Elem, the lowering of
// a resolved types.Array.
type ArrayType struct {
	Elem Type
	Len  int64
}

func (t ArrayType) String() string { return fmt.Sprintf("[%d x %s]", t.Len, t.Elem) }
func (ArrayType) irType()          {}

// StructType is a named aggregate with an ordered field list. It
// supports the two-pass struct emission spec.md §3 describes: Fields
// is nil while the type is declared-but-opaque (first pass, so
// self-referential and forward-referenced fields can still name it by
// pointer), and populated once the body pass runs.
type StructType struct {
	Name   string
	Fields []Type
}

func (t *StructType) String() string { return "struct." + t.Name }
func (*StructType) irType()          {}

// FieldType returns the type of the struct field at position i (IR
// struct types carry no field names, only position — name-to-index
// resolution happens once, during lowering, against the resolved
// FieldDecl list that produced Fields).
func (t *StructType) FieldType(i int) Type { return t.Fields[i] }

// FunctionType is the type of a function value (used for a callee
// operand of Function type, not for a Func's own signature bookkeeping
// — see Func).
type FunctionType struct {
	Params []Type
	Ret    Type
}

func (t FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Ret)
}
func (FunctionType) irType() {}

// PtrSizeBits is the host pointer/size-integer width used for slice
// lengths, sizeof results, and array indices (spec.md §4.5's "the
// platform's size-integer").
const PtrSizeBits = 64

// SizeIntType is the unsigned integer type used for lengths and
// sizeof results.
var SizeIntType = IntType{Bits: PtrSizeBits, Signed: false}

// ErrTagType is the runtime representation of an Error/ErrorGroup
// value: a pointer to a global string tag (spec.md §3, "Types
// (resolved)"; §4.5 optional/error-union layout: "a value is present
// iff the error field is null").
var ErrTagType = PointerType{Elem: IntType{Bits: 8, Signed: false}}
