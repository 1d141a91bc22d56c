package ir

import (
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// zeroPos is used for IR diagnostics about a type or declaration that
// carries no single source location of its own (a struct prototype
// referenced before declaration, a malformed specialization); callers
// that lower one resolved node's expression/statement prefer that
// node's own Position() instead.
var zeroPos token.Pos

// lowerType maps a resolved types.Type to its IR layout. Struct,
// Optional, and Slice map to StructType (spec.md §4.7's "Optional<T>
// is a two-field struct", §4.5's slice-as-{ptr,length} temporary);
// every struct variant is memoized by declaration/specialization
// identity so two references to the same struct type share one
// *StructType (and, for Optional/Slice, by structural key, since those
// have no owning declaration to key on).
func (b *Builder) lowerType(t types.Type) Type {
	switch v := t.(type) {
	case types.Void:
		return VoidType{}
	case types.Bool:
		return IntType{Bits: 1, Signed: false}
	case types.Number:
		switch v.Kind {
		case types.Float:
			return FloatType{Bits: v.Bits}
		default:
			return IntType{Bits: v.Bits, Signed: v.Kind == types.Signed}
		}
	case types.Pointer:
		return PointerType{Elem: b.lowerType(v.Inner)}
	case types.Array:
		return ArrayType{Elem: b.lowerType(v.Inner), Len: v.Len}
	case types.Slice:
		return b.sliceType(v.Inner)
	case types.Optional:
		return b.optionalType(v.Inner)
	case types.Error, types.ErrorGroup:
		return ErrTagType
	case types.Struct:
		sd, _ := v.Decl.(*resolved.StructDecl)
		if sd == nil {
			b.error("IR001", zeroPos, "struct type %q has no resolved declaration", v.Name)
			return ErrTagType
		}
		return b.structIRType(sd)
	case types.Specialized:
		return b.specializedIRType(v)
	case types.Function:
		params := make([]Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = b.lowerType(p)
		}
		return FunctionType{Params: params, Ret: b.lowerType(v.Ret)}
	case types.DefaultInit:
		b.error("IR001", zeroPos, "DefaultInit type reached lowering")
		return VoidType{}
	default:
		b.error("IR001", zeroPos, "unhandled resolved type %s reached lowering", t)
		return VoidType{}
	}
}

// structIRType returns the already-declared StructType for sd,
// created (opaque) by declareStructs; calling this before the
// declaration pass has run is an internal error.
func (b *Builder) structIRType(sd *resolved.StructDecl) *StructType {
	st, ok := b.structTypes[sd]
	if !ok {
		b.error("IR001", zeroPos, "struct %q referenced before its prototype was declared", sd.Name)
		return &StructType{Name: sd.SymbolName()}
	}
	return st
}

func (b *Builder) specializedIRType(sp types.Specialized) *StructType {
	base, ok := sp.Base.(types.Struct)
	if !ok {
		b.error("IR001", zeroPos, "specialization of non-struct base %s reached lowering", sp.Base)
		return &StructType{Name: sp.String()}
	}
	sd, _ := base.Decl.(*resolved.StructDecl)
	key := types.SpecializationKey(sp.Args)
	rsp := sd.Specializations[key]
	st, ok := b.structTypes[rsp]
	if !ok {
		b.error("IR001", zeroPos, "struct specialization %q referenced before its prototype was declared", sp)
		return &StructType{Name: sp.String()}
	}
	return st
}

// sliceType returns the {ptr, length} aggregate for a slice of inner,
// memoized by inner's rendered type name (spec.md §4.5: "allocate a
// {ptr, length} temporary").
func (b *Builder) sliceType(inner types.Type) *StructType {
	key := "slice." + inner.String()
	if st, ok := b.sliceTypes[key]; ok {
		return st
	}
	innerIR := b.lowerType(inner)
	st := &StructType{Name: key, Fields: []Type{PointerType{Elem: innerIR}, SizeIntType}}
	b.sliceTypes[key] = st
	b.mod.addStruct(st)
	return st
}

// SliceFieldPtr/SliceFieldLen name the fixed field positions of every
// slice StructType this package builds.
const (
	SliceFieldPtr = 0
	SliceFieldLen = 1
)

// optionalType returns the two-field {value, error} aggregate for
// Optional{inner} (spec.md §4.7): the value slot holds inner (or an i1
// placeholder when inner is Void, since a zero-width field cannot be
// addressed), and the error slot is always ErrTagType, defaulting to
// null via the entry-block memset.
func (b *Builder) optionalType(inner types.Type) *StructType {
	key := "optional." + inner.String()
	if st, ok := b.optTypes[key]; ok {
		return st
	}
	valueIR := b.lowerType(inner)
	if _, isVoid := valueIR.(VoidType); isVoid {
		valueIR = IntType{Bits: 1, Signed: false}
	}
	st := &StructType{Name: key, Fields: []Type{valueIR, ErrTagType}}
	b.optTypes[key] = st
	b.mod.addStruct(st)
	return st
}

const (
	OptionalFieldValue = 0
	OptionalFieldError = 1
)

// SizeOf returns the in-memory size, in bytes, of t's IR lowering
// (spec.md §4.5's SizeofExpr: "compile-time constant of the target's
// size for the given type"). Struct sizes are the flat sum of field
// sizes: this package does not model alignment padding, matching the
// original's own non-padded struct layout for a byte-oriented target.
func SizeOf(t Type) int64 {
	switch v := t.(type) {
	case VoidType:
		return 0
	case IntType:
		return int64((v.Bits + 7) / 8)
	case FloatType:
		return int64(v.Bits / 8)
	case PointerType:
		return PtrSizeBits / 8
	case ArrayType:
		return v.Len * SizeOf(v.Elem)
	case *StructType:
		var total int64
		for _, f := range v.Fields {
			total += SizeOf(f)
		}
		return total
	case FunctionType:
		return PtrSizeBits / 8
	default:
		return 0
	}
}

