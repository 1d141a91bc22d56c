package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStructEqualityIsDeclIdentityNotShape(t *testing.T) {
	declA := new(int)
	declB := new(int)
	a1 := Struct{Decl: declA, Name: "Point"}
	a2 := Struct{Decl: declA, Name: "Point"}
	b := Struct{Decl: declB, Name: "Point"}

	assert.True(t, a1.Equals(a2), "same decl pointer, same name: equal")
	assert.False(t, a1.Equals(b), "different decl pointer, identical name: not equal")
}

func TestNumberEqualityIsStructural(t *testing.T) {
	assert.True(t, Number{Kind: Signed, Bits: 32}.Equals(Number{Kind: Signed, Bits: 32}))
	assert.False(t, Number{Kind: Signed, Bits: 32}.Equals(Number{Kind: Unsigned, Bits: 32}))
	assert.False(t, Number{Kind: Signed, Bits: 32}.Equals(Number{Kind: Signed, Bits: 64}))
}

func TestOptionalWrapsAndUnwraps(t *testing.T) {
	inner := Number{Kind: Signed, Bits: 32}
	opt := Optional{Inner: inner}
	assert.Equal(t, "i32?", opt.String())
	assert.Equal(t, inner, Underlying(opt))
	assert.Equal(t, Bool{}, Underlying(Bool{}), "non-optional types pass through unchanged")
}

func TestFunctionEqualityComparesParamsAndReturn(t *testing.T) {
	f1 := Function{Params: []Type{Number{Kind: Signed, Bits: 32}, Bool{}}, Ret: Void{}}
	f2 := Function{Params: []Type{Number{Kind: Signed, Bits: 32}, Bool{}}, Ret: Void{}}
	f3 := Function{Params: []Type{Number{Kind: Signed, Bits: 64}, Bool{}}, Ret: Void{}}

	assert.True(t, f1.Equals(f2))
	assert.False(t, f1.Equals(f3))
}

func TestGenericSubstituteReplacesMatchingNameOnly(t *testing.T) {
	decl := new(int)
	g := Generic{Decl: decl, Name: "T"}
	other := Generic{Decl: decl, Name: "U"}
	subs := map[string]Type{"T": Number{Kind: Signed, Bits: 32}}

	assert.Equal(t, Type(Number{Kind: Signed, Bits: 32}), g.Substitute(subs))
	assert.Equal(t, Type(other), other.Substitute(subs))
}

func TestSpecializedSubstitutesThroughBaseAndArgs(t *testing.T) {
	decl := new(int)
	boxDecl := Struct{Decl: decl, Name: "Box"}
	spec := Specialized{Base: boxDecl, Args: []Type{Generic{Decl: decl, Name: "T"}}}

	out := spec.Substitute(map[string]Type{"T": Bool{}})
	want := Specialized{Base: boxDecl, Args: []Type{Bool{}}}
	assert.True(t, out.Equals(want))
}

func TestSpecializationKeyIsStableAndOrderSensitive(t *testing.T) {
	a := []Type{Number{Kind: Signed, Bits: 32}, Bool{}}
	b := []Type{Bool{}, Number{Kind: Signed, Bits: 32}}

	assert.Equal(t, "i32,bool", SpecializationKey(a))
	assert.NotEqual(t, SpecializationKey(a), SpecializationKey(b))
}

func TestPointerArraySliceStructuralEquality(t *testing.T) {
	i32 := Number{Kind: Signed, Bits: 32}
	assert.True(t, Pointer{Inner: i32}.Equals(Pointer{Inner: i32}))
	assert.True(t, Array{Inner: i32, Len: 4}.Equals(Array{Inner: i32, Len: 4}))
	assert.False(t, Array{Inner: i32, Len: 4}.Equals(Array{Inner: i32, Len: 8}))
	assert.True(t, Slice{Inner: i32}.Equals(Slice{Inner: i32}))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric(Number{Kind: Float, Bits: 64}))
	assert.True(t, IsNumeric(Bool{}))
	assert.False(t, IsNumeric(Void{}))
	assert.False(t, IsNumeric(Struct{Decl: new(int), Name: "S"}))
}
