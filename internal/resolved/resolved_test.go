package resolved

import (
	"testing"

	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclBaseExposesPositionAndSymbolName(t *testing.T) {
	v := &VarDecl{
		declBase: declBase{Symbol: "main.count", Pos: token.Pos{Line: 3, Column: 1}},
		Name:     "count",
		Type:     types.Number{Kind: types.Signed, Bits: 32},
	}
	assert.Equal(t, "main.count", v.SymbolName())
	assert.Equal(t, token.Pos{Line: 3, Column: 1}, v.Position())
}

func TestExprBaseExposesResolvedType(t *testing.T) {
	lit := &IntLiteral{
		exprBase: exprBase{Type: types.Number{Kind: types.Signed, Bits: 64}, Pos: token.Pos{Line: 1, Column: 1}},
		Value:    42,
	}
	var e Expr = lit
	assert.True(t, e.ExprType().Equals(types.Number{Kind: types.Signed, Bits: 64}))
	assert.Equal(t, int64(42), lit.Value)
}

func TestFuncDeclSignatureReflectsParamsAndReturn(t *testing.T) {
	f := &FuncDecl{
		declBase: declBase{Symbol: "main.add"},
		Name:     "add",
		Params: []*ParamDecl{
			{Name: "a", Type: types.Number{Kind: types.Signed, Bits: 32}},
			{Name: "b", Type: types.Number{Kind: types.Signed, Bits: 32}},
		},
		ReturnType: types.Number{Kind: types.Signed, Bits: 32},
	}
	sig := f.Signature()
	require.Len(t, sig.Params, 2)
	assert.True(t, sig.Ret.Equals(types.Number{Kind: types.Signed, Bits: 32}))
	assert.False(t, f.IsGeneric())
}

func TestGenericFuncDeclIsGenericWhenTypeParamsPresent(t *testing.T) {
	f := &FuncDecl{
		Name:       "identity",
		TypeParams: []*GenericParam{{Name: "T"}},
	}
	assert.True(t, f.IsGeneric())
}

func TestStructDeclFindFieldAndMethod(t *testing.T) {
	s := &StructDecl{
		Name: "Point",
		Fields: []*FieldDecl{
			{Name: "x", Type: types.Number{Kind: types.Signed, Bits: 32}},
			{Name: "y", Type: types.Number{Kind: types.Signed, Bits: 32}},
		},
		Methods: []*FuncDecl{
			{Name: "length"},
		},
	}
	require.NotNil(t, s.FindField("y"))
	assert.Nil(t, s.FindField("z"))
	require.NotNil(t, s.FindMethod("length"))
	assert.Nil(t, s.FindMethod("area"))
}

func TestErrGroupDeclFindError(t *testing.T) {
	notFound := &ErrDecl{Name: "NotFound"}
	g := &ErrGroupDecl{
		Name:   "IOError",
		Errors: []*ErrDecl{notFound, {Name: "Timeout"}},
	}
	assert.Same(t, notFound, g.FindError("NotFound"))
	assert.Nil(t, g.FindError("Unknown"))
}

func TestDeferRefStmtCarriesSnapshotInPushOrder(t *testing.T) {
	d1 := &DeferStmt{Body: &Block{}}
	ed := &ErrDeferStmt{Body: &Block{}}
	d2 := &DeferStmt{Body: &Block{}}
	snap := &DeferRefStmt{
		Entries: []DeferEntry{
			{Defer: d1},
			{ErrDefer: ed},
			{Defer: d2},
		},
		IsErrorPath: true,
	}
	require.Len(t, snap.Entries, 3)
	assert.Same(t, d1, snap.Entries[0].Defer)
	assert.True(t, snap.Entries[1].IsErrDefer())
	assert.Same(t, ed, snap.Entries[1].ErrDefer)
	assert.Same(t, d2, snap.Entries[2].Defer)
	assert.True(t, snap.IsErrorPath)
}

func TestAssignmentCarriesCompoundOperator(t *testing.T) {
	a := &Assignment{Op: token.PLUSEQ}
	assert.Equal(t, token.PLUSEQ, a.Op)
}

func TestCallExprCarriesResolvedTypeArgsAndSpecialization(t *testing.T) {
	call := &CallExpr{
		exprBase:       exprBase{Type: types.Number{Kind: types.Signed, Bits: 32}},
		TypeArgs:       []types.Type{types.Number{Kind: types.Signed, Bits: 32}},
		Specialization: "box.get__i32",
	}
	require.Len(t, call.TypeArgs, 1)
	assert.Equal(t, "box.get__i32", call.Specialization)
}

func TestModuleDeclNestsChildrenByName(t *testing.T) {
	child := &ModuleDecl{Name: "utils"}
	root := &ModuleDecl{
		Name:     "",
		Children: map[string]*ModuleDecl{"utils": child},
	}
	assert.Same(t, child, root.Children["utils"])
}
