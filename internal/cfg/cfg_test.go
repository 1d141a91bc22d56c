package cfg

import (
	"testing"

	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32Type() types.Type { return types.Number{Kind: types.Signed, Bits: 32} }

func intLit(v int64) *resolved.IntLiteral {
	lit := &resolved.IntLiteral{Value: v}
	lit.Type = i32Type()
	return lit
}

func block(stmts ...resolved.Stmt) *resolved.Block {
	return &resolved.Block{Stmts: stmts}
}

func returnStmt(value resolved.Expr) *resolved.ReturnStmt {
	return &resolved.ReturnStmt{Value: value}
}

func exprStmt(x resolved.Expr) *resolved.ExprStmt {
	return &resolved.ExprStmt{X: x}
}

func ifStmt(cond resolved.Expr, then *resolved.Block, els resolved.Stmt) *resolved.IfStmt {
	return &resolved.IfStmt{Cond: cond, Then: then, Else: els}
}

func fn(name string, ret types.Type, body *resolved.Block) *resolved.FuncDecl {
	return &resolved.FuncDecl{Name: name, ReturnType: ret, Body: body}
}

func declRef(decl resolved.Decl) *resolved.DeclRef {
	ref := &resolved.DeclRef{Decl: decl}
	if vd, ok := decl.(*resolved.VarDecl); ok {
		ref.Type = vd.Type
	}
	return ref
}

func TestReturnOnAllPathsUnconditionalReturnIsOK(t *testing.T) {
	f := fn("always", i32Type(), block(returnStmt(intLit(1))))
	graph := Build(f)

	assert.Nil(t, CheckReturnOnAllPaths(f, graph))
}

func TestReturnOnAllPathsMissingReturnReportsCFG001(t *testing.T) {
	flag := &resolved.ParamDecl{Name: "flag", Type: types.Bool{}}
	cond := &resolved.DeclRef{Decl: flag}
	cond.Type = types.Bool{}
	f := fn("maybe", i32Type(), block(
		ifStmt(cond, block(returnStmt(intLit(1))), nil),
		// falls off the end when flag is false, not provable at compile time
	))
	graph := Build(f)

	r := CheckReturnOnAllPaths(f, graph)
	require.NotNil(t, r)
	assert.Equal(t, "CFG001", r.Code)
}

func TestReturnOnAllPathsVoidFunctionNeverFlagged(t *testing.T) {
	f := fn("noop", types.Void{}, block(exprStmt(intLit(1))))
	graph := Build(f)

	assert.Nil(t, CheckReturnOnAllPaths(f, graph))
}

func TestUseBeforeAssignmentReportsCFG002(t *testing.T) {
	vd := &resolved.VarDecl{Name: "x", Type: i32Type()}
	body := block(
		&resolved.DeclStmt{Decl: vd},
		exprStmt(declRef(vd)),
		returnStmt(nil),
	)
	f := fn("reads_uninit", types.Void{}, body)
	graph := Build(f)

	reports := CheckInitialization(graph)
	found := false
	for _, r := range reports {
		if r.Code == "CFG002" {
			found = true
		}
	}
	assert.True(t, found, "expected a CFG002 report for reading x before it is assigned")
}

func TestAssignmentInitializesVariable(t *testing.T) {
	vd := &resolved.VarDecl{Name: "x", Type: i32Type()}
	assign := &resolved.Assignment{Target: declRef(vd), Value: intLit(5)}
	body := block(
		&resolved.DeclStmt{Decl: vd},
		assign,
		exprStmt(declRef(vd)),
		returnStmt(nil),
	)
	f := fn("inits_then_reads", types.Void{}, body)
	graph := Build(f)

	reports := CheckInitialization(graph)
	for _, r := range reports {
		assert.NotEqual(t, "CFG002", r.Code, "x is assigned before this read, should not be flagged")
	}
}

func TestConstReassignmentReportsCFG003(t *testing.T) {
	vd := &resolved.VarDecl{Name: "c", Type: i32Type(), IsConst: true, Init: intLit(1)}
	secondAssign := &resolved.Assignment{Target: declRef(vd), Value: intLit(2)}
	body := block(
		&resolved.DeclStmt{Decl: vd},
		secondAssign,
		returnStmt(nil),
	)
	f := fn("reassigns_const", types.Void{}, body)
	graph := Build(f)

	reports := CheckInitialization(graph)
	found := false
	for _, r := range reports {
		if r.Code == "CFG003" {
			found = true
		}
	}
	assert.True(t, found, "expected a CFG003 report for reassigning a const binding")
}

func TestUnreachableCodeAfterReturnReportsCFG004(t *testing.T) {
	body := block(
		returnStmt(nil),
		exprStmt(intLit(1)), // unreachable
	)
	f := fn("dead_tail", types.Void{}, body)
	graph := Build(f)

	reports := CheckUnreachable(graph)
	require.Len(t, reports, 1)
	assert.Equal(t, "CFG004", reports[0].Code)
}

func TestBuildEntryAndExitAreDistinctForNonEmptyBody(t *testing.T) {
	f := fn("simple", types.Void{}, block(exprStmt(intLit(1)), returnStmt(nil)))
	graph := Build(f)

	assert.NotEqual(t, graph.Entry, graph.Exit)
	assert.Less(t, graph.Exit, len(graph.Blocks))
	assert.Less(t, graph.Entry, len(graph.Blocks))
}
