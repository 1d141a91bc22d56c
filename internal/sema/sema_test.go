package sema

import (
	"testing"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/module"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32() ast.Type { return &ast.NumberType{Bits: 32} }

func treeWithRootDecls(decls ...ast.Decl) *module.Tree {
	root := &module.Node{Children: map[string]*module.Node{}}
	root.Decls = append(root.Decls, decls...)
	return &module.Tree{Root: root}
}

func findFunc(mod *resolved.ModuleDecl, name string) *resolved.FuncDecl {
	for _, d := range mod.Decls {
		if fd, ok := d.(*resolved.FuncDecl); ok && fd.Name == name {
			return fd
		}
	}
	return nil
}

func hasErrorCode(errs []*errors.Report, code string) bool {
	for _, e := range errs {
		if e.Code == code {
			return true
		}
	}
	return false
}

// fn add(a: i32, b: i32) -> i32 { return a + b; }
func addFuncDecl() *ast.FuncDecl {
	return &ast.FuncDecl{
		Name:       "add",
		Params:     []*ast.ParamDecl{{Name: "a", Type: i32()}, {Name: "b", Type: i32()}},
		ReturnType: i32(),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinaryExpr{
				Op:  token.PLUS,
				LHS: &ast.DeclRefExpr{Name: "a"},
				RHS: &ast.DeclRefExpr{Name: "b"},
			}},
		}},
	}
}

func TestResolveFunctionSignatureAndCall(t *testing.T) {
	add := addFuncDecl()
	caller := &ast.FuncDecl{
		Name:       "caller",
		ReturnType: i32(),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.CallExpr{
				Callee: &ast.DeclRefExpr{Name: "add"},
				Args:   []ast.Expr{&ast.IntLiteral{Value: 1}, &ast.IntLiteral{Value: 2}},
			}},
		}},
	}

	r := New()
	root := r.Run(treeWithRootDecls(add, caller))
	require.Empty(t, r.Errors())

	addDecl := findFunc(root, "add")
	require.NotNil(t, addDecl)
	assert.Equal(t, types.Number{Kind: types.Signed, Bits: 32}, addDecl.ReturnType)
	assert.Len(t, addDecl.Params, 2)

	callerDecl := findFunc(root, "caller")
	require.NotNil(t, callerDecl)
	ret := callerDecl.Body.Stmts[len(callerDecl.Body.Stmts)-1].(*resolved.ReturnStmt)
	call := ret.Value.(*resolved.CallExpr)
	callee := call.Callee.(*resolved.DeclRef)
	assert.Same(t, addDecl, callee.Decl)
}

func TestUndeclaredIdentifierReportsRES001(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "broken",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.DeclRefExpr{Name: "nope"}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(fn))
	require.True(t, hasErrorCode(r.Errors(), errors.RES001))
}

func TestRedeclarationInSameScopeReportsRES002(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "dup",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.DeclStmt{Decl: &ast.VarDecl{Name: "x", Init: &ast.IntLiteral{Value: 1}}},
			&ast.DeclStmt{Decl: &ast.VarDecl{Name: "x", Init: &ast.IntLiteral{Value: 2}}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(fn))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES002))
}

func TestReservedPrintlnCannotBeRedeclared(t *testing.T) {
	fn := &ast.FuncDecl{Name: "println"}
	r := New()
	r.Run(treeWithRootDecls(fn))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES011))
}

func TestPrintlnIsCallableWithoutDeclaration(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CallExpr{
				Callee: &ast.DeclRefExpr{Name: "println"},
				Args:   []ast.Expr{&ast.StringLiteral{Value: "hi"}},
			}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(fn))
	assert.False(t, hasErrorCode(r.Errors(), errors.RES001))
}

// struct Point { x: i32, y: i32 }
// fn (Point) sum() -> i32 { return .x + .y; }
func TestStructFieldAndSelfMemberMethod(t *testing.T) {
	point := &ast.StructDecl{
		Name: "Point",
		Fields: []*ast.FieldDecl{
			{Name: "x", Type: i32()},
			{Name: "y", Type: i32()},
		},
	}
	sum := &ast.FuncDecl{
		Name:        "sum",
		StructOwner: "Point",
		Params:      []*ast.ParamDecl{{Name: "self", Type: &ast.NamedType{Name: "Point"}}},
		ReturnType:  i32(),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinaryExpr{
				Op:  token.PLUS,
				LHS: &ast.SelfMemberExpr{Field: "x"},
				RHS: &ast.SelfMemberExpr{Field: "y"},
			}},
		}},
	}

	r := New()
	root := r.Run(treeWithRootDecls(point, sum))
	require.Empty(t, r.Errors())

	var sd *resolved.StructDecl
	for _, d := range root.Decls {
		if s, ok := d.(*resolved.StructDecl); ok {
			sd = s
		}
	}
	require.NotNil(t, sd)
	require.Len(t, sd.Methods, 1)
	assert.Equal(t, "sum", sd.Methods[0].Name)
}

func TestUnknownFieldReportsRES005(t *testing.T) {
	point := &ast.StructDecl{Name: "Point", Fields: []*ast.FieldDecl{{Name: "x", Type: i32()}}}
	fn := &ast.FuncDecl{
		Name: "bad",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.DeclStmt{Decl: &ast.VarDecl{
				Name: "p",
				Type: &ast.NamedType{Name: "Point"},
				Init: &ast.StructInstantiationExpr{Name: &ast.NamedType{Name: "Point"}},
			}},
			&ast.ExprStmt{X: &ast.MemberExpr{Base: &ast.DeclRefExpr{Name: "p"}, Field: "z"}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(point, fn))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES005))
}

// struct Bad { self: Bad }  -- directly self-referential by value.
func TestStructFieldCycleReportsRES007(t *testing.T) {
	bad := &ast.StructDecl{
		Name:   "Bad",
		Fields: []*ast.FieldDecl{{Name: "self", Type: &ast.NamedType{Name: "Bad"}}},
	}
	r := New()
	r.Run(treeWithRootDecls(bad))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES007))
}

// struct Node { next: &Node }  -- behind a pointer, not a cycle.
func TestStructFieldPointerIsNotACycle(t *testing.T) {
	node := &ast.StructDecl{
		Name: "Node",
		Fields: []*ast.FieldDecl{
			{Name: "next", Type: &ast.PointerType{Elem: &ast.NamedType{Name: "Node"}}},
		},
	}
	r := New()
	r.Run(treeWithRootDecls(node))
	assert.False(t, hasErrorCode(r.Errors(), errors.RES007))
}

// fn identity<T>(v: T) -> T { return v; }
// fn caller() -> i32 { return identity<i32>(5); }
func TestGenericFunctionSpecializesOnCall(t *testing.T) {
	identity := &ast.FuncDecl{
		Name:       "identity",
		TypeParams: []*ast.GenericParam{{Name: "T"}},
		Params:     []*ast.ParamDecl{{Name: "v", Type: &ast.NamedType{Name: "T"}}},
		ReturnType: &ast.NamedType{Name: "T"},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.DeclRefExpr{Name: "v"}},
		}},
	}
	caller := &ast.FuncDecl{
		Name:       "caller",
		ReturnType: i32(),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.CallExpr{
				Callee:   &ast.DeclRefExpr{Name: "identity"},
				TypeArgs: []ast.Type{i32()},
				Args:     []ast.Expr{&ast.IntLiteral{Value: 5}},
			}},
		}},
	}

	r := New()
	root := r.Run(treeWithRootDecls(identity, caller))
	require.Empty(t, r.Errors())

	identityDecl := findFunc(root, "identity")
	require.NotNil(t, identityDecl)
	assert.Len(t, identityDecl.Specializations, 1)

	callerDecl := findFunc(root, "caller")
	ret := callerDecl.Body.Stmts[0].(*resolved.ReturnStmt)
	call := ret.Value.(*resolved.CallExpr)
	assert.NotEmpty(t, call.Specialization)
}

func TestGenericFunctionArityMismatchReportsRES006(t *testing.T) {
	identity := &ast.FuncDecl{
		Name:       "identity",
		TypeParams: []*ast.GenericParam{{Name: "T"}},
		Params:     []*ast.ParamDecl{{Name: "v", Type: &ast.NamedType{Name: "T"}}},
		ReturnType: &ast.NamedType{Name: "T"},
		Body:       &ast.Block{Stmts: []ast.Stmt{&ast.ReturnStmt{Value: &ast.DeclRefExpr{Name: "v"}}}},
	}
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CallExpr{
				Callee: &ast.DeclRefExpr{Name: "identity"},
				Args:   []ast.Expr{&ast.IntLiteral{Value: 5}},
			}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(identity, caller))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES006))
}

func TestDeferSnapshottedInPushOrderAtReturn(t *testing.T) {
	first := &ast.DeferStmt{Body: &ast.Block{}}
	second := &ast.DeferStmt{Body: &ast.Block{}}
	fn := &ast.FuncDecl{
		Name: "withDefers",
		Body: &ast.Block{Stmts: []ast.Stmt{
			first,
			second,
			&ast.ReturnStmt{},
		}},
	}
	r := New()
	root := r.Run(treeWithRootDecls(fn))
	require.Empty(t, r.Errors())

	fd := findFunc(root, "withDefers")
	block, ok := fd.Body.Stmts[len(fd.Body.Stmts)-1].(*resolved.Block)
	require.True(t, ok)
	ref, ok := block.Stmts[0].(*resolved.DeferRefStmt)
	require.True(t, ok)
	require.Len(t, ref.Entries, 2)
	assert.Same(t, first, ref.Entries[0].Defer.Orig)
	assert.Same(t, second, ref.Entries[1].Defer.Orig)
}

// TestDeferAndErrdeferShareOnePushOrderedVector guards against
// splitting defer/errdefer into two independently-reversed lists: a
// `defer a(); errdefer b();` sequence must come out of the snapshot as
// [a, b] in push order, so lowering's back-to-front walk runs b then a
// on the error path, not a then b.
func TestDeferAndErrdeferShareOnePushOrderedVector(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       "withMixedDefers",
		ReturnType: &ast.OptionalType{Elem: i32()},
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.DeferStmt{Body: &ast.Block{}},
			&ast.ErrDeferStmt{Body: &ast.Block{}},
			&ast.ReturnStmt{Value: &ast.ErrorInPlaceExpr{Name: "Oops"}},
		}},
	}
	r := New()
	root := r.Run(treeWithRootDecls(fn))
	require.Empty(t, r.Errors())

	fd := findFunc(root, "withMixedDefers")
	block, ok := fd.Body.Stmts[len(fd.Body.Stmts)-1].(*resolved.Block)
	require.True(t, ok)
	ref, ok := block.Stmts[0].(*resolved.DeferRefStmt)
	require.True(t, ok)
	require.Len(t, ref.Entries, 2)
	assert.False(t, ref.Entries[0].IsErrDefer())
	assert.True(t, ref.Entries[1].IsErrDefer())
	assert.True(t, ref.IsErrorPath)
}

// TestBlockFallThroughCapturesOwnScopeDefersOnly verifies that a block
// whose last statement isn't a return records its own defer vector
// (for CFG/codegen to expand at the fall-through point) without also
// absorbing an outer block's defers transitively.
func TestBlockFallThroughCapturesOwnScopeDefersOnly(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "main",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.DeferStmt{Body: &ast.Block{}},
			&ast.IfStmt{
				Cond: &ast.BoolLiteral{Value: true},
				Then: &ast.Block{Stmts: []ast.Stmt{
					&ast.DeferStmt{Body: &ast.Block{}},
					&ast.ExprStmt{X: &ast.IntLiteral{Value: 3}},
				}},
			},
		}},
	}
	r := New()
	root := r.Run(treeWithRootDecls(fn))
	require.Empty(t, r.Errors())

	fd := findFunc(root, "main")
	ifStmt, ok := fd.Body.Stmts[1].(*resolved.IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then.Defers, 1)
	require.Len(t, fd.Body.Defers, 1)
}

func TestNonPubDeclarationNotVisibleAcrossModulesReportsRES010(t *testing.T) {
	childFn := &ast.FuncDecl{Name: "helper", ReturnType: i32(), Body: &ast.Block{Stmts: []ast.Stmt{
		&ast.ReturnStmt{Value: &ast.IntLiteral{Value: 1}},
	}}}
	child := &module.Node{Name: "inner", Path: []string{"inner"}, Children: map[string]*module.Node{}, Decls: []ast.Decl{childFn}}

	rootCaller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.CallExpr{
				Callee: &ast.MemberExpr{Base: &ast.ImportExpr{Path: []string{"inner"}}, Field: "helper"},
			}},
		}},
	}
	root := &module.Node{Children: map[string]*module.Node{"inner": child}, Decls: []ast.Decl{rootCaller}}
	tree := &module.Tree{Root: root}

	r := New()
	r.Run(tree)
	assert.True(t, hasErrorCode(r.Errors(), errors.RES010))
}

func TestArrayLengthMustBeConstantReportsCE001(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "badArray",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.DeclStmt{Decl: &ast.VarDecl{
				Name: "arr",
				Type: &ast.ArrayType{Elem: i32(), Len: &ast.DeclRefExpr{Name: "n"}},
			}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(fn))
	assert.True(t, hasErrorCode(r.Errors(), errors.CE001))
}

func TestAssignmentToNonAssignableReportsRES009(t *testing.T) {
	fn := &ast.FuncDecl{
		Name: "bad",
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.Assignment{
				Target: &ast.IntLiteral{Value: 1},
				Op:     token.ASSIGN,
				Value:  &ast.IntLiteral{Value: 2},
			},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(fn))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES009))
}

func TestTryOutsideErrorReturningFunctionReportsRES008(t *testing.T) {
	fn := &ast.FuncDecl{
		Name:       "bad",
		ReturnType: i32(),
		Body: &ast.Block{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.TryErrExpr{Operand: &ast.IntLiteral{Value: 1}}},
		}},
	}
	r := New()
	r.Run(treeWithRootDecls(fn))
	assert.True(t, hasErrorCode(r.Errors(), errors.RES008))
}
