package ir

import (
	"strings"
	"testing"

	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
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

func declRef(decl resolved.Decl, t types.Type) *resolved.DeclRef {
	ref := &resolved.DeclRef{Decl: decl}
	ref.Type = t
	return ref
}

func block(stmts ...resolved.Stmt) *resolved.Block {
	return &resolved.Block{Stmts: stmts}
}

func returnStmt(value resolved.Expr) *resolved.ReturnStmt {
	return &resolved.ReturnStmt{Value: value}
}

func moduleWith(decls ...resolved.Decl) *resolved.ModuleDecl {
	return &resolved.ModuleDecl{Decls: decls}
}

// TestLowerSimpleFunctionProducesCallableBody exercises the whole
// prototype+body pipeline over a two-parameter function that adds its
// arguments, checking the emitted signature and that the body reaches
// a terminated return block.
func TestLowerSimpleFunctionProducesCallableBody(t *testing.T) {
	a := &resolved.ParamDecl{Name: "a", Type: i32Type()}
	b := &resolved.ParamDecl{Name: "b", Type: i32Type()}
	sum := &resolved.BinaryExpr{Op: token.PLUS, LHS: declRef(a, i32Type()), RHS: declRef(b, i32Type())}
	sum.Type = i32Type()

	fd := &resolved.FuncDecl{
		Name:       "add",
		Params:     []*resolved.ParamDecl{a, b},
		ReturnType: i32Type(),
		Body:       block(returnStmt(sum)),
	}
	fd.Symbol = "test.add"

	mod, errs := Lower(moduleWith(fd), Options{})
	require.Empty(t, errs)

	f := findFunc(mod, "test.add")
	require.NotNil(t, f)
	assert.Equal(t, BodyEmitted, f.Status)
	assert.Len(t, f.Params, 2)
	assert.NotNil(t, f.Blocks[len(f.Blocks)-1].Terminator())
}

// TestLowerStructFieldsGetSequentialLayout checks that a struct's two
// fields lower to a two-element Fields list, and that the struct is
// registered ahead of the slice.u8 struct seeded for println.
func TestLowerStructFieldsGetSequentialLayout(t *testing.T) {
	sd := &resolved.StructDecl{
		Name: "Point",
		Fields: []*resolved.FieldDecl{
			{Name: "x", Type: i32Type()},
			{Name: "y", Type: i32Type()},
		},
	}
	sd.Symbol = "test.Point"

	mod, errs := Lower(moduleWith(sd), Options{})
	require.Empty(t, errs)
	require.Len(t, mod.Structs, 2)
	assert.Equal(t, "test.Point", mod.Structs[0].Name)
	require.Len(t, mod.Structs[0].Fields, 2)
}

// TestLowerMainGetsSyntheticI32Wrapper checks that a user `main`
// (renamed __builtin_main by symbol assignment, mirroring what
// internal/sema actually does) receives a synthetic i32-returning
// wrapper rather than being emitted directly as the process entry
// point.
func TestLowerMainGetsSyntheticI32Wrapper(t *testing.T) {
	fd := &resolved.FuncDecl{Name: "main", ReturnType: types.Void{}, Body: block(returnStmt(nil))}
	fd.Symbol = "__builtin_main"

	mod, errs := Lower(moduleWith(fd), Options{})
	require.Empty(t, errs)

	main := findFunc(mod, "main")
	require.NotNil(t, main)
	assert.Equal(t, IntType{Bits: 32, Signed: true}, main.ReturnType)

	user := findFunc(mod, "__builtin_main")
	require.NotNil(t, user)
	assert.Equal(t, BodyEmitted, user.Status)
}

// TestLowerTestModeCallsEveryTestInTurn checks that -test mode's
// synthetic main calls every TestDecl's lowered function, rather than
// the regular __builtin_main wrapper.
func TestLowerTestModeCallsEveryTestInTurn(t *testing.T) {
	td := &resolved.TestDecl{Name: "adds up", Body: block(returnStmt(nil))}
	td.Symbol = "test.__test.0"

	mod, errs := Lower(moduleWith(td), Options{TestMode: true})
	require.Empty(t, errs)

	main := findFunc(mod, "main")
	require.NotNil(t, main)

	testFn := findFunc(mod, "test.__test.0")
	require.NotNil(t, testFn)
	assert.Equal(t, BodyEmitted, testFn.Status)

	var calledTest bool
	for _, instr := range main.Blocks[0].Instrs {
		if call, ok := instr.(*Call); ok {
			if ref, ok := call.Callee.(GlobalRef); ok && ref.Name == "test.__test.0" {
				calledTest = true
			}
		}
	}
	assert.True(t, calledTest, "expected the test-runner main to call the lowered test function")
}

// TestModuleStringRendersFunctionsAndBlocks smoke-tests the text dump:
// a lowered function should show up by name with at least one labeled
// block.
func TestModuleStringRendersFunctionsAndBlocks(t *testing.T) {
	fd := &resolved.FuncDecl{Name: "noop", ReturnType: types.Void{}, Body: block(returnStmt(nil))}
	fd.Symbol = "test.noop"

	mod, errs := Lower(moduleWith(fd), Options{ModuleName: "test"})
	require.Empty(t, errs)

	text := mod.String()
	assert.True(t, strings.Contains(text, "test.noop"))
	assert.True(t, strings.Contains(text, "entry."))
}

func findFunc(mod *Module, name string) *Func {
	for _, f := range mod.Funcs {
		if f.Name == name {
			return f
		}
	}
	return nil
}
