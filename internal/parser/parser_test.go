package parser

import (
	"fmt"
	"testing"

	"github.com/dmzlang/dmzc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, errs := ParseFile([]byte(src), "test.dmz")
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return file
}

func TestModuleAndImport(t *testing.T) {
	file := mustParse(t, `
module demo::pkg;
import std::io as io;
`)
	if file.Module == nil {
		t.Fatalf("file.Module is nil")
	}
	if got := fmt.Sprint(file.Module.Path); got != "[demo pkg]" {
		t.Fatalf("module path = %v", file.Module.Path)
	}
	if len(file.Imports) != 1 {
		t.Fatalf("expected 1 import, got %d", len(file.Imports))
	}
	imp := file.Imports[0]
	if fmt.Sprint(imp.Path) != "[std io]" || imp.Alias != "io" {
		t.Fatalf("import = %+v", imp)
	}
}

func TestFuncDeclWithBinaryReturn(t *testing.T) {
	file := mustParse(t, `
fn add(a: i32, b: i32) -> i32 {
    return a + b;
}
`)
	if len(file.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(file.Decls))
	}
	fn, ok := file.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("decl is %T, not *ast.FuncDecl", file.Decls[0])
	}
	if fn.Name != "add" || len(fn.Params) != 2 {
		t.Fatalf("fn = %+v", fn)
	}
	ret, ok := fn.Body.Stmts[0].(*ast.ReturnStmt)
	if !ok {
		t.Fatalf("body[0] is %T", fn.Body.Stmts[0])
	}
	bin, ok := ret.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("return value is %T", ret.Value)
	}
	if bin.Op.String() != "+" {
		t.Fatalf("op = %s", bin.Op)
	}
}

func TestBinaryPrecedence(t *testing.T) {
	file := mustParse(t, `fn f() -> i32 { return 1 + 2 * 3; }`)
	fn := file.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	top, ok := ret.Value.(*ast.BinaryExpr)
	if !ok || top.Op.String() != "+" {
		t.Fatalf("expected top-level '+', got %+v", ret.Value)
	}
	rhs, ok := top.RHS.(*ast.BinaryExpr)
	if !ok || rhs.Op.String() != "*" {
		t.Fatalf("expected RHS '*', got %+v", top.RHS)
	}
}

func TestLeftAssociativity(t *testing.T) {
	file := mustParse(t, `fn f() -> i32 { return 1 - 2 - 3; }`)
	fn := file.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	top := ret.Value.(*ast.BinaryExpr)
	if _, ok := top.LHS.(*ast.BinaryExpr); !ok {
		t.Fatalf("expected (1-2)-3 shape, got LHS %T", top.LHS)
	}
	if _, ok := top.RHS.(*ast.IntLiteral); !ok {
		t.Fatalf("expected RHS to be a literal, got %T", top.RHS)
	}
}

func TestStructDeclAndInstantiation(t *testing.T) {
	file := mustParse(t, `
struct Point {
    x: i32,
    y: i32,
}

fn f() -> void {
    let p = Point{x: 1, y: 2};
}
`)
	sd, ok := file.Decls[0].(*ast.StructDecl)
	if !ok || sd.Name != "Point" || len(sd.Fields) != 2 {
		t.Fatalf("struct decl = %+v", file.Decls[0])
	}
	fn := file.Decls[1].(*ast.FuncDecl)
	decl := fn.Body.Stmts[0].(*ast.DeclStmt)
	inst, ok := decl.Decl.Init.(*ast.StructInstantiationExpr)
	if !ok || len(inst.Fields) != 2 {
		t.Fatalf("init = %+v", decl.Decl.Init)
	}
}

func TestErrGroupDecl(t *testing.T) {
	file := mustParse(t, `
err IOErr {
    NotFound,
    Denied,
}
`)
	eg, ok := file.Decls[0].(*ast.ErrGroupDecl)
	if !ok || eg.Name != "IOErr" || len(eg.Errors) != 2 {
		t.Fatalf("err group = %+v", file.Decls[0])
	}
}

func TestIfWhileForSwitch(t *testing.T) {
	file := mustParse(t, `
fn f(n: i32) -> i32 {
    if (n > 0) {
        return n;
    } else {
        return 0;
    }
    while (n > 0) {
        n -= 1;
    }
    for (i in 0..n) {
        n += i;
    }
    switch (n) {
    case 1, 2:
        return 1;
    else:
        return 0;
    }
    return n;
}
`)
	fn := file.Decls[0].(*ast.FuncDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.IfStmt); !ok {
		t.Fatalf("stmt[0] = %T", fn.Body.Stmts[0])
	}
	if _, ok := fn.Body.Stmts[1].(*ast.WhileStmt); !ok {
		t.Fatalf("stmt[1] = %T", fn.Body.Stmts[1])
	}
	forStmt, ok := fn.Body.Stmts[2].(*ast.ForStmt)
	if !ok || len(forStmt.Captures) != 1 || len(forStmt.Conditions) != 1 {
		t.Fatalf("stmt[2] = %+v", fn.Body.Stmts[2])
	}
	if _, ok := forStmt.Conditions[0].(*ast.RangeExpr); !ok {
		t.Fatalf("for condition = %T", forStmt.Conditions[0])
	}
	sw, ok := fn.Body.Stmts[3].(*ast.SwitchStmt)
	if !ok || len(sw.Cases) != 1 || sw.Else == nil {
		t.Fatalf("stmt[3] = %+v", fn.Body.Stmts[3])
	}
}

func TestGenericCallVsComparison(t *testing.T) {
	file := mustParse(t, `
fn f(a: i32, b: i32) -> i32 {
    let x = make<i32>(a);
    let y = a < b;
    return x + y;
}
`)
	fn := file.Decls[0].(*ast.FuncDecl)
	xDecl := fn.Body.Stmts[0].(*ast.DeclStmt)
	call, ok := xDecl.Decl.Init.(*ast.CallExpr)
	if !ok || len(call.TypeArgs) != 1 {
		t.Fatalf("x init = %+v", xDecl.Decl.Init)
	}
	yDecl := fn.Body.Stmts[1].(*ast.DeclStmt)
	cmp, ok := yDecl.Decl.Init.(*ast.BinaryExpr)
	if !ok || cmp.Op.String() != "<" {
		t.Fatalf("y init = %+v", yDecl.Decl.Init)
	}
}

func TestDeferErrdeferAndErrorExpressions(t *testing.T) {
	file := mustParse(t, `
fn f() -> i32? {
    defer { cleanup(); };
    errdefer { rollback(); };
    let v = try g();
    let e = catch g();
    let w = g() orelse 0;
    return v!;
}
`)
	fn := file.Decls[0].(*ast.FuncDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.DeferStmt); !ok {
		t.Fatalf("stmt[0] = %T", fn.Body.Stmts[0])
	}
	if _, ok := fn.Body.Stmts[1].(*ast.ErrDeferStmt); !ok {
		t.Fatalf("stmt[1] = %T", fn.Body.Stmts[1])
	}
	vDecl := fn.Body.Stmts[2].(*ast.DeclStmt)
	if _, ok := vDecl.Decl.Init.(*ast.TryErrExpr); !ok {
		t.Fatalf("v init = %T", vDecl.Decl.Init)
	}
	eDecl := fn.Body.Stmts[3].(*ast.DeclStmt)
	if _, ok := eDecl.Decl.Init.(*ast.CatchErrExpr); !ok {
		t.Fatalf("e init = %T", eDecl.Decl.Init)
	}
	wDecl := fn.Body.Stmts[4].(*ast.DeclStmt)
	if _, ok := wDecl.Decl.Init.(*ast.OrElseExpr); !ok {
		t.Fatalf("w init = %T", wDecl.Decl.Init)
	}
	ret := fn.Body.Stmts[5].(*ast.ReturnStmt)
	if _, ok := ret.Value.(*ast.ErrUnwrapExpr); !ok {
		t.Fatalf("return value = %T", ret.Value)
	}
}

func TestErrorInPlaceLiteral(t *testing.T) {
	file := mustParse(t, `fn f() -> i32? { return @NotFound; }`)
	fn := file.Decls[0].(*ast.FuncDecl)
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	lit, ok := ret.Value.(*ast.ErrorInPlaceExpr)
	if !ok || lit.Name != "NotFound" {
		t.Fatalf("return value = %+v", ret.Value)
	}
}

func TestReturnNotAllowedInsideDefer(t *testing.T) {
	_, errs := ParseFile([]byte(`
fn f() -> void {
    defer { return; }
}
`), "test.dmz")
	if len(errs) == 0 {
		t.Fatalf("expected a PAR011 diagnostic for return-in-defer, got none")
	}
	found := false
	for _, e := range errs {
		if e.Code == "PAR011" {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v, want one with code PAR011", errs)
	}
}

func TestStructNotAllowedInIfCondition(t *testing.T) {
	// Inside an if-condition, `Foo{` must not be parsed as a struct
	// instantiation — the brace belongs to the if's body.
	file := mustParse(t, `
fn f(flag: bool) -> void {
    if (flag) {
        let x = 1;
    }
}
`)
	fn := file.Decls[0].(*ast.FuncDecl)
	ifs := fn.Body.Stmts[0].(*ast.IfStmt)
	if _, ok := ifs.Cond.(*ast.DeclRefExpr); !ok {
		t.Fatalf("cond = %T", ifs.Cond)
	}
	if len(ifs.Then.Stmts) != 1 {
		t.Fatalf("then body = %+v", ifs.Then.Stmts)
	}
}

func TestExternFuncDecl(t *testing.T) {
	file := mustParse(t, `extern fn puts(s: *i8) -> i32;`)
	fn := file.Decls[0].(*ast.FuncDecl)
	if !fn.IsExtern || fn.Body != nil {
		t.Fatalf("fn = %+v", fn)
	}
}

func TestGenericStructAndFuncDecl(t *testing.T) {
	file := mustParse(t, `
struct List<T> {
    items: []T,
}

fn first<T>(l: List<T>) -> T? {
    return l.items[0];
}
`)
	sd := file.Decls[0].(*ast.StructDecl)
	if len(sd.TypeParams) != 1 || sd.TypeParams[0].Name != "T" {
		t.Fatalf("struct type params = %+v", sd.TypeParams)
	}
	fn := file.Decls[1].(*ast.FuncDecl)
	if len(fn.TypeParams) != 1 {
		t.Fatalf("fn type params = %+v", fn.TypeParams)
	}
	if _, ok := fn.ReturnType.(*ast.OptionalType); !ok {
		t.Fatalf("fn return type = %T", fn.ReturnType)
	}
}

func TestMemberFuncDecl(t *testing.T) {
	file := mustParse(t, `
fn area.Rect() -> i32 {
    return .w * .h;
}
`)
	fn := file.Decls[0].(*ast.FuncDecl)
	if !fn.IsMemberFunction() || fn.StructOwner != "Rect" {
		t.Fatalf("fn = %+v", fn)
	}
	ret := fn.Body.Stmts[0].(*ast.ReturnStmt)
	bin := ret.Value.(*ast.BinaryExpr)
	if _, ok := bin.LHS.(*ast.SelfMemberExpr); !ok {
		t.Fatalf("LHS = %T", bin.LHS)
	}
}

func TestArrayAndSliceTypes(t *testing.T) {
	file := mustParse(t, `
fn f(a: [4]i32, b: []i32) -> void {
}
`)
	fn := file.Decls[0].(*ast.FuncDecl)
	if _, ok := fn.Params[0].Type.(*ast.ArrayType); !ok {
		t.Fatalf("param 0 type = %T", fn.Params[0].Type)
	}
	if _, ok := fn.Params[1].Type.(*ast.SliceType); !ok {
		t.Fatalf("param 1 type = %T", fn.Params[1].Type)
	}
}

func TestTestDecl(t *testing.T) {
	file := mustParse(t, `
test "addition works" {
    let x = 1 + 1;
}
`)
	td, ok := file.Decls[0].(*ast.TestDecl)
	if !ok || td.Name != "addition works" {
		t.Fatalf("decl = %+v", file.Decls[0])
	}
}

func TestSynchronizationRecoversAfterError(t *testing.T) {
	file, errs := ParseFile([]byte(`
fn broken( -> i32 {
    return 1;
}

fn ok() -> i32 {
    return 2;
}
`), "test.dmz")
	if len(errs) == 0 {
		t.Fatalf("expected at least one diagnostic for the malformed declaration")
	}
	found := false
	for _, d := range file.Decls {
		if fn, ok := d.(*ast.FuncDecl); ok && fn.Name == "ok" {
			found = true
		}
	}
	if !found {
		t.Fatalf("parser did not recover to parse the following declaration; decls=%+v", file.Decls)
	}
}
