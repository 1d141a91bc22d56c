package module

import (
	"testing"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSrc(t *testing.T, name, src string) *ast.File {
	t.Helper()
	file, errs := parser.ParseFile([]byte(src), name)
	require.Empty(t, errs, "unexpected parse errors in %s: %v", name, errs)
	return file
}

func TestMergeFileWithNoModuleHeaderLandsAtRoot(t *testing.T) {
	m := NewMerger(nil)
	f := parseSrc(t, "a.dmz", `fn main() -> void { return; }`)

	tree := m.Merge([]*ast.File{f})
	assert.Empty(t, m.Errors())
	require.Len(t, tree.Root.Decls, 1)
	assert.Equal(t, "main", declName(tree.Root.Decls[0]))
}

func TestMergeNestsDeclsUnderModulePath(t *testing.T) {
	m := NewMerger(nil)
	f := parseSrc(t, "geo.dmz", `
module shapes::geo;
struct Point { x: i32, y: i32 }
`)

	tree := m.Merge([]*ast.File{f})
	require.Empty(t, m.Errors())

	shapes := tree.Root.Children["shapes"]
	require.NotNil(t, shapes)
	geo := shapes.Children["geo"]
	require.NotNil(t, geo)
	assert.Equal(t, []string{"shapes", "geo"}, geo.Path)
	require.Len(t, geo.Decls, 1)
	assert.Equal(t, "Point", declName(geo.Decls[0]))
}

func TestMergeUnionsDeclarationsFromTwoFilesSameModule(t *testing.T) {
	m := NewMerger(nil)
	f1 := parseSrc(t, "a.dmz", `
module util;
fn add(a: i32, b: i32) -> i32 { return a + b; }
`)
	f2 := parseSrc(t, "b.dmz", `
module util;
fn sub(a: i32, b: i32) -> i32 { return a - b; }
`)

	tree := m.Merge([]*ast.File{f1, f2})
	require.Empty(t, m.Errors())

	util := tree.Root.Children["util"]
	require.NotNil(t, util)
	require.Len(t, util.Decls, 2)
	names := []string{declName(util.Decls[0]), declName(util.Decls[1])}
	assert.ElementsMatch(t, []string{"add", "sub"}, names)
}

func TestMergeReportsDuplicateDeclarationInSameModule(t *testing.T) {
	m := NewMerger(nil)
	f1 := parseSrc(t, "a.dmz", `
module util;
fn add(a: i32, b: i32) -> i32 { return a + b; }
`)
	f2 := parseSrc(t, "b.dmz", `
module util;
fn add(a: i32, b: i32) -> i32 { return a + b; }
`)

	tree := m.Merge([]*ast.File{f1, f2})
	require.Len(t, m.Errors(), 1)
	assert.Equal(t, errors.MOD003, m.Errors()[0].Code)

	util := tree.Root.Children["util"]
	require.NotNil(t, util)
	assert.Len(t, util.Decls, 1, "the colliding second declaration must be dropped, not merged")
}

func TestMergeDeepPathSharesIntermediateNodeAcrossFiles(t *testing.T) {
	m := NewMerger(nil)
	f1 := parseSrc(t, "a.dmz", `
module a::b::c;
fn one() -> void { return; }
`)
	f2 := parseSrc(t, "d.dmz", `
module a::b::d;
fn two() -> void { return; }
`)

	tree := m.Merge([]*ast.File{f1, f2})
	require.Empty(t, m.Errors())

	b := tree.Root.Children["a"].Children["b"]
	require.NotNil(t, b)
	assert.NotNil(t, b.Children["c"])
	assert.NotNil(t, b.Children["d"])
	assert.Empty(t, b.Decls, "b itself has no direct declarations, only the nested c/d nodes")
}

func TestValidateReportsUnresolvedImport(t *testing.T) {
	m := NewMerger(nil)
	f := parseSrc(t, "a.dmz", `
module app;
import does::not::exist;
fn main() -> void { return; }
`)

	tree := m.Merge([]*ast.File{f})
	m.Validate(tree)

	require.Len(t, m.Errors(), 1)
	assert.Equal(t, errors.MOD004, m.Errors()[0].Code)
}

func TestValidateAcceptsResolvedImport(t *testing.T) {
	m := NewMerger(nil)
	f1 := parseSrc(t, "app.dmz", `
module app;
import util;
fn main() -> void { return; }
`)
	f2 := parseSrc(t, "util.dmz", `
module util;
pub fn helper() -> void { return; }
`)

	tree := m.Merge([]*ast.File{f1, f2})
	m.Validate(tree)
	assert.Empty(t, m.Errors())
}

func TestValidateDetectsDirectImportCycle(t *testing.T) {
	m := NewMerger(nil)
	f1 := parseSrc(t, "a.dmz", `
module a;
import b;
`)
	f2 := parseSrc(t, "b.dmz", `
module b;
import a;
`)

	tree := m.Merge([]*ast.File{f1, f2})
	m.Validate(tree)

	var codes []string
	for _, r := range m.Errors() {
		codes = append(codes, r.Code)
	}
	assert.Contains(t, codes, errors.MOD005)
}

func TestDiscoverFilesSkipsMissingIncludeDirWithWarningNotError(t *testing.T) {
	m := NewMerger([]string{"/does/not/exist/at/all"})
	files, err := m.DiscoverFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NotEmpty(t, m.Warnings())
}
