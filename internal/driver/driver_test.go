package driver

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestRunLLVMDumpProducesAddFunction(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "add.dmz", `
fn add(a: i32, b: i32) -> i32 { return a + b; }
`)

	var stdout, stderr bytes.Buffer
	res := Run([]string{path}, Options{Dump: DumpLLVM, Stdout: &stdout, Stderr: &stderr})

	assert.Equal(t, 0, res.ExitCode)
	assert.Empty(t, stderr.String())
	assert.Contains(t, stdout.String(), "add")
}

func TestRunRefusesToLowerAfterResolveError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "bad.dmz", `
fn broken() -> i32 { return undefined_name; }
`)

	var stdout, stderr bytes.Buffer
	res := Run([]string{path}, Options{Dump: DumpLLVM, Stdout: &stdout, Stderr: &stderr})

	assert.Equal(t, 1, res.ExitCode)
	assert.NotEmpty(t, stderr.String())
	assert.Empty(t, stdout.String())
}

func TestRunCFGDumpReportsMissingReturn(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "maybe.dmz", `
fn maybe(flag: bool) -> i32 {
    if (flag) {
        return 1;
    }
}
`)

	var stdout, stderr bytes.Buffer
	res := Run([]string{path}, Options{Dump: DumpCFG, Stdout: &stdout, Stderr: &stderr})

	assert.Equal(t, 1, res.ExitCode)
	assert.Contains(t, stderr.String(), "doesn't return a value on every path")
}

func TestRunResDumpListsResolvedSymbols(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "point.dmz", `
struct Point { x: i32, y: i32 }
fn origin() -> Point { return Point{x: 0, y: 0}; }
`)

	var stdout, stderr bytes.Buffer
	res := Run([]string{path}, Options{Dump: DumpResolve, Stdout: &stdout, Stderr: &stderr})

	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, stdout.String(), "struct")
	assert.Contains(t, stdout.String(), "Point")
}
