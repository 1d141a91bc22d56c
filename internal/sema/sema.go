// Package sema implements the two-phase resolver (C4): a declaration
// pass that builds the resolved tree's skeleton (every module, struct,
// function, error-group, and top-level variable, with its fully
// resolved type but no body), followed by a body pass that resolves
// every statement and expression against that skeleton, type-checks,
// constant-folds (via internal/consteval), and tracks defer/errdefer
// scopes. Grounded on
// `_examples/original_source/include/semantic/Semantic.hpp`'s `Sema`
// class (`resolve_ast_decl` then `resolve_ast_body`, `m_scopes`,
// `m_defers`, `ScopeRAII`), and on the teacher's own two-pass split in
// `internal/elaborate` (a single elaborator walking the surface tree
// and building a typed core tree alongside it).
package sema

import (
	"fmt"

	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/module"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
)

// Resolver holds all state threaded through the declaration and body
// passes. One Resolver resolves exactly one module.Tree.
type Resolver struct {
	errs     []*errors.Report
	warnings []*errors.Report

	// scopes is the lexical scope stack; scopes[0] is the (implicit)
	// global/builtin scope pushed once for the whole run, mirroring
	// Sema::m_globalScope. Each frame maps a bare identifier to the
	// resolved.Decl it refers to within that lexical block.
	scopes []map[string]resolved.Decl
	// defers is the per-scope defer/errdefer stack, index-aligned with
	// scopes: defers[i] holds, in push order, every defer/errdefer
	// statement pushed while scopes[i] is the innermost scope. A
	// ReturnStmt snapshots every frame from the current function's body
	// scope down to the innermost, in declaration order, into a
	// DeferRefStmt; a block that falls off its end without a return
	// instead takes only its own frame (resolved.Block.Defers).
	defers []*deferFrame

	currentFunc   *resolved.FuncDecl
	currentModule *resolved.ModuleDecl
	currentSelf   *resolved.ParamDecl // the implicit first parameter of the member function being resolved, or nil

	// structDecls/errGroupDecls/funcDecls index every declaration by its
	// originating ast node, populated by the declaration pass and
	// consulted by both the rest of the declaration pass (for
	// cross-references) and the body pass.
	structDecls    map[*ast.StructDecl]*resolved.StructDecl
	errGroupDecls  map[*ast.ErrGroupDecl]*resolved.ErrGroupDecl
	funcDecls      map[*ast.FuncDecl]*resolved.FuncDecl
	varDecls       map[*ast.VarDecl]*resolved.VarDecl
	moduleByNode   map[*module.Node]*resolved.ModuleDecl
	moduleByPath   map[string]*resolved.ModuleDecl
	importsByFrom  map[string][]*module.ImportEntry
	genericStack   []genericScope

	println *resolved.FuncDecl
}

// deferFrame holds the defer/errdefer statements pushed while one
// lexical scope is innermost, in a single push-ordered vector (spec.md
// §3: "appended to the innermost defer vector", singular).
type deferFrame struct {
	entries []resolved.DeferEntry
}

// New creates a Resolver ready to Run over tree.
func New() *Resolver {
	r := &Resolver{
		structDecls:    map[*ast.StructDecl]*resolved.StructDecl{},
		errGroupDecls:  map[*ast.ErrGroupDecl]*resolved.ErrGroupDecl{},
		funcDecls:      map[*ast.FuncDecl]*resolved.FuncDecl{},
		varDecls:       map[*ast.VarDecl]*resolved.VarDecl{},
		moduleByNode:   map[*module.Node]*resolved.ModuleDecl{},
		moduleByPath:   map[string]*resolved.ModuleDecl{},
		importsByFrom:  map[string][]*module.ImportEntry{},
	}
	r.pushScope() // global/builtin scope, never popped
	return r
}

// Errors returns every diagnostic accumulated during Run.
func (r *Resolver) Errors() []*errors.Report { return r.errs }

func (r *Resolver) error(code string, pos token.Pos, format string, args ...any) {
	r.errs = append(r.errs, errors.New(code, errors.Phase(code), pos, fmt.Sprintf(format, args...)))
}

func (r *Resolver) pushScope() {
	r.scopes = append(r.scopes, map[string]resolved.Decl{})
	r.defers = append(r.defers, &deferFrame{})
}

func (r *Resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
	r.defers = r.defers[:len(r.defers)-1]
}

// insert adds decl to the innermost scope under name, reporting RES002
// if name already exists in that same scope (shadowing an outer scope
// is allowed; redeclaring within one block is not).
func (r *Resolver) insert(name string, decl resolved.Decl, pos token.Pos) {
	top := r.scopes[len(r.scopes)-1]
	if _, exists := top[name]; exists {
		r.error(errors.RES002, pos, "redeclaration of %q in this scope", name)
		return
	}
	if name == "println" {
		r.error(errors.RES011, pos, "%q is a reserved builtin identifier and cannot be redeclared", name)
		return
	}
	top[name] = decl
}

// lookup searches the scope stack from innermost to outermost.
func (r *Resolver) lookup(name string) (resolved.Decl, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if d, ok := r.scopes[i][name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Run resolves tree end to end: declaration pass, body pass, and the
// post-order symbol-naming pass. Symbol naming runs once the structs
// and error groups are declared, again once the function signatures
// are resolved (so a specialization made later extends a named base),
// and a last time for the test blocks the body pass adds. It returns the resolved module forest
// even when errors were reported, so callers that want a best-effort
// tree for tooling can still use it; Errors() reports whether it is
// trustworthy.
func (r *Resolver) Run(tree *module.Tree) *resolved.ModuleDecl {
	for _, imp := range tree.Imports {
		key := joinPath(imp.From)
		r.importsByFrom[key] = append(r.importsByFrom[key], imp)
	}

	r.registerBuiltins()

	root := r.declareModule(tree.Root)
	assignSymbolNames(root)
	r.resolveModuleSignatures(tree.Root)
	assignSymbolNames(root)
	r.resolveModuleBodies(tree.Root)
	r.checkStructFieldCycles()
	assignSymbolNames(root)
	return root
}

func joinPath(path []string) string {
	s := ""
	for i, p := range path {
		if i > 0 {
			s += "::"
		}
		s += p
	}
	return s
}
