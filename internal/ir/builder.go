package ir

import (
	"fmt"

	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
)

// Options controls the behavior of a single Lower call.
type Options struct {
	// ModuleName is not used to build struct/global symbol names: the
	// merged module tree's own fully-qualified symbol names already
	// carry the module path. It only names the module in the text
	// dump's header, and empty is valid.
	ModuleName string
	// TestMode emits a test-runner main calling every TestDecl instead
	// of the synthetic __builtin_main wrapper (spec.md §4.5, "Main
	// wrapper"; §6 `-test`).
	TestMode bool
}

// Builder lowers one resolved.ModuleDecl tree into a Module. One
// Builder lowers exactly one compilation; grounded on
// internal/elaborate/elaborate.go (teacher)'s single-pass Elaborator
// struct threading a shared cache of already-lowered nodes through a
// tree walk.
type Builder struct {
	opts Options
	mod  *Module
	errs []*errors.Report

	structTypes map[any]*StructType // keyed by *resolved.StructDecl or *resolved.Specialization
	sliceTypes  map[string]*StructType
	optTypes    map[string]*StructType

	errGlobals    map[*resolved.ErrDecl]*Global
	successGlobal *Global
	stringGlobals map[string]*Global // interned string-literal byte backing, keyed by content

	funcs map[string]*Func // by symbol name, populated during the prototype pass

	println *Func // the reserved builtin, seeded so CallExpr lowering can always find it
}

// Lower runs the full C7 pipeline over root: struct prototype+body
// passes, error-tag globals, function prototype pass (every concrete
// function and every already-monomorphized specialization), function
// body pass, and the main/test-runner wrapper synthesis (spec.md
// §4.5). Diagnostics use IR001; an internal invariant violation
// (a DefaultInit type reaching lowering, an unresolved call target)
// reports IR001 rather than panicking, per spec.md §7's taxonomy.
func Lower(root *resolved.ModuleDecl, opts Options) (*Module, []*errors.Report) {
	b := &Builder{
		opts:        opts,
		mod:         &Module{Name: opts.ModuleName},
		structTypes: map[any]*StructType{},
		sliceTypes:  map[string]*StructType{},
		optTypes:    map[string]*StructType{},
		errGlobals:    map[*resolved.ErrDecl]*Global{},
		stringGlobals: map[string]*Global{},
		funcs:         map[string]*Func{},
	}

	var tests []*resolved.TestDecl
	collectTests(root, &tests)

	b.collectErrorGlobals(root)
	b.declareStructs(root)
	b.bodyStructs(root)
	b.declareFuncs(root)
	b.declareTests(tests)
	b.emitFuncBodies(root)
	b.emitTestBodies(tests)

	if opts.TestMode {
		b.emitTestRunner(tests)
	} else if mainFn, ok := b.funcs["__builtin_main"]; ok {
		b.emitMainWrapper(mainFn)
	}

	return b.mod, b.errs
}

func (b *Builder) error(code string, pos token.Pos, msg string, args ...any) {
	b.errs = append(b.errs, errors.New(code, "ir", pos, fmt.Sprintf(msg, args...)))
}

func collectTests(mod *resolved.ModuleDecl, out *[]*resolved.TestDecl) {
	for _, d := range mod.Decls {
		if td, ok := d.(*resolved.TestDecl); ok {
			*out = append(*out, td)
		}
	}
	for _, c := range mod.Children {
		collectTests(c, out)
	}
}

// walkFuncs visits every plain and member function declared anywhere
// in the module tree, rooted at mod, calling visit once per FuncDecl
// (the template; specializations are visited separately by callers
// that need them, via FuncDecl.Specializations).
func walkFuncs(mod *resolved.ModuleDecl, visit func(*resolved.FuncDecl)) {
	for _, d := range mod.Decls {
		switch v := d.(type) {
		case *resolved.FuncDecl:
			visit(v)
		case *resolved.StructDecl:
			for _, m := range v.Methods {
				visit(m)
			}
		}
	}
	for _, c := range mod.Children {
		walkFuncs(c, visit)
	}
}

func walkStructs(mod *resolved.ModuleDecl, visit func(*resolved.StructDecl)) {
	for _, d := range mod.Decls {
		if sd, ok := d.(*resolved.StructDecl); ok {
			visit(sd)
		}
	}
	for _, c := range mod.Children {
		walkStructs(c, visit)
	}
}

func walkErrGroups(mod *resolved.ModuleDecl, visit func(*resolved.ErrGroupDecl)) {
	for _, d := range mod.Decls {
		if eg, ok := d.(*resolved.ErrGroupDecl); ok {
			visit(eg)
		}
	}
	for _, c := range mod.Children {
		walkErrGroups(c, visit)
	}
}
