// Package driver implements the orchestration layer (C8): it wires the
// lex/parse/merge/resolve/flow-check/lower phases together, honors the
// `-dump` early-exit modes, and hands the finished IR module to the
// external backend over a pipe (spec.md §1, "out of scope (external
// collaborators)"; §5's "driver orchestration" row). Grounded on
// `internal/pipeline/pipeline.go` (teacher) for the phase-sequencing,
// timed-stage shape, generalized from its single-process evaluator
// handoff to an external-process handoff, and on `cmd/ailang/main.go`
// (teacher) for the colored progress/error output
// (`github.com/fatih/color`).
package driver

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmzlang/dmzc/internal/cfg"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/ir"
	"github.com/dmzlang/dmzc/internal/module"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/sema"
	"github.com/fatih/color"
)

// DumpMode selects one of the six early-exit dump points spec.md §6's
// CLI lists (`-lexer-dump|-ast-dump|-import-dump|-res-dump|-cfg-dump|
// -llvm-dump`); the zero value runs the full pipeline through to
// backend handoff.
type DumpMode string

const (
	DumpNone    DumpMode = ""
	DumpLexer   DumpMode = "lexer"
	DumpAST     DumpMode = "ast"
	DumpImport  DumpMode = "import"
	DumpResolve DumpMode = "res"
	DumpCFG     DumpMode = "cfg"
	DumpLLVM    DumpMode = "llvm"
)

// Options configures one driver run, mirroring the `compiler [options]
// <source_files...>` CLI surface of spec.md §6.
type Options struct {
	IncludeDirs []string // -I, repeatable
	Output      string   // -o
	Dump        DumpMode
	PrintStats  bool // -print-stats: print per-phase timings before backend handoff
	ModuleMode  bool // -module: produce an object file instead of an executable
	Run         bool // -run: JIT execute
	Test        bool // -test: compile and run tests

	// Backend is the executable the finished IR module is piped to once
	// no dump mode short-circuits the run. Left configurable rather than
	// hardcoded, since the backend itself is an external collaborator
	// spec.md explicitly places out of scope.
	Backend string

	Stdout io.Writer
	Stderr io.Writer
}

// Result is what one driver Run produced, regardless of how far it got
// before a dump mode or a failure ended the run.
type Result struct {
	ExitCode     int
	PhaseTimings map[string]time.Duration
}

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

// Run sequences the full pipeline over sources per spec.md §4.8's phase
// ordering: merge (C3), resolve (C4, which folds in C6's constant
// evaluator inline), flow-check (C5), lower (C7), then handoff (C8).
// Each phase's diagnostics are aggregated; the driver refuses to
// advance past any phase that reported an error (spec.md §7:
// "aggregates 'any component failed' into a global flag and refuses to
// advance to subsequent phases"), exactly like the failed-dump-mode
// early exits.
func Run(sources []string, opts Options) Result {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	res := Result{PhaseTimings: map[string]time.Duration{}}

	if opts.Dump == DumpLexer {
		dumpLexer(sources, opts)
		return res
	}

	start := time.Now()
	merger := module.NewMerger(opts.IncludeDirs)
	tree, err := merger.Run(sources)
	res.PhaseTimings["merge"] = time.Since(start)
	if err != nil {
		fmt.Fprintf(opts.Stderr, "%s: %v\n", red("error"), err)
		res.ExitCode = 1
		return res
	}
	if reportErrors(opts, merger.Errors()) {
		res.ExitCode = 1
		return res
	}

	if opts.Dump == DumpAST {
		dumpAST(tree, opts)
		return res
	}
	if opts.Dump == DumpImport {
		dumpImports(tree, opts)
		return res
	}

	start = time.Now()
	resolver := sema.New()
	root := resolver.Run(tree)
	res.PhaseTimings["resolve"] = time.Since(start)
	if reportErrors(opts, resolver.Errors()) {
		res.ExitCode = 1
		return res
	}

	if opts.Dump == DumpResolve {
		dumpResolved(root, opts)
		return res
	}

	start = time.Now()
	cfgErrs := runFlowChecks(root)
	res.PhaseTimings["cfg"] = time.Since(start)
	if reportErrors(opts, cfgErrs) {
		res.ExitCode = 1
		return res
	}

	if opts.Dump == DumpCFG {
		dumpCFG(root, opts)
		return res
	}

	start = time.Now()
	mod, irErrs := ir.Lower(root, ir.Options{ModuleName: strings.Join(opts.IncludeDirs, ","), TestMode: opts.Test})
	res.PhaseTimings["lower"] = time.Since(start)
	if reportErrors(opts, irErrs) {
		res.ExitCode = 1
		return res
	}

	if opts.Dump == DumpLLVM {
		fmt.Fprint(opts.Stdout, mod.String())
		return res
	}

	if opts.PrintStats {
		printStats(opts, res.PhaseTimings)
	}

	res.ExitCode = handoff(mod, opts)
	return res
}

// reportErrors prints every report in reps (spec.md §7's user-visible
// "<file>:<line>:<col>: error: <message>" format) and returns true if
// any were present, so the caller can refuse to advance.
func reportErrors(opts Options, reps []*errors.Report) bool {
	for _, r := range reps {
		fmt.Fprintf(opts.Stderr, "%s: %s: %s\n", r.Pos.String(), red("error"), r.Message)
	}
	return len(reps) > 0
}

func printStats(opts Options, timings map[string]time.Duration) {
	fmt.Fprintf(opts.Stdout, "%s\n", cyan("phase timings:"))
	for _, phase := range []string{"merge", "resolve", "cfg", "lower"} {
		if d, ok := timings[phase]; ok {
			fmt.Fprintf(opts.Stdout, "  %-10s %s\n", phase, d)
		}
	}
}

// runFlowChecks walks every function (plain and member) in the
// resolved tree and runs the full CFG check suite (cfg.Check) over
// each one, aggregating their reports the same way declareFuncs/
// emitFuncBodies in internal/ir walk the tree once per pass.
func runFlowChecks(root *resolved.ModuleDecl) []*errors.Report {
	var reps []*errors.Report
	walkFuncs(root, func(fd *resolved.FuncDecl) {
		if fd.Body == nil {
			return
		}
		reps = append(reps, cfg.Check(fd)...)
	})
	return reps
}

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
