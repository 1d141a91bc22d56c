// Command dmzc is the compiler's CLI entry point (spec.md §6): `dmzc
// [options] <source_files...>`. Grounded on `cmd/ailang/main.go`
// (teacher) for its stdlib `flag` + colored-output style, generalized
// from AILANG's `run`/`repl`/`test` subcommand dispatch to a
// subcommand-free single binary gated purely on flags, per spec.md's
// "-lexer-dump|-ast-dump|-import-dump|-res-dump|-cfg-dump|-llvm-dump"
// /"-module"/"-run"/"-test" flag list.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dmzlang/dmzc/internal/driver"
	"github.com/fatih/color"
)

// includeDirs collects repeated `-I <dir>` flags into an ordered list,
// the idiomatic flag.Value shape for a repeatable string flag.
type includeDirs []string

func (d *includeDirs) String() string { return strings.Join(*d, ",") }
func (d *includeDirs) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func main() {
	var (
		dirs         includeDirs
		output       = flag.String("o", "", "output file")
		lexerDump    = flag.Bool("lexer-dump", false, "dump the token stream and exit")
		astDump      = flag.Bool("ast-dump", false, "dump the parsed AST and exit")
		importDump   = flag.Bool("import-dump", false, "dump the resolved import graph and exit")
		resDump      = flag.Bool("res-dump", false, "dump the resolved symbol table and exit")
		cfgDump      = flag.Bool("cfg-dump", false, "dump per-function control-flow graphs and exit")
		llvmDump     = flag.Bool("llvm-dump", false, "dump the lowered IR module and exit")
		printStats   = flag.Bool("print-stats", false, "print phase timings")
		moduleMode   = flag.Bool("module", false, "produce an object file instead of an executable")
		runMode      = flag.Bool("run", false, "JIT execute the program")
		testMode     = flag.Bool("test", false, "compile and run tests")
		backend      = flag.String("backend", "", "path to the backend executable the IR module is piped to")
	)
	flag.Var(&dirs, "I", "add a directory to the module include path (repeatable)")
	flag.Usage = printUsage
	flag.Parse()

	sources := flag.Args()
	if len(sources) == 0 && !*lexerDump {
		printUsage()
		os.Exit(1)
	}
	for _, s := range sources {
		if !strings.HasSuffix(s, ".dmz") {
			fmt.Fprintf(os.Stderr, "%s: source file %q must have a .dmz extension\n", red("error"), s)
			os.Exit(1)
		}
	}

	dump := driver.DumpNone
	switch {
	case *lexerDump:
		dump = driver.DumpLexer
	case *astDump:
		dump = driver.DumpAST
	case *importDump:
		dump = driver.DumpImport
	case *resDump:
		dump = driver.DumpResolve
	case *cfgDump:
		dump = driver.DumpCFG
	case *llvmDump:
		dump = driver.DumpLLVM
	}

	res := driver.Run(sources, driver.Options{
		IncludeDirs: dirs,
		Output:      *output,
		Dump:        dump,
		PrintStats:  *printStats,
		ModuleMode:  *moduleMode,
		Run:         *runMode,
		Test:        *testMode,
		Backend:     *backend,
	})
	os.Exit(res.ExitCode)
}

var red = color.New(color.FgRed).SprintFunc()

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: dmzc [options] <source_files...>")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Options:")
	flag.PrintDefaults()
}
