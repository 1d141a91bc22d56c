package driver

import (
	"fmt"
	"os"

	"github.com/dmzlang/dmzc/internal/cfg"
	"github.com/dmzlang/dmzc/internal/lexer"
	"github.com/dmzlang/dmzc/internal/module"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
)

// dumpLexer tokenizes every source file independently and prints its
// token stream, honoring the phase ordering guarantee (spec.md §4.8:
// "the driver must not print a dump of phase k until every file's
// phase k-1 has completed") by finishing one file's scan before moving
// to the next.
func dumpLexer(sources []string, opts Options) {
	for _, path := range sources {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(opts.Stderr, "%s: cannot read '%s': %v\n", red("error"), path, err)
			continue
		}
		fmt.Fprintf(opts.Stdout, "%s %s\n", cyan("--"), path)
		l := lexer.New(content, path)
		for {
			tok := l.NextToken()
			fmt.Fprintf(opts.Stdout, "  %-12s %-20q %s\n", tok.Kind, tok.Literal, tok.Pos)
			if tok.Kind == token.EOF {
				break
			}
		}
	}
}

// dumpAST prints the merged module tree's untyped declarations, one
// line per declaration via its own String(), walking each module node's
// children after its declarations.
func dumpAST(tree *module.Tree, opts Options) {
	var walk func(n *module.Node)
	walk = func(n *module.Node) {
		for _, d := range n.Decls {
			fmt.Fprintln(opts.Stdout, d.String())
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(tree.Root)
}

// dumpImports prints the merged module forest's import registry: every
// recorded edge, plus whether its target path resolved.
func dumpImports(tree *module.Tree, opts Options) {
	for _, imp := range tree.Imports {
		from := "<root>"
		if len(imp.From) > 0 {
			from = joinPath(imp.From)
		}
		target := joinPath(imp.Path)
		resolves := tree.Root.Lookup(imp.Path) != nil
		status := green("ok")
		if !resolves {
			status = red("unresolved")
		}
		fmt.Fprintf(opts.Stdout, "  %s -> %s [%s]\n", from, target, status)
	}
}

func joinPath(path []string) string {
	out := ""
	for i, seg := range path {
		if i > 0 {
			out += "::"
		}
		out += seg
	}
	return out
}

// dumpResolved prints the resolved tree's symbol table: every
// function, struct, and error-group's fully-qualified symbol name next
// to its resolved type, the detail level useful for debugging C4/C6
// without needing the full IR.
func dumpResolved(root *resolved.ModuleDecl, opts Options) {
	var walk func(m *resolved.ModuleDecl)
	walk = func(m *resolved.ModuleDecl) {
		for _, d := range m.Decls {
			switch v := d.(type) {
			case *resolved.FuncDecl:
				fmt.Fprintf(opts.Stdout, "func %s : %s\n", v.SymbolName(), v.Signature())
			case *resolved.StructDecl:
				fmt.Fprintf(opts.Stdout, "struct %s\n", v.SymbolName())
				for _, meth := range v.Methods {
					fmt.Fprintf(opts.Stdout, "  method %s : %s\n", meth.SymbolName(), meth.Signature())
				}
			case *resolved.ErrGroupDecl:
				fmt.Fprintf(opts.Stdout, "errgroup %s\n", v.SymbolName())
			case *resolved.VarDecl:
				fmt.Fprintf(opts.Stdout, "var %s : %s\n", v.SymbolName(), v.Type)
			case *resolved.TestDecl:
				fmt.Fprintf(opts.Stdout, "test %q -> %s\n", v.Name, v.SymbolName())
			}
		}
		for _, c := range m.Children {
			walk(c)
		}
	}
	walk(root)
}

// dumpCFG prints, per function, the block count and edge list computed
// by internal/cfg's builder — enough to see the shape of the graph the
// flow checks (CFG001-CFG004) ran against, without dragging in a
// separate graph-rendering dependency.
func dumpCFG(root *resolved.ModuleDecl, opts Options) {
	walkFuncs(root, func(fd *resolved.FuncDecl) {
		if fd.Body == nil {
			return
		}
		graph := cfg.Build(fd)
		edges := 0
		for _, b := range graph.Blocks {
			edges += len(b.Succs)
		}
		fmt.Fprintf(opts.Stdout, "%s %s: %d blocks, %d edges, entry=%d exit=%d\n",
			cyan("cfg"), fd.SymbolName(), len(graph.Blocks), edges, graph.Entry, graph.Exit)
	})
}
