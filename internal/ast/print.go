package ast

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented textual dump of decls to w, descending into
// function, test, and control-flow bodies. The driver's `-ast-dump`
// mode does not use it; it prints one String() line per declaration.
func Dump(w io.Writer, decls []Decl) {
	for _, d := range decls {
		dumpDecl(w, d, 0)
	}
}

func indent(w io.Writer, depth int) {
	fmt.Fprint(w, strings.Repeat("  ", depth))
}

func dumpDecl(w io.Writer, d Decl, depth int) {
	indent(w, depth)
	switch n := d.(type) {
	case *FuncDecl:
		fmt.Fprintf(w, "FuncDecl %s\n", n.String())
		if n.Body != nil {
			dumpStmt(w, n.Body, depth+1)
		}
	case *StructDecl:
		fmt.Fprintf(w, "StructDecl %s\n", n.Name)
		for _, f := range n.Fields {
			indent(w, depth+1)
			fmt.Fprintf(w, "FieldDecl %s\n", f.String())
		}
	case *ErrGroupDecl:
		fmt.Fprintf(w, "ErrGroupDecl %s\n", n.Name)
	case *TestDecl:
		fmt.Fprintf(w, "TestDecl %q\n", n.Name)
		dumpStmt(w, n.Body, depth+1)
	default:
		fmt.Fprintf(w, "%T %s\n", d, d.String())
	}
}

func dumpStmt(w io.Writer, s Stmt, depth int) {
	indent(w, depth)
	switch n := s.(type) {
	case *Block:
		fmt.Fprintln(w, "Block")
		for _, st := range n.Stmts {
			dumpStmt(w, st, depth+1)
		}
	case *IfStmt:
		fmt.Fprintln(w, "IfStmt")
		dumpStmt(w, n.Then, depth+1)
		if n.Else != nil {
			dumpStmt(w, n.Else, depth+1)
		}
	case *WhileStmt:
		fmt.Fprintln(w, "WhileStmt")
		dumpStmt(w, n.Body, depth+1)
	case *ForStmt:
		fmt.Fprintln(w, "ForStmt")
		dumpStmt(w, n.Body, depth+1)
	case *SwitchStmt:
		fmt.Fprintln(w, "SwitchStmt")
		for _, c := range n.Cases {
			dumpStmt(w, c.Body, depth+1)
		}
		if n.Else != nil {
			dumpStmt(w, n.Else, depth+1)
		}
	default:
		fmt.Fprintln(w, s.String())
	}
}
