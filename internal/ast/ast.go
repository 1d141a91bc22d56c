// Package ast defines the untyped abstract syntax tree produced by the
// parser. Every node family is a Go interface with one struct per leaf;
// downcasting happens through a type switch rather than an inheritance
// hierarchy.
package ast

import (
	"fmt"
	"strings"

	"github.com/dmzlang/dmzc/internal/token"
)

// Node is implemented by every AST node.
type Node interface {
	Position() token.Pos
	String() string
}

// Decl is a top-level or nested declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression.
type Expr interface {
	Node
	exprNode()
}

// Type is a syntactic type as written by the user, before resolution.
type Type interface {
	Node
	typeNode()
}

// File is one parsed source file: an optional module header, imports,
// and top-level declarations. The module merger (C3) folds many Files
// into one tree.
type File struct {
	Path    string
	Module  *ModuleDecl // nil if the file declares no module
	Imports []*ImportDecl
	Decls   []Decl
	HasMain bool // true if this file declares a non-member function named "main"
	Pos     token.Pos
}

func (f *File) Position() token.Pos { return f.Pos }
func (f *File) String() string {
	var b strings.Builder
	if f.Module != nil {
		b.WriteString(f.Module.String())
		b.WriteString("\n")
	}
	for _, imp := range f.Imports {
		b.WriteString(imp.String())
		b.WriteString("\n")
	}
	for _, d := range f.Decls {
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

// ModuleDecl is `module A::B::C;`.
type ModuleDecl struct {
	Path []string
	Pos  token.Pos
}

func (m *ModuleDecl) Position() token.Pos { return m.Pos }
func (m *ModuleDecl) String() string      { return "module " + strings.Join(m.Path, "::") + ";" }

// ImportDecl is `import A::B::C [as D];`.
type ImportDecl struct {
	Path  []string
	Alias string // "" if no alias
	Pos   token.Pos
}

func (i *ImportDecl) Position() token.Pos { return i.Pos }
func (i *ImportDecl) String() string {
	s := "import " + strings.Join(i.Path, "::")
	if i.Alias != "" {
		s += " as " + i.Alias
	}
	return s + ";"
}

// GenericParam is one identifier in a generic type-parameter list (the
// "generic-type parameter" declaration family).
type GenericParam struct {
	Name string
	Pos  token.Pos
}

func (g *GenericParam) Position() token.Pos { return g.Pos }
func (g *GenericParam) String() string      { return g.Name }
func (g *GenericParam) declNode()           {}

// ParamDecl is one function parameter.
type ParamDecl struct {
	Name string
	Type Type
	Pos  token.Pos
}

func (p *ParamDecl) Position() token.Pos { return p.Pos }
func (p *ParamDecl) String() string      { return fmt.Sprintf("%s: %s", p.Name, p.Type) }
func (p *ParamDecl) declNode()           {}

// FuncDecl is a function declaration, covering both the plain and
// extern forms ("[extern] fn name[.struct_name][<T,...>](params) ->
// type { block }" or "extern fn ... ;"): an extern declaration uses
// this same shape with IsExtern set and Body nil.
type FuncDecl struct {
	Name        string
	StructOwner string // "" unless this is a member function ("fn name.Owner(...)")
	TypeParams  []*GenericParam
	Params      []*ParamDecl
	ReturnType  Type
	Body        *Block // nil for extern declarations
	IsExtern    bool
	IsPub       bool
	Pos         token.Pos
}

func (f *FuncDecl) Position() token.Pos { return f.Pos }
func (f *FuncDecl) String() string {
	name := f.Name
	if f.StructOwner != "" {
		name = f.Name + "." + f.StructOwner
	}
	if len(f.TypeParams) > 0 {
		parts := make([]string, len(f.TypeParams))
		for i, tp := range f.TypeParams {
			parts[i] = tp.Name
		}
		name += "<" + strings.Join(parts, ", ") + ">"
	}
	prefix := "fn "
	if f.IsExtern {
		prefix = "extern fn "
	}
	return fmt.Sprintf("%s%s(...) -> %s", prefix, name, f.ReturnType)
}
func (f *FuncDecl) declNode() {}

// IsMemberFunction reports whether this declares a method on a struct.
func (f *FuncDecl) IsMemberFunction() bool { return f.StructOwner != "" }

// IsGeneric reports whether this function declares type parameters.
func (f *FuncDecl) IsGeneric() bool { return len(f.TypeParams) > 0 }

// FieldDecl is one struct field.
type FieldDecl struct {
	Name string
	Type Type
	Pos  token.Pos
}

func (f *FieldDecl) Position() token.Pos { return f.Pos }
func (f *FieldDecl) String() string      { return fmt.Sprintf("%s: %s", f.Name, f.Type) }
func (f *FieldDecl) declNode()           {}

// StructDecl is a (possibly generic) struct declaration.
type StructDecl struct {
	Name       string
	TypeParams []*GenericParam
	Fields     []*FieldDecl
	IsPub      bool
	Pos        token.Pos
}

func (s *StructDecl) Position() token.Pos { return s.Pos }
func (s *StructDecl) String() string {
	return fmt.Sprintf("struct %s { %d fields }", s.Name, len(s.Fields))
}
func (s *StructDecl) declNode()        {}
func (s *StructDecl) IsGeneric() bool  { return len(s.TypeParams) > 0 }

// VarDecl is the declaration half of a `let`/`const` statement.
type VarDecl struct {
	Name    string
	Type    Type // nil if the type is to be inferred from Init
	Init    Expr // nil if there is no initializer
	IsConst bool
	Pos     token.Pos
}

func (v *VarDecl) Position() token.Pos { return v.Pos }
func (v *VarDecl) String() string {
	kw := "let"
	if v.IsConst {
		kw = "const"
	}
	return fmt.Sprintf("%s %s", kw, v.Name)
}
func (v *VarDecl) declNode() {}

// ErrDecl is one error constant inside an error-group declaration.
type ErrDecl struct {
	Name string
	Pos  token.Pos
}

func (e *ErrDecl) Position() token.Pos { return e.Pos }
func (e *ErrDecl) String() string      { return e.Name }
func (e *ErrDecl) declNode()           {}

// ErrGroupDecl declares a named group of error constants.
type ErrGroupDecl struct {
	Name   string
	Errors []*ErrDecl
	Pos    token.Pos
}

func (e *ErrGroupDecl) Position() token.Pos { return e.Pos }
func (e *ErrGroupDecl) String() string {
	return fmt.Sprintf("err %s { %d errors }", e.Name, len(e.Errors))
}
func (e *ErrGroupDecl) declNode() {}

// TestDecl is a `test "name" { ... }` block.
type TestDecl struct {
	Name string
	Body *Block
	Pos  token.Pos
}

func (t *TestDecl) Position() token.Pos { return t.Pos }
func (t *TestDecl) String() string      { return fmt.Sprintf("test %q", t.Name) }
func (t *TestDecl) declNode()           {}
