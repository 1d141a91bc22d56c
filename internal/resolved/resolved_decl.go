package resolved

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// ModuleDecl is one node of the merged module tree after resolution:
// the root module (Name == "") and every nested `module A::B::C`
// level resolve to one of these, owning the resolved declarations
// that live directly inside it plus its nested child modules. This
// mirrors the original's ResolvedModuleDecl, which nests the same way
// the untyped module.Node tree built by internal/module does.
type ModuleDecl struct {
	declBase
	Name     string
	Parent   *ModuleDecl // nil for the root module
	Children map[string]*ModuleDecl
	Decls    []Decl
	Type     types.Module
}

func (m *ModuleDecl) resolvedDeclNode() {}

// GenericParam is one resolved type parameter of a generic function or
// struct; it owns the types.Generic that Generic-typed leaves
// elsewhere in the same declaration's body refer to.
type GenericParam struct {
	Orig token.Pos
	Name string
	Type types.Generic
}

// ParamDecl is one resolved function parameter. It implements Decl (a
// bare SymbolName of its own parameter name, never module-qualified)
// so a DeclRef inside the function body can point at it directly, the
// same way it points at a resolved.VarDecl for a local.
type ParamDecl struct {
	Orig ast.Decl
	Name string
	Type types.Type
	Pos  token.Pos
}

func (p *ParamDecl) Position() token.Pos   { return p.Pos }
func (p *ParamDecl) SymbolName() string    { return p.Name }
func (p *ParamDecl) resolvedDeclNode()     {}

// FuncDecl is a resolved function declaration, covering plain,
// extern, member, and generic functions uniformly. For a generic
// function, Body/CFG resolve against Generic-typed leaves; concrete
// specializations are recorded in Specializations, keyed by
// types.SpecializationKey(args), and populated on demand by sema the
// first time a call site supplies concrete type arguments.
type FuncDecl struct {
	declBase
	Name            string
	StructOwner     *StructDecl // nil unless this is a member function
	TypeParams      []*GenericParam
	Params          []*ParamDecl
	ReturnType      types.Type
	Body            *Block // nil for extern declarations
	IsExtern        bool
	IsPub           bool
	Specializations map[string]*Specialization
}

func (f *FuncDecl) resolvedDeclNode() {}
func (f *FuncDecl) IsGeneric() bool   { return len(f.TypeParams) > 0 }
func (f *FuncDecl) Signature() types.Function {
	params := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return types.Function{Params: params, Ret: f.ReturnType}
}

// Specialization is one on-demand monomorphization of a generic
// function or struct: the concrete Args it was instantiated with, its
// own resolved Body lowered against those concrete types, and the
// SymbolName IR lowering should emit it under.
type Specialization struct {
	Args       []types.Type
	Body       *Block      // nil for a specialized struct
	Fields     []*FieldDecl // nil for a specialized function
	SymbolName string
}

// FieldDecl is one resolved struct field.
type FieldDecl struct {
	Orig ast.Decl
	Name string
	Type types.Type
	Pos  token.Pos
}

func (f *FieldDecl) Position() token.Pos { return f.Pos }

// StructDecl is a resolved (possibly generic) struct declaration.
type StructDecl struct {
	declBase
	Name            string
	TypeParams      []*GenericParam
	Fields          []*FieldDecl
	Methods         []*FuncDecl
	IsPub           bool
	Type            types.Struct
	Specializations map[string]*Specialization
}

func (s *StructDecl) resolvedDeclNode() {}
func (s *StructDecl) IsGeneric() bool   { return len(s.TypeParams) > 0 }

// FindField returns the field named name, or nil.
func (s *StructDecl) FindField(name string) *FieldDecl {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FindMethod returns the member function named name, or nil.
func (s *StructDecl) FindMethod(name string) *FuncDecl {
	for _, m := range s.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// VarDecl is a resolved `let`/`const` binding, at module scope or
// inside a function body (DeclStmt wraps the latter).
type VarDecl struct {
	declBase
	Name    string
	Type    types.Type
	Init    Expr // nil if there is no initializer
	IsConst bool
}

func (v *VarDecl) resolvedDeclNode() {}

// ErrDecl is one resolved error constant inside an error-group.
type ErrDecl struct {
	Orig ast.Decl
	Name string
	Type types.ErrorGroup
	Pos  token.Pos
}

func (e *ErrDecl) Position() token.Pos { return e.Pos }

// ErrGroupDecl is a resolved named group of error constants.
type ErrGroupDecl struct {
	declBase
	Name   string
	Errors []*ErrDecl
	Type   types.ErrorGroup
}

func (e *ErrGroupDecl) resolvedDeclNode() {}

// FindError returns the error constant named name, or nil.
func (e *ErrGroupDecl) FindError(name string) *ErrDecl {
	for _, d := range e.Errors {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// TestDecl is a resolved `test "name" { ... }` block, lowered to its
// own nullary function at codegen time (symbol name
// "<module>.__test.<n>").
type TestDecl struct {
	declBase
	Name string
	Body *Block
}

func (t *TestDecl) resolvedDeclNode() {}
