package sema

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/module"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// registerBuiltins inserts the one reserved builtin, `println`, into
// the global scope before anything else is resolved (Open Question
// decision 1; SPEC_FULL.md item 7). Its signature
// `extern fn println(msg: &[]u8) -> void` matches the original's
// always-available printf/println special case, modeled here as an
// ordinary extern declaration rather than a parser special case so the
// rest of the pipeline (call resolution, IR lowering) treats it
// uniformly with any other extern function.
func (r *Resolver) registerBuiltins() {
	fn := &resolved.FuncDecl{
		Name:       "println",
		IsExtern:   true,
		Params:     []*resolved.ParamDecl{{Name: "msg", Type: types.Pointer{Inner: types.Slice{Inner: types.Number{Kind: types.Unsigned, Bits: 8}}}}},
		ReturnType: types.Void{},
	}
	fn.Symbol = "__builtin_println"
	r.println = fn
	r.scopes[0]["println"] = fn
}

// declareModule allocates the resolved.ModuleDecl tree shape (phase A)
// and, for every struct/error-group declared anywhere in it, a
// forward-registered placeholder whose declaration identity is fixed
// immediately (its Type's Decl field is the placeholder's own pointer)
// so that field/parameter types elsewhere in the tree can reference it
// regardless of declaration order.
func (r *Resolver) declareModule(node *module.Node) *resolved.ModuleDecl {
	mod := &resolved.ModuleDecl{
		Name:     node.Name,
		Children: map[string]*resolved.ModuleDecl{},
	}
	mod.Pos = node.Pos
	mod.Type = types.Module{Decl: mod, Name: node.PathString()}
	r.moduleByNode[node] = mod
	r.moduleByPath[node.PathString()] = mod

	for name, child := range node.Children {
		cm := r.declareModule(child)
		cm.Parent = mod
		mod.Children[name] = cm
	}

	for _, d := range node.Decls {
		switch v := d.(type) {
		case *ast.StructDecl:
			sd := &resolved.StructDecl{
				Name:            v.Name,
				IsPub:           v.IsPub,
				Specializations: map[string]*resolved.Specialization{},
			}
			sd.Pos = v.Pos
			sd.Type = types.Struct{Decl: sd, Name: v.Name}
			r.structDecls[v] = sd
			mod.Decls = append(mod.Decls, sd)
		case *ast.ErrGroupDecl:
			eg := &resolved.ErrGroupDecl{Name: v.Name}
			eg.Pos = v.Pos
			eg.Type = types.ErrorGroup{Decl: eg, Name: v.Name}
			r.errGroupDecls[v] = eg
			mod.Decls = append(mod.Decls, eg)
		}
	}

	return mod
}

// resolveModuleSignatures is phase B: it fills in every placeholder
// allocated by declareModule (struct fields, error-group constants) and
// resolves every function's parameter/return types and every top-level
// variable's declared type and initializer, all without touching any
// function body. Running signatures and top-level var initializers in
// the same pass (rather than deferring the latter to the body pass)
// mirrors how the original's resolve_ast_decl resolves everything that
// isn't a function Block in one traversal; as in the original, a
// top-level const that references a later-declared const in the same
// module is a forward reference and is not supported.
func (r *Resolver) resolveModuleSignatures(node *module.Node) {
	mod := r.moduleByNode[node]
	prevModule := r.currentModule
	r.currentModule = mod
	defer func() { r.currentModule = prevModule }()

	for _, d := range node.Decls {
		switch v := d.(type) {
		case *ast.StructDecl:
			r.resolveStructFields(v, r.structDecls[v])
		case *ast.ErrGroupDecl:
			r.resolveErrGroup(v, r.errGroupDecls[v])
		case *ast.FuncDecl:
			fd := r.resolveFuncSignature(v)
			mod.Decls = append(mod.Decls, fd)
		case *ast.VarDecl:
			vd := r.resolveTopLevelVar(v)
			mod.Decls = append(mod.Decls, vd)
		}
	}

	for _, child := range node.Children {
		r.resolveModuleSignatures(child)
	}
}

func (r *Resolver) resolveStructFields(src *ast.StructDecl, dst *resolved.StructDecl) {
	gp := r.pushGenericParams(src.TypeParams, dst)
	defer r.popGenericParams(gp)

	for _, f := range src.Fields {
		dst.Fields = append(dst.Fields, &resolved.FieldDecl{
			Orig: f,
			Name: f.Name,
			Type: r.resolveType(f.Type),
			Pos:  f.Pos,
		})
	}
}

func (r *Resolver) resolveErrGroup(src *ast.ErrGroupDecl, dst *resolved.ErrGroupDecl) {
	for _, e := range src.Errors {
		dst.Errors = append(dst.Errors, &resolved.ErrDecl{
			Orig: e,
			Name: e.Name,
			Type: dst.Type,
			Pos:  e.Pos,
		})
	}
}

func (r *Resolver) resolveFuncSignature(src *ast.FuncDecl) *resolved.FuncDecl {
	fd := &resolved.FuncDecl{
		Name:            src.Name,
		IsExtern:        src.IsExtern,
		IsPub:           src.IsPub,
		Specializations: map[string]*resolved.Specialization{},
	}
	fd.Pos = src.Pos
	r.funcDecls[src] = fd

	if src.StructOwner == "" && src.Name == "println" {
		r.error(errors.RES011, src.Pos, "%q is a reserved builtin identifier and cannot be redeclared", src.Name)
	}

	if src.StructOwner != "" {
		if owner := r.findStructByName(src.StructOwner); owner != nil {
			fd.StructOwner = owner
		} else {
			r.error(errors.RES001, src.Pos, "unknown struct %q named as member-function owner", src.StructOwner)
		}
	}

	gp := r.pushGenericParams(src.TypeParams, fd)
	defer r.popGenericParams(gp)
	fd.TypeParams = gp

	for _, p := range src.Params {
		fd.Params = append(fd.Params, &resolved.ParamDecl{
			Orig: p,
			Name: p.Name,
			Type: r.resolveType(p.Type),
			Pos:  p.Pos,
		})
	}
	if src.ReturnType != nil {
		fd.ReturnType = r.resolveType(src.ReturnType)
	} else {
		fd.ReturnType = types.Void{}
	}

	if fd.StructOwner != nil {
		fd.StructOwner.Methods = append(fd.StructOwner.Methods, fd)
	}
	return fd
}

func (r *Resolver) resolveTopLevelVar(src *ast.VarDecl) *resolved.VarDecl {
	vd := &resolved.VarDecl{
		Name:    src.Name,
		IsConst: src.IsConst,
	}
	vd.Pos = src.Pos
	r.varDecls[src] = vd
	if src.Type != nil {
		vd.Type = r.resolveType(src.Type)
	}
	if src.Init != nil {
		vd.Init = r.resolveExpr(src.Init)
		if vd.Type == nil {
			vd.Type = vd.Init.ExprType()
		}
	} else if vd.Type == nil {
		r.error(errors.RES003, src.Pos, "variable %q needs either a declared type or an initializer", src.Name)
		vd.Type = types.Void{}
	}
	return vd
}

// findStructByName searches the currently active module and its
// ancestors for a struct declared directly inside one of them, the
// same unqualified lookup order DeclRef/NamedType use.
func (r *Resolver) findStructByName(name string) *resolved.StructDecl {
	for mod := r.currentModule; mod != nil; mod = mod.Parent {
		for _, d := range mod.Decls {
			if sd, ok := d.(*resolved.StructDecl); ok && sd.Name == name {
				return sd
			}
		}
	}
	return nil
}

// resolveModuleBodies is phase C: it resolves every function body,
// top-level test block, and already-signature-resolved generic
// function's template body (held pending until first instantiation is
// not needed here: the template's own body is resolved once against
// its Generic-typed parameters, and on-demand monomorphization clones
// and re-resolves it against concrete types from generics.go).
func (r *Resolver) resolveModuleBodies(node *module.Node) {
	mod := r.moduleByNode[node]
	prevModule := r.currentModule
	r.currentModule = mod
	defer func() { r.currentModule = prevModule }()

	for _, d := range node.Decls {
		switch v := d.(type) {
		case *ast.FuncDecl:
			r.resolveFuncBody(v, r.funcDecls[v])
		case *ast.TestDecl:
			td := r.resolveTestDecl(v)
			mod.Decls = append(mod.Decls, td)
		}
	}

	for _, child := range node.Children {
		r.resolveModuleBodies(child)
	}
}

func (r *Resolver) resolveFuncBody(src *ast.FuncDecl, fd *resolved.FuncDecl) {
	if src.Body == nil {
		return // extern declaration
	}
	prevFunc, prevSelf := r.currentFunc, r.currentSelf
	r.currentFunc = fd
	r.currentSelf = nil
	r.pushScope()
	defer func() {
		r.popScope()
		r.currentFunc, r.currentSelf = prevFunc, prevSelf
	}()

	gp := r.reenterGenericParams(fd.TypeParams)
	defer r.popGenericParams(gp)

	for i, p := range fd.Params {
		r.insert(p.Name, p, p.Pos)
		if i == 0 && fd.StructOwner != nil {
			r.currentSelf = p
		}
	}

	fd.Body = r.resolveBlock(src.Body)
}

func (r *Resolver) resolveTestDecl(src *ast.TestDecl) *resolved.TestDecl {
	td := &resolved.TestDecl{Name: src.Name}
	td.Pos = src.Pos
	prevFunc := r.currentFunc
	r.currentFunc = nil
	r.pushScope()
	td.Body = r.resolveBlock(src.Body)
	r.popScope()
	r.currentFunc = prevFunc
	return td
}

