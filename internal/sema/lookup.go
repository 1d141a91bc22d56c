package sema

import (
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
)

// findDeclByName returns the declaration named name directly inside
// mod (not its children), or nil.
func findDeclByName(mod *resolved.ModuleDecl, name string) resolved.Decl {
	for _, d := range mod.Decls {
		switch v := d.(type) {
		case *resolved.FuncDecl:
			if v.Name == name {
				return v
			}
		case *resolved.StructDecl:
			if v.Name == name {
				return v
			}
		case *resolved.VarDecl:
			if v.Name == name {
				return v
			}
		case *resolved.ErrGroupDecl:
			if v.Name == name {
				return v
			}
		}
	}
	return nil
}

// resolveUnqualifiedDecl looks up name first through the lexical scope
// stack (locals/params), then through the current module and its
// ancestors (spec.md §4.3: "DeclRefExpr looks up by identifier through
// the lexical scope stack, then (if unresolved) through the enclosing
// module").
func (r *Resolver) resolveUnqualifiedDecl(name string) (resolved.Decl, bool) {
	if d, ok := r.lookup(name); ok {
		return d, true
	}
	for mod := r.currentModule; mod != nil; mod = mod.Parent {
		if d := findDeclByName(mod, name); d != nil {
			return d, true
		}
	}
	return nil, false
}

// resolveModulePath walks path from the root module, reporting MOD004
// if any segment is missing. Aliases recorded against the current
// module by the import registry are expanded first.
func (r *Resolver) resolveModulePath(path []string, pos token.Pos) *resolved.ModuleDecl {
	path = r.expandAlias(path)
	root := r.currentModule
	for root.Parent != nil {
		root = root.Parent
	}
	cur := root
	for _, seg := range path {
		child, ok := cur.Children[seg]
		if !ok {
			r.error(errors.MOD004, pos, "no module named %q", joinPath(path))
			return nil
		}
		cur = child
	}
	return cur
}

// expandAlias rewrites a single-segment alias path to the full path
// recorded in the import registry for the module currently being
// resolved, or returns path unchanged if it isn't an alias.
func (r *Resolver) expandAlias(path []string) []string {
	if len(path) != 1 {
		return path
	}
	fromKey := joinPath(currentModulePath(r.currentModule))
	for _, imp := range r.importsByFrom[fromKey] {
		if imp.Alias == path[0] {
			return imp.Path
		}
	}
	return path
}

func currentModulePath(mod *resolved.ModuleDecl) []string {
	if mod == nil || mod.Parent == nil {
		return nil
	}
	return append(currentModulePath(mod.Parent), mod.Name)
}

// checkVisibility reports RES010 if decl is a non-pub Func/StructDecl
// declared in a module other than the one currently being resolved.
func (r *Resolver) checkVisibility(decl resolved.Decl, declaringModule *resolved.ModuleDecl, pos token.Pos) {
	if declaringModule == r.currentModule {
		return
	}
	var isPub bool
	var name string
	switch v := decl.(type) {
	case *resolved.FuncDecl:
		isPub, name = v.IsPub, v.Name
	case *resolved.StructDecl:
		isPub, name = v.IsPub, v.Name
	default:
		return
	}
	if !isPub {
		r.error(errors.RES010, pos, "%q is not declared pub and is not visible outside its module", name)
	}
}
