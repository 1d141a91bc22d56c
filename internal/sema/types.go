package sema

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/consteval"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// resolveType turns a syntactic ast.Type into its resolved types.Type,
// per spec.md §4.2: "a type is an `&`-prefixed optional reference, then
// a base (keyword or identifier), then zero or more `[]`/`[N]`
// suffixes, then optional `?`." The AST already separates these into
// RefType/OptionalType/SliceType/ArrayType/PointerType wrapper nodes
// around a base VoidType/BoolType/NumberType/NamedType, so this is a
// direct structural translation; only NamedType requires a lookup.
func (r *Resolver) resolveType(t ast.Type) types.Type {
	switch v := t.(type) {
	case *ast.VoidType:
		return types.Void{}
	case *ast.BoolType:
		return types.Bool{}
	case *ast.NumberType:
		kind := types.Signed
		switch {
		case v.Float:
			kind = types.Float
		case v.Unsigned:
			kind = types.Unsigned
		}
		return types.Number{Kind: kind, Bits: v.Bits}
	case *ast.NamedType:
		return r.resolveNamedType(v)
	case *ast.SliceType:
		return types.Slice{Inner: r.resolveType(v.Elem)}
	case *ast.ArrayType:
		return r.resolveArrayType(v)
	case *ast.PointerType:
		return types.Pointer{Inner: r.resolveType(v.Elem)}
	case *ast.RefType:
		return types.Pointer{Inner: r.resolveType(v.Elem)}
	case *ast.OptionalType:
		return types.Optional{Inner: r.resolveType(v.Elem)}
	case *ast.FunctionType:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = r.resolveType(p)
		}
		return types.Function{Params: params, Ret: r.resolveType(v.Ret)}
	default:
		r.error(errors.RES003, t.Position(), "unresolvable type %s", t)
		return types.Void{}
	}
}

func (r *Resolver) resolveArrayType(v *ast.ArrayType) types.Type {
	lengthExpr := r.resolveExpr(v.Len)
	val, ok := consteval.Evaluate(lengthExpr)
	n, isInt := val.AsInt()
	if !ok || !isInt || n < 0 {
		r.error(errors.CE001, v.Pos, "array length must be a non-negative constant integer expression")
		n = 0
	}
	return types.Array{Inner: r.resolveType(v.Elem), Len: n}
}

// resolveNamedType resolves a bare identifier in type position: first
// against the active generic-parameter scopes (a use of `T` inside a
// generic declaration), then against the current module and its
// ancestors (a struct or error-group), reporting RES001 if nothing
// matches. Explicit `<T,...>` generic arguments on the name select a
// specialization once the base declaration and the arguments are both
// resolved.
func (r *Resolver) resolveNamedType(v *ast.NamedType) types.Type {
	if g, ok := r.lookupGeneric(v.Name); ok {
		return g
	}

	base := r.lookupTypeDecl(v.Name)
	if base == nil {
		r.error(errors.RES001, v.Pos, "unknown type %q", v.Name)
		return types.Void{}
	}

	if len(v.TypeArgs) == 0 {
		return base
	}

	args := make([]types.Type, len(v.TypeArgs))
	for i, a := range v.TypeArgs {
		args[i] = r.resolveType(a)
	}
	if sd, ok := asStructDecl(base); ok {
		return r.specializeStructType(sd, args, v.Pos)
	}
	r.error(errors.RES006, v.Pos, "%q does not take generic type arguments", v.Name)
	return base
}

// lookupTypeDecl searches for a struct or error-group named name,
// starting at the current module and walking outward to the root.
func (r *Resolver) lookupTypeDecl(name string) types.Type {
	for mod := r.currentModule; mod != nil; mod = mod.Parent {
		if t, ok := findTypeDeclIn(mod.Decls, name); ok {
			return t
		}
	}
	return nil
}

func findTypeDeclIn(decls []resolved.Decl, name string) (types.Type, bool) {
	for _, d := range decls {
		switch v := d.(type) {
		case *resolved.StructDecl:
			if v.Name == name {
				return v.Type, true
			}
		case *resolved.ErrGroupDecl:
			if v.Name == name {
				return v.Type, true
			}
		}
	}
	return nil, false
}

func asStructDecl(t types.Type) (*resolved.StructDecl, bool) {
	s, ok := t.(types.Struct)
	if !ok {
		return nil, false
	}
	sd, ok := s.Decl.(*resolved.StructDecl)
	return sd, ok
}
