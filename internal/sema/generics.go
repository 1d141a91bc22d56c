package sema

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// genericScope maps one declaration's type-parameter names to the
// types.Generic leaf that stands for them while its own template body
// is being resolved.
type genericScope map[string]types.Generic

// pushGenericParams allocates a resolved.GenericParam for each of
// params (owned by owner, a *resolved.FuncDecl or *resolved.StructDecl,
// stored as `any` as types.Generic.Decl always is) and makes their
// names resolve to a types.Generic leaf for the remainder of owner's
// signature/body resolution.
func (r *Resolver) pushGenericParams(params []*ast.GenericParam, owner any) []*resolved.GenericParam {
	scope := genericScope{}
	var out []*resolved.GenericParam
	for _, gp := range params {
		g := types.Generic{Decl: owner, Name: gp.Name}
		scope[gp.Name] = g
		out = append(out, &resolved.GenericParam{Orig: gp.Pos, Name: gp.Name, Type: g})
	}
	r.genericStack = append(r.genericStack, scope)
	return out
}

// reenterGenericParams pushes an already-built []*resolved.GenericParam
// (from the declaration pass) back onto the active stack for the body
// pass, without reallocating the underlying types.Generic leaves.
func (r *Resolver) reenterGenericParams(params []*resolved.GenericParam) []*resolved.GenericParam {
	scope := genericScope{}
	for _, p := range params {
		scope[p.Name] = p.Type
	}
	r.genericStack = append(r.genericStack, scope)
	return params
}

func (r *Resolver) popGenericParams(_ []*resolved.GenericParam) {
	r.genericStack = r.genericStack[:len(r.genericStack)-1]
}

func (r *Resolver) lookupGeneric(name string) (types.Generic, bool) {
	for i := len(r.genericStack) - 1; i >= 0; i-- {
		if g, ok := r.genericStack[i][name]; ok {
			return g, true
		}
	}
	return types.Generic{}, false
}

// specializeFunc returns the *resolved.FuncDecl's specialization for
// args, monomorphizing on first use: per spec.md §4.3, the resulting
// parameter-type tuple is hashed and reused if a matching specialization
// already exists, otherwise the template body is cloned and every
// Generic-typed leaf is substituted by the concrete args.
func (r *Resolver) specializeFunc(fd *resolved.FuncDecl, args []types.Type) *resolved.Specialization {
	key := types.SpecializationKey(args)
	if sp, ok := fd.Specializations[key]; ok {
		return sp
	}
	subs := map[string]types.Type{}
	for i, tp := range fd.TypeParams {
		if i < len(args) {
			subs[tp.Name] = args[i]
		}
	}
	sp := &resolved.Specialization{
		Args:       args,
		Body:       substituteBlock(fd.Body, subs),
		SymbolName: specializedSymbolName(fd.SymbolName(), args),
	}
	fd.Specializations[key] = sp
	return sp
}

// specializeStructType returns the Struct type for sd instantiated with
// args, analogous to specializeFunc but for a generic struct: the
// specialized struct becomes the nominal type carried by every
// instantiating expression (spec.md §4.3's "specialized struct becomes
// the nominal type stored in every instantiating expression").
func (r *Resolver) specializeStructType(sd *resolved.StructDecl, args []types.Type, pos token.Pos) types.Type {
	key := types.SpecializationKey(args)
	if _, ok := sd.Specializations[key]; ok {
		return types.Specialized{Base: sd.Type, Args: args}
	}
	subs := map[string]types.Type{}
	for i, tp := range sd.TypeParams {
		if i < len(args) {
			subs[tp.Name] = args[i]
		}
	}
	fields := make([]*resolved.FieldDecl, len(sd.Fields))
	for i, f := range sd.Fields {
		fields[i] = &resolved.FieldDecl{Orig: f.Orig, Name: f.Name, Type: f.Type.Substitute(subs), Pos: f.Pos}
	}
	sd.Specializations[key] = &resolved.Specialization{
		Args:       args,
		Fields:     fields,
		SymbolName: specializedSymbolName(sd.SymbolName(), args),
	}
	return types.Specialized{Base: sd.Type, Args: args}
}

func specializedSymbolName(base string, args []types.Type) string {
	name := base
	for _, a := range args {
		name += "__" + sanitizeSymbol(a.String())
	}
	return name
}

func sanitizeSymbol(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
