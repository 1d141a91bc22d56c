package ir

import (
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// seedPrintln registers the reserved println builtin (spec.md §9 Open
// Question 1; SPEC_FULL.md item 7) directly as an extern *Func, since
// it is never declared by any resolved.FuncDecl in the tree — sema
// seeds it into the root scope for name resolution, but it has no
// module-tree node for declareFuncs to walk.
func (b *Builder) seedPrintln() {
	f := &Func{
		Name:       "__builtin_println",
		IsExtern:   true,
		Status:     DeclaredSignatureOnly,
		ReturnType: VoidType{},
		Params: []*Param{{
			Name: "msg",
			Typ:  PointerType{Elem: b.sliceType(types.Number{Kind: types.Unsigned, Bits: 8})},
			Attr: AttrByRef,
		}},
	}
	b.funcs["__builtin_println"] = f
	b.println = f
	b.mod.addFunc(f)
}

// declareStructs is the struct prototype pass (spec.md §3, "Struct
// types are created in a first pass (opaque) and bodied in a second
// pass to permit self-referential and forward-referenced fields"):
// every non-generic struct and every already-monomorphized
// specialization gets an empty *StructType registered by identity
// before any field type is lowered, so a field of pointer/slice type
// referring back to the struct (or to a struct declared later in
// source order) resolves against a real, if still-opaque, type.
func (b *Builder) declareStructs(root *resolved.ModuleDecl) {
	walkStructs(root, func(sd *resolved.StructDecl) {
		if sd.IsGeneric() {
			for _, sp := range sd.Specializations {
				st := &StructType{Name: sp.SymbolName}
				b.structTypes[sp] = st
				b.mod.addStruct(st)
			}
			return
		}
		st := &StructType{Name: sd.SymbolName()}
		b.structTypes[sd] = st
		b.mod.addStruct(st)
	})
}

// bodyStructs is the struct body pass: fills in Fields for every
// StructType declareStructs created, now that every struct in the
// module (including ones declared later in source order) has an
// opaque type to point at.
func (b *Builder) bodyStructs(root *resolved.ModuleDecl) {
	walkStructs(root, func(sd *resolved.StructDecl) {
		if sd.IsGeneric() {
			for _, sp := range sd.Specializations {
				st := b.structTypes[sp]
				st.Fields = make([]Type, len(sp.Fields))
				for i, f := range sp.Fields {
					st.Fields[i] = b.lowerType(f.Type)
				}
			}
			return
		}
		st := b.structTypes[sd]
		st.Fields = make([]Type, len(sd.Fields))
		for i, f := range sd.Fields {
			st.Fields[i] = b.lowerType(f.Type)
		}
	})
}

// collectErrorGlobals interns one global string constant per error
// constant declared anywhere in the tree, plus the err.str.SUCCESS
// sentinel (spec.md §6), named "err.str.<module-path>.<name>".
func (b *Builder) collectErrorGlobals(root *resolved.ModuleDecl) {
	b.successGlobal = &Global{Name: "err.str.SUCCESS", Typ: IntType{Bits: 8, Signed: false}, Value: "SUCCESS"}
	b.mod.addGlobal(b.successGlobal)

	walkErrGroups(root, func(eg *resolved.ErrGroupDecl) {
		for _, e := range eg.Errors {
			g := &Global{
				Name:  "err.str." + eg.SymbolName() + "." + e.Name,
				Typ:   IntType{Bits: 8, Signed: false},
				Value: eg.Name + "." + e.Name,
			}
			b.errGlobals[e] = g
			b.mod.addGlobal(g)
		}
	})
}

// declareFuncs is the function prototype pass (spec.md §4.5 item 1):
// every non-generic function (plain, member, extern), and every
// already-monomorphized specialization of a generic function, gets a
// lowered *Func signature with struct-return/optional-return and
// parameter-attribute conventions applied. Generic templates
// themselves get a placeholder *Func with Status ==
// GenericTemplateOnly and no Blocks — spec.md: "For a generic function,
// emit nothing for the template itself; emit each stored specialization
// separately."
func (b *Builder) declareFuncs(root *resolved.ModuleDecl) {
	b.seedPrintln()
	walkFuncs(root, func(fd *resolved.FuncDecl) {
		if fd.IsGeneric() {
			b.funcs[fd.SymbolName()] = &Func{Name: fd.SymbolName(), Status: GenericTemplateOnly}
			for _, sp := range fd.Specializations {
				subs := specializationSubs(fd, sp.Args)
				b.declareOneFunc(sp.SymbolName, paramTypes(fd.Params, subs), fd.ReturnType.Substitute(subs), fd.StructOwner, fd.IsExtern)
			}
			return
		}
		b.declareOneFunc(fd.SymbolName(), paramTypesPlain(fd.Params), fd.ReturnType, fd.StructOwner, fd.IsExtern)
	})
}

// specializationSubs rebuilds the generic-parameter-name -> concrete-
// type substitution map for one specialization, the same way
// internal/sema/generics.go's specializeFunc does when it first
// monomorphizes the body; the prototype pass needs its own copy since
// resolved.Specialization only stores Args, not the map.
func specializationSubs(fd *resolved.FuncDecl, args []types.Type) map[string]types.Type {
	subs := map[string]types.Type{}
	for i, tp := range fd.TypeParams {
		if i < len(args) {
			subs[tp.Name] = args[i]
		}
	}
	return subs
}

type namedType struct {
	Name string
	Type types.Type
}

func paramTypesPlain(params []*resolved.ParamDecl) []namedType {
	out := make([]namedType, len(params))
	for i, p := range params {
		out[i] = namedType{Name: p.Name, Type: p.Type}
	}
	return out
}

func paramTypes(params []*resolved.ParamDecl, subs map[string]types.Type) []namedType {
	out := make([]namedType, len(params))
	for i, p := range params {
		out[i] = namedType{Name: p.Name, Type: p.Type.Substitute(subs)}
	}
	return out
}

// declareTests gives every `test "..." { }` block its own nullary
// `() -> void` signature, named by its assigned symbol
// ("<module>.__test.<n>", spec.md's TestDecl doc comment), so it can
// be called from the test-runner main like any other function.
func (b *Builder) declareTests(tests []*resolved.TestDecl) {
	for _, td := range tests {
		b.declareOneFunc(td.SymbolName(), nil, types.Void{}, nil, false)
	}
}

// declareOneFunc lowers one concrete signature under name: a struct or
// optional return is rewritten to the struct-return convention (a
// hidden first sret pointer parameter, nominal return becomes Void),
// and every formal parameter gets its ByVal/ByRef attribute (spec.md
// §4.5 item 1). owner is not read: a member function's receiver is
// already the first entry of params, as in its declared parameter list.
func (b *Builder) declareOneFunc(name string, params []namedType, retType types.Type, owner *resolved.StructDecl, isExtern bool) {
	f := &Func{Name: name, IsExtern: isExtern, Status: DeclaredSignatureOnly}

	retIR := b.lowerType(retType)
	switch retIR.(type) {
	case *StructType:
		f.StructReturn = true
		f.RetSlotType = retIR
		f.ReturnType = VoidType{}
		f.Params = append(f.Params, &Param{Name: "__sret", Typ: PointerType{Elem: retIR}, Attr: AttrStructReturn})
	default:
		f.ReturnType = retIR
	}

	for _, p := range params {
		pt := b.lowerType(p.Type)
		attr := AttrNone
		switch pt.(type) {
		case *StructType:
			attr = AttrByVal
		}
		if _, isPtr := p.Type.(types.Pointer); isPtr {
			attr = AttrByRef
		}
		f.Params = append(f.Params, &Param{Name: p.Name, Typ: pt, Attr: attr})
	}

	b.funcs[name] = f
	b.mod.addFunc(f)
}
