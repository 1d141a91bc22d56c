package sema

import "github.com/dmzlang/dmzc/internal/resolved"

// assignSymbolNames runs the post-order symbol-naming pass (spec.md
// §4.5): every module, struct, function, and top-level variable gets
// the fully-qualified symbol IR lowering and the backend emit it
// under. Enclosing module identifiers are joined with ".", a member
// function's symbol is prefixed by its struct's, and a user's `main`
// function is renamed to "__builtin_main" so it can coexist with any
// runtime-provided C entry point. Generic declarations keep their own
// base symbol; each Specialization recorded in generics.go already
// carries its own suffixed SymbolName computed at monomorphization
// time and is left untouched here.
func assignSymbolNames(root *resolved.ModuleDecl) {
	assignModuleSymbols(root, "")
}

func assignModuleSymbols(mod *resolved.ModuleDecl, prefix string) {
	modSymbol := prefix
	if mod.Name != "" {
		modSymbol = joinSymbol(prefix, mod.Name)
	}
	mod.Symbol = modSymbol

	for _, d := range mod.Decls {
		switch v := d.(type) {
		case *resolved.StructDecl:
			v.Symbol = joinSymbol(modSymbol, v.Name)
			for _, m := range v.Methods {
				assignFuncSymbol(m, v.Symbol)
			}
		case *resolved.ErrGroupDecl:
			v.Symbol = joinSymbol(modSymbol, v.Name)
		case *resolved.FuncDecl:
			if v.StructOwner == nil {
				assignFuncSymbol(v, modSymbol)
			}
		case *resolved.VarDecl:
			v.Symbol = joinSymbol(modSymbol, v.Name)
		case *resolved.TestDecl:
			v.Symbol = joinSymbol(modSymbol, "__test."+v.Name)
		}
	}

	for _, child := range mod.Children {
		assignModuleSymbols(child, modSymbol)
	}
}

func assignFuncSymbol(fd *resolved.FuncDecl, ownerSymbol string) {
	if fd.Name == "main" && ownerSymbol == "" {
		fd.Symbol = "__builtin_main"
		return
	}
	fd.Symbol = joinSymbol(ownerSymbol, fd.Name)
}

func joinSymbol(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
