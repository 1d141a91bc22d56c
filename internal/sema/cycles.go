package sema

import (
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// checkStructFieldCycles reports RES007 for every struct that
// transitively contains itself by value: a field whose type is the
// struct itself, an array of it, or (through another struct) a chain
// of by-value fields leading back to it. A field behind a Pointer or
// Slice breaks the cycle, since those are indirect and don't require
// the struct's own layout to be known to compute its size.
func (r *Resolver) checkStructFieldCycles() {
	for _, sd := range r.structDecls {
		r.checkOneStructCycle(sd, sd, map[*resolved.StructDecl]bool{})
	}
}

func (r *Resolver) checkOneStructCycle(root, sd *resolved.StructDecl, visiting map[*resolved.StructDecl]bool) {
	if visiting[sd] {
		return
	}
	visiting[sd] = true
	defer delete(visiting, sd)

	for _, f := range sd.Fields {
		if containsStructByValue(f.Type, root) {
			r.error(errors.RES007, sd.Pos, "struct %s contains itself", sd.Name)
			return
		}
		ft := f.Type
		for {
			arr, ok := ft.(types.Array)
			if !ok {
				break
			}
			ft = arr.Inner
		}
		if next, ok := asStructDecl(ft); ok {
			r.checkOneStructCycle(root, next, visiting)
		}
	}
}

// containsStructByValue reports whether t is root's own struct type,
// or a fixed-size array of it, reached without passing through a
// Pointer or Slice indirection.
func containsStructByValue(t types.Type, root *resolved.StructDecl) bool {
	switch v := t.(type) {
	case types.Struct:
		sd, ok := v.Decl.(*resolved.StructDecl)
		return ok && sd == root
	case types.Array:
		return containsStructByValue(v.Inner, root)
	default:
		return false
	}
}
