package ir

import (
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// fctx holds the state threaded through one function's body lowering:
// its Func, the current insertion block, the entry block's alloca/
// memset cursors, and the slot each local decl (parameter or
// in-body variable) was given. Grounded on internal/elaborate's
// per-function Elaborator-local state and on the original's own
// per-function CodeGenFunction context
// (`_examples/original_source/src/codegen/*.cpp`).
type fctx struct {
	b    *Builder
	f    *Func
	cur  *Block
	exit *Block

	entry       *Block
	allocaPos   int
	memsetPos   int

	slots   map[resolved.Decl]Value
	retSlot Value // nil for void/struct-return functions
	fn      *resolved.FuncDecl
}

func (c *fctx) alloc(elem Type, name string) *Alloca {
	a := &Alloca{instrBase: instrBase{id: c.f.nextID(), typ: PointerType{Elem: elem}}, Elem: elem, Name: name}
	c.entry.InsertAt(c.allocaPos, a)
	c.allocaPos++
	c.memsetPos++
	return a
}

func (c *fctx) zero(ptr Value, size int64) {
	m := &Memset{instrBase: instrBase{id: c.f.nextID(), typ: VoidType{}}, Ptr: ptr, Size: size}
	c.entry.InsertAt(c.memsetPos, m)
	c.memsetPos++
}

// allocZeroed allocates a stack slot for elem, zero-memsets it, and
// returns its pointer; the combined idiom every local variable,
// struct-return slot, and aggregate temporary goes through.
func (c *fctx) allocZeroed(elem Type, name string) Value {
	a := c.alloc(elem, name)
	c.zero(a, SizeOf(elem))
	return a
}

// emitFuncBodies is the body pass (spec.md §4.5 item 2): for each
// non-generic function with a body, and each specialization of a
// generic function, build the entry block, materialize parameters,
// lower the body, and close the return block. Extern functions and
// generic templates are left at DeclaredSignatureOnly/
// GenericTemplateOnly.
func (b *Builder) emitFuncBodies(root *resolved.ModuleDecl) {
	walkFuncs(root, func(fd *resolved.FuncDecl) {
		if fd.IsGeneric() {
			for _, sp := range fd.Specializations {
				b.lowerFuncBody(b.funcs[sp.SymbolName], fd, sp.Body, specializationSubs(fd, sp.Args))
			}
			return
		}
		if fd.IsExtern {
			return
		}
		b.lowerFuncBody(b.funcs[fd.SymbolName()], fd, fd.Body, nil)
	})
}

// lowerFuncBody lowers one concrete function body into f, which
// declareFuncs/declareOneFunc has already given its final signature.
// subs is non-nil when lowering a generic specialization but is not
// read here: parameter slots take their types from f.Params, which
// declareFuncs already built from the substituted signature, and a
// specialization's body arrives already substituted by internal/sema.
func (b *Builder) lowerFuncBody(f *Func, fd *resolved.FuncDecl, body *resolved.Block, subs map[string]types.Type) {
	if f == nil || body == nil {
		return
	}
	c := &fctx{b: b, f: f, slots: map[resolved.Decl]Value{}, fn: fd}
	c.entry = f.NewBlock("entry")
	c.cur = c.entry
	c.exit = f.NewBlock("return")

	paramIdx := 0
	if f.StructReturn {
		paramIdx++
	}
	for i, pd := range fd.Params {
		fp := f.Params[paramIdx+i]
		pv := ParamValue{Name: fp.Name, Typ: fp.Typ}
		switch fp.Attr {
		case AttrByVal, AttrByRef:
			c.slots[pd] = pv
		default:
			slot := c.alloc(fp.Typ, fp.Name)
			c.emitStoreSlot(slot, pv)
			c.slots[pd] = slot
		}
	}

	if !f.StructReturn {
		if _, isVoid := f.ReturnType.(VoidType); !isVoid {
			c.retSlot = c.allocZeroed(f.ReturnType, "retval")
		}
	}

	c.lowerBlock(body)
	if c.cur.Terminator() == nil {
		c.f.emitBr(c.cur, c.exit.ID)
	}

	c.cur = c.exit
	switch {
	case f.StructReturn:
		c.f.emitRetVoid(c.exit)
	case c.retSlot != nil:
		c.f.emitRet(c.exit, c.f.emitLoad(c.exit, c.retSlot))
	default:
		c.f.emitRetVoid(c.exit)
	}
	f.Status = BodyEmitted
}

// emitTestBodies lowers every `test "..." { }` block's body into the
// nullary Func declareTests already gave it.
func (b *Builder) emitTestBodies(tests []*resolved.TestDecl) {
	for _, td := range tests {
		f := b.funcs[td.SymbolName()]
		if f == nil || td.Body == nil {
			continue
		}
		c := &fctx{b: b, f: f, slots: map[resolved.Decl]Value{}}
		c.entry = f.NewBlock("entry")
		c.cur = c.entry
		c.exit = f.NewBlock("return")

		c.lowerBlock(td.Body)
		if c.cur.Terminator() == nil {
			c.f.emitBr(c.cur, c.exit.ID)
		}
		c.f.emitRetVoid(c.exit)
		f.Status = BodyEmitted
	}
}

func (c *fctx) emitStoreSlot(slot Value, val Value) {
	c.f.emitStore(c.entry, slot, val)
}
