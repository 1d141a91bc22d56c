package ir

// This file holds one constructor per Instr kind: each allocates the
// instruction, assigns it the function's next SSA value ID, appends it
// to the given block, and returns the concrete type so callers can
// read back typed fields (e.g. an *Alloca's Elem) without a type
// assertion. Grounded on the resolved-tree construction idiom already
// used by internal/sema/internal/resolved (build-then-assign-base-
// fields), adapted here to a single call per instruction instead of a
// two-step literal-then-assign, since every Instr's base fields are
// identical (id, typ).

func (f *Func) emitAlloca(b *Block, elem Type, name string) *Alloca {
	i := &Alloca{instrBase: instrBase{id: f.nextID(), typ: PointerType{Elem: elem}}, Elem: elem, Name: name}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitStore(b *Block, ptr, val Value) *Store {
	i := &Store{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Ptr: ptr, Value: val}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitLoad(b *Block, ptr Value) *Load {
	elem := ptr.Type().(PointerType).Elem
	i := &Load{instrBase: instrBase{id: f.nextID(), typ: elem}, Ptr: ptr}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitMemset(b *Block, ptr Value, size int64) *Memset {
	i := &Memset{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Ptr: ptr, Size: size}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitBinOp(b *Block, op BinOpKind, typ Type, lhs, rhs Value) *BinOp {
	i := &BinOp{instrBase: instrBase{id: f.nextID(), typ: typ}, Op: op, LHS: lhs, RHS: rhs}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitUnaryOp(b *Block, op UnaryOpKind, typ Type, operand Value) *UnaryOp {
	i := &UnaryOp{instrBase: instrBase{id: f.nextID(), typ: typ}, Op: op, Operand: operand}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitCast(b *Block, kind CastKind, typ Type, operand Value) *Cast {
	i := &Cast{instrBase: instrBase{id: f.nextID(), typ: typ}, Kind: kind, Operand: operand}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitGEP(b *Block, resultType Type, base Value, indices ...GEPIndex) *GEP {
	i := &GEP{instrBase: instrBase{id: f.nextID(), typ: PointerType{Elem: resultType}}, Base: base, Indices: indices}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitCall(b *Block, typ Type, callee Value, args []Value, attrs []CallAttr, sret Value) *Call {
	i := &Call{instrBase: instrBase{id: f.nextID(), typ: typ}, Callee: callee, Args: args, Attrs: attrs, SRetSlot: sret}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitPhi(b *Block, typ Type, incoming []PhiEdge) *Phi {
	i := &Phi{instrBase: instrBase{id: f.nextID(), typ: typ}, Incoming: incoming}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitBr(b *Block, target int) *Br {
	i := &Br{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Target: target}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitCondBr(b *Block, cond Value, then, els int) *CondBr {
	i := &CondBr{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Cond: cond, Then: then, Else: els}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitSwitch(b *Block, cond Value, cases []SwitchCase, def int) *Switch {
	i := &Switch{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Cond: cond, Cases: cases, Default: def}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitRet(b *Block, val Value) *Ret {
	i := &Ret{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Value: val}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitRetVoid(b *Block) *RetVoid {
	i := &RetVoid{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitUnreachable(b *Block) *Unreachable {
	i := &Unreachable{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}}
	b.Instrs = append(b.Instrs, i)
	return i
}

func (f *Func) emitTrap(b *Block, message string) *Trap {
	i := &Trap{instrBase: instrBase{id: f.nextID(), typ: VoidType{}}, Message: message}
	b.Instrs = append(b.Instrs, i)
	return i
}
