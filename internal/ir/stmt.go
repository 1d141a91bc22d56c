package ir

import (
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// lowerBlock lowers each statement of blk in order into c.cur, which
// may change block identity partway through (an IfStmt/WhileStmt/
// ForStmt/SwitchStmt leaves c.cur pointed at its own join block). If
// control falls off the end of blk without hitting a terminator — the
// last statement wasn't a return and didn't otherwise close its own
// block — blk's own defer vector is expanded here before the caller's
// fallthrough (spec.md §4.3's block-exit synthesis; a return already
// carries its own transitive snapshot in a DeferRefStmt and never
// reaches this point with an open block).
func (c *fctx) lowerBlock(blk *resolved.Block) {
	for _, s := range blk.Stmts {
		if c.cur.Terminator() != nil {
			// Dead code after an unconditional return/trap inside this
			// block; nothing downstream can execute, so stop lowering
			// rather than append instructions to a block already closed.
			return
		}
		c.lowerStmt(s)
	}
	if c.cur.Terminator() == nil && len(blk.Defers) > 0 {
		c.expandDefers(blk.Defers, false)
	}
}

func (c *fctx) lowerStmt(s resolved.Stmt) {
	switch v := s.(type) {
	case *resolved.Block:
		c.lowerBlock(v)
	case *resolved.IfStmt:
		c.lowerIf(v)
	case *resolved.WhileStmt:
		c.lowerWhile(v)
	case *resolved.ForStmt:
		c.lowerFor(v)
	case *resolved.SwitchStmt:
		c.lowerSwitch(v)
	case *resolved.ReturnStmt:
		c.lowerReturn(v)
	case *resolved.DeclStmt:
		c.lowerDecl(v)
	case *resolved.ExprStmt:
		c.lowerExpr(v.X)
	case *resolved.Assignment:
		c.lowerAssignment(v)
	case *resolved.DeferStmt, *resolved.ErrDeferStmt:
		// No direct flow: a bare defer/errdefer statement reserves its
		// body for expansion at the DeferRefStmt snapshot points sema
		// already computed for every return in scope.
	case *resolved.DeferRefStmt:
		c.lowerDeferRef(v)
	default:
		c.b.error("IR001", s.Position(), "unhandled resolved statement %T reached lowering", s)
	}
}

func (c *fctx) lowerIf(s *resolved.IfStmt) {
	cond := c.boolify(c.lowerExpr(s.Cond))
	thenBlk := c.f.NewBlock("if.then")
	joinBlk := c.f.NewBlock("if.join")
	elseBlk := joinBlk
	if s.Else != nil {
		elseBlk = c.f.NewBlock("if.else")
	}
	c.f.emitCondBr(c.cur, cond, thenBlk.ID, elseBlk.ID)

	c.cur = thenBlk
	c.lowerBlock(s.Then)
	if c.cur.Terminator() == nil {
		c.f.emitBr(c.cur, joinBlk.ID)
	}

	if s.Else != nil {
		c.cur = elseBlk
		c.lowerStmt(s.Else)
		if c.cur.Terminator() == nil {
			c.f.emitBr(c.cur, joinBlk.ID)
		}
	}

	c.cur = joinBlk
}

func (c *fctx) lowerWhile(s *resolved.WhileStmt) {
	headBlk := c.f.NewBlock("while.head")
	bodyBlk := c.f.NewBlock("while.body")
	exitBlk := c.f.NewBlock("while.exit")

	c.f.emitBr(c.cur, headBlk.ID)

	c.cur = headBlk
	cond := c.boolify(c.lowerExpr(s.Cond))
	c.f.emitCondBr(c.cur, cond, bodyBlk.ID, exitBlk.ID)

	c.cur = bodyBlk
	c.lowerBlock(s.Body)
	if c.cur.Terminator() == nil {
		c.f.emitBr(c.cur, headBlk.ID)
	}

	c.cur = exitBlk
}

// lowerFor lowers a lockstep `for (caps in conds) body`: every
// condition is a slice, an array, or a `lo..hi` range (see
// lowerForSeq), each capture reads its own element at
// a shared induction index, and a runtime length-equality check traps
// if the operands disagree in length (spec.md §4.5 ForStmt).
func (c *fctx) lowerFor(s *resolved.ForStmt) {
	seqs := make([]forSeq, len(s.Conditions))
	lens := make([]Value, len(s.Conditions))
	for i, cond := range s.Conditions {
		seqs[i] = c.lowerForSeq(cond)
		lens[i] = seqs[i].len
	}
	for i := 1; i < len(lens); i++ {
		eq := c.f.emitBinOp(c.cur, OpCmpEQ, IntType{Bits: 1, Signed: false}, lens[0], lens[i])
		okBlk := c.f.NewBlock("for.lencheck.ok")
		trapBlk := c.f.NewBlock("for.lencheck.trap")
		c.f.emitCondBr(c.cur, eq, okBlk.ID, trapBlk.ID)
		c.cur = trapBlk
		c.f.emitTrap(c.cur, "for loop operands have mismatched lengths")
		c.cur = okBlk
	}

	idxSlot := c.alloc(SizeIntType, "for.idx")
	c.zero(idxSlot, SizeOf(SizeIntType))
	c.f.emitStore(c.cur, idxSlot, IntConst{Typ: SizeIntType, Value: 0})

	headBlk := c.f.NewBlock("for.head")
	bodyBlk := c.f.NewBlock("for.body")
	exitBlk := c.f.NewBlock("for.exit")
	c.f.emitBr(c.cur, headBlk.ID)

	c.cur = headBlk
	idx := c.f.emitLoad(c.cur, idxSlot)
	cmp := c.f.emitBinOp(c.cur, OpCmpLTU, IntType{Bits: 1, Signed: false}, idx, lens[0])
	c.f.emitCondBr(c.cur, cmp, bodyBlk.ID, exitBlk.ID)

	c.cur = bodyBlk
	idx = c.f.emitLoad(c.cur, idxSlot)
	for i, cap := range s.Captures {
		val := seqs[i].at(idx)
		capType := c.b.lowerType(cap.Decl.Type)
		slot := c.alloc(capType, cap.Name)
		if isAggregateIR(capType) {
			c.storeAggregate(slot, val)
		} else {
			c.f.emitStore(c.cur, slot, val)
		}
		c.slots[cap.Decl] = slot
	}
	c.lowerBlock(s.Body)
	if c.cur.Terminator() == nil {
		idx = c.f.emitLoad(c.cur, idxSlot)
		next := c.f.emitBinOp(c.cur, OpAddI, SizeIntType, idx, IntConst{Typ: SizeIntType, Value: 1})
		c.f.emitStore(c.cur, idxSlot, next)
		c.f.emitBr(c.cur, headBlk.ID)
	}

	c.cur = exitBlk
}

// sequenceLen/sequenceElemPtr read the length field of, and compute an
// element address into, a slice or array operand; lowerForSeq uses
// them for every `for` condition that is not a `lo..hi` range.
func (c *fctx) sequenceLen(seq Value) Value {
	if _, isPtr := seq.Type().(PointerType); isPtr {
		if arr, ok := seq.Type().(PointerType).Elem.(ArrayType); ok {
			return IntConst{Typ: SizeIntType, Value: arr.Len}
		}
	}
	lenPtr := c.f.emitGEP(c.cur, SizeIntType, seq, GEPIndex{Field: SliceFieldLen})
	return c.f.emitLoad(c.cur, lenPtr)
}

func (c *fctx) sequenceElemPtr(seq Value, idx Value) Value {
	if pt, isPtr := seq.Type().(PointerType); isPtr {
		if arr, ok := pt.Elem.(ArrayType); ok {
			return c.f.emitGEP(c.cur, arr.Elem, seq, GEPIndex{Dynamic: idx})
		}
	}
	ptrFieldPtr := c.f.emitGEP(c.cur, PointerType{}, seq, GEPIndex{Field: SliceFieldPtr})
	ptr := c.f.emitLoad(c.cur, ptrFieldPtr)
	elem := ptr.Type().(PointerType).Elem
	return c.f.emitGEP(c.cur, elem, ptr, GEPIndex{Dynamic: idx})
}

func (c *fctx) lowerSwitch(s *resolved.SwitchStmt) {
	cond := c.lowerExpr(s.Cond)
	joinBlk := c.f.NewBlock("switch.join")
	var cases []SwitchCase
	for _, cl := range s.Cases {
		armBlk := c.f.NewBlock("switch.arm")
		for _, v := range cl.Values {
			cases = append(cases, SwitchCase{Value: c.lowerExpr(v), Target: armBlk.ID})
		}
		saved := c.cur
		c.cur = armBlk
		c.lowerBlock(cl.Body)
		if c.cur.Terminator() == nil {
			c.f.emitBr(c.cur, joinBlk.ID)
		}
		c.cur = saved
	}
	elseBlk := c.f.NewBlock("switch.else")
	c.f.emitSwitch(c.cur, cond, cases, elseBlk.ID)

	c.cur = elseBlk
	c.lowerBlock(s.Else)
	if c.cur.Terminator() == nil {
		c.f.emitBr(c.cur, joinBlk.ID)
	}

	c.cur = joinBlk
}

func (c *fctx) lowerReturn(s *resolved.ReturnStmt) {
	if s.Value == nil {
		c.f.emitBr(c.cur, c.exit.ID)
		return
	}
	val := c.lowerExprInto(s.Value)
	switch {
	case c.f.StructReturn:
		sret := ParamValue{Name: "__sret", Typ: PointerType{Elem: c.f.RetSlotType}}
		c.storeAggregate(sret, val)
	case c.retSlot != nil:
		c.f.emitStore(c.cur, c.retSlot, val)
	}
	c.f.emitBr(c.cur, c.exit.ID)
}

// lowerExprInto lowers an expression in a context where the result
// will be immediately stored into a return/struct-return slot or a
// declared variable's slot, so an aggregate-typed result is loaded to
// a value only when the destination needs a value rather than an
// address (storeAggregate handles the address case directly).
func (c *fctx) lowerExprInto(e resolved.Expr) Value {
	return c.lowerExpr(e)
}

// isAggregateIR reports whether t's values are represented by address
// throughout lowering (spec.md §4.5's struct-return/by-val convention,
// extended here to fixed-size arrays for the same reason: both are
// too large to usefully carry as a single SSA register).
func isAggregateIR(t Type) bool {
	switch t.(type) {
	case *StructType, ArrayType:
		return true
	default:
		return false
	}
}

// storeAggregate copies src into dst: a field/element-wise copy when
// src is an address to an aggregate (struct or array), a direct store
// of the scalar value otherwise.
func (c *fctx) storeAggregate(dst Value, src Value) {
	if pt, ok := src.Type().(PointerType); ok && isAggregateIR(pt.Elem) {
		c.copyAggregate(dst, src, pt.Elem)
		return
	}
	c.f.emitStore(c.cur, dst, src)
}

func (c *fctx) copyAggregate(dst, src Value, t Type) {
	switch v := t.(type) {
	case *StructType:
		for i, ft := range v.Fields {
			sp := c.f.emitGEP(c.cur, ft, src, GEPIndex{Field: i})
			dp := c.f.emitGEP(c.cur, ft, dst, GEPIndex{Field: i})
			if isAggregateIR(ft) {
				c.copyAggregate(dp, sp, ft)
				continue
			}
			c.f.emitStore(c.cur, dp, c.f.emitLoad(c.cur, sp))
		}
	case ArrayType:
		for i := int64(0); i < v.Len; i++ {
			idx := IntConst{Typ: SizeIntType, Value: i}
			sp := c.f.emitGEP(c.cur, v.Elem, src, GEPIndex{Dynamic: idx})
			dp := c.f.emitGEP(c.cur, v.Elem, dst, GEPIndex{Dynamic: idx})
			if isAggregateIR(v.Elem) {
				c.copyAggregate(dp, sp, v.Elem)
				continue
			}
			c.f.emitStore(c.cur, dp, c.f.emitLoad(c.cur, sp))
		}
	}
}

func (c *fctx) lowerDecl(s *resolved.DeclStmt) {
	typ := c.b.lowerType(s.Decl.Type)
	slot := c.allocZeroed(typ, s.Decl.Name)
	c.slots[s.Decl] = slot
	if s.Decl.Init != nil {
		val := c.lowerExprInto(s.Decl.Init)
		c.storeAggregate(slot, val)
	}
}

func (c *fctx) lowerAssignment(s *resolved.Assignment) {
	addr := c.lowerAddr(s.Target)
	val := c.lowerExprInto(s.Value)
	if s.Op == token.ASSIGN {
		c.storeAggregate(addr, val)
		return
	}
	cur := c.f.emitLoad(c.cur, addr)
	op := compoundOp(s.Op, s.Target.ExprType())
	res := c.f.emitBinOp(c.cur, op, cur.Type(), cur, val)
	c.f.emitStore(c.cur, addr, res)
}

// compoundOp maps a `+=`/`-=`/`*=`/`/=` token to its dispatched BinOp
// (spec.md §4.5: "dispatch on the numeric kind").
func compoundOp(op token.Kind, t types.Type) BinOpKind {
	n, ok := t.(types.Number)
	isFloat := ok && n.Kind == types.Float
	isUnsigned := ok && n.Kind == types.Unsigned
	switch op {
	case token.PLUSEQ:
		if isFloat {
			return OpAddF
		}
		return OpAddI
	case token.MINUSEQ:
		if isFloat {
			return OpSubF
		}
		return OpSubI
	case token.STAREQ:
		if isFloat {
			return OpMulF
		}
		return OpMulI
	case token.SLASHEQ:
		if isFloat {
			return OpDivF
		}
		if isUnsigned {
			return OpDivU
		}
		return OpDivS
	default:
		return OpAddI
	}
}

// lowerDeferRef expands s's combined, push-ordered entry vector back to
// front — true LIFO over the order `defer`/`errdefer` statements were
// registered in, each inlined directly into the current block ahead of
// the return they guard (spec.md §4.5, DeferRefStmt). ErrDefer entries
// only fire when this return travels the error path.
func (c *fctx) lowerDeferRef(s *resolved.DeferRefStmt) {
	c.expandDefers(s.Entries, s.IsErrorPath)
}

// expandDefers walks entries back to front, lowering each guarded
// block in turn; an ErrDefer entry is skipped unless isErrorPath, since
// errdefer only ever runs on a function's error-return path, never at
// an ordinary block exit or a normal-path return.
func (c *fctx) expandDefers(entries []resolved.DeferEntry, isErrorPath bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsErrDefer() && !isErrorPath {
			continue
		}
		c.lowerBlock(e.Body())
	}
}

// boolify coerces v (an i1 already, in this type system) to the
// condition operand CondBr/Switch require; kept as a named step since
// a future numeric-to-bool widening (spec.md §4.7's to_bool) would
// insert a Cast here.
func (c *fctx) boolify(v Value) Value {
	if _, ok := v.Type().(IntType); ok {
		return v
	}
	return c.f.emitCast(c.cur, CastBoolify, IntType{Bits: 1, Signed: false}, v)
}
