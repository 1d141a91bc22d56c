package ir

import (
	"fmt"

	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// lowerExpr lowers e to a Value. For a scalar-typed expression the
// Value is the computed value itself; for an aggregate-typed one
// (struct or fixed-size array, per isAggregateIR) it is the address of
// storage already holding that value — a temporary alloca for a
// freshly-built literal, or the address a DeclRef/MemberExpr/
// ArrayAtExpr already resolves to. Every lowering in this file that
// produces an aggregate keeps that convention so storeAggregate/
// copyAggregate never need to special-case where the address came
// from.
func (c *fctx) lowerExpr(e resolved.Expr) Value {
	switch v := e.(type) {
	case *resolved.IntLiteral:
		return IntConst{Typ: c.b.lowerType(v.Type), Value: v.Value}
	case *resolved.FloatLiteral:
		return FloatConst{Typ: c.b.lowerType(v.Type), Value: v.Value}
	case *resolved.CharLiteral:
		return IntConst{Typ: c.b.lowerType(v.Type), Value: int64(v.Value)}
	case *resolved.BoolLiteral:
		return BoolConst{Value: v.Value}
	case *resolved.StringLiteral:
		return c.lowerStringLiteral(v)
	case *resolved.NullLiteral:
		optT := c.b.lowerType(v.Type)
		return c.allocZeroed(optT, "null.tmp")
	case *resolved.DeclRef:
		return c.lowerDeclRef(v)
	case *resolved.MemberExpr:
		return c.lowerMember(v)
	case *resolved.SelfMemberExpr:
		return c.lowerSelfMember(v)
	case *resolved.ArrayAtExpr:
		elemType := c.b.lowerType(v.Type)
		ptr := c.elemPtrOf(v.Base, v.Index)
		if isAggregateIR(elemType) {
			return ptr
		}
		return c.f.emitLoad(c.cur, ptr)
	case *resolved.ArrayInstantiationExpr:
		return c.lowerArrayInst(v)
	case *resolved.StructInstantiationExpr:
		return c.lowerStructInst(v)
	case *resolved.UnaryExpr:
		return c.lowerUnary(v)
	case *resolved.BinaryExpr:
		return c.lowerBinary(v)
	case *resolved.RefExpr:
		return c.lowerAddr(v.Operand)
	case *resolved.DerefExpr:
		return c.lowerExpr(v.Operand)
	case *resolved.CallExpr:
		return c.lowerCall(v)
	case *resolved.SizeofExpr:
		return IntConst{Typ: c.b.lowerType(v.Type), Value: SizeOf(c.b.lowerType(v.Of))}
	case *resolved.RangeExpr:
		c.b.error("IR001", v.Position(), "range expression reached lowering outside a for-loop condition")
		return IntConst{Typ: SizeIntType, Value: 0}
	case *resolved.ErrorInPlaceExpr:
		return c.lowerErrorInPlace(v)
	case *resolved.CatchErrExpr:
		return c.lowerCatchErr(v)
	case *resolved.TryErrExpr:
		return c.lowerTryErr(v)
	case *resolved.ErrUnwrapExpr:
		return c.lowerErrUnwrap(v)
	case *resolved.OrElseExpr:
		return c.lowerOrElse(v)
	case *resolved.ModuleRefExpr:
		c.b.error("IR001", v.Position(), "module reference %q reached lowering as a value", v.Path)
		return IntConst{Typ: SizeIntType, Value: 0}
	default:
		c.b.error("IR001", e.Position(), "unhandled resolved expression %T reached lowering", e)
		return IntConst{Typ: SizeIntType, Value: 0}
	}
}

// lowerAddr lowers e as an lvalue, returning the address assignment
// and `&`/`.field` access write or read through.
func (c *fctx) lowerAddr(e resolved.Expr) Value {
	switch v := e.(type) {
	case *resolved.DeclRef:
		switch d := v.Decl.(type) {
		case *resolved.ParamDecl:
			return c.slots[d]
		case *resolved.VarDecl:
			return c.slots[d]
		default:
			c.b.error("IR001", v.Position(), "reference to %q is not addressable", v.Name)
			return c.allocZeroed(c.b.lowerType(v.Type), "bad.addr")
		}
	case *resolved.MemberExpr:
		return c.memberAddr(v)
	case *resolved.SelfMemberExpr:
		return c.selfMemberAddr(v)
	case *resolved.ArrayAtExpr:
		return c.elemPtrOf(v.Base, v.Index)
	case *resolved.DerefExpr:
		return c.lowerExpr(v.Operand)
	default:
		c.b.error("IR001", e.Position(), "expression %T is not addressable", e)
		return c.allocZeroed(c.b.lowerType(e.ExprType()), "bad.addr")
	}
}

// lowerDeclRef reads a local/parameter slot (loading scalars, passing
// aggregates by address), or takes a module-level function by its
// first-class GlobalRef value.
func (c *fctx) lowerDeclRef(v *resolved.DeclRef) Value {
	switch d := v.Decl.(type) {
	case *resolved.ParamDecl:
		slot := c.slots[d]
		t := c.b.lowerType(v.Type)
		if isAggregateIR(t) {
			return slot
		}
		return c.f.emitLoad(c.cur, slot)
	case *resolved.VarDecl:
		slot := c.slots[d]
		t := c.b.lowerType(v.Type)
		if isAggregateIR(t) {
			return slot
		}
		return c.f.emitLoad(c.cur, slot)
	case *resolved.FuncDecl:
		f := c.b.funcs[d.SymbolName()]
		return GlobalRef{Name: f.Name, Typ: funcValueType(f)}
	default:
		c.b.error("IR001", v.Position(), "unresolved declaration reference %q reached lowering", v.Name)
		return IntConst{Typ: SizeIntType, Value: 0}
	}
}

func funcValueType(f *Func) Type {
	params := make([]Type, 0, len(f.Params))
	for _, p := range f.Params {
		if p.Attr == AttrStructReturn {
			continue
		}
		params = append(params, p.Typ)
	}
	ret := f.ReturnType
	if f.StructReturn {
		ret = f.RetSlotType
	}
	return FunctionType{Params: params, Ret: ret}
}

func fieldIndex(sd *resolved.StructDecl, name string) int {
	for i, f := range sd.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (c *fctx) memberAddr(v *resolved.MemberExpr) Value {
	if _, ok := v.Decl.(*resolved.FieldDecl); !ok {
		c.b.error("IR001", v.Position(), "member %q is not an addressable field", v.Field)
		return c.allocZeroed(c.b.lowerType(v.Type), "bad.addr")
	}
	baseAddr := c.lowerExpr(v.Base)
	pt, ok := baseAddr.Type().(PointerType)
	structT, _ := pt.Elem.(*StructType)
	sd := structDeclOf(v.Base.ExprType())
	idx := fieldIndex(sd, v.Field)
	if !ok || idx < 0 || structT == nil {
		c.b.error("IR001", v.Position(), "field %q not found on base struct", v.Field)
		return baseAddr
	}
	return c.f.emitGEP(c.cur, structT.Fields[idx], baseAddr, GEPIndex{Field: idx})
}

func (c *fctx) selfMemberAddr(v *resolved.SelfMemberExpr) Value {
	if _, ok := v.Decl.(*resolved.FieldDecl); !ok {
		c.b.error("IR001", v.Position(), "member %q is not an addressable field", v.Field)
		return c.allocZeroed(c.b.lowerType(v.Type), "bad.addr")
	}
	selfAddr := c.slots[v.Self]
	sd := structDeclOf(underlyingPointer(v.Self.Type))
	idx := fieldIndex(sd, v.Field)
	structT, ok := selfAddr.Type().(PointerType)
	if !ok || idx < 0 {
		c.b.error("IR001", v.Position(), "field %q not found on self", v.Field)
		return selfAddr
	}
	st, ok := structT.Elem.(*StructType)
	if !ok {
		c.b.error("IR001", v.Position(), "self did not lower to a struct address")
		return selfAddr
	}
	return c.f.emitGEP(c.cur, st.Fields[idx], selfAddr, GEPIndex{Field: idx})
}

func underlyingPointer(t types.Type) types.Type {
	if p, ok := t.(types.Pointer); ok {
		return p.Inner
	}
	return t
}

func structDeclOf(t types.Type) *resolved.StructDecl {
	switch v := t.(type) {
	case types.Struct:
		sd, _ := v.Decl.(*resolved.StructDecl)
		return sd
	case types.Pointer:
		return structDeclOf(v.Inner)
	default:
		return nil
	}
}

func (c *fctx) lowerMember(v *resolved.MemberExpr) Value {
	switch v.Decl.(type) {
	case *resolved.FieldDecl:
		addr := c.memberAddr(v)
		t := c.b.lowerType(v.Type)
		if isAggregateIR(t) {
			return addr
		}
		return c.f.emitLoad(c.cur, addr)
	case *resolved.ErrDecl:
		ed := v.Decl.(*resolved.ErrDecl)
		return GlobalRef{Name: c.b.errGlobals[ed].Name, Typ: ErrTagType}
	case *resolved.FuncDecl:
		c.b.error("IR001", v.Position(), "bound method value %q used outside a call is not supported", v.Field)
		return IntConst{Typ: SizeIntType, Value: 0}
	default:
		c.b.error("IR001", v.Position(), "unresolved member %q reached lowering", v.Field)
		return IntConst{Typ: SizeIntType, Value: 0}
	}
}

func (c *fctx) lowerSelfMember(v *resolved.SelfMemberExpr) Value {
	switch v.Decl.(type) {
	case *resolved.FieldDecl:
		addr := c.selfMemberAddr(v)
		t := c.b.lowerType(v.Type)
		if isAggregateIR(t) {
			return addr
		}
		return c.f.emitLoad(c.cur, addr)
	case *resolved.FuncDecl:
		c.b.error("IR001", v.Position(), "bound method value %q used outside a call is not supported", v.Field)
		return IntConst{Typ: SizeIntType, Value: 0}
	default:
		c.b.error("IR001", v.Position(), "unresolved self member %q reached lowering", v.Field)
		return IntConst{Typ: SizeIntType, Value: 0}
	}
}

// elemPtrOf computes the address of base[index] for an Array, Slice,
// or Pointer base (spec.md §4.5's indexing convention), each stepping
// through the right number of indirections before the element GEP.
func (c *fctx) elemPtrOf(base, index resolved.Expr) Value {
	idx := c.lowerExpr(index)
	switch base.ExprType().(type) {
	case types.Array:
		addr := c.lowerExpr(base)
		elem := addr.Type().(PointerType).Elem.(ArrayType).Elem
		return c.f.emitGEP(c.cur, elem, addr, GEPIndex{Dynamic: idx})
	case types.Slice:
		addr := c.lowerExpr(base)
		return c.sequenceElemPtr(addr, idx)
	case types.Pointer:
		ptr := c.lowerExpr(base)
		elem := ptr.Type().(PointerType).Elem
		return c.f.emitGEP(c.cur, elem, ptr, GEPIndex{Dynamic: idx})
	default:
		c.b.error("IR001", base.Position(), "indexing base has unsupported type %s", base.ExprType())
		return c.lowerExpr(base)
	}
}

func (c *fctx) lowerArrayInst(e *resolved.ArrayInstantiationExpr) Value {
	at := c.b.lowerType(e.Type).(ArrayType)
	temp := c.allocZeroed(at, "array.tmp")
	for i, el := range e.Elements {
		if _, isDefault := el.ExprType().(types.DefaultInit); isDefault {
			continue
		}
		idx := IntConst{Typ: SizeIntType, Value: int64(i)}
		ep := c.f.emitGEP(c.cur, at.Elem, temp, GEPIndex{Dynamic: idx})
		c.storeAggregate(ep, c.lowerExpr(el))
	}
	return temp
}

func (c *fctx) lowerStructInst(e *resolved.StructInstantiationExpr) Value {
	st := c.b.lowerType(e.Type).(*StructType)
	temp := c.allocZeroed(st, "struct.tmp")
	for _, fi := range e.Fields {
		if _, isDefault := fi.Value.ExprType().(types.DefaultInit); isDefault {
			continue
		}
		idx := fieldIndex(e.Decl, fi.Name)
		if idx < 0 {
			c.b.error("IR001", e.Position(), "field %q not found on struct %q", fi.Name, e.Decl.Name)
			continue
		}
		fp := c.f.emitGEP(c.cur, st.Fields[idx], temp, GEPIndex{Field: idx})
		c.storeAggregate(fp, c.lowerExpr(fi.Value))
	}
	return temp
}

// internString returns (creating once) the byte-array global backing
// one string literal's content.
func (b *Builder) internString(value string) *Global {
	if g, ok := b.stringGlobals[value]; ok {
		return g
	}
	name := fmt.Sprintf("str.%d", len(b.stringGlobals))
	g := &Global{Name: name, Typ: ArrayType{Elem: IntType{Bits: 8, Signed: false}, Len: int64(len(value))}, Value: value}
	b.stringGlobals[value] = g
	b.mod.addGlobal(g)
	return g
}

func (c *fctx) lowerStringLiteral(e *resolved.StringLiteral) Value {
	g := c.b.internString(e.Value)
	byteT := IntType{Bits: 8, Signed: false}
	sliceT := c.b.sliceType(types.Number{Kind: types.Unsigned, Bits: 8})
	temp := c.allocZeroed(sliceT, "str.tmp")
	ptrField := c.f.emitGEP(c.cur, PointerType{Elem: byteT}, temp, GEPIndex{Field: SliceFieldPtr})
	c.f.emitStore(c.cur, ptrField, GlobalRef{Name: g.Name, Typ: PointerType{Elem: byteT}})
	lenField := c.f.emitGEP(c.cur, SizeIntType, temp, GEPIndex{Field: SliceFieldLen})
	c.f.emitStore(c.cur, lenField, IntConst{Typ: SizeIntType, Value: int64(len(e.Value))})
	return temp
}

func (c *fctx) lowerUnary(v *resolved.UnaryExpr) Value {
	switch v.Op {
	case token.MINUS:
		operand := c.lowerExpr(v.Operand)
		resType := c.b.lowerType(v.Type)
		if n, ok := v.Type.(types.Number); ok && n.Kind == types.Float {
			return c.f.emitUnaryOp(c.cur, OpNegF, resType, operand)
		}
		return c.f.emitUnaryOp(c.cur, OpNegI, resType, operand)
	case token.BANG:
		operand := c.boolify(c.lowerExpr(v.Operand))
		return c.f.emitUnaryOp(c.cur, OpNot, IntType{Bits: 1, Signed: false}, operand)
	default:
		c.b.error("IR001", v.Position(), "unhandled unary operator %s", v.Op)
		return c.lowerExpr(v.Operand)
	}
}

// castTo widens/narrows an integer value to target's width, sign/zero
// extending per the source type's signedness and truncating
// otherwise; used only to reconcile the loop index width (always
// SizeIntType) against a `for`-range's own element type.
func (c *fctx) castTo(v Value, target Type) Value {
	vt, ok1 := v.Type().(IntType)
	tt, ok2 := target.(IntType)
	if !ok1 || !ok2 || vt == tt {
		return v
	}
	if tt.Bits > vt.Bits {
		kind := CastZeroExtend
		if vt.Signed {
			kind = CastSignExtend
		}
		return c.f.emitCast(c.cur, kind, target, v)
	}
	if tt.Bits < vt.Bits {
		return c.f.emitCast(c.cur, CastTruncate, target, v)
	}
	return v
}

// arithOp dispatches a binary operator token against t's numeric kind
// (spec.md §4.5: "dispatch on the numeric kind (signed/unsigned/
// float)"). isCmp reports whether the resulting BinOp yields an i1.
func arithOp(op token.Kind, t types.Type) (kind BinOpKind, isCmp bool) {
	if _, isPtr := t.(types.Pointer); isPtr {
		switch op {
		case token.EQ:
			return OpCmpEQPtr, true
		case token.NE:
			return OpCmpNEPtr, true
		}
	}
	n, isNum := t.(types.Number)
	isFloat := isNum && n.Kind == types.Float
	isUnsigned := isNum && n.Kind == types.Unsigned
	switch op {
	case token.PLUS:
		if isFloat {
			return OpAddF, false
		}
		return OpAddI, false
	case token.MINUS:
		if isFloat {
			return OpSubF, false
		}
		return OpSubI, false
	case token.STAR:
		if isFloat {
			return OpMulF, false
		}
		return OpMulI, false
	case token.SLASH:
		if isFloat {
			return OpDivF, false
		}
		if isUnsigned {
			return OpDivU, false
		}
		return OpDivS, false
	case token.PERCENT:
		if isUnsigned {
			return OpRemU, false
		}
		return OpRemS, false
	case token.EQ:
		if isFloat {
			return OpCmpEQF, true
		}
		return OpCmpEQ, true
	case token.NE:
		if isFloat {
			return OpCmpNEF, true
		}
		return OpCmpNE, true
	case token.LT:
		if isFloat {
			return OpCmpLTF, true
		}
		if isUnsigned {
			return OpCmpLTU, true
		}
		return OpCmpLTS, true
	case token.LE:
		if isFloat {
			return OpCmpLEF, true
		}
		if isUnsigned {
			return OpCmpLEU, true
		}
		return OpCmpLES, true
	case token.GT:
		if isFloat {
			return OpCmpGTF, true
		}
		if isUnsigned {
			return OpCmpGTU, true
		}
		return OpCmpGTS, true
	case token.GE:
		if isFloat {
			return OpCmpGEF, true
		}
		if isUnsigned {
			return OpCmpGEU, true
		}
		return OpCmpGES, true
	default:
		return OpAddI, false
	}
}

func (c *fctx) lowerBinary(e *resolved.BinaryExpr) Value {
	switch e.Op {
	case token.AMP:
		return c.lowerShortCircuit(e, true)
	case token.PIPEPIPE:
		return c.lowerShortCircuit(e, false)
	}
	lhs := c.lowerExpr(e.LHS)
	rhs := c.lowerExpr(e.RHS)
	op, isCmp := arithOp(e.Op, e.LHS.ExprType())
	resType := Type(IntType{Bits: 1, Signed: false})
	if !isCmp {
		resType = c.b.lowerType(e.Type)
	}
	return c.f.emitBinOp(c.cur, op, resType, lhs, rhs)
}

// lowerShortCircuit lowers `&&`/`||` via a branch-and-phi so the rhs
// is only ever evaluated when it can affect the result (spec.md
// §4.5's "a PHI that takes the short-circuited constant from
// predecessors that skipped the rhs").
func (c *fctx) lowerShortCircuit(e *resolved.BinaryExpr, isAnd bool) Value {
	lhs := c.boolify(c.lowerExpr(e.LHS))
	startBlk := c.cur
	rhsBlk := c.f.NewBlock("logic.rhs")
	joinBlk := c.f.NewBlock("logic.join")
	if isAnd {
		c.f.emitCondBr(c.cur, lhs, rhsBlk.ID, joinBlk.ID)
	} else {
		c.f.emitCondBr(c.cur, lhs, joinBlk.ID, rhsBlk.ID)
	}

	c.cur = rhsBlk
	rhs := c.boolify(c.lowerExpr(e.RHS))
	rhsEndBlk := c.cur
	c.f.emitBr(c.cur, joinBlk.ID)

	c.cur = joinBlk
	shortVal := BoolConst{Value: !isAnd}
	return c.f.emitPhi(c.cur, IntType{Bits: 1, Signed: false}, []PhiEdge{
		{Block: startBlk.ID, Value: shortVal},
		{Block: rhsEndBlk.ID, Value: rhs},
	})
}

// forSeq abstracts one `for` condition's length and per-index element
// access uniformly over a real slice/array operand and an arithmetic
// `lo..hi` range, which has no backing memory at all.
type forSeq struct {
	len      Value
	elemType Type
	at       func(idx Value) Value
}

func (c *fctx) lowerForSeq(cond resolved.Expr) forSeq {
	if rg, ok := cond.(*resolved.RangeExpr); ok {
		lo := c.lowerExpr(rg.Lo)
		hi := c.lowerExpr(rg.Hi)
		elemType := lo.Type()
		lenElem := c.f.emitBinOp(c.cur, OpSubI, elemType, hi, lo)
		length := c.castTo(lenElem, SizeIntType)
		return forSeq{
			len:      length,
			elemType: elemType,
			at: func(idx Value) Value {
				return c.f.emitBinOp(c.cur, OpAddI, elemType, lo, c.castTo(idx, elemType))
			},
		}
	}
	seq := c.lowerExpr(cond)
	elemType := elementTypeOfSeq(seq.Type())
	return forSeq{
		len:      c.sequenceLen(seq),
		elemType: elemType,
		at: func(idx Value) Value {
			ptr := c.sequenceElemPtr(seq, idx)
			if isAggregateIR(elemType) {
				return ptr
			}
			return c.f.emitLoad(c.cur, ptr)
		},
	}
}

func elementTypeOfSeq(t Type) Type {
	if pt, ok := t.(PointerType); ok {
		if arr, ok := pt.Elem.(ArrayType); ok {
			return arr.Elem
		}
		if st, ok := pt.Elem.(*StructType); ok && len(st.Fields) == 2 {
			if elemPtr, ok := st.Fields[SliceFieldPtr].(PointerType); ok {
				return elemPtr.Elem
			}
		}
	}
	return VoidType{}
}

// lowerCall lowers a direct (possibly specialized), bound-member, or
// indirect call (spec.md §4.5 item 2's CallExpr lowering): the
// struct-return slot, when present, is allocated by the caller and
// passed as the hidden first argument, and a bound `base.method`/
// `.method` callee supplies its own receiver ahead of the written
// argument list (matching resolveCall's arity adjustment, see
// DESIGN.md).
func (c *fctx) lowerCall(v *resolved.CallExpr) Value {
	fd := funcDeclOf(v.Callee)
	if fd == nil {
		return c.lowerIndirectCall(v)
	}

	symbol := fd.SymbolName()
	if v.Specialization != "" {
		symbol = v.Specialization
	}
	f := c.b.funcs[symbol]
	if f == nil {
		c.b.error("IR001", v.Position(), "call target %q has no lowered signature", symbol)
		return IntConst{Typ: SizeIntType, Value: 0}
	}

	var args []Value
	var attrs []CallAttr
	var sret Value
	paramIdx := 0
	if f.StructReturn {
		sret = c.allocZeroed(f.RetSlotType, "call.ret")
		args = append(args, sret)
		attrs = append(attrs, AttrStructReturn)
		paramIdx++
	}

	if recv, ok := c.boundReceiver(v.Callee); ok {
		args = append(args, recv)
		attrs = append(attrs, f.Params[paramIdx].Attr)
		paramIdx++
	}

	for i, a := range v.Args {
		args = append(args, c.lowerArg(a, f.Params[paramIdx+i].Typ))
		attrs = append(attrs, f.Params[paramIdx+i].Attr)
	}

	callee := GlobalRef{Name: f.Name, Typ: funcValueType(f)}
	call := c.f.emitCall(c.cur, f.ReturnType, callee, args, attrs, sret)
	if f.StructReturn {
		return sret
	}
	return call
}

// lowerArg lowers one call argument with lowerExpr and does no
// conversion; paramType is not read. An aggregate argument already
// arrives as an address from lowerExpr, which is what an
// aggregate-by-value parameter slot takes.
func (c *fctx) lowerArg(a resolved.Expr, paramType Type) Value {
	return c.lowerExpr(a)
}

// boundReceiver returns the already-lowered receiver address of a
// bound `base.method`/`.method` callee, or ok==false for a plain
// function value.
func (c *fctx) boundReceiver(callee resolved.Expr) (Value, bool) {
	switch v := callee.(type) {
	case *resolved.MemberExpr:
		if _, ok := v.Decl.(*resolved.FuncDecl); ok {
			return c.lowerExpr(v.Base), true
		}
	case *resolved.SelfMemberExpr:
		if _, ok := v.Decl.(*resolved.FuncDecl); ok {
			return c.slots[v.Self], true
		}
	}
	return nil, false
}

func funcDeclOf(e resolved.Expr) *resolved.FuncDecl {
	switch v := e.(type) {
	case *resolved.DeclRef:
		fd, _ := v.Decl.(*resolved.FuncDecl)
		return fd
	case *resolved.MemberExpr:
		fd, _ := v.Decl.(*resolved.FuncDecl)
		return fd
	case *resolved.SelfMemberExpr:
		fd, _ := v.Decl.(*resolved.FuncDecl)
		return fd
	default:
		return nil
	}
}

// lowerIndirectCall calls through a Function-typed value (a DeclRef to
// a local/parameter of function type, or an expression yielding one).
func (c *fctx) lowerIndirectCall(v *resolved.CallExpr) Value {
	callee := c.lowerExpr(v.Callee)
	ft, ok := callee.Type().(FunctionType)
	if !ok {
		c.b.error("IR001", v.Position(), "call target did not lower to a function value")
		return IntConst{Typ: SizeIntType, Value: 0}
	}
	var args []Value
	var attrs []CallAttr
	for i, a := range v.Args {
		args = append(args, c.lowerExpr(a))
		attr := AttrNone
		if isAggregateIR(ft.Params[i]) {
			attr = AttrByVal
		}
		attrs = append(attrs, attr)
	}
	return c.f.emitCall(c.cur, ft.Ret, callee, args, attrs, nil)
}

func (c *fctx) lowerErrorInPlace(v *resolved.ErrorInPlaceExpr) Value {
	if v.Decl == nil {
		c.b.error("IR001", v.Position(), "unresolved error literal @%s reached lowering", v.Name)
		return NullConst{Typ: ErrTagType}
	}
	g := c.b.errGlobals[v.Decl]
	return GlobalRef{Name: g.Name, Typ: ErrTagType}
}

// lowerCatchErr extracts the error field of an Optional without
// examining or consuming its value slot.
func (c *fctx) lowerCatchErr(v *resolved.CatchErrExpr) Value {
	optAddr := c.lowerExpr(v.Operand)
	errPtr := c.f.emitGEP(c.cur, ErrTagType, optAddr, GEPIndex{Field: OptionalFieldError})
	return c.f.emitLoad(c.cur, errPtr)
}

// lowerTryErr unwraps operand, propagating its error through the
// enclosing function's own Optional return on failure. Per sema's
// DeferRefStmt snapshot policy (only taken at explicit `return`
// statements, see internal/sema/stmt.go), this early return does not
// run the function's defers/errdefers — a simplification inherited
// rather than fixed here, since reaching it would require sema to
// snapshot a defer set at every `try` expression too.
func (c *fctx) lowerTryErr(v *resolved.TryErrExpr) Value {
	optAddr := c.lowerExpr(v.Operand)
	errPtr := c.f.emitGEP(c.cur, ErrTagType, optAddr, GEPIndex{Field: OptionalFieldError})
	errVal := c.f.emitLoad(c.cur, errPtr)
	isErr := c.f.emitBinOp(c.cur, OpCmpNEPtr, IntType{Bits: 1, Signed: false}, errVal, NullConst{Typ: ErrTagType})

	okBlk := c.f.NewBlock("try.ok")
	propBlk := c.f.NewBlock("try.propagate")
	c.f.emitCondBr(c.cur, isErr, propBlk.ID, okBlk.ID)

	c.cur = propBlk
	sret := ParamValue{Name: "__sret", Typ: PointerType{Elem: c.f.RetSlotType}}
	retSt := c.f.RetSlotType.(*StructType)
	valPtr := c.f.emitGEP(c.cur, retSt.Fields[OptionalFieldValue], sret, GEPIndex{Field: OptionalFieldValue})
	c.f.emitMemset(c.cur, valPtr, SizeOf(retSt.Fields[OptionalFieldValue]))
	outErrPtr := c.f.emitGEP(c.cur, ErrTagType, sret, GEPIndex{Field: OptionalFieldError})
	c.f.emitStore(c.cur, outErrPtr, errVal)
	c.f.emitBr(c.cur, c.exit.ID)

	c.cur = okBlk
	operandSt := optAddr.Type().(PointerType).Elem.(*StructType)
	valPtr2 := c.f.emitGEP(c.cur, operandSt.Fields[OptionalFieldValue], optAddr, GEPIndex{Field: OptionalFieldValue})
	if isAggregateIR(operandSt.Fields[OptionalFieldValue]) {
		return valPtr2
	}
	return c.f.emitLoad(c.cur, valPtr2)
}

// lowerErrUnwrap asserts operand is present, trapping at runtime
// otherwise (spec.md §4.5's ErrUnwrapExpr).
func (c *fctx) lowerErrUnwrap(v *resolved.ErrUnwrapExpr) Value {
	optAddr := c.lowerExpr(v.Operand)
	errPtr := c.f.emitGEP(c.cur, ErrTagType, optAddr, GEPIndex{Field: OptionalFieldError})
	errVal := c.f.emitLoad(c.cur, errPtr)
	isErr := c.f.emitBinOp(c.cur, OpCmpNEPtr, IntType{Bits: 1, Signed: false}, errVal, NullConst{Typ: ErrTagType})

	okBlk := c.f.NewBlock("unwrap.ok")
	trapBlk := c.f.NewBlock("unwrap.trap")
	c.f.emitCondBr(c.cur, isErr, trapBlk.ID, okBlk.ID)

	c.cur = trapBlk
	c.f.emitTrap(c.cur, "unwrap of error value")

	c.cur = okBlk
	st := optAddr.Type().(PointerType).Elem.(*StructType)
	valPtr := c.f.emitGEP(c.cur, st.Fields[OptionalFieldValue], optAddr, GEPIndex{Field: OptionalFieldValue})
	if isAggregateIR(st.Fields[OptionalFieldValue]) {
		return valPtr
	}
	return c.f.emitLoad(c.cur, valPtr)
}

// lowerOrElse materializes operand's value into a temp slot when
// present, or fallback's value otherwise; using a temp rather than a
// Phi lets the same code path handle both scalar and aggregate
// results uniformly.
func (c *fctx) lowerOrElse(v *resolved.OrElseExpr) Value {
	resType := c.b.lowerType(v.Type)
	temp := c.allocZeroed(resType, "orelse.tmp")

	optAddr := c.lowerExpr(v.Operand)
	errPtr := c.f.emitGEP(c.cur, ErrTagType, optAddr, GEPIndex{Field: OptionalFieldError})
	errVal := c.f.emitLoad(c.cur, errPtr)
	isErr := c.f.emitBinOp(c.cur, OpCmpNEPtr, IntType{Bits: 1, Signed: false}, errVal, NullConst{Typ: ErrTagType})

	okBlk := c.f.NewBlock("orelse.ok")
	fbBlk := c.f.NewBlock("orelse.fallback")
	joinBlk := c.f.NewBlock("orelse.join")
	c.f.emitCondBr(c.cur, isErr, fbBlk.ID, okBlk.ID)

	c.cur = okBlk
	st := optAddr.Type().(PointerType).Elem.(*StructType)
	valPtr := c.f.emitGEP(c.cur, st.Fields[OptionalFieldValue], optAddr, GEPIndex{Field: OptionalFieldValue})
	var okVal Value = valPtr
	if !isAggregateIR(st.Fields[OptionalFieldValue]) {
		okVal = c.f.emitLoad(c.cur, valPtr)
	}
	c.storeAggregate(temp, okVal)
	c.f.emitBr(c.cur, joinBlk.ID)

	c.cur = fbBlk
	c.storeAggregate(temp, c.lowerExpr(v.Fallback))
	c.f.emitBr(c.cur, joinBlk.ID)

	c.cur = joinBlk
	if isAggregateIR(resType) {
		return temp
	}
	return c.f.emitLoad(c.cur, temp)
}
