package ir

import "fmt"

// Value is anything that can be used as an instruction operand: an
// instruction result, a constant, a global reference, or a function
// parameter.
type Value interface {
	Type() Type
	// Operand renders v the way it appears as an instruction operand
	// in the text IR, e.g. "%7", "42", "@err.str.demo.NotFound".
	Operand() string
}

// ValueID names one instruction's SSA result register, unique within
// its owning function.
type ValueID uint64

// IntConst is a constant integer operand.
type IntConst struct {
	Typ   Type
	Value int64
}

func (c IntConst) Type() Type      { return c.Typ }
func (c IntConst) Operand() string { return fmt.Sprintf("%d", c.Value) }

// FloatConst is a constant floating-point operand.
type FloatConst struct {
	Typ   Type
	Value float64
}

func (c FloatConst) Type() Type      { return c.Typ }
func (c FloatConst) Operand() string { return fmt.Sprintf("%g", c.Value) }

// BoolConst is a constant i1 operand.
type BoolConst struct{ Value bool }

func (c BoolConst) Type() Type { return IntType{Bits: 1, Signed: false} }
func (c BoolConst) Operand() string {
	if c.Value {
		return "true"
	}
	return "false"
}

// NullConst is the zero value of a pointer type (used for the
// error-field-defaults-to-null optional/error-union convention, and
// for `null` literals in source).
type NullConst struct{ Typ Type }

func (c NullConst) Type() Type      { return c.Typ }
func (c NullConst) Operand() string { return "null" }

// GlobalRef is a reference to a module-level Global (an error-tag
// string constant or, indirectly, a function symbol used as a
// first-class value).
type GlobalRef struct {
	Name string
	Typ  Type
}

func (g GlobalRef) Type() Type      { return g.Typ }
func (g GlobalRef) Operand() string { return "@" + g.Name }

// ParamValue is a reference to one of the enclosing function's formal
// parameters, used as an operand directly for by-pointer (struct/
// by-ref) parameters, or loaded from its stack slot for mutable
// by-value ones (see body.go's entry-block parameter materialization).
type ParamValue struct {
	Name string
	Typ  Type
}

func (p ParamValue) Type() Type      { return p.Typ }
func (p ParamValue) Operand() string { return "%" + p.Name }

// Instr is any instruction appended to a Block. Every instruction that
// produces a result also satisfies Value through its embedded
// instrBase; instructions with a VoidType result (Store, Br, CondBr,
// Ret, RetVoid, Unreachable, Memset) are valid Instrs but are never
// referenced as an operand.
type Instr interface {
	Value
	ID() ValueID
	Opcode() string
	instrNode()
}

type instrBase struct {
	id  ValueID
	typ Type
}

func (b *instrBase) ID() ValueID      { return b.id }
func (b *instrBase) Type() Type       { return b.typ }
func (b *instrBase) Operand() string  { return fmt.Sprintf("%%%d", b.id) }
func (b *instrBase) instrNode()       {}

// Alloca reserves stack storage for one value of Elem, yielding a
// PointerType{Elem}. Emitted at the entry-block insertion point
// (spec.md §4.5's "two placeholder instructions... (a) stack
// allocations") for every local variable, mutable parameter, and
// temporary (struct/array instantiation, slice construction,
// struct-return slot).
type Alloca struct {
	instrBase
	Elem Type
	Name string // source identifier, for readability in the text dump; "" for anonymous temporaries
}

func (i *Alloca) Opcode() string { return "alloca" }

// Store writes Value into the slot at Ptr.
type Store struct {
	instrBase
	Ptr   Value
	Value Value
}

func (i *Store) Opcode() string { return "store" }

// Load reads the value pointed to by Ptr.
type Load struct {
	instrBase
	Ptr Value
}

func (i *Load) Opcode() string { return "load" }

// Memset zeroes Size bytes starting at Ptr; used to zero-initialize
// every stack allocation at function entry (spec.md §4.5, "(b)
// zero-memset of those allocations") so an Optional's error field, a
// DefaultInit-skipped struct field, and a fresh array slot all start
// at a well-defined zero.
type Memset struct {
	instrBase
	Ptr  Value
	Size int64
}

func (i *Memset) Opcode() string { return "memset" }

// BinOpKind names an arithmetic/comparison/logical binary opcode after
// numeric-kind dispatch (spec.md §4.5: "dispatch on the numeric kind
// (signed/unsigned/float)").
type BinOpKind string

const (
	OpAddI  BinOpKind = "add.i"
	OpSubI  BinOpKind = "sub.i"
	OpMulI  BinOpKind = "mul.i"
	OpDivS  BinOpKind = "div.s"
	OpDivU  BinOpKind = "div.u"
	OpRemS  BinOpKind = "rem.s"
	OpRemU  BinOpKind = "rem.u"
	OpAddF  BinOpKind = "add.f"
	OpSubF  BinOpKind = "sub.f"
	OpMulF  BinOpKind = "mul.f"
	OpDivF  BinOpKind = "div.f"
	OpCmpEQ BinOpKind = "cmp.eq"
	OpCmpNE BinOpKind = "cmp.ne"
	OpCmpLTS BinOpKind = "cmp.lt.s"
	OpCmpLES BinOpKind = "cmp.le.s"
	OpCmpGTS BinOpKind = "cmp.gt.s"
	OpCmpGES BinOpKind = "cmp.ge.s"
	OpCmpLTU BinOpKind = "cmp.lt.u"
	OpCmpLEU BinOpKind = "cmp.le.u"
	OpCmpGTU BinOpKind = "cmp.gt.u"
	OpCmpGEU BinOpKind = "cmp.ge.u"
	OpCmpLTF BinOpKind = "cmp.lt.f"
	OpCmpLEF BinOpKind = "cmp.le.f"
	OpCmpGTF BinOpKind = "cmp.gt.f"
	OpCmpGEF BinOpKind = "cmp.ge.f"
	OpCmpEQF BinOpKind = "cmp.eq.f"
	OpCmpNEF BinOpKind = "cmp.ne.f"
	OpCmpEQPtr BinOpKind = "cmp.eq.ptr"
	OpCmpNEPtr BinOpKind = "cmp.ne.ptr"
)

// BinOp is a dispatched arithmetic/comparison instruction.
type BinOp struct {
	instrBase
	Op       BinOpKind
	LHS, RHS Value
}

func (i *BinOp) Opcode() string { return string(i.Op) }

// UnaryOpKind names a unary opcode.
type UnaryOpKind string

const (
	OpNegI UnaryOpKind = "neg.i"
	OpNegF UnaryOpKind = "neg.f"
	OpNot  UnaryOpKind = "not" // boolean complement, after boolification
)

// UnaryOp is a dispatched unary instruction.
type UnaryOp struct {
	instrBase
	Op      UnaryOpKind
	Operand Value
}

func (i *UnaryOp) Opcode() string { return string(i.Op) }

// CastKind names a numeric conversion per spec.md §4.7's cast_to
// matrix.
type CastKind string

const (
	CastSignExtend   CastKind = "sext"
	CastZeroExtend   CastKind = "zext"
	CastTruncate     CastKind = "trunc"
	CastIntToFloatS  CastKind = "sitofp"
	CastIntToFloatU  CastKind = "uitofp"
	CastFloatToIntS  CastKind = "fptosi"
	CastFloatToIntU  CastKind = "fptoui"
	CastFloatExtend  CastKind = "fpext"
	CastFloatTrunc   CastKind = "fptrunc"
	CastPtrIdentity  CastKind = "ptrcast"
	CastBoolify      CastKind = "boolify" // to_bool (spec.md §4.7)
)

// Cast converts Operand to the instruction's own Type per Kind.
type Cast struct {
	instrBase
	Kind    CastKind
	Operand Value
}

func (i *Cast) Opcode() string { return string(i.Kind) }

// GEPIndex is one step of a GEP (get-element-pointer) chain: either a
// constant struct-field index or a dynamic array/slice element index.
type GEPIndex struct {
	Field    int   // struct field index, used when Dynamic is nil
	Dynamic  Value // element index, used for array/slice indexing
}

// GEP computes the address of a struct field or array element inside
// the aggregate pointed to by Base, without loading through it.
type GEP struct {
	instrBase
	Base    Value
	Indices []GEPIndex
}

func (i *GEP) Opcode() string { return "gep" }

// CallAttr tags one formal parameter's passing convention (spec.md
// §4.5 prototype pass).
type CallAttr string

const (
	AttrNone         CallAttr = ""
	AttrStructReturn CallAttr = "sret"
	AttrByVal        CallAttr = "byval" // aggregate-by-value: physically passed by pointer, semantically by value
	AttrByRef        CallAttr = "byref"
)

// Call invokes Callee (a direct function reference or an indirect
// function-typed value) with Args, each tagged with the attribute
// reconstructed from the callee's function type (spec.md §4.5: "emit a
// call with the attribute list reconstructed from the callee's
// function type"). SRetSlot is non-nil when the callee returns a
// struct/optional value through a hidden first pointer argument.
type Call struct {
	instrBase
	Callee   Value
	Args     []Value
	Attrs    []CallAttr
	SRetSlot Value // nil unless the callee uses the struct-return convention
}

func (i *Call) Opcode() string { return "call" }

// Phi merges values flowing in from distinct predecessor blocks,
// used exclusively by short-circuit boolean lowering (spec.md §4.5:
// "a PHI that takes the short-circuited constant from predecessors
// that skipped the rhs").
type Phi struct {
	instrBase
	Incoming []PhiEdge
}

func (i *Phi) Opcode() string { return "phi" }

// PhiEdge is one (predecessor block, value) pair flowing into a Phi.
type PhiEdge struct {
	Block int
	Value Value
}

// Br is an unconditional branch to Target.
type Br struct {
	instrBase
	Target int
}

func (i *Br) Opcode() string { return "br" }

// CondBr branches to Then or Else depending on Cond (always i1).
type CondBr struct {
	instrBase
	Cond       Value
	Then, Else int
}

func (i *CondBr) Opcode() string { return "condbr" }

// Switch is a single multi-target branch (spec.md §4.5: "a single
// multi-target branch whose default edge is the else block").
type Switch struct {
	instrBase
	Cond    Value
	Cases   []SwitchCase
	Default int
}

func (i *Switch) Opcode() string { return "switch" }

// SwitchCase is one constant-value target of a Switch.
type SwitchCase struct {
	Value  Value
	Target int
}

// Ret returns Value from the current function.
type Ret struct {
	instrBase
	Value Value
}

func (i *Ret) Opcode() string { return "ret" }

// RetVoid returns with no value.
type RetVoid struct{ instrBase }

func (i *RetVoid) Opcode() string { return "ret.void" }

// Unreachable marks a block that cannot execute (e.g. the true-branch
// of a constant-`false` while condition). Block.Terminator and the
// text dump recognize it, but no lowering in this package emits one.
type Unreachable struct{ instrBase }

func (i *Unreachable) Opcode() string { return "unreachable" }

// Trap aborts the running program with a formatted message: used for
// a failed ErrUnwrapExpr (`!`) and a failed lockstep `for` length
// check (spec.md §4.5's ForStmt: "a runtime length-equality check
// aborts with a formatted message if lengths disagree").
type Trap struct {
	instrBase
	Message string
}

func (i *Trap) Opcode() string { return "trap" }
