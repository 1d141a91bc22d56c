package ir

// FuncStatus is a function's emission state, advanced monotonically by
// the prototype and body passes (spec.md §4.5, "State machine —
// function emission status").
type FuncStatus int

const (
	// DeclaredSignatureOnly is the state every non-generic function and
	// every specialization starts in once the prototype pass has run.
	DeclaredSignatureOnly FuncStatus = iota
	// BodyEmitted is reached once the body pass lowers the function's
	// statements.
	BodyEmitted
	// GenericTemplateOnly marks a generic template itself: spec.md
	// §4.5 emits nothing for the template, only for each stored
	// specialization, so a template's Func value never advances past
	// this state.
	GenericTemplateOnly
)

// Param is one lowered formal parameter.
type Param struct {
	Name string
	Typ  Type
	Attr CallAttr
}

// Block is one basic block of a function body: a straight-line
// instruction run with at most one terminator (Br/CondBr/Switch/
// Ret/RetVoid/Unreachable/Trap) as its last instruction.
type Block struct {
	ID     int
	Label  string
	Instrs []Instr
}

// InsertAt splices instr into the block at position idx, shifting
// later instructions down. Used only for the entry block's alloca/
// memset insertion cursors (spec.md §4.5's "two placeholder
// instructions"), so a local declared deep inside a nested block still
// gets one stable stack slot hoisted to function entry.
func (b *Block) InsertAt(idx int, instr Instr) {
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = instr
}

// Terminator returns the block's terminating instruction, or nil if
// the block has not been closed yet.
func (b *Block) Terminator() Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	switch last.(type) {
	case *Br, *CondBr, *Switch, *Ret, *RetVoid, *Unreachable, *Trap:
		return last
	default:
		return nil
	}
}

// Func is one lowered function: either a concrete (non-generic)
// function, an extern declaration, or one on-demand specialization of
// a generic. Generic templates themselves are represented (Status ==
// GenericTemplateOnly) so the prototype pass has somewhere to record
// that a symbol exists, but carry no Blocks.
type Func struct {
	Name         string
	Params       []*Param
	ReturnType   Type // Void once a struct/optional return has been lowered to StructReturn
	StructReturn bool
	RetSlotType  Type // the pointee type of the hidden sret parameter, when StructReturn
	IsExtern     bool
	Blocks       []*Block
	Status       FuncStatus

	nextValueID ValueID
	nextBlockID int
}

// NewBlock appends a fresh block to f and returns it.
func (f *Func) NewBlock(label string) *Block {
	b := &Block{ID: f.nextBlockID, Label: label}
	f.nextBlockID++
	f.Blocks = append(f.Blocks, b)
	return b
}

func (f *Func) nextID() ValueID {
	id := f.nextValueID
	f.nextValueID++
	return id
}

// Global is a module-level constant: every interned error tag string,
// the SUCCESS sentinel (spec.md §6: "The success sentinel is a
// global named err.str.SUCCESS"), and the byte backing of every
// interned string literal.
type Global struct {
	Name  string
	Typ   Type
	Value string // the tag's or string literal's payload
}

// Module is the finished typed SSA module C7 hands to the driver (C8)
// for backend handoff. Structs are recorded in emission order so a
// text dump can replay the two-pass opaque-then-bodied discipline
// spec.md §3 requires for self-referential layouts.
type Module struct {
	Name    string
	Structs []*StructType
	Globals []*Global
	Funcs   []*Func
}

func (m *Module) addStruct(st *StructType) { m.Structs = append(m.Structs, st) }
func (m *Module) addGlobal(g *Global)      { m.Globals = append(m.Globals, g) }
func (m *Module) addFunc(f *Func)          { m.Funcs = append(m.Funcs, f) }
