package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// String renders m in the flat basic-block text format handed to the
// external backend (spec.md §6's "IR module" interface): structs in
// declaration order (so a dump replays the two-pass opaque-then-bodied
// discipline directly), then globals, then functions, each block
// labeled and each instruction printed as "%id = opcode operands" (or
// bare "opcode operands" for a void-typed one). Symbol names already
// carry the full "struct.<module-path>.<name>[<specialization>]" /
// "err.str.<module-path>.<name>" shapes spec.md §6 requires; this
// file only lays out the surrounding syntax.
func (m *Module) String() string {
	var sb strings.Builder
	if m.Name != "" {
		fmt.Fprintf(&sb, "; module %s\n", m.Name)
	}
	for _, st := range m.Structs {
		writeStruct(&sb, st)
	}
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, "global %s @%s = %q\n", g.Typ, g.Name, g.Value)
	}
	for _, f := range m.Funcs {
		writeFunc(&sb, f)
	}
	return sb.String()
}

func writeStruct(sb *strings.Builder, st *StructType) {
	fmt.Fprintf(sb, "struct %s {\n", st.Name)
	for i, ft := range st.Fields {
		fmt.Fprintf(sb, "  %d: %s\n", i, ft)
	}
	sb.WriteString("}\n")
}

func writeFunc(sb *strings.Builder, f *Func) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		attr := ""
		if p.Attr != AttrNone {
			attr = " " + string(p.Attr)
		}
		params[i] = fmt.Sprintf("%s: %s%s", p.Name, p.Typ, attr)
	}
	kind := "func"
	if f.IsExtern {
		kind = "extern func"
	}
	fmt.Fprintf(sb, "%s %s(%s) -> %s", kind, f.Name, strings.Join(params, ", "), f.ReturnType)
	if f.Status != BodyEmitted || len(f.Blocks) == 0 {
		sb.WriteString(";\n")
		return
	}
	sb.WriteString(" {\n")
	for _, b := range f.Blocks {
		fmt.Fprintf(sb, "%s:\n", blockLabel(b))
		for _, instr := range b.Instrs {
			sb.WriteString("  ")
			writeInstr(sb, instr)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("}\n")
}

func blockLabel(b *Block) string {
	return fmt.Sprintf("%s.%d", b.Label, b.ID)
}

func blockRef(f *Func, id int) string {
	for _, b := range f.Blocks {
		if b.ID == id {
			return blockLabel(b)
		}
	}
	return fmt.Sprintf("block%d", id)
}

// writeInstr writes one instruction's assignment (if it produces a
// value) and its opcode-specific operand list.
func writeInstr(sb *strings.Builder, instr Instr) {
	if _, isVoid := instr.Type().(VoidType); !isVoid {
		fmt.Fprintf(sb, "%s = ", instr.Operand())
	}
	switch i := instr.(type) {
	case *Alloca:
		fmt.Fprintf(sb, "alloca %s", i.Elem)
		if i.Name != "" {
			fmt.Fprintf(sb, " ; %s", i.Name)
		}
	case *Store:
		fmt.Fprintf(sb, "store %s, %s", i.Value.Operand(), i.Ptr.Operand())
	case *Load:
		fmt.Fprintf(sb, "load %s", i.Ptr.Operand())
	case *Memset:
		fmt.Fprintf(sb, "memset %s, %d", i.Ptr.Operand(), i.Size)
	case *BinOp:
		fmt.Fprintf(sb, "%s %s, %s", i.Op, i.LHS.Operand(), i.RHS.Operand())
	case *UnaryOp:
		fmt.Fprintf(sb, "%s %s", i.Op, i.Operand.Operand())
	case *Cast:
		fmt.Fprintf(sb, "%s %s to %s", i.Kind, i.Operand.Operand(), i.Type())
	case *GEP:
		parts := make([]string, len(i.Indices))
		for j, idx := range i.Indices {
			if idx.Dynamic != nil {
				parts[j] = idx.Dynamic.Operand()
			} else {
				parts[j] = strconv.Itoa(idx.Field)
			}
		}
		fmt.Fprintf(sb, "gep %s, %s", i.Base.Operand(), strings.Join(parts, ", "))
	case *Call:
		args := make([]string, len(i.Args))
		for j, a := range i.Args {
			attr := ""
			if j < len(i.Attrs) && i.Attrs[j] != AttrNone {
				attr = " " + string(i.Attrs[j])
			}
			args[j] = a.Operand() + attr
		}
		fmt.Fprintf(sb, "call %s(%s)", i.Callee.Operand(), strings.Join(args, ", "))
	case *Phi:
		edges := make([]string, len(i.Incoming))
		for j, e := range i.Incoming {
			edges[j] = fmt.Sprintf("[%s, %d]", e.Value.Operand(), e.Block)
		}
		fmt.Fprintf(sb, "phi %s", strings.Join(edges, ", "))
	case *Br:
		fmt.Fprintf(sb, "br %d", i.Target)
	case *CondBr:
		fmt.Fprintf(sb, "condbr %s, %d, %d", i.Cond.Operand(), i.Then, i.Else)
	case *Switch:
		cases := make([]string, len(i.Cases))
		for j, c := range i.Cases {
			cases[j] = fmt.Sprintf("[%s, %d]", c.Value.Operand(), c.Target)
		}
		fmt.Fprintf(sb, "switch %s, default %d, %s", i.Cond.Operand(), i.Default, strings.Join(cases, ", "))
	case *Ret:
		fmt.Fprintf(sb, "ret %s", i.Value.Operand())
	case *RetVoid:
		sb.WriteString("ret.void")
	case *Unreachable:
		sb.WriteString("unreachable")
	case *Trap:
		fmt.Fprintf(sb, "trap %q", i.Message)
	default:
		fmt.Fprintf(sb, "%s <unknown>", instr.Opcode())
	}
}

var _ = blockRef // reserved for a future jump-table dump that needs label names rather than raw block IDs
