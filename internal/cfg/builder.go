package cfg

import (
	"github.com/dmzlang/dmzc/internal/consteval"
	"github.com/dmzlang/dmzc/internal/resolved"
)

// Build constructs fn's control-flow graph, walking its body bottom-up
// from a synthetic exit block exactly as
// `_examples/original_source/src/semantic/CFG.cpp`'s `CFGBuilder::build`
// does: the exit block is allocated first, the body is threaded
// backwards into it, and the entry block is then prepended.
func Build(fn *resolved.FuncDecl) *CFG {
	b := &builder{cfg: &CFG{}}
	b.cfg.Exit = b.cfg.InsertNewBlock()

	body := b.insertBlock(fn.Body, b.cfg.Exit)

	b.cfg.Entry = b.cfg.InsertNewBlockBefore(body, true)
	return b.cfg
}

type builder struct {
	cfg *CFG
}

// isTerminator reports whether stmt already ends its own basic block
// (an if/while/for branches, a return always starts a fresh block right
// before the exit). Every other statement is a straight-line
// instruction that can share a block with its neighbors. Matches
// `CFG.cpp`'s `is_terminator`, generalized to this language's `for` and
// `switch` (both absent from the original, both branching constructs).
func isTerminator(stmt resolved.Stmt) bool {
	switch stmt.(type) {
	case *resolved.IfStmt, *resolved.WhileStmt, *resolved.ForStmt, *resolved.SwitchStmt, *resolved.ReturnStmt:
		return true
	default:
		return false
	}
}

// isLoopHeader reports whether stmt is the kind that, once lowered,
// becomes its own block boundary separate from whatever statement
// precedes it in source order (mirrors CFG.cpp's
// `insertNewBlock = dynamic_cast<const ResolvedWhileStmt *>(it->get())`,
// widened to cover `for`).
func isLoopHeader(stmt resolved.Stmt) bool {
	switch stmt.(type) {
	case *resolved.WhileStmt, *resolved.ForStmt:
		return true
	default:
		return false
	}
}

// insertBlock threads block's statements, in reverse source order,
// into the CFG ending at succ, returning the ID of the block that is
// now block's entry. block's own defer vector (non-errdefer entries
// only — an ordinary block exit never takes the error path) is threaded
// in first, mirroring the DeferRefStmt case below, so a fall-through
// past block's end without an explicit return still reaches these
// defer bodies before succ (spec.md §4.3's block-exit synthesis).
func (b *builder) insertBlock(block *resolved.Block, succ int) int {
	for i := len(block.Defers) - 1; i >= 0; i-- {
		e := block.Defers[i]
		if e.IsErrDefer() {
			continue
		}
		succ = b.insertBlock(e.Body(), succ)
	}

	insertNewBlock := true
	for i := len(block.Stmts) - 1; i >= 0; i-- {
		stmt := block.Stmts[i]
		if insertNewBlock && !isTerminator(stmt) {
			succ = b.cfg.InsertNewBlockBefore(succ, true)
		}
		insertNewBlock = isLoopHeader(stmt)
		succ = b.insertStmt(stmt, succ)
	}
	return succ
}

func (b *builder) insertStmt(stmt resolved.Stmt, block int) int {
	switch v := stmt.(type) {
	case *resolved.IfStmt:
		return b.insertIfStmt(v, block)
	case *resolved.WhileStmt:
		return b.insertWhileStmt(v, block)
	case *resolved.ForStmt:
		return b.insertForStmt(v, block)
	case *resolved.SwitchStmt:
		return b.insertSwitchStmt(v, block)
	case *resolved.ReturnStmt:
		return b.insertReturnStmt(v, block)
	case *resolved.DeclStmt:
		return b.insertDeclStmt(v, block)
	case *resolved.Assignment:
		return b.insertAssignment(v, block)
	case *resolved.ExprStmt:
		b.cfg.InsertNode(v, block)
		return b.insertExpr(v.X, block)
	case *resolved.Block:
		return b.insertBlock(v, block)
	case *resolved.DeferStmt, *resolved.ErrDeferStmt:
		// A defer's body only executes when a DeferRefStmt snapshot
		// expands it at a return site; its declaration point itself
		// isn't part of the straight-line control flow.
		return block
	case *resolved.DeferRefStmt:
		b.cfg.InsertNode(v, block)
		for i := len(v.Entries) - 1; i >= 0; i-- {
			e := v.Entries[i]
			if e.IsErrDefer() && !v.IsErrorPath {
				continue
			}
			block = b.insertBlock(e.Body(), block)
		}
		return block
	default:
		b.cfg.InsertNode(stmt, block)
		return block
	}
}

func (b *builder) insertReturnStmt(stmt *resolved.ReturnStmt, block int) int {
	block = b.cfg.InsertNewBlockBefore(b.cfg.Exit, true)
	b.cfg.InsertNode(stmt, block)
	if stmt.Value != nil {
		return b.insertExpr(stmt.Value, block)
	}
	return block
}

// insertExpr records expr and recurses into its operands, so the
// use-before-assignment dataflow check in checks.go can see every
// DeclRef at the granularity it actually occurs at, not just at
// statement boundaries. Grounded on `CFG.cpp`'s `insert_expr`.
func (b *builder) insertExpr(expr resolved.Expr, block int) int {
	b.cfg.InsertNode(expr, block)

	switch v := expr.(type) {
	case *resolved.CallExpr:
		for i := len(v.Args) - 1; i >= 0; i-- {
			block = b.insertExpr(v.Args[i], block)
		}
		return block
	case *resolved.MemberExpr:
		return b.insertExpr(v.Base, block)
	case *resolved.SelfMemberExpr:
		return block
	case *resolved.ArrayAtExpr:
		block = b.insertExpr(v.Index, block)
		return b.insertExpr(v.Base, block)
	case *resolved.ArrayInstantiationExpr:
		for i := len(v.Elements) - 1; i >= 0; i-- {
			block = b.insertExpr(v.Elements[i], block)
		}
		return block
	case *resolved.BinaryExpr:
		block = b.insertExpr(v.RHS, block)
		return b.insertExpr(v.LHS, block)
	case *resolved.UnaryExpr:
		return b.insertExpr(v.Operand, block)
	case *resolved.RefExpr:
		return b.insertExpr(v.Operand, block)
	case *resolved.DerefExpr:
		return b.insertExpr(v.Operand, block)
	case *resolved.StructInstantiationExpr:
		for i := len(v.Fields) - 1; i >= 0; i-- {
			block = b.insertExpr(v.Fields[i].Value, block)
		}
		return block
	case *resolved.RangeExpr:
		block = b.insertExpr(v.Hi, block)
		return b.insertExpr(v.Lo, block)
	case *resolved.CatchErrExpr:
		return b.insertExpr(v.Operand, block)
	case *resolved.TryErrExpr:
		return b.insertExpr(v.Operand, block)
	case *resolved.ErrUnwrapExpr:
		return b.insertExpr(v.Operand, block)
	case *resolved.OrElseExpr:
		block = b.insertExpr(v.Fallback, block)
		return b.insertExpr(v.Operand, block)
	default:
		return block
	}
}

func (b *builder) insertIfStmt(stmt *resolved.IfStmt, exit int) int {
	falseBlock := exit
	if stmt.Else != nil {
		falseBlock = b.insertElseArm(stmt.Else, exit)
	}
	trueBlock := b.insertBlock(stmt.Then, exit)

	entry := b.cfg.InsertNewBlock()

	val, known := evalBool(stmt.Cond)
	b.cfg.InsertEdge(entry, trueBlock, !known || val)
	b.cfg.InsertEdge(entry, falseBlock, !known || !val)

	b.cfg.InsertNode(stmt, entry)
	return b.insertExpr(stmt.Cond, entry)
}

// insertElseArm resolves an else arm that is itself an IfStmt (an
// `else if` chain) by recursing through insertStmt, or a plain Block.
func (b *builder) insertElseArm(elseStmt resolved.Stmt, exit int) int {
	switch v := elseStmt.(type) {
	case *resolved.Block:
		return b.insertBlock(v, exit)
	default:
		return b.insertStmt(v, exit)
	}
}

func (b *builder) insertWhileStmt(stmt *resolved.WhileStmt, exit int) int {
	latch := b.cfg.InsertNewBlock()
	body := b.insertBlock(stmt.Body, latch)

	header := b.cfg.InsertNewBlock()
	b.cfg.InsertEdge(latch, header, true)

	val, known := evalBool(stmt.Cond)
	b.cfg.InsertEdge(header, body, !known || val)
	b.cfg.InsertEdge(header, exit, !known || !val)

	b.cfg.InsertNode(stmt, header)
	b.insertExpr(stmt.Cond, header)
	return header
}

// insertForStmt treats the lockstep `for` the same as `while`: its trip
// count isn't constant-foldable (it depends on a runtime slice/array
// length), so both the body and the exit edges are always reachable.
func (b *builder) insertForStmt(stmt *resolved.ForStmt, exit int) int {
	latch := b.cfg.InsertNewBlock()
	body := b.insertBlock(stmt.Body, latch)

	header := b.cfg.InsertNewBlock()
	b.cfg.InsertEdge(latch, header, true)
	b.cfg.InsertEdge(header, body, true)
	b.cfg.InsertEdge(header, exit, true)

	b.cfg.InsertNode(stmt, header)
	for i := len(stmt.Conditions) - 1; i >= 0; i-- {
		b.insertExpr(stmt.Conditions[i], header)
	}
	return header
}

func (b *builder) insertSwitchStmt(stmt *resolved.SwitchStmt, exit int) int {
	caseBlocks := make([]int, len(stmt.Cases)+1)
	for i, c := range stmt.Cases {
		caseBlocks[i] = b.insertBlock(c.Body, exit)
	}
	caseBlocks[len(stmt.Cases)] = b.insertBlock(stmt.Else, exit)

	entry := b.cfg.InsertNewBlock()

	val, valKnown := evalInt(stmt.Cond)
	reachableCase := -1
	for i, c := range stmt.Cases {
		for _, caseVal := range c.Values {
			cv, caseKnown := evalInt(caseVal)
			if valKnown && caseKnown && val == cv {
				reachableCase = i
			}
		}
	}

	for i, blk := range caseBlocks[:len(stmt.Cases)] {
		anyUnknown := !valKnown
		for _, caseVal := range stmt.Cases[i].Values {
			if _, ok := evalInt(caseVal); !ok {
				anyUnknown = true
			}
		}
		b.cfg.InsertEdge(entry, blk, anyUnknown || reachableCase == i)
	}
	b.cfg.InsertEdge(entry, caseBlocks[len(stmt.Cases)], !valKnown || reachableCase == -1)

	b.cfg.InsertNode(stmt, entry)
	return b.insertExpr(stmt.Cond, entry)
}

func (b *builder) insertDeclStmt(stmt *resolved.DeclStmt, block int) int {
	b.cfg.InsertNode(stmt, block)
	if stmt.Decl.Init != nil {
		return b.insertExpr(stmt.Decl.Init, block)
	}
	return block
}

func (b *builder) insertAssignment(stmt *resolved.Assignment, block int) int {
	b.cfg.InsertNode(stmt, block)
	if _, isPlainRef := stmt.Target.(*resolved.DeclRef); !isPlainRef {
		block = b.insertExpr(stmt.Target, block)
	}
	return b.insertExpr(stmt.Value, block)
}

func evalBool(expr resolved.Expr) (value bool, known bool) {
	v, ok := consteval.Evaluate(expr)
	if !ok {
		return false, false
	}
	switch v.Kind {
	case consteval.Bool:
		return v.Bool, true
	case consteval.Int:
		return v.Int != 0, true
	case consteval.Float:
		return v.Float != 0, true
	default:
		return false, false
	}
}

func evalInt(expr resolved.Expr) (value int64, known bool) {
	v, ok := consteval.Evaluate(expr)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}
