// Package cfg builds a basic-block control-flow graph for a resolved
// function body and runs the flow-sensitive checks that need one:
// returns-on-all-paths, use-before-assignment, assignment to a `const`
// binding, and unreachable code (after an unconditional return or in a
// constant-folded-away branch). Grounded
// directly on `_examples/original_source/include/semantic/CFG.hpp` and
// `CFG.cpp`'s `BasicBlock`/`CFG`/`CFGBuilder` shape (the block graph is
// built bottom-up from a synthetic exit block, exactly as there), with
// the block/edge representation itself following
// `internal/dtree/decision_tree.go` (teacher)'s tagged-union
// node-graph idiom.
package cfg

// Edge is one graph edge tagged with whether it is reachable: a branch
// on a constant-foldable condition statically rules out one arm, and
// that arm's edge is recorded unreachable rather than dropped, so
// "unreachable code" diagnostics can still point at it.
type Edge struct {
	To        int
	Reachable bool
}

// Block is one basic block: a straight-line run of statements with no
// internal branch, terminated by falling through to its successors.
//
// Nodes holds a mix of resolved.Stmt and resolved.Expr: the original's
// C++ ResolvedExpr derives from ResolvedStmt, so its CFG can store both
// in one `vector<const ResolvedStmt*>`; Go's Stmt/Expr are separate
// interfaces (Expr also carries ExprType()), so this package widens the
// slot to `any` and type-switches at the consumer. Every checker in
// this package that reads Nodes expects both kinds to appear.
type Block struct {
	ID    int
	Preds []Edge
	Succs []Edge
	Nodes []any
}

// CFG is the control-flow graph of a single function body.
type CFG struct {
	Blocks []*Block
	Entry  int
	Exit   int
}

// InsertNewBlock appends a fresh empty block and returns its ID.
func (c *CFG) InsertNewBlock() int {
	id := len(c.Blocks)
	c.Blocks = append(c.Blocks, &Block{ID: id})
	return id
}

// InsertNewBlockBefore allocates a new block with a single successor
// edge to before, and returns the new block's ID.
func (c *CFG) InsertNewBlockBefore(before int, reachable bool) int {
	b := c.InsertNewBlock()
	c.InsertEdge(b, before, reachable)
	return b
}

// InsertEdge records a directed edge from -> to, visible from both
// ends (to's Preds and from's Succs), tagged reachable.
func (c *CFG) InsertEdge(from, to int, reachable bool) {
	c.Blocks[from].Succs = append(c.Blocks[from].Succs, Edge{To: to, Reachable: reachable})
	c.Blocks[to].Preds = append(c.Blocks[to].Preds, Edge{To: from, Reachable: reachable})
}

// InsertNode appends node (a resolved.Stmt or resolved.Expr) to block's
// node list. Nodes are appended in the order the builder visits them,
// which is back-to-front relative to source order (see builder.go) —
// every consumer in this package walks a block's Nodes with that
// reversal in mind.
func (c *CFG) InsertNode(node any, block int) {
	c.Blocks[block].Nodes = append(c.Blocks[block].Nodes, node)
}
