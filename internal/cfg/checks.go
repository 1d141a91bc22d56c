package cfg

import (
	"fmt"

	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// Check builds fn's CFG and runs every flow-sensitive diagnostic this
// package owns, mirroring `Sema::run_flow_sensitive_checks` calling
// `check_return_on_all_paths` then `check_variable_initialization` on
// one builder-produced CFG per function.
func Check(fn *resolved.FuncDecl) []*errors.Report {
	if fn.Body == nil {
		return nil
	}
	graph := Build(fn)

	var reports []*errors.Report
	if r := CheckReturnOnAllPaths(fn, graph); r != nil {
		reports = append(reports, r)
	}
	reports = append(reports, CheckInitialization(graph)...)
	reports = append(reports, CheckUnreachable(graph)...)
	return reports
}

// CheckReturnOnAllPaths reports CFG001 if fn has a non-void return type
// and some path from entry reaches the exit block without passing
// through a return statement first. Grounded directly on
// `Semantic.cpp`'s `check_return_on_all_paths`: a worklist walk over
// reachable edges only, counting how many return statements are seen
// and whether the exit block itself is ever reached.
func CheckReturnOnAllPaths(fn *resolved.FuncDecl, graph *CFG) *errors.Report {
	if _, isVoid := fn.ReturnType.(types.Void); isVoid {
		return nil
	}

	returnCount := 0
	exitReached := false
	visited := map[int]bool{}
	worklist := []int{graph.Entry}

	for len(worklist) > 0 {
		bb := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if visited[bb] {
			continue
		}
		visited[bb] = true

		if bb == graph.Exit {
			exitReached = true
		}

		block := graph.Blocks[bb]
		if len(block.Nodes) > 0 {
			if _, ok := block.Nodes[0].(*resolved.ReturnStmt); ok {
				returnCount++
				continue
			}
		}

		for _, e := range block.Succs {
			if e.Reachable {
				worklist = append(worklist, e.To)
			}
		}
	}

	if !exitReached && returnCount > 0 {
		return nil
	}

	msg := "non-void function doesn't return a value"
	if returnCount > 0 {
		msg = "non-void function doesn't return a value on every path"
	}
	return errors.New(errors.CFG001, errors.Phase(errors.CFG001), fn.Position(), msg)
}

type initState int

const (
	bottom initState = iota
	unassigned
	assigned
	top
)

func joinState(a, b initState) initState {
	if a == b {
		return a
	}
	if a == bottom {
		return b
	}
	if b == bottom {
		return a
	}
	return top
}

type lattice map[resolved.Decl]initState

func (l lattice) equal(other lattice) bool {
	if len(l) != len(other) {
		return false
	}
	for k, v := range l {
		if other[k] != v {
			return false
		}
	}
	return true
}

// CheckInitialization runs a single forward must-be-assigned dataflow
// analysis to a fixed point over graph, reporting CFG002 (a variable
// read on some path where it may not yet have been assigned) and
// CFG003 (an assignment to a `const` binding past its one legal
// initializing assignment). Grounded directly on `Semantic.cpp`'s
// `check_variable_initialization`: same four-point lattice
// (Bottom/Unassigned/Assigned/Top joined at merge points), same
// iterate-to-fixed-point loop over blocks ordered from entry down to
// exit, same per-statement transfer function. Unlike the original,
// which folds both checks into one boolean diagnostic, each violation
// here is reported under its own code so a caller can filter or
// suppress them independently.
func CheckInitialization(graph *CFG) []*errors.Report {
	cur := make([]lattice, len(graph.Blocks))
	var pending []*errors.Report

	changed := true
	for changed {
		changed = false
		pending = nil

		for bb := graph.Entry; bb != graph.Exit; bb-- {
			block := graph.Blocks[bb]

			tmp := lattice{}
			for _, e := range block.Preds {
				for decl, st := range cur[e.To] {
					tmp[decl] = joinState(tmp[decl], st)
				}
			}

			for i := len(block.Nodes) - 1; i >= 0; i-- {
				pending = append(pending, transferNode(block.Nodes[i], tmp)...)
			}

			if !cur[bb].equal(tmp) {
				cur[bb] = tmp
				changed = true
			}
		}
	}

	return pending
}

func transferNode(node any, tmp lattice) []*errors.Report {
	switch v := node.(type) {
	case *resolved.DeclStmt:
		st := unassigned
		if v.Decl.Init != nil {
			st = assigned
		}
		tmp[v.Decl] = st
		return nil

	case *resolved.Assignment:
		decl, ok := assignmentTargetDecl(v.Target)
		if !ok {
			return nil
		}
		var reports []*errors.Report
		if vd, isVar := decl.(*resolved.VarDecl); isVar && vd.IsConst && tmp[decl] != unassigned {
			reports = append(reports, errors.New(errors.CFG003, errors.Phase(errors.CFG003), v.Position(),
				fmt.Sprintf("%q cannot be mutated", vd.Name)))
		}
		tmp[decl] = assigned
		return reports

	case *resolved.DeclRef:
		vd, ok := v.Decl.(*resolved.VarDecl)
		if !ok {
			return nil
		}
		if vd.Init != nil {
			tmp[vd] = assigned
		}
		if tmp[vd] != assigned {
			return []*errors.Report{errors.New(errors.CFG002, errors.Phase(errors.CFG002), v.Position(),
				fmt.Sprintf("%q is not initialized", vd.Name))}
		}
		return nil

	default:
		return nil
	}
}

// assignmentTargetDecl unwraps a chain of `.field` accesses down to the
// variable an assignment ultimately writes through, matching
// `check_variable_initialization`'s own `while (member) base =
// member->base`.
func assignmentTargetDecl(target resolved.Expr) (resolved.Decl, bool) {
	base := target
	for {
		m, ok := base.(*resolved.MemberExpr)
		if !ok {
			break
		}
		base = m.Base
	}
	dre, ok := base.(*resolved.DeclRef)
	if !ok {
		return nil, false
	}
	return dre.Decl, true
}

// CheckUnreachable reports CFG004 for every block that a reachable-edge
// walk from entry never visits but that still holds statements — code
// that a constant-folded branch has statically proven dead, e.g. the
// arm of an `if (false)`. Not present in the original (whose constant
// branches are simply recorded as unreachable edges and left for
// codegen to prune silently); added here so the diagnostic surfaces to
// the user instead of disappearing.
func CheckUnreachable(graph *CFG) []*errors.Report {
	reached := map[int]bool{}
	queue := []int{graph.Entry}
	for len(queue) > 0 {
		id := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		if reached[id] {
			continue
		}
		reached[id] = true
		for _, e := range graph.Blocks[id].Succs {
			if e.Reachable {
				queue = append(queue, e.To)
			}
		}
	}

	var reports []*errors.Report
	for _, block := range graph.Blocks {
		if reached[block.ID] || block.ID == graph.Exit {
			continue
		}
		for _, node := range block.Nodes {
			stmt, ok := node.(resolved.Stmt)
			if !ok {
				continue
			}
			if _, isBlock := stmt.(*resolved.Block); isBlock {
				continue
			}
			reports = append(reports, errors.New(errors.CFG004, errors.Phase(errors.CFG004), stmt.Position(), "unreachable code"))
			break
		}
	}
	return reports
}
