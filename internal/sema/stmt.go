package sema

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// resolveBlock resolves a block in its own lexical scope, so names
// declared inside it (via DeclStmt/for-captures) don't leak past its
// closing brace.
func (r *Resolver) resolveBlock(b *ast.Block) *resolved.Block {
	r.pushScope()
	defer r.popScope()
	return r.resolveBlockNoScope(b)
}

// resolveBlockNoScope resolves b's statements without pushing a new
// scope, used for a for-loop body whose own scope was already pushed
// by the caller to also hold its captures.
func (r *Resolver) resolveBlockNoScope(b *ast.Block) *resolved.Block {
	out := &resolved.Block{Stmts: make([]resolved.Stmt, 0, len(b.Stmts))}
	out.Pos = b.Pos
	for _, s := range b.Stmts {
		out.Stmts = append(out.Stmts, r.resolveStmt(s))
	}
	// b's own scope is exactly the innermost defer frame at this point
	// (every call site pushes a fresh scope/frame pair immediately
	// before resolving this block's statements), so this frame alone —
	// not the transitive stack a return would snapshot — is what a
	// plain fall-through past this block's end must expand.
	frame := r.defers[len(r.defers)-1]
	out.Defers = append([]resolved.DeferEntry(nil), frame.entries...)
	return out
}

func (r *Resolver) resolveStmt(s ast.Stmt) resolved.Stmt {
	switch v := s.(type) {
	case *ast.Block:
		return r.resolveBlock(v)
	case *ast.IfStmt:
		return r.resolveIf(v)
	case *ast.WhileStmt:
		return r.resolveWhile(v)
	case *ast.ForStmt:
		return r.resolveFor(v)
	case *ast.SwitchStmt:
		return r.resolveSwitch(v)
	case *ast.ReturnStmt:
		return r.resolveReturn(v)
	case *ast.DeclStmt:
		return r.resolveDeclStmt(v)
	case *ast.ExprStmt:
		x := r.resolveExpr(v.X)
		out := &resolved.ExprStmt{X: x}
		out.Pos, out.Orig = v.Pos, v
		return out
	case *ast.Assignment:
		return r.resolveAssignment(v)
	case *ast.DeferStmt:
		return r.resolveDefer(v)
	case *ast.ErrDeferStmt:
		return r.resolveErrDefer(v)
	default:
		r.error(errors.RES003, s.Position(), "unresolvable statement %s", s)
		out := &resolved.Block{}
		out.Pos = s.Position()
		return out
	}
}

func (r *Resolver) resolveIf(v *ast.IfStmt) resolved.Stmt {
	cond := r.resolveExpr(v.Cond)
	then := r.resolveBlock(v.Then)
	out := &resolved.IfStmt{Cond: cond, Then: then}
	out.Pos, out.Orig = v.Pos, v
	if v.Else != nil {
		out.Else = r.resolveStmt(v.Else)
	}
	return out
}

func (r *Resolver) resolveWhile(v *ast.WhileStmt) resolved.Stmt {
	cond := r.resolveExpr(v.Cond)
	body := r.resolveBlock(v.Body)
	out := &resolved.WhileStmt{Cond: cond, Body: body}
	out.Pos, out.Orig = v.Pos, v
	return out
}

// resolveFor resolves a lockstep `for (cap, ... in cond, ...) body`:
// each capture's element type comes from its paired condition (a
// RangeExpr yields its bound type, a Slice/Array/Pointer condition
// yields its element type), and the captures are bound as VarDecls
// in the body's own scope alongside the loop body statements.
func (r *Resolver) resolveFor(v *ast.ForStmt) resolved.Stmt {
	r.pushScope()
	defer r.popScope()

	out := &resolved.ForStmt{}
	out.Pos, out.Orig = v.Pos, v

	for i, cond := range v.Conditions {
		rc := r.resolveExpr(cond)
		out.Conditions = append(out.Conditions, rc)
		if i >= len(v.Captures) {
			continue
		}
		cap := v.Captures[i]
		elemType := forCaptureElemType(rc.ExprType())
		vd := &resolved.VarDecl{Name: cap.Name, Type: elemType}
		vd.Pos = cap.Pos
		r.insert(cap.Name, vd, cap.Pos)
		out.Captures = append(out.Captures, &resolved.Capture{Name: cap.Name, Decl: vd})
	}

	out.Body = r.resolveBlockNoScope(v.Body)
	return out
}

func forCaptureElemType(condType types.Type) types.Type {
	switch t := types.Underlying(condType).(type) {
	case types.Slice:
		return t.Inner
	case types.Array:
		return t.Inner
	case types.Pointer:
		return t.Inner
	default:
		return condType
	}
}

func (r *Resolver) resolveSwitch(v *ast.SwitchStmt) resolved.Stmt {
	cond := r.resolveExpr(v.Cond)
	out := &resolved.SwitchStmt{Cond: cond}
	out.Pos, out.Orig = v.Pos, v
	for _, c := range v.Cases {
		nc := &resolved.CaseClause{Body: r.resolveBlock(c.Body)}
		for _, val := range c.Values {
			nc.Values = append(nc.Values, r.resolveExpr(val))
		}
		out.Cases = append(out.Cases, nc)
	}
	out.Else = r.resolveBlock(v.Else)
	return out
}

// resolveReturn resolves the return value (if any) and snapshots every
// defer/errdefer frame from the current function's body scope down to
// the innermost scope, in declaration order, into a DeferRefStmt
// wrapping the return — this is how spec.md §4.4's "defers run in
// reverse declaration order at every return point" gets realized
// without re-walking the tree at lowering time. IsErrorPath is set
// when the return's own value is an error literal (`return @Err;`), so
// codegen also expands the errdefer entries at that point; a `try`'s own implicit
// error-propagating return is a separate early-exit lowering handles,
// not a ReturnStmt node reaching here.
func (r *Resolver) resolveReturn(v *ast.ReturnStmt) resolved.Stmt {
	out := &resolved.ReturnStmt{}
	out.Pos, out.Orig = v.Pos, v
	if v.Value != nil {
		out.Value = r.resolveExpr(v.Value)
	}

	ref := r.snapshotDefers(isErrorReturn(out.Value))
	if len(ref.Entries) == 0 {
		return out
	}
	block := &resolved.Block{Stmts: []resolved.Stmt{ref, out}}
	block.Pos = v.Pos
	return block
}

func isErrorReturn(value resolved.Expr) bool {
	switch value.(type) {
	case *resolved.ErrorInPlaceExpr:
		return true
	default:
		return false
	}
}

// snapshotDefers collects every defer/errdefer pushed since the
// current function's body scope began, in declaration order (outer
// frame first), as a single combined vector — lowering walks it back
// to front, so this is what makes an interleaved `defer`/`errdefer`
// sequence come out in true LIFO order over push order, rather than as
// two separately-reversed groups.
func (r *Resolver) snapshotDefers(isErrorPath bool) *resolved.DeferRefStmt {
	ref := &resolved.DeferRefStmt{IsErrorPath: isErrorPath}
	for _, frame := range r.defers {
		ref.Entries = append(ref.Entries, frame.entries...)
	}
	return ref
}

func (r *Resolver) resolveDeclStmt(v *ast.DeclStmt) resolved.Stmt {
	vd := r.resolveLocalVar(v.Decl)
	out := &resolved.DeclStmt{Decl: vd}
	out.Pos, out.Orig = v.Pos, v
	return out
}

func (r *Resolver) resolveLocalVar(src *ast.VarDecl) *resolved.VarDecl {
	vd := &resolved.VarDecl{Name: src.Name, IsConst: src.IsConst}
	vd.Pos = src.Pos
	if src.Type != nil {
		vd.Type = r.resolveType(src.Type)
	}
	if src.Init != nil {
		vd.Init = r.resolveExpr(src.Init)
		if vd.Type == nil {
			vd.Type = vd.Init.ExprType()
		}
	} else if vd.Type == nil {
		r.error(errors.RES003, src.Pos, "variable %q needs either a declared type or an initializer", src.Name)
		vd.Type = types.Void{}
	}
	r.insert(src.Name, vd, src.Pos)
	return vd
}

// resolveAssignment resolves target and value, reporting RES009 if
// target isn't an assignable expression (a DeclRef, a member access,
// a self-member access, an array-index expression, or a dereference).
// The operand types of a compound assignment are not compared with
// each other. Assignment to a `const` binding is a control-flow
// concern (spec.md's CFG003, since a `const` declared without an
// initializer can still be assigned exactly once) and is left to
// internal/cfg, not checked here.
func (r *Resolver) resolveAssignment(v *ast.Assignment) resolved.Stmt {
	target := r.resolveExpr(v.Target)
	value := r.resolveExpr(v.Value)
	if !isAssignable(target) {
		r.error(errors.RES009, v.Pos, "left-hand side of assignment is not assignable")
	}
	out := &resolved.Assignment{Target: target, Op: v.Op, Value: value}
	out.Pos, out.Orig = v.Pos, v
	return out
}

func isAssignable(e resolved.Expr) bool {
	switch e.(type) {
	case *resolved.DeclRef, *resolved.MemberExpr, *resolved.SelfMemberExpr, *resolved.ArrayAtExpr, *resolved.DerefExpr:
		return true
	default:
		return false
	}
}

func (r *Resolver) resolveDefer(v *ast.DeferStmt) resolved.Stmt {
	body := r.resolveBlock(v.Body)
	out := &resolved.DeferStmt{Body: body}
	out.Pos, out.Orig = v.Pos, v
	frame := r.defers[len(r.defers)-1]
	frame.entries = append(frame.entries, resolved.DeferEntry{Defer: out})
	return out
}

func (r *Resolver) resolveErrDefer(v *ast.ErrDeferStmt) resolved.Stmt {
	if r.currentFunc == nil {
		r.error(errors.RES008, v.Pos, "errdefer used outside a function")
	} else if _, ok := r.currentFunc.ReturnType.(types.Optional); !ok {
		r.error(errors.RES008, v.Pos, "errdefer used in a function whose return type is not an error union")
	}
	body := r.resolveBlock(v.Body)
	out := &resolved.ErrDeferStmt{Body: body}
	out.Pos, out.Orig = v.Pos, v
	frame := r.defers[len(r.defers)-1]
	frame.entries = append(frame.entries, resolved.DeferEntry{ErrDefer: out})
	return out
}
