package sema

import (
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/types"
)

// substCtx carries one specialization's type-argument substitution
// plus the identity memo for every ParamDecl/VarDecl it clones: a
// generic template's body is walked once per specialization, and every
// occurrence of the same original declaration (its DeclStmt, every
// DeclRef/SelfMemberExpr/Capture that names it) must clone to the same
// new object, or downstream identity-keyed passes (CFG, codegen slot
// allocation) would treat one local as several.
type substCtx struct {
	subs   map[string]types.Type
	params map[*resolved.ParamDecl]*resolved.ParamDecl
	locals map[*resolved.VarDecl]*resolved.VarDecl
}

func newSubstCtx(subs map[string]types.Type) *substCtx {
	return &substCtx{
		subs:   subs,
		params: map[*resolved.ParamDecl]*resolved.ParamDecl{},
		locals: map[*resolved.VarDecl]*resolved.VarDecl{},
	}
}

func (c *substCtx) param(p *resolved.ParamDecl) *resolved.ParamDecl {
	if p == nil {
		return nil
	}
	if np, ok := c.params[p]; ok {
		return np
	}
	np := &resolved.ParamDecl{Orig: p.Orig, Name: p.Name, Type: p.Type.Substitute(c.subs), Pos: p.Pos}
	c.params[p] = np
	return np
}

// local returns the clone of v for this specialization, creating it
// (and registering it in the memo before substituting Init) the first
// time v is seen, so a DeclRef reached before its owning DeclStmt in
// source order — never possible for this language's scoping, but also
// never assumed here — still resolves to the same object.
func (c *substCtx) local(v *resolved.VarDecl) *resolved.VarDecl {
	if v == nil {
		return nil
	}
	if nv, ok := c.locals[v]; ok {
		return nv
	}
	nv := &resolved.VarDecl{Name: v.Name, IsConst: v.IsConst, Type: v.Type.Substitute(c.subs)}
	nv.Pos = v.Pos
	c.locals[v] = nv
	if v.Init != nil {
		nv.Init = substituteExpr(v.Init, c)
	}
	return nv
}

// substituteBlock deep-copies a generic template's resolved body,
// replacing every expression's resolved type via types.Type.Substitute
// and recursively substituting every declaration type reachable inside
// it (locals declared with `let`/`const`, for-loop captures, the
// implicit self parameter). This is the mechanical half of on-demand
// monomorphization described in spec.md §4.3: "clone the function
// body, run the body pass under a scope where each generic identifier
// resolves to its concrete type." Rather than re-running full
// name/type resolution against the AST a second time, it walks the
// already-resolved template tree directly, which is equivalent for a
// closed type system where Substitute is total over every variant.
func substituteBlock(b *resolved.Block, subs map[string]types.Type) *resolved.Block {
	return substituteBlockCtx(b, newSubstCtx(subs))
}

func substituteBlockCtx(b *resolved.Block, ctx *substCtx) *resolved.Block {
	if b == nil {
		return nil
	}
	out := &resolved.Block{Stmts: make([]resolved.Stmt, len(b.Stmts))}
	out.Pos = b.Pos
	for i, s := range b.Stmts {
		out.Stmts[i] = substituteStmt(s, ctx)
	}
	out.Defers = make([]resolved.DeferEntry, len(b.Defers))
	for i, e := range b.Defers {
		out.Defers[i] = substituteDeferEntry(e, ctx)
	}
	return out
}

func substituteDeferEntry(e resolved.DeferEntry, ctx *substCtx) resolved.DeferEntry {
	if e.ErrDefer != nil {
		return resolved.DeferEntry{ErrDefer: substituteStmt(e.ErrDefer, ctx).(*resolved.ErrDeferStmt)}
	}
	return resolved.DeferEntry{Defer: substituteStmt(e.Defer, ctx).(*resolved.DeferStmt)}
}

func substituteStmt(s resolved.Stmt, ctx *substCtx) resolved.Stmt {
	switch v := s.(type) {
	case *resolved.Block:
		return substituteBlockCtx(v, ctx)
	case *resolved.IfStmt:
		out := &resolved.IfStmt{Cond: substituteExpr(v.Cond, ctx), Then: substituteBlockCtx(v.Then, ctx)}
		out.Pos = v.Pos
		if v.Else != nil {
			out.Else = substituteStmt(v.Else, ctx)
		}
		return out
	case *resolved.WhileStmt:
		out := &resolved.WhileStmt{Cond: substituteExpr(v.Cond, ctx), Body: substituteBlockCtx(v.Body, ctx)}
		out.Pos = v.Pos
		return out
	case *resolved.ForStmt:
		out := &resolved.ForStmt{Body: substituteBlockCtx(v.Body, ctx)}
		out.Pos = v.Pos
		for _, c := range v.Captures {
			nc := &resolved.Capture{Name: c.Name}
			if c.Decl != nil {
				nc.Decl = ctx.local(c.Decl)
			}
			out.Captures = append(out.Captures, nc)
		}
		for _, cond := range v.Conditions {
			out.Conditions = append(out.Conditions, substituteExpr(cond, ctx))
		}
		return out
	case *resolved.SwitchStmt:
		out := &resolved.SwitchStmt{Cond: substituteExpr(v.Cond, ctx), Else: substituteBlockCtx(v.Else, ctx)}
		out.Pos = v.Pos
		for _, c := range v.Cases {
			nc := &resolved.CaseClause{Body: substituteBlockCtx(c.Body, ctx)}
			for _, val := range c.Values {
				nc.Values = append(nc.Values, substituteExpr(val, ctx))
			}
			out.Cases = append(out.Cases, nc)
		}
		return out
	case *resolved.ReturnStmt:
		out := &resolved.ReturnStmt{}
		out.Pos = v.Pos
		if v.Value != nil {
			out.Value = substituteExpr(v.Value, ctx)
		}
		return out
	case *resolved.DeclStmt:
		out := &resolved.DeclStmt{Decl: ctx.local(v.Decl)}
		out.Pos = v.Pos
		return out
	case *resolved.ExprStmt:
		out := &resolved.ExprStmt{X: substituteExpr(v.X, ctx)}
		out.Pos = v.Pos
		return out
	case *resolved.Assignment:
		out := &resolved.Assignment{Target: substituteExpr(v.Target, ctx), Op: v.Op, Value: substituteExpr(v.Value, ctx)}
		out.Pos = v.Pos
		return out
	case *resolved.DeferStmt:
		out := &resolved.DeferStmt{Body: substituteBlockCtx(v.Body, ctx)}
		out.Pos = v.Pos
		return out
	case *resolved.ErrDeferStmt:
		out := &resolved.ErrDeferStmt{Body: substituteBlockCtx(v.Body, ctx)}
		out.Pos = v.Pos
		return out
	case *resolved.DeferRefStmt:
		out := &resolved.DeferRefStmt{IsErrorPath: v.IsErrorPath}
		out.Pos = v.Pos
		for _, e := range v.Entries {
			out.Entries = append(out.Entries, substituteDeferEntry(e, ctx))
		}
		return out
	default:
		return s
	}
}

func substituteExpr(e resolved.Expr, ctx *substCtx) resolved.Expr {
	if e == nil {
		return nil
	}
	switch v := e.(type) {
	case *resolved.IntLiteral:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.FloatLiteral:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.CharLiteral:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.BoolLiteral:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.StringLiteral:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.NullLiteral:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.DeclRef:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		switch d := v.Decl.(type) {
		case *resolved.ParamDecl:
			out.Decl = ctx.param(d)
		case *resolved.VarDecl:
			out.Decl = ctx.local(d)
		}
		return &out
	case *resolved.MemberExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Base = substituteExpr(v.Base, ctx)
		return &out
	case *resolved.SelfMemberExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Self = ctx.param(v.Self)
		return &out
	case *resolved.ArrayAtExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Base = substituteExpr(v.Base, ctx)
		out.Index = substituteExpr(v.Index, ctx)
		return &out
	case *resolved.ArrayInstantiationExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Elements = make([]resolved.Expr, len(v.Elements))
		for i, el := range v.Elements {
			out.Elements[i] = substituteExpr(el, ctx)
		}
		return &out
	case *resolved.StructInstantiationExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Fields = make([]*resolved.FieldInit, len(v.Fields))
		for i, f := range v.Fields {
			out.Fields[i] = &resolved.FieldInit{Name: f.Name, Value: substituteExpr(f.Value, ctx), Field: f.Field}
		}
		return &out
	case *resolved.UnaryExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		return &out
	case *resolved.BinaryExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.LHS = substituteExpr(v.LHS, ctx)
		out.RHS = substituteExpr(v.RHS, ctx)
		return &out
	case *resolved.RefExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		return &out
	case *resolved.DerefExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		return &out
	case *resolved.CallExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Callee = substituteExpr(v.Callee, ctx)
		out.Args = make([]resolved.Expr, len(v.Args))
		for i, a := range v.Args {
			out.Args[i] = substituteExpr(a, ctx)
		}
		return &out
	case *resolved.SizeofExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Of = v.Of.Substitute(ctx.subs)
		return &out
	case *resolved.RangeExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Lo = substituteExpr(v.Lo, ctx)
		out.Hi = substituteExpr(v.Hi, ctx)
		return &out
	case *resolved.ErrorInPlaceExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	case *resolved.CatchErrExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		return &out
	case *resolved.TryErrExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		return &out
	case *resolved.ErrUnwrapExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		return &out
	case *resolved.OrElseExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		out.Operand = substituteExpr(v.Operand, ctx)
		out.Fallback = substituteExpr(v.Fallback, ctx)
		return &out
	case *resolved.ModuleRefExpr:
		out := *v
		out.Type = v.Type.Substitute(ctx.subs)
		return &out
	default:
		return e
	}
}
