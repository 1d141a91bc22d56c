package sema

import (
	"github.com/dmzlang/dmzc/internal/ast"
	"github.com/dmzlang/dmzc/internal/errors"
	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/dmzlang/dmzc/internal/types"
)

// resolveExpr resolves one AST expression, one-to-one with the
// variants spec.md §3 enumerates, each acquiring its resolved type per
// spec.md §4.3's "expression resolution" rules.
func (r *Resolver) resolveExpr(e ast.Expr) resolved.Expr {
	switch v := e.(type) {
	case *ast.IntLiteral:
		lit := &resolved.IntLiteral{Value: v.Value}
		lit.Pos, lit.Orig, lit.Type = v.Pos, v, types.Number{Kind: types.Signed, Bits: 32}
		return lit
	case *ast.FloatLiteral:
		lit := &resolved.FloatLiteral{Value: v.Value}
		lit.Pos, lit.Orig, lit.Type = v.Pos, v, types.Number{Kind: types.Float, Bits: 64}
		return lit
	case *ast.CharLiteral:
		lit := &resolved.CharLiteral{Value: v.Value}
		lit.Pos, lit.Orig, lit.Type = v.Pos, v, types.Number{Kind: types.Unsigned, Bits: 8}
		return lit
	case *ast.BoolLiteral:
		lit := &resolved.BoolLiteral{Value: v.Value}
		lit.Pos, lit.Orig, lit.Type = v.Pos, v, types.Bool{}
		return lit
	case *ast.StringLiteral:
		lit := &resolved.StringLiteral{Value: v.Value}
		lit.Pos, lit.Orig, lit.Type = v.Pos, v, types.Slice{Inner: types.Number{Kind: types.Unsigned, Bits: 8}}
		return lit
	case *ast.NullLiteral:
		lit := &resolved.NullLiteral{}
		lit.Pos, lit.Orig, lit.Type = v.Pos, v, types.Optional{Inner: types.Void{}}
		return lit
	case *ast.DeclRefExpr:
		return r.resolveDeclRef(v)
	case *ast.MemberExpr:
		return r.resolveMemberExpr(v)
	case *ast.SelfMemberExpr:
		return r.resolveSelfMemberExpr(v)
	case *ast.ArrayAtExpr:
		return r.resolveArrayAt(v)
	case *ast.ArrayInstantiationExpr:
		return r.resolveArrayInstantiation(v)
	case *ast.StructInstantiationExpr:
		return r.resolveStructInstantiation(v)
	case *ast.GroupExpr:
		return r.resolveExpr(v.Inner)
	case *ast.UnaryExpr:
		return r.resolveUnary(v)
	case *ast.BinaryExpr:
		return r.resolveBinary(v)
	case *ast.RefExpr:
		operand := r.resolveExpr(v.Operand)
		ref := &resolved.RefExpr{Operand: operand}
		ref.Pos, ref.Orig, ref.Type = v.Pos, v, types.Pointer{Inner: operand.ExprType()}
		return ref
	case *ast.DerefExpr:
		return r.resolveDeref(v)
	case *ast.CallExpr:
		return r.resolveCall(v)
	case *ast.SizeofExpr:
		sz := &resolved.SizeofExpr{Of: r.resolveType(v.Type)}
		sz.Pos, sz.Orig, sz.Type = v.Pos, v, types.Number{Kind: types.Unsigned, Bits: 64}
		return sz
	case *ast.RangeExpr:
		return r.resolveRange(v)
	case *ast.ErrorInPlaceExpr:
		return r.resolveErrorInPlace(v)
	case *ast.CatchErrExpr:
		operand := r.resolveExpr(v.Operand)
		c := &resolved.CatchErrExpr{Operand: operand}
		c.Pos, c.Orig, c.Type = v.Pos, v, types.Error{}
		return c
	case *ast.TryErrExpr:
		return r.resolveTryErr(v)
	case *ast.ErrUnwrapExpr:
		operand := r.resolveExpr(v.Operand)
		u := &resolved.ErrUnwrapExpr{Operand: operand}
		u.Pos, u.Orig, u.Type = v.Pos, v, types.Underlying(operand.ExprType())
		return u
	case *ast.OrElseExpr:
		return r.resolveOrElse(v)
	case *ast.ImportExpr:
		return r.resolveImportExpr(v)
	default:
		r.error(errors.RES003, e.Position(), "unresolvable expression %s", e)
		n := &resolved.NullLiteral{}
		n.Pos, n.Type = e.Position(), types.Void{}
		return n
	}
}

func (r *Resolver) resolveDeclRef(v *ast.DeclRefExpr) resolved.Expr {
	decl, ok := r.resolveUnqualifiedDecl(v.Name)
	d := &resolved.DeclRef{Name: v.Name}
	d.Pos, d.Orig = v.Pos, v
	if !ok {
		r.error(errors.RES001, v.Pos, "undeclared identifier %q", v.Name)
		d.Type = types.Void{}
		return d
	}
	d.Decl = decl
	d.Type = exprTypeOf(decl)
	return d
}

// exprTypeOf returns the value-position type of referencing decl by
// bare name: a variable/parameter's own type, or a function's Function
// type (so it can be called or passed as a value).
func exprTypeOf(decl resolved.Decl) types.Type {
	switch v := decl.(type) {
	case *resolved.VarDecl:
		return v.Type
	case *resolved.ParamDecl:
		return v.Type
	case *resolved.FuncDecl:
		return v.Signature()
	default:
		return types.Void{}
	}
}

func (r *Resolver) resolveSelfMemberExpr(v *ast.SelfMemberExpr) resolved.Expr {
	m := &resolved.SelfMemberExpr{Field: v.Field, Self: r.currentSelf}
	m.Pos, m.Orig = v.Pos, v

	if r.currentSelf == nil {
		r.error(errors.RES001, v.Pos, "%q used outside a member function", v.Field)
		m.Type = types.Void{}
		return m
	}
	sd, ok := asStructDecl(r.currentSelf.Type)
	if !ok {
		sd, ok = asStructDecl(types.Underlying(r.currentSelf.Type))
	}
	if !ok {
		r.error(errors.RES001, v.Pos, "implicit self is not a struct")
		m.Type = types.Void{}
		return m
	}
	if f := sd.FindField(v.Field); f != nil {
		m.Type, m.Decl = f.Type, f
		return m
	}
	if fn := sd.FindMethod(v.Field); fn != nil {
		m.Type, m.Decl = fn.Signature(), fn
		return m
	}
	r.error(errors.RES005, v.Pos, "struct %q has no field or method %q", sd.Name, v.Field)
	m.Type = types.Void{}
	return m
}

func (r *Resolver) resolveMemberExpr(v *ast.MemberExpr) resolved.Expr {
	if pathBase, ok := v.Base.(*ast.ImportExpr); ok {
		m := &resolved.MemberExpr{Field: v.Field}
		m.Pos, m.Orig = v.Pos, v
		if mod := r.resolveModulePath(pathBase.Path, pathBase.Pos); mod != nil {
			if d := findDeclByName(mod, v.Field); d != nil {
				r.checkVisibility(d, mod, v.Pos)
				ref := &resolved.DeclRef{Name: v.Field, Decl: d}
				ref.Pos, ref.Orig, ref.Type = v.Pos, v, exprTypeOf(d)
				return ref
			}
			r.error(errors.RES001, v.Pos, "module %q has no public declaration %q", mod.Name, v.Field)
		}
		m.Type = types.Void{}
		return m
	}

	base := r.resolveExpr(v.Base)
	baseType := types.Underlying(base.ExprType())
	m := &resolved.MemberExpr{Base: base, Field: v.Field}
	m.Pos, m.Orig = v.Pos, v

	if sd, ok := asStructDecl(baseType); ok {
		if f := sd.FindField(v.Field); f != nil {
			m.Type, m.Decl = f.Type, f
			return m
		}
		if fn := sd.FindMethod(v.Field); fn != nil {
			m.Type, m.Decl = fn.Signature(), fn
			return m
		}
		r.error(errors.RES005, v.Pos, "struct %q has no field or method %q", sd.Name, v.Field)
		m.Type = types.Void{}
		return m
	}
	if eg, ok := baseType.(types.ErrorGroup); ok {
		if rd, ok2 := eg.Decl.(*resolved.ErrGroupDecl); ok2 {
			if ed := rd.FindError(v.Field); ed != nil {
				m.Type, m.Decl = ed.Type, ed
				return m
			}
		}
		r.error(errors.RES005, v.Pos, "error group %q has no error %q", eg.Name, v.Field)
	} else {
		r.error(errors.RES005, v.Pos, "%s has no member %q", baseType, v.Field)
	}
	m.Type = types.Void{}
	return m
}

func (r *Resolver) resolveArrayAt(v *ast.ArrayAtExpr) resolved.Expr {
	base := r.resolveExpr(v.Base)
	index := r.resolveExpr(v.Index)
	var elem types.Type = types.Void{}
	switch t := types.Underlying(base.ExprType()).(type) {
	case types.Array:
		elem = t.Inner
	case types.Slice:
		elem = t.Inner
	case types.Pointer:
		elem = t.Inner
	default:
		r.error(errors.RES003, v.Pos, "%s is not indexable", base.ExprType())
	}
	a := &resolved.ArrayAtExpr{Base: base, Index: index}
	a.Pos, a.Orig, a.Type = v.Pos, v, elem
	return a
}

func (r *Resolver) resolveArrayInstantiation(v *ast.ArrayInstantiationExpr) resolved.Expr {
	elems := make([]resolved.Expr, len(v.Elements))
	var elemType types.Type = types.DefaultInit{}
	for i, e := range v.Elements {
		elems[i] = r.resolveExpr(e)
		if i == 0 {
			elemType = elems[i].ExprType()
		}
	}
	a := &resolved.ArrayInstantiationExpr{Elements: elems}
	a.Pos, a.Orig, a.Type = v.Pos, v, types.Array{Inner: elemType, Len: int64(len(elems))}
	return a
}

func (r *Resolver) resolveStructInstantiation(v *ast.StructInstantiationExpr) resolved.Expr {
	t := r.resolveType(v.Name)
	sd, ok := asStructDecl(t)
	if spec, isSpec := t.(types.Specialized); isSpec {
		if base, ok2 := asStructDecl(spec.Base); ok2 {
			sd, ok = base, true
		}
	}
	s := &resolved.StructInstantiationExpr{}
	s.Pos, s.Orig, s.Type = v.Pos, v, t
	if !ok {
		r.error(errors.RES003, v.Pos, "%s is not a struct type", t)
		return s
	}
	s.Decl = sd
	for _, fi := range v.Fields {
		fd := sd.FindField(fi.Name)
		if fd == nil {
			r.error(errors.RES005, fi.Pos, "struct %q has no field %q", sd.Name, fi.Name)
			continue
		}
		var val resolved.Expr
		if fi.Value != nil {
			val = r.resolveExpr(fi.Value)
		} else {
			dflt := &resolved.NullLiteral{}
			dflt.Pos, dflt.Type = fi.Pos, types.DefaultInit{}
			val = dflt
		}
		s.Fields = append(s.Fields, &resolved.FieldInit{Name: fi.Name, Value: val, Field: fd})
	}
	return s
}

func (r *Resolver) resolveUnary(v *ast.UnaryExpr) resolved.Expr {
	operand := r.resolveExpr(v.Operand)
	t := operand.ExprType()
	if v.Op == token.BANG {
		t = types.Bool{}
	}
	u := &resolved.UnaryExpr{Op: v.Op, Operand: operand}
	u.Pos, u.Orig, u.Type = v.Pos, v, t
	return u
}

func (r *Resolver) resolveBinary(v *ast.BinaryExpr) resolved.Expr {
	lhs := r.resolveExpr(v.LHS)
	rhs := r.resolveExpr(v.RHS)
	t := lhs.ExprType()
	switch v.Op {
	case token.LT, token.LE, token.GT, token.GE, token.EQ, token.NE, token.AMP, token.PIPEPIPE:
		t = types.Bool{}
	default:
		if !lhs.ExprType().Equals(rhs.ExprType()) {
			r.error(errors.RES003, v.Pos, "type mismatch: %s vs %s", lhs.ExprType(), rhs.ExprType())
		}
	}
	b := &resolved.BinaryExpr{Op: v.Op, LHS: lhs, RHS: rhs}
	b.Pos, b.Orig, b.Type = v.Pos, v, t
	return b
}

func (r *Resolver) resolveDeref(v *ast.DerefExpr) resolved.Expr {
	operand := r.resolveExpr(v.Operand)
	t := types.Type(types.Void{})
	if p, ok := types.Underlying(operand.ExprType()).(types.Pointer); ok {
		t = p.Inner
	} else {
		r.error(errors.RES003, v.Pos, "%s is not a pointer", operand.ExprType())
	}
	d := &resolved.DerefExpr{Operand: operand}
	d.Pos, d.Orig, d.Type = v.Pos, v, t
	return d
}

func (r *Resolver) resolveRange(v *ast.RangeExpr) resolved.Expr {
	lo := r.resolveExpr(v.Lo)
	hi := r.resolveExpr(v.Hi)
	rg := &resolved.RangeExpr{Lo: lo, Hi: hi}
	rg.Pos, rg.Orig, rg.Type = v.Pos, v, types.Slice{Inner: lo.ExprType()}
	return rg
}

// resolveErrorInPlace resolves `@Name` standalone to the generic
// types.Error; narrowing to a concrete error-group's ErrDecl happens
// at its use site (an assignment/return against a known error-group
// type), not here.
func (r *Resolver) resolveErrorInPlace(v *ast.ErrorInPlaceExpr) resolved.Expr {
	e := &resolved.ErrorInPlaceExpr{Name: v.Name}
	e.Pos, e.Orig, e.Type = v.Pos, v, types.Error{}
	return e
}

func (r *Resolver) resolveTryErr(v *ast.TryErrExpr) resolved.Expr {
	if r.currentFunc == nil {
		r.error(errors.RES008, v.Pos, "try used outside a function")
	} else if _, ok := r.currentFunc.ReturnType.(types.Optional); !ok {
		r.error(errors.RES008, v.Pos, "try used in a function whose return type is not an error union")
	}
	operand := r.resolveExpr(v.Operand)
	t := &resolved.TryErrExpr{Operand: operand}
	t.Pos, t.Orig, t.Type = v.Pos, v, types.Underlying(operand.ExprType())
	return t
}

func (r *Resolver) resolveOrElse(v *ast.OrElseExpr) resolved.Expr {
	operand := r.resolveExpr(v.Operand)
	fallback := r.resolveExpr(v.Default)
	o := &resolved.OrElseExpr{Operand: operand, Fallback: fallback}
	o.Pos, o.Orig, o.Type = v.Pos, v, types.Underlying(operand.ExprType())
	return o
}

func (r *Resolver) resolveImportExpr(v *ast.ImportExpr) resolved.Expr {
	mod := r.resolveModulePath(v.Path, v.Pos)
	m := &resolved.ModuleRefExpr{Path: v.Path}
	m.Pos, m.Orig = v.Pos, v
	if mod == nil {
		m.Type = types.Void{}
		return m
	}
	m.Decl, m.Type = mod, mod.Type
	return m
}

func (r *Resolver) resolveCall(v *ast.CallExpr) resolved.Expr {
	callee := r.resolveExpr(v.Callee)
	args := make([]resolved.Expr, len(v.Args))
	for i, a := range v.Args {
		args[i] = r.resolveExpr(a)
	}

	typeArgs := make([]types.Type, len(v.TypeArgs))
	for i, ta := range v.TypeArgs {
		typeArgs[i] = r.resolveType(ta)
	}

	fn, retType, specialization := r.resolveCallTarget(callee, typeArgs, v.Pos)
	if fn != nil {
		want := len(fn.Params)
		if fn.StructOwner != nil && isBoundMemberRef(callee) {
			want-- // self is supplied by the base/.field receiver, not counted among v.Args
		}
		if len(args) != want {
			r.error(errors.RES004, v.Pos, "call to %q has %d argument(s), expected %d", fn.Name, len(args), want)
		}
	}
	c := &resolved.CallExpr{Callee: callee, Args: args, TypeArgs: typeArgs, Specialization: specialization}
	c.Pos, c.Orig, c.Type = v.Pos, v, retType
	return c
}

// resolveCallTarget resolves the callee's declaration (if any),
// performing on-demand monomorphization when it is generic and the
// call supplies explicit type arguments, per spec.md §4.3's generics
// rule.
func (r *Resolver) resolveCallTarget(callee resolved.Expr, typeArgs []types.Type, pos token.Pos) (*resolved.FuncDecl, types.Type, string) {
	fn := funcDeclOf(callee)
	if fn == nil {
		if sig, ok := callee.ExprType().(types.Function); ok {
			return nil, sig.Ret, ""
		}
		r.error(errors.RES003, pos, "called expression is not callable")
		return nil, types.Void{}, ""
	}
	if !fn.IsGeneric() {
		return fn, fn.ReturnType, ""
	}
	if len(typeArgs) != len(fn.TypeParams) {
		r.error(errors.RES006, pos, "generic function %q takes %d type argument(s), got %d", fn.Name, len(fn.TypeParams), len(typeArgs))
		return fn, fn.ReturnType, ""
	}
	sp := r.specializeFunc(fn, typeArgs)
	subs := map[string]types.Type{}
	for i, tp := range fn.TypeParams {
		subs[tp.Name] = typeArgs[i]
	}
	return fn, fn.ReturnType.Substitute(subs), sp.SymbolName
}

// isBoundMemberRef reports whether callee is a `base.method` or
// `.method` reference to a member function, i.e. carries its own
// receiver rather than naming a plain function value.
func isBoundMemberRef(callee resolved.Expr) bool {
	switch callee.(type) {
	case *resolved.MemberExpr, *resolved.SelfMemberExpr:
		return true
	default:
		return false
	}
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
