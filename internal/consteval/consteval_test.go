package consteval

import (
	"testing"

	"github.com/dmzlang/dmzc/internal/resolved"
	"github.com/dmzlang/dmzc/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intLit(v int64) resolved.Expr { return &resolved.IntLiteral{Value: v} }
func boolLit(v bool) resolved.Expr { return &resolved.BoolLiteral{Value: v} }

func TestEvaluateIntLiteral(t *testing.T) {
	v, ok := Evaluate(intLit(7))
	require.True(t, ok)
	assert.Equal(t, int64(7), v.Int)
}

func TestEvaluateArithmetic(t *testing.T) {
	expr := &resolved.BinaryExpr{Op: token.STAR, LHS: intLit(6), RHS: intLit(7)}
	v, ok := Evaluate(expr)
	require.True(t, ok)
	n, isInt := v.AsInt()
	require.True(t, isInt)
	assert.Equal(t, int64(42), n)
}

func TestEvaluateDivisionByZeroFails(t *testing.T) {
	expr := &resolved.BinaryExpr{Op: token.SLASH, LHS: intLit(1), RHS: intLit(0)}
	_, ok := Evaluate(expr)
	assert.False(t, ok)
}

func TestShortCircuitAndSkipsRHS(t *testing.T) {
	// `false && <div-by-zero comparison>` must fold to false without
	// attempting to evaluate the right-hand side.
	badRHS := &resolved.BinaryExpr{Op: token.EQ,
		LHS: &resolved.BinaryExpr{Op: token.SLASH, LHS: intLit(1), RHS: intLit(0)},
		RHS: intLit(0),
	}
	expr := &resolved.BinaryExpr{Op: token.AMP, LHS: boolLit(false), RHS: badRHS}
	v, ok := Evaluate(expr)
	require.True(t, ok)
	assert.False(t, v.Bool)
}

func TestShortCircuitOrSkipsRHS(t *testing.T) {
	badRHS := &resolved.BinaryExpr{Op: token.SLASH, LHS: intLit(1), RHS: intLit(0)}
	expr := &resolved.BinaryExpr{Op: token.PIPEPIPE, LHS: boolLit(true), RHS: badRHS}
	v, ok := Evaluate(expr)
	require.True(t, ok)
	assert.True(t, v.Bool)
}

func TestEvaluateFloatArithmeticStaysExact(t *testing.T) {
	expr := &resolved.BinaryExpr{
		Op:  token.PLUS,
		LHS: &resolved.FloatLiteral{Value: 0.5},
		RHS: &resolved.FloatLiteral{Value: 0.25},
	}
	v, ok := Evaluate(expr)
	require.True(t, ok)
	assert.Equal(t, Float, v.Kind)
	assert.Equal(t, 0.75, v.Float)
}

func TestEvaluateConstDeclRefFoldsThroughInitializer(t *testing.T) {
	decl := &resolved.VarDecl{IsConst: true, Init: intLit(10)}
	ref := &resolved.DeclRef{Decl: decl}
	v, ok := Evaluate(ref)
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.Equal(t, int64(10), n)
}

func TestEvaluateNonConstDeclRefFails(t *testing.T) {
	decl := &resolved.VarDecl{IsConst: false, Init: intLit(10)}
	ref := &resolved.DeclRef{Decl: decl}
	_, ok := Evaluate(ref)
	assert.False(t, ok)
}

func TestEvaluateUnaryNegation(t *testing.T) {
	expr := &resolved.UnaryExpr{Op: token.MINUS, Operand: intLit(5)}
	v, ok := Evaluate(expr)
	require.True(t, ok)
	n, _ := v.AsInt()
	assert.Equal(t, int64(-5), n)
}

func TestEvaluateCallExprIsNotConstant(t *testing.T) {
	_, ok := Evaluate(&resolved.CallExpr{})
	assert.False(t, ok)
}
