package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmzlang/dmzc/internal/token"
)

func TestReportRoundTripsThroughError(t *testing.T) {
	pos := token.Pos{File: "a.dmz", Line: 3, Column: 5}
	rep := New(PAR001, "parser", pos, "unexpected token")
	err := WrapReport(rep)
	require.Error(t, err)

	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, PAR001, got.Code)
	assert.Equal(t, "parser", got.Phase)
}

func TestWrapReportNil(t *testing.T) {
	assert.Nil(t, WrapReport(nil))
}

func TestAsReportFromPlainError(t *testing.T) {
	_, ok := AsReport(assertErr{})
	assert.False(t, ok)
}

type assertErr struct{}

func (assertErr) Error() string { return "plain error" }

func TestRegistryCoversEveryPhase(t *testing.T) {
	phases := map[string]bool{}
	for _, info := range Registry {
		phases[info.Phase] = true
	}
	for _, want := range []string{"lexer", "parser", "module", "resolve", "cfg", "consteval", "ir", "driver"} {
		assert.True(t, phases[want], "missing phase %s", want)
	}
}

func TestToJSONIndentsByDefault(t *testing.T) {
	rep := New(RES001, "resolve", token.Pos{File: "b.dmz", Line: 1, Column: 1}, "undeclared identifier")
	out, err := rep.ToJSON(false)
	require.NoError(t, err)
	assert.Contains(t, out, "\n")

	compact, err := rep.ToJSON(true)
	require.NoError(t, err)
	assert.NotContains(t, compact, "\n")
}
