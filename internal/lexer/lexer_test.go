package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmzlang/dmzc/internal/token"
)

func collect(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(Normalize([]byte(src)), "test.dmz")
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerHelloAdd(t *testing.T) {
	src := `fn add(a: i32, b: i32) -> i32 { return a + b; }`
	toks := collect(t, src)
	require.NotEmpty(t, toks)
	assert.Equal(t, token.FN, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, "add", toks[1].Literal)
	assert.Equal(t, token.LPAREN, toks[2].Kind)
	assert.Equal(t, token.IDENT, toks[3].Kind)
	assert.Equal(t, token.COLON, toks[4].Kind)
	assert.Equal(t, token.NUMTYPE, toks[5].Kind)
	assert.Equal(t, "i32", toks[5].Literal)
}

func TestLexerOperators(t *testing.T) {
	toks := collect(t, "+ - * / % == != < <= > >= && || ! ? & | :: .. ... -> =>")
	kinds := []token.Kind{
		token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE,
		token.AMP, token.PIPEPIPE, token.BANG, token.QUESTION, token.REF,
		token.PIPE, token.DCOLON, token.DOTDOT, token.ELLIPSIS,
		token.ARROW, token.FARROW, token.EOF,
	}
	require.Len(t, toks, len(kinds))
	for i, k := range kinds {
		assert.Equalf(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestLexerLineComment(t *testing.T) {
	toks := collect(t, "let x = 1; // trailing comment\nlet y = 2;")
	var kinds []token.Kind
	for _, tk := range toks {
		kinds = append(kinds, tk.Kind)
	}
	assert.NotContains(t, kinds, token.COMMENT)
	assert.Equal(t, token.LET, toks[0].Kind)
}

func TestLexerStringEscape(t *testing.T) {
	toks := collect(t, `"hi\n"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING, toks[0].Kind)
	assert.Equal(t, "hi\n", toks[0].Literal)
}

func TestLexerNumericTypeVsIdent(t *testing.T) {
	toks := collect(t, "i32 i32x u8 f64 iAbc")
	require.Len(t, toks, 6)
	assert.Equal(t, token.NUMTYPE, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, token.NUMTYPE, toks[2].Kind)
	assert.Equal(t, token.NUMTYPE, toks[3].Kind)
	assert.Equal(t, token.IDENT, toks[4].Kind)
}

func TestLexerKeywords(t *testing.T) {
	toks := collect(t, "fn let const if else while for return struct extern defer errdefer err catch try module import as switch case pub true false void bool")
	require.Len(t, toks, 26)
	assert.Equal(t, token.FN, toks[0].Kind)
	assert.Equal(t, token.PUB, toks[20].Kind)
	assert.Equal(t, token.VOID, toks[23].Kind)
	assert.Equal(t, token.BOOL, toks[24].Kind)
}

func TestLexerPosition(t *testing.T) {
	toks := collect(t, "fn\nmain")
	assert.Equal(t, 1, toks[0].Pos.Line)
	assert.Equal(t, 2, toks[1].Pos.Line)
}
