package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/yala/lang/token"
)

func kinds(toks []Tok) []token.Token {
	out := make([]token.Token, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanAllBasics(t *testing.T) {
	toks, err := ScanAll([]byte(`program p; x: integer; begin x = 3 end p.`))
	require.NoError(t, err)
	assert.Equal(t, []token.Token{
		token.PROGRAM, token.IDENT, token.SEMI,
		token.IDENT, token.COLON, token.INTEGER, token.SEMI,
		token.BEGIN, token.IDENT, token.ASSIGN, token.INT,
		token.END, token.IDENT, token.DOT, token.EOF,
	}, kinds(toks))
}

func TestScanTwoCharOperators(t *testing.T) {
	toks, err := ScanAll([]byte(`== != <= >=`))
	require.NoError(t, err)
	assert.Equal(t, []token.Token{token.EQL, token.NEQ, token.LE, token.GE, token.EOF}, kinds(toks))
}

func TestScanComment(t *testing.T) {
	toks, err := ScanAll([]byte("x # a comment\ny"))
	require.NoError(t, err)
	assert.Equal(t, []token.Token{token.IDENT, token.IDENT, token.EOF}, kinds(toks))
}

func TestScanStringLiterals(t *testing.T) {
	toks, err := ScanAll([]byte(`"abc" 'def'`))
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "abc", toks[0].Lit)
	assert.Equal(t, "def", toks[1].Lit)
}

func TestScanUnterminatedString(t *testing.T) {
	_, err := ScanAll([]byte(`"abc`))
	require.Error(t, err)
}

func TestScanIllegalCharacter(t *testing.T) {
	_, err := ScanAll([]byte(`@`))
	require.Error(t, err)
}

func TestScanIntLiteral(t *testing.T) {
	toks, err := ScanAll([]byte(`12345`))
	require.NoError(t, err)
	assert.EqualValues(t, 12345, toks[0].IntVal)
}
