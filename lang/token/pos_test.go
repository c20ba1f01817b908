package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakePos(t *testing.T) {
	cases := []struct {
		line, col int
	}{
		{1, 1},
		{10, 4},
		{MaxLines, MaxCols},
	}
	for _, c := range cases {
		p := MakePos(c.line, c.col)
		gotLine, gotCol := p.LineCol()
		assert.Equal(t, c.line, gotLine)
		assert.Equal(t, c.col, gotCol)
	}
}

func TestPosUnknown(t *testing.T) {
	assert.True(t, Pos(0).Unknown())
	assert.False(t, MakePos(1, 1).Unknown())
}

func TestPosString(t *testing.T) {
	assert.Equal(t, "3:7", MakePos(3, 7).String())
}
