package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeywordsRoundtrip(t *testing.T) {
	for word, tok := range Keywords {
		assert.Equal(t, word, tok.String())
	}
}

func TestGoString(t *testing.T) {
	assert.Equal(t, "'+'", PLUS.GoString())
	assert.Equal(t, "identifier", IDENT.GoString())
	assert.Equal(t, "and", AND.GoString())
}
