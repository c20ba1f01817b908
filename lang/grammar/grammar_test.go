// Package grammar holds the language's grammar as an EBNF document (§6.1)
// and a test verifying it is well-formed, the same way the teacher keeps
// its Lua-family grammars next to a TestEBNF that parses and verifies them
// with golang.org/x/exp/ebnf.
package grammar

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

func TestEBNF(t *testing.T) {
	files := []string{
		"grammar.ebnf",
	}
	for _, filename := range files {
		t.Run(filename, func(t *testing.T) {
			f, err := os.Open(filename)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()

			g, err := ebnf.Parse(filename, f)
			if err != nil {
				t.Fatal(err)
			}
			if err := ebnf.Verify(g, "Program"); err != nil {
				t.Fatal(err)
			}
		})
	}
}
