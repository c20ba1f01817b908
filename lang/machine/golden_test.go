package machine_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mna/yala/internal/config"
	"github.com/mna/yala/internal/filetest"
	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/machine"
	"github.com/mna/yala/lang/parser"
)

var testUpdateGoldenTests = flag.Bool("test.update-golden-tests", false, "If set, replace expected golden test results with actual results.")

// TestGoldenPrograms runs every *.yala file in testdata against its sibling
// *.yala.want golden file, end to end: parse, compile, execute, compare
// stdout. This is the file-based counterpart to TestEndToEndScenarios'
// inline-source cases.
func TestGoldenPrograms(t *testing.T) {
	dir := "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".yala") {
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}

			prog, err := parser.Parse(src)
			if err != nil {
				t.Fatalf("parse: %s", err)
			}
			code, err := compiler.Compile(prog)
			if err != nil {
				t.Fatalf("compile: %s", err)
			}

			var out bytes.Buffer
			m := machine.New(config.Default(), &out, strings.NewReader(""))
			if err := m.Run(context.Background(), code); err != nil {
				t.Fatalf("run: %s", err)
			}

			filetest.DiffCustom(t, fi, "output", ".want", out.String(), dir, testUpdateGoldenTests)
		})
	}
}
