package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/yala/lang/ast"
	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/parser"
	"github.com/mna/yala/lang/serialize"
)

// Compile implements the `compile` CLI mode (§6.4): parse and semantically
// compile a source file to bytecode, optionally displaying the syntax tree
// and/or serialized bytecode, and optionally writing the serialized
// bytecode to --output. It never executes the program; see Run for that.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	code, err := c.compileFile(stdio, args[0])
	if err != nil {
		return err
	}
	return c.maybeWriteOutput(stdio, code)
}

// compileFile reads, parses and compiles path, printing the AST and/or
// bytecode per the --display-tree/--display-bytecode flags as it goes.
func (c *Cmd) compileFile(stdio mainer.Stdio, path string) (*compiler.Bytecode, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, printError(stdio, fmt.Errorf("%s: %w", path, err))
	}

	prog, err := parser.Parse(src)
	if err != nil {
		return nil, printError(stdio, err)
	}
	if c.DisplayTree {
		ast.Print(stdio.Stdout, prog)
	}

	code, err := compiler.Compile(prog)
	if err != nil {
		return nil, printError(stdio, err)
	}
	if c.DisplayBytecode {
		fmt.Fprintln(stdio.Stdout, serialize.Encode(code))
	}
	return code, nil
}

// maybeWriteOutput serializes code to --output when one was given.
func (c *Cmd) maybeWriteOutput(stdio mainer.Stdio, code *compiler.Bytecode) error {
	if c.Output == "" {
		return nil
	}
	if err := os.WriteFile(c.Output, []byte(serialize.Encode(code)), 0o644); err != nil {
		return printError(stdio, fmt.Errorf("writing %s: %w", c.Output, err))
	}
	return nil
}
