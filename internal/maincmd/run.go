package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/mna/yala/internal/config"
	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/machine"
)

// Run implements the `run` CLI mode (§6.4): compile a source file exactly
// as Compile does, then, unless --no-execute is set, execute the resulting
// bytecode immediately.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	code, err := c.compileFile(stdio, args[0])
	if err != nil {
		return err
	}
	if err := c.maybeWriteOutput(stdio, code); err != nil {
		return err
	}
	if c.NoExecute {
		return nil
	}
	return c.execute(ctx, stdio, code)
}

// execute runs code on a fresh Machine configured from --config (or the
// built-in defaults, §14), reporting a runtime error the same way
// printError reports a compile error.
func (c *Cmd) execute(ctx context.Context, stdio mainer.Stdio, code *compiler.Bytecode) error {
	limits, err := config.Load(c.Config)
	if err != nil {
		return printError(stdio, err)
	}
	m := machine.New(limits, stdio.Stdout, stdio.Stdin)
	if err := m.Run(ctx, code); err != nil {
		return printError(stdio, err)
	}
	return nil
}
