package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/yala/lang/serialize"
)

// Execute implements the `execute` CLI mode (§6.4): load a previously
// serialized bytecode file (as written by `compile --output` or
// `run --output`) and run it directly, skipping the parse and compile
// phases entirely.
func (c *Cmd) Execute(ctx context.Context, stdio mainer.Stdio, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}
	code, err := serialize.Decode(string(data))
	if err != nil {
		return printError(stdio, fmt.Errorf("%s: %w", args[0], err))
	}
	if c.DisplayBytecode {
		fmt.Fprintln(stdio.Stdout, serialize.Encode(code))
	}
	return c.execute(ctx, stdio, code)
}
