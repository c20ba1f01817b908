// Package maincmd implements the command-line driver described in §6.4:
// the `run`, `compile`, `execute` and `help` modes, dispatched through the
// reflection-based command table the teacher's own CLI uses (github.com/mna/mainer).
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "yala"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and bytecode virtual machine for the Yala programming language.

The <command> can be one of:
       run                       Parse, compile and execute a source file.
       compile                   Parse and compile a source file to
                                 bytecode without executing it.
       execute                   Load a previously serialized bytecode
                                 file (see --output) and execute it
                                 directly, skipping parse and compile.
       help                      Show this help and exit.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --display-tree            Print the parsed syntax tree (run,
                                 compile).
       --display-bytecode        Print the serialized bytecode (run,
                                 compile, execute).
       --no-execute              Compile but do not run the program
                                 (run only).
       --output PATH             Write the serialized bytecode to PATH
                                 (run, compile).
       --config PATH             Load VM stack-size limits from a YAML
                                 file (run, execute); see
                                 internal/config.

More information on the yala repository:
       https://github.com/mna/yala
`, binName)
)

// Cmd is the CLI driver, both the flag-parsing target (mainer.Parser fills
// its exported fields from argv) and the command dispatch table (its
// exported methods matching the signature buildCmds looks for).
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	DisplayTree     bool   `flag:"display-tree"`
	DisplayBytecode bool   `flag:"display-bytecode"`
	NoExecute       bool   `flag:"no-execute"`
	Output          string `flag:"output"`
	Config          string `flag:"config"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}
	cmdName := c.args[0]

	if cmdName == "help" {
		return nil
	}

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) != 1 {
		return fmt.Errorf("%s: exactly one <path> argument is required", cmdName)
	}

	if c.flags["no-execute"] && cmdName != "run" {
		return fmt.Errorf("%s: invalid flag '--no-execute'", cmdName)
	}
	if c.flags["display-tree"] && cmdName == "execute" {
		return fmt.Errorf("%s: invalid flag '--display-tree'", cmdName)
	}
	if c.flags["output"] && cmdName == "execute" {
		return fmt.Errorf("%s: invalid flag '--output'", cmdName)
	}
	if c.flags["config"] && cmdName == "compile" {
		return fmt.Errorf("%s: invalid flag '--config'", cmdName)
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	if c.args[0] == "help" {
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		// each command takes care of printing its errors, just return with an error code
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		// must take 4 parameters (including receiver) and return 1
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}

		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
