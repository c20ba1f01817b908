package machine_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/yala/internal/config"
	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/machine"
	"github.com/mna/yala/lang/parser"
)

// run compiles and executes src, returning everything written to stdout.
func run(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	code, err := compiler.Compile(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	m := machine.New(config.Default(), &out, strings.NewReader(""))
	err = m.Run(context.Background(), code)
	return out.String(), err
}

// TestEndToEndScenarios exercises the six input/stdout pairs called out as
// testable properties, adjusted to this grammar's single `=` assignment
// token (there is no separate `:=`) and to functions being a single
// expression body with no decl section of their own.
func TestEndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "arithmetic precedence",
			src:  `program p; begin writeln(1+2*3) end p.`,
			want: "7\n",
		},
		{
			name: "for loop accumulation",
			src:  `program p; x: integer; begin x = 3; for i = 1 to 4 do x = x + i end; writeln(x) end p.`,
			want: "13\n",
		},
		{
			name: "vector indexing",
			src:  `program p; v: vector[3] of integer; begin v[0]=10; v[1]=20; v[2]=30; writeln(v[0]+v[2]) end p.`,
			want: "40\n",
		},
		{
			name: "inout parameter write-back",
			src:  `program p; procedure q(inout a: integer); begin a = a + 1 end q; x: integer; begin x = 41; q(x); writeln(x) end p.`,
			want: "42\n",
		},
		{
			name: "recursive function",
			src:  `program p; function f(n: integer): integer; if n <= 1 then 1 else n * f(n-1) end end f; begin writeln(f(5)) end p.`,
			want: "120\n",
		},
		{
			name: "nested vector literal",
			src:  `program p; v: vector[2] of vector[2] of integer; begin v = [[1,2],[3,4]]; writeln(v[1][0]) end p.`,
			want: "3\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := run(t, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// TestVarDeclWithInitializer exercises §8 scenario 6's literal wording: a
// statement-position var decl with an `= expr` initializer, as opposed to
// TestEndToEndScenarios' "nested vector literal" case which declares and
// assigns in two separate statements.
func TestVarDeclWithInitializer(t *testing.T) {
	got, err := run(t, `program p; begin v: vector[2] of vector[2] of integer = [[1,2],[3,4]]; writeln(v[1][0]) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", got)
}

func TestWriteMultipleArgsPreservesOrder(t *testing.T) {
	got, err := run(t, `program p; begin writeln(1, 2, 3) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "123\n", got)
}

func TestBooleanAndStringLiterals(t *testing.T) {
	got, err := run(t, `program p; begin writeln(true); writeln(false); writeln("hi") end p.`)
	require.NoError(t, err)
	assert.Equal(t, "true\nfalse\nhi\n", got)
}

func TestWhileLoop(t *testing.T) {
	got, err := run(t, `program p; x: integer; begin x = 0; while x < 5 do x = x + 1 end; writeln(x) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", got)
}

func TestRepeatUntilLoop(t *testing.T) {
	got, err := run(t, `program p; x: integer; begin x = 0; repeat x = x + 1 until x == 5; writeln(x) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", got)
}

func TestBreakExitsLoop(t *testing.T) {
	got, err := run(t, `program p; x: integer; begin x = 0; while true do x = x + 1; if x == 3 then break end end; writeln(x) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "3\n", got)
}

func TestIfElsifElse(t *testing.T) {
	got, err := run(t, `program p; x: integer; begin x = 2; if x == 1 then writeln(1) elsif x == 2 then writeln(2) else writeln(3) end end p.`)
	require.NoError(t, err)
	assert.Equal(t, "2\n", got)
}

func TestInParameterIsByValue(t *testing.T) {
	got, err := run(t, `program p; procedure q(a: integer); begin a = a + 1 end q; x: integer; begin x = 41; q(x); writeln(x) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "41\n", got)
}

func TestOutParameterDiscardsCallerValue(t *testing.T) {
	got, err := run(t, `program p; procedure q(out a: integer); begin a = 9 end q; x: integer; begin x = 1; q(x); writeln(x) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "9\n", got)
}

func TestVectorByReferenceArgument(t *testing.T) {
	got, err := run(t, `program p; procedure q(inout v: vector[3] of integer); begin v[0] = 100 end q; a: vector[3] of integer; begin a[0]=1; a[1]=2; a[2]=3; q(a); writeln(a[0]) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "100\n", got)
}

func TestFunctionReturningVector(t *testing.T) {
	got, err := run(t, `program p; function mk(): vector[2] of integer; [7, 8] end mk; begin writeln(mk()[1]) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "8\n", got)
}

func TestNestedProcedureClosesOverEnclosingLocal(t *testing.T) {
	got, err := run(t, `program p; x: integer; procedure inner(); begin writeln(x) end inner; begin x = 5; inner() end p.`)
	require.NoError(t, err)
	assert.Equal(t, "5\n", got)
}

func TestVectorSliceIndexing(t *testing.T) {
	got, err := run(t, `program p; v: vector[2] of vector[2] of integer; begin v = [[1,2],[3,4]]; writeln(v[1][0], v[1][1]) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "34\n", got)
}

func TestIntegerDivisionAndRelationalOperators(t *testing.T) {
	got, err := run(t, `program p; begin writeln(7/2); writeln(7 >= 7); writeln(3 <= 2) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "3\ntrue\nfalse\n", got)
}

func TestShortCircuitAnd(t *testing.T) {
	got, err := run(t, `program p; begin writeln(false and (1/0 == 0)) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "false\n", got)
}

func TestShortCircuitOr(t *testing.T) {
	got, err := run(t, `program p; begin writeln(true or (1/0 == 0)) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "true\n", got)
}

func TestContextCancellationStopsExecution(t *testing.T) {
	prog, err := parser.Parse([]byte(`program p; begin while true do writeln(1) end end p.`))
	require.NoError(t, err)
	code, err := compiler.Compile(prog)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	m := machine.New(config.Default(), &out, strings.NewReader(""))
	err = m.Run(ctx, code)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVectorOutOfBoundsIsRuntimeError(t *testing.T) {
	_, err := run(t, `program p; v: vector[2] of integer; i: integer; begin i = 5; v[i] = 1 end p.`)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	assert.ErrorAs(t, err, &rerr)
}

func TestCallStmtDoesNotLeakValueStackSlots(t *testing.T) {
	got, err := run(t, `program p; procedure noop(); begin end noop; x: integer; begin x = 0; while x < 1000 do noop(); x = x + 1 end; writeln(x) end p.`)
	require.NoError(t, err)
	assert.Equal(t, "1000\n", got)
}

func TestReadInteger(t *testing.T) {
	prog, err := parser.Parse([]byte(`program p; x: integer; begin read(x); writeln(x + 1) end p.`))
	require.NoError(t, err)
	code, err := compiler.Compile(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	m := machine.New(config.Default(), &out, strings.NewReader("41\n"))
	require.NoError(t, m.Run(context.Background(), code))
	assert.Equal(t, "42\n", out.String())
}
