package serialize_test

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
	"github.com/mna/yala/lang/serialize"
)

// roundTrip compiles src, serializes it, deserializes the result, and
// re-serializes the deserialized tree: Bytecode carries unexported
// constant-pool dedup indices, so comparing the two encoded texts is the
// practical witness of §8's `deserialize(serialize(b)) == b` property
// instead of reflecting into Bytecode's internals.
func roundTrip(t *testing.T, src string) (encoded string, decoded *compiler.Bytecode) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	code, err := compiler.Compile(prog)
	require.NoError(t, err)

	encoded = serialize.Encode(code)
	decoded, err = serialize.Decode(encoded)
	require.NoError(t, err)
	return encoded, decoded
}

func TestRoundTripScalarProgram(t *testing.T) {
	encoded, decoded := roundTrip(t, `program p; x: integer; begin x = 3; writeln(x + 1) end p.`)
	assert.Equal(t, encoded, serialize.Encode(decoded))
}

func TestRoundTripNestedFunctions(t *testing.T) {
	encoded, decoded := roundTrip(t, `program p; function f(n: integer): integer; if n <= 1 then 1 else n * f(n-1) end end f; begin writeln(f(5)) end p.`)
	assert.Equal(t, encoded, serialize.Encode(decoded))
}

func TestRoundTripVectorsAndStrings(t *testing.T) {
	encoded, decoded := roundTrip(t, `program p; v: vector[2] of vector[2] of integer; s: string; begin v = [[1,2],[3,4]]; s = "hi"; writeln(v[0][1], s) end p.`)
	assert.Equal(t, encoded, serialize.Encode(decoded))
}

func TestDecodedBytecodeExecutesIdentically(t *testing.T) {
	_, decoded := roundTrip(t, `program p; x: integer; begin x = 3; for i = 1 to 4 do x = x + i end; writeln(x) end p.`)

	var out bytes.Buffer
	m := machine.New(config.Default(), &out, strings.NewReader(""))
	require.NoError(t, m.Run(context.Background(), decoded))
	assert.Equal(t, "13\n", out.String())
}

func TestEncodeEndsEachFunctionBodyWithTerminator(t *testing.T) {
	encoded, _ := roundTrip(t, `program p; begin writeln(1) end p.`)
	assert.Contains(t, encoded, "-1\n")
}

// TestRoundTripPreservesLeadingWhitespaceInStringConstant guards against a
// decoder bug where a greedy space/tab skip after a constant's kind id ate
// into a string constant's own leading whitespace instead of stopping
// after Encode's single separator byte.
func TestRoundTripPreservesLeadingWhitespaceInStringConstant(t *testing.T) {
	encoded, decoded := roundTrip(t, `program p; begin writeln(" x") end p.`)
	assert.Equal(t, encoded, serialize.Encode(decoded))

	var out bytes.Buffer
	m := machine.New(config.Default(), &out, strings.NewReader(""))
	require.NoError(t, m.Run(context.Background(), decoded))
	assert.Equal(t, " x\n", out.String())
}
