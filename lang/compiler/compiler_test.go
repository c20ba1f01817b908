package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/parser"
	"github.com/mna/yala/lang/serialize"
)

// compile parses and compiles src, failing the test on a parse error (the
// cases here exercise semantic errors, not syntax errors).
func compile(t *testing.T, src string) (*compiler.Bytecode, error) {
	t.Helper()
	prog, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	return compiler.Compile(prog)
}

// TestBreakOutsideLoopRejected is §8's "a break outside any loop is
// rejected" compile-time property.
func TestBreakOutsideLoopRejected(t *testing.T) {
	_, err := compile(t, `program p; begin break end p.`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "break outside a loop")
}

// TestMismatchedVectorLiteralShapeRejected is §8's "a vector literal whose
// sub-expressions have mismatched shapes is rejected" compile-time
// property.
func TestMismatchedVectorLiteralShapeRejected(t *testing.T) {
	_, err := compile(t, `program p; v: vector[2] of vector[2] of integer; begin v = [[1,2],[3,4,5]] end p.`)
	require.Error(t, err)
}

func TestMismatchedVectorLiteralElementKindRejected(t *testing.T) {
	_, err := compile(t, `program p; v: vector[2] of integer; begin v = [1, true] end p.`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "homogeneous")
}

// TestStmtPositionVarDeclWithInitializer is §8 scenario 6's exact form: a
// var decl at statement position, not in a declaration section, carrying
// its own `= expr` initializer.
func TestStmtPositionVarDeclWithInitializer(t *testing.T) {
	_, err := compile(t, `program p; begin v: vector[2] of vector[2] of integer = [[1,2],[3,4]]; writeln(v[1][0]) end p.`)
	require.NoError(t, err)
}

func TestStmtPositionVarDeclInitializerTypeMismatchRejected(t *testing.T) {
	_, err := compile(t, `program p; begin x: integer = true end p.`)
	require.Error(t, err)
}

// TestRedeclarationAtSameDepthRejected is §8's "redeclaring a name at the
// same lexical depth in the same scope is rejected" compile-time property.
func TestRedeclarationAtSameDepthRejected(t *testing.T) {
	_, err := compile(t, `program p; x: integer; x: boolean; begin end p.`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")
}

func TestUndefinedVariableRejected(t *testing.T) {
	_, err := compile(t, `program p; begin writeln(y) end p.`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined variable")
}

// TestAssignToReadOnlyRejected exercises §3.3's rule that the for loop's
// induction variable is demoted to read-only for the loop body.
func TestAssignToReadOnlyRejected(t *testing.T) {
	_, err := compile(t, `program p; begin for i = 1 to 3 do i = 5 end end p.`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
}

func TestTypeMismatchInAssignmentRejected(t *testing.T) {
	_, err := compile(t, `program p; x: integer; begin x = true end p.`)
	require.Error(t, err)
}

func TestArityMismatchRejected(t *testing.T) {
	_, err := compile(t, `program p; procedure q(a: integer); begin end q; begin q(1, 2) end p.`)
	require.Error(t, err)
}

func TestNonPositiveVectorDimensionRejected(t *testing.T) {
	_, err := compile(t, `program p; v: vector[0] of integer; begin end p.`)
	require.Error(t, err)
}

func TestModifierOnFunctionParameterRejected(t *testing.T) {
	_, err := compile(t, `program p; function f(inout n: integer): integer; n end f; begin writeln(f(1)) end p.`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "modifiers")
}

func TestFunctionMissingReturnTypeRejected(t *testing.T) {
	_, err := compile(t, `program p; function f(n: integer); n end f; begin writeln(f(1)) end p.`)
	require.Error(t, err)
}

func TestReadingWholeVectorRejected(t *testing.T) {
	_, err := compile(t, `program p; v: vector[2] of integer; begin read(v) end p.`)
	require.Error(t, err)
}

// TestCompileIsDeterministic exercises §8's "compile(program) is
// deterministic; byte-identical output across runs".
func TestCompileIsDeterministic(t *testing.T) {
	src := `program p; x: integer; function f(n: integer): integer; if n <= 1 then 1 else n * f(n-1) end end f; begin x = f(5); writeln(x) end p.`
	a, err := compile(t, src)
	require.NoError(t, err)
	b, err := compile(t, src)
	require.NoError(t, err)
	assert.Equal(t, a.Code, b.Code)
	// Constants holds unexported swiss-map-backed indices inside nested
	// Bytecode values, so compare the full serialized form instead of
	// reaching into it with reflect.DeepEqual.
	assert.Equal(t, serialize.Encode(a), serialize.Encode(b))
}

// TestOneErrorPerStatementSuppressesCascade exercises §7's panic-flag
// rule: two undefined identifiers referenced in the same statement report
// only the first error.
func TestOneErrorPerStatementSuppressesCascade(t *testing.T) {
	_, err := compile(t, `program p; begin writeln(undefined1 + undefined2) end p.`)
	require.Error(t, err)
	el, ok := err.(compiler.ErrorList)
	require.True(t, ok)
	assert.Len(t, el, 1)
}

func TestIntegerConstantPoolDeduplication(t *testing.T) {
	code, err := compile(t, `program p; begin writeln(1000); writeln(1000) end p.`)
	require.NoError(t, err)
	// code is the implicit launcher; its first constant is program p's own
	// nested Bytecode, where the two equal literals are actually emitted.
	prog, ok := code.Constants[0].(*compiler.Bytecode)
	require.True(t, ok)
	count := 0
	for _, c := range prog.Constants {
		if n, ok := c.(int64); ok && n == 1000 {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
