package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorTypeEqual(t *testing.T) {
	a := VectorType(Integer, []int{2, 3})
	b := VectorType(Integer, []int{2, 3})
	c := VectorType(Integer, []int{3, 2})
	d := VectorType(Boolean, []int{2, 3})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.Equal(t, 6, a.Size)
}

func TestFunctionTypeEqual(t *testing.T) {
	a := FunctionType(Scalar(Integer), []Type{Scalar(Integer).WithModifier(ModIn), Scalar(Boolean).WithModifier(ModOut)})
	b := FunctionType(Scalar(Integer), []Type{Scalar(Integer).WithModifier(ModIn), Scalar(Boolean).WithModifier(ModOut)})
	c := FunctionType(Scalar(Integer), []Type{Scalar(Integer).WithModifier(ModIn), Scalar(Boolean).WithModifier(ModInOut)})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestComparable(t *testing.T) {
	assert.True(t, Comparable(Scalar(Integer), Scalar(Integer)))
	assert.True(t, Comparable(Scalar(String), Scalar(String)))
	assert.False(t, Comparable(Scalar(Boolean), Scalar(Boolean)))
	assert.False(t, Comparable(Scalar(Integer), Scalar(String)))
}

func TestOverflowPredicates(t *testing.T) {
	assert.False(t, IsAddOverflow(1, 2))
	assert.True(t, IsAddOverflow(1<<62, 1<<62))
	assert.False(t, IsMultOverflow(2, 3))
	assert.True(t, IsMultOverflow(1<<40, 1<<40))
}

func TestStringHashEquality(t *testing.T) {
	a := NewString([]byte("abc"))
	b := NewString([]byte("abc"))
	c := NewString([]byte("abd"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, -1, a.Cmp(c))
}

func TestGenericEqual(t *testing.T) {
	assert.True(t, Equal(IntValue(3), IntValue(3)))
	assert.False(t, Equal(IntValue(3), IntValue(4)))
	assert.False(t, Equal(IntValue(3), TrueValue))
	assert.True(t, Equal(VoidValue{}, VoidValue{}))
}

func TestGenericCompare(t *testing.T) {
	c, err := Compare(IntValue(3), IntValue(4))
	assert.NoError(t, err)
	assert.Equal(t, -1, c)

	_, err = Compare(TrueValue, TrueValue)
	assert.Error(t, err)
}
