package types

import "strconv"

// VectorValue is a descriptor referencing a run of flattened elements on the
// machine's array-data stack: {length, pointer-into-array-data-stack} (§3.1).
// The descriptor itself carries no element data, so its String/Equal/Cmp are
// necessarily shallow; recursive printing and element-wise comparison
// require the array-data stack and are implemented by the machine package,
// which owns it.
type VectorValue struct {
	Length int
	Ptr    int
}

var _ Value = VectorValue{}

func (v VectorValue) String() string {
	return "vector[" + strconv.Itoa(v.Length) + "]@" + strconv.Itoa(v.Ptr)
}

func (VectorValue) Kind() Kind { return Vector }
