package types

import (
	"math"
	"strconv"
)

// IntValue is a machine integer with overflow-safe arithmetic predicates
// consulted by the compiler (§4.1). The VM's own runtime arithmetic does not
// consult these: it wraps around using ordinary two's-complement semantics,
// matching the reference implementation's behavior.
type IntValue int64

var _ Value = IntValue(0)

func (i IntValue) String() string { return strconv.FormatInt(int64(i), 10) }
func (IntValue) Kind() Kind       { return Integer }

// Cmp implements three-way comparison of two IntValue values.
func (i IntValue) Cmp(v IntValue) int {
	switch {
	case i > v:
		return +1
	case i < v:
		return -1
	default:
		return 0
	}
}

// IsAddOverflow reports whether a+x overflows a signed machine int.
func IsAddOverflow(a, x int64) bool {
	if x > 0 {
		return a > math.MaxInt64-x
	}
	return a < math.MinInt64-x
}

// IsMultOverflow reports whether a*x overflows a signed machine int.
func IsMultOverflow(a, x int64) bool {
	if a == 0 || x == 0 {
		return false
	}
	p := a * x
	return p/x != a
}
