package types

import "fmt"

// Equal implements structural value equality for scalar values of the same
// kind (§3.2). Vector and function equality require, respectively, the
// array-data stack and never-equal semantics and are implemented by the
// machine package.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case IntValue:
		return av == b.(IntValue)
	case BoolValue:
		return av == b.(BoolValue)
	case StrValue:
		return av.Equal(b.(StrValue))
	case VoidValue:
		return true
	default:
		return false
	}
}

// Compare implements three-way comparison, valid only for two integers or
// two strings (§3.2's comparison-compatible restriction).
func Compare(a, b Value) (int, error) {
	switch av := a.(type) {
	case IntValue:
		bv, ok := b.(IntValue)
		if !ok {
			return 0, fmt.Errorf("cannot compare %s to %s", a.Kind(), b.Kind())
		}
		return av.Cmp(bv), nil
	case StrValue:
		bv, ok := b.(StrValue)
		if !ok {
			return 0, fmt.Errorf("cannot compare %s to %s", a.Kind(), b.Kind())
		}
		return av.Cmp(bv), nil
	default:
		return 0, fmt.Errorf("type %s is not comparable", a.Kind())
	}
}
