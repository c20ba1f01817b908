package types

import (
	"strconv"
	"strings"
)

// Modifier is a parameter-passing mode. Modifier on a non-parameter type is
// always ModIn (§3.2).
type Modifier uint8

//nolint:revive
const (
	ModIn Modifier = iota
	ModOut
	ModInOut
)

func (m Modifier) String() string {
	switch m {
	case ModOut:
		return "out"
	case ModInOut:
		return "inout"
	default:
		return "in"
	}
}

// Signature is a function's semantic type payload: its return type followed
// by its parameter types, each carrying its own Modifier (§3.2).
type Signature struct {
	Return Type
	Params []Type
}

func (s *Signature) Arity() int { return len(s.Params) }

func (s *Signature) equal(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.Params) != len(o.Params) || !s.Return.Equal(o.Return) {
		return false
	}
	for i := range s.Params {
		if !s.Params[i].Equal(o.Params[i]) || s.Params[i].Modifier != o.Params[i].Modifier {
			return false
		}
	}
	return true
}

// Type is a semantic type: {id, base, rank, size, modifier, dimensions,
// function_signature} (§3.2).
type Type struct {
	ID         Kind
	Base       Kind   // for Vector: the scalar leaf type
	Rank       int    // for Vector: number of dimensions
	Size       int    // for Vector: product of Dimensions
	Modifier   Modifier
	Dimensions []int      // for Vector, length == Rank
	Signature  *Signature // for Function
}

// Scalar builds a non-vector, non-function semantic type.
func Scalar(id Kind) Type { return Type{ID: id} }

// VectorType builds the semantic type of a vector of the given base type and
// dimensions. Size is the product of the dimensions, per the resolution of
// the sub-vector-size open question (see DESIGN.md).
func VectorType(base Kind, dims []int) Type {
	size := 1
	for _, d := range dims {
		size *= d
	}
	return Type{ID: Vector, Base: base, Rank: len(dims), Size: size, Dimensions: dims}
}

// FunctionType builds the semantic type of a function or procedure.
func FunctionType(ret Type, params []Type) Type {
	return Type{ID: Function, Signature: &Signature{Return: ret, Params: params}}
}

// WithModifier returns a copy of t carrying the given parameter-passing mode.
func (t Type) WithModifier(m Modifier) Type {
	t.Modifier = m
	return t
}

// Equal implements structural type equality (§3.2): for vectors, base, rank
// and every dimension must match; for functions, arity, return type and
// every parameter type (including modifier) must match; otherwise types
// compare by id alone.
func (t Type) Equal(o Type) bool {
	if t.ID != o.ID {
		return false
	}
	switch t.ID {
	case Vector:
		if t.Base != o.Base || t.Rank != o.Rank || len(t.Dimensions) != len(o.Dimensions) {
			return false
		}
		for i := range t.Dimensions {
			if t.Dimensions[i] != o.Dimensions[i] {
				return false
			}
		}
		return true
	case Function:
		return t.Signature.equal(o.Signature)
	default:
		return true
	}
}

// Comparable reports whether values of type t and o may be compared with
// <, <=, >, >= (§3.2): integer/integer and string/string only.
func Comparable(t, o Type) bool {
	return t.ID == o.ID && (t.ID == Integer || t.ID == String)
}

func (t Type) String() string {
	switch t.ID {
	case Vector:
		var sb strings.Builder
		for _, d := range t.Dimensions {
			sb.WriteString("vector[")
			sb.WriteString(strconv.Itoa(d))
			sb.WriteString("] of ")
		}
		sb.WriteString(t.Base.String())
		return sb.String()
	case Function:
		var sb strings.Builder
		sb.WriteString("function(")
		for i, p := range t.Signature.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			if p.Modifier != ModIn {
				sb.WriteString(p.Modifier.String())
				sb.WriteString(" ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteString("): ")
		sb.WriteString(t.Signature.Return.String())
		return sb.String()
	default:
		return t.ID.String()
	}
}
