package types

import (
	"bytes"
)

// StrValue is an immutable byte sequence carrying its length and a
// precomputed djb2-style hash, copied from its source bytes on construction
// (§3.1). Equality short-circuits on hash inequality before falling back to
// a byte-for-byte comparison.
type StrValue struct {
	data []byte
	hash uint32
}

var _ Value = StrValue{}

// NewString copies b and precomputes its hash.
func NewString(b []byte) StrValue {
	cp := make([]byte, len(b))
	copy(cp, b)
	return StrValue{data: cp, hash: djb2(cp)}
}

func djb2(b []byte) uint32 {
	var h uint32 = 5381
	for _, c := range b {
		h = h*33 + uint32(c)
	}
	return h
}

func (s StrValue) String() string { return string(s.data) }
func (StrValue) Kind() Kind       { return String }
func (s StrValue) Len() int       { return len(s.data) }
func (s StrValue) Bytes() []byte  { return s.data }
func (s StrValue) Hash() uint32   { return s.hash }

// Equal reports whether s and o hold the same bytes.
func (s StrValue) Equal(o StrValue) bool {
	if s.hash != o.hash || len(s.data) != len(o.data) {
		return false
	}
	return bytes.Equal(s.data, o.data)
}

// Cmp implements lexicographic three-way comparison by raw bytes.
func (s StrValue) Cmp(o StrValue) int {
	return bytes.Compare(s.data, o.data)
}
