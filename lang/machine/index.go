package machine

import (
	"github.com/mna/yala/lang/token"
	"github.com/mna/yala/lang/types"
)

// flattenStart computes the row-major flat offset of idx within an array
// shaped dims (len(idx) <= len(dims)), and bounds-checks each idx[i]
// against dims[i] (§4.3.3, §8).
func flattenStart(pos token.Pos, idx, dims []int64) (int64, error) {
	var offset int64
	for i := range idx {
		if idx[i] < 0 || idx[i] >= dims[i] {
			return 0, runtimeErrorf(pos, "index %d out of bounds for dimension of size %d", idx[i], dims[i])
		}
		stride := int64(1)
		for j := i + 1; j < len(dims); j++ {
			stride *= dims[j]
		}
		offset += idx[i] * stride
	}
	return offset, nil
}

// remainingSize is the product of dims[n:], the element count of the
// sub-vector that remains after consuming n of rank indices (the
// resolution of the sub-vector-size open question, see DESIGN.md).
func remainingSize(dims []int64, n int) int64 {
	size := int64(1)
	for _, d := range dims[n:] {
		size *= d
	}
	return size
}

// getIndex implements GET_INDEX<n,rank> (§4.4.1): pops rank dimensions,
// then n indices, then the vector being indexed. When n==rank the result
// is a scalar element; otherwise it is a new descriptor over a
// contiguous, freshly-copied run of the remaining sub-vector.
func (m *Machine) getIndex(cur *frame, pos token.Pos) error {
	n := int(cur.u8())
	rank := int(cur.u8())

	dims := make([]int64, rank)
	for i := rank - 1; i >= 0; i-- {
		dims[i] = int64(m.pop().(types.IntValue))
	}
	idx := make([]int64, n)
	for i := n - 1; i >= 0; i-- {
		idx[i] = int64(m.pop().(types.IntValue))
	}
	vec, ok := m.pop().(types.VectorValue)
	if !ok {
		return runtimeErrorf(pos, "internal error: GET_INDEX on a non-vector value")
	}

	start, err := flattenStart(pos, idx, dims)
	if err != nil {
		return err
	}

	if n >= rank {
		src := vec.Ptr + int(start)
		if src < 0 || src >= len(m.arrayData) {
			return runtimeErrorf(pos, "index out of bounds")
		}
		return m.push(pos, m.arrayData[src])
	}

	count := int(remainingSize(dims, n))
	src := vec.Ptr + int(start)
	if src < 0 || src+count > len(m.arrayData) {
		return runtimeErrorf(pos, "index out of bounds")
	}
	dst := len(m.arrayData)
	if dst+count > m.Limits.MaxArrayStack {
		return runtimeErrorf(pos, "array-data stack overflow")
	}
	m.arrayData = append(m.arrayData, m.arrayData[src:src+count]...)
	return m.push(pos, types.VectorValue{Length: count, Ptr: dst})
}

// setIndexLocal implements SET_INDEX_LOCAL_LONG<offset,index,n,rank>
// (§4.4.1): the mirror of getIndex, writing either a scalar element or a
// block of remainingSize(dims,n) elements copied from the right-hand-side
// descriptor.
func (m *Machine) setIndexLocal(cur *frame, pos token.Pos) error {
	offset := cur.u16()
	index := cur.u16()
	n := int(cur.u8())
	rank := int(cur.u8())

	dims := make([]int64, rank)
	for i := rank - 1; i >= 0; i-- {
		dims[i] = int64(m.pop().(types.IntValue))
	}
	idx := make([]int64, n)
	for i := n - 1; i >= 0; i-- {
		idx[i] = int64(m.pop().(types.IntValue))
	}
	rhs := m.pop()

	slot := m.localSlot(cur, int(offset), int(index))
	dest, ok := m.values[slot].(types.VectorValue)
	if !ok {
		return runtimeErrorf(pos, "internal error: SET_INDEX_LOCAL_LONG on a non-vector local")
	}

	start, err := flattenStart(pos, idx, dims)
	if err != nil {
		return err
	}

	if n >= rank {
		dst := dest.Ptr + int(start)
		if dst < 0 || dst >= len(m.arrayData) {
			return runtimeErrorf(pos, "index out of bounds")
		}
		m.arrayData[dst] = rhs
		return nil
	}

	count := int(remainingSize(dims, n))
	dst := dest.Ptr + int(start)
	if dst < 0 || dst+count > len(m.arrayData) {
		return runtimeErrorf(pos, "index out of bounds")
	}
	rhsVec, ok := rhs.(types.VectorValue)
	if !ok || rhsVec.Length != count {
		return runtimeErrorf(pos, "internal error: SET_INDEX_LOCAL_LONG sub-vector size mismatch")
	}
	copy(m.arrayData[dst:dst+count], m.arrayData[rhsVec.Ptr:rhsVec.Ptr+count])
	return nil
}
