package machine

import (
	"github.com/mna/yala/lang/token"
	"github.com/mna/yala/lang/types"
)

// call implements CALL<arity> (§4.4.1, §9): the callee and its arity
// actuals already sit on top of the value stack (the caller pushed them
// left to right); this pushes a new frame over them and switches dispatch
// to the callee's own code without touching the value stack itself, since
// the actuals already occupy exactly the slots the callee's parameters
// need.
func (m *Machine) call(cur *frame, pos token.Pos) error {
	arity := int(cur.u16())
	fnIdx := len(m.values) - arity - 1
	if fnIdx < 0 {
		return runtimeErrorf(pos, "internal error: CALL stack underflow")
	}
	fn, ok := m.values[fnIdx].(FunctionValue)
	if !ok {
		return runtimeErrorf(pos, "cannot call a non-function value")
	}
	if len(m.frames) >= m.Limits.MaxFrameStack {
		return runtimeErrorf(pos, "call stack overflow")
	}

	nf := &frame{
		code:       fn.Code,
		stackbase:  len(m.values) - arity,
		calleeBase: fnIdx,
		asp:        len(m.arrayData),
		envIndex:   fn.EnvIndex(),
	}
	nf.savedDisplay = m.setDisplay(nf.envIndex, nf)
	m.frames = append(m.frames, nf)
	return nil
}

// doReturn implements RETURN<arity> (§4.3.6, §4.4.1, §9): the callee's own
// return epilogue has already relocated every out/inout and returned
// vector's backing elements to cur.asp+cur.relocated, so everything from
// the callee's own array-data usage past that point, and every value-stack
// slot from the callee function value down, can simply be discarded.
func (m *Machine) doReturn(cur *frame) {
	cur.u16() // arity: restoring to calleeBase makes it redundant, kept for wire fidelity
	result := m.pop()

	m.arrayData = m.arrayData[:cur.asp+cur.relocated]

	m.frames = m.frames[:len(m.frames)-1]
	m.display[cur.envIndex] = cur.savedDisplay

	m.values = m.values[:cur.calleeBase]
	m.values = append(m.values, result)
}

// relocate copies a vector living at or after cur.asp (i.e. allocated
// during this call) down to cur.asp+cur.relocated so it survives the
// array-data truncation doReturn performs. A vector living before cur.asp
// already belongs to an enclosing frame (the common case for an
// unreassigned by-reference vector parameter) and needs no copy at all.
func (m *Machine) relocate(pos token.Pos, cur *frame, vec types.VectorValue) (types.VectorValue, error) {
	if vec.Ptr < cur.asp {
		return vec, nil
	}
	dst := cur.asp + cur.relocated
	need := dst + vec.Length
	if err := m.growArrayTo(pos, need); err != nil {
		return types.VectorValue{}, err
	}
	copy(m.arrayData[dst:dst+vec.Length], m.arrayData[vec.Ptr:vec.Ptr+vec.Length])
	cur.relocated += vec.Length
	return types.VectorValue{Length: vec.Length, Ptr: dst}, nil
}

// argstackLoad implements ARGSTACK_LOAD<index,is_vector> (§4.3.6): reads
// an out/inout parameter's current value out of the callee's own locals
// and pushes it onto the argument stack for the caller to drain after
// CALL returns, relocating its backing elements first when it is a vector.
func (m *Machine) argstackLoad(cur *frame, pos token.Pos) error {
	i := cur.u16()
	isVector := cur.u8() != 0
	val := m.values[cur.stackbase+int(i)]
	if isVector {
		vec := val.(types.VectorValue)
		relocated, err := m.relocate(pos, cur, vec)
		if err != nil {
			return err
		}
		val = relocated
	}
	m.argStack = append(m.argStack, val)
	return nil
}

// shiftReturnVector implements SHIFT_ASTACKENT_TO_BASE (§4.3.6): like
// argstackLoad, but for the function's own return value, which sits on
// top of the value stack rather than in a named local.
func (m *Machine) shiftReturnVector(cur *frame, pos token.Pos) error {
	top := len(m.values) - 1
	vec := m.values[top].(types.VectorValue)
	relocated, err := m.relocate(pos, cur, vec)
	if err != nil {
		return err
	}
	m.values[top] = relocated
	return nil
}
