// Package machine implements the stack-based bytecode interpreter
// described in §4.4 and §9: four stacks (value, array-data, frame,
// argument), a depth-indexed "display" for the closure lookup rule of
// §4.4.1, and the opcode dispatch loop itself.
//
// The teacher's own machine.go runs a Starlark-like VM (register-free,
// cell-based closures, iterators, maps) that has no counterpart here; what
// carries over from it is the shape of the loop, not its opcode semantics:
// one Thread-like object owning the stacks and an I/O surface, a single
// dispatch `for { switch op { ... } }`, per-call flat-slice-style local
// addressing, and a context.Context threaded through Run for cooperative
// cancellation even though the VM itself is single-threaded (cancellation
// is not concurrency). The opcode semantics themselves are ported from
// original_source/vm/vm.c, the actual authority for this bytecode's
// behavior.
package machine

import (
	"bufio"
	"context"
	"io"

	"github.com/mna/yala/internal/config"
	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/token"
	"github.com/mna/yala/lang/types"
)

// Machine is one virtual machine instance: its four stacks, the I/O it
// reads READ/writes WRITE through, and the stack-size limits it enforces.
type Machine struct {
	Limits config.Limits

	Stdout io.Writer
	stdin  *bufio.Reader

	values    []types.Value
	arrayData []types.Value
	frames    []*frame
	display   []*frame
	argStack  []types.Value
}

// New returns a Machine reading from stdin and writing to stdout, bounded
// by limits.
func New(limits config.Limits, stdout io.Writer, stdin io.Reader) *Machine {
	return &Machine{
		Limits:    limits,
		Stdout:    stdout,
		stdin:     bufio.NewReader(stdin),
		values:    make([]types.Value, 0, limits.InitialValueStack),
		arrayData: make([]types.Value, 0, limits.InitialArrayStack),
		frames:    make([]*frame, 0, limits.InitialFrameStack),
	}
}

// Run executes top, the implicit launcher Bytecode compiler.Compile
// produces (§4.3.5's "the program is compiled as a parameterless
// procedure"): its own code forward-declares and calls the program module,
// then halts. Run returns nil on a normal HALT, ctx.Err() if ctx is
// cancelled, or a *RuntimeError.
func (m *Machine) Run(ctx context.Context, top *compiler.Bytecode) error {
	launcher := &frame{code: top, envIndex: top.EnvIndex}
	m.frames = append(m.frames, launcher)
	m.setDisplay(launcher.envIndex, launcher)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		cur := m.frames[len(m.frames)-1]
		if cur.ip >= len(cur.code.Code) {
			return runtimeErrorf(cur.code.LineAt(len(cur.code.Code)-1), "fell off the end of the instruction stream")
		}
		pos := cur.code.LineAt(cur.ip)
		op := compiler.Opcode(cur.u8())

		halted, err := m.step(cur, op, pos)
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// step executes one already-fetched opcode against cur, the currently
// active frame. It returns halted=true when op is HALT.
func (m *Machine) step(cur *frame, op compiler.Opcode, pos token.Pos) (bool, error) {
	switch op {
	case compiler.NOP:

	case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV:
		if err := m.arith(op, pos); err != nil {
			return false, err
		}

	case compiler.LT, compiler.LE, compiler.GT, compiler.GE:
		if err := m.relational(op, pos); err != nil {
			return false, err
		}

	case compiler.EQUA:
		id := types.Kind(cur.u8())
		base := types.Kind(cur.u8())
		b := m.pop()
		a := m.pop()
		eq, err := m.equal(id, base, a, b)
		if err != nil {
			return false, err
		}
		if err := m.push(pos, types.BoolValue(eq)); err != nil {
			return false, err
		}

	case compiler.NOT:
		x := m.pop().(types.BoolValue)
		if err := m.push(pos, !x); err != nil {
			return false, err
		}

	case compiler.POPV, compiler.POPA:
		// §9: with no garbage collection of vector/string backing storage (a
		// stated non-goal), closing a scope only ever needs to drop the one
		// value-stack slot (scalar value or vector descriptor); POPA's name
		// documents that the dropped local was a vector, not a second
		// underlying pop.
		m.pop()

	case compiler.PUSH_BYTE:
		if err := m.push(pos, types.IntValue(int64(cur.u8()))); err != nil {
			return false, err
		}

	case compiler.PUSH_BOOL:
		if err := m.push(pos, types.BoolValue(cur.u8() != 0)); err != nil {
			return false, err
		}

	case compiler.LOCI_LONG:
		addr := cur.u16()
		n := cur.code.Constants[addr].(int64)
		if err := m.push(pos, types.IntValue(n)); err != nil {
			return false, err
		}

	case compiler.LOCS_LONG:
		addr := cur.u16()
		s := cur.code.Constants[addr].(string)
		if err := m.push(pos, types.NewString([]byte(s))); err != nil {
			return false, err
		}

	case compiler.LOCF_LONG:
		addr := cur.u16()
		fn := cur.code.Constants[addr].(*compiler.Bytecode)
		if err := m.push(pos, FunctionValue{Code: fn}); err != nil {
			return false, err
		}

	case compiler.LOC_ALINK_LONG:
		addr := cur.u16()
		size := int(cur.code.Constants[addr].(compiler.VectorSize))
		ptr := len(m.arrayData) - size
		if err := m.push(pos, types.VectorValue{Length: size, Ptr: ptr}); err != nil {
			return false, err
		}

	case compiler.ASTACK_SHIFT_UP:
		n := int(m.pop().(types.IntValue))
		if err := m.reserveArray(pos, n); err != nil {
			return false, err
		}

	case compiler.POP_TO_ASTACK:
		v := m.pop()
		if err := m.pushArray(pos, v); err != nil {
			return false, err
		}

	case compiler.GET_LOCAL_LONG:
		offset := cur.u16()
		index := cur.u16()
		slot := m.localSlot(cur, int(offset), int(index))
		if err := m.push(pos, m.values[slot]); err != nil {
			return false, err
		}

	case compiler.SET_LOCAL_LONG:
		offset := cur.u16()
		index := cur.u16()
		slot := m.localSlot(cur, int(offset), int(index))
		m.values[slot] = m.pop()

	case compiler.GET_INDEX:
		if err := m.getIndex(cur, pos); err != nil {
			return false, err
		}

	case compiler.SET_INDEX_LOCAL_LONG:
		if err := m.setIndexLocal(cur, pos); err != nil {
			return false, err
		}

	case compiler.SKIP_LONG:
		d := cur.u16()
		cur.ip += int(d)

	case compiler.SKIPF_LONG:
		d := cur.u16()
		cond := bool(m.values[len(m.values)-1].(types.BoolValue))
		if !cond {
			cur.ip += int(d)
		}

	case compiler.SKIP_BACK_LONG:
		d := cur.u16()
		cur.ip -= int(d)

	case compiler.CALL:
		if err := m.call(cur, pos); err != nil {
			return false, err
		}

	case compiler.RETURN:
		m.doReturn(cur)

	case compiler.ARGSTACK_LOAD:
		if err := m.argstackLoad(cur, pos); err != nil {
			return false, err
		}

	case compiler.ARGSTACK_PEEK:
		if err := m.push(pos, m.argStack[len(m.argStack)-1]); err != nil {
			return false, err
		}

	case compiler.ARGSTACK_UNLOAD:
		cur.u8() // is_vector: informational only, see ARGSTACK_LOAD
		m.argStack = m.argStack[:len(m.argStack)-1]

	case compiler.SHIFT_ASTACKENT_TO_BASE:
		if err := m.shiftReturnVector(cur, pos); err != nil {
			return false, err
		}

	case compiler.READ:
		if err := m.doRead(cur, pos); err != nil {
			return false, err
		}

	case compiler.WRITE:
		if err := m.doWrite(cur, pos); err != nil {
			return false, err
		}

	case compiler.NEWLINE:
		io.WriteString(m.Stdout, "\n")

	case compiler.HALT:
		return true, nil

	default:
		return false, runtimeErrorf(pos, "unimplemented opcode %s", op)
	}
	return false, nil
}

func (m *Machine) arith(op compiler.Opcode, pos token.Pos) error {
	y := int64(m.pop().(types.IntValue))
	x := int64(m.pop().(types.IntValue))
	var r int64
	switch op {
	case compiler.ADD:
		r = x + y
	case compiler.SUB:
		r = x - y
	case compiler.MUL:
		r = x * y
	case compiler.DIV:
		if y == 0 {
			return runtimeErrorf(pos, "division by zero")
		}
		r = x / y
	}
	return m.push(pos, types.IntValue(r))
}

func (m *Machine) relational(op compiler.Opcode, pos token.Pos) error {
	b := m.pop()
	a := m.pop()
	c, err := types.Compare(a, b)
	if err != nil {
		return runtimeErrorf(pos, "%s", err)
	}
	var r bool
	switch op {
	case compiler.LT:
		r = c < 0
	case compiler.LE:
		r = c <= 0
	case compiler.GT:
		r = c > 0
	case compiler.GE:
		r = c >= 0
	}
	return m.push(pos, types.BoolValue(r))
}

// equal implements EQUA (§4.4.1): scalar equality delegates to
// types.Equal, functions are never equal, and vectors compare element-wise
// over the array-data stack with types.Equal; the base operand is not
// consulted.
func (m *Machine) equal(id, _ types.Kind, a, b types.Value) (bool, error) {
	if id != types.Vector {
		return types.Equal(a, b), nil
	}
	av, aok := a.(types.VectorValue)
	bv, bok := b.(types.VectorValue)
	if !aok || !bok || av.Length != bv.Length {
		return false, nil
	}
	for i := 0; i < av.Length; i++ {
		if !types.Equal(m.arrayData[av.Ptr+i], m.arrayData[bv.Ptr+i]) {
			return false, nil
		}
	}
	return true, nil
}

func (m *Machine) localSlot(cur *frame, offset, index int) int {
	if offset == 0 {
		return cur.stackbase + index
	}
	target := m.display[cur.envIndex-offset]
	return target.stackbase + index
}

func (m *Machine) displayAt(idx int) *frame {
	if idx < 0 || idx >= len(m.display) {
		return nil
	}
	return m.display[idx]
}

// setDisplay records f as the active frame at lexical depth idx, returning
// whatever frame previously occupied that slot so the caller can restore
// it on return (§4.4.1).
func (m *Machine) setDisplay(idx int, f *frame) *frame {
	for len(m.display) <= idx {
		m.display = append(m.display, nil)
	}
	prev := m.display[idx]
	m.display[idx] = f
	return prev
}

func (m *Machine) pop() types.Value {
	n := len(m.values) - 1
	v := m.values[n]
	m.values = m.values[:n]
	return v
}

func (m *Machine) push(pos token.Pos, v types.Value) error {
	if len(m.values) >= m.Limits.MaxValueStack {
		return runtimeErrorf(pos, "value stack overflow")
	}
	m.values = append(m.values, v)
	return nil
}

func (m *Machine) pushArray(pos token.Pos, v types.Value) error {
	if len(m.arrayData) >= m.Limits.MaxArrayStack {
		return runtimeErrorf(pos, "array-data stack overflow")
	}
	m.arrayData = append(m.arrayData, v)
	return nil
}

// reserveArray appends n zero-valued slots to the array-data stack (used
// for a default vector's backing storage, §4.3.2). Elements are filled
// with a generic integer zero regardless of the vector's declared base
// type: every path that reads a vector element writes it before any read
// can observe it, so the placeholder's exact kind is never user-visible.
func (m *Machine) reserveArray(pos token.Pos, n int) error {
	if len(m.arrayData)+n > m.Limits.MaxArrayStack {
		return runtimeErrorf(pos, "array-data stack overflow")
	}
	for i := 0; i < n; i++ {
		m.arrayData = append(m.arrayData, types.IntValue(0))
	}
	return nil
}

// growArrayTo extends the array-data stack's length to at least need,
// padding with zero values.
func (m *Machine) growArrayTo(pos token.Pos, need int) error {
	if need > m.Limits.MaxArrayStack {
		return runtimeErrorf(pos, "array-data stack overflow")
	}
	for len(m.arrayData) < need {
		m.arrayData = append(m.arrayData, types.IntValue(0))
	}
	return nil
}
