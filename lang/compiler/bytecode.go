package compiler

import (
	"github.com/dolthub/swiss"

	"github.com/mna/yala/lang/token"
)

// LineInfo is the line:column pair recorded for exactly one code byte
// (§3.5, §4.2): every emitted byte carries its own entry in the parallel
// Lines slice.
type LineInfo struct {
	Line, Col int
}

// MaxConstants is the maximum number of distinct constants a single
// Bytecode's pool may hold, since LOC*_LONG addresses them with a 16-bit
// index (§4.2).
const MaxConstants = 65535

// Bytecode is the mutable, append-only container described in §3.5 and
// §4.2: a byte sequence, a parallel line-info table, and a constant pool.
// A function value's code points to a nested Bytecode; the top-level
// program is wrapped in an implicit Bytecode whose final byte is HALT.
//
// Constants holds int64 (LOCI_LONG), string (LOCS_LONG), int sized as an
// element count (LOC_ALINK_LONG, a default-vector allocation size), or a
// nested *Bytecode (LOCF_LONG, a function). It intentionally does not hold
// types.Value: the constant pool is a property of the bytecode container,
// which must not depend on the value/type model, to avoid an import cycle
// with lang/types (which is consulted one layer up, by the Compiler).
type Bytecode struct {
	Name      string
	EnvIndex  int // index of the environment this code belongs to
	Code      []byte
	Lines     []LineInfo
	Constants []any

	intIndex    *swiss.Map[int64, uint16]
	stringIndex *swiss.Map[string, uint16]
}

// NewBytecode returns an empty Bytecode container for the function or
// program named name, defined in the environment at envIndex.
func NewBytecode(name string, envIndex int) *Bytecode {
	return &Bytecode{
		Name:        name,
		EnvIndex:    envIndex,
		intIndex:    swiss.NewMap[int64, uint16](8),
		stringIndex: swiss.NewMap[string, uint16](8),
	}
}

// Here returns the current program counter, i.e. the address the next
// emitted byte will occupy. Callers use it to record jump targets before
// emitting the body to be jumped over/back to.
func (b *Bytecode) Here() int { return len(b.Code) }

// emitByte appends a single opcode or raw operand byte at pos, recording
// line:col for it.
func (b *Bytecode) emitByte(c byte, pos token.Pos) {
	b.Code = append(b.Code, c)
	line, col := pos.LineCol()
	b.Lines = append(b.Lines, LineInfo{Line: line, Col: col})
}

// EmitOp appends a bare opcode with no operand.
func (b *Bytecode) EmitOp(op Opcode, pos token.Pos) {
	b.emitByte(byte(op), pos)
}

// EmitByteArg appends op followed by a single raw byte operand.
func (b *Bytecode) EmitByteArg(op Opcode, arg byte, pos token.Pos) {
	b.emitByte(byte(op), pos)
	b.emitByte(arg, pos)
}

// EmitLong appends op followed by a big-endian uint16 operand.
func (b *Bytecode) EmitLong(op Opcode, arg uint16, pos token.Pos) int {
	b.emitByte(byte(op), pos)
	addr := b.Here()
	b.emitByte(byte(arg>>8), pos)
	b.emitByte(byte(arg), pos)
	return addr
}

// EmitLongLong appends op followed by two big-endian uint16 operands (used
// by GET_LOCAL_LONG/SET_LOCAL_LONG's offset,index pair).
func (b *Bytecode) EmitLongLong(op Opcode, a, c uint16, pos token.Pos) {
	b.emitByte(byte(op), pos)
	b.emitByte(byte(a>>8), pos)
	b.emitByte(byte(a), pos)
	b.emitByte(byte(c>>8), pos)
	b.emitByte(byte(c), pos)
}

// EmitByteByteArg appends op followed by two raw operand bytes (used by
// GET_INDEX's n,rank pair and EQUA's id,base pair).
func (b *Bytecode) EmitByteByteArg(op Opcode, a, c byte, pos token.Pos) {
	b.emitByte(byte(op), pos)
	b.emitByte(a, pos)
	b.emitByte(c, pos)
}

// EmitLongByteArg appends op followed by a big-endian uint16 and a raw byte
// (used by ARGSTACK_LOAD's index,is_vector pair).
func (b *Bytecode) EmitLongByteArg(op Opcode, a uint16, c byte, pos token.Pos) {
	b.emitByte(byte(op), pos)
	b.emitByte(byte(a>>8), pos)
	b.emitByte(byte(a), pos)
	b.emitByte(c, pos)
}

// EmitLongLongByteByteArg appends op followed by two big-endian uint16s and
// two raw bytes (used by SET_INDEX_LOCAL_LONG's offset,index,n,rank tuple).
func (b *Bytecode) EmitLongLongByteByteArg(op Opcode, a, c uint16, n, rank byte, pos token.Pos) {
	b.emitByte(byte(op), pos)
	b.emitByte(byte(a>>8), pos)
	b.emitByte(byte(a), pos)
	b.emitByte(byte(c>>8), pos)
	b.emitByte(byte(c), pos)
	b.emitByte(n, pos)
	b.emitByte(rank, pos)
}

// PatchLong overwrites the uint16 operand at addr (as returned by
// EmitLong) with v. Used to backpatch forward jumps once their target is
// known.
func (b *Bytecode) PatchLong(addr int, v uint16) {
	b.Code[addr] = byte(v >> 8)
	b.Code[addr+1] = byte(v)
}

// AddIntConstant interns n in the constant pool, returning its 16-bit
// address. Equal constants are deduplicated.
func (b *Bytecode) AddIntConstant(n int64) uint16 {
	if idx, ok := b.intIndex.Get(n); ok {
		return idx
	}
	idx := uint16(len(b.Constants))
	b.Constants = append(b.Constants, n)
	b.intIndex.Put(n, idx)
	return idx
}

// AddStringConstant interns s in the constant pool, returning its 16-bit
// address.
func (b *Bytecode) AddStringConstant(s string) uint16 {
	if idx, ok := b.stringIndex.Get(s); ok {
		return idx
	}
	idx := uint16(len(b.Constants))
	b.Constants = append(b.Constants, s)
	b.stringIndex.Put(s, idx)
	return idx
}

// AddVectorSizeConstant adds a default-vector allocation-size constant
// (wire format id 3) and returns its address. These are never deduplicated
// since each default-initialized vector local needs its own descriptor.
func (b *Bytecode) AddVectorSizeConstant(size int) uint16 {
	idx := uint16(len(b.Constants))
	b.Constants = append(b.Constants, VectorSize(size))
	return idx
}

// AddFunctionConstant reserves a constant pool slot for a nested function
// and returns its address. The slot is filled in once the nested function
// finishes compiling (§4.3.5 step 6, "patching its forward-declared
// constant").
func (b *Bytecode) AddFunctionConstant() uint16 {
	idx := uint16(len(b.Constants))
	b.Constants = append(b.Constants, (*Bytecode)(nil))
	return idx
}

// PatchFunctionConstant fills in a slot reserved by AddFunctionConstant.
func (b *Bytecode) PatchFunctionConstant(addr uint16, fn *Bytecode) {
	b.Constants[addr] = fn
}

// VectorSize is the wire representation of a "vector descriptor" constant
// (§6.3 kind 3): the element count of a default zero-initialized vector.
type VectorSize int

// LineAt returns the line:col recorded for the instruction at ip, or the
// zero Pos if ip is out of range.
func (b *Bytecode) LineAt(ip int) token.Pos {
	if ip < 0 || ip >= len(b.Lines) {
		return 0
	}
	li := b.Lines[ip]
	return token.MakePos(li.Line, li.Col)
}
