package machine

import "github.com/mna/yala/lang/compiler"

// frame is one active call (§4.4, §9): the running function's own code and
// program counter, the region of the shared value stack holding its
// locals, the array-data stack's height when the call began, and enough
// bookkeeping to restore the closure-lookup display and to relocate
// out/inout and return vector data before the array-data stack unwinds.
type frame struct {
	code *compiler.Bytecode
	ip   int

	stackbase  int // values[stackbase:] are this frame's locals, args first
	calleeBase int // index of the function value itself, values[calleeBase]

	asp       int // array-data stack height when this frame was entered
	relocated int // array-data slots already relocated to asp+relocated (§4.3.6)

	envIndex int // this frame's own environment index (code.EnvIndex)

	// savedDisplay is the machine's display entry for envIndex before this
	// frame overwrote it, restored on return so recursive calls resolve
	// non-local variables to the right activation (§4.4.1, §9).
	savedDisplay *frame
}

// u8 reads the byte at ip and advances it.
func (f *frame) u8() byte {
	b := f.code.Code[f.ip]
	f.ip++
	return b
}

// u16 reads a big-endian uint16 at ip (matching Bytecode.EmitLong's
// encoding) and advances ip past it.
func (f *frame) u16() uint16 {
	hi := f.u8()
	lo := f.u8()
	return uint16(hi)<<8 | uint16(lo)
}
