package machine

import (
	"fmt"

	"github.com/mna/yala/lang/token"
)

// RuntimeError is a single runtime failure (§4.4.2, §7): division by zero,
// an out-of-bounds vector index, a value/array-data/frame stack overflow,
// or dispatch on an unrecognized opcode, reported with the source position
// recovered from the faulting instruction's own line-info entry.
type RuntimeError struct {
	Pos token.Pos
	Msg string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

func runtimeErrorf(pos token.Pos, format string, args ...any) *RuntimeError {
	return &RuntimeError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
