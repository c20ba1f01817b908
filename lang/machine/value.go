package machine

import (
	"fmt"

	"github.com/mna/yala/lang/compiler"
	"github.com/mna/yala/lang/types"
)

// FunctionValue is the runtime function descriptor (§3.1): a reference to
// the nested Bytecode compiled for it. Its defining environment's index is
// not stored separately: it is Code.EnvIndex, the index the compiler
// assigned the function's own child environment when it created the
// function's Bytecode (§4.3.5 steps 2-3), which is exactly the value the
// closure lookup rule needs (§4.4.1, §9).
type FunctionValue struct {
	Code *compiler.Bytecode
}

var _ types.Value = FunctionValue{}

func (f FunctionValue) Kind() types.Kind { return types.Function }
func (f FunctionValue) String() string   { return fmt.Sprintf("function %s", f.Code.Name) }

// EnvIndex is the environment index the closure lookup rule addresses the
// machine's display with for a non-local variable access through this
// function (§4.4.1).
func (f FunctionValue) EnvIndex() int { return f.Code.EnvIndex }
