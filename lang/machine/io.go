package machine

import (
	"io"
	"strconv"
	"strings"

	"github.com/mna/yala/lang/token"
	"github.com/mna/yala/lang/types"
)

// doWrite implements WRITE<k> (§4.3.2, §4.4.1): prints the k (value, type
// id, base id) triples currently on top of the value stack, left to right
// (the triple for the first WRITE argument is deepest in the stack), then
// drops all 3*k value-stack entries and any array-data elements an
// ephemeral vector-argument copy (§4.3.3's full-copy rule) contributed.
func (m *Machine) doWrite(cur *frame, pos token.Pos) error {
	k := int(cur.u16())
	base := len(m.values) - 3*k
	if base < 0 {
		return runtimeErrorf(pos, "internal error: WRITE stack underflow")
	}

	var sb strings.Builder
	vecElems := 0
	for i := 0; i < k; i++ {
		v := m.values[base+3*i]
		id := types.Kind(m.values[base+3*i+1].(types.IntValue))
		elemKind := types.Kind(m.values[base+3*i+2].(types.IntValue))
		m.formatValue(&sb, v, id, elemKind)
		if id == types.Vector {
			vecElems += v.(types.VectorValue).Length
		}
	}
	io.WriteString(m.Stdout, sb.String())

	m.values = m.values[:base]
	m.arrayData = m.arrayData[:len(m.arrayData)-vecElems]
	return nil
}

// formatValue renders v (declared kind id, and for vectors the leaf
// element kind) the way WRITE prints it: integers and booleans in their
// canonical text form, strings raw, vectors as their flattened elements
// bracketed and comma-separated (the wire format carries no rank, so a
// multi-dimensional vector prints as one flat list).
func (m *Machine) formatValue(sb *strings.Builder, v types.Value, id, elemKind types.Kind) {
	switch id {
	case types.Vector:
		vec := v.(types.VectorValue)
		sb.WriteByte('[')
		for i := 0; i < vec.Length; i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			m.formatValue(sb, m.arrayData[vec.Ptr+i], elemKind, elemKind)
		}
		sb.WriteByte(']')
	case types.Function:
		sb.WriteString("function")
	default:
		sb.WriteString(v.String())
	}
}

// doRead implements READ<type> (§4.3.2): reads one newline-terminated line
// from stdin and parses it per the target's scalar type (vectors are
// rejected at compile time, see compileRead).
func (m *Machine) doRead(cur *frame, pos token.Pos) error {
	kind := types.Kind(cur.u8())
	line, err := m.stdin.ReadString('\n')
	if err != nil && line == "" {
		return runtimeErrorf(pos, "read: %s", err)
	}
	line = strings.TrimRight(line, "\r\n")

	var v types.Value
	switch kind {
	case types.Integer:
		v = types.IntValue(atoi(line))
	case types.Boolean:
		v = types.BoolValue(line == "true")
	case types.String:
		v = types.NewString([]byte(line))
	default:
		return runtimeErrorf(pos, "internal error: READ of unsupported type %s", kind)
	}
	return m.push(pos, v)
}

// atoi parses a leading run of an optional sign and digits, C-atoi style:
// malformed or empty input yields 0 rather than an error, since the
// language has no input-validation construct of its own.
func atoi(s string) int64 {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, _ := strconv.ParseInt(s[:end], 10, 64)
	return n
}
