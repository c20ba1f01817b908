// Package serialize implements the two-section textual bytecode format
// described in §6.3: a line of space-separated `byte(line:col)` tokens
// followed by one line per constant, typed by a leading kind id, with a
// `-1` line terminating each nested function body (including the
// top-level one).
//
// Unlike the reference implementation, which recomputes the constant
// section by re-walking the code stream for every `LOC*_LONG` occurrence
// (duplicating an entry each time a deduplicated address is referenced
// again), this package serializes compiler.Bytecode's own `Constants`
// pool directly, once per entry in address order: compiler.Bytecode
// already deduplicates its integer and string constants (vector-size and
// function constants get one entry each), so walking it directly is
// both simpler and still round-trips exactly, satisfying §8's
// `deserialize(serialize(b)) == b` property without the reference
// implementation's incidental duplication.
package serialize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/yala/lang/compiler"
)

const endFunctionDelim = -1

// constant kind ids, matching original_source/semantics/semantics.h's
// enum value_type (and lang/types.Kind's identical ordering).
const (
	kindInteger  = 0
	kindString   = 2
	kindVector   = 3
	kindFunction = 4
)

// Encode renders b and every nested function constant it transitively
// references as the §6.3 textual format.
func Encode(b *compiler.Bytecode) string {
	var sb strings.Builder
	encodeInto(&sb, b)
	return sb.String()
}

func encodeInto(sb *strings.Builder, b *compiler.Bytecode) {
	encodeCode(sb, b)
	encodeConstants(sb, b)
	fmt.Fprintf(sb, "%d\n", endFunctionDelim)
}

func encodeCode(sb *strings.Builder, b *compiler.Bytecode) {
	for ip, by := range b.Code {
		if ip > 0 {
			sb.WriteByte(' ')
		}
		li := b.Lines[ip]
		fmt.Fprintf(sb, "%d(%d:%d)", by, li.Line, li.Col)
	}
	sb.WriteByte('\n')
}

func encodeConstants(sb *strings.Builder, b *compiler.Bytecode) {
	for _, c := range b.Constants {
		switch v := c.(type) {
		case int64:
			fmt.Fprintf(sb, "%d %d\n", kindInteger, v)
		case string:
			fmt.Fprintf(sb, "%d %s", kindString, v)
			sb.WriteByte(0)
			sb.WriteByte('\n')
		case compiler.VectorSize:
			fmt.Fprintf(sb, "%d %d\n", kindVector, int(v))
		case *compiler.Bytecode:
			fmt.Fprintf(sb, "%d ", kindFunction)
			encodeInto(sb, v)
		default:
			panic(fmt.Sprintf("serialize: unknown constant type %T", c))
		}
	}
}

// decoder walks a serialized byte slice, tracking the lexical nesting
// depth so nested function constants recover the same EnvIndex the
// compiler originally assigned them (root 0, each nested function one
// deeper), since that bookkeeping field is not itself part of the wire
// format.
type decoder struct {
	data  []byte
	pos   int
	depth int
}

// Decode parses the §6.3 textual format produced by Encode, reconstructing
// the Bytecode tree. Bytecode.Name is not part of the wire format and is
// set to a placeholder for every decoded function.
func Decode(text string) (*compiler.Bytecode, error) {
	d := &decoder{data: []byte(text)}
	return d.bytecode()
}

func (d *decoder) bytecode() (*compiler.Bytecode, error) {
	name := "<deserialized>"
	if d.depth == 0 {
		name = "<program>"
	}
	b := compiler.NewBytecode(name, d.depth)

	if err := d.code(b); err != nil {
		return nil, err
	}
	if err := d.constants(b); err != nil {
		return nil, err
	}
	return b, nil
}

func (d *decoder) code(b *compiler.Bytecode) error {
	for {
		d.skipSpaces()
		if d.peekIsDigitOrMinus() {
			n, err := d.readInt()
			if err != nil {
				return err
			}
			if err := d.expect('('); err != nil {
				return err
			}
			line, err := d.readInt()
			if err != nil {
				return err
			}
			if err := d.expect(':'); err != nil {
				return err
			}
			col, err := d.readInt()
			if err != nil {
				return err
			}
			if err := d.expect(')'); err != nil {
				return err
			}
			b.Code = append(b.Code, byte(n))
			b.Lines = append(b.Lines, compiler.LineInfo{Line: line, Col: col})
			continue
		}
		break
	}
	return d.expect('\n')
}

func (d *decoder) constants(b *compiler.Bytecode) error {
	for {
		kind, err := d.readInt()
		if err != nil {
			return err
		}
		if kind == endFunctionDelim {
			return nil
		}
		// Encode always writes exactly one space between the kind and the
		// value; a greedy skipSpaces here would also consume a string
		// constant's own leading spaces or tabs, so consume only that one
		// separator byte.
		if err := d.expect(' '); err != nil {
			return err
		}
		switch kind {
		case kindInteger:
			n, err := d.readInt()
			if err != nil {
				return err
			}
			b.Constants = append(b.Constants, int64(n))
		case kindString:
			s, err := d.readNulTerminated()
			if err != nil {
				return err
			}
			b.Constants = append(b.Constants, s)
		case kindVector:
			n, err := d.readInt()
			if err != nil {
				return err
			}
			b.Constants = append(b.Constants, compiler.VectorSize(n))
		case kindFunction:
			d.depth++
			fn, err := d.bytecode()
			d.depth--
			if err != nil {
				return err
			}
			b.Constants = append(b.Constants, fn)
			continue // nested bytecode already consumed its own trailing newline
		default:
			return fmt.Errorf("serialize: unknown constant kind %d", kind)
		}
		if err := d.expect('\n'); err != nil {
			return err
		}
	}
}

func (d *decoder) skipSpaces() {
	for d.pos < len(d.data) && (d.data[d.pos] == ' ' || d.data[d.pos] == '\t') {
		d.pos++
	}
}

func (d *decoder) peekIsDigitOrMinus() bool {
	if d.pos >= len(d.data) {
		return false
	}
	c := d.data[d.pos]
	return (c >= '0' && c <= '9') || c == '-'
}

func (d *decoder) readInt() (int, error) {
	start := d.pos
	if d.pos < len(d.data) && d.data[d.pos] == '-' {
		d.pos++
	}
	for d.pos < len(d.data) && d.data[d.pos] >= '0' && d.data[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start {
		return 0, fmt.Errorf("serialize: expected integer at offset %d", start)
	}
	return strconv.Atoi(string(d.data[start:d.pos]))
}

func (d *decoder) expect(c byte) error {
	if d.pos >= len(d.data) || d.data[d.pos] != c {
		return fmt.Errorf("serialize: expected %q at offset %d", c, d.pos)
	}
	d.pos++
	return nil
}

func (d *decoder) readNulTerminated() (string, error) {
	start := d.pos
	for d.pos < len(d.data) && d.data[d.pos] != 0 {
		d.pos++
	}
	if d.pos >= len(d.data) {
		return "", fmt.Errorf("serialize: unterminated string constant")
	}
	s := string(d.data[start:d.pos])
	d.pos++ // skip NUL
	return s, nil
}
