package bytecode

import (
	"fmt"

	"github.com/chazu/fern/pkg/value"
)

// MaxConstants is the size limit of a chunk's constant pool, fixed by the
// one-byte operand encoding of the constant-indexed instructions.
const MaxConstants = 256

// Chunk is a compiled unit: a bytecode stream, its constant pool, and a
// per-byte source-line table. A chunk is write-once during compilation and
// read-only during execution.
type Chunk struct {
	Code      []byte
	Constants []value.Value
	Lines     []int // one entry per byte of Code
}

// NewChunk returns an empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		Code:  make([]byte, 0, 64),
		Lines: make([]int, 0, 64),
	}
}

// Write appends one instruction byte paired with the source line of the
// token that produced it.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends a value to the constant pool and returns its index.
// The pool is append-only and capped at MaxConstants; a full pool is a
// compile-time failure, not a runtime surprise.
func (c *Chunk) AddConstant(v value.Value) (byte, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, fmt.Errorf("too many constants in one chunk")
	}
	c.Constants = append(c.Constants, v)
	return byte(len(c.Constants) - 1), nil
}

// ConstantAt returns the constant at the given pool index.
func (c *Chunk) ConstantAt(index byte) value.Value {
	return c.Constants[index]
}

// Validate checks the structural invariants a well-formed chunk must hold:
// the line table parallels the code, the constant pool fits the one-byte
// index space, every byte decodes to a defined opcode, and every operand
// stays inside the pool. Used on chunks read back from the wire.
func (c *Chunk) Validate() error {
	if len(c.Code) != len(c.Lines) {
		return fmt.Errorf("line table length %d does not match code length %d", len(c.Lines), len(c.Code))
	}
	if len(c.Constants) > MaxConstants {
		return fmt.Errorf("constant pool holds %d values, limit is %d", len(c.Constants), MaxConstants)
	}
	for offset := 0; offset < len(c.Code); {
		op, err := Decode(c.Code[offset], offset)
		if err != nil {
			return err
		}
		width := op.OperandWidth()
		if offset+1+width > len(c.Code) {
			return fmt.Errorf("truncated instruction %s at offset %d", op, offset)
		}
		if width == 1 {
			if index := c.Code[offset+1]; int(index) >= len(c.Constants) {
				return fmt.Errorf("%s at offset %d references constant %d outside pool of %d", op, offset, index, len(c.Constants))
			}
		}
		offset += 1 + width
	}
	return nil
}
