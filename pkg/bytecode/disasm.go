package bytecode

import (
	"fmt"
	"strings"

	"github.com/chazu/fern/pkg/value"
)

// Disassemble returns a human-readable listing of the whole chunk under a
// '== name ==' header. Purely diagnostic; nothing parses it back.
func (c *Chunk) Disassemble(heap *value.Heap, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)

	offset := 0
	for offset < len(c.Code) {
		line, next := c.DisassembleInstruction(heap, offset)
		sb.WriteString(line)
		sb.WriteByte('\n')
		offset = next
	}
	return sb.String()
}

// DisassembleInstruction renders the single instruction at offset and
// returns the offset of the next one. The line column shows "   |" when the
// instruction shares its source line with the previous byte.
func (c *Chunk) DisassembleInstruction(heap *value.Heap, offset int) (string, int) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d ", offset)

	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(&sb, "%4d ", c.Lines[offset])
	}

	op, err := Decode(c.Code[offset], offset)
	if err != nil {
		fmt.Fprintf(&sb, "unknown opcode 0x%02X", c.Code[offset])
		return sb.String(), offset + 1
	}

	switch op.OperandWidth() {
	case 1:
		if offset+1 >= len(c.Code) {
			fmt.Fprintf(&sb, "%-16s <truncated>", op)
			return sb.String(), len(c.Code)
		}
		index := c.Code[offset+1]
		if int(index) >= len(c.Constants) {
			fmt.Fprintf(&sb, "%-16s %4d <bad constant>", op, index)
			return sb.String(), offset + 2
		}
		fmt.Fprintf(&sb, "%-16s %4d '%s'", op, index, value.Display(heap, c.ConstantAt(index)))
		return sb.String(), offset + 2
	default:
		sb.WriteString(op.String())
		return sb.String(), offset + 1
	}
}
