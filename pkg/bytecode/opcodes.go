package bytecode

import "fmt"

// Opcode is a single-byte bytecode instruction tag.
// The numeric values are part of the chunk wire format; never renumber an
// existing opcode, only append.
type Opcode byte

const (
	// ========================================================================
	// Control (0x00)
	// ========================================================================

	OpReturn Opcode = 0x00 // End the run

	// ========================================================================
	// Constants and arithmetic (0x01-0x06)
	// ========================================================================

	OpConstant Opcode = 0x01 // Push constant: OpConstant <index:u8>
	OpNegate   Opcode = 0x02 // Negate top of stack
	OpAdd      Opcode = 0x03 // Pop two, push sum (or concatenation)
	OpSubtract Opcode = 0x04 // Pop two, push difference
	OpMultiply Opcode = 0x05 // Pop two, push product
	OpDivide   Opcode = 0x06 // Pop two, push quotient

	// ========================================================================
	// Literals (0x07-0x09)
	// ========================================================================

	OpNil   Opcode = 0x07 // Push nil
	OpTrue  Opcode = 0x08 // Push true
	OpFalse Opcode = 0x09 // Push false

	// ========================================================================
	// Logic and comparison (0x0A-0x0D)
	// ========================================================================

	OpNot     Opcode = 0x0A // Pop, push truthiness negation
	OpEqual   Opcode = 0x0B // Pop two, push equality
	OpGreater Opcode = 0x0C // Pop two, push a > b
	OpLess    Opcode = 0x0D // Pop two, push a < b

	// ========================================================================
	// Statements (0x0E-0x0F)
	// ========================================================================

	OpPrint Opcode = 0x0E // Pop and print display form plus newline
	OpPop   Opcode = 0x0F // Discard top of stack

	// ========================================================================
	// Globals (0x10-0x12); operand indexes the variable name constant
	// ========================================================================

	OpDefineGlobal Opcode = 0x10 // Bind name to top of stack, then pop
	OpGetGlobal    Opcode = 0x11 // Push the named global
	OpSetGlobal    Opcode = 0x12 // Overwrite the named global; value stays on stack
)

const numOpcodes = 0x13

var opcodeNames = [numOpcodes]string{
	OpReturn:       "OP_RETURN",
	OpConstant:     "OP_CONSTANT",
	OpNegate:       "OP_NEGATE",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpNot:          "OP_NOT",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpPrint:        "OP_PRINT",
	OpPop:          "OP_POP",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
}

// String returns the disassembly name for the opcode.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(op))
}

// OperandWidth returns the number of operand bytes following the opcode.
func (op Opcode) OperandWidth() int {
	switch op {
	case OpConstant, OpDefineGlobal, OpGetGlobal, OpSetGlobal:
		return 1
	default:
		return 0
	}
}

// UnknownOpcodeError reports a byte that does not decode to any opcode.
// Hitting one at runtime means the chunk is corrupt; it is an invariant
// violation, not a user-facing language error.
type UnknownOpcodeError struct {
	Byte   byte
	Offset int
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%02X at offset %d", e.Byte, e.Offset)
}

// Decode maps a fetched byte to its opcode, failing on any byte outside the
// defined set.
func Decode(b byte, offset int) (Opcode, error) {
	if int(b) < numOpcodes && opcodeNames[b] != "" {
		return Opcode(b), nil
	}
	return 0, &UnknownOpcodeError{Byte: b, Offset: offset}
}
