// Package bytecode defines the compiled representation of a Fern program:
// the opcode set with its stable byte encoding, the Chunk (code stream,
// constant pool, per-byte line table), a textual disassembler for
// debugging, and the FNBC wire format for saving compiled chunks.
package bytecode
