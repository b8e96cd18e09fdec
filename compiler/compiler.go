package compiler

import (
	"fmt"
	"strconv"

	"github.com/chazu/fern/pkg/bytecode"
	"github.com/chazu/fern/pkg/value"
)

// maxNestingDepth bounds parser recursion so pathological input fails with
// a diagnostic instead of exhausting the native call stack.
const maxNestingDepth = 64

// CompileError is a single compile-time diagnostic in the canonical
// '[line N] Error at ...' shape.
type CompileError struct {
	Line    int
	Lexeme  string
	AtEOF   bool
	Message string
}

func (e *CompileError) Error() string {
	if e.AtEOF {
		return fmt.Sprintf("[line %d] Error at end: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", e.Line, e.Lexeme, e.Message)
}

// Compiler drives the scanner and emits bytecode into a chunk. One instance
// performs exactly one source-to-chunk translation.
type Compiler struct {
	scanner *Scanner
	heap    *value.Heap
	chunk   *bytecode.Chunk

	// Parser state: two tokens of lookahead plus the error flags.
	previous  Token
	current   Token
	hadError  bool
	panicMode bool

	errors []*CompileError
	depth  int // expression nesting, bounded by maxNestingDepth
}

// Compile translates a whole program (a sequence of declarations) into a
// chunk. String constants are allocated in heap. On any error the chunk is
// discarded and the collected diagnostics are returned instead; success and
// failure are mutually exclusive.
func Compile(source string, heap *value.Heap) (*bytecode.Chunk, []*CompileError) {
	c := newCompiler(source, heap)
	c.advance()
	for !c.match(TokenEOF) {
		c.declaration()
	}
	return c.finish()
}

// CompileExpression translates a single bare expression, leaving its value
// as the stack top when the emitted Return executes. This is the REPL entry
// point.
func CompileExpression(source string, heap *value.Heap) (*bytecode.Chunk, []*CompileError) {
	c := newCompiler(source, heap)
	c.advance()
	c.expression()
	c.consume(TokenEOF, "expected end of expression")
	return c.finish()
}

func newCompiler(source string, heap *value.Heap) *Compiler {
	return &Compiler{
		scanner: NewScanner(source),
		heap:    heap,
		chunk:   bytecode.NewChunk(),
	}
}

func (c *Compiler) finish() (*bytecode.Chunk, []*CompileError) {
	c.emitOp(bytecode.OpReturn)
	if c.hadError {
		return nil, c.errors
	}
	return c.chunk, nil
}

// ---------------------------------------------------------------------------
// Token plumbing and error recovery
// ---------------------------------------------------------------------------

// advance shifts the lookahead window by one token. Lexical errors are
// reported here and scanning continues, so the parser only ever sees valid
// tokens.
func (c *Compiler) advance() {
	c.previous = c.current
	for {
		tok, err := c.scanner.ScanToken()
		if err != nil {
			se := err.(*ScanError)
			c.errorAt(Token{Type: TokenIdentifier, Lexeme: se.Lexeme, Line: se.Line}, se.Message)
			continue
		}
		c.current = tok
		return
	}
}

func (c *Compiler) consume(t TokenType, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(t TokenType) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t TokenType) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.current, message)
}

func (c *Compiler) error(message string) {
	c.errorAt(c.previous, message)
}

// errorAt records a diagnostic for the offending token. While panic mode is
// set, cascading diagnostics from the same fault are swallowed.
func (c *Compiler) errorAt(tok Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errors = append(c.errors, &CompileError{
		Line:    tok.Line,
		Lexeme:  tok.Lexeme,
		AtEOF:   tok.Type == TokenEOF,
		Message: message,
	})
}

// synchronize discards tokens until a statement boundary: just past a
// semicolon, or in front of a token that can begin a declaration. Restores
// the compiler's ability to report independent subsequent errors.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Type != TokenEOF {
		if c.previous.Type == TokenSemicolon {
			return
		}
		switch c.current.Type {
		case TokenClass, TokenFun, TokenVar, TokenFor, TokenIf, TokenWhile, TokenPrint, TokenReturn:
			return
		}
		c.advance()
	}
}

// ---------------------------------------------------------------------------
// Grammar: declarations and statements
// ---------------------------------------------------------------------------

func (c *Compiler) declaration() {
	if c.match(TokenVar) {
		c.varDeclaration()
	} else {
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

// varDeclaration compiles 'var IDENT (= expr)? ;'. Without an initializer
// the variable starts as nil.
func (c *Compiler) varDeclaration() {
	c.consume(TokenIdentifier, "expected variable name")
	global := c.identifierConstant(c.previous)

	if c.match(TokenEqual) {
		c.expression()
	} else {
		c.emitOp(bytecode.OpNil)
	}
	c.consume(TokenSemicolon, "expected ';' after variable declaration")
	c.emitBytes(byte(bytecode.OpDefineGlobal), global)
}

// Every statement leaves the operand stack at the depth it found it; the
// VM's correctness depends on that.
func (c *Compiler) statement() {
	if c.match(TokenPrint) {
		c.printStatement()
	} else {
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(TokenSemicolon, "expected ';' after value")
	c.emitOp(bytecode.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(TokenSemicolon, "expected ';' after expression")
	c.emitOp(bytecode.OpPop)
}

// ---------------------------------------------------------------------------
// Grammar: expressions (Pratt)
// ---------------------------------------------------------------------------

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

// parsePrecedence parses everything at the given precedence or tighter: the
// prefix action for the next token, then every infix whose binding strength
// is at least prec.
func (c *Compiler) parsePrecedence(prec Precedence) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxNestingDepth {
		c.error("expression too deeply nested")
		return
	}

	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == nil {
		c.error("expected expression")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		getRule(c.previous.Type).infix(c, canAssign)
	}

	// A leftover '=' here means the target was not assignable.
	if canAssign && c.match(TokenEqual) {
		c.error("invalid assignment target")
	}
}

func (c *Compiler) grouping(canAssign bool) {
	c.expression()
	c.consume(TokenRightParen, "expected ')' after expression")
}

func (c *Compiler) number(canAssign bool) {
	n, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("invalid number literal")
		return
	}
	c.emitConstant(value.Number(n))
}

func (c *Compiler) stringLiteral(canAssign bool) {
	// Trim the surrounding quotes.
	lexeme := c.previous.Lexeme
	c.emitConstant(c.heap.AllocString(lexeme[1 : len(lexeme)-1]))
}

func (c *Compiler) literal(canAssign bool) {
	switch c.previous.Type {
	case TokenNil:
		c.emitOp(bytecode.OpNil)
	case TokenTrue:
		c.emitOp(bytecode.OpTrue)
	case TokenFalse:
		c.emitOp(bytecode.OpFalse)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.previous, canAssign)
}

// namedVariable compiles a read of a global, or an assignment when the
// reference is a valid target and an '=' follows.
func (c *Compiler) namedVariable(name Token, canAssign bool) {
	arg := c.identifierConstant(name)
	if canAssign && c.match(TokenEqual) {
		c.expression()
		c.emitBytes(byte(bytecode.OpSetGlobal), arg)
	} else {
		c.emitBytes(byte(bytecode.OpGetGlobal), arg)
	}
}

func (c *Compiler) unary(canAssign bool) {
	operator := c.previous.Type

	// Compile the operand first; the instruction applies to its result.
	c.parsePrecedence(PrecUnary)

	switch operator {
	case TokenMinus:
		c.emitOp(bytecode.OpNegate)
	case TokenBang:
		c.emitOp(bytecode.OpNot)
	}
}

func (c *Compiler) binary(canAssign bool) {
	operator := c.previous.Type
	rule := getRule(operator)

	// One level tighter forces left-associativity.
	c.parsePrecedence(rule.precedence + 1)

	switch operator {
	case TokenPlus:
		c.emitOp(bytecode.OpAdd)
	case TokenMinus:
		c.emitOp(bytecode.OpSubtract)
	case TokenStar:
		c.emitOp(bytecode.OpMultiply)
	case TokenSlash:
		c.emitOp(bytecode.OpDivide)
	case TokenEqualEqual:
		c.emitOp(bytecode.OpEqual)
	case TokenBangEqual:
		c.emitOp(bytecode.OpEqual)
		c.emitOp(bytecode.OpNot)
	case TokenGreater:
		c.emitOp(bytecode.OpGreater)
	case TokenGreaterEqual:
		c.emitOp(bytecode.OpLess)
		c.emitOp(bytecode.OpNot)
	case TokenLess:
		c.emitOp(bytecode.OpLess)
	case TokenLessEqual:
		c.emitOp(bytecode.OpGreater)
		c.emitOp(bytecode.OpNot)
	}
}

// ---------------------------------------------------------------------------
// Emission
// ---------------------------------------------------------------------------

// Every emitted byte is paired with the line of the token that produced it.
func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.previous.Line)
}

func (c *Compiler) emitBytes(b1, b2 byte) {
	c.emitByte(b1)
	c.emitByte(b2)
}

func (c *Compiler) emitOp(op bytecode.Opcode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(byte(bytecode.OpConstant), c.makeConstant(v))
}

// makeConstant adds v to the pool; overflowing the one-byte index space is
// a compile error on the current token.
func (c *Compiler) makeConstant(v value.Value) byte {
	index, err := c.chunk.AddConstant(v)
	if err != nil {
		c.error("too many constants in one chunk")
		return 0
	}
	return index
}

// identifierConstant stores the identifier's name string in the constant
// pool and returns its index.
func (c *Compiler) identifierConstant(name Token) byte {
	return c.makeConstant(c.heap.AllocString(name.Lexeme))
}
