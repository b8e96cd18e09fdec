package compiler

// ---------------------------------------------------------------------------
// Precedence table
// ---------------------------------------------------------------------------

// Precedence is the binding strength of an operator, lowest to highest.
// Infix parsing recurses at one level above its own precedence, which is
// what makes same-precedence binary operators left-associative.
type Precedence uint8

const (
	PrecNone Precedence = iota
	PrecAssignment // =
	PrecOr         // or
	PrecAnd        // and
	PrecEquality   // == !=
	PrecComparison // < > <= >=
	PrecTerm       // + -
	PrecFactor     // * /
	PrecUnary      // ! -
	PrecCall       // . ()
	PrecPrimary
)

// parseFn is a prefix or infix action. canAssign is carried from the top of
// the current parse attempt so assignment validity is checked exactly once.
type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules maps every token type to its parse actions. Entries left zero have
// no role in expressions. Populated in init to avoid an initialization
// cycle with the method values.
var rules [numTokenTypes]parseRule

func init() {
	rules[TokenLeftParen] = parseRule{prefix: (*Compiler).grouping}
	rules[TokenMinus] = parseRule{prefix: (*Compiler).unary, infix: (*Compiler).binary, precedence: PrecTerm}
	rules[TokenPlus] = parseRule{infix: (*Compiler).binary, precedence: PrecTerm}
	rules[TokenSlash] = parseRule{infix: (*Compiler).binary, precedence: PrecFactor}
	rules[TokenStar] = parseRule{infix: (*Compiler).binary, precedence: PrecFactor}
	rules[TokenBang] = parseRule{prefix: (*Compiler).unary}
	rules[TokenBangEqual] = parseRule{infix: (*Compiler).binary, precedence: PrecEquality}
	rules[TokenEqualEqual] = parseRule{infix: (*Compiler).binary, precedence: PrecEquality}
	rules[TokenGreater] = parseRule{infix: (*Compiler).binary, precedence: PrecComparison}
	rules[TokenGreaterEqual] = parseRule{infix: (*Compiler).binary, precedence: PrecComparison}
	rules[TokenLess] = parseRule{infix: (*Compiler).binary, precedence: PrecComparison}
	rules[TokenLessEqual] = parseRule{infix: (*Compiler).binary, precedence: PrecComparison}
	rules[TokenIdentifier] = parseRule{prefix: (*Compiler).variable}
	rules[TokenString] = parseRule{prefix: (*Compiler).stringLiteral}
	rules[TokenNumber] = parseRule{prefix: (*Compiler).number}
	rules[TokenFalse] = parseRule{prefix: (*Compiler).literal}
	rules[TokenNil] = parseRule{prefix: (*Compiler).literal}
	rules[TokenTrue] = parseRule{prefix: (*Compiler).literal}
}

func getRule(t TokenType) *parseRule {
	return &rules[t]
}
