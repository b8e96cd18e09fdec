package value

import "fmt"

// ArithmeticError reports an arithmetic operator applied to operands
// outside its domain.
type ArithmeticError struct {
	Op string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("cannot perform '%s' on non-numeric values", e.Op)
}

// NegationError reports unary '-' applied to a non-number.
type NegationError struct{}

func (e *NegationError) Error() string {
	return "operand must be a number"
}

// ComparisonError reports an ordering operator applied to non-numbers.
type ComparisonError struct {
	Op string
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("operands to '%s' must be numbers", e.Op)
}
