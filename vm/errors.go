package vm

import "fmt"

// RuntimeError is any fault that aborted a run, tagged with the source line
// of the instruction that faulted.
type RuntimeError struct {
	Line int
	Err  error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("[line %d] runtime error: %v", e.Line, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// UndefinedVariableError reports access to, or assignment of, a name that
// was never defined.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: '%s'", e.Name)
}

// StackOverflowError reports that a push would exceed the operand stack's
// fixed maximum depth.
type StackOverflowError struct{}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("operand stack overflow (max depth %d)", StackMax)
}
