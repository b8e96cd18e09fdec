// Package vm executes a compiled chunk against an operand stack and a flat
// global-variable table. One VM instance lives for exactly one run: it
// borrows the chunk read-only and exclusively owns its globals.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/chazu/fern/pkg/bytecode"
	"github.com/chazu/fern/pkg/value"
)

// StackMax is the operand stack's hard depth limit. Exceeding it aborts the
// run with a StackOverflowError instead of growing without bound.
const StackMax = 256

// Options configures a VM at construction. The core never consults ambient
// state; everything it needs arrives here.
type Options struct {
	// TraceExecution dumps the stack and the next instruction to TraceWriter
	// before every step. A pure side channel with no effect on results.
	TraceExecution bool

	// Stdout receives the output of Print instructions. Defaults to
	// os.Stdout.
	Stdout io.Writer

	// TraceWriter receives execution traces. Defaults to os.Stderr.
	TraceWriter io.Writer
}

// VM is the stack machine.
type VM struct {
	chunk   *bytecode.Chunk
	heap    *value.Heap
	ip      int
	stack   []value.Value
	globals map[string]value.Value
	opts    Options
}

// New prepares a VM for one run of chunk. The heap must be the one the
// chunk's string constants were allocated in.
func New(chunk *bytecode.Chunk, heap *value.Heap, opts Options) *VM {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.TraceWriter == nil {
		opts.TraceWriter = os.Stderr
	}
	return &VM{
		chunk:   chunk,
		heap:    heap,
		stack:   make([]value.Value, 0, StackMax),
		globals: make(map[string]value.Value),
		opts:    opts,
	}
}

// Global looks up a variable in the global table. Mostly useful to inspect
// the outcome of a run.
func (vm *VM) Global(name string) (value.Value, bool) {
	v, ok := vm.globals[name]
	return v, ok
}

// Result returns the value left on top of the stack, if any. Statements are
// stack-neutral, so after a program this is empty; after an
// expression-entry chunk it holds the expression's value.
func (vm *VM) Result() (value.Value, bool) {
	if len(vm.stack) == 0 {
		return value.Value{}, false
	}
	return vm.stack[len(vm.stack)-1], true
}

// Run executes the chunk from the beginning. The first fault aborts the
// whole run; there is no in-language recovery.
func (vm *VM) Run() error {
	for {
		if vm.opts.TraceExecution {
			vm.trace()
		}

		at := vm.ip
		if at >= len(vm.chunk.Code) {
			return fmt.Errorf("instruction pointer %d past end of chunk", at)
		}
		vm.ip++

		op, err := bytecode.Decode(vm.chunk.Code[at], at)
		if err != nil {
			// Chunk corruption, not a language-level error.
			return vm.fault(at, err)
		}

		switch op {
		case bytecode.OpReturn:
			return nil

		case bytecode.OpConstant:
			index, err := vm.readOperand(at)
			if err != nil {
				return err
			}
			if err := vm.push(at, vm.chunk.ConstantAt(index)); err != nil {
				return err
			}

		case bytecode.OpNil:
			if err := vm.push(at, value.Nil()); err != nil {
				return err
			}
		case bytecode.OpTrue:
			if err := vm.push(at, value.Bool(true)); err != nil {
				return err
			}
		case bytecode.OpFalse:
			if err := vm.push(at, value.Bool(false)); err != nil {
				return err
			}

		case bytecode.OpNegate:
			a, err := vm.pop(at)
			if err != nil {
				return err
			}
			res, verr := value.Negate(a)
			if verr != nil {
				return vm.fault(at, verr)
			}
			if err := vm.push(at, res); err != nil {
				return err
			}

		case bytecode.OpNot:
			a, err := vm.pop(at)
			if err != nil {
				return err
			}
			if err := vm.push(at, value.Not(a)); err != nil {
				return err
			}

		case bytecode.OpAdd:
			if err := vm.binary(at, func(a, b value.Value) (value.Value, error) {
				return value.Add(vm.heap, a, b)
			}); err != nil {
				return err
			}
		case bytecode.OpSubtract:
			if err := vm.binary(at, value.Subtract); err != nil {
				return err
			}
		case bytecode.OpMultiply:
			if err := vm.binary(at, value.Multiply); err != nil {
				return err
			}
		case bytecode.OpDivide:
			if err := vm.binary(at, value.Divide); err != nil {
				return err
			}
		case bytecode.OpGreater:
			if err := vm.binary(at, value.Greater); err != nil {
				return err
			}
		case bytecode.OpLess:
			if err := vm.binary(at, value.Less); err != nil {
				return err
			}

		case bytecode.OpEqual:
			b, err := vm.pop(at)
			if err != nil {
				return err
			}
			a, err := vm.pop(at)
			if err != nil {
				return err
			}
			if err := vm.push(at, value.Bool(value.Equal(vm.heap, a, b))); err != nil {
				return err
			}

		case bytecode.OpPrint:
			a, err := vm.pop(at)
			if err != nil {
				return err
			}
			fmt.Fprintln(vm.opts.Stdout, value.Display(vm.heap, a))

		case bytecode.OpPop:
			if _, err := vm.pop(at); err != nil {
				return err
			}

		case bytecode.OpDefineGlobal:
			name, err := vm.readGlobalName(at)
			if err != nil {
				return err
			}
			a, err := vm.pop(at)
			if err != nil {
				return err
			}
			// Redefinition just overwrites.
			vm.globals[name] = a

		case bytecode.OpGetGlobal:
			name, err := vm.readGlobalName(at)
			if err != nil {
				return err
			}
			v, ok := vm.globals[name]
			if !ok {
				return vm.fault(at, &UndefinedVariableError{Name: name})
			}
			if err := vm.push(at, v); err != nil {
				return err
			}

		case bytecode.OpSetGlobal:
			name, err := vm.readGlobalName(at)
			if err != nil {
				return err
			}
			if _, ok := vm.globals[name]; !ok {
				// Stricter than DefineGlobal: assignment never creates.
				return vm.fault(at, &UndefinedVariableError{Name: name})
			}
			// Assignment is an expression; the value stays on the stack.
			top, err := vm.peek(at)
			if err != nil {
				return err
			}
			vm.globals[name] = top
		}
	}
}

// ---------------------------------------------------------------------------
// Stack and operand helpers
// ---------------------------------------------------------------------------

func (vm *VM) push(at int, v value.Value) error {
	if len(vm.stack) >= StackMax {
		return vm.fault(at, &StackOverflowError{})
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop(at int) (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, vm.fault(at, fmt.Errorf("operand stack underflow"))
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek(at int) (value.Value, error) {
	if len(vm.stack) == 0 {
		return value.Value{}, vm.fault(at, fmt.Errorf("operand stack underflow"))
	}
	return vm.stack[len(vm.stack)-1], nil
}

// binary pops the right operand first, then the left, preserving operand
// order for the operation.
func (vm *VM) binary(at int, op func(a, b value.Value) (value.Value, error)) error {
	b, err := vm.pop(at)
	if err != nil {
		return err
	}
	a, err := vm.pop(at)
	if err != nil {
		return err
	}
	res, verr := op(a, b)
	if verr != nil {
		return vm.fault(at, verr)
	}
	return vm.push(at, res)
}

// readOperand fetches the one-byte operand following the instruction at at.
func (vm *VM) readOperand(at int) (byte, error) {
	if vm.ip >= len(vm.chunk.Code) {
		return 0, vm.fault(at, fmt.Errorf("truncated instruction"))
	}
	b := vm.chunk.Code[vm.ip]
	vm.ip++
	if int(b) >= len(vm.chunk.Constants) {
		return 0, vm.fault(at, fmt.Errorf("constant index %d outside pool", b))
	}
	return b, nil
}

// readGlobalName resolves the instruction's operand to the variable name it
// indexes in the constant pool.
func (vm *VM) readGlobalName(at int) (string, error) {
	index, err := vm.readOperand(at)
	if err != nil {
		return "", err
	}
	name, ok := vm.heap.StringValue(vm.chunk.ConstantAt(index))
	if !ok {
		return "", vm.fault(at, fmt.Errorf("global name constant %d is not a string", index))
	}
	return name, nil
}

func (vm *VM) fault(at int, err error) error {
	line := 0
	if at < len(vm.chunk.Lines) {
		line = vm.chunk.Lines[at]
	}
	return &RuntimeError{Line: line, Err: err}
}

// trace writes the current stack and the instruction about to execute.
func (vm *VM) trace() {
	w := vm.opts.TraceWriter
	fmt.Fprint(w, "          ")
	for _, v := range vm.stack {
		fmt.Fprintf(w, "[ %s ]", value.Display(vm.heap, v))
	}
	fmt.Fprintln(w)
	if vm.ip < len(vm.chunk.Code) {
		line, _ := vm.chunk.DisassembleInstruction(vm.heap, vm.ip)
		fmt.Fprintln(w, line)
	}
}
