// Package interp ties the pipeline together: one heap, one compile, one VM
// run per call. Each call is fully isolated; there is no shared mutable
// state between interpretations.
package interp

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/fern/compiler"
	"github.com/chazu/fern/pkg/bytecode"
	"github.com/chazu/fern/pkg/value"
	"github.com/chazu/fern/vm"
)

var log = commonlog.GetLogger("fern.interp")

// Options carries every piece of configuration the pipeline needs. All of
// it is resolved by the caller up front; nothing here is read from the
// environment.
type Options struct {
	// TraceExecution enables the VM's per-instruction trace side channel.
	TraceExecution bool

	// Disassemble dumps the compiled chunk to Stderr before running it.
	Disassemble bool

	// Stdout receives program output (the print statement). Defaults to
	// os.Stdout.
	Stdout io.Writer

	// Stderr receives compile diagnostics, disassembly, and traces.
	// Defaults to os.Stderr.
	Stderr io.Writer
}

func (o *Options) setDefaults() {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
}

// CompileFailedError reports that compilation recorded one or more
// diagnostics. The chunk never existed as far as the caller is concerned;
// nothing was executed.
type CompileFailedError struct {
	Diagnostics []*compiler.CompileError
}

func (e *CompileFailedError) Error() string {
	return fmt.Sprintf("compilation failed with %d error(s)", len(e.Diagnostics))
}

// Interpret compiles and runs a program. Compile diagnostics are written to
// Stderr, one line each, and reported as a *CompileFailedError without
// executing anything; otherwise the result is the VM run's outcome.
func Interpret(source string, opts Options) error {
	opts.setDefaults()

	heap := value.NewHeap()
	chunk, errs := compiler.Compile(source, heap)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(opts.Stderr, e)
		}
		return &CompileFailedError{Diagnostics: errs}
	}
	log.Debugf("compiled chunk: %d bytes, %d constants, %d heap objects",
		len(chunk.Code), len(chunk.Constants), heap.Len())

	return run(chunk, heap, opts)
}

// EvalExpression compiles and runs a single bare expression and returns its
// result's display form. This is the REPL path.
func EvalExpression(source string, opts Options) (string, error) {
	opts.setDefaults()

	heap := value.NewHeap()
	chunk, errs := compiler.CompileExpression(source, heap)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(opts.Stderr, e)
		}
		return "", &CompileFailedError{Diagnostics: errs}
	}

	m := vm.New(chunk, heap, vmOptions(opts))
	if opts.Disassemble {
		fmt.Fprint(opts.Stderr, chunk.Disassemble(heap, "expression"))
	}
	if err := m.Run(); err != nil {
		return "", err
	}
	result, ok := m.Result()
	if !ok {
		return "", nil
	}
	return value.Display(heap, result), nil
}

// CompileToWire compiles a program and serializes the chunk to the FNBC
// wire format without running it.
func CompileToWire(source string, opts Options) ([]byte, error) {
	opts.setDefaults()

	heap := value.NewHeap()
	chunk, errs := compiler.Compile(source, heap)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(opts.Stderr, e)
		}
		return nil, &CompileFailedError{Diagnostics: errs}
	}
	return bytecode.MarshalChunk(chunk, heap)
}

// InterpretWire decodes an FNBC chunk and runs it without recompiling.
func InterpretWire(data []byte, opts Options) error {
	opts.setDefaults()

	heap := value.NewHeap()
	chunk, err := bytecode.UnmarshalChunk(data, heap)
	if err != nil {
		return err
	}
	log.Debugf("loaded chunk: %d bytes, %d constants", len(chunk.Code), len(chunk.Constants))

	return run(chunk, heap, opts)
}

func run(chunk *bytecode.Chunk, heap *value.Heap, opts Options) error {
	if opts.Disassemble {
		fmt.Fprint(opts.Stderr, chunk.Disassemble(heap, "program"))
	}
	return vm.New(chunk, heap, vmOptions(opts)).Run()
}

func vmOptions(opts Options) vm.Options {
	return vm.Options{
		TraceExecution: opts.TraceExecution,
		Stdout:         opts.Stdout,
		TraceWriter:    opts.Stderr,
	}
}
