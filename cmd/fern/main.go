// Fern CLI - compiles and runs Fern programs.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/fern/interp"
	"github.com/chazu/fern/manifest"

	_ "github.com/tliron/commonlog/simple"
)

// Exit codes follow sysexits: 65 for bad source, 70 for a runtime fault.
const (
	exitCompileError = 65
	exitRuntimeError = 70
)

// traceEnvVar enables execution tracing when set (any value). It is read
// exactly once here and passed into the core explicitly.
const traceEnvVar = "FERN_TRACE"

func main() {
	eval := flag.String("e", "", "Evaluate an expression and print its result")
	trace := flag.Bool("trace", false, "Trace execution (also enabled by "+traceEnvVar+")")
	disasm := flag.Bool("disasm", false, "Dump the compiled chunk before running")
	compileOut := flag.String("compile", "", "Compile the script to the given .fnbc file instead of running it")
	verbosity := flag.Int("v", 0, "Log verbosity")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fern [options] [script]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a Fern script, a compiled .fnbc chunk, or starts a REPL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fern                          # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  fern program.fern             # Run a script\n")
		fmt.Fprintf(os.Stderr, "  fern -e '1 + 2 * 3'           # Evaluate an expression\n")
		fmt.Fprintf(os.Stderr, "  fern -trace program.fern      # Run with an execution trace\n")
		fmt.Fprintf(os.Stderr, "  fern -compile out.fnbc in.fern  # Compile without running\n")
		fmt.Fprintf(os.Stderr, "  fern out.fnbc                 # Run a compiled chunk\n")
	}
	flag.Parse()

	// Manifest settings sit below flags and the environment.
	mf, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	opts := interp.Options{
		TraceExecution: *trace || os.Getenv(traceEnvVar) != "",
		Disassemble:    *disasm,
	}
	logLevel := *verbosity
	if mf != nil {
		opts.TraceExecution = opts.TraceExecution || mf.Run.Trace
		opts.Disassemble = opts.Disassemble || mf.Run.Disassemble
		if logLevel == 0 {
			logLevel = mf.Run.Verbosity
		}
	}
	commonlog.Configure(logLevel, nil)

	if *eval != "" {
		result, err := interp.EvalExpression(*eval, opts)
		if err != nil {
			exitWith(err)
		}
		fmt.Println(result)
		return
	}

	path := flag.Arg(0)
	if path == "" && mf != nil && flag.NArg() == 0 && *compileOut == "" {
		if _, statErr := os.Stat(mf.EntryPath()); statErr == nil {
			path = mf.EntryPath()
		}
	}

	if *compileOut != "" {
		if path == "" {
			fmt.Fprintln(os.Stderr, "Error: -compile requires a script")
			os.Exit(2)
		}
		compileFile(path, *compileOut, opts)
		return
	}

	if path == "" {
		repl(opts)
		return
	}

	runFile(path, opts)
}

func runFile(path string, opts interp.Options) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if strings.HasSuffix(path, ".fnbc") {
		if err := interp.InterpretWire(data, opts); err != nil {
			exitWith(err)
		}
		return
	}

	if err := interp.Interpret(string(data), opts); err != nil {
		exitWith(err)
	}
}

func compileFile(src, out string, opts interp.Options) {
	data, err := os.ReadFile(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	wire, err := interp.CompileToWire(string(data), opts)
	if err != nil {
		exitWith(err)
	}
	if err := os.WriteFile(out, wire, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s (%d bytes)\n", out, len(wire))
}

// repl reads one line at a time. Lines ending in ';' run as statements
// against a fresh interpretation; anything else is evaluated as an
// expression and its result printed.
func repl(opts interp.Options) {
	fmt.Println("Fern REPL (ctrl-D to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasSuffix(line, ";") {
			if err := interp.Interpret(line, opts); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			continue
		}

		result, err := interp.EvalExpression(line, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(result)
	}
}

func exitWith(err error) {
	var cf *interp.CompileFailedError
	if errors.As(err, &cf) {
		// Diagnostics were already printed, one per line.
		os.Exit(exitCompileError)
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(exitRuntimeError)
}
