package interp

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/chazu/fern/vm"
)

func TestInterpretProgram(t *testing.T) {
	var out, errOut bytes.Buffer
	source := `
var planet = "world";
print "hello, " + planet;
var n = 6;
print n * 7;
`
	if err := Interpret(source, Options{Stdout: &out, Stderr: &errOut}); err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	want := "hello, world\n42\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Errorf("unexpected stderr: %q", errOut.String())
	}
}

func TestInterpretReportsDiagnostics(t *testing.T) {
	var out, errOut bytes.Buffer
	err := Interpret("var;\nprint;", Options{Stdout: &out, Stderr: &errOut})

	var cfe *CompileFailedError
	if !errors.As(err, &cfe) {
		t.Fatalf("error = %v, want CompileFailedError", err)
	}
	if len(cfe.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v", cfe.Diagnostics)
	}

	lines := strings.Split(strings.TrimRight(errOut.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("stderr = %q, want two diagnostic lines", errOut.String())
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "[line ") {
			t.Errorf("diagnostic line = %q", line)
		}
	}
	if out.Len() != 0 {
		t.Errorf("program output despite compile failure: %q", out.String())
	}
}

func TestInterpretRuntimeError(t *testing.T) {
	var out bytes.Buffer
	err := Interpret("print 1;\nprint missing;", Options{Stdout: &out, Stderr: &bytes.Buffer{}})

	var re *vm.RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("error = %v, want RuntimeError", err)
	}
	// Output before the fault is kept.
	if out.String() != "1\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"(-1 + 2) * 3 - -4", "7"},
		{`"a" + "b"`, "ab"},
		{"1 < 2", "true"},
		{"nil", "nil"},
	}
	for _, tc := range tests {
		got, err := EvalExpression(tc.source, Options{Stderr: &bytes.Buffer{}})
		if err != nil {
			t.Fatalf("EvalExpression(%q): %v", tc.source, err)
		}
		if got != tc.want {
			t.Errorf("EvalExpression(%q) = %q, want %q", tc.source, got, tc.want)
		}
	}
}

func TestEvalExpressionRejectsStatements(t *testing.T) {
	var errOut bytes.Buffer
	_, err := EvalExpression("print 1;", Options{Stderr: &errOut})
	var cfe *CompileFailedError
	if !errors.As(err, &cfe) {
		t.Fatalf("error = %v, want CompileFailedError", err)
	}
}

func TestDisassembleSideChannel(t *testing.T) {
	var out, errOut bytes.Buffer
	err := Interpret("print 1;", Options{Disassemble: true, Stdout: &out, Stderr: &errOut})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "1\n" {
		t.Errorf("output = %q", out.String())
	}
	listing := errOut.String()
	if !strings.Contains(listing, "== program ==") || !strings.Contains(listing, "OP_PRINT") {
		t.Errorf("disassembly missing from stderr:\n%s", listing)
	}
}

func TestWireRoundTripThroughInterp(t *testing.T) {
	source := `var greeting = "hi"; print greeting + " there";`

	data, err := CompileToWire(source, Options{Stderr: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("CompileToWire: %v", err)
	}

	var out bytes.Buffer
	if err := InterpretWire(data, Options{Stdout: &out, Stderr: &bytes.Buffer{}}); err != nil {
		t.Fatalf("InterpretWire: %v", err)
	}
	if out.String() != "hi there\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestInterpretWireRejectsGarbage(t *testing.T) {
	if err := InterpretWire([]byte("not a chunk"), Options{Stderr: &bytes.Buffer{}}); err == nil {
		t.Fatal("garbage wire data should fail")
	}
}

func TestCompileToWireReportsDiagnostics(t *testing.T) {
	var errOut bytes.Buffer
	_, err := CompileToWire("print ;", Options{Stderr: &errOut})
	var cfe *CompileFailedError
	if !errors.As(err, &cfe) {
		t.Fatalf("error = %v, want CompileFailedError", err)
	}
	if !strings.Contains(errOut.String(), "expected expression") {
		t.Errorf("stderr = %q", errOut.String())
	}
}
