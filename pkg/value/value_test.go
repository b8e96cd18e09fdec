package value

import (
	"errors"
	"testing"
)

func TestTruthiness(t *testing.T) {
	h := NewHeap()
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"nil", Nil(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), true},
		{"number", Number(3.5), true},
		{"empty string", h.AllocString(""), true},
		{"string", h.AllocString("x"), true},
	}
	for _, tc := range tests {
		if got := tc.v.Truthy(); got != tc.want {
			t.Errorf("%s: Truthy() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestEqualCrossType(t *testing.T) {
	h := NewHeap()
	a := h.AllocString("a")
	a2 := h.AllocString("a")
	b := h.AllocString("b")

	tests := []struct {
		name string
		x, y Value
		want bool
	}{
		{"nil == nil", Nil(), Nil(), true},
		{"nil != false", Nil(), Bool(false), false},
		{"number == number", Number(2), Number(2), true},
		{"number != number", Number(2), Number(3), false},
		{"number != bool", Number(1), Bool(true), false},
		{"number != string", Number(1), a, false},
		{"same string contents", a, a2, true},
		{"different strings", a, b, false},
		{"same handle", a, a, true},
	}
	for _, tc := range tests {
		if got := Equal(h, tc.x, tc.y); got != tc.want {
			t.Errorf("%s: Equal = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDisplay(t *testing.T) {
	h := NewHeap()
	tests := []struct {
		v    Value
		want string
	}{
		{Nil(), "nil"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Number(7), "7"},
		{Number(2.5), "2.5"},
		{Number(-0.125), "-0.125"},
		{h.AllocString("hello"), "hello"},
		{h.AllocString(""), ""},
	}
	for _, tc := range tests {
		if got := Display(h, tc.v); got != tc.want {
			t.Errorf("Display(%v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestArithmetic(t *testing.T) {
	h := NewHeap()

	sum, err := Add(h, Number(1), Number(2))
	if err != nil || sum.AsNumber() != 3 {
		t.Errorf("1+2 = %v, %v", sum, err)
	}

	diff, err := Subtract(Number(1), Number(2))
	if err != nil || diff.AsNumber() != -1 {
		t.Errorf("1-2 = %v, %v", diff, err)
	}

	prod, err := Multiply(Number(3), Number(4))
	if err != nil || prod.AsNumber() != 12 {
		t.Errorf("3*4 = %v, %v", prod, err)
	}

	quot, err := Divide(Number(1), Number(2))
	if err != nil || quot.AsNumber() != 0.5 {
		t.Errorf("1/2 = %v, %v", quot, err)
	}

	// IEEE 754 division, not an error.
	inf, err := Divide(Number(1), Number(0))
	if err != nil {
		t.Errorf("1/0 errored: %v", err)
	}
	if !inf.IsNumber() || !(inf.AsNumber() > 0) {
		t.Errorf("1/0 = %v, want +Inf", inf)
	}

	neg, err := Negate(Number(5))
	if err != nil || neg.AsNumber() != -5 {
		t.Errorf("-5 = %v, %v", neg, err)
	}
}

func TestStringConcatenation(t *testing.T) {
	h := NewHeap()
	got, err := Add(h, h.AllocString("a"), h.AllocString("b"))
	if err != nil {
		t.Fatalf("\"a\"+\"b\" errored: %v", err)
	}
	if s, ok := h.StringValue(got); !ok || s != "ab" {
		t.Errorf("\"a\"+\"b\" = %q, want \"ab\"", s)
	}
}

func TestArithmeticTypeErrors(t *testing.T) {
	h := NewHeap()
	str := h.AllocString("a")

	if _, err := Add(h, str, Number(1)); err == nil {
		t.Error("\"a\"+1 should fail")
	} else {
		var ae *ArithmeticError
		if !errors.As(err, &ae) || ae.Op != "+" {
			t.Errorf("\"a\"+1 error = %v, want ArithmeticError{+}", err)
		}
	}

	if _, err := Subtract(str, Number(1)); err == nil {
		t.Error("\"a\"-1 should fail")
	}
	if _, err := Multiply(Bool(true), Number(2)); err == nil {
		t.Error("true*2 should fail")
	}
	if _, err := Divide(Nil(), Number(2)); err == nil {
		t.Error("nil/2 should fail")
	}

	var ne *NegationError
	if _, err := Negate(str); !errors.As(err, &ne) {
		t.Errorf("-\"a\" error = %v, want NegationError", err)
	}
}

func TestOrderingNonNumbersIsError(t *testing.T) {
	h := NewHeap()
	str := h.AllocString("a")

	var ce *ComparisonError
	if _, err := Less(Number(1), str); !errors.As(err, &ce) {
		t.Errorf("1 < \"a\" error = %v, want ComparisonError", err)
	}
	if _, err := Greater(str, str); !errors.As(err, &ce) {
		t.Errorf("\"a\" > \"a\" error = %v, want ComparisonError", err)
	}
	if got, err := Less(Number(1), Number(2)); err != nil || !got.AsBool() {
		t.Errorf("1 < 2 = %v, %v", got, err)
	}
	if got, err := Greater(Number(1), Number(2)); err != nil || got.AsBool() {
		t.Errorf("1 > 2 = %v, %v", got, err)
	}
}

func TestNot(t *testing.T) {
	h := NewHeap()
	if !Not(Nil()).AsBool() {
		t.Error("!nil should be true")
	}
	if Not(Number(0)).AsBool() {
		t.Error("!0 should be false")
	}
	if Not(h.AllocString("")).AsBool() {
		t.Error("!\"\" should be false")
	}
}

func TestHeapHandleReuse(t *testing.T) {
	h := NewHeap()
	a := h.AllocString("a")
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1", h.Len())
	}

	if !h.Release(a) {
		t.Fatal("Release failed")
	}
	if h.Len() != 0 {
		t.Errorf("Len after release = %d, want 0", h.Len())
	}

	// The released handle is stale.
	if _, ok := h.StringValue(a); ok {
		t.Error("stale handle still resolves")
	}
	if h.Release(a) {
		t.Error("double release succeeded")
	}

	// The slot is reused with a new generation; the old handle stays stale.
	b := h.AllocString("b")
	if s, ok := h.StringValue(b); !ok || s != "b" {
		t.Errorf("reused slot = %q, %v", s, ok)
	}
	if _, ok := h.StringValue(a); ok {
		t.Error("stale handle resolves after slot reuse")
	}
}
