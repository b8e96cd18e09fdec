package value

import "strconv"

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------
//
// The arithmetic operators are partial: number op number always succeeds
// (division follows IEEE 754, so dividing by zero yields an infinity or
// NaN, not an error), string + string concatenates, and every other operand
// pairing fails with a typed error naming the operator. Ordering is defined
// for numbers only.

// Add implements '+': numeric addition or string concatenation.
func Add(h *Heap, a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Number(a.num + b.num), nil
	}
	as, aok := h.StringValue(a)
	bs, bok := h.StringValue(b)
	if aok && bok {
		return h.AllocString(as + bs), nil
	}
	return Value{}, &ArithmeticError{Op: "+"}
}

// Subtract implements '-' on numbers.
func Subtract(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Number(a.num - b.num), nil
	}
	return Value{}, &ArithmeticError{Op: "-"}
}

// Multiply implements '*' on numbers.
func Multiply(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Number(a.num * b.num), nil
	}
	return Value{}, &ArithmeticError{Op: "*"}
}

// Divide implements '/' on numbers.
func Divide(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Number(a.num / b.num), nil
	}
	return Value{}, &ArithmeticError{Op: "/"}
}

// Negate implements unary '-' on a number.
func Negate(a Value) (Value, error) {
	if a.IsNumber() {
		return Number(-a.num), nil
	}
	return Value{}, &NegationError{}
}

// Less implements '<'. Ordering non-numbers is a comparison error, never an
// incidental structural order.
func Less(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Bool(a.num < b.num), nil
	}
	return Value{}, &ComparisonError{Op: "<"}
}

// Greater implements '>'.
func Greater(a, b Value) (Value, error) {
	if a.IsNumber() && b.IsNumber() {
		return Bool(a.num > b.num), nil
	}
	return Value{}, &ComparisonError{Op: ">"}
}

// Not returns the boolean negation of v's truthiness.
func Not(v Value) Value {
	return Bool(!v.Truthy())
}

// Equal reports structural equality. Comparing different kinds is simply
// unequal; strings compare by contents.
func Equal(h *Heap, a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.num == b.num
	case KindObject:
		if a.obj == b.obj {
			return true
		}
		as, aok := h.StringValue(a)
		bs, bok := h.StringValue(b)
		return aok && bok && as == bs
	default:
		return false
	}
}

// Display renders v's user-visible form: 'nil', 'true'/'false', the
// shortest decimal representation for numbers, and raw contents for
// strings.
func Display(h *Heap, v Value) string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindObject:
		if s, ok := h.StringValue(v); ok {
			return s
		}
		return "<stale object>"
	default:
		return "<invalid>"
	}
}
