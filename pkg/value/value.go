// Package value implements the Fern runtime value model: a closed tagged
// union over nil, booleans, 64-bit float numbers, and heap objects, plus the
// heap arena that owns the object payloads.
package value

import "strconv"

// Kind identifies which variant of the union a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindObject
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindObject:
		return "object"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a single runtime value. Values are small and copied freely;
// object payloads stay in the Heap and are addressed through a Handle.
type Value struct {
	kind Kind
	num  float64
	b    bool
	obj  Handle
}

// Nil returns the nil value.
func Nil() Value {
	return Value{kind: KindNil}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number returns a number value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Object returns a value referencing a heap object.
func Object(h Handle) Value {
	return Value{kind: KindObject, obj: h}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.kind == KindNil }

// IsBool reports whether v is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether v is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsObject reports whether v references a heap object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsNumber returns the float payload. Only meaningful when IsNumber.
func (v Value) AsNumber() float64 { return v.num }

// AsBool returns the boolean payload. Only meaningful when IsBool.
func (v Value) AsBool() bool { return v.b }

// Handle returns the heap handle. Only meaningful when IsObject.
func (v Value) Handle() Handle { return v.obj }

// Truthy reports the value's truthiness: nil and false are falsy, every
// other value (including 0 and the empty string) is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.b
	default:
		return true
	}
}
