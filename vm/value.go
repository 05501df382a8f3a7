package vm

import (
	"fmt"
	"math"
)

// Kind identifies the runtime type of a Value.
//
// The set of kinds is closed. Open-ended behaviour lives in each kind's
// dispatch table, not in the enum.
type Kind uint8

const (
	KindNil Kind = iota // no dispatch at all
	KindUndefined
	KindBoolean
	KindNumber
	KindString
	KindTable
	KindReference
	KindNative

	numKinds
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindUndefined:
		return "undefined"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindTable:
		return "table"
	case KindReference:
		return "reference"
	case KindNative:
		return "native"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// KindByName is the inverse of Kind.String. It reports false for unknown names.
func KindByName(name string) (Kind, bool) {
	for k := KindNil; k < numKinds; k++ {
		if k.String() == name {
			return k, true
		}
	}
	return KindNil, false
}

// Value is the universal unit of data.
//
// Values are small and copied freely. Copying a Value copies its kind and
// payload but never its ownership: only Retain and Release change the
// reference count of the record a Value points at.
type Value struct {
	kind Kind
	num  float64 // boolean (0/1) or number payload
	obj  record  // heap payload for string, table, reference, native
}

// Sentinel values.
var (
	// Nil has no dispatch. Every message sent to it resolves to Absent and
	// it cannot be stringified.
	Nil = Value{}

	// Undefined is returned for invalid operations and rejected messages.
	Undefined = Value{kind: KindUndefined}
)

// Kind returns the value's kind.
func (v Value) Kind() Kind {
	return v.kind
}

// IsType reports whether v is of kind k. This is the only legal way to
// test "same runtime type".
func IsType(v Value, k Kind) bool {
	return v.kind == k
}

// IsNil returns true if v is the nil sentinel.
func (v Value) IsNil() bool {
	return v.kind == KindNil
}

// IsUndefined returns true if v is the undefined sentinel.
func (v Value) IsUndefined() bool {
	return v.kind == KindUndefined
}

// ---------------------------------------------------------------------------
// Inline scalars
// ---------------------------------------------------------------------------

// BoolValue wraps a boolean.
func BoolValue(b bool) Value {
	if b {
		return Value{kind: KindBoolean, num: 1}
	}
	return Value{kind: KindBoolean}
}

// NumberValue wraps a float64.
func NumberValue(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// AsBool returns the boolean payload, or false if v is not a boolean.
func AsBool(v Value) bool {
	return v.kind == KindBoolean && v.num != 0
}

// AsNumber returns the number payload, or 0 if v is not a number.
func AsNumber(v Value) float64 {
	if v.kind != KindNumber {
		return 0
	}
	return v.num
}

// asIndex converts a number value to an integral index. Non-numbers,
// fractions, NaN and infinities are rejected.
func asIndex(v Value) (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	n := v.num
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, false
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, false
	}
	return int(n), true
}

// ---------------------------------------------------------------------------
// Heap records
// ---------------------------------------------------------------------------

// record is implemented by every heap-allocated payload. free is called
// exactly once, when the last owner is released, and must release every
// Value the record holds before dropping its storage.
type record interface {
	refs() *Refs
	free()
}

// wrap builds a heap value. Ownership is not transferred or counted.
func wrap(k Kind, r record) Value {
	return Value{kind: k, obj: r}
}

// RefCount returns the reference count of the record v points at.
// Inline values and freed records report 0.
func RefCount(v Value) int {
	if v.obj == nil || v.obj.refs().Freed() {
		return 0
	}
	return v.obj.refs().Count()
}
