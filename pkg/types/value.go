package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the scalar type carried by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

// Value is a dynamically-typed scalar field value. Collection schemas are
// operator-extensible at runtime, so records cannot be fixed structs; a
// tagged union keeps the type-aware comparison rules in one place without
// falling back to untyped interface{} plumbing.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
}

// Null returns the null value.
func Null() Value {
	return Value{kind: KindNull}
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// FromNative converts a value produced by the document store driver or the
// JSON decoder into a Value. Unknown types are carried as their string
// representation rather than rejected, matching how the CSV round-trip
// flattens everything to text anyway.
func FromNative(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case float32:
		return Number(float64(t))
	case int:
		return Number(float64(t))
	case int32:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	default:
		return String(fmt.Sprintf("%v", t))
	}
}

// Kind returns the tag of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsEmpty reports whether the value is null-equivalent: null, an empty or
// whitespace-only string, or the literal artifacts a dataframe round-trip
// leaves behind ("nan", "None").
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		s := strings.TrimSpace(v.str)
		return s == "" || s == "nan" || s == "None"
	case KindNumber:
		return math.IsNaN(v.num)
	default:
		return false
	}
}

// AsNumber attempts a numeric reading of the value. String values are
// parsed, so "3" and 3.0 land on the same number.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsString returns the display string of the value. Numbers drop a trailing
// ".0" so that 3.0 and "3" read the same way they compare.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Native returns the plain Go value suitable for a document-store write.
// NaN numerics normalize to nil here, at the write boundary, so the differ
// and planner never see driver-specific wrapper values.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil
		}
		return v.num
	default:
		return nil
	}
}

// MarshalJSON serializes the value as its native scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Native())
}

// MarshalYAML serializes the value as its native scalar.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.Native(), nil
}

// String implements fmt.Stringer for log and preview output.
func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.AsString()
}
