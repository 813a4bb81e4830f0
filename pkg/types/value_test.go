package types

import (
	"math"
	"testing"
)

func TestValue_IsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", Null(), true},
		{"empty string", String(""), true},
		{"whitespace string", String("   "), true},
		{"nan literal", String("nan"), true},
		{"none literal", String("None"), true},
		{"nan number", Number(math.NaN()), true},
		{"zero string", String("0"), false},
		{"zero number", Number(0), false},
		{"false bool", Bool(false), false},
		{"plain string", String("abc"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValue_AsNumber(t *testing.T) {
	if n, ok := String("3").AsNumber(); !ok || n != 3 {
		t.Errorf("String(\"3\").AsNumber() = %v, %v", n, ok)
	}
	if n, ok := String(" 3.5 ").AsNumber(); !ok || n != 3.5 {
		t.Errorf("String(\" 3.5 \").AsNumber() = %v, %v", n, ok)
	}
	if _, ok := String("abc").AsNumber(); ok {
		t.Error("expected AsNumber to fail for non-numeric string")
	}
	if _, ok := Bool(true).AsNumber(); ok {
		t.Error("expected AsNumber to fail for bool")
	}
	if n, ok := Number(7).AsNumber(); !ok || n != 7 {
		t.Errorf("Number(7).AsNumber() = %v, %v", n, ok)
	}
}

func TestValue_Native(t *testing.T) {
	if got := Number(math.NaN()).Native(); got != nil {
		t.Errorf("NaN should normalize to nil, got %v", got)
	}
	if got := Null().Native(); got != nil {
		t.Errorf("null should normalize to nil, got %v", got)
	}
	if got := Number(3).Native(); got != 3.0 {
		t.Errorf("Number(3).Native() = %v", got)
	}
	if got := String("x").Native(); got != "x" {
		t.Errorf("String(\"x\").Native() = %v", got)
	}
}

func TestValue_AsString(t *testing.T) {
	if got := Number(3).AsString(); got != "3" {
		t.Errorf("Number(3).AsString() = %q", got)
	}
	if got := Number(3.5).AsString(); got != "3.5" {
		t.Errorf("Number(3.5).AsString() = %q", got)
	}
	if got := Bool(true).AsString(); got != "true" {
		t.Errorf("Bool(true).AsString() = %q", got)
	}
}

func TestFromNative(t *testing.T) {
	if v := FromNative(nil); v.Kind() != KindNull {
		t.Errorf("FromNative(nil).Kind() = %v", v.Kind())
	}
	if v := FromNative(int32(5)); v.Kind() != KindNumber {
		t.Errorf("FromNative(int32).Kind() = %v", v.Kind())
	}
	if v := FromNative(int64(5)); v.Kind() != KindNumber {
		t.Errorf("FromNative(int64).Kind() = %v", v.Kind())
	}
	if v := FromNative(true); v.Kind() != KindBool {
		t.Errorf("FromNative(bool).Kind() = %v", v.Kind())
	}
}
