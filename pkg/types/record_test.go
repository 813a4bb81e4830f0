package types

import (
	"testing"
	"time"
)

func TestRecord_OrderPreserved(t *testing.T) {
	rec := NewRecord()
	rec.Set("b", String("1"))
	rec.Set("a", String("2"))
	rec.Set("c", String("3"))

	fields := rec.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(fields))
	}
	if fields[0] != "b" || fields[1] != "a" || fields[2] != "c" {
		t.Errorf("field order not preserved: %v", fields)
	}

	// Re-setting an existing field must not move it.
	rec.Set("b", String("9"))
	if got := rec.Fields()[0]; got != "b" {
		t.Errorf("re-set moved field, order now %v", rec.Fields())
	}
}

func TestRecord_AbsentFieldReadsNull(t *testing.T) {
	rec := NewRecord()
	rec.Set("name", String("scope"))

	v, ok := rec.Get("serial")
	if ok {
		t.Error("Get for absent field reported present")
	}
	if v.Kind() != KindNull {
		t.Errorf("absent field kind = %v, want KindNull", v.Kind())
	}
	if !rec.Lookup("serial").IsEmpty() {
		t.Error("Lookup for absent field should be empty")
	}
}

func TestRecord_Delete(t *testing.T) {
	rec := NewRecord()
	rec.Set("a", String("1"))
	rec.Set("b", String("2"))
	rec.Set("c", String("3"))

	rec.Delete("b")
	fields := rec.Fields()
	if len(fields) != 2 || fields[0] != "a" || fields[1] != "c" {
		t.Errorf("unexpected fields after delete: %v", fields)
	}
	if rec.Has("b") {
		t.Error("deleted field still present")
	}
}

func TestRecord_Clone(t *testing.T) {
	rec := NewRecord()
	rec.Set("id", Number(1))

	clone := rec.Clone()
	clone.Set("id", Number(2))
	clone.Set("extra", String("x"))

	if v := rec.Lookup("id"); v.AsString() != "1" {
		t.Errorf("clone mutation leaked into original: id = %s", v.AsString())
	}
	if rec.Has("extra") {
		t.Error("clone mutation leaked new field into original")
	}
}

func TestRecordFromMap_FillsMissingWithNull(t *testing.T) {
	rec := RecordFromMap([]string{"id", "name", "serial"}, map[string]any{
		"id":   1,
		"name": "probe",
	})

	if rec.Len() != 3 {
		t.Fatalf("expected 3 fields, got %d", rec.Len())
	}
	if !rec.Lookup("serial").IsEmpty() {
		t.Error("missing map key should read as null")
	}
}

func TestDayName(t *testing.T) {
	// 2026-08-23 is a Sunday.
	sunday := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	if got := DayName(sunday); got != "sunday" {
		t.Errorf("DayName(sunday) = %q", got)
	}
	if got := DayName(sunday.AddDate(0, 0, 3)); got != "wednesday" {
		t.Errorf("DayName(+3d) = %q", got)
	}
}
