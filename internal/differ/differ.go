package differ

import (
	"strings"

	"github.com/equipd/snapmerge/pkg/types"
)

// FieldChange records one differing field with its before and after values.
type FieldChange struct {
	Field string      `json:"field"`
	Old   types.Value `json:"old_value"`
	New   types.Value `json:"new_value"`
}

// ChangeSet is the ordered list of field changes between two records. Order
// follows the old record's field order, with fields only present in the new
// record appended in its order, so previews render deterministically.
type ChangeSet []FieldChange

// IsEmpty reports whether no field differs.
func (c ChangeSet) IsEmpty() bool {
	return len(c) == 0
}

// ValuesEqual compares two scalar values with the restore-safe rules:
// null-equivalent values (null, missing, empty string) are equal to each
// other; a null-equivalent never equals a populated value; values that both
// parse as numbers compare numerically, because a CSV round-trip turns
// numeric fields into strings; everything else compares as trimmed strings.
func ValuesEqual(a, b types.Value) bool {
	aEmpty, bEmpty := a.IsEmpty(), b.IsEmpty()
	if aEmpty && bEmpty {
		return true
	}
	if aEmpty != bEmpty {
		return false
	}

	if an, ok := a.AsNumber(); ok {
		if bn, ok := b.AsNumber(); ok {
			return an == bn
		}
	}

	return strings.TrimSpace(a.AsString()) == strings.TrimSpace(b.AsString())
}

// Equal reports whether two records carry the same values across the union
// of their field sets. Fields absent from one record read as null.
func Equal(a, b *types.Record) bool {
	for _, field := range unionFields(a, b) {
		if !ValuesEqual(a.Lookup(field), b.Lookup(field)) {
			return false
		}
	}
	return true
}

// Diff returns the fields on which old and new disagree, each mapped to its
// (old, new) value pair. An empty change set means the records are equal.
func Diff(old, new *types.Record) ChangeSet {
	var changes ChangeSet
	for _, field := range unionFields(old, new) {
		oldVal, newVal := old.Lookup(field), new.Lookup(field)
		if !ValuesEqual(oldVal, newVal) {
			changes = append(changes, FieldChange{Field: field, Old: oldVal, New: newVal})
		}
	}
	return changes
}

// unionFields returns a's fields in order followed by b's extras in order.
func unionFields(a, b *types.Record) []string {
	fields := a.Fields()
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		seen[f] = struct{}{}
	}
	for _, f := range b.Fields() {
		if _, ok := seen[f]; !ok {
			fields = append(fields, f)
		}
	}
	return fields
}
