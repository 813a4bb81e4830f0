package types

import (
	"bytes"
	"encoding/json"
)

// Record is an ordered mapping from field name to scalar value. Field order
// is preserved because it defines the CSV column order on export; lookups
// go through a side index so large records stay cheap to compare.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores a field value, appending the field to the order on first use.
func (r *Record) Set(name string, v Value) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Get returns the value of a field and whether the field is present.
// Absent fields read as null.
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	if !ok {
		return Null(), false
	}
	return v, true
}

// Lookup returns the field value, treating absent fields as null.
func (r *Record) Lookup(name string) Value {
	v, _ := r.Get(name)
	return v
}

// Has reports whether the field is present.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Delete removes a field, preserving the order of the rest.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Fields returns the field names in insertion order.
func (r *Record) Fields() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.names)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := &Record{
		names:  make([]string, len(r.names)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(clone.names, r.names)
	for k, v := range r.values {
		clone.values[k] = v
	}
	return clone
}

// Native returns the record as a plain map for a document-store write,
// normalizing every value through Value.Native.
func (r *Record) Native() map[string]any {
	out := make(map[string]any, len(r.names))
	for _, name := range r.names {
		out[name] = r.values[name].Native()
	}
	return out
}

// MarshalJSON serializes the record as a JSON object with fields in
// insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML serializes the record as a plain mapping.
func (r *Record) MarshalYAML() (interface{}, error) {
	return r.Native(), nil
}

// RecordFromMap builds a record from a plain map with an explicit field
// order. Names missing from the map are set to null so all records in a
// batch share a common field set.
func RecordFromMap(order []string, m map[string]any) *Record {
	rec := NewRecord()
	for _, name := range order {
		if v, ok := m[name]; ok {
			rec.Set(name, FromNative(v))
		} else {
			rec.Set(name, Null())
		}
	}
	return rec
}
