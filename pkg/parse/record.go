// Package parse turns raw Data API items into flat, fixed-shape records.
//
// Every normalizer in this package is total: a nil, empty or malformed item
// still yields a record with every declared field present (null where the
// source had nothing) plus a collection_timestamp stamped from an injected
// clock.
package parse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"time"
)

// CollectionTimestamp is appended to every record and holds the retrieval time.
const CollectionTimestamp = "collection_timestamp"

// Field is one named value of a Record.
// Value is nil, string, int64, float64 or time.Time (raw records may hold any JSON value).
type Field struct {
	Name  string
	Value any
}

// Record is a flat ordered set of fields.
type Record []Field

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the named field as a string, or "" when absent or not a string.
func (r Record) String(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Int returns the named field as an int64.
func (r Record) Int(name string) (int64, bool) {
	v, _ := r.Get(name)
	n, ok := v.(int64)
	return n, ok
}

// Time returns the named field as a time.Time. ok is false for null values.
func (r Record) Time(name string) (time.Time, bool) {
	v, _ := r.Get(name)
	t, ok := v.(time.Time)
	return t, ok
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Map returns the fields as an unordered map.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, f := range r {
		m[f.Name] = f.Value
	}
	return m
}

// Without returns a copy of r lacking the named fields.
// Tests use it to drop CollectionTimestamp before comparing records.
func (r Record) Without(names ...string) Record {
	out := make(Record, 0, len(r))
	for _, f := range r {
		if !slices.Contains(names, f.Name) {
			out = append(out, f)
		}
	}
	return out
}

// Equal reports whether both records carry the same fields in the same order
// with values of the same type. Times compare by instant.
func (r Record) Equal(other Record) bool {
	return slices.EqualFunc(r, other, func(a, b Field) bool {
		if a.Name != b.Name {
			return false
		}
		at, aok := a.Value.(time.Time)
		bt, bok := b.Value.(time.Time)
		if aok || bok {
			return aok && bok && at.Equal(bt)
		}
		return reflect.DeepEqual(a.Value, b.Value)
	})
}

// MarshalJSON encodes the record as a JSON object with keys in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
