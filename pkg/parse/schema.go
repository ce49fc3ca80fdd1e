package parse

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Kind selects how a source value is coerced.
type Kind int

const (
	// KindString keeps strings; anything else is null.
	KindString Kind = iota

	// KindInt accepts JSON numbers and numeric strings (the API sends counts as strings).
	KindInt

	// KindFloat accepts JSON numbers and numeric strings.
	KindFloat

	// KindTime parses API timestamps into UTC time.Time.
	KindTime

	// KindJoined flattens a list of strings with TagSeparator. Absent lists become "".
	KindJoined
)

// FieldSpec declares one output field. Paths are dotted lookups into the raw
// item; the first path that resolves to a non-null value wins.
type FieldSpec struct {
	Name  string
	Kind  Kind
	Paths []string
}

// Spec is shorthand for building a FieldSpec.
func Spec(name string, kind Kind, paths ...string) FieldSpec {
	return FieldSpec{Name: name, Kind: kind, Paths: paths}
}

// Schema is the fixed field set of one resource kind.
type Schema struct {
	Name   string
	Fields []FieldSpec
}

// Names returns the field names every record of this schema carries.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Fields)+1)
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return append(names, CollectionTimestamp)
}

// Normalizer returns a Normalizer for the schema. A nil clock means DefaultClock.
func (s Schema) Normalizer(clock Clock) Normalizer {
	if clock == nil {
		clock = DefaultClock
	}
	return &schemaNormalizer{schema: s, clock: clock}
}

type schemaNormalizer struct {
	schema Schema
	clock  Clock
}

func (n *schemaNormalizer) Normalize(raw any) Record {
	obj, _ := raw.(map[string]any)

	rec := make(Record, 0, len(n.schema.Fields)+1)
	for _, spec := range n.schema.Fields {
		rec = append(rec, Field{Name: spec.Name, Value: coerce(spec.Kind, lookupFirst(obj, spec.Paths))})
	}
	return append(rec, Field{Name: CollectionTimestamp, Value: n.clock()})
}

func lookupFirst(obj map[string]any, paths []string) any {
	for _, p := range paths {
		if v := lookup(obj, p); v != nil {
			return v
		}
	}
	return nil
}

// lookup walks a dotted path. Missing keys and non-object hops yield nil.
func lookup(obj map[string]any, path string) any {
	var cur any = obj
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return cur
}

func coerce(kind Kind, v any) any {
	switch kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s
		}
		return nil
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindTime:
		s, ok := v.(string)
		if !ok {
			return nil
		}
		if t, ok := ParseTime(s); ok {
			return t
		}
		return nil
	case KindJoined:
		return JoinList(v)
	default:
		return nil
	}
}

func toInt(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) {
			return int64(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i
		}
	case float64:
		if n == math.Trunc(n) {
			return int64(n)
		}
	case int:
		return int64(n)
	case int64:
		return n
	}
	return nil
}

func toFloat(v any) any {
	switch n := v.(type) {
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f
		}
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return nil
}
