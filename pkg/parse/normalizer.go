package parse

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Normalizer maps one raw item to a Record. Implementations never fail.
type Normalizer interface {
	Normalize(raw any) Record
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(raw any) Record

// Normalize calls f(raw).
func (f NormalizerFunc) Normalize(raw any) Record {
	return f(raw)
}

// Clock returns the collection time for a record.
type Clock func() time.Time

// DefaultClock is the wall clock in UTC.
func DefaultClock() time.Time {
	return time.Now().UTC()
}

// FixedClock always returns t. Useful for tests and reproducible output.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// TagSeparator joins list-valued fields.
const TagSeparator = "|"

// timeLayouts are tried in order. The API emits RFC 3339 with optional
// fractional seconds.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

// ParseTime parses an API timestamp. Unparseable input yields ok == false.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// JoinList flattens a JSON list of strings into one TagSeparator-joined
// string. Non-list input yields "" and non-string elements are skipped.
func JoinList(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	parts := lo.FilterMap(list, func(item any, _ int) (string, bool) {
		s, ok := item.(string)
		return s, ok
	})
	return strings.Join(parts, TagSeparator)
}

// Raw returns a normalizer that keeps every top-level key of the item, in
// sorted order, followed by the collection timestamp. Its field set follows
// the input rather than a schema.
func Raw(clock Clock) Normalizer {
	if clock == nil {
		clock = DefaultClock
	}
	return NormalizerFunc(func(raw any) Record {
		obj, _ := raw.(map[string]any)
		keys := lo.Keys(obj)
		slices.Sort(keys)

		rec := make(Record, 0, len(keys)+1)
		for _, k := range keys {
			rec = append(rec, Field{Name: k, Value: obj[k]})
		}
		return append(rec, Field{Name: CollectionTimestamp, Value: clock()})
	})
}
