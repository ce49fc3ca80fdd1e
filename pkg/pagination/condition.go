package pagination

import (
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/parse"
)

// Condition decides when a traversal stops early.
type Condition interface {
	// Before is evaluated for every record before it is yielded. Returning
	// true ends the traversal without yielding the record.
	Before(rec parse.Record) bool

	// After is evaluated after each yielded record with the running count.
	// Returning true ends the traversal before any further request.
	After(count int) bool
}

type maxResults int

// MaxResults stops after n records. n <= 0 means unlimited.
func MaxResults(n int) Condition {
	if n <= 0 {
		return nil
	}
	return maxResults(n)
}

func (m maxResults) Before(parse.Record) bool { return false }
func (m maxResults) After(count int) bool     { return count >= int(m) }

type cutoff struct {
	field string
	at    time.Time
}

// Cutoff stops at the first record whose field holds a timestamp at or
// before t. That record is not yielded. Records whose field is null never
// trigger the cutoff.
func Cutoff(field string, t time.Time) Condition {
	return cutoff{field: field, at: t}
}

func (c cutoff) Before(rec parse.Record) bool {
	ts, ok := rec.Time(c.field)
	if !ok {
		return false
	}
	return !ts.After(c.at)
}

func (c cutoff) After(int) bool { return false }

type allOf []Condition

// All combines conditions; the traversal stops as soon as any of them fires.
// Nil conditions are ignored and All of nothing is nil.
func All(conds ...Condition) Condition {
	var out allOf
	for _, c := range conds {
		if c != nil {
			out = append(out, c)
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

func (a allOf) Before(rec parse.Record) bool {
	for _, c := range a {
		if c.Before(rec) {
			return true
		}
	}
	return false
}

func (a allOf) After(count int) bool {
	for _, c := range a {
		if c.After(count) {
			return true
		}
	}
	return false
}
