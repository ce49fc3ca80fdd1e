package pagination

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/parse"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// State is the position of a Stream in its lifecycle.
type State int

const (
	// StateFetching means the next record needs another request.
	StateFetching State = iota

	// StateItemAvailable means Record holds the current record.
	StateItemAvailable

	// StateStoppedByCondition means a Condition ended the traversal.
	StateStoppedByCondition

	// StateExhausted means the last page had no continuation cursor.
	StateExhausted

	// StateFailed means a request failed; Err holds the cause.
	StateFailed

	// StateClosed means the caller closed the stream early.
	StateClosed
)

// String returns the state name used in logs and metrics.
func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateItemAvailable:
		return "item_available"
	case StateStoppedByCondition:
		return "stopped_by_condition"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Done reports whether the state is terminal.
func (s State) Done() bool {
	return s >= StateStoppedByCondition
}

// Position is a point a cursor traversal can resume from: the page addressed
// by Token ("" for the first page), of which the first Skip records were
// already yielded. Resuming only yields the same records when the request
// parameters, page size included, are unchanged.
type Position struct {
	Token string
	Skip  int
}

// Stream is a lazy, single-pass sequence of records. Ranging over it a second
// time yields nothing; start a new traversal instead. A Stream is not safe
// for concurrent use.
type Stream struct {
	ctx        context.Context
	source     pageSource
	normalizer parse.Normalizer
	cond       Condition
	pacer      *rate.Limiter
	logger     zerolog.Logger
	endpoint   string

	state     State
	buf       []any
	rec       parse.Record
	err       error
	count     int
	pages     int
	total     int64
	hasTotal  bool
	stopAfter bool
	started   time.Time

	// Resume bookkeeping for the most recently fetched page.
	pageToken string
	pageLen   int
	pageTaken int
	skip      int
}

// Failed returns a stream that has already failed with err. Endpoint
// wrappers use it to report argument errors through the Stream API.
func Failed(err error) *Stream {
	return &Stream{state: StateFailed, err: err, logger: zerolog.Nop()}
}

// Next advances to the next record. It returns false once the stream has
// ended; State and Err tell how.
func (s *Stream) Next() bool {
	if s.state.Done() {
		return false
	}
	s.rec = nil

	if s.stopAfter {
		s.finish(StateStoppedByCondition)
		return false
	}

	for {
		if len(s.buf) > 0 {
			raw := s.buf[0]
			s.buf[0] = nil
			s.buf = s.buf[1:]

			rec := s.normalizer.Normalize(raw)
			if s.cond != nil && s.cond.Before(rec) {
				s.buf = nil
				s.finish(StateStoppedByCondition)
				return false
			}

			s.rec = rec
			s.count++
			s.pageTaken++
			s.state = StateItemAvailable
			recordsEmittedTotal.WithLabelValues(s.endpoint).Inc()

			if s.cond != nil && s.cond.After(s.count) {
				s.stopAfter = true
			}
			return true
		}

		s.state = StateFetching
		if s.source.done() {
			s.finish(StateExhausted)
			return false
		}
		if err := s.ctx.Err(); err != nil {
			s.fail(err)
			return false
		}

		// Space out page requests; the first one goes out immediately
		if s.pacer != nil {
			if err := s.pacer.Wait(s.ctx); err != nil {
				s.fail(err)
				return false
			}
		}

		if s.started.IsZero() {
			s.started = time.Now()
		}

		token := s.source.cursor()
		p, err := s.source.fetch(s.ctx)
		if err != nil {
			s.fail(err)
			return false
		}

		s.pages++
		pagesFetchedTotal.WithLabelValues(s.endpoint).Inc()
		if p.hasTotal {
			s.total, s.hasTotal = p.total, true
		}
		s.buf = p.items
		s.pageToken, s.pageLen, s.pageTaken = token, len(p.items), 0
		if s.skip > 0 {
			n := min(s.skip, len(s.buf))
			s.buf = s.buf[n:]
			s.pageTaken, s.skip = n, 0
		}

		s.logger.Debug().
			Int("page", s.pages).
			Int("items", len(p.items)).
			Bool("has_next", p.next != "").
			Msg("Fetched page")
	}
}

// Record returns the current record. It is only valid after Next returned true.
func (s *Stream) Record() parse.Record {
	return s.rec
}

// Err returns the error that ended the stream, or nil.
func (s *Stream) Err() error {
	return s.err
}

// State returns the current state.
func (s *Stream) State() State {
	return s.state
}

// Count returns the number of records yielded so far.
func (s *Stream) Count() int {
	return s.count
}

// Pages returns the number of pages fetched so far.
func (s *Stream) Pages() int {
	return s.pages
}

// TotalHint returns the API's totalResults estimate from the latest page.
func (s *Stream) TotalHint() (int64, bool) {
	return s.total, s.hasTotal
}

// Position returns where a later traversal picks up without losing or
// repeating records. It returns false for batch traversals and once the last
// page has been fully consumed.
func (s *Stream) Position() (Position, bool) {
	if _, ok := s.source.(*cursorSource); !ok {
		return Position{}, false
	}
	if s.pages == 0 {
		return Position{Token: s.source.cursor(), Skip: s.skip}, true
	}
	if s.pageTaken < s.pageLen {
		return Position{Token: s.pageToken, Skip: s.pageTaken}, true
	}
	if s.source.done() {
		return Position{}, false
	}
	return Position{Token: s.source.cursor()}, true
}

// Cursor returns the token of the next page when the stream stopped on a page
// boundary, so that WithStartCursor resumes it without gaps. It returns ""
// when nothing is left or the stream stopped inside a page; use Position then.
func (s *Stream) Cursor() string {
	pos, ok := s.Position()
	if !ok || pos.Skip > 0 {
		return ""
	}
	return pos.Token
}

// Close ends the stream without issuing further requests.
func (s *Stream) Close() {
	if s.state.Done() {
		return
	}
	s.buf = nil
	s.rec = nil
	s.finish(StateClosed)
}

// All returns the stream as an iterator. A failure is yielded once as the
// final pair with a nil record. Breaking out of the loop closes the stream.
func (s *Stream) All() iter.Seq2[parse.Record, error] {
	return func(yield func(parse.Record, error) bool) {
		for s.Next() {
			if !yield(s.Record(), nil) {
				s.Close()
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Collect drains the stream. On failure it returns the records gathered
// before the failure together with the error; the caller decides whether to
// keep them.
func Collect(s *Stream) ([]parse.Record, error) {
	var out []parse.Record
	for s.Next() {
		out = append(out, s.Record())
	}
	return out, s.Err()
}

func (s *Stream) fail(err error) {
	s.err = err
	s.buf = nil
	s.finish(StateFailed)
}

func (s *Stream) finish(state State) {
	s.state = state
	traversalsTotal.WithLabelValues(s.endpoint, state.String()).Inc()

	var elapsed time.Duration
	if !s.started.IsZero() {
		elapsed = time.Since(s.started)
		traversalDuration.WithLabelValues(s.endpoint).Observe(elapsed.Seconds())
	}

	event := s.logger.Info()
	if state == StateFailed {
		event = s.logger.Error().Err(s.err)
	}
	event.
		Str("state", state.String()).
		Int("records", s.count).
		Int("pages", s.pages).
		Dur("duration", elapsed).
		Msg("Traversal finished")
}
