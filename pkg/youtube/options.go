package youtube

import (
	"net/url"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
)

// Option customizes a single endpoint call.
type Option func(*callOptions)

type callOptions struct {
	normalizer parse.Normalizer
	parts      []string
	params     url.Values
	maxResults int
	maxSet     bool
	cutoff     time.Time
	start      pagination.Position
}

// WithNormalizer replaces the endpoint's default normalizer.
func WithNormalizer(n parse.Normalizer) Option {
	return func(o *callOptions) {
		o.normalizer = n
	}
}

// WithParts replaces the requested resource parts.
func WithParts(parts ...string) Option {
	return func(o *callOptions) {
		o.parts = parts
	}
}

// WithParams adds extra query parameters, overriding defaults with the same name.
func WithParams(params url.Values) Option {
	return func(o *callOptions) {
		if o.params == nil {
			o.params = url.Values{}
		}
		for k, vs := range params {
			o.params[k] = append([]string(nil), vs...)
		}
	}
}

// WithMaxResults caps the number of records. n <= 0 means unlimited.
func WithMaxResults(n int) Option {
	return func(o *callOptions) {
		o.maxResults = n
		o.maxSet = true
	}
}

// WithCutoff stops at the first item published at or before t. It applies to
// newest-first listings only: playlist items, playlists, comments and search
// ordered by date. Batch lookups and other search orders ignore it.
func WithCutoff(t time.Time) Option {
	return func(o *callOptions) {
		o.cutoff = t
	}
}

// WithStartCursor resumes a paged endpoint at the given page token.
func WithStartCursor(token string) Option {
	return WithStartPosition(pagination.Position{Token: token})
}

// WithStartPosition resumes a paged endpoint where an earlier stream's
// Position left off, including inside a page.
func WithStartPosition(pos pagination.Position) Option {
	return func(o *callOptions) {
		o.start = pos
	}
}

func collectOptions(opts []Option) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// limit returns the record cap, falling back to def when no option set one.
func (o callOptions) limit(def int) int {
	if o.maxSet {
		return o.maxResults
	}
	return def
}

// normalizerOr returns the caller's normalizer or def.
func (o callOptions) normalizerOr(def parse.Normalizer) parse.Normalizer {
	if o.normalizer != nil {
		return o.normalizer
	}
	return def
}

// condition combines the record cap and the cutoff for desc.
func (o callOptions) condition(desc pagination.Descriptor, defMax int) pagination.Condition {
	return pagination.All(pagination.MaxResults(o.limit(defMax)), desc.CutoffAt(o.cutoff))
}

// paginateOptions maps call options onto pagination options.
func (o callOptions) paginateOptions() []pagination.Option {
	if o.start == (pagination.Position{}) {
		return nil
	}
	return []pagination.Option{pagination.WithStartPosition(o.start)}
}
