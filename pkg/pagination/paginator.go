package pagination

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds paginator configuration.
type Config struct {
	// PageDelay is the minimum spacing between page requests of one traversal.
	// Zero disables pacing.
	PageDelay time.Duration

	// Logger overrides the package logger when set.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default configuration (100ms between pages).
func DefaultConfig() Config {
	return Config{
		PageDelay: 100 * time.Millisecond,
	}
}

// Paginator starts traversals over a Fetcher. It keeps no per-traversal
// state, so one Paginator can serve concurrent traversals.
type Paginator struct {
	fetcher Fetcher
	config  Config
	logger  zerolog.Logger
}

// New creates a paginator.
func New(fetcher Fetcher, config Config) *Paginator {
	if config.PageDelay < 0 {
		config.PageDelay = 0
	}

	logger := logging.NewLogger(logging.ComponentPagination)
	if config.Logger != nil {
		logger = *config.Logger
	}

	return &Paginator{
		fetcher: fetcher,
		config:  config,
		logger:  logger,
	}
}

// Option configures a single traversal.
type Option func(*options)

type options struct {
	start Position
}

// WithStartCursor starts the traversal at the page addressed by token
// instead of the first page.
func WithStartCursor(token string) Option {
	return WithStartPosition(Position{Token: token})
}

// WithStartPosition resumes a traversal at a Position taken from an earlier
// Stream, dropping the records of the start page that were already yielded.
func WithStartPosition(pos Position) Option {
	return func(o *options) {
		o.start = pos
	}
}

// Paginate starts a cursor traversal of desc. Nothing is requested until the
// first call to Next. A nil normalizer keeps raw items; a nil condition
// reads until exhaustion.
func (p *Paginator) Paginate(ctx context.Context, desc Descriptor, normalizer parse.Normalizer, cond Condition, opts ...Option) *Stream {
	if err := desc.Validate(); err != nil {
		return Failed(err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	source := &cursorSource{
		fetcher: p.fetcher,
		desc:    desc,
		next:    o.start.Token,
	}
	s := p.newStream(ctx, desc, source, normalizer, cond, "paginate")
	s.skip = max(o.start.Skip, 0)
	return s
}

// Batch fetches ids in chunks of desc.BatchSize, one request per chunk, and
// yields the records of all chunks in input order. Chunks are never paged
// further. A chunk the API answers with not found contributes zero records;
// callers needing one record per id must reconcile counts themselves.
func (p *Paginator) Batch(ctx context.Context, desc Descriptor, ids []string, normalizer parse.Normalizer, cond Condition) *Stream {
	if err := desc.Validate(); err != nil {
		return Failed(err)
	}
	if desc.IDParam == "" {
		return Failed(fmt.Errorf("%w: batch requires an id parameter", ErrInvalidDescriptor))
	}

	source := &batchSource{
		fetcher: p.fetcher,
		desc:    desc,
		chunks:  slices.Collect(Chunk(ids, desc.batchSize())),
	}
	s := p.newStream(ctx, desc, source, normalizer, cond, "batch")
	source.onEmpty = func(chunk []string, err error) {
		s.logger.Debug().
			Err(err).
			Int("ids", len(chunk)).
			Msg("Batch chunk not found, yielding no records")
	}
	return s
}

func (p *Paginator) newStream(ctx context.Context, desc Descriptor, source pageSource, normalizer parse.Normalizer, cond Condition, mode string) *Stream {
	if normalizer == nil {
		normalizer = parse.Raw(nil)
	}

	var pacer *rate.Limiter
	if p.config.PageDelay > 0 {
		pacer = rate.NewLimiter(rate.Every(p.config.PageDelay), 1)
	}

	logger := p.logger.With().
		Str("traversal_id", uuid.NewString()).
		Str("endpoint", desc.name()).
		Str("mode", mode).
		Logger()

	return &Stream{
		ctx:        ctx,
		source:     source,
		normalizer: normalizer,
		cond:       cond,
		pacer:      pacer,
		logger:     logger,
		endpoint:   desc.name(),
		state:      StateFetching,
	}
}
