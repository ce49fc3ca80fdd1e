// Package youtube exposes typed retrieval methods for the YouTube Data API
// v3. Each method pairs an endpoint descriptor with a default normalizer and
// runs it through the pagination engine. List methods come in two flavors:
// a Stream variant that yields records lazily and a plain variant that
// collects them.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
	"github.com/rs/zerolog"
)

// ErrInvalidArgument is returned for caller mistakes caught before any request.
var ErrInvalidArgument = errors.New("invalid argument")

// Config holds service configuration.
type Config struct {
	// Pagination configures page pacing.
	Pagination pagination.Config

	// Clock stamps collection_timestamp. Defaults to parse.DefaultClock.
	Clock parse.Clock

	// Logger overrides the package logger when set.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Pagination: pagination.DefaultConfig(),
		Clock:      parse.DefaultClock,
	}
}

// Service is the entry point for endpoint methods. It is safe for concurrent
// use; every call runs its own traversal.
type Service struct {
	fetcher   pagination.Fetcher
	paginator *pagination.Paginator
	clock     parse.Clock
	logger    zerolog.Logger
}

// NewService creates a service on top of a fetcher, usually a *client.Client.
func NewService(fetcher pagination.Fetcher, cfg Config) *Service {
	if cfg.Clock == nil {
		cfg.Clock = parse.DefaultClock
	}

	logger := logging.NewLogger(logging.ComponentYouTube)
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	if cfg.Pagination.Logger == nil {
		cfg.Pagination.Logger = &logger
	}

	return &Service{
		fetcher:   fetcher,
		paginator: pagination.New(fetcher, cfg.Pagination),
		clock:     cfg.Clock,
		logger:    logger,
	}
}

// ChannelIDFromUsername resolves a legacy username to its channel id.
func (s *Service) ChannelIDFromUsername(ctx context.Context, username string, opts ...Option) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}

	o := collectOptions(opts)
	params := url.Values{}
	params.Set("part", "id")
	params.Set("forUsername", username)
	mergeParams(params, o.params)

	doc, err := s.fetcher.Fetch(ctx, "channels", params)
	if err != nil {
		return "", fmt.Errorf("resolve user %q: %w", username, err)
	}

	items, _ := doc["items"].([]any)
	for _, raw := range items {
		if obj, ok := raw.(map[string]any); ok {
			if id, ok := obj["id"].(string); ok && id != "" {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("resolve user %q: %w", username, client.ErrNotFound)
}

// requireID rejects a blank id before any request is made.
func requireID(kind, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s id is required", ErrInvalidArgument, kind)
	}
	return nil
}

// one runs a batch lookup for a single id. An empty result is ErrNotFound.
func (s *Service) one(stream *pagination.Stream, kind, id string) (parse.Record, error) {
	recs, err := pagination.Collect(stream)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%s %q: %w", kind, id, client.ErrNotFound)
	}
	return recs[0], nil
}

// batch builds a batch stream for ids. No ids is a clean empty traversal.
func (s *Service) batch(ctx context.Context, desc pagination.Descriptor, ids Identifier, normalizer parse.Normalizer, cond pagination.Condition) *pagination.Stream {
	return s.paginator.Batch(ctx, desc, ids.IDs(), normalizer, cond)
}

// baseParams builds part plus fixed parameters, then applies caller overrides.
func baseParams(o callOptions, defaultParts []string, fixed map[string]string) url.Values {
	params := url.Values{}
	parts := defaultParts
	if len(o.parts) > 0 {
		parts = o.parts
	}
	params.Set("part", strings.Join(parts, ","))
	for k, v := range fixed {
		if v != "" {
			params.Set(k, v)
		}
	}
	mergeParams(params, o.params)
	return params
}

func mergeParams(dst, src url.Values) {
	for k, vs := range src {
		dst[k] = append([]string(nil), vs...)
	}
}

// pageSize picks maxResults per request: the endpoint limit, or less when
// the caller wants fewer records than that.
func pageSize(limit, capped int) int {
	if capped > 0 && capped < limit {
		return capped
	}
	return limit
}
