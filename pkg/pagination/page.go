package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/Sternrassler/ytdata-client/pkg/client"
)

// Fetcher performs one request and returns the decoded document.
// *client.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, path string, params url.Values) (client.Document, error)
}

// page is one decoded response. It is consumed and dropped right away.
type page struct {
	items    []any
	next     string
	total    int64
	hasTotal bool
}

// decodePage pulls items, nextPageToken and pageInfo.totalResults out of a
// list response. Missing or mistyped parts are treated as absent.
func decodePage(doc client.Document) page {
	var p page

	if items, ok := doc["items"].([]any); ok {
		p.items = items
	}
	if next, ok := doc["nextPageToken"].(string); ok {
		p.next = next
	}
	if info, ok := doc["pageInfo"].(map[string]any); ok {
		switch n := info["totalResults"].(type) {
		case json.Number:
			if v, err := n.Int64(); err == nil {
				p.total, p.hasTotal = v, true
			}
		case float64:
			p.total, p.hasTotal = int64(n), true
		}
	}
	return p
}

// pageSource produces the pages of one traversal in order.
type pageSource interface {
	// done reports whether every page has been fetched.
	done() bool

	// fetch requests the next page. It must not be called once done is true.
	fetch(ctx context.Context) (page, error)

	// cursor is the token of the next unfetched page, "" if none.
	cursor() string
}

// cursorSource follows nextPageToken until a page has none.
type cursorSource struct {
	fetcher   Fetcher
	desc      Descriptor
	next      string
	exhausted bool
}

func (s *cursorSource) done() bool {
	return s.exhausted
}

func (s *cursorSource) fetch(ctx context.Context) (page, error) {
	doc, err := s.fetcher.Fetch(ctx, s.desc.Path, s.desc.pageParams(s.next))
	if err != nil {
		return page{}, fmt.Errorf("fetch %s page: %w", s.desc.name(), err)
	}

	p := decodePage(doc)
	s.next = p.next
	s.exhausted = p.next == ""
	return p, nil
}

func (s *cursorSource) cursor() string {
	return s.next
}

// batchSource issues one cursor-less request per chunk of ids.
type batchSource struct {
	fetcher Fetcher
	desc    Descriptor
	chunks  [][]string
	idx     int
	onEmpty func(ids []string, err error)
}

func (s *batchSource) done() bool {
	return s.idx >= len(s.chunks)
}

func (s *batchSource) fetch(ctx context.Context) (page, error) {
	ids := s.chunks[s.idx]
	s.idx++

	doc, err := s.fetcher.Fetch(ctx, s.desc.Path, s.desc.batchParams(ids))
	if err != nil {
		// A chunk of unknown ids is an empty result, not a failure
		if errors.Is(err, client.ErrNotFound) {
			if s.onEmpty != nil {
				s.onEmpty(ids, err)
			}
			return page{}, nil
		}
		return page{}, fmt.Errorf("fetch %s batch %d/%d: %w", s.desc.name(), s.idx, len(s.chunks), err)
	}

	p := decodePage(doc)
	p.next = ""
	return p, nil
}

func (s *batchSource) cursor() string {
	return ""
}
