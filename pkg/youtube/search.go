package youtube

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
	"github.com/google/go-querystring/query"
)

// DefaultSearchResults is the record cap of Search when no WithMaxResults is given.
const DefaultSearchResults = 5

var (
	searchTypes     = []string{"video", "channel", "playlist"}
	searchOrders    = []string{"date", "rating", "relevance", "title", "videoCount", "viewCount"}
	safeSearchModes = []string{"moderate", "strict", "none"}
	eventTypes      = []string{"completed", "live", "upcoming"}
	videoDurations  = []string{"any", "short", "medium", "long"}
)

// SearchParams are the filters of a search request. Empty fields are omitted.
type SearchParams struct {
	// Query supports | for OR and - for NOT, e.g. "boat|fishing".
	Query             string    `url:"q,omitempty"`
	ChannelID         string    `url:"channelId,omitempty"`
	Type              string    `url:"type,omitempty"`
	Order             string    `url:"order,omitempty"`
	PublishedAfter    time.Time `url:"publishedAfter,omitempty" layout:"2006-01-02T15:04:05Z"`
	PublishedBefore   time.Time `url:"publishedBefore,omitempty" layout:"2006-01-02T15:04:05Z"`
	Location          string    `url:"location,omitempty"`
	LocationRadius    string    `url:"locationRadius,omitempty"`
	RegionCode        string    `url:"regionCode,omitempty"`
	SafeSearch        string    `url:"safeSearch,omitempty"`
	RelevanceLanguage string    `url:"relevanceLanguage,omitempty"`
	EventType         string    `url:"eventType,omitempty"`
	TopicID           string    `url:"topicId,omitempty"`
	VideoDuration     string    `url:"videoDuration,omitempty"`
	RelatedToVideoID  string    `url:"relatedToVideoId,omitempty"`
}

// AnyOf joins search terms into an OR query.
func AnyOf(terms ...string) string {
	return strings.Join(terms, "|")
}

// withDefaults fills type and order the way the API documents them.
func (p SearchParams) withDefaults() SearchParams {
	if p.Type == "" {
		p.Type = "video"
	}
	if p.Order == "" {
		p.Order = "relevance"
	}
	if !p.PublishedAfter.IsZero() {
		p.PublishedAfter = p.PublishedAfter.UTC()
	}
	if !p.PublishedBefore.IsZero() {
		p.PublishedBefore = p.PublishedBefore.UTC()
	}
	if p.Location != "" && p.LocationRadius == "" {
		p.LocationRadius = "1km"
	}
	return p
}

// Validate checks enumerated fields against the values the API accepts.
func (p SearchParams) Validate() error {
	p = p.withDefaults()

	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"type", p.Type, searchTypes},
		{"order", p.Order, searchOrders},
		{"safeSearch", p.SafeSearch, safeSearchModes},
		{"eventType", p.EventType, eventTypes},
		{"videoDuration", p.VideoDuration, videoDurations},
	}
	for _, c := range checks {
		if c.value != "" && !slices.Contains(c.allowed, c.value) {
			return fmt.Errorf("%w: %s must be one of %s (got %q)", ErrInvalidArgument, c.name, strings.Join(c.allowed, ", "), c.value)
		}
	}

	if (p.EventType != "" || p.VideoDuration != "" || p.RelatedToVideoID != "") && p.Type != "video" {
		return fmt.Errorf("%w: eventType, videoDuration and relatedToVideoId require type video", ErrInvalidArgument)
	}
	if !p.PublishedAfter.IsZero() && !p.PublishedBefore.IsZero() && !p.PublishedAfter.Before(p.PublishedBefore) {
		return fmt.Errorf("%w: publishedAfter must be before publishedBefore", ErrInvalidArgument)
	}
	return nil
}

// SearchStream streams search results. Without WithMaxResults it stops after
// DefaultSearchResults records. The API itself stops after about 500 results
// per query; narrow PublishedAfter/PublishedBefore for exhaustive searches.
func (s *Service) SearchStream(ctx context.Context, params SearchParams, opts ...Option) *pagination.Stream {
	if err := params.Validate(); err != nil {
		return pagination.Failed(err)
	}

	values, err := query.Values(params.withDefaults())
	if err != nil {
		return pagination.Failed(fmt.Errorf("encode search params: %w", err))
	}

	o := collectOptions(opts)
	values.Set("part", "snippet")
	if len(o.parts) > 0 {
		values.Set("part", strings.Join(o.parts, ","))
	}
	mergeParams(values, o.params)

	limit := o.limit(DefaultSearchResults)
	desc := pagination.Descriptor{
		Name:     "search",
		Path:     "search",
		Params:   values,
		PageSize: pageSize(50, limit),
	}
	// Only date order lists newest first, where a cutoff can end the search
	if values.Get("order") == "date" {
		desc.TimeField = parse.VideoPublishDate
	}
	return s.paginator.Paginate(ctx, desc, o.normalizerOr(parse.SearchResult(s.clock)), o.condition(desc, DefaultSearchResults), o.paginateOptions()...)
}

// Search returns search results.
func (s *Service) Search(ctx context.Context, params SearchParams, opts ...Option) ([]parse.Record, error) {
	recs, err := pagination.Collect(s.SearchStream(ctx, params, opts...))
	if err != nil {
		return recs, fmt.Errorf("search: %w", err)
	}
	return recs, nil
}

// RecommendedVideos returns videos related to videoID, by relevance.
func (s *Service) RecommendedVideos(ctx context.Context, videoID string, opts ...Option) ([]parse.Record, error) {
	if err := requireID("video", videoID); err != nil {
		return nil, err
	}
	return s.Search(ctx, SearchParams{
		RelatedToVideoID: videoID,
		Type:             "video",
		Order:            "relevance",
	}, opts...)
}
