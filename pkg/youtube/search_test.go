package youtube

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/ytdata-client/internal/testutil"
)

func searchItem(videoID string) map[string]any {
	return map[string]any{
		"id": map[string]any{"kind": "youtube#video", "videoId": videoID},
		"snippet": map[string]any{
			"publishedAt": "2024-01-01T00:00:00Z",
			"channelId":   "UCxyz",
			"title":       "t " + videoID,
		},
	}
}

func TestSearch_DefaultCap(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetPages("/search", map[string]string{
		"": testutil.ItemsPage("S2",
			searchItem("a"), searchItem("b"), searchItem("c"),
			searchItem("d"), searchItem("e"), searchItem("f"),
		),
	})

	svc := newTestService(t, mock)
	after := time.Date(2024, 1, 1, 1, 0, 0, 0, time.FixedZone("CET", 3600))
	recs, err := svc.Search(context.Background(), SearchParams{
		Query:          AnyOf("boat", "fishing"),
		PublishedAfter: after,
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(recs) != DefaultSearchResults {
		t.Errorf("got %d records, want %d", len(recs), DefaultSearchResults)
	}
	if got := recs[0].String("video_id"); got != "a" {
		t.Errorf("first video_id = %q, want a", got)
	}

	reqs := mock.RequestsFor("/search")
	if len(reqs) != 1 {
		t.Fatalf("got %d requests, want 1", len(reqs))
	}
	q := reqs[0].Query
	tests := map[string]string{
		"q":              "boat|fishing",
		"type":           "video",
		"order":          "relevance",
		"part":           "snippet",
		"maxResults":     "5",
		"publishedAfter": "2024-01-01T00:00:00Z",
	}
	for key, want := range tests {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	if q.Has("publishedBefore") {
		t.Errorf("publishedBefore sent for zero time: %q", q.Get("publishedBefore"))
	}
}

func TestSearch_Unlimited(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetPages("/search", map[string]string{
		"":   testutil.ItemsPage("S2", searchItem("a"), searchItem("b")),
		"S2": testutil.ItemsPage("", searchItem("c")),
	})

	svc := newTestService(t, mock)
	recs, err := svc.Search(context.Background(), SearchParams{Query: "x"}, WithMaxResults(0))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("got %d records, want 3", len(recs))
	}
	if got := mock.RequestsFor("/search")[0].Query.Get("maxResults"); got != "50" {
		t.Errorf("maxResults = %q, want 50", got)
	}
}

func TestSearch_CutoffOnlyForDateOrder(t *testing.T) {
	dated := func(videoID, published string) map[string]any {
		item := searchItem(videoID)
		item["snippet"].(map[string]any)["publishedAt"] = published
		return item
	}
	page := testutil.ItemsPage("",
		dated("a", "2024-03-01T00:00:00Z"),
		dated("b", "2023-06-01T00:00:00Z"),
		dated("c", "2024-02-01T00:00:00Z"),
	)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		order string
		want  int
	}{
		{"date", 1},
		{"relevance", 3},
		{"viewCount", 3},
	}

	for _, tt := range tests {
		t.Run(tt.order, func(t *testing.T) {
			mock := testutil.NewMockAPI()
			defer mock.Close()
			mock.SetResponse("/search", testutil.NewJSONResponse(page))

			svc := newTestService(t, mock)
			recs, err := svc.Search(context.Background(), SearchParams{Query: "q", Order: tt.order},
				WithMaxResults(0), WithCutoff(cutoff))
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(recs) != tt.want {
				t.Errorf("got %d records, want %d", len(recs), tt.want)
			}
		})
	}
}

func TestSearchParams_Validate(t *testing.T) {
	tests := []struct {
		name    string
		params  SearchParams
		wantErr bool
	}{
		{name: "defaults", params: SearchParams{Query: "x"}},
		{name: "channel search", params: SearchParams{Type: "channel", Order: "videoCount"}},
		{name: "live videos", params: SearchParams{EventType: "live", VideoDuration: "short"}},
		{name: "unknown type", params: SearchParams{Type: "movie"}, wantErr: true},
		{name: "unknown order", params: SearchParams{Order: "random"}, wantErr: true},
		{name: "unknown safe search", params: SearchParams{SafeSearch: "off"}, wantErr: true},
		{name: "event type needs video", params: SearchParams{Type: "channel", EventType: "live"}, wantErr: true},
		{name: "duration needs video", params: SearchParams{Type: "playlist", VideoDuration: "long"}, wantErr: true},
		{
			name: "inverted window",
			params: SearchParams{
				PublishedAfter:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				PublishedBefore: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.params.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestSearch_InvalidParamsMakeNoRequest(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	svc := newTestService(t, mock)
	_, err := svc.Search(context.Background(), SearchParams{Type: "movie"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Search() error = %v, want ErrInvalidArgument", err)
	}
	if n := mock.GetRequestCount(); n != 0 {
		t.Errorf("made %d requests, want 0", n)
	}
}

func TestRecommendedVideos(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse("/search", testutil.NewJSONResponse(testutil.ItemsPage("", searchItem("r1"))))

	svc := newTestService(t, mock)
	recs, err := svc.RecommendedVideos(context.Background(), "seed")
	if err != nil {
		t.Fatalf("RecommendedVideos() error = %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if got := mock.RequestsFor("/search")[0].Query.Get("relatedToVideoId"); got != "seed" {
		t.Errorf("relatedToVideoId = %q, want seed", got)
	}
}
