package youtube

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Sternrassler/ytdata-client/internal/testutil"
)

func threadItem(id string, replies int) map[string]any {
	return map[string]any{
		"id": id,
		"snippet": map[string]any{
			"videoId":         "vid",
			"totalReplyCount": replies,
			"topLevelComment": map[string]any{
				"id": id,
				"snippet": map[string]any{
					"videoId":           "vid",
					"textDisplay":       "top " + id,
					"authorDisplayName": "author",
					"likeCount":         3,
					"publishedAt":       "2024-01-01T00:00:00Z",
				},
			},
		},
	}
}

func replyItem(id, parent string) map[string]any {
	return map[string]any{
		"id": id,
		"snippet": map[string]any{
			"videoId":     "vid",
			"textDisplay": "reply " + id,
			"parentId":    parent,
			"publishedAt": "2024-01-02T00:00:00Z",
		},
	}
}

func setupComments(mock *testutil.MockAPI) {
	mock.SetPages("/commentThreads", map[string]string{
		"":   testutil.ItemsPage("T2", threadItem("c1", 2), threadItem("c2", 0)),
		"T2": testutil.ItemsPage("", threadItem("c3", 1)),
	})
	mock.SetHandler("/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("parentId") {
		case "c1":
			w.Write([]byte(testutil.ItemsPage("", replyItem("c1.r1", "c1"), replyItem("c1.r2", "c1"))))
		case "c3":
			w.Write([]byte(testutil.ItemsPage("", replyItem("c3.r1", "c3"))))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestVideoComments_TopLevelOnly(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	setupComments(mock)

	svc := newTestService(t, mock)
	recs, err := svc.VideoComments(context.Background(), "vid", false)
	if err != nil {
		t.Fatalf("VideoComments() error = %v", err)
	}

	want := []string{"c1", "c2", "c3"}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, rec := range recs {
		if got := rec.String("comment_id"); got != want[i] {
			t.Errorf("record %d comment_id = %q, want %q", i, got, want[i])
		}
	}
	if n := len(mock.RequestsFor("/comments")); n != 0 {
		t.Errorf("made %d reply requests, want 0", n)
	}

	q := mock.RequestsFor("/commentThreads")[0].Query
	if got := q.Get("textFormat"); got != "plainText" {
		t.Errorf("textFormat = %q, want plainText", got)
	}
	if got := q.Get("maxResults"); got != "100" {
		t.Errorf("maxResults = %q, want 100", got)
	}
}

func TestVideoComments_WithReplies(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	setupComments(mock)

	svc := newTestService(t, mock)
	recs, err := svc.VideoComments(context.Background(), "vid", true)
	if err != nil {
		t.Fatalf("VideoComments() error = %v", err)
	}

	want := []string{"c1", "c2", "c3", "c1.r1", "c1.r2", "c3.r1"}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, rec := range recs {
		if got := rec.String("comment_id"); got != want[i] {
			t.Errorf("record %d comment_id = %q, want %q", i, got, want[i])
		}
	}
	if got := recs[3].String("comment_parent_id"); got != "c1" {
		t.Errorf("reply parent = %q, want c1", got)
	}
	if n := len(mock.RequestsFor("/comments")); n != 2 {
		t.Errorf("made %d reply requests, want 2", n)
	}
}

func TestVideoComments_SharedCap(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	setupComments(mock)

	svc := newTestService(t, mock)
	recs, err := svc.VideoComments(context.Background(), "vid", true, WithMaxResults(4))
	if err != nil {
		t.Fatalf("VideoComments() error = %v", err)
	}

	want := []string{"c1", "c2", "c3", "c1.r1"}
	if len(recs) != len(want) {
		t.Fatalf("got %d records, want %d", len(recs), len(want))
	}
	for i, rec := range recs {
		if got := rec.String("comment_id"); got != want[i] {
			t.Errorf("record %d comment_id = %q, want %q", i, got, want[i])
		}
	}

	reqs := mock.RequestsFor("/comments")
	if len(reqs) != 1 {
		t.Fatalf("made %d reply requests, want 1", len(reqs))
	}
	if got := reqs[0].Query.Get("maxResults"); got != "1" {
		t.Errorf("reply maxResults = %q, want 1", got)
	}
}

func TestVideoComments_CommentsDisabled(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetResponse("/commentThreads", testutil.NewErrorResponse(http.StatusForbidden, "commentsDisabled", "comments disabled"))

	svc := newTestService(t, mock)
	_, err := svc.VideoComments(context.Background(), "vid", true)
	if err == nil {
		t.Fatal("VideoComments() error = nil, want error")
	}

	if _, err := svc.VideoComments(context.Background(), "", false); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty video id error = %v, want ErrInvalidArgument", err)
	}
}
