//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/ytdata-client/internal/testutil"
	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/Sternrassler/ytdata-client/pkg/parse"
	"github.com/Sternrassler/ytdata-client/pkg/quota"
	"github.com/Sternrassler/ytdata-client/pkg/youtube"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// testTransport redirects requests for the public API host to the mock server.
type testTransport struct {
	mock *testutil.MockAPI
}

func (t *testTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, err := url.Parse(t.mock.URL())
	if err != nil {
		return nil, err
	}
	if req.URL.Host == "www.googleapis.com" {
		req.URL.Scheme = target.Scheme
		req.URL.Host = target.Host
		req.URL.Path = req.URL.Path[len("/youtube/v3"):]
	}
	return http.DefaultTransport.RoundTrip(req)
}

func newClient(t *testing.T, baseURL string, guard *quota.Guard) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("integration-key")
	cfg.BaseURL = baseURL
	cfg.Guard = guard
	cfg.Retry.InitialBackoff = 10 * time.Millisecond
	cfg.Retry.MaxBackoff = 50 * time.Millisecond

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func newService(c *client.Client) *youtube.Service {
	return youtube.NewService(c, youtube.Config{
		Pagination: pagination.Config{PageDelay: 5 * time.Millisecond},
		Clock:      parse.DefaultClock,
	})
}

func playlistItem(id string) map[string]any {
	return map[string]any{"snippet": map[string]any{
		"publishedAt": "2024-01-01T00:00:00Z",
		"resourceId":  map[string]any{"videoId": id},
	}}
}

// TestSharedQuotaBlock: a quota rejection seen by one client blocks every
// client sharing the Redis state, without further API calls.
func TestSharedQuotaBlock(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/videos", testutil.NewQuotaExceededResponse())

	ctx := context.Background()
	first := newService(newClient(t, mock.URL(), quota.NewGuard(redisClient, zerolog.Nop())))
	second := newService(newClient(t, mock.URL(), quota.NewGuard(redisClient, zerolog.Nop())))

	_, err := first.Video(ctx, "v1")
	if !client.IsQuotaExceeded(err) {
		t.Fatalf("first client error = %v, want quota exceeded", err)
	}

	_, err = second.Video(ctx, "v2")
	if !errors.Is(err, quota.ErrBlocked) {
		t.Fatalf("second client error = %v, want ErrBlocked", err)
	}

	var blocked *quota.BlockedError
	if !errors.As(err, &blocked) || blocked.Reason != quota.ReasonQuotaExceeded {
		t.Errorf("block = %+v, want reason %s", blocked, quota.ReasonQuotaExceeded)
	}

	if n := mock.GetRequestCount(); n != 1 {
		t.Errorf("made %d API requests, want 1", n)
	}

	ttl, err := redisClient.TTL(ctx, quota.RedisKeyState).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > 25*time.Hour {
		t.Errorf("state TTL = %s, want until next quota reset", ttl)
	}
}

// TestTraversalWithRetry runs a paged traversal where the second page needs
// a retry after a server error.
func TestTraversalWithRetry(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	var (
		mu       sync.Mutex
		failures = map[string]int{"P2": 1}
	)
	mock.SetHandler("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")

		mu.Lock()
		fail := failures[token] > 0
		if fail {
			failures[token]--
		}
		mu.Unlock()

		if fail {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		switch token {
		case "":
			w.Write([]byte(testutil.ItemsPage("P2", playlistItem("a"), playlistItem("b"))))
		case "P2":
			w.Write([]byte(testutil.ItemsPage("", playlistItem("c"))))
		}
	})

	svc := newService(newClient(t, mock.URL(), nil))
	s := svc.PlaylistVideosStream(context.Background(), "PLx")
	recs, err := pagination.Collect(s)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("got %d records, want 3", len(recs))
	}
	if s.State() != pagination.StateExhausted {
		t.Errorf("state = %v, want exhausted", s.State())
	}
	if s.Pages() != 2 {
		t.Errorf("pages = %d, want 2", s.Pages())
	}
	if n := len(mock.RequestsFor("/playlistItems")); n != 3 {
		t.Errorf("made %d requests, want 3", n)
	}
}

// TestDefaultBaseURL checks that the default base URL maps onto resource
// paths the way the real API expects.
func TestDefaultBaseURL(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/channels", testutil.NewJSONResponse(testutil.ItemsPage("", map[string]any{"id": "UCabc"})))

	c := newClient(t, client.DefaultBaseURL, nil)
	c.SetHTTPClient(&http.Client{Transport: &testTransport{mock: mock}, Timeout: 5 * time.Second})

	rec, err := newService(c).Channel(context.Background(), "UCabc")
	if err != nil {
		t.Fatalf("Channel() error = %v", err)
	}
	if got := rec.String("channel_id"); got != "UCabc" {
		t.Errorf("channel_id = %q, want UCabc", got)
	}
}

// TestConcurrentTraversals runs independent streams on one service.
func TestConcurrentTraversals(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetHandler("/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("playlistId")
		switch r.URL.Query().Get("pageToken") {
		case "":
			w.Write([]byte(testutil.ItemsPage("next", playlistItem(id+"-1"))))
		default:
			w.Write([]byte(testutil.ItemsPage("", playlistItem(id+"-2"))))
		}
	})

	svc := newService(newClient(t, mock.URL(), nil))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := range workers {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			recs, err := svc.PlaylistVideos(context.Background(), id)
			if err != nil {
				errs <- err
				return
			}
			if len(recs) != 2 || recs[0].String("video_id") != id+"-1" || recs[1].String("video_id") != id+"-2" {
				errs <- fmt.Errorf("playlist %s: unexpected records %v", id, recs)
			}
		}(fmt.Sprintf("PL%d", i))
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}
