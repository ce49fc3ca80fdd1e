// Package testutil provides testing utilities for the Data API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockRequest is a request seen by the mock server.
type MockRequest struct {
	Path  string
	Query url.Values
}

// MockAPI is a configurable mock Data API server for testing.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	requests []MockRequest
}

// NewMockAPI creates a new mock API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, MockRequest{
			Path:  r.URL.Path,
			Query: r.URL.Query(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		writeResponse(w, NewErrorResponse(http.StatusNotFound, "notFound", "no handler for "+r.URL.Path))
	}))

	return mock
}

// URL returns the mock server URL, usable as client base URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears recorded requests.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetSequence serves responses in order, repeating the last one once the
// sequence is used up.
func (m *MockAPI) SetSequence(path string, resps ...MockResponse) {
	var (
		mu   sync.Mutex
		next int
	)
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := resps[next]
		if next < len(resps)-1 {
			next++
		}
		mu.Unlock()
		writeResponse(w, resp)
	})
}

// SetPages serves paged JSON bodies keyed by the pageToken query parameter.
// The first page is keyed by "". Unknown tokens get a 400 invalidPageToken.
func (m *MockAPI) SetPages(path string, pages map[string]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("pageToken")]
		if !ok {
			writeResponse(w, NewErrorResponse(http.StatusBadRequest, "invalidPageToken", "unknown page token"))
			return
		}
		writeResponse(w, NewJSONResponse(body))
	})
}

// Requests returns a copy of all recorded requests.
func (m *MockAPI) Requests() []MockRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]MockRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestsFor returns the recorded requests for path.
func (m *MockAPI) RequestsFor(path string) []MockRequest {
	var out []MockRequest
	for _, req := range m.Requests() {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=UTF-8",
		},
	}
}

// NewErrorResponse creates an error response in the Google API error envelope.
func NewErrorResponse(status int, reason, message string) MockResponse {
	payload := map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"errors": []map[string]string{
				{"domain": "youtube", "reason": reason, "message": message},
			},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("marshal error payload: %v", err))
	}
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=UTF-8",
		},
	}
}

// NewQuotaExceededResponse creates a 403 quotaExceeded response.
func NewQuotaExceededResponse() MockResponse {
	return NewErrorResponse(http.StatusForbidden, "quotaExceeded",
		"The request cannot be completed because you have exceeded your quota.")
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusInternalServerError, "backendError", "Backend Error")
}

// ItemsPage builds a list response body from items and an optional next page token.
func ItemsPage(nextPageToken string, items ...map[string]any) string {
	payload := map[string]any{
		"kind":  "youtube#listResponse",
		"items": items,
		"pageInfo": map[string]any{
			"totalResults":   len(items),
			"resultsPerPage": len(items),
		},
	}
	if items == nil {
		payload["items"] = []map[string]any{}
	}
	if nextPageToken != "" {
		payload["nextPageToken"] = nextPageToken
	}
	body, err := json.Marshal(payload)
	if err != nil {
		panic(fmt.Sprintf("marshal page: %v", err))
	}
	return string(body)
}
