// Package client provides the YouTube Data API HTTP transport with retry,
// circuit breaking and response classification.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/quota"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// DefaultBaseURL is the Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// maxBodySize bounds how much of a response body is read.
const maxBodySize = 32 << 20

// ErrorClass represents a classification of request failures for retry and metrics.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents quota and rate limit rejections.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// classifyStatus maps an HTTP status to an ErrorClass ("" for success).
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// BreakerConfig configures the circuit breaker around each attempt.
type BreakerConfig struct {
	// ConsecutiveFailures trips the breaker. Zero disables it.
	ConsecutiveFailures uint32

	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// Config holds the client configuration.
type Config struct {
	// APIKey is the Data API key (REQUIRED). Validation of the key happens elsewhere.
	APIKey string

	// BaseURL of the API, without trailing slash.
	BaseURL string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP attempt.
	Timeout time.Duration

	// Retry policy for server and network errors.
	Retry RetryConfig

	// Breaker around each attempt.
	Breaker BreakerConfig

	// Guard is optional; when set, credential and quota rejections block later calls.
	Guard *quota.Guard

	// Logger overrides the package logger when set.
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:    apiKey,
		BaseURL:   DefaultBaseURL,
		UserAgent: "ytdata-client/0.1.0",
		Timeout:   20 * time.Second,
		Retry:     DefaultRetryConfig(),
		Breaker: BreakerConfig{
			ConsecutiveFailures: 5,
			OpenTimeout:         30 * time.Second,
		},
	}
}

// Client is the Data API transport.
// It holds no mutable state of its own and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	guard      *quota.Guard
	config     Config
	logger     zerolog.Logger
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New creates a new Data API client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	if cfg.Retry.MaxAttempts < 1 {
		return nil, fmt.Errorf("retry max_attempts must be >= 1 (got %d)", cfg.Retry.MaxAttempts)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	logger := logging.NewLogger(logging.ComponentClient)
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		guard:  cfg.Guard,
		config: cfg,
		logger: logger,
	}

	if cfg.Breaker.ConsecutiveFailures > 0 {
		threshold := cfg.Breaker.ConsecutiveFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "ytdata-api",
			Timeout: cfg.Breaker.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			},
		})
	}

	return c, nil
}

// Get performs a GET request against path (relative to the base URL) with
// params plus the API key. Server and network errors are retried; any other
// response is returned as-is for the caller to classify.
func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	endpoint := strings.Trim(path, "/")

	startTime := time.Now()
	defer func() {
		apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.guard != nil {
		if err := c.guard.Allow(ctx); err != nil {
			apiRequestsTotal.WithLabelValues(endpoint, "blocked").Inc()
			return nil, err
		}
	}

	reqURL := c.buildURL(endpoint, params)
	safeURL := redactKey(reqURL)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", safeURL).
		Msg("Executing API request")

	var resp *Response
	retryErr := retryWithBackoff(ctx, c.config.Retry, func() error {
		r, err := c.attempt(ctx, reqURL, safeURL)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, classifyAttemptError)

	if retryErr != nil {
		c.recordFailure(endpoint, retryErr)
		return nil, retryErr
	}

	apiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	if class := classifyStatus(resp.StatusCode); class != "" {
		apiErrorsTotal.WithLabelValues(string(class)).Inc()
		c.observeRejection(ctx, endpoint, resp)
	}

	return resp, nil
}

// Fetch performs Get and passes the result through Load.
func (c *Client) Fetch(ctx context.Context, path string, params url.Values) (Document, error) {
	resp, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return Load(resp.StatusCode, resp.Body)
}

// attempt runs a single HTTP round trip through the breaker.
func (c *Client) attempt(ctx context.Context, reqURL, safeURL string) (*Response, error) {
	run := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		req.Header.Set("Accept", "application/json")

		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(redactErr(err)).Str("url", safeURL).Msg("HTTP request failed")
			return nil, &TransportError{URL: safeURL, Err: redactErr(err)}
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodySize))
		if err != nil {
			return nil, &TransportError{URL: safeURL, Err: fmt.Errorf("read response body: %w", err)}
		}

		resp := &Response{
			StatusCode: httpResp.StatusCode,
			Header:     httpResp.Header,
			Body:       body,
		}

		if classifyStatus(resp.StatusCode) == ErrorClassServer {
			c.logger.Warn().
				Str("url", safeURL).
				Int("status", resp.StatusCode).
				Msg("API server error")
			return nil, newHTTPError(resp.StatusCode, resp.Body)
		}
		return resp, nil
	}

	var (
		out interface{}
		err error
	)
	if c.breaker != nil {
		out, err = c.breaker.Execute(run)
	} else {
		out, err = run()
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &TransportError{URL: safeURL, Err: err}
		}
		return nil, err
	}
	return out.(*Response), nil
}

// classifyAttemptError decides the retry class of an attempt failure.
func classifyAttemptError(err error) ErrorClass {
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Breaker is open; retrying only burns attempts
			return ""
		}
		if errors.Is(err, context.Canceled) {
			return ""
		}
		return ErrorClassNetwork
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.ErrorClass
	}
	return ""
}

// recordFailure updates metrics for a request that produced no response.
func (c *Client) recordFailure(endpoint string, err error) {
	class := classifyAttemptError(err)
	status := "network_error"

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		status = strconv.Itoa(httpErr.StatusCode)
	}
	if class == "" {
		class = ErrorClassNetwork
	}

	apiErrorsTotal.WithLabelValues(string(class)).Inc()
	apiRequestsTotal.WithLabelValues(endpoint, status).Inc()

	c.logger.Error().
		Err(err).
		Str("endpoint", endpoint).
		Str("error_class", string(class)).
		Msg("API request failed")
}

// observeRejection reports credential and quota rejections to the guard.
func (c *Client) observeRejection(ctx context.Context, endpoint string, resp *Response) {
	httpErr := newHTTPError(resp.StatusCode, resp.Body)

	c.logger.Warn().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Str("kind", string(httpErr.Kind)).
		Strs("reasons", httpErr.Reasons).
		Msg("API request rejected")

	if c.guard == nil {
		return
	}

	var reason quota.Reason
	switch httpErr.Kind {
	case KindInvalidCredential:
		reason = quota.ReasonInvalidCredential
	case KindQuotaExceeded:
		reason = quota.ReasonRateLimited
		if DailyQuotaExhausted(httpErr) {
			reason = quota.ReasonQuotaExceeded
		}
	default:
		return
	}

	if err := c.guard.Report(ctx, reason, strings.Join(httpErr.Reasons, ",")); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to record quota block")
	}
}

// buildURL joins base URL, path and params with the API key.
func (c *Client) buildURL(endpoint string, params url.Values) string {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}
	q.Set("key", c.config.APIKey)
	return c.config.BaseURL + "/" + endpoint + "?" + q.Encode()
}

// redactKey replaces the key query parameter so URLs can be logged.
func redactKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<unparseable url>"
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// redactErr strips the request URL (and with it the key) from *url.Error.
func redactErr(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &url.Error{Op: urlErr.Op, URL: redactKey(urlErr.URL), Err: urlErr.Err}
	}
	return err
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
