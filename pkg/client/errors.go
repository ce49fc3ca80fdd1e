package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during retry.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrNotFound matches any lookup whose resource does not exist, either
	// reported by the API or inferred from an empty result.
	ErrNotFound = errors.New("resource not found")
)

// ErrorKind is the caller-facing classification of an API failure.
type ErrorKind string

const (
	// KindInvalidCredential means the API key was rejected. Further calls with
	// the same key will fail too.
	KindInvalidCredential ErrorKind = "invalid_credential"

	// KindQuotaExceeded covers daily quota and rate limit rejections.
	// DailyQuotaExhausted tells the two apart.
	KindQuotaExceeded ErrorKind = "quota_exceeded"

	// KindNotFound means the addressed resource does not exist.
	KindNotFound ErrorKind = "not_found"

	// KindBadRequest indicates a caller parameter error.
	KindBadRequest ErrorKind = "bad_request"

	// KindUnexpected is everything else.
	KindUnexpected ErrorKind = "unexpected"
)

var reasonKinds = map[string]ErrorKind{
	"keyInvalid":          KindInvalidCredential,
	"keyExpired":          KindInvalidCredential,
	"accessNotConfigured": KindInvalidCredential,
	"ipRefererBlocked":    KindInvalidCredential,

	"quotaExceeded":         KindQuotaExceeded,
	"dailyLimitExceeded":    KindQuotaExceeded,
	"rateLimitExceeded":     KindQuotaExceeded,
	"userRateLimitExceeded": KindQuotaExceeded,

	"notFound":              KindNotFound,
	"videoNotFound":         KindNotFound,
	"channelNotFound":       KindNotFound,
	"playlistNotFound":      KindNotFound,
	"commentNotFound":       KindNotFound,
	"commentThreadNotFound": KindNotFound,
	"subscriptionNotFound":  KindNotFound,

	"badRequest":               KindBadRequest,
	"invalidParameter":         KindBadRequest,
	"missingRequiredParameter": KindBadRequest,
	"invalidPageToken":         KindBadRequest,
}

// dailyQuotaReasons lift only when the quota resets at Pacific midnight.
// Every other quota_exceeded rejection is a short-term rate limit.
var dailyQuotaReasons = map[string]bool{
	"quotaExceeded":      true,
	"dailyLimitExceeded": true,
}

// DailyQuotaExhausted reports whether err is a rejection because the daily
// quota is used up, as opposed to a rate limit that clears within seconds.
func DailyQuotaExhausted(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Kind != KindQuotaExceeded {
		return false
	}
	for _, reason := range httpErr.Reasons {
		if dailyQuotaReasons[reason] {
			return true
		}
	}
	return false
}

// classifyReasons maps API reason codes to an ErrorKind, falling back to the
// HTTP status when no reason is recognised.
func classifyReasons(status int, reasons []string) ErrorKind {
	for _, reason := range reasons {
		if kind, ok := reasonKinds[reason]; ok {
			return kind
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return KindInvalidCredential
	case http.StatusTooManyRequests:
		return KindQuotaExceeded
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindBadRequest
	default:
		return KindUnexpected
	}
}

// HTTPError is a non-2xx API response.
type HTTPError struct {
	StatusCode int
	Reasons    []string
	Message    string
	Kind       ErrorKind
	ErrorClass ErrorClass
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("API %s error (status %d, reasons %s): %s",
			e.Kind, e.StatusCode, strings.Join(e.Reasons, ","), msg)
	}
	return fmt.Sprintf("API %s error (status %d): %s", e.Kind, e.StatusCode, msg)
}

// Is lets errors.Is(err, ErrNotFound) match not-found responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// DecodeError is returned when a successful response body is not a JSON object.
type DecodeError struct {
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response (status %d): %v", e.StatusCode, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError is a connection or timeout failure.
type TransportError struct {
	// URL is the request URL with the API key redacted.
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error for %s: %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// KindOf returns the ErrorKind carried by err, or "" when err is not an API
// error.
func KindOf(err error) ErrorKind {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind
	}
	return ""
}

// IsInvalidCredential reports whether err is an API key rejection.
func IsInvalidCredential(err error) bool {
	return KindOf(err) == KindInvalidCredential
}

// IsQuotaExceeded reports whether err is a quota or rate limit rejection.
func IsQuotaExceeded(err error) bool {
	return KindOf(err) == KindQuotaExceeded
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// shouldRetry determines if an error should be retried based on its classification.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer:
		return true
	case ErrorClassNetwork:
		return true
	case ErrorClassClient:
		// 4xx errors will fail the same way again
		return false
	case ErrorClassRateLimit:
		// Quota resets daily; sleeping here would stall the caller for hours
		return false
	default:
		return false
	}
}
