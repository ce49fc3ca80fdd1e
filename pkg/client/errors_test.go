package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name       string
		errorClass ErrorClass
		expected   bool
	}{
		{
			name:       "client error should not retry",
			errorClass: ErrorClassClient,
			expected:   false,
		},
		{
			name:       "server error should retry",
			errorClass: ErrorClassServer,
			expected:   true,
		},
		{
			name:       "rate limit should not retry",
			errorClass: ErrorClassRateLimit,
			expected:   false,
		},
		{
			name:       "network error should retry",
			errorClass: ErrorClassNetwork,
			expected:   true,
		},
		{
			name:       "empty error class should not retry",
			errorClass: "",
			expected:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := shouldRetry(tt.errorClass)
			if result != tt.expected {
				t.Errorf("shouldRetry(%q) = %v, want %v", tt.errorClass, result, tt.expected)
			}
		})
	}
}

func TestClassifyReasons(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		reasons []string
		want    ErrorKind
	}{
		{"key invalid", http.StatusBadRequest, []string{"keyInvalid"}, KindInvalidCredential},
		{"quota exceeded", http.StatusForbidden, []string{"quotaExceeded"}, KindQuotaExceeded},
		{"rate limit", http.StatusForbidden, []string{"rateLimitExceeded"}, KindQuotaExceeded},
		{"video not found", http.StatusNotFound, []string{"videoNotFound"}, KindNotFound},
		{"invalid page token", http.StatusBadRequest, []string{"invalidPageToken"}, KindBadRequest},
		{"first known reason wins", http.StatusForbidden, []string{"somethingNew", "dailyLimitExceeded"}, KindQuotaExceeded},
		{"status 401 fallback", http.StatusUnauthorized, nil, KindInvalidCredential},
		{"status 429 fallback", http.StatusTooManyRequests, nil, KindQuotaExceeded},
		{"status 404 fallback", http.StatusNotFound, nil, KindNotFound},
		{"status 400 fallback", http.StatusBadRequest, []string{"unknownReason"}, KindBadRequest},
		{"forbidden without reason", http.StatusForbidden, nil, KindUnexpected},
		{"server error", http.StatusInternalServerError, []string{"backendError"}, KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyReasons(tt.status, tt.reasons); got != tt.want {
				t.Errorf("classifyReasons(%d, %v) = %q, want %q", tt.status, tt.reasons, got, tt.want)
			}
		})
	}
}

func TestHTTPError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *HTTPError
		expected string
	}{
		{
			name: "with reasons and message",
			err: &HTTPError{
				StatusCode: 403,
				Reasons:    []string{"quotaExceeded"},
				Message:    "quota used up",
				Kind:       KindQuotaExceeded,
			},
			expected: "API quota_exceeded error (status 403, reasons quotaExceeded): quota used up",
		},
		{
			name: "no reasons falls back to status text",
			err: &HTTPError{
				StatusCode: 502,
				Kind:       KindUnexpected,
			},
			expected: "API unexpected error (status 502): Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	notFound := fmt.Errorf("fetch video: %w", &HTTPError{StatusCode: 404, Kind: KindNotFound})
	quota := &HTTPError{StatusCode: 403, Kind: KindQuotaExceeded}
	key := &HTTPError{StatusCode: 400, Kind: KindInvalidCredential}
	transport := &TransportError{URL: "http://x", Err: errors.New("connection refused")}

	if !IsNotFound(notFound) {
		t.Error("IsNotFound should match wrapped not-found HTTPError")
	}
	if !errors.Is(notFound, ErrNotFound) {
		t.Error("errors.Is(err, ErrNotFound) should be true")
	}
	if !IsNotFound(fmt.Errorf("lookup: %w", ErrNotFound)) {
		t.Error("IsNotFound should match ErrNotFound sentinel")
	}
	if IsNotFound(quota) {
		t.Error("quota error must not be not-found")
	}
	if !IsQuotaExceeded(quota) {
		t.Error("IsQuotaExceeded should be true")
	}
	if !IsInvalidCredential(key) {
		t.Error("IsInvalidCredential should be true")
	}
	if KindOf(transport) != "" {
		t.Errorf("KindOf(transport) = %q, want empty", KindOf(transport))
	}
}

func TestDailyQuotaExhausted(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"quotaExceeded", newHTTPError(http.StatusForbidden, googleError(403, "quotaExceeded")), true},
		{"dailyLimitExceeded", newHTTPError(http.StatusForbidden, googleError(403, "dailyLimitExceeded")), true},
		{"wrapped", fmt.Errorf("search: %w", newHTTPError(http.StatusForbidden, googleError(403, "quotaExceeded"))), true},
		{"userRateLimitExceeded", newHTTPError(http.StatusForbidden, googleError(403, "userRateLimitExceeded")), false},
		{"rateLimitExceeded", newHTTPError(http.StatusForbidden, googleError(403, "rateLimitExceeded")), false},
		{"bare 429", newHTTPError(http.StatusTooManyRequests, nil), false},
		{"not found", newHTTPError(http.StatusNotFound, googleError(404, "videoNotFound")), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DailyQuotaExhausted(tt.err); got != tt.want {
				t.Errorf("DailyQuotaExhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func googleError(code int, reason string) []byte {
	return []byte(fmt.Sprintf(`{"error":{"code":%d,"message":"rejected","errors":[{"reason":%q}]}}`, code, reason))
}

func TestTransportError_Unwrap(t *testing.T) {
	inner := errors.New("dial tcp: timeout")
	err := &TransportError{URL: "https://example.com/videos?key=REDACTED", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find wrapped error")
	}

	expected := "transport error for https://example.com/videos?key=REDACTED: dial tcp: timeout"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}
