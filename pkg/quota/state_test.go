package quota

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNextQuotaReset(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "winter morning UTC",
			now:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), // 02:00 PST
			want: time.Date(2024, 1, 16, 0, 0, 0, 0, pacific),
		},
		{
			name: "late UTC is still previous day in Pacific",
			now:  time.Date(2024, 1, 15, 3, 0, 0, 0, time.UTC), // 19:00 PST on the 14th
			want: time.Date(2024, 1, 15, 0, 0, 0, 0, pacific),
		},
		{
			name: "summer time",
			now:  time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC), // 05:00 PDT
			want: time.Date(2024, 7, 2, 0, 0, 0, 0, pacific),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextQuotaReset(tt.now)
			if !got.Equal(tt.want) {
				t.Errorf("NextQuotaReset(%v) = %v, want %v", tt.now, got, tt.want)
			}
			if !got.After(tt.now) {
				t.Errorf("NextQuotaReset(%v) = %v, not after now", tt.now, got)
			}
		})
	}
}

func TestBlockUntil(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	if got := blockUntil(ReasonInvalidCredential, now); !got.Equal(now.Add(24 * time.Hour)) {
		t.Errorf("blockUntil(invalid_credential) = %v, want %v", got, now.Add(24*time.Hour))
	}
	if got := blockUntil(ReasonQuotaExceeded, now); !got.Equal(NextQuotaReset(now)) {
		t.Errorf("blockUntil(quota_exceeded) = %v, want %v", got, NextQuotaReset(now))
	}
	if got := blockUntil(ReasonRateLimited, now); !got.Equal(now.Add(time.Minute)) {
		t.Errorf("blockUntil(rate_limited) = %v, want %v", got, now.Add(time.Minute))
	}
}

func TestState_Active(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"zero state", State{}, false},
		{"blocked in future", State{Blocked: true, BlockedUntil: now.Add(time.Minute)}, true},
		{"expired block", State{Blocked: true, BlockedUntil: now.Add(-time.Minute)}, false},
		{"not blocked with future time", State{BlockedUntil: now.Add(time.Minute)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Active(now); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	now := time.Now()

	state := State{Blocked: true, BlockedUntil: now.Add(30 * time.Second)}
	if got := state.TimeUntilReset(now); got != 30*time.Second {
		t.Errorf("TimeUntilReset() = %v, want 30s", got)
	}

	state.BlockedUntil = now.Add(-time.Second)
	if got := state.TimeUntilReset(now); got != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0 for expired block", got)
	}
}

func TestState_IsStale(t *testing.T) {
	state := &State{LastUpdate: time.Now().Add(-2 * time.Minute)}

	if !state.IsStale(time.Minute) {
		t.Error("State older than maxAge should be stale")
	}
	if state.IsStale(5 * time.Minute) {
		t.Error("State younger than maxAge should not be stale")
	}
}

func TestBlockedError(t *testing.T) {
	until := time.Date(2024, 1, 16, 8, 0, 0, 0, time.UTC)
	err := fmt.Errorf("get videos: %w", &BlockedError{Reason: ReasonQuotaExceeded, Detail: "quotaExceeded", Until: until})

	if !errors.Is(err, ErrBlocked) {
		t.Error("errors.Is(err, ErrBlocked) should be true")
	}

	want := "get videos: requests blocked (quota_exceeded) until 2024-01-16T08:00:00Z: quotaExceeded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
