// Package quota implements credential and quota block tracking for the
// YouTube Data API. Once the API rejects a key or reports an exhausted quota,
// further calls fail fast until the block expires instead of spending more
// requests on a guaranteed failure.
package quota

import (
	"errors"
	"fmt"
	"time"
)

// RedisKeyState holds the JSON encoded State shared by all guard instances.
const RedisKeyState = "ytdata:quota:state"

// CredentialBlockDuration is how long an invalid key stays blocked.
// The key has to be replaced, so this only bounds how long a stale block can live.
const CredentialBlockDuration = 24 * time.Hour

// RateLimitBlockDuration is how long a short-term rate limit rejection blocks.
const RateLimitBlockDuration = time.Minute

// Reason identifies why requests are blocked.
type Reason string

const (
	// ReasonInvalidCredential blocks after the API rejected the key.
	ReasonInvalidCredential Reason = "invalid_credential"

	// ReasonQuotaExceeded blocks after the daily quota was exhausted.
	ReasonQuotaExceeded Reason = "quota_exceeded"

	// ReasonRateLimited blocks briefly after a per-second or per-user
	// rate limit rejection.
	ReasonRateLimited Reason = "rate_limited"
)

// ErrBlocked matches every BlockedError.
var ErrBlocked = errors.New("requests blocked")

// BlockedError is returned by Guard.Allow while a block is active.
type BlockedError struct {
	Reason Reason
	Detail string
	Until  time.Time
}

// Error implements the error interface.
func (e *BlockedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("requests blocked (%s) until %s: %s", e.Reason, e.Until.Format(time.RFC3339), e.Detail)
	}
	return fmt.Sprintf("requests blocked (%s) until %s", e.Reason, e.Until.Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrBlocked) true.
func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// State represents the current block state.
// This state is shared across all client instances via Redis when configured.
type State struct {
	// Blocked is true once a fatal rejection has been reported.
	Blocked bool `json:"blocked"`

	// Reason for the block.
	Reason Reason `json:"reason,omitempty"`

	// Detail carries the API reason codes or message that caused the block.
	Detail string `json:"detail,omitempty"`

	// BlockedUntil is when the block lifts on its own.
	BlockedUntil time.Time `json:"blocked_until"`

	// LastUpdate is when this state was last written.
	LastUpdate time.Time `json:"last_update"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// Active reports whether the block is in force at now.
func (s *State) Active(now time.Time) bool {
	return s.Blocked && now.Before(s.BlockedUntil)
}

// TimeUntilReset returns the duration until the block lifts.
// Returns 0 if the block has already expired.
func (s *State) TimeUntilReset(now time.Time) time.Duration {
	d := s.BlockedUntil.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

var pacific = loadPacific()

func loadPacific() *time.Location {
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		return time.FixedZone("PST", -8*60*60)
	}
	return loc
}

// NextQuotaReset returns the next midnight Pacific time after now, which is
// when the Data API daily quota is replenished.
func NextQuotaReset(now time.Time) time.Time {
	local := now.In(pacific)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, pacific)
	return midnight.AddDate(0, 0, 1)
}

// blockUntil returns the expiry for a new block of the given reason.
func blockUntil(reason Reason, now time.Time) time.Time {
	switch reason {
	case ReasonQuotaExceeded:
		return NextQuotaReset(now)
	case ReasonRateLimited:
		return now.Add(RateLimitBlockDuration)
	default:
		return now.Add(CredentialBlockDuration)
	}
}
