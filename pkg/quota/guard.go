package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	quotaBlocked = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytdata_quota_blocked",
		Help: "1 while requests are blocked after a credential or quota rejection",
	})

	quotaBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_quota_blocks_total",
		Help: "Total number of requests rejected locally because of an active block",
	}, []string{"reason"})

	quotaReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytdata_quota_reports_total",
		Help: "Total number of credential or quota rejections reported by the API",
	}, []string{"reason"})
)

// Guard gates requests on the shared block state.
type Guard struct {
	redis  *redis.Client
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	local State
}

// NewGuard creates a guard. With a nil redis client the state is kept in
// memory and only shared by callers of this Guard.
func NewGuard(redisClient *redis.Client, logger zerolog.Logger) *Guard {
	return &Guard{
		redis:  redisClient,
		logger: logger,
		now:    time.Now,
	}
}

// GetState returns the current block state.
// Returns an unblocked state if nothing was ever reported.
func (g *Guard) GetState(ctx context.Context) (*State, error) {
	if g.redis == nil {
		g.mu.Lock()
		defer g.mu.Unlock()
		state := g.local
		return &state, nil
	}

	data, err := g.redis.Get(ctx, RedisKeyState).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			g.logger.Debug().Msg("No quota state in Redis, returning unblocked state")
			return &State{LastUpdate: g.now()}, nil
		}
		return nil, fmt.Errorf("get quota state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse quota state: %w", err)
	}
	return &state, nil
}

// Allow returns a *BlockedError while a block is active and nil otherwise.
func (g *Guard) Allow(ctx context.Context) error {
	state, err := g.GetState(ctx)
	if err != nil {
		return err
	}

	now := g.now()
	if !state.Active(now) {
		quotaBlocked.Set(0)
		return nil
	}

	g.logger.Warn().
		Str("reason", string(state.Reason)).
		Dur("wait_duration", state.TimeUntilReset(now)).
		Msg("Request blocked by quota guard")

	quotaBlocked.Set(1)
	quotaBlocksTotal.WithLabelValues(string(state.Reason)).Inc()
	return &BlockedError{
		Reason: state.Reason,
		Detail: state.Detail,
		Until:  state.BlockedUntil,
	}
}

// Report records a fatal rejection and starts a block.
func (g *Guard) Report(ctx context.Context, reason Reason, detail string) error {
	now := g.now()
	state := State{
		Blocked:      true,
		Reason:       reason,
		Detail:       detail,
		BlockedUntil: blockUntil(reason, now),
		LastUpdate:   now,
	}

	quotaReportsTotal.WithLabelValues(string(reason)).Inc()
	quotaBlocked.Set(1)

	g.logger.Error().
		Str("reason", string(reason)).
		Str("detail", detail).
		Time("blocked_until", state.BlockedUntil).
		Msg("API rejected request, blocking further calls")

	if g.redis == nil {
		g.mu.Lock()
		g.local = state
		g.mu.Unlock()
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal quota state: %w", err)
	}

	// Let Redis drop the key when the block expires
	if err := g.redis.Set(ctx, RedisKeyState, data, state.TimeUntilReset(now)).Err(); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}
	return nil
}

// Clear lifts any active block, e.g. after the key was rotated.
func (g *Guard) Clear(ctx context.Context) error {
	quotaBlocked.Set(0)

	if g.redis == nil {
		g.mu.Lock()
		g.local = State{LastUpdate: g.now()}
		g.mu.Unlock()
		return nil
	}

	if err := g.redis.Del(ctx, RedisKeyState).Err(); err != nil {
		return fmt.Errorf("clear quota state in redis: %w", err)
	}
	g.logger.Info().Msg("Quota block cleared")
	return nil
}
