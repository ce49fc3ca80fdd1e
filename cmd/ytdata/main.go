// Command ytdata retrieves YouTube Data API resources and writes them as
// JSON lines, one record per line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/ytdata-client/internal/config"
	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/metrics"
	"github.com/Sternrassler/ytdata-client/pkg/quota"
	"github.com/Sternrassler/ytdata-client/pkg/youtube"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCLI(os.Stdout).Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode distinguishes blocked or rejected credentials from other failures
// so wrapper scripts can stop retrying.
func exitCode(err error) int {
	switch {
	case errors.Is(err, quota.ErrBlocked), client.IsInvalidCredential(err), client.IsQuotaExceeded(err):
		return 3
	case client.IsNotFound(err):
		return 4
	default:
		return 1
	}
}

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg     *config.Config
	client  *client.Client
	service *youtube.Service
	redis   *redis.Client
	metrics *http.Server
	logger  zerolog.Logger
	out     io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Setup(cfg.LoggingConfig())
	logger := logging.NewLogger(logging.ComponentCLI)

	a := &app{cfg: cfg, logger: logger, out: out}

	guardLogger := logging.NewLogger(logging.ComponentQuota)
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Debug().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis, quota state is shared")
	}

	clientCfg := cfg.ClientConfig()
	clientCfg.Guard = quota.NewGuard(a.redis, guardLogger)

	c, err := client.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	a.client = c

	svcCfg := youtube.DefaultConfig()
	svcCfg.Pagination = cfg.PaginationConfig()
	a.service = youtube.NewService(c, svcCfg)

	if cfg.MetricsAddr != "" {
		a.metrics = startMetricsServer(cfg.MetricsAddr, logger)
	}

	return a, nil
}

// Close releases the client, redis and the metrics server.
func (a *app) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Shutdown(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

func startMetricsServer(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("Metrics server failed")
		}
	}()
	return srv
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
