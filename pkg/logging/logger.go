// Package logging configures the zerolog logger shared by the client,
// pagination, quota and youtube packages.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs page fetches and individual requests.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs traversal summaries and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs retries, rejections and blocks.
	LevelWarn LogLevel = "warn"

	// LevelError logs failed requests only.
	LevelError LogLevel = "error"
)

// Component names attached to library loggers.
const (
	ComponentClient     = "ytdata-client"
	ComponentPagination = "ytdata-pagination"
	ComponentQuota      = "ytdata-quota"
	ComponentYouTube    = "ytdata-youtube"
	ComponentCLI        = "ytdata-cli"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
// Logs go to stderr so stdout stays free for records.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Pretty {
		out = zerolog.ConsoleWriter{Out: out}
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(string(level))) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: request and page flow
//   - Outgoing requests (endpoint, redacted URL)
//   - Pages fetched (cursor, item count)
//   - Not-found batch chunks skipped
//
// Info: normal operation events
//   - Traversal finished (state, records, pages)
//   - Request succeeded after retry
//   - Quota block cleared
//
// Warn: conditions that don't stop the caller
//   - Retry attempts and exhausted retries
//   - Server errors (5xx) before retry
//   - API rejections (4xx) and circuit breaker state changes
//   - Requests refused by an active quota block
//
// Error: conditions requiring attention
//   - Failed requests (after retries)
//   - Invalid credential or exhausted quota reported by the API
//   - Failed traversals
//
// Context Fields:
//   - component: emitting package (see Component constants)
//   - endpoint: resource path or descriptor name
//   - traversal_id: uuid shared by all log lines of one traversal
//   - mode: paginate or batch
//   - cursor: page token of the current page
//   - status: HTTP status code
//   - error_class: retry classification (client, server, rate_limit, network)
//   - kind: caller classification (invalid_credential, quota_exceeded, ...)
//   - reason: quota block reason
