// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Level represents the logging level.
type Level string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug Level = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo Level = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn Level = "warn"

	// LevelError logs error messages only.
	LevelError Level = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts Level to zerolog.Level.
func parseLevel(level Level) zerolog.Level {
	switch strings.ToLower(string(level)) {
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
// Debug: Detailed information for debugging
//   - Individual downloads (url, bytes, format)
//   - Cache operations (hit/miss, key, TTL)
//   - Retry attempts and backoff waits
//   - Batch reduction progress
//
// Info: Normal operation events
//   - Run start (item count, batches, concurrency)
//   - Periodic progress (fetched, converted, failed)
//   - Combined document written
//   - Run summary
//
// Warn: Warning conditions that don't prevent operation
//   - Single-item download or conversion failures
//   - Cache errors (fallback to direct download)
//   - Keep-images writes that failed
//
// Error: Error conditions requiring attention
//   - Unwritable destination
//   - Configuration errors
//
// Context Fields:
//   - url: source image URL
//   - kind: failure classification (timeout, http_status, corrupt_image, ...)
//   - key: destination object key
//   - batch: batch ordinal within the run
//   - duration: elapsed wall time
