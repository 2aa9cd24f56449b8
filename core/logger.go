package core

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Logger provides debug logging for the Alert Center SDK.
//
// Debug and Info are emitted only when debug is enabled; Warn and Error are
// always emitted.
type Logger struct {
	enabled bool
	logger  *slog.Logger
}

// NewLogger creates a new logger writing text records to stderr.
func NewLogger(enabled bool) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewLoggerWith(slog.New(handler), enabled)
}

// NewLoggerWith creates a logger that writes to an existing slog.Logger.
func NewLoggerWith(logger *slog.Logger, enabled bool) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{
		enabled: enabled,
		logger:  logger.With("sdk", "alertcenter-go"),
	}
}

func format(message string, args []any) string {
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

// Debug logs a debug message (only if debug is enabled).
func (l *Logger) Debug(message string, args ...any) {
	if l.enabled {
		l.logger.Debug(format(message, args))
	}
}

// Info logs an info message (only if debug is enabled).
func (l *Logger) Info(message string, args ...any) {
	if l.enabled {
		l.logger.Info(format(message, args))
	}
}

// Warn logs a warning message (always logged).
func (l *Logger) Warn(message string, args ...any) {
	l.logger.Warn(format(message, args))
}

// Error logs an error message (always logged).
func (l *Logger) Error(message string, args ...any) {
	l.logger.Error(format(message, args))
}

// Timing logs request timing information.
func (l *Logger) Timing(method, url string, status int, duration time.Duration) {
	if l.enabled {
		l.logger.Debug("request completed",
			"method", method,
			"url", url,
			"status", status,
			"durationMs", duration.Milliseconds(),
		)
	}
}

// Retry logs retry attempt information.
func (l *Logger) Retry(attempt, maxAttempts int, delay time.Duration, reason string) {
	if l.enabled {
		l.logger.Debug("retrying request",
			"attempt", attempt,
			"maxAttempts", maxAttempts,
			"delayMs", delay.Milliseconds(),
			"reason", reason,
		)
	}
}

// Batch logs a batch flush.
func (l *Logger) Batch(batchID string, size int) {
	if l.enabled {
		l.logger.Debug("flushing batch", "batchId", batchID, "size", size)
	}
}

// Enabled returns whether debug logging is enabled.
func (l *Logger) Enabled() bool {
	return l.enabled
}
