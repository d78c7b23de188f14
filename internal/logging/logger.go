// Package logging defines the structured-logging contract used across
// gophmarket together with its slog and zap backed implementations.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "batch finished", "uploaded", 3, "failed", 1)
type Logger interface {
	// Debug logs high-volume diagnostics such as per-slot transitions.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs recovered failures, e.g. a compression fallback.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// Log modes accepted by New.
const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// New returns the zap backed logger for the given mode. Unknown modes fall
// back to the development configuration.
func New(mode string) (Logger, error) {
	return NewZapLogger(mode)
}
