// Package log provides structured logging for the housing-price pipeline.
//
// It defines a minimal, slog-compatible Logger interface backed by zerolog,
// with pipeline-specific attribute keys so that stage progress, data shapes
// and model metrics are logged as structured fields rather than formatted
// strings.
package log

import "context"

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs. The interface is implementation
// agnostic; the default implementation in this package is backed by zerolog.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error it is attached under the "error" key.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, value-compatible with slog.Level.
type Level int

// Standard logging levels.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Attribute keys shared across pipeline stages. Using the constants keeps
// field names consistent between packages.
const (
	StageKey    = "stage"
	RowsKey     = "rows"
	FeaturesKey = "features"
	SeedKey     = "seed"
	AlphaKey    = "alpha"
	ScoreKey    = "score"
	FoldsKey    = "folds"
	DurationKey = "duration_ms"
)
