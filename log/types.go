// Package log is the structured logger used across the tx-sitter client.
//
// Library code never builds its own logger: callers inject one (see
// client.WithLogger) and everything defaults to NoopLogger otherwise.
package log

// Logger is a leveled, key-value structured logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
	// Fatal logs and terminates the process for zap-backed loggers.
	Fatal(msg string, keysAndValues ...any)

	// WithKV returns a logger that attaches key=value to every entry.
	WithKV(key string, value any) Logger
	// GetAllKV returns the persistent key-value pairs of this logger.
	GetAllKV() []any
	// WithName returns a named child logger, e.g. "txsitter.client".
	WithName(name string) Logger
	Name() string
	AddCallerSkip(skip int) Logger
}

// Level is the minimum severity a logger emits.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
	LevelFatal Level = "fatal"
)
