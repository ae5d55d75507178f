package interfaces

import "context"

// Logger is the leveled logging contract used throughout the document
// pipeline. The method set mirrors github.com/goliatone/go-logger so hosts
// already using that package can supply their loggers directly.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers. An implementation may scope loggers
// per name (module-based children) or return a shared instance for every name.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is an optional extension for binding persistent structured
// fields. Implementations return a new logger that stamps the supplied fields
// on every subsequent entry.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
