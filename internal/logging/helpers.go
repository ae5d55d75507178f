package logging

import (
	"maps"

	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension, and returns the logger
// unchanged otherwise. Nil loggers and empty field maps pass through.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok || len(fields) == 0 {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}
