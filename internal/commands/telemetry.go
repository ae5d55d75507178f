package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

// TelemetryStatus classifies how a command execution ended.
type TelemetryStatus string

const (
	// TelemetryStatusSuccess marks a command that completed without errors.
	TelemetryStatusSuccess TelemetryStatus = "success"
	// TelemetryStatusFailed marks a command whose execution returned an error.
	TelemetryStatusFailed TelemetryStatus = "failed"
	// TelemetryStatusContextError marks a command cut short by context
	// cancellation or deadline expiry.
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command execution outcome. Fields carries the
// same structured context the handler logged with, Duration the wall time of
// the wrapped function, and Error the raw (unwrapped) failure when present.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is an optional callback invoked after every command execution.
// Installing one replaces the handler's own outcome logging.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs command outcomes with the supplied logger, including
// the execution duration in milliseconds.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		switch info.Status {
		case TelemetryStatusSuccess:
			entry.Info("command.execute.success",
				"duration_ms", info.Duration.Milliseconds())
		case TelemetryStatusContextError:
			entry.Error("command.execute.context_error",
				"duration_ms", info.Duration.Milliseconds(), "error", info.Error)
		default:
			entry.Error("command.execute.failed",
				"duration_ms", info.Duration.Milliseconds(), "error", info.Error)
		}
	}
}
