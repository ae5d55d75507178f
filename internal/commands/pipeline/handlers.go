package pipelinecmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-mdc/internal/commands"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	convertOperation = "pipeline.convert"
	analyzeOperation = "pipeline.analyze"
)

// ErrServiceRequired is returned when handlers are constructed without a service.
var ErrServiceRequired = errors.New("pipeline command: service is required")

var (
	_ command.Commander[ConvertMessage] = (*ConvertHandler)(nil)
	_ command.Commander[AnalyzeMessage] = (*AnalyzeHandler)(nil)
)

// ConvertHandler runs conversion messages through the shared command handler
// foundation. Run totals surface through structured logs and telemetry;
// callers needing the typed result should invoke Service.Convert directly.
type ConvertHandler struct {
	inner *commands.Handler[ConvertMessage]
}

// NewConvertHandler creates a handler bound to the supplied pipeline service.
func NewConvertHandler(service *Service, logger interfaces.Logger, opts ...commands.HandlerOption[ConvertMessage]) *ConvertHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ConvertMessage) error {
		if service == nil {
			return ErrServiceRequired
		}

		result, err := service.Convert(ctx, msg)
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"processed_count": result.Processed,
				"written_count":   result.Written,
				"skipped_count":   result.Skipped,
				"error_count":     result.Errors,
				"total_tokens":    result.Totals.Tokens,
			}).Info("pipeline.command.convert.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ConvertMessage]{
		commands.WithLogger[ConvertMessage](baseLogger),
		commands.WithOperation[ConvertMessage](convertOperation),
		commands.WithMessageFields(func(msg ConvertMessage) map[string]any {
			fields := map[string]any{
				"source_dir": msg.SourceDir,
				"output_dir": msg.OutputDir,
			}
			if msg.ProjectConfig != "" {
				fields["project_config"] = msg.ProjectConfig
			}
			if msg.Repo != "" {
				fields["repo"] = msg.Repo
			}
			if msg.Ref != "" {
				fields["ref"] = msg.Ref
			}
			if msg.Profile != "" {
				fields["profile"] = msg.Profile
			}
			if len(msg.Topics) > 0 {
				fields["topics"] = strings.Join(msg.Topics, ",")
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ConvertMessage](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ConvertHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ConvertMessage].
func (h *ConvertHandler) Execute(ctx context.Context, msg ConvertMessage) error {
	return h.inner.Execute(ctx, msg)
}

// AnalyzeHandler runs analysis messages through the shared command handler
// foundation.
type AnalyzeHandler struct {
	inner *commands.Handler[AnalyzeMessage]
}

// NewAnalyzeHandler creates a handler bound to the supplied pipeline service.
func NewAnalyzeHandler(service *Service, logger interfaces.Logger, opts ...commands.HandlerOption[AnalyzeMessage]) *AnalyzeHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg AnalyzeMessage) error {
		if service == nil {
			return ErrServiceRequired
		}

		summary, err := service.Analyze(ctx, msg)
		if err != nil {
			return err
		}
		if summary != nil {
			logging.WithFields(baseLogger, map[string]any{
				"processed_count": summary.Processed,
				"updated_count":   summary.Updated,
				"skipped_count":   summary.Skipped,
				"error_count":     summary.Errors,
				"features":        strings.Join(summary.FeaturesEnabled, ","),
			}).Info("pipeline.command.analyze.completed")
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[AnalyzeMessage]{
		commands.WithLogger[AnalyzeMessage](baseLogger),
		commands.WithOperation[AnalyzeMessage](analyzeOperation),
		commands.WithMessageFields(func(msg AnalyzeMessage) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if len(msg.Features) > 0 {
				fields["features"] = strings.Join(msg.Features, ",")
			}
			if msg.Incremental {
				fields["incremental"] = true
			}
			if msg.Workers > 0 {
				fields["workers"] = msg.Workers
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[AnalyzeMessage](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &AnalyzeHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[AnalyzeMessage].
func (h *AnalyzeHandler) Execute(ctx context.Context, msg AnalyzeMessage) error {
	return h.inner.Execute(ctx, msg)
}
