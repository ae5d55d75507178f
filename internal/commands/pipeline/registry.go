package pipelinecmd

import (
	"github.com/goliatone/go-mdc/internal/commands"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring
// command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the pipeline command handlers produced by
// RegisterPipelineCommands.
type HandlerSet struct {
	Convert *ConvertHandler
	Analyze *AnalyzeHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	convertHandlerOpts []commands.HandlerOption[ConvertMessage]
	analyzeHandlerOpts []commands.HandlerOption[AnalyzeMessage]
}

// WithConvertHandlerOptions forwards options to the ConvertHandler constructor.
func WithConvertHandlerOptions(opts ...commands.HandlerOption[ConvertMessage]) Option {
	return func(cfg *options) {
		cfg.convertHandlerOpts = append(cfg.convertHandlerOpts, opts...)
	}
}

// WithAnalyzeHandlerOptions forwards options to the AnalyzeHandler constructor.
func WithAnalyzeHandlerOptions(opts ...commands.HandlerOption[AnalyzeMessage]) Option {
	return func(cfg *options) {
		cfg.analyzeHandlerOpts = append(cfg.analyzeHandlerOpts, opts...)
	}
}

// RegisterPipelineCommands builds the pipeline command handlers and registers
// them with the provided registry. The constructed HandlerSet is returned so
// callers can wire additional integrations (dispatcher, cron) as needed.
func RegisterPipelineCommands(reg CommandRegistry, service *Service, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "pipeline")

	convertHandler := NewConvertHandler(service, logger, cfg.convertHandlerOpts...)
	analyzeHandler := NewAnalyzeHandler(service, logger, cfg.analyzeHandlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(convertHandler); err != nil {
			return nil, err
		}
		if err := reg.RegisterCommand(analyzeHandler); err != nil {
			return nil, err
		}
	}

	return &HandlerSet{
		Convert: convertHandler,
		Analyze: analyzeHandler,
	}, nil
}
