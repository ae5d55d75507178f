package bootstrap

import (
	"fmt"
	"strings"

	mdc "github.com/goliatone/go-mdc"
	"github.com/goliatone/go-mdc/internal/di"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Options captures configuration for MDC CLI bootstraps.
type Options struct {
	Verbose        bool
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the mdc module and the logger the CLI reports through.
type Module struct {
	Module *mdc.Module
	Logger interfaces.Logger
}

// BuildModule constructs an MDC module configured for command line use.
func BuildModule(opts Options) (*Module, error) {
	cfg := mdc.DefaultConfig()
	cfg.Features.Logger = true
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := mdc.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise mdc module: %w", err)
	}
	if module.Pipeline() == nil {
		return nil, fmt.Errorf("pipeline service not configured; ensure the module is enabled")
	}

	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "mdc.cli")

	return &Module{
		Module: module,
		Logger: logger,
	}, nil
}

// SplitList parses a comma separated value list into a trimmed slice.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
