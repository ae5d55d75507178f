package project

import (
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Service resolves project configurations with a consistent logger. It is a
// thin convenience layer over Load, Parse, and Detect for callers that hold a
// configured module.
type Service struct {
	logger interfaces.Logger
}

// NewService builds a project configuration service.
func NewService(logger interfaces.Logger) *Service {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Service{logger: logger}
}

// Load reads and validates the project file at path. Missing files yield the
// defaults.
func (s *Service) Load(path string) (*Config, error) {
	return Load(path, s.logger)
}

// Detect returns the nearest project file for sourceDir, or "".
func (s *Service) Detect(sourceDir string) string {
	return Detect(sourceDir)
}

// Resolve detects and loads the project configuration for sourceDir, falling
// back to the defaults when no file is found.
func (s *Service) Resolve(sourceDir string) (*Config, error) {
	path := Detect(sourceDir)
	if path == "" {
		s.logger.Debug("no project configuration near source, using defaults",
			"source_dir", sourceDir)
		return Default(), nil
	}
	return Load(path, s.logger)
}
