package pipelinecmd

import (
	"context"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-mdc/internal/emit"
	"github.com/goliatone/go-mdc/internal/intelligence"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/internal/markdown"
	"github.com/goliatone/go-mdc/internal/project"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Service orchestrates the conversion and analysis pipelines. Command
// handlers and CLI verbs both delegate here so dispatched messages and direct
// invocations share one code path.
type Service struct {
	logger   interfaces.Logger
	clock    func() time.Time
	openFS   func(dir string) fs.FS
	projects *project.Service
}

// ServiceOption customises pipeline orchestration.
type ServiceOption func(*Service)

// WithClock overrides the time source used for emitted timestamps and
// freshness scoring.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithFilesystem overrides how source directories are opened, mainly so tests
// can load from an in-memory filesystem.
func WithFilesystem(open func(dir string) fs.FS) ServiceOption {
	return func(s *Service) {
		if open != nil {
			s.openFS = open
		}
	}
}

// WithProjects overrides the project configuration resolver.
func WithProjects(projects *project.Service) ServiceOption {
	return func(s *Service) {
		if projects != nil {
			s.projects = projects
		}
	}
}

// NewService builds the orchestration service.
func NewService(logger interfaces.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = logging.NoOp()
	}
	svc := &Service{
		logger: logger,
		clock:  time.Now,
		openFS: func(dir string) fs.FS {
			return os.DirFS(dir)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	if svc.projects == nil {
		svc.projects = project.NewService(logger)
	}
	return svc
}

// Convert loads the sources named by msg, applies the configured transforms,
// and emits .mdc documents plus the index manifest. Repository identity and
// transform behaviour come from the project configuration unless the message
// overrides them.
func (s *Service) Convert(ctx context.Context, msg ConvertMessage) (*emit.Result, error) {
	cfg, err := s.resolveProject(msg)
	if err != nil {
		return nil, err
	}

	repo := strings.TrimSpace(msg.Repo)
	if repo == "" {
		repo = cfg.Repo()
	}
	ref := strings.TrimSpace(msg.Ref)
	if ref == "" {
		ref = cfg.Settings.Branch
	}

	loader := markdown.NewLoader(s.openFS(msg.SourceDir), markdown.LoaderConfig{
		Repo:    repo,
		Ref:     ref,
		Include: cfg.IncludePatterns(),
		Exclude: cfg.ExcludePatterns(),
	}, s.logger)

	files, err := loader.LoadDirectory(ctx, ".")
	if err != nil {
		return nil, err
	}

	opts := cfg.TransformOptions()
	if profile := strings.TrimSpace(msg.Profile); profile != "" {
		opts.Profile = profile
	}
	applyTransformToggles(&opts, msg.Transforms)
	transformer := markdown.NewTransformer(opts)

	emitter := emit.New(emit.Config{
		OutputDir: msg.OutputDir,
		Repo:      repo,
		Ref:       ref,
		Topics:    mergeTopics(cfg.Settings.Topics, msg.Topics),
		Now:       s.clock,
	}, s.logger)

	return emitter.EmitAll(ctx, files, transformer.Apply)
}

// Analyze runs the content intelligence pass over the .mdc collection named
// by msg.
func (s *Service) Analyze(ctx context.Context, msg AnalyzeMessage) (*intelligence.Summary, error) {
	store := markdown.NewStore(msg.Directory, s.logger)

	var features intelligence.FeatureSet
	if len(msg.Features) > 0 {
		features = intelligence.ParseFeatures(msg.Features)
	}

	analyzer := intelligence.New(store, msg.Directory, intelligence.Config{
		Workers:   msg.Workers,
		Now:       s.clock,
		StateFile: msg.StateFile,
		IndexFile: msg.IndexFile,
	}, s.logger)

	return analyzer.Analyze(ctx, features, msg.Incremental)
}

func (s *Service) resolveProject(msg ConvertMessage) (*project.Config, error) {
	if path := strings.TrimSpace(msg.ProjectConfig); path != "" {
		return s.projects.Load(path)
	}
	return s.projects.Resolve(msg.SourceDir)
}

func applyTransformToggles(opts *markdown.TransformOptions, toggles map[string]bool) {
	for name, enabled := range toggles {
		switch name {
		case "cleanMdx":
			opts.StripJSX = enabled
		case "stripComments":
			opts.StripHTMLComments = enabled
		case "normalizeHeadings":
			opts.NormalizeHeadings = enabled
		case "collapseBlankLines":
			opts.CollapseBlankLines = enabled
		}
	}
}

// mergeTopics combines project topics with message topics, first occurrence
// wins case-insensitively.
func mergeTopics(configured, extra []string) []string {
	merged := make([]string, 0, len(configured)+len(extra))
	seen := make(map[string]struct{}, len(configured)+len(extra))
	for _, topic := range append(append([]string(nil), configured...), extra...) {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		key := strings.ToLower(topic)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, topic)
	}
	return merged
}
