package di

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-mdc/internal/commands"
	pipelinecmd "github.com/goliatone/go-mdc/internal/commands/pipeline"
	"github.com/goliatone/go-mdc/internal/emit"
	"github.com/goliatone/go-mdc/internal/intelligence"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/internal/logging/console"
	"github.com/goliatone/go-mdc/internal/logging/gologger"
	"github.com/goliatone/go-mdc/internal/markdown"
	"github.com/goliatone/go-mdc/internal/project"
	"github.com/goliatone/go-mdc/internal/runtimeconfig"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Container wires module dependencies from a validated configuration. Services
// are constructed eagerly; feature flags decide which subsystems exist.
type Container struct {
	Config runtimeconfig.Config

	provider interfaces.LoggerProvider
	clock    func() time.Time
	openFS   func(dir string) fs.FS

	loader      *markdown.Loader
	transformer *markdown.Transformer
	store       *markdown.Store
	emitter     *emit.Emitter
	analyzer    *intelligence.Analyzer
	projects    *project.Service
	pipeline    *pipelinecmd.Service
	handlers    *pipelinecmd.HandlerSet
	dispatcher  *Dispatcher
}

// Option mutates the container before services are constructed.
type Option func(*Container)

// WithLoggerProvider overrides the logger provider regardless of the logging
// feature flag.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.provider = provider
		}
	}
}

// WithClock overrides the time source used for emitted timestamps and
// analysis state.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithFilesystem overrides how source directories are opened. Useful for
// loading content from embedded or in-memory filesystems.
func WithFilesystem(open func(dir string) fs.FS) Option {
	return func(c *Container) {
		if open != nil {
			c.openFS = open
		}
	}
}

// WithProjectService overrides the default project configuration service.
func WithProjectService(svc *project.Service) Option {
	return func(c *Container) {
		if svc != nil {
			c.projects = svc
		}
	}
}

// WithPipelineService overrides the default pipeline orchestration service.
func WithPipelineService(svc *pipelinecmd.Service) Option {
	return func(c *Container) {
		if svc != nil {
			c.pipeline = svc
		}
	}
}

// NewContainer creates a container with the provided configuration. The
// configuration is validated before any service is built.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config: cfg,
		clock:  time.Now,
		openFS: func(dir string) fs.FS { return os.DirFS(dir) },
	}

	for _, opt := range opts {
		opt(c)
	}

	if !cfg.Enabled {
		return c, nil
	}

	if c.provider == nil && cfg.Features.Logger {
		provider, err := buildLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.provider = provider
	}

	if cfg.Features.Emitter {
		c.loader = markdown.NewLoader(c.openFS(cfg.Loader.ContentDir), markdown.LoaderConfig{
			Repo:    cfg.Source.Repo,
			Ref:     cfg.Source.Ref,
			Include: cfg.Loader.Include,
			Exclude: cfg.Loader.Exclude,
		}, logging.LoaderLogger(c.provider))

		c.transformer = markdown.NewTransformer(markdown.TransformOptions{
			StripJSX:           cfg.Transforms.StripJSX,
			StripHTMLComments:  cfg.Transforms.StripHTMLComments,
			NormalizeHeadings:  cfg.Transforms.NormalizeHeadings,
			CollapseBlankLines: cfg.Transforms.CollapseBlankLines,
		})

		c.emitter = emit.New(emit.Config{
			OutputDir:    cfg.Emitter.OutputDir,
			Repo:         cfg.Source.Repo,
			Ref:          cfg.Source.Ref,
			License:      cfg.Emitter.License,
			IndexFile:    cfg.Emitter.IndexFile,
			ForceRewrite: !cfg.Emitter.SkipUnchanged,
			Now:          c.clock,
		}, logging.EmitterLogger(c.provider))
	}

	if cfg.Features.Intelligence {
		intelligenceLogger := logging.IntelligenceLogger(c.provider)
		c.store = markdown.NewStore(cfg.Intelligence.ContentDir, intelligenceLogger)
		c.analyzer = intelligence.New(c.store, cfg.Intelligence.ContentDir, intelligenceConfig(cfg.Intelligence, c.clock), intelligenceLogger)
	}

	if c.projects == nil {
		c.projects = project.NewService(logging.ProjectLogger(c.provider))
	}

	if c.pipeline == nil {
		c.pipeline = pipelinecmd.NewService(
			logging.ModuleLogger(c.provider, "mdc.pipeline"),
			pipelinecmd.WithClock(c.clock),
			pipelinecmd.WithFilesystem(c.openFS),
			pipelinecmd.WithProjects(c.projects),
		)
	}

	if cfg.Commands.Enabled {
		handlerOpts := []pipelinecmd.Option{}
		if cfg.Commands.Timeout > 0 {
			handlerOpts = append(handlerOpts,
				pipelinecmd.WithConvertHandlerOptions(commands.WithTimeout[pipelinecmd.ConvertMessage](cfg.Commands.Timeout)),
				pipelinecmd.WithAnalyzeHandlerOptions(commands.WithTimeout[pipelinecmd.AnalyzeMessage](cfg.Commands.Timeout)),
			)
		}
		handlers, err := pipelinecmd.RegisterPipelineCommands(nil, c.pipeline, c.provider, handlerOpts...)
		if err != nil {
			return nil, err
		}
		c.handlers = handlers
		c.dispatcher = newDispatcher(handlers)
	}

	return c, nil
}

// Loader exposes the configured source loader. Nil when the emitter feature
// is disabled.
func (c *Container) Loader() *markdown.Loader {
	return c.loader
}

// Transformer exposes the content transformer assembled from the configured
// transform toggles.
func (c *Container) Transformer() *markdown.Transformer {
	return c.transformer
}

// Store exposes the emitted-document store backing analysis. Nil when the
// intelligence feature is disabled.
func (c *Container) Store() *markdown.Store {
	return c.store
}

// Emitter exposes the MDC emitter. Nil when the emitter feature is disabled.
func (c *Container) Emitter() *emit.Emitter {
	return c.emitter
}

// Intelligence exposes the content analyzer. Nil when the intelligence
// feature is disabled.
func (c *Container) Intelligence() *intelligence.Analyzer {
	return c.analyzer
}

// Projects exposes project configuration discovery.
func (c *Container) Projects() *project.Service {
	return c.projects
}

// Pipeline exposes the conversion and analysis orchestration service.
func (c *Container) Pipeline() *pipelinecmd.Service {
	return c.pipeline
}

// Handlers returns the command handlers built when commands are enabled.
func (c *Container) Handlers() *pipelinecmd.HandlerSet {
	return c.handlers
}

// Dispatcher returns the command dispatcher bridge. Nil when commands are
// disabled.
func (c *Container) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// LoggerProvider returns the provider backing module loggers. Nil when the
// logging feature is disabled and no provider was injected.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.provider
}

// Dispatcher binds registered command handlers to the process-wide command
// bus so pipeline messages can be dispatched from anywhere in the host
// application.
type Dispatcher struct {
	handlers *pipelinecmd.HandlerSet

	mu      sync.Mutex
	unsubs  []func()
	started bool
}

func newDispatcher(handlers *pipelinecmd.HandlerSet) *Dispatcher {
	return &Dispatcher{handlers: handlers}
}

// Subscribe registers the convert and analyze handlers with the global
// command dispatcher. Subscribing twice without an intervening Close is a
// no-op.
func (d *Dispatcher) Subscribe() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.handlers == nil {
		return
	}
	if d.handlers.Convert != nil {
		sub := dispatcher.SubscribeCommand(d.handlers.Convert)
		d.unsubs = append(d.unsubs, sub.Unsubscribe)
	}
	if d.handlers.Analyze != nil {
		sub := dispatcher.SubscribeCommand(d.handlers.Analyze)
		d.unsubs = append(d.unsubs, sub.Unsubscribe)
	}
	d.started = true
}

// Close removes the subscriptions registered by Subscribe.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, unsub := range d.unsubs {
		unsub()
	}
	d.unsubs = nil
	d.started = false
}

func buildLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		return console.NewProvider(console.Options{MinLevel: consoleLevel(cfg.Level)}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", runtimeconfig.ErrLoggingProviderUnknown, cfg.Provider)
	}
}

func consoleLevel(level string) *console.Level {
	var resolved console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		resolved = console.LevelTrace
	case "debug":
		resolved = console.LevelDebug
	case "", "info":
		resolved = console.LevelInfo
	case "warn", "warning":
		resolved = console.LevelWarn
	case "error":
		resolved = console.LevelError
	case "fatal":
		resolved = console.LevelFatal
	default:
		return nil
	}
	return &resolved
}

func intelligenceConfig(cfg runtimeconfig.IntelligenceConfig, clock func() time.Time) intelligence.Config {
	return intelligence.Config{
		Workers:   cfg.Workers,
		Now:       clock,
		StateFile: resolveUnder(cfg.ContentDir, cfg.StateFile),
		IndexFile: resolveUnder(cfg.ContentDir, cfg.IndexFile),
		TopicExtraction: intelligence.TopicExtractorConfig{
			MaxTopics:    cfg.TopicExtraction.MaxTopics,
			MinFrequency: cfg.TopicExtraction.MinFrequency,
		},
		QualityScoring: intelligence.QualityScorerConfig{
			CompletenessWeight: cfg.QualityScoring.CompletenessWeight,
			FreshnessWeight:    cfg.QualityScoring.FreshnessWeight,
			ClarityWeight:      cfg.QualityScoring.ClarityWeight,
		},
		Similarity: intelligence.SimilarityConfig{
			SimilarityThreshold: cfg.Similarity.SimilarityThreshold,
			DuplicateThreshold:  cfg.Similarity.DuplicateThreshold,
		},
		CrossLinking: intelligence.CrossLinkerConfig{
			MaxRelatedDocuments: cfg.CrossLinking.MaxRelatedDocuments,
			RelevanceThreshold:  cfg.CrossLinking.RelevanceThreshold,
		},
	}
}

// resolveUnder anchors relative state and index names to the content root so
// configured file names land next to the documents they describe.
func resolveUnder(root, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Join(root, trimmed)
}
