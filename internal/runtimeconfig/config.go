package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrLoaderContentDirRequired indicates conversion was enabled without a source directory.
var ErrLoaderContentDirRequired = errors.New("mdc config: loader content directory is required when the emitter is enabled")

// ErrEmitterOutputDirRequired ensures emitted documents have a destination.
var ErrEmitterOutputDirRequired = errors.New("mdc config: emitter output directory is required when the emitter is enabled")

// ErrIntelligenceDirRequired ensures analysis runs always have a collection root.
var ErrIntelligenceDirRequired = errors.New("mdc config: intelligence content directory is required when intelligence is enabled")

var ErrIntelligenceWorkersInvalid = errors.New("mdc config: intelligence worker count must be zero or positive")
var ErrTopicLimitInvalid = errors.New("mdc config: topic extraction max topics must be positive")
var ErrTopicFrequencyInvalid = errors.New("mdc config: topic extraction min frequency must be positive")
var ErrQualityWeightInvalid = errors.New("mdc config: quality weights must be zero or positive")
var ErrSimilarityThresholdInvalid = errors.New("mdc config: similarity thresholds must fall within [0,1]")
var ErrRelevanceThresholdInvalid = errors.New("mdc config: cross linking relevance threshold must fall within [0,1]")
var ErrRelatedLimitInvalid = errors.New("mdc config: cross linking max related documents must be positive")
var ErrLoggingProviderRequired = errors.New("mdc config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("mdc config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("mdc config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("mdc config: logging format is invalid")

// Config aggregates feature flags and pipeline bindings for the MDC module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled      bool
	Source       SourceConfig
	Loader       LoaderConfig
	Transforms   TransformsConfig
	Emitter      EmitterConfig
	Intelligence IntelligenceConfig
	Features     Features
	Commands     CommandsConfig
	Logging      LoggingConfig
}

// SourceConfig describes where the documentation corpus originates. Repo and
// Ref feed canonical URL construction; both are optional for local trees.
type SourceConfig struct {
	Repo string
	Ref  string
	Name string
}

// LoaderConfig captures filesystem discovery behaviour for Markdown/MDX sources.
type LoaderConfig struct {
	ContentDir string
	Include    []string
	Exclude    []string
}

// TransformsConfig toggles the text substitutions applied before emission.
type TransformsConfig struct {
	StripJSX           bool
	StripHTMLComments  bool
	NormalizeHeadings  bool
	CollapseBlankLines bool
}

// EmitterConfig captures behaviour for MDC emission.
type EmitterConfig struct {
	OutputDir     string
	IndexFile     string
	License       string
	SkipUnchanged bool
}

// IntelligenceConfig captures tunables for the analysis subsystem. The nested
// sections mirror the per-component configuration documented alongside each
// analyzer.
type IntelligenceConfig struct {
	ContentDir  string
	StateFile   string
	IndexFile   string
	Incremental bool
	Workers     int
	Features    []string

	TopicExtraction TopicExtractionConfig
	QualityScoring  QualityScoringConfig
	Similarity      SimilarityConfig
	CrossLinking    CrossLinkingConfig
}

// TopicExtractionConfig bounds topic candidates and ranking.
type TopicExtractionConfig struct {
	MaxTopics    int
	MinFrequency int
}

// QualityScoringConfig weights the three quality axes.
type QualityScoringConfig struct {
	CompletenessWeight float64
	FreshnessWeight    float64
	ClarityWeight      float64
}

// SimilarityConfig bounds pairwise similarity classification.
type SimilarityConfig struct {
	SimilarityThreshold float64
	DuplicateThreshold  float64
}

// CrossLinkingConfig bounds related-document suggestions.
type CrossLinkingConfig struct {
	MaxRelatedDocuments int
	RelevanceThreshold  float64
}

// Features toggles module functionality.
type Features struct {
	Emitter      bool
	Intelligence bool
	Logger       bool
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults matching the documented tunables.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Source: SourceConfig{
			Ref: "main",
		},
		Loader: LoaderConfig{
			ContentDir: "content",
			Include:    []string{"*.md", "*.mdx", "**/*.md", "**/*.mdx"},
			Exclude:    []string{"node_modules/**", ".git/**", "dist/**", "build/**"},
		},
		Transforms: TransformsConfig{
			StripJSX:           true,
			StripHTMLComments:  true,
			NormalizeHeadings:  true,
			CollapseBlankLines: true,
		},
		Emitter: EmitterConfig{
			OutputDir:     "output",
			IndexFile:     "index.jsonl",
			SkipUnchanged: true,
		},
		Intelligence: IntelligenceConfig{
			ContentDir:  "output",
			StateFile:   ".intelligence-state.json",
			IndexFile:   "intelligence.jsonl",
			Incremental: true,
			Workers:     0,
			Features: []string{
				"topic-extraction",
				"cross-linking",
				"quality-scoring",
				"duplicate-detection",
			},
			TopicExtraction: TopicExtractionConfig{
				MaxTopics:    10,
				MinFrequency: 2,
			},
			QualityScoring: QualityScoringConfig{
				CompletenessWeight: 0.4,
				FreshnessWeight:    0.3,
				ClarityWeight:      0.3,
			},
			Similarity: SimilarityConfig{
				SimilarityThreshold: 0.8,
				DuplicateThreshold:  0.95,
			},
			CrossLinking: CrossLinkingConfig{
				MaxRelatedDocuments: 5,
				RelevanceThreshold:  0.4,
			},
		},
		Features: Features{},
		Commands: CommandsConfig{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Features.Emitter {
		if strings.TrimSpace(cfg.Loader.ContentDir) == "" {
			return ErrLoaderContentDirRequired
		}
		if strings.TrimSpace(cfg.Emitter.OutputDir) == "" {
			return ErrEmitterOutputDirRequired
		}
	}
	if cfg.Features.Intelligence {
		if strings.TrimSpace(cfg.Intelligence.ContentDir) == "" {
			return ErrIntelligenceDirRequired
		}
	}
	if cfg.Intelligence.Workers < 0 {
		return ErrIntelligenceWorkersInvalid
	}
	if cfg.Intelligence.TopicExtraction.MaxTopics <= 0 {
		return ErrTopicLimitInvalid
	}
	if cfg.Intelligence.TopicExtraction.MinFrequency <= 0 {
		return ErrTopicFrequencyInvalid
	}
	weights := cfg.Intelligence.QualityScoring
	if weights.CompletenessWeight < 0 || weights.FreshnessWeight < 0 || weights.ClarityWeight < 0 {
		return ErrQualityWeightInvalid
	}
	sim := cfg.Intelligence.Similarity
	if !withinUnit(sim.SimilarityThreshold) || !withinUnit(sim.DuplicateThreshold) {
		return ErrSimilarityThresholdInvalid
	}
	cross := cfg.Intelligence.CrossLinking
	if !withinUnit(cross.RelevanceThreshold) {
		return ErrRelevanceThresholdInvalid
	}
	if cross.MaxRelatedDocuments <= 0 {
		return ErrRelatedLimitInvalid
	}
	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func withinUnit(value float64) bool {
	return value >= 0 && value <= 1
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
