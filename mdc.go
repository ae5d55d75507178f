package mdc

import (
	"context"
	"errors"

	pipelinecmd "github.com/goliatone/go-mdc/internal/commands/pipeline"
	"github.com/goliatone/go-mdc/internal/di"
	"github.com/goliatone/go-mdc/internal/emit"
	"github.com/goliatone/go-mdc/internal/intelligence"
	"github.com/goliatone/go-mdc/internal/markdown"
	"github.com/goliatone/go-mdc/internal/project"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Document exports the stored-document DTO for consumers of the mdc package.
type Document = interfaces.Document

// SourceFile exports the loaded-source DTO.
type SourceFile = interfaces.SourceFile

// DocumentStore exports the document store contract.
type DocumentStore = interfaces.DocumentStore

// SourceLoader exports the source discovery contract.
type SourceLoader = interfaces.SourceLoader

// Logger exports the structured logging contract.
type Logger = interfaces.Logger

// LoggerProvider exports the logger provider contract.
type LoggerProvider = interfaces.LoggerProvider

// FrontMatter exports the MDC front matter envelope.
type FrontMatter = markdown.FrontMatter

// TransformOptions exports the content transformation toggles.
type TransformOptions = markdown.TransformOptions

// LoaderService exports the source discovery service.
type LoaderService = *markdown.Loader

// TransformerService exports the content transformation service.
type TransformerService = *markdown.Transformer

// StoreService exports the emitted-document store.
type StoreService = *markdown.Store

// EmitterService exports the MDC emission service.
type EmitterService = *emit.Emitter

// IntelligenceService exports the content analysis service.
type IntelligenceService = *intelligence.Analyzer

// ProjectService exports project configuration discovery.
type ProjectService = *project.Service

// PipelineService exports the conversion and analysis orchestration service.
type PipelineService = *pipelinecmd.Service

// HandlerSet exports the command handlers built when commands are enabled.
type HandlerSet = *pipelinecmd.HandlerSet

// CommandDispatcher exports the dispatcher bridge for pipeline commands.
type CommandDispatcher = *di.Dispatcher

// ConvertMessage exports the conversion command payload.
type ConvertMessage = pipelinecmd.ConvertMessage

// AnalyzeMessage exports the analysis command payload.
type AnalyzeMessage = pipelinecmd.AnalyzeMessage

// ConversionResult exports the aggregated conversion report.
type ConversionResult = emit.Result

// ConversionTotals exports the accumulated conversion counters.
type ConversionTotals = emit.Totals

// AnalysisSummary exports the aggregated analysis report.
type AnalysisSummary = intelligence.Summary

// QualityMetrics exports the per-document quality scores.
type QualityMetrics = intelligence.QualityMetrics

// RelatedDocument exports a cross-link suggestion.
type RelatedDocument = intelligence.RelatedDocument

// SimilarDocument exports a similarity classification.
type SimilarDocument = intelligence.SimilarDocument

// FeatureSet exports the analysis feature selection.
type FeatureSet = intelligence.FeatureSet

// ProjectConfig exports the per-project configuration document.
type ProjectConfig = project.Config

// Analysis feature names accepted by AnalyzeMessage and ParseFeatures.
const (
	FeatureTopicExtraction    = intelligence.FeatureTopicExtraction
	FeatureCrossLinking       = intelligence.FeatureCrossLinking
	FeatureQualityScoring     = intelligence.FeatureQualityScoring
	FeatureDuplicateDetection = intelligence.FeatureDuplicateDetection
)

// ParseFeatures resolves feature tokens into a selection set. Unknown tokens
// are ignored; no tokens selects every feature.
func ParseFeatures(tokens []string) FeatureSet {
	return intelligence.ParseFeatures(tokens)
}

// ErrModuleDisabled reports that the module was constructed with Enabled set
// to false, so no pipeline services are available.
var ErrModuleDisabled = errors.New("mdc: module is disabled")

// Module represents the top level MDC runtime façade.
type Module struct {
	container *di.Container
}

// New constructs an MDC module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Loader returns the configured source loader.
func (m *Module) Loader() LoaderService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Loader()
}

// Transformer returns the configured content transformer.
func (m *Module) Transformer() TransformerService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Transformer()
}

// Store returns the emitted-document store backing analysis.
func (m *Module) Store() StoreService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Store()
}

// Emitter returns the configured MDC emitter.
func (m *Module) Emitter() EmitterService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Emitter()
}

// Intelligence returns the configured content analyzer.
func (m *Module) Intelligence() IntelligenceService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Intelligence()
}

// Projects returns project configuration discovery.
func (m *Module) Projects() ProjectService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Projects()
}

// Pipeline returns the conversion and analysis orchestration service.
func (m *Module) Pipeline() PipelineService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Pipeline()
}

// Handlers returns the command handlers built when commands are enabled.
func (m *Module) Handlers() HandlerSet {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Handlers()
}

// Dispatcher returns the command dispatcher bridge when commands are enabled.
func (m *Module) Dispatcher() CommandDispatcher {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Dispatcher()
}

// LoggerProvider returns the provider backing module loggers.
func (m *Module) LoggerProvider() LoggerProvider {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.LoggerProvider()
}

// Convert runs a conversion over the message's source directory and reports
// aggregated counters. It delegates to the pipeline service.
func (m *Module) Convert(ctx context.Context, msg ConvertMessage) (*ConversionResult, error) {
	pipeline := m.Pipeline()
	if pipeline == nil {
		return nil, ErrModuleDisabled
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return pipeline.Convert(ctx, msg)
}

// Analyze runs the intelligence pass over the message's document directory
// and reports an analysis summary. It delegates to the pipeline service.
func (m *Module) Analyze(ctx context.Context, msg AnalyzeMessage) (*AnalysisSummary, error) {
	pipeline := m.Pipeline()
	if pipeline == nil {
		return nil, ErrModuleDisabled
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return pipeline.Analyze(ctx, msg)
}
