package mdc

import "github.com/goliatone/go-mdc/internal/runtimeconfig"

var (
	ErrLoaderContentDirRequired   = runtimeconfig.ErrLoaderContentDirRequired
	ErrEmitterOutputDirRequired   = runtimeconfig.ErrEmitterOutputDirRequired
	ErrIntelligenceDirRequired    = runtimeconfig.ErrIntelligenceDirRequired
	ErrIntelligenceWorkersInvalid = runtimeconfig.ErrIntelligenceWorkersInvalid
	ErrTopicLimitInvalid          = runtimeconfig.ErrTopicLimitInvalid
	ErrTopicFrequencyInvalid      = runtimeconfig.ErrTopicFrequencyInvalid
	ErrQualityWeightInvalid       = runtimeconfig.ErrQualityWeightInvalid
	ErrSimilarityThresholdInvalid = runtimeconfig.ErrSimilarityThresholdInvalid
	ErrRelevanceThresholdInvalid  = runtimeconfig.ErrRelevanceThresholdInvalid
	ErrRelatedLimitInvalid        = runtimeconfig.ErrRelatedLimitInvalid
	ErrLoggingProviderRequired    = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown     = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid        = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid       = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config                = runtimeconfig.Config
	SourceConfig          = runtimeconfig.SourceConfig
	LoaderConfig          = runtimeconfig.LoaderConfig
	TransformsConfig      = runtimeconfig.TransformsConfig
	EmitterConfig         = runtimeconfig.EmitterConfig
	IntelligenceConfig    = runtimeconfig.IntelligenceConfig
	TopicExtractionConfig = runtimeconfig.TopicExtractionConfig
	QualityScoringConfig  = runtimeconfig.QualityScoringConfig
	SimilarityConfig      = runtimeconfig.SimilarityConfig
	CrossLinkingConfig    = runtimeconfig.CrossLinkingConfig
	Features              = runtimeconfig.Features
	CommandsConfig        = runtimeconfig.CommandsConfig
	LoggingConfig         = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
