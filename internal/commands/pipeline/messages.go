package pipelinecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-mdc/internal/intelligence"
	"github.com/goliatone/go-mdc/internal/markdown"
)

const (
	convertMessageType = "mdc.pipeline.convert"
	analyzeMessageType = "mdc.pipeline.analyze"
)

// ConvertMessage triggers a full conversion run: load Markdown/MDX sources
// from SourceDir, transform them, and emit .mdc documents plus the index
// manifest into OutputDir. Repo, Ref, Topics, and Profile override the values
// resolved from the project configuration when set.
type ConvertMessage struct {
	// SourceDir selects the directory to load Markdown/MDX sources from.
	SourceDir string `json:"source_dir"`
	// OutputDir receives the emitted .mdc files and index.jsonl manifest.
	OutputDir string `json:"output_dir"`
	// ProjectConfig points at an explicit context7.json. When empty the file
	// is detected near SourceDir.
	ProjectConfig string `json:"project_config,omitempty"`
	// Repo overrides the source repository identifier, e.g. "vercel/next.js".
	Repo string `json:"repo,omitempty"`
	// Ref overrides the git reference recorded on emitted documents.
	Ref string `json:"ref,omitempty"`
	// Topics are applied to every emitted document in addition to the project
	// configuration's topics.
	Topics []string `json:"topics,omitempty"`
	// Profile overrides the optimization profile (lossless, balanced, compact).
	Profile string `json:"profile,omitempty"`
	// Transforms toggles individual cleanup passes by name (cleanMdx,
	// stripComments, normalizeHeadings, collapseBlankLines), overriding the
	// project configuration.
	Transforms map[string]bool `json:"transforms,omitempty"`
}

// Type implements command.Message.
func (ConvertMessage) Type() string { return convertMessageType }

// Validate ensures directory inputs are present before handlers execute.
func (cmd ConvertMessage) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.SourceDir, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("mdc.pipeline.convert.source_required", "source directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.OutputDir, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("mdc.pipeline.convert.output_required", "output directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.Profile, validation.In(
			markdown.ProfileLossless,
			markdown.ProfileBalanced,
			markdown.ProfileCompact,
		)),
	)
}

// AnalyzeMessage triggers a content intelligence pass over the .mdc documents
// in Directory. Features beyond the defaults can be selected by name, and
// StateFile/IndexFile relocate the analysis state and intelligence index away
// from the content root.
type AnalyzeMessage struct {
	// Directory selects the .mdc collection to analyze.
	Directory string `json:"directory"`
	// Features names the analyses to run. Empty enables every feature.
	Features []string `json:"features,omitempty"`
	// Incremental skips documents whose content hash matches the recorded
	// analysis state.
	Incremental bool `json:"incremental,omitempty"`
	// StateFile overrides where incremental state is kept.
	StateFile string `json:"state_file,omitempty"`
	// IndexFile overrides where the intelligence index is written.
	IndexFile string `json:"index_file,omitempty"`
	// Workers caps analysis concurrency. Zero means one worker per CPU.
	Workers int `json:"workers,omitempty"`
}

// Type implements command.Message.
func (AnalyzeMessage) Type() string { return analyzeMessageType }

// Validate ensures the directory is present and feature names are known.
func (cmd AnalyzeMessage) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("mdc.pipeline.analyze.directory_required", "directory is required")
			}
			return nil
		})),
		validation.Field(&cmd.Features, validation.Each(validation.In(
			intelligence.FeatureTopicExtraction,
			intelligence.FeatureQualityScoring,
			intelligence.FeatureCrossLinking,
			intelligence.FeatureDuplicateDetection,
		))),
		validation.Field(&cmd.Workers, validation.Min(0)),
	)
}
