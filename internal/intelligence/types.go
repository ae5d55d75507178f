package intelligence

import "github.com/goliatone/go-mdc/pkg/interfaces"

// QualityMetrics captures per-document quality along three axes plus the
// weighted overall score. Every value lies in [0, 1], rounded to two decimals.
type QualityMetrics struct {
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Freshness    float64 `json:"freshness" yaml:"freshness"`
	Clarity      float64 `json:"clarity" yaml:"clarity"`
	Overall      float64 `json:"overall" yaml:"overall"`
}

// RelatedDocument is one cross-link suggestion produced by the CrossLinker.
type RelatedDocument struct {
	Slug         string  `json:"slug" yaml:"slug"`
	Title        string  `json:"title" yaml:"title"`
	Relevance    float64 `json:"relevance" yaml:"relevance"`
	Relationship string  `json:"relationship" yaml:"relationship"`
}

// SimilarDocument is one match produced by the SimilarityAnalyzer. The
// relationship is either "similar" or "duplicate".
type SimilarDocument struct {
	Slug         string  `json:"slug" yaml:"slug"`
	Title        string  `json:"title" yaml:"title"`
	Similarity   float64 `json:"similarity" yaml:"similarity"`
	Relationship string  `json:"relationship" yaml:"relationship"`
}

// Analysis accumulates one document's results across both analysis phases
// before they are folded back into the document's metadata. Fields belonging
// to disabled features stay at their zero values.
type Analysis struct {
	Document     *interfaces.Document
	Topics       []string
	Quality      *QualityMetrics
	Fingerprint  string
	Related      []RelatedDocument
	Similar      []SimilarDocument
	LastAnalyzed string
}

// Summary reports the outcome of one analysis run.
type Summary struct {
	Processed       int      `json:"processed" yaml:"processed"`
	Updated         int      `json:"updated" yaml:"updated"`
	Skipped         int      `json:"skipped" yaml:"skipped"`
	Errors          int      `json:"errors" yaml:"errors"`
	FeaturesEnabled []string `json:"features_enabled" yaml:"features_enabled"`
	Timestamp       string   `json:"timestamp" yaml:"timestamp"`
}

// metadataTopics returns the declared topics list from document metadata,
// tolerating both decoded-YAML ([]any) and native ([]string) shapes.
func metadataTopics(meta map[string]any) []string {
	switch value := meta["topics"].(type) {
	case []string:
		return value
	case []any:
		topics := make([]string, 0, len(value))
		for _, item := range value {
			if s, ok := item.(string); ok {
				topics = append(topics, s)
			}
		}
		return topics
	default:
		return nil
	}
}

func metadataTitle(meta map[string]any) string {
	title, _ := meta["title"].(string)
	return title
}

// sourcePath returns the nested source.path declaration, or "".
func sourcePath(meta map[string]any) string {
	source, ok := meta["source"].(map[string]any)
	if !ok {
		return ""
	}
	path, _ := source["path"].(string)
	return path
}
