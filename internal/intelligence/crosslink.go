package intelligence

import (
	"math"
	"sort"
	"strings"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// Relevance blends four signals with fixed weights. Topic overlap dominates,
// path proximity and fingerprint similarity refine it, and quality
// compatibility nudges documents of comparable polish together.
const (
	topicOverlapWeight          = 0.4
	pathSimilarityWeight        = 0.2
	fingerprintSimilarityWeight = 0.25
	qualityCompatibilityWeight  = 0.15
)

// CrossLinkerConfig tunes related document discovery. Zero values fall back
// to 5 related documents and a 0.4 relevance threshold.
type CrossLinkerConfig struct {
	MaxRelatedDocuments int
	RelevanceThreshold  float64
}

func (c CrossLinkerConfig) withDefaults() CrossLinkerConfig {
	if c.MaxRelatedDocuments <= 0 {
		c.MaxRelatedDocuments = 5
	}
	if c.RelevanceThreshold <= 0 {
		c.RelevanceThreshold = 0.4
	}
	return c
}

// CrossLinker scores document pairs for relevance and classifies the
// relationship between them.
type CrossLinker struct {
	maxRelated         int
	relevanceThreshold float64
	logger             interfaces.Logger
}

// NewCrossLinker builds a cross linker with the supplied limits.
func NewCrossLinker(cfg CrossLinkerConfig, logger interfaces.Logger) *CrossLinker {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NoOp()
	}
	return &CrossLinker{
		maxRelated:         cfg.MaxRelatedDocuments,
		relevanceThreshold: cfg.RelevanceThreshold,
		logger:             logger,
	}
}

// FindRelatedDocuments returns the candidates most relevant to target, sorted
// by descending relevance and capped at the configured maximum. The target
// itself is never included.
func (c *CrossLinker) FindRelatedDocuments(target *Analysis, candidates []*Analysis) []RelatedDocument {
	related := make([]RelatedDocument, 0)
	for _, candidate := range candidates {
		if candidate.Document.Slug == target.Document.Slug {
			continue
		}
		relevance := c.relevance(target, candidate)
		if relevance < c.relevanceThreshold {
			continue
		}
		related = append(related, RelatedDocument{
			Slug:         candidate.Document.Slug,
			Title:        candidate.Document.Title,
			Relevance:    round3(relevance),
			Relationship: relationshipType(target, candidate, relevance),
		})
	}

	sort.SliceStable(related, func(a, b int) bool {
		return related[a].Relevance > related[b].Relevance
	})
	if len(related) > c.maxRelated {
		related = related[:c.maxRelated]
	}

	if len(related) > 0 {
		c.logger.Debug("related documents found",
			"slug", target.Document.Slug,
			"count", len(related),
		)
	}
	return related
}

// relevance combines topic overlap, path proximity, fingerprint similarity,
// and quality compatibility into a single score capped at 1.0.
func (c *CrossLinker) relevance(target, candidate *Analysis) float64 {
	score := 0.0

	targetTopics := combinedTopicSet(target)
	candidateTopics := combinedTopicSet(candidate)
	if len(targetTopics) > 0 && len(candidateTopics) > 0 {
		score += jaccard(targetTopics, candidateTopics) * topicOverlapWeight
	}

	targetPath := sourcePath(target.Document.Metadata)
	candidatePath := sourcePath(candidate.Document.Metadata)
	score += pathSimilarity(targetPath, candidatePath) * pathSimilarityWeight

	score += fingerprintSimilarity(target.Fingerprint, candidate.Fingerprint) * fingerprintSimilarityWeight

	score += qualityCompatibility(target.Quality, candidate.Quality) * qualityCompatibilityWeight

	return math.Min(score, 1.0)
}

// relationshipType classifies how two documents relate. Path layout wins over
// topic overlap, which wins over relevance score bands.
func relationshipType(target, candidate *Analysis, relevance float64) string {
	targetPath := sourcePath(target.Document.Metadata)
	candidatePath := sourcePath(candidate.Document.Metadata)
	if targetPath != "" && candidatePath != "" {
		if strings.HasPrefix(candidatePath, parentDir(targetPath)) {
			return "sibling"
		}
		if strings.HasPrefix(targetPath, parentDir(candidatePath)) {
			return "parent-child"
		}
	}

	targetTopics := stringSet(target.Topics)
	candidateTopics := stringSet(candidate.Topics)
	if len(targetTopics) > 0 && len(candidateTopics) > 0 {
		if jaccard(targetTopics, candidateTopics) > 0.6 {
			return "related-content"
		}
	}

	if containsAny(targetTopics, "implementation", "example", "tutorial") &&
		containsAny(candidateTopics, "concept", "overview", "introduction") {
		return "implementation-detail"
	}

	switch {
	case relevance > 0.8:
		return "highly-related"
	case relevance > 0.6:
		return "related"
	default:
		return "tangentially-related"
	}
}

// parentDir returns everything up to the last path separator, or the whole
// path when it has none.
func parentDir(path string) string {
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		return path[:idx]
	}
	return path
}

// pathSimilarity measures how many leading path segments two source paths
// share, relative to the longer path.
func pathSimilarity(path1, path2 string) float64 {
	if path1 == "" || path2 == "" {
		return 0
	}

	segments1 := strings.Split(strings.ReplaceAll(path1, "\\", "/"), "/")
	segments2 := strings.Split(strings.ReplaceAll(path2, "\\", "/"), "/")

	common := 0
	for i := 0; i < len(segments1) && i < len(segments2); i++ {
		if segments1[i] != segments2[i] {
			break
		}
		common++
	}

	longest := len(segments1)
	if len(segments2) > longest {
		longest = len(segments2)
	}
	return float64(common) / float64(longest)
}

// fingerprintSimilarity compares two fingerprints byte by byte. Identical
// fingerprints score 1.0; otherwise the share of matching positions over the
// longer fingerprint.
func fingerprintSimilarity(fp1, fp2 string) float64 {
	if fp1 == "" || fp2 == "" {
		return 0
	}
	if fp1 == fp2 {
		return 1.0
	}

	shortest := len(fp1)
	if len(fp2) < shortest {
		shortest = len(fp2)
	}
	matches := 0
	for i := 0; i < shortest; i++ {
		if fp1[i] == fp2[i] {
			matches++
		}
	}

	longest := len(fp1)
	if len(fp2) > longest {
		longest = len(fp2)
	}
	return float64(matches) / float64(longest)
}

// qualityCompatibility scores how close two overall quality scores are. A nil
// metrics value on either side yields a neutral 0.5.
func qualityCompatibility(q1, q2 *QualityMetrics) float64 {
	if q1 == nil || q2 == nil {
		return 0.5
	}
	return math.Max(0, 1-math.Abs(q1.Overall-q2.Overall))
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

// combinedTopicSet merges extracted topics with any topics declared in
// document metadata.
func combinedTopicSet(analysis *Analysis) map[string]struct{} {
	set := stringSet(analysis.Topics)
	for _, topic := range metadataTopics(analysis.Document.Metadata) {
		set[topic] = struct{}{}
	}
	return set
}

func jaccard(set1, set2 map[string]struct{}) float64 {
	if len(set1) == 0 || len(set2) == 0 {
		return 0
	}
	intersection := 0
	for value := range set1 {
		if _, ok := set2[value]; ok {
			intersection++
		}
	}
	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func containsAny(set map[string]struct{}, values ...string) bool {
	for _, value := range values {
		if _, ok := set[value]; ok {
			return true
		}
	}
	return false
}
