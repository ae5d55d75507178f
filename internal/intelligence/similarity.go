package intelligence

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// SimilarityConfig tunes duplicate detection. Zero thresholds fall back to
// 0.8 for similarity and 0.95 for duplicates.
type SimilarityConfig struct {
	SimilarityThreshold float64
	DuplicateThreshold  float64
}

func (c SimilarityConfig) withDefaults() SimilarityConfig {
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = 0.8
	}
	if c.DuplicateThreshold <= 0 {
		c.DuplicateThreshold = 0.95
	}
	return c
}

var (
	fingerprintMarkupRe = regexp.MustCompile("[*_#>`-]")
	fingerprintPunctRe  = regexp.MustCompile(`[^\w\s.]`)
	headingMarkerRe     = regexp.MustCompile(`(?m)^#+\s*`)
)

var similarityStopWords = wordSet(
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
	"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
	"how", "its", "may", "new", "now", "old", "see", "two", "who", "boy",
	"did", "use", "way", "she", "oil", "sit", "set", "run", "eat", "far",
	"sea", "eye", "ask", "own", "say", "too", "any", "try", "let", "put",
)

type wordVector map[string]int

// SimilarityAnalyzer fingerprints document content and finds near-duplicate
// pairs via cosine similarity over word frequency vectors.
type SimilarityAnalyzer struct {
	similarityThreshold float64
	duplicateThreshold  float64
	logger              interfaces.Logger
}

// NewSimilarityAnalyzer builds an analyzer with the supplied thresholds.
func NewSimilarityAnalyzer(cfg SimilarityConfig, logger interfaces.Logger) *SimilarityAnalyzer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NoOp()
	}
	return &SimilarityAnalyzer{
		similarityThreshold: cfg.SimilarityThreshold,
		duplicateThreshold:  cfg.DuplicateThreshold,
		logger:              logger,
	}
}

// Fingerprint returns a 16 character hex digest of the normalized content.
// Documents that differ only in markdown markup or whitespace share a
// fingerprint.
func (s *SimilarityAnalyzer) Fingerprint(content string) string {
	normalized := normalizeForFingerprint(content)
	digest := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])[:16]
}

func normalizeForFingerprint(content string) string {
	normalized := strings.ToLower(content)
	normalized = fingerprintMarkupRe.ReplaceAllString(normalized, "")
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	normalized = fingerprintPunctRe.ReplaceAllString(normalized, "")
	return strings.TrimSpace(normalized)
}

// FindSimilarDocuments compares every pair of analyses and returns, keyed by
// slug, the documents whose cosine similarity meets the similarity threshold.
// Each qualifying pair is recorded under both slugs.
func (s *SimilarityAnalyzer) FindSimilarDocuments(analyses []*Analysis) map[string][]SimilarDocument {
	vectors := make([]wordVector, len(analyses))
	for i, analysis := range analyses {
		vectors[i] = contentVector(analysis.Document.Content)
	}

	similar := make(map[string][]SimilarDocument)
	record := func(owner, other *Analysis, similarity float64) {
		relationship := "similar"
		if similarity >= s.duplicateThreshold {
			relationship = "duplicate"
		}
		similar[owner.Document.Slug] = append(similar[owner.Document.Slug], SimilarDocument{
			Slug:         other.Document.Slug,
			Title:        other.Document.Title,
			Similarity:   round3(similarity),
			Relationship: relationship,
		})
	}

	for i := 0; i < len(analyses); i++ {
		for j := i + 1; j < len(analyses); j++ {
			similarity := cosineSimilarity(vectors[i], vectors[j])
			if similarity < s.similarityThreshold {
				continue
			}
			record(analyses[i], analyses[j], similarity)
			record(analyses[j], analyses[i], similarity)
		}
	}

	for slug := range similar {
		list := similar[slug]
		sort.SliceStable(list, func(a, b int) bool {
			return list[a].Similarity > list[b].Similarity
		})
		similar[slug] = list
	}

	if len(similar) > 0 {
		s.logger.Debug("similar documents detected", "documents", len(similar))
	}
	return similar
}

func contentVector(content string) wordVector {
	cleaned := cleanForVector(content)
	vector := make(wordVector)
	for _, token := range alphaTokenRe.FindAllString(cleaned, -1) {
		word := strings.ToLower(token)
		if _, stop := similarityStopWords[word]; stop {
			continue
		}
		vector[word]++
	}
	return vector
}

func cleanForVector(content string) string {
	cleaned := codeFenceRe.ReplaceAllString(content, " ")
	cleaned = inlineCodeRe.ReplaceAllString(cleaned, " ")
	cleaned = markdownLinkRe.ReplaceAllString(cleaned, "$1")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, " ")
	cleaned = headingMarkerRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// cosineSimilarity returns the cosine of the angle between two word frequency
// vectors, clamped to [0, 1]. Empty vectors score zero.
func cosineSimilarity(v1, v2 wordVector) float64 {
	if len(v1) == 0 || len(v2) == 0 {
		return 0
	}

	dot := 0
	for word, count := range v1 {
		if other, ok := v2[word]; ok {
			dot += count * other
		}
	}
	if dot == 0 {
		return 0
	}

	mag1 := vectorMagnitude(v1)
	mag2 := vectorMagnitude(v2)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	similarity := float64(dot) / (mag1 * mag2)
	return math.Max(0, math.Min(1, similarity))
}

func vectorMagnitude(v wordVector) float64 {
	sum := 0
	for _, count := range v {
		sum += count * count
	}
	return math.Sqrt(float64(sum))
}
