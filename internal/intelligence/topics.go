package intelligence

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// TopicExtractorConfig tunes topic extraction. Zero values fall back to the
// documented defaults.
type TopicExtractorConfig struct {
	// MaxTopics bounds the ranked result list. Default 10.
	MaxTopics int
	// MinFrequency is the occurrence floor for body keywords. Default 2.
	MinFrequency int
}

func (c TopicExtractorConfig) withDefaults() TopicExtractorConfig {
	if c.MaxTopics <= 0 {
		c.MaxTopics = 10
	}
	if c.MinFrequency <= 0 {
		c.MinFrequency = 2
	}
	return c
}

// topicStopWords are common English words excluded from topic candidates.
var topicStopWords = wordSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to",
	"for", "of", "with", "by", "from", "up", "about", "into", "through", "during",
	"before", "after", "above", "below", "between", "among", "against", "is", "are", "was",
	"were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
	"will", "would", "could", "should", "may", "might", "must", "can", "this", "that",
	"these", "those", "i", "you", "he", "she", "it", "we", "they", "me",
	"him", "her", "us", "them", "my", "your", "his", "its", "our", "their",
	"all", "any", "both", "each", "few", "more", "most", "other", "some", "such",
	"no", "nor", "not", "only", "own", "same", "so", "than", "too", "very",
	"just", "now", "here", "there", "when", "where", "why", "how", "what", "which",
	"who", "whom", "whose", "if", "then", "else",
)

var (
	pathExtensionRe = regexp.MustCompile(`\.[^.]+$`)
	pathTokenRe     = regexp.MustCompile(`[-_\s]+`)
	headingPunctRe  = regexp.MustCompile(`[^\w\s-]`)
	markdownMarkRe  = regexp.MustCompile(`[*_#>-]`)
)

// TopicExtractor derives ranked topic keywords for a single document from its
// source path, headings, body keyword frequency, and declared metadata.
type TopicExtractor struct {
	maxTopics    int
	minFrequency int
	logger       interfaces.Logger
}

// NewTopicExtractor builds an extractor with the supplied tuning.
func NewTopicExtractor(cfg TopicExtractorConfig, logger interfaces.Logger) *TopicExtractor {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NoOp()
	}
	return &TopicExtractor{
		maxTopics:    cfg.MaxTopics,
		minFrequency: cfg.MinFrequency,
		logger:       logger,
	}
}

// ExtractTopics returns up to MaxTopics lowercase topics ranked by relevance.
// Candidates come from the source path, headings, frequent body keywords, and
// declared metadata, deduplicated in collection order; each is scored by its
// occurrence count in the content with heading and length boosts. Ties keep
// collection order.
func (e *TopicExtractor) ExtractTopics(content string, metadata map[string]any) []string {
	collector := newTopicCollector()
	collector.addAll(pathTopics(sourcePath(metadata)))
	collector.addAll(headingTopics(content))
	collector.addAll(e.keywordTopics(content))
	collector.addAll(declaredTopics(metadata))

	ranked := rankTopics(collector.candidates, content)
	if len(ranked) > e.maxTopics {
		ranked = ranked[:e.maxTopics]
	}

	e.logger.Debug("extracted topics",
		"candidates", len(collector.candidates), "selected", len(ranked))
	return ranked
}

// topicCollector deduplicates candidates case-insensitively while preserving
// first-seen order, and drops stop words and tokens of two characters or less.
type topicCollector struct {
	seen       map[string]struct{}
	candidates []string
}

func newTopicCollector() *topicCollector {
	return &topicCollector{seen: make(map[string]struct{})}
}

func (c *topicCollector) add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if utf8.RuneCountInString(token) <= 2 {
		return
	}
	if _, stop := topicStopWords[token]; stop {
		return
	}
	if _, dup := c.seen[token]; dup {
		return
	}
	c.seen[token] = struct{}{}
	c.candidates = append(c.candidates, token)
}

func (c *topicCollector) addAll(tokens []string) {
	for _, token := range tokens {
		c.add(token)
	}
}

func pathTopics(path string) []string {
	if path == "" {
		return nil
	}
	var tokens []string
	for _, part := range strings.Split(strings.ReplaceAll(path, "\\", "/"), "/") {
		part = pathExtensionRe.ReplaceAllString(part, "")
		tokens = append(tokens, pathTokenRe.Split(strings.ToLower(part), -1)...)
	}
	return tokens
}

func headingTopics(content string) []string {
	var tokens []string
	for _, match := range headingLineRe.FindAllStringSubmatch(content, -1) {
		cleaned := headingPunctRe.ReplaceAllString(strings.ToLower(match[1]), " ")
		tokens = append(tokens, strings.Fields(cleaned)...)
	}
	return tokens
}

func (e *TopicExtractor) keywordTopics(content string) []string {
	cleaned := cleanForKeywords(content)

	counts := make(map[string]int)
	var order []string
	for _, word := range alphaTokenRe.FindAllString(strings.ToLower(cleaned), -1) {
		if _, stop := topicStopWords[word]; stop {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	var tokens []string
	for _, word := range order {
		if counts[word] >= e.minFrequency {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func declaredTopics(metadata map[string]any) []string {
	tokens := append([]string(nil), metadataTopics(metadata)...)
	if title := metadataTitle(metadata); title != "" {
		for _, word := range alphaTokenRe.FindAllString(strings.ToLower(title), -1) {
			if _, stop := topicStopWords[word]; stop {
				continue
			}
			tokens = append(tokens, word)
		}
	}
	return tokens
}

func cleanForKeywords(content string) string {
	cleaned := codeFenceRe.ReplaceAllString(content, " ")
	cleaned = inlineCodeRe.ReplaceAllString(cleaned, " ")
	cleaned = markdownLinkRe.ReplaceAllString(cleaned, "$1")
	cleaned = markdownMarkRe.ReplaceAllString(cleaned, " ")
	cleaned = htmlTagRe.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

type scoredTopic struct {
	topic string
	score float64
}

// rankTopics scores candidates against the raw content and returns them in
// descending score order, dropping anything that never occurs.
func rankTopics(candidates []string, content string) []string {
	if len(candidates) == 0 {
		return nil
	}

	contentLower := strings.ToLower(content)
	headings := lowercaseHeadings(content)

	scored := make([]scoredTopic, 0, len(candidates))
	for _, topic := range candidates {
		frequency := float64(strings.Count(contentLower, topic))
		headingBoost := 1.0
		if appearsInHeadings(topic, headings) {
			headingBoost = 2.0
		}
		lengthBoost := math.Min(float64(utf8.RuneCountInString(topic))/5, 2)
		scored = append(scored, scoredTopic{topic: topic, score: frequency * headingBoost * lengthBoost})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var ranked []string
	for _, entry := range scored {
		if entry.score <= 0 {
			continue
		}
		ranked = append(ranked, entry.topic)
	}
	return ranked
}

func lowercaseHeadings(content string) []string {
	matches := headingLineRe.FindAllStringSubmatch(content, -1)
	headings := make([]string, 0, len(matches))
	for _, match := range matches {
		headings = append(headings, strings.ToLower(match[1]))
	}
	return headings
}

func appearsInHeadings(topic string, headings []string) bool {
	for _, heading := range headings {
		if strings.Contains(heading, topic) {
			return true
		}
	}
	return false
}
