package intelligence

import (
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// QualityScorerConfig tunes quality scoring. Zero weights fall back to the
// 0.4/0.3/0.3 defaults; Now defaults to time.Now and drives freshness aging.
type QualityScorerConfig struct {
	CompletenessWeight float64
	FreshnessWeight    float64
	ClarityWeight      float64
	Now                func() time.Time
}

func (c QualityScorerConfig) withDefaults() QualityScorerConfig {
	if c.CompletenessWeight <= 0 {
		c.CompletenessWeight = 0.4
	}
	if c.FreshnessWeight <= 0 {
		c.FreshnessWeight = 0.3
	}
	if c.ClarityWeight <= 0 {
		c.ClarityWeight = 0.3
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
	bulletItemRe    = regexp.MustCompile(`(?m)^[-*+]\s+`)
	numberedItemRe  = regexp.MustCompile(`(?m)^\d+\.\s+`)
	boldSpanRe      = regexp.MustCompile(`\*\*[^*]+\*\*`)
	italicSpanRe    = regexp.MustCompile(`\*[^*]+\*`)
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// QualityScorer rates a document's completeness, freshness, and clarity and
// blends the axes into a weighted overall score.
type QualityScorer struct {
	completenessWeight float64
	freshnessWeight    float64
	clarityWeight      float64
	now                func() time.Time
	logger             interfaces.Logger
}

// NewQualityScorer builds a scorer with the supplied weights and clock.
func NewQualityScorer(cfg QualityScorerConfig, logger interfaces.Logger) *QualityScorer {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NoOp()
	}
	return &QualityScorer{
		completenessWeight: cfg.CompletenessWeight,
		freshnessWeight:    cfg.FreshnessWeight,
		clarityWeight:      cfg.ClarityWeight,
		now:                cfg.Now,
		logger:             logger,
	}
}

// ScoreQuality computes the three axis scores plus the weighted overall value,
// each rounded to two decimals.
func (s *QualityScorer) ScoreQuality(content string, metadata map[string]any) QualityMetrics {
	completeness := s.scoreCompleteness(content, metadata)
	freshness := s.scoreFreshness(metadata)
	clarity := s.scoreClarity(content)

	overall := completeness*s.completenessWeight +
		freshness*s.freshnessWeight +
		clarity*s.clarityWeight

	return QualityMetrics{
		Completeness: round2(completeness),
		Freshness:    round2(freshness),
		Clarity:      round2(clarity),
		Overall:      round2(overall),
	}
}

// scoreCompleteness awards points for title, heading structure, a reasonable
// word count, code examples, and outbound links, capped at 1.0.
func (s *QualityScorer) scoreCompleteness(content string, metadata map[string]any) float64 {
	score := 0.0

	if metadataTitle(metadata) != "" {
		score += 0.2
	}

	headings := headingLineRe.FindAllString(content, -1)
	switch {
	case len(headings) >= 2:
		score += 0.3
	case len(headings) == 1:
		score += 0.15
	}

	words := len(strings.Fields(content))
	switch {
	case words >= 100 && words <= 5000:
		score += 0.2
	case (words >= 50 && words < 100) || (words > 5000 && words <= 10000):
		score += 0.1
	}

	codeBlocks := len(codeFenceRe.FindAllString(content, -1))
	inlineCode := len(inlineCodeRe.FindAllString(content, -1))
	if codeBlocks >= 1 || inlineCode >= 3 {
		score += 0.15
	}

	links := len(markdownLinkRe.FindAllString(content, -1))
	switch {
	case links >= 2:
		score += 0.15
	case links == 1:
		score += 0.1
	}

	return math.Min(score, 1.0)
}

// scoreFreshness bands the age of the fetched_at timestamp. Missing or
// unparsable timestamps score a neutral 0.5 rather than erroring.
func (s *QualityScorer) scoreFreshness(metadata map[string]any) float64 {
	raw, _ := metadata["fetched_at"].(string)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0.5
	}

	fetchedAt, err := parseTimestamp(raw)
	if err != nil {
		s.logger.Debug("unparsable fetched_at timestamp", "value", raw, "error", err.Error())
		return 0.5
	}

	daysOld := int(s.now().UTC().Sub(fetchedAt).Hours() / 24)
	switch {
	case daysOld <= 30:
		return 1.0
	case daysOld <= 90:
		return 0.8
	case daysOld <= 180:
		return 0.6
	case daysOld <= 365:
		return 0.4
	default:
		return 0.2
	}
}

// scoreClarity awards points for paragraph structure, sentence length in a
// readable band, lists, a low long-word ratio, and emphasis, capped at 1.0.
func (s *QualityScorer) scoreClarity(content string) float64 {
	score := 0.0

	paragraphs := 0
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}
	switch {
	case paragraphs >= 3:
		score += 0.2
	case paragraphs == 2:
		score += 0.1
	}

	var sentences int
	var totalWords int
	for _, sentence := range sentenceSplitRe.Split(content, -1) {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		sentences++
		totalWords += len(strings.Fields(sentence))
	}
	if sentences > 0 {
		avg := float64(totalWords) / float64(sentences)
		switch {
		case avg >= 15 && avg <= 25:
			score += 0.3
		case (avg >= 10 && avg < 15) || (avg > 25 && avg <= 35):
			score += 0.2
		case (avg >= 5 && avg < 10) || (avg > 35 && avg <= 50):
			score += 0.1
		}
	}

	bullets := len(bulletItemRe.FindAllString(content, -1))
	numbered := len(numberedItemRe.FindAllString(content, -1))
	switch {
	case bullets >= 3 || numbered >= 3:
		score += 0.2
	case bullets >= 1 || numbered >= 1:
		score += 0.1
	}

	words := strings.Fields(content)
	longWordRatio := 0.0
	if len(words) > 0 {
		longWords := 0
		for _, word := range words {
			if utf8.RuneCountInString(word) > 12 {
				longWords++
			}
		}
		longWordRatio = float64(longWords) / float64(len(words))
	}
	switch {
	case longWordRatio < 0.05:
		score += 0.2
	case longWordRatio < 0.1:
		score += 0.1
	}

	bold := len(boldSpanRe.FindAllString(content, -1))
	italic := len(italicSpanRe.FindAllString(content, -1))
	if bold >= 2 || italic >= 2 {
		score += 0.1
	}

	return math.Min(score, 1.0)
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
