package intelligence

import (
	"math"
	"regexp"
)

// Markdown-stripping expressions shared by the topic extractor and the
// similarity vectorizer.
var (
	headingLineRe  = regexp.MustCompile(`(?m)^#+\s+(.+)$`)
	codeFenceRe    = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe   = regexp.MustCompile("`[^`]+`")
	markdownLinkRe = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	htmlTagRe      = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	alphaTokenRe   = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}
