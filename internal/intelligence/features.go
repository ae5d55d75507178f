package intelligence

import "strings"

// Feature names accepted by the analyzer.
const (
	FeatureTopicExtraction    = "topic-extraction"
	FeatureCrossLinking       = "cross-linking"
	FeatureQualityScoring     = "quality-scoring"
	FeatureDuplicateDetection = "duplicate-detection"
)

var knownFeatures = []string{
	FeatureTopicExtraction,
	FeatureCrossLinking,
	FeatureQualityScoring,
	FeatureDuplicateDetection,
}

// FeatureSet holds the analysis features enabled for a run.
type FeatureSet map[string]struct{}

// DefaultFeatures enables every analysis feature.
func DefaultFeatures() FeatureSet {
	set := make(FeatureSet, len(knownFeatures))
	for _, name := range knownFeatures {
		set[name] = struct{}{}
	}
	return set
}

// ParseFeatures builds a feature set from raw tokens. Tokens are trimmed and
// lowercased; unknown names are ignored. The result is nil when no tokens were
// supplied at all, which callers treat as "use DefaultFeatures". Supplying
// only unknown tokens yields an empty, non-nil set that enables nothing.
func ParseFeatures(tokens []string) FeatureSet {
	var set FeatureSet
	for _, token := range tokens {
		name := strings.ToLower(strings.TrimSpace(token))
		if name == "" {
			continue
		}
		if set == nil {
			set = make(FeatureSet)
		}
		if !isKnownFeature(name) {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether the named feature is enabled.
func (s FeatureSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the enabled features in canonical declaration order.
func (s FeatureSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, name := range knownFeatures {
		if s.Has(name) {
			names = append(names, name)
		}
	}
	return names
}

func isKnownFeature(name string) bool {
	for _, known := range knownFeatures {
		if name == known {
			return true
		}
	}
	return false
}
