package intelligence

import (
	"math"
	"testing"

	"github.com/goliatone/go-mdc/pkg/interfaces"
)

func linkDoc(slug, title string, metadata map[string]any) *Analysis {
	return &Analysis{
		Document: &interfaces.Document{Slug: slug, Title: title, Metadata: metadata},
	}
}

func approx(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// Documents that share a declared tag link up even when only the cross-linking
// feature ran, so no extracted topics or quality metrics exist.
func TestFindRelatedDocumentsSharedTag(t *testing.T) {
	linker := NewCrossLinker(CrossLinkerConfig{}, nil)
	fingerprints := NewSimilarityAnalyzer(SimilarityConfig{}, nil)

	hooks := linkDoc("react-hooks", "React Hooks", map[string]any{"topics": []any{"react"}})
	hooks.Fingerprint = fingerprints.Fingerprint("# React Hooks\n\nReact hooks let you use state.")

	components := linkDoc("react-components", "React Components", map[string]any{"topics": []any{"react"}})
	components.Fingerprint = fingerprints.Fingerprint("# React Components\n\nReact components are building blocks.")

	python := linkDoc("python-basics", "Python Basics", map[string]any{"topics": []any{"python"}})
	python.Fingerprint = fingerprints.Fingerprint("# Python Basics\n\nPython is a programming language.")

	all := []*Analysis{hooks, components, python}
	related := linker.FindRelatedDocuments(hooks, all)

	if len(related) != 1 {
		t.Fatalf("expected exactly the other react document, got %v", related)
	}
	match := related[0]
	if match.Slug != "react-components" {
		t.Fatalf("expected react-components, got %q", match.Slug)
	}
	if match.Relevance < 0.4 {
		t.Fatalf("expected relevance at or above the threshold, got %v", match.Relevance)
	}
	switch match.Relationship {
	case "tangentially-related", "related", "highly-related":
	default:
		t.Fatalf("unexpected relationship %q", match.Relationship)
	}
}

func TestFindRelatedDocumentsExcludesSelf(t *testing.T) {
	linker := NewCrossLinker(CrossLinkerConfig{}, nil)

	doc := linkDoc("solo", "Solo", map[string]any{"topics": []any{"alpha"}})
	related := linker.FindRelatedDocuments(doc, []*Analysis{doc})
	if len(related) != 0 {
		t.Fatalf("expected no self match, got %v", related)
	}
}

func TestFindRelatedDocumentsThresholdInclusive(t *testing.T) {
	linker := NewCrossLinker(CrossLinkerConfig{}, nil)

	target := linkDoc("a", "A", nil)
	target.Topics = []string{"caching"}
	target.Quality = &QualityMetrics{Overall: 1.0}

	candidate := linkDoc("b", "B", nil)
	candidate.Topics = []string{"caching"}
	candidate.Quality = &QualityMetrics{Overall: 0.0}

	related := linker.FindRelatedDocuments(target, []*Analysis{target, candidate})
	if len(related) != 1 {
		t.Fatalf("expected a score of exactly 0.4 to pass the threshold, got %v", related)
	}
	approx(t, related[0].Relevance, 0.4)
}

func TestFindRelatedDocumentsSortedAndCapped(t *testing.T) {
	linker := NewCrossLinker(CrossLinkerConfig{MaxRelatedDocuments: 2}, nil)

	quality := &QualityMetrics{Overall: 0.8}
	fingerprint := "abcdef0123456789"

	target := linkDoc("target", "Target", nil)
	target.Topics = []string{"alpha", "beta", "gamma", "delta"}
	target.Quality = quality
	target.Fingerprint = fingerprint

	full := linkDoc("full", "Full Overlap", nil)
	full.Topics = []string{"alpha", "beta", "gamma", "delta"}
	full.Quality = quality
	full.Fingerprint = fingerprint

	partial := linkDoc("partial", "Partial Overlap", nil)
	partial.Topics = []string{"alpha", "beta", "gamma", "omega"}
	partial.Quality = quality
	partial.Fingerprint = fingerprint

	slight := linkDoc("slight", "Slight Overlap", nil)
	slight.Topics = []string{"alpha", "beta", "psi", "omega"}
	slight.Quality = quality
	slight.Fingerprint = fingerprint

	related := linker.FindRelatedDocuments(target, []*Analysis{target, full, partial, slight})
	if len(related) != 2 {
		t.Fatalf("expected cap at 2, got %v", related)
	}
	if related[0].Slug != "full" || related[1].Slug != "partial" {
		t.Fatalf("expected descending relevance order, got %v", related)
	}
	approx(t, related[0].Relevance, 0.8)
	approx(t, related[1].Relevance, 0.64)
	if related[0].Relationship != "related-content" {
		t.Fatalf("expected strong topic overlap classification, got %q", related[0].Relationship)
	}
	if related[1].Relationship != "related" {
		t.Fatalf("expected relevance band classification, got %q", related[1].Relationship)
	}
}

func TestRelationshipTypePathLayout(t *testing.T) {
	sibling1 := linkDoc("a", "A", map[string]any{"source": map[string]any{"path": "docs/react/hooks.md"}})
	sibling2 := linkDoc("b", "B", map[string]any{"source": map[string]any{"path": "docs/react/components.md"}})
	if got := relationshipType(sibling1, sibling2, 0.5); got != "sibling" {
		t.Fatalf("expected sibling, got %q", got)
	}

	child := linkDoc("c", "C", map[string]any{"source": map[string]any{"path": "docs/react/hooks/advanced.md"}})
	parent := linkDoc("d", "D", map[string]any{"source": map[string]any{"path": "docs/intro.md"}})
	if got := relationshipType(child, parent, 0.5); got != "parent-child" {
		t.Fatalf("expected parent-child, got %q", got)
	}
}

func TestRelationshipTypeTopicOverlap(t *testing.T) {
	target := linkDoc("a", "A", nil)
	target.Topics = []string{"react", "hooks"}
	candidate := linkDoc("b", "B", nil)
	candidate.Topics = []string{"react", "hooks", "state"}

	if got := relationshipType(target, candidate, 0.5); got != "related-content" {
		t.Fatalf("expected related-content for strong overlap, got %q", got)
	}
}

func TestRelationshipTypeImplementationDetail(t *testing.T) {
	target := linkDoc("a", "A", nil)
	target.Topics = []string{"tutorial", "setup"}
	candidate := linkDoc("b", "B", nil)
	candidate.Topics = []string{"overview", "architecture"}

	if got := relationshipType(target, candidate, 0.5); got != "implementation-detail" {
		t.Fatalf("expected implementation-detail, got %q", got)
	}
}

func TestRelationshipTypeRelevanceBands(t *testing.T) {
	target := linkDoc("a", "A", nil)
	candidate := linkDoc("b", "B", nil)

	cases := []struct {
		relevance float64
		want      string
	}{
		{0.85, "highly-related"},
		{0.7, "related"},
		{0.5, "tangentially-related"},
	}
	for _, tc := range cases {
		if got := relationshipType(target, candidate, tc.relevance); got != tc.want {
			t.Fatalf("relevance %v: expected %q, got %q", tc.relevance, tc.want, got)
		}
	}
}

func TestPathSimilarity(t *testing.T) {
	approx(t, pathSimilarity("docs/api/auth.md", "docs/api/users.md"), 2.0/3.0)
	approx(t, pathSimilarity("a/b/c.md", "a/b/c.md"), 1.0)
	approx(t, pathSimilarity("docs/a.md", "docs/sub/a.md"), 1.0/3.0)
	approx(t, pathSimilarity("", "docs/a.md"), 0)
	approx(t, pathSimilarity("docs\\api\\auth.md", "docs/api/users.md"), 2.0/3.0)
}

func TestFingerprintSimilarity(t *testing.T) {
	approx(t, fingerprintSimilarity("aaaa", "aaaa"), 1.0)
	approx(t, fingerprintSimilarity("aaaa", "aaab"), 0.75)
	approx(t, fingerprintSimilarity("abc", "abcdef"), 0.5)
	approx(t, fingerprintSimilarity("", "abc"), 0)
}

func TestQualityCompatibility(t *testing.T) {
	approx(t, qualityCompatibility(nil, nil), 0.5)
	approx(t, qualityCompatibility(&QualityMetrics{Overall: 0.9}, nil), 0.5)
	approx(t, qualityCompatibility(&QualityMetrics{Overall: 0.8}, &QualityMetrics{Overall: 0.8}), 1.0)
	approx(t, qualityCompatibility(&QualityMetrics{Overall: 0.9}, &QualityMetrics{Overall: 0.4}), 0.5)
}

func TestParentDir(t *testing.T) {
	if got := parentDir("docs/react/hooks.md"); got != "docs/react" {
		t.Fatalf("expected docs/react, got %q", got)
	}
	if got := parentDir("flat.md"); got != "flat.md" {
		t.Fatalf("expected whole path without separator, got %q", got)
	}
}
