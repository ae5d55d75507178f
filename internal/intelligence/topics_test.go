package intelligence

import (
	"reflect"
	"testing"
)

func TestExtractTopicsFromRichDocument(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	content := "# React Components\n\n" +
		"React components are the building blocks of React applications. Components let you\n" +
		"split the interface into independent pieces.\n\n" +
		"## Function Components\n\n" +
		"Function components are plain functions that accept props and return elements.\n"
	metadata := map[string]any{
		"title":  "React Components",
		"topics": []any{"react", "components"},
		"source": map[string]any{"path": "docs/react/components.md"},
	}

	topics := extractor.ExtractTopics(content, metadata)
	if len(topics) == 0 || len(topics) > 10 {
		t.Fatalf("expected between 1 and 10 topics, got %d", len(topics))
	}

	seen := map[string]bool{}
	for _, topic := range topics {
		seen[topic] = true
	}
	if !seen["react"] || !seen["components"] {
		t.Fatalf("expected react and components among topics, got %v", topics)
	}
}

func TestExtractTopicsEmptyContent(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	if topics := extractor.ExtractTopics("", nil); len(topics) != 0 {
		t.Fatalf("expected no topics for empty content, got %v", topics)
	}
}

func TestExtractTopicsRespectsMaxTopics(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{MaxTopics: 3}, nil)

	content := "alpha alpha beta beta gamma gamma delta delta epsilon epsilon zeta zeta"
	topics := extractor.ExtractTopics(content, nil)

	want := []string{"epsilon", "alpha", "gamma"}
	if !reflect.DeepEqual(topics, want) {
		t.Fatalf("expected %v, got %v", want, topics)
	}
}

func TestExtractTopicsDropsStopWordsAndShortTokens(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	content := "the the the and and and ab ab ab api api api"
	topics := extractor.ExtractTopics(content, nil)

	if !reflect.DeepEqual(topics, []string{"api"}) {
		t.Fatalf("expected only api to survive, got %v", topics)
	}
}

func TestExtractTopicsHeadingBoost(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	content := "# Routing Guide\n\nrouting details for routing setups.\nwidgets widgets widgets."
	topics := extractor.ExtractTopics(content, nil)

	want := []string{"routing", "widgets", "guide"}
	if !reflect.DeepEqual(topics, want) {
		t.Fatalf("expected heading boost ordering %v, got %v", want, topics)
	}
}

func TestExtractTopicsTiesKeepCollectionOrder(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	topics := extractor.ExtractTopics("alpha gamma alpha gamma", nil)
	if !reflect.DeepEqual(topics, []string{"alpha", "gamma"}) {
		t.Fatalf("expected stable tie ordering, got %v", topics)
	}
}

func TestExtractTopicsDropsDeclaredTopicsAbsentFromContent(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	metadata := map[string]any{"topics": []any{"terraform"}}
	topics := extractor.ExtractTopics("unrelated words entirely", metadata)
	for _, topic := range topics {
		if topic == "terraform" {
			t.Fatalf("expected terraform dropped with zero score, got %v", topics)
		}
	}
}

func TestExtractTopicsKeepsDeclaredTopicsPresentInContent(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	metadata := map[string]any{"topics": []any{"kubernetes"}}
	topics := extractor.ExtractTopics("kubernetes overview notes", metadata)
	if !reflect.DeepEqual(topics, []string{"kubernetes"}) {
		t.Fatalf("expected declared topic kept, got %v", topics)
	}
}

func TestExtractTopicsDeterministic(t *testing.T) {
	extractor := NewTopicExtractor(TopicExtractorConfig{}, nil)

	content := "# Caching Layers\n\nCaching keeps responses fast. Layers of caching stack:\n" +
		"memory caching, disk caching, edge caching. Stacks compose. Stacks win.\n"
	metadata := map[string]any{
		"topics": []any{"caching"},
		"source": map[string]any{"path": "docs/perf/caching-layers.md"},
	}

	first := extractor.ExtractTopics(content, metadata)
	for i := 0; i < 10; i++ {
		next := extractor.ExtractTopics(content, metadata)
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("extraction not deterministic: %v vs %v", first, next)
		}
	}
}

func TestPathTopics(t *testing.T) {
	got := pathTopics("docs/api/authentication.md")
	want := []string{"docs", "api", "authentication"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = pathTopics("guides/getting_started/quick-start.md")
	want = []string{"guides", "getting", "started", "quick", "start"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected separator splitting %v, got %v", want, got)
	}

	if tokens := pathTopics(""); tokens != nil {
		t.Fatalf("expected nil for empty path, got %v", tokens)
	}
}

func TestHeadingTopics(t *testing.T) {
	content := "# Getting Started\n\nbody\n\n## Installation & Configuration\n\nmore\n"
	got := headingTopics(content)
	want := []string{"getting", "started", "installation", "configuration"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
