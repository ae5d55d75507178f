package pipelinecmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-mdc/internal/intelligence"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/internal/markdown"
)

var pipelineTestNow = time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)

func newTestService(tb testing.TB) *Service {
	tb.Helper()
	return NewService(logging.NoOp(), WithClock(func() time.Time { return pipelineTestNow }))
}

func writeSourceTree(tb testing.TB, dir string, files map[string]string) {
	tb.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			tb.Fatalf("mkdir %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", rel, err)
		}
	}
}

func readEmittedDocument(tb testing.TB, dir, slug string) (markdown.FrontMatter, string) {
	tb.Helper()
	data, err := os.ReadFile(filepath.Join(dir, slug+".mdc"))
	if err != nil {
		tb.Fatalf("read emitted document: %v", err)
	}
	fm, body, err := markdown.ParseDocument(data)
	if err != nil {
		tb.Fatalf("parse emitted document: %v", err)
	}
	return fm, string(body)
}

const nextjsProjectConfig = `{
  "settings": {
    "title": "Next.js",
    "project": "/vercel/nextjs",
    "branch": "canary",
    "folders": ["docs"],
    "topics": ["nextjs"]
  }
}`

func TestConvertEndToEnd(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "output")

	writeSourceTree(t, sourceDir, map[string]string{
		"context7.json": nextjsProjectConfig,
		"docs/getting-started.mdx": "---\ntitle: Getting Started\n---\n" +
			"import Callout from 'callout'\n\n# Getting Started\n\n<Callout>Install the CLI first.</Callout>\n",
		"docs/guides/routing.md": "# Routing\n\nFile based routing.\n",
		"README.md":              "# Read Me\n\nNot part of the docs folders.\n",
	})

	service := newTestService(t)
	result, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if result.Processed != 2 || result.Written != 2 {
		t.Fatalf("expected 2 processed and written, got %+v", result)
	}
	if result.Errors != 0 {
		t.Fatalf("expected no errors, got %d", result.Errors)
	}
	if result.GeneratedAt != "2025-04-02T08:00:00Z" {
		t.Fatalf("unexpected generated_at %q", result.GeneratedAt)
	}

	fm, body := readEmittedDocument(t, outputDir, "nextjs__docs__getting-started")
	if fm.Title != "Getting Started" {
		t.Fatalf("unexpected title %q", fm.Title)
	}
	if fm.Source == nil || fm.Source.Repo != "vercel/nextjs" || fm.Source.Ref != "canary" {
		t.Fatalf("unexpected source %+v", fm.Source)
	}
	if fm.FetchedAt != "2025-04-02T08:00:00Z" {
		t.Fatalf("unexpected fetched_at %q", fm.FetchedAt)
	}
	if len(fm.Topics) == 0 || fm.Topics[0] != "nextjs" {
		t.Fatalf("expected project topics on document, got %v", fm.Topics)
	}
	if strings.Contains(body, "import Callout") {
		t.Fatalf("expected MDX import stripped, got body %q", body)
	}
	if !strings.Contains(body, "Install the CLI first.") {
		t.Fatalf("expected callout content preserved, got body %q", body)
	}

	if _, err := os.Stat(filepath.Join(outputDir, "nextjs__docs__guides__routing.mdc")); err != nil {
		t.Fatalf("expected nested document emitted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "index.jsonl")); err != nil {
		t.Fatalf("expected index manifest written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "nextjs__readme.mdc")); err == nil {
		t.Fatal("expected README outside configured folders to be excluded")
	}
}

func TestConvertRepoAndRefOverrides(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"context7.json": nextjsProjectConfig,
		"docs/api.md":   "# API\n\nReference.\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/widgets",
		Ref:       "v2",
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	fm, _ := readEmittedDocument(t, outputDir, "widgets__docs__api")
	if fm.Source == nil || fm.Source.Repo != "acme/widgets" || fm.Source.Ref != "v2" {
		t.Fatalf("expected message overrides on source, got %+v", fm.Source)
	}
	if !strings.Contains(fm.Source.URL, "github.com/acme/widgets/blob/v2/docs/api.md") {
		t.Fatalf("unexpected canonical url %q", fm.Source.URL)
	}
}

func TestConvertWithoutProjectConfig(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"README.md": "# Read Me\n\nTop level.\n",
		"docs/a.md": "# Alpha\n\nBody.\n",
	})

	service := newTestService(t)
	result, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/docs",
	})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if result.Processed != 2 {
		t.Fatalf("expected default include patterns to pick up both files, got %+v", result)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "docs__readme.mdc")); err != nil {
		t.Fatalf("expected top level document emitted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "docs__docs__a.mdc")); err != nil {
		t.Fatalf("expected nested document emitted: %v", err)
	}
}

func TestConvertTransformToggles(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"docs/page.mdx": "import Widget from 'widget'\n\n# Page\n\nBody.\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir:  sourceDir,
		OutputDir:  outputDir,
		Repo:       "acme/docs",
		Profile:    markdown.ProfileLossless,
		Transforms: map[string]bool{"cleanMdx": false},
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	_, body := readEmittedDocument(t, outputDir, "docs__docs__page")
	if !strings.Contains(body, "import Widget") {
		t.Fatalf("expected import preserved with cleanMdx disabled, got body %q", body)
	}
}

func TestConvertMergesMessageTopics(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"context7.json": nextjsProjectConfig,
		"docs/a.md":     "# Alpha\n\nBody.\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Topics:    []string{"react", "NEXTJS"},
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	fm, _ := readEmittedDocument(t, outputDir, "nextjs__docs__a")
	want := []string{"nextjs", "react"}
	if len(fm.Topics) != len(want) {
		t.Fatalf("expected topics %v, got %v", want, fm.Topics)
	}
	for i, topic := range want {
		if fm.Topics[i] != topic {
			t.Fatalf("expected topics %v, got %v", want, fm.Topics)
		}
	}
}

func TestConvertMissingSourceDir(t *testing.T) {
	service := newTestService(t)
	_, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: filepath.Join(t.TempDir(), "does-not-exist"),
		OutputDir: t.TempDir(),
	})
	if err == nil {
		t.Fatal("expected error for missing source directory")
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"docs/routing.md": "# Routing\n\nNext.js routing maps files to routes. Dynamic segments use brackets.\n\n```js\nexport default function Page() {}\n```\n",
		"docs/linking.md": "# Linking\n\nUse the Link component for client side navigation between routes.\n\n- fast\n- prefetch\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "vercel/nextjs",
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	summary, err := service.Analyze(context.Background(), AnalyzeMessage{
		Directory: outputDir,
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if summary.Processed != 2 {
		t.Fatalf("expected 2 documents analyzed, got %+v", summary)
	}
	if summary.Errors != 0 {
		t.Fatalf("expected no analysis errors, got %+v", summary)
	}
	if len(summary.FeaturesEnabled) != 4 {
		t.Fatalf("expected every feature enabled, got %v", summary.FeaturesEnabled)
	}

	if _, err := os.Stat(filepath.Join(outputDir, intelligence.StateFileName)); err != nil {
		t.Fatalf("expected analysis state written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, intelligence.IndexFileName)); err != nil {
		t.Fatalf("expected intelligence index written: %v", err)
	}
}

func TestAnalyzeFeatureSelection(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"docs/a.md": "# Alpha\n\nShort body about configuration options.\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/docs",
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	summary, err := service.Analyze(context.Background(), AnalyzeMessage{
		Directory: outputDir,
		Features:  []string{intelligence.FeatureTopicExtraction},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if len(summary.FeaturesEnabled) != 1 || summary.FeaturesEnabled[0] != intelligence.FeatureTopicExtraction {
		t.Fatalf("expected only topic extraction enabled, got %v", summary.FeaturesEnabled)
	}
}

func TestAnalyzeIncrementalSecondRun(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"docs/a.md": "# Alpha\n\nFirst document body with enough words to score.\n",
		"docs/b.md": "# Beta\n\nSecond document body about something different entirely.\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/docs",
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	if _, err := service.Analyze(context.Background(), AnalyzeMessage{Directory: outputDir}); err != nil {
		t.Fatalf("first analyze: %v", err)
	}

	summary, err := service.Analyze(context.Background(), AnalyzeMessage{
		Directory:   outputDir,
		Incremental: true,
	})
	if err != nil {
		t.Fatalf("second analyze: %v", err)
	}
	if summary.Processed != 0 || summary.Skipped != 2 {
		t.Fatalf("expected incremental run to skip unchanged documents, got %+v", summary)
	}
}

func TestAnalyzeStateOverrides(t *testing.T) {
	sourceDir := t.TempDir()
	outputDir := t.TempDir()
	auxDir := t.TempDir()

	writeSourceTree(t, sourceDir, map[string]string{
		"docs/a.md": "# Alpha\n\nBody.\n",
	})

	service := newTestService(t)
	if _, err := service.Convert(context.Background(), ConvertMessage{
		SourceDir: sourceDir,
		OutputDir: outputDir,
		Repo:      "acme/docs",
	}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	stateFile := filepath.Join(auxDir, "state.json")
	indexFile := filepath.Join(auxDir, "index.jsonl")
	if _, err := service.Analyze(context.Background(), AnalyzeMessage{
		Directory: outputDir,
		StateFile: stateFile,
		IndexFile: indexFile,
	}); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if _, err := os.Stat(stateFile); err != nil {
		t.Fatalf("expected state written to override path: %v", err)
	}
	if _, err := os.Stat(indexFile); err != nil {
		t.Fatalf("expected index written to override path: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outputDir, intelligence.StateFileName)); err == nil {
		t.Fatal("expected no state file at the default location")
	}
}
