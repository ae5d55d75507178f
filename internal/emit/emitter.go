package emit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-mdc/internal/identity"
	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/internal/markdown"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// DefaultLicense is stamped into emitted documents when the project does not
// declare one.
const DefaultLicense = "See source repository"

// ErrSourceRequired indicates Emit was called without a source file.
var ErrSourceRequired = errors.New("emit: source file is required")

// TransformFunc rewrites a Markdown body before emission. The source path is
// provided so relative links can be resolved.
type TransformFunc func(body string, sourcePath string) string

// Config controls where and how converted documents are written.
type Config struct {
	// OutputDir receives the .mdc files and the index.jsonl manifest.
	OutputDir string
	// Repo identifies the source repository, e.g. "vercel/next.js".
	Repo string
	// Ref is the git reference the sources were fetched at.
	Ref string
	// Topics are applied to every emitted document in addition to topics the
	// source file declares itself.
	Topics []string
	// License overrides DefaultLicense when set.
	License string
	// IndexFile overrides IndexFileName for the manifest written to OutputDir.
	IndexFile string
	// ForceRewrite writes every document even when the target already carries
	// the same content hash.
	ForceRewrite bool
	// Now supplies timestamps. Defaults to time.Now.
	Now func() time.Time
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.License) == "" {
		c.License = DefaultLicense
	}
	if strings.TrimSpace(c.IndexFile) == "" {
		c.IndexFile = IndexFileName
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Totals accumulates content statistics across every document written by one
// emitter.
type Totals struct {
	Files      int   `json:"files"`
	Lines      int   `json:"lines"`
	Words      int   `json:"words"`
	Characters int   `json:"characters"`
	Tokens     int   `json:"tokens"`
	Headings   int   `json:"headings"`
	CodeBlocks int   `json:"code_blocks"`
	InlineCode int   `json:"inline_code"`
	Links      int   `json:"links"`
	Images     int   `json:"images"`
	SizeBytes  int64 `json:"size_bytes"`
}

func (t *Totals) add(stats markdown.ContentStats, sizeBytes int) {
	t.Files++
	t.Lines += stats.Lines
	t.Words += stats.Words
	t.Characters += stats.Characters
	t.Tokens += stats.Tokens
	t.Headings += stats.Headings
	t.CodeBlocks += stats.CodeBlocks
	t.InlineCode += stats.InlineCode
	t.Links += stats.Links
	t.Images += stats.Images
	t.SizeBytes += int64(sizeBytes)
}

func (t Totals) averages() Averages {
	if t.Files == 0 {
		return Averages{}
	}
	files := float64(t.Files)
	return Averages{
		TokensPerFile: float64(t.Tokens) / files,
		WordsPerFile:  float64(t.Words) / files,
		LinesPerFile:  float64(t.Lines) / files,
		CharsPerFile:  float64(t.Characters) / files,
		SizePerFile:   float64(t.SizeBytes) / files,
	}
}

// Averages reports per-file means over the written documents. Zero when the
// run wrote nothing.
type Averages struct {
	TokensPerFile float64 `json:"tokens_per_file"`
	WordsPerFile  float64 `json:"words_per_file"`
	LinesPerFile  float64 `json:"lines_per_file"`
	CharsPerFile  float64 `json:"chars_per_file"`
	SizePerFile   float64 `json:"size_per_file"`
}

// Result reports aggregated conversion metadata for one run.
type Result struct {
	Processed   int      `json:"processed"`
	Written     int      `json:"written"`
	Skipped     int      `json:"skipped"`
	Errors      int      `json:"errors"`
	Totals      Totals   `json:"totals"`
	Averages    Averages `json:"averages"`
	GeneratedAt string   `json:"generated_at"`
}

// Emitter converts transformed source documents into .mdc files and maintains
// the index.jsonl manifest alongside them. Totals accumulate for the lifetime
// of the emitter, so create one per conversion run.
type Emitter struct {
	outputDir    string
	repo         string
	ref          string
	topics       []string
	license      string
	indexFile    string
	forceRewrite bool
	now          func() time.Time
	logger       interfaces.Logger

	mu     sync.Mutex
	totals Totals
}

// New constructs an Emitter for the configured output directory.
func New(cfg Config, logger interfaces.Logger) *Emitter {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Emitter{
		outputDir:    filepath.Clean(cfg.OutputDir),
		repo:         cfg.Repo,
		ref:          cfg.Ref,
		topics:       append([]string(nil), cfg.Topics...),
		license:      cfg.License,
		indexFile:    cfg.IndexFile,
		forceRewrite: cfg.ForceRewrite,
		now:          cfg.Now,
		logger:       logger,
	}
}

// EmitAll converts every source file and reports run totals. Per-file
// failures are logged and counted, they do not abort the run. A nil transform
// emits bodies unchanged.
func (e *Emitter) EmitAll(ctx context.Context, files []*interfaces.SourceFile, transform TransformFunc) (*Result, error) {
	e.logger.Info("starting conversion run",
		"sources", len(files), "output_dir", e.outputDir)

	result := &Result{}
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			e.finalize(result)
			return result, err
		}
		if src == nil {
			continue
		}

		body := string(src.Body)
		if transform != nil {
			body = transform(body, src.Path)
		}

		written, err := e.Emit(ctx, src, body)
		if err != nil {
			e.logger.Error("failed to emit document",
				"document_path", src.Path, "error", err.Error())
			result.Errors++
			continue
		}

		result.Processed++
		if written {
			result.Written++
		} else {
			result.Skipped++
		}
	}

	e.finalize(result)
	e.logger.Info("conversion run complete",
		"processed", result.Processed,
		"written", result.Written,
		"skipped", result.Skipped,
		"errors", result.Errors,
		"tokens", result.Totals.Tokens)
	return result, nil
}

// Emit writes one converted document. It returns false without writing when
// the target file already carries the same content hash.
func (e *Emitter) Emit(ctx context.Context, src *interfaces.SourceFile, body string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}
	if src == nil {
		return false, ErrSourceRequired
	}

	slug := markdown.PathSlug(markdown.SourceName(e.repo), src.Path)
	hash := markdown.ContentHash([]byte(body))
	target := filepath.Join(e.outputDir, slug+".mdc")

	if !e.forceRewrite && e.shouldSkipWrite(target, hash) {
		e.logger.Debug("skipping unchanged document",
			"slug", slug, "document_path", src.Path)
		return false, nil
	}

	stats := markdown.Stats([]byte(body))
	envelope := markdown.FrontMatter{
		Schema:      markdown.SchemaVersion,
		ID:          identity.DocumentUUID(slug).String(),
		Slug:        slug,
		Title:       src.Title,
		Description: sourceDescription(src.FrontMatter),
		Topics:      e.mergedTopics(src.FrontMatter),
		Source: &markdown.SourceRef{
			Repo: e.repo,
			Ref:  e.ref,
			Path: src.Path,
			URL:  src.CanonicalURL,
		},
		ContentHash: hash,
		FetchedAt:   e.timestamp(),
		License:     e.license,
		Stats:       &stats,
	}

	document, err := markdown.ComposeDocument(envelope, []byte(body))
	if err != nil {
		return false, fmt.Errorf("emit compose %s: %w", slug, err)
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return false, fmt.Errorf("emit create output dir: %w", err)
	}
	if err := os.WriteFile(target, document, 0o644); err != nil {
		return false, fmt.Errorf("emit write %s: %w", slug, err)
	}

	e.mu.Lock()
	e.totals.add(stats, len(body))
	err = e.updateIndex(indexEntry{
		Slug:        slug,
		Title:       envelope.Title,
		Path:        src.Path,
		Repo:        e.repo,
		Ref:         e.ref,
		Topics:      envelope.Topics,
		Tokens:      stats.Tokens,
		ContentHash: hash,
		FetchedAt:   envelope.FetchedAt,
	})
	e.mu.Unlock()
	if err != nil {
		return true, fmt.Errorf("emit index update: %w", err)
	}

	e.logger.Info("emitted document", "slug", slug, "document_path", src.Path)
	return true, nil
}

// shouldSkipWrite reports whether target already holds content with the same
// hash. Unreadable or malformed existing files never suppress a write.
func (e *Emitter) shouldSkipWrite(target, hash string) bool {
	data, err := os.ReadFile(target)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("failed to read existing document",
				"target", target, "error", err.Error())
		}
		return false
	}

	envelope, _, err := markdown.ParseDocument(data)
	if err != nil {
		e.logger.Warn("failed to parse existing document",
			"target", target, "error", err.Error())
		return false
	}
	return envelope.ContentHash == hash
}

func (e *Emitter) finalize(result *Result) {
	e.mu.Lock()
	result.Totals = e.totals
	e.mu.Unlock()
	result.Averages = result.Totals.averages()
	result.GeneratedAt = e.timestamp()
}

// mergedTopics combines configured topics with topics declared in the source
// front matter, first occurrence wins case-insensitively.
func (e *Emitter) mergedTopics(meta map[string]any) []string {
	merged := make([]string, 0, len(e.topics))
	seen := map[string]struct{}{}
	appendTopic := func(topic string) {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			return
		}
		key := strings.ToLower(topic)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		merged = append(merged, topic)
	}

	for _, topic := range e.topics {
		appendTopic(topic)
	}
	if meta != nil {
		switch declared := meta["topics"].(type) {
		case []string:
			for _, topic := range declared {
				appendTopic(topic)
			}
		case []any:
			for _, raw := range declared {
				if topic, ok := raw.(string); ok {
					appendTopic(topic)
				}
			}
		}
	}
	return merged
}

func (e *Emitter) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}

func sourceDescription(meta map[string]any) string {
	if meta == nil {
		return ""
	}
	if raw, ok := meta["description"]; ok {
		if description, ok := raw.(string); ok {
			return strings.TrimSpace(description)
		}
	}
	return ""
}
