package markdown

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// LoaderConfig configures how Markdown and MDX sources are discovered within
// a base directory.
type LoaderConfig struct {
	// Repo identifies the source repository, e.g. "vercel/next.js".
	Repo string
	// Ref is the git reference the sources were fetched at.
	Ref string
	// Include limits discovery to paths matching at least one pattern.
	// Defaults cover *.md and *.mdx at any depth.
	Include []string
	// Exclude drops paths matching any pattern, checked before Include.
	Exclude []string
}

// Loader discovers Markdown/MDX sources on a filesystem and parses them into
// loadable documents.
type Loader struct {
	fs      fs.FS
	repo    string
	ref     string
	include []string
	exclude []string
	logger  interfaces.Logger
}

var _ interfaces.SourceLoader = (*Loader)(nil)

// NewLoader constructs a Loader over the provided filesystem. Pattern lists
// fall back to the documented defaults when empty.
func NewLoader(filesystem fs.FS, cfg LoaderConfig, logger interfaces.Logger) *Loader {
	include := cfg.Include
	if len(include) == 0 {
		include = []string{"*.md", "*.mdx", "**/*.md", "**/*.mdx"}
	}
	exclude := cfg.Exclude
	if len(exclude) == 0 {
		exclude = []string{"node_modules/**", ".git/**", "dist/**", "build/**"}
	}
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Loader{
		fs:      filesystem,
		repo:    cfg.Repo,
		ref:     cfg.Ref,
		include: append([]string(nil), include...),
		exclude: append([]string(nil), exclude...),
		logger:  logger,
	}
}

// LoadFile reads and parses a single source file.
func (l *Loader) LoadFile(ctx context.Context, path string) (*interfaces.SourceFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	rel := normalizeFSPath(path)

	data, err := fs.ReadFile(l.fs, rel)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", rel, err)
	}

	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		// Malformed front matter should not lose the document. Treat the
		// whole file as body content.
		l.logger.Warn("front matter parse failed, treating file as plain markdown",
			"document_path", rel, "error", err.Error())
		meta = map[string]any{}
		body = data
	}

	sum := sha256.Sum256(data)

	return &interfaces.SourceFile{
		Path:         rel,
		Title:        ResolveTitle(meta, body, rel),
		Body:         body,
		FrontMatter:  meta,
		Checksum:     sum[:],
		CanonicalURL: l.canonicalURL(rel),
	}, nil
}

// LoadDirectory walks dir and returns every matching source file, ordered by
// path. Files that cannot be read are logged and skipped so one broken file
// does not abort a whole run.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*interfaces.SourceFile, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	root := normalizeFSPath(dir)
	if root == "" {
		root = "."
	}

	var results []*interfaces.SourceFile

	walkErr := fs.WalkDir(l.fs, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel := relativeTo(root, filepath.ToSlash(path))
		if !isMarkdownPath(rel) {
			return nil
		}
		if !l.shouldInclude(rel) {
			return nil
		}

		result, err := l.LoadFile(ctx, path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Error("failed to read source file",
				"document_path", path, "error", err.Error())
			return nil
		}
		result.Path = rel
		result.CanonicalURL = l.canonicalURL(rel)
		results = append(results, result)
		return nil
	})

	if walkErr != nil {
		return nil, fmt.Errorf("markdown loader walk %s: %w", root, walkErr)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})

	return results, nil
}

func (l *Loader) shouldInclude(rel string) bool {
	for _, pattern := range l.exclude {
		if matchesPattern(rel, pattern) {
			return false
		}
	}
	for _, pattern := range l.include {
		if matchesPattern(rel, pattern) {
			return true
		}
	}
	return false
}

// canonicalURL builds the browsable URL for a relative path. GitHub-style
// "owner/name" repos get a blob URL, anything else falls back to a generic
// join.
func (l *Loader) canonicalURL(rel string) string {
	if l.repo == "" {
		return ""
	}
	if strings.Contains(l.repo, "/") && !strings.HasPrefix(l.repo, "http://") && !strings.HasPrefix(l.repo, "https://") {
		return fmt.Sprintf("https://github.com/%s/blob/%s/%s", l.repo, l.ref, rel)
	}
	return fmt.Sprintf("%s/%s/%s", l.repo, l.ref, rel)
}

// matchesPattern checks a slash-separated relative path against a glob.
// "dir/**" matches the directory and everything below it, "**/" segments
// match any depth, and patterns without a separator match the base name.
func matchesPattern(path, pattern string) bool {
	pattern = filepath.ToSlash(strings.TrimSpace(pattern))
	if pattern == "" {
		return false
	}

	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return path == prefix || strings.HasPrefix(path, prefix+"/")
	}

	if prefix, suffix, found := strings.Cut(pattern, "**/"); found {
		// "docs/**/*.md" splits into "docs/" and "*.md"; a leading "**/"
		// leaves an empty prefix so the suffix matches at any depth.
		prefix = strings.TrimSuffix(prefix, "/")
		target := path
		if prefix != "" {
			if !strings.HasPrefix(path, prefix+"/") {
				return false
			}
			target = strings.TrimPrefix(path, prefix+"/")
		}
		return matchesAtAnyDepth(suffix, target)
	}

	target := path
	if !strings.Contains(pattern, "/") {
		target = filepath.Base(path)
	}

	match, err := filepath.Match(pattern, target)
	if err != nil {
		return false
	}
	return match
}

// matchesAtAnyDepth tries the glob against target and every path tail below
// it, so "*.md" accepts both "a.md" and "sub/dir/a.md".
func matchesAtAnyDepth(glob, target string) bool {
	for {
		if match, err := filepath.Match(glob, target); err == nil && match {
			return true
		}
		i := strings.Index(target, "/")
		if i < 0 {
			return false
		}
		target = target[i+1:]
	}
}

func isMarkdownPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".mdx":
		return true
	default:
		return false
	}
}

func normalizeFSPath(path string) string {
	path = filepath.ToSlash(strings.TrimSpace(path))
	path = strings.TrimPrefix(path, "./")
	if path == "." {
		return "."
	}
	return path
}

func relativeTo(root, path string) string {
	if root == "." || root == "" {
		return path
	}
	return strings.TrimPrefix(path, root+"/")
}
