package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// DocumentExt is the extension of emitted documents.
const DocumentExt = ".mdc"

// Store implements interfaces.DocumentStore over a directory of emitted
// documents. Reads go through an fs.FS rooted at the directory; metadata
// patches rewrite the file in place.
type Store struct {
	root   string
	logger interfaces.Logger
}

var _ interfaces.DocumentStore = (*Store)(nil)

// NewStore builds a store rooted at dir.
func NewStore(dir string, logger interfaces.Logger) *Store {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Store{
		root:   filepath.Clean(dir),
		logger: logger,
	}
}

// Root returns the directory the store operates on.
func (s *Store) Root() string {
	return s.root
}

// List returns every parseable document in the collection, ordered by path.
// Unreadable or malformed files are logged and skipped.
func (s *Store) List(ctx context.Context) ([]*interfaces.Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fsys := os.DirFS(s.root)
	var documents []*interfaces.Document

	walkErr := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !strings.EqualFold(filepath.Ext(path), DocumentExt) {
			return nil
		}

		doc, err := s.loadDocument(fsys, path)
		if err != nil {
			s.logger.Warn("skipping unreadable document",
				"document_path", path, "error", err.Error())
			return nil
		}
		documents = append(documents, doc)
		return nil
	})

	if walkErr != nil {
		return nil, fmt.Errorf("document store walk %s: %w", s.root, walkErr)
	}

	sort.Slice(documents, func(i, j int) bool {
		return documents[i].Path < documents[j].Path
	})

	return documents, nil
}

func (s *Store) loadDocument(fsys fs.FS, path string) (*interfaces.Document, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}

	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return nil, err
	}

	slug, _ := meta["slug"].(string)
	if strings.TrimSpace(slug) == "" {
		slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	title, _ := meta["title"].(string)
	if strings.TrimSpace(title) == "" {
		title = TitleFromPath(path)
	}

	return &interfaces.Document{
		Slug:     slug,
		Path:     filepath.ToSlash(path),
		Title:    title,
		Content:  string(body),
		Metadata: meta,
	}, nil
}

// PatchMetadata merges patch into the metadata of the document at rel and
// rewrites the file. Keys not named in patch are preserved; the body is left
// untouched.
func (s *Store) PatchMetadata(ctx context.Context, rel string, patch map[string]any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	rel = normalizeFSPath(rel)
	if rel == "" || rel == "." || strings.Contains(rel, "..") {
		return fmt.Errorf("document store: invalid document path %q", rel)
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Errorf("document store read %s: %w", rel, err)
	}

	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return fmt.Errorf("document store parse %s: %w", rel, err)
	}

	for key, value := range patch {
		meta[key] = value
	}

	composed, err := ComposeRawDocument(meta, body)
	if err != nil {
		return fmt.Errorf("document store compose %s: %w", rel, err)
	}

	if err := os.WriteFile(full, composed, 0o644); err != nil {
		return fmt.Errorf("document store write %s: %w", rel, err)
	}
	return nil
}
