package interfaces

import "context"

// Document is the unit of analysis exchanged between the loader, the emitter,
// and the intelligence subsystem. Content carries the Markdown body only;
// structured metadata lives in the Metadata map.
type Document struct {
	// Slug uniquely identifies the document across the collection.
	Slug string
	// Path locates the document relative to the collection root.
	Path string
	// Title is the display title, optional.
	Title string
	// Content is the raw UTF-8 body, front matter excluded.
	Content string
	// Metadata holds arbitrary key/value pairs attached by upstream stages.
	// The intelligence subsystem reads "topics", "fetched_at", and the nested
	// "source.path", and writes back an "intelligence" sub-map.
	Metadata map[string]any
}

// DocumentStore abstracts the document collection the analyzer operates on.
// Implementations own file handles and serialization; the analyzer only sees
// documents and metadata patches.
type DocumentStore interface {
	// List returns every document in the collection, path-sorted.
	List(ctx context.Context) ([]*Document, error)
	// PatchMetadata merges the supplied keys into the metadata of the
	// document at path and persists the result. Existing keys not named in
	// patch are preserved.
	PatchMetadata(ctx context.Context, path string, patch map[string]any) error
}

// SourceLoader discovers raw Markdown/MDX source files for conversion.
type SourceLoader interface {
	LoadDirectory(ctx context.Context, dir string) ([]*SourceFile, error)
}

// SourceFile is a discovered input file prior to MDC conversion.
type SourceFile struct {
	// Path is relative to the source root, slash-separated.
	Path string
	// Title resolved from front matter, first heading, or the file name.
	Title string
	// Body is the Markdown content with front matter removed.
	Body []byte
	// FrontMatter holds the parsed front-matter mapping, possibly empty.
	FrontMatter map[string]any
	// Checksum is the SHA-256 digest of the raw file bytes.
	Checksum []byte
	// CanonicalURL points at the browsable upstream file, when known.
	CanonicalURL string
}
