package markdown

import (
	"path"
	"strings"

	"github.com/goliatone/go-slug"
)

// SlugNormalizer exposes the slug normalizer interface.
type SlugNormalizer = slug.Normalizer

// DefaultSlugNormalizer returns the default slug normalizer.
func DefaultSlugNormalizer() SlugNormalizer {
	return slug.Default()
}

// NormalizeSlug applies the default slug normalization rules.
func NormalizeSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// IsValidSlug reports whether the slug matches the default rules.
func IsValidSlug(value string) bool {
	return slug.IsValid(value)
}

// PathSlug derives a collection-unique slug from a source name and a relative
// file path. The extension is dropped and path separators become double
// underscores so the original hierarchy stays recoverable:
//
//	PathSlug("nextjs", "docs/getting-started.mdx") == "nextjs__docs__getting-started"
//
// Each segment is normalized individually so unicode or mixed-case segments
// produce stable slugs.
func PathSlug(source, relPath string) string {
	trimmed := strings.TrimSpace(filepathToSlash(relPath))
	trimmed = strings.TrimPrefix(trimmed, "./")
	if ext := path.Ext(trimmed); ext != "" {
		trimmed = strings.TrimSuffix(trimmed, ext)
	}

	segments := strings.Split(trimmed, "/")
	parts := make([]string, 0, len(segments)+1)
	if src := normalizeSegment(source); src != "" {
		parts = append(parts, src)
	}
	for _, segment := range segments {
		if normalized := normalizeSegment(segment); normalized != "" {
			parts = append(parts, normalized)
		}
	}
	return strings.Join(parts, "__")
}

// SourceName extracts the short source identifier from a repository
// reference, e.g. "vercel/next.js" yields "next.js".
func SourceName(repo string) string {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return "unknown"
	}
	parts := strings.Split(repo, "/")
	return parts[len(parts)-1]
}

func normalizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return ""
	}
	if normalized, err := slug.Normalize(segment); err == nil && normalized != "" {
		return normalized
	}
	return strings.ToLower(segment)
}

func filepathToSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
