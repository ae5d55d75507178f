package markdown

import (
	"bytes"
	"fmt"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// SchemaVersion is written into every emitted document so downstream
// consumers can detect incompatible envelope changes.
const SchemaVersion = "mdc/1.0"

// SourceRef records where a document was fetched from.
type SourceRef struct {
	Repo string `yaml:"repo,omitempty" json:"repo,omitempty"`
	Ref  string `yaml:"ref,omitempty" json:"ref,omitempty"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	URL  string `yaml:"url,omitempty" json:"url,omitempty"`
}

// FrontMatter is the structured envelope stored at the top of emitted
// documents. Custom carries any additional keys found during parsing so
// round-trips never drop metadata.
type FrontMatter struct {
	Schema       string         `yaml:"schema,omitempty"`
	ID           string         `yaml:"id,omitempty"`
	Slug         string         `yaml:"slug,omitempty"`
	Title        string         `yaml:"title,omitempty"`
	Description  string         `yaml:"description,omitempty"`
	Topics       []string       `yaml:"topics,omitempty"`
	Source       *SourceRef     `yaml:"source,omitempty"`
	ContentHash  string         `yaml:"content_hash,omitempty"`
	FetchedAt    string         `yaml:"fetched_at,omitempty"`
	License      string         `yaml:"license,omitempty"`
	Stats        *ContentStats  `yaml:"stats,omitempty"`
	Intelligence map[string]any `yaml:"intelligence,omitempty"`
	Custom       map[string]any `yaml:",inline"`
}

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the metadata as a string-keyed map, the
// body without delimiters, and any error encountered. Sources without a
// front matter block yield an empty map and the unchanged body.
func ParseFrontMatter(source []byte) (map[string]any, []byte, error) {
	meta := map[string]any{}

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse front matter: %w", err)
	}

	normalized, ok := stringKeyed(meta).(map[string]any)
	if !ok {
		normalized = map[string]any{}
	}
	return normalized, body, nil
}

// ParseDocument parses an emitted document into its structured envelope and
// body.
func ParseDocument(source []byte) (FrontMatter, []byte, error) {
	var envelope FrontMatter

	body, err := frontmatter.Parse(bytes.NewReader(source), &envelope)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse document: %w", err)
	}

	if normalized, ok := stringKeyed(envelope.Intelligence).(map[string]any); ok {
		envelope.Intelligence = normalized
	}
	if normalized, ok := stringKeyed(envelope.Custom).(map[string]any); ok {
		envelope.Custom = normalized
	}
	return envelope, body, nil
}

// ComposeDocument serializes the envelope and body back into a single file
// with YAML delimiters. Envelope fields keep their declared order so emitted
// documents diff cleanly between runs.
func ComposeDocument(meta FrontMatter, body []byte) ([]byte, error) {
	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("serialize front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(encoded)
	buf.WriteString("---\n\n")
	buf.Write(bytes.TrimLeft(body, "\n"))
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// ComposeRawDocument is the map-based counterpart of ComposeDocument, used
// when rewriting documents whose metadata arrived as a raw map. Keys are
// marshaled in sorted order.
func ComposeRawDocument(meta map[string]any, body []byte) ([]byte, error) {
	encoded, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("serialize metadata: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(encoded)
	buf.WriteString("---\n\n")
	buf.Write(bytes.TrimLeft(body, "\n"))
	if !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// stringKeyed converts nested map[any]any values produced by the YAML
// decoder into map[string]any so metadata stays addressable by string keys.
func stringKeyed(value any) any {
	switch typed := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = stringKeyed(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = stringKeyed(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = stringKeyed(item)
		}
		return out
	default:
		return value
	}
}
