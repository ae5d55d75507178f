package markdown

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// analysisEngine is a shared goldmark instance used for structural inspection
// of Markdown sources. It is never used for rendering, only to build the AST,
// so a single stateless engine can serve all callers.
var analysisEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.Linkify,
		extension.TaskList,
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
)

// ContentStats summarizes the structure of a Markdown body. Token counts are
// an estimate of one token per four characters, which tracks closely enough
// for sizing context windows.
type ContentStats struct {
	Lines      int `json:"lines" yaml:"lines"`
	Words      int `json:"words" yaml:"words"`
	Characters int `json:"characters" yaml:"characters"`
	Tokens     int `json:"tokens" yaml:"tokens"`
	Headings   int `json:"headings" yaml:"headings"`
	CodeBlocks int `json:"code_blocks" yaml:"code_blocks"`
	InlineCode int `json:"inline_code" yaml:"inline_code"`
	Links      int `json:"links" yaml:"links"`
	Images     int `json:"images" yaml:"images"`
}

// Stats walks the Markdown AST and counts the structural elements of body.
func Stats(body []byte) ContentStats {
	content := string(body)
	stats := ContentStats{
		Characters: utf8.RuneCountInString(content),
		Words:      len(strings.Fields(content)),
	}
	stats.Tokens = stats.Characters / 4
	if len(content) > 0 {
		stats.Lines = strings.Count(content, "\n")
		if !strings.HasSuffix(content, "\n") {
			stats.Lines++
		}
	}

	root := analysisEngine.Parser().Parse(text.NewReader(body))
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.(type) {
		case *ast.Heading:
			stats.Headings++
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			stats.CodeBlocks++
		case *ast.CodeSpan:
			stats.InlineCode++
		case *ast.Link, *ast.AutoLink:
			stats.Links++
		case *ast.Image:
			stats.Images++
		}
		return ast.WalkContinue, nil
	})

	return stats
}

// ContentHash returns the hex SHA-256 digest of body, used for change
// detection between pipeline runs.
func ContentHash(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// FirstHeading returns the text of the first level-one heading in body, or an
// empty string when none exists.
func FirstHeading(body []byte) string {
	root := analysisEngine.Parser().Parse(text.NewReader(body))

	var title string
	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok || heading.Level != 1 {
			return ast.WalkContinue, nil
		}
		title = strings.TrimSpace(string(heading.Text(body)))
		return ast.WalkStop, nil
	})
	return title
}

// TitleFromPath derives a readable title from a file name, e.g.
// "getting-started.mdx" becomes "Getting Started".
func TitleFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	words := strings.Fields(base)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// ResolveTitle picks a document title using front matter first, then the
// first heading in the body, then the file name.
func ResolveTitle(meta map[string]any, body []byte, path string) string {
	if meta != nil {
		if raw, ok := meta["title"]; ok {
			if title, ok := raw.(string); ok && strings.TrimSpace(title) != "" {
				return strings.TrimSpace(title)
			}
		}
	}
	if title := FirstHeading(body); title != "" {
		return title
	}
	return TitleFromPath(path)
}
