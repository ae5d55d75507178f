package markdown

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Optimization profiles controlling how aggressively content is compressed.
const (
	ProfileLossless = "lossless"
	ProfileBalanced = "balanced"
	ProfileCompact  = "compact"
)

// TransformOptions selects which cleanup passes run over a document body.
// The zero value disables everything; DefaultTransformOptions matches the
// pipeline defaults.
type TransformOptions struct {
	StripJSX           bool
	StripHTMLComments  bool
	NormalizeHeadings  bool
	CollapseBlankLines bool
	Profile            string
}

// DefaultTransformOptions enables every pass with the balanced profile.
func DefaultTransformOptions() TransformOptions {
	return TransformOptions{
		StripJSX:           true,
		StripHTMLComments:  true,
		NormalizeHeadings:  true,
		CollapseBlankLines: true,
		Profile:            ProfileBalanced,
	}
}

// Transformer applies the configured cleanup passes to Markdown bodies. It is
// stateless and safe for concurrent use.
type Transformer struct {
	opts TransformOptions
}

// NewTransformer builds a transformer with the supplied options. An empty
// profile falls back to balanced.
func NewTransformer(opts TransformOptions) *Transformer {
	if opts.Profile == "" {
		opts.Profile = ProfileBalanced
	}
	return &Transformer{opts: opts}
}

// Apply runs the transformation pipeline over a document body. The body is
// expected to have its front matter already removed. sourcePath annotates
// relative links and may be empty.
func (t *Transformer) Apply(body string, sourcePath string) string {
	if t.opts.StripJSX {
		body = CleanMDX(body)
	}
	if t.opts.StripHTMLComments {
		body = StripHTMLComments(body)
	}
	if t.opts.NormalizeHeadings {
		body = normalizeHeadings(body)
		body = normalizeCodeFences(body)
	}
	if t.opts.CollapseBlankLines {
		body = normalizeSpacing(body)
	}
	body = FixLinks(body, sourcePath)
	if t.opts.Profile == ProfileBalanced || t.opts.Profile == ProfileCompact {
		body = CompressContent(body, t.opts.Profile == ProfileCompact)
	}
	return body
}

var (
	importLineRe = regexp.MustCompile(`^\s*import\s+`)
	exportLineRe = regexp.MustCompile(`^\s*export\s+`)
	exportDefRe  = regexp.MustCompile(`^\s*export\s+default\b`)

	jsxNamedWrappers = []struct {
		re          *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(?i)<Callout[^>]*>(.*?)</Callout>`), "$1"},
		{regexp.MustCompile(`(?i)<Note[^>]*>(.*?)</Note>`), "$1"},
		{regexp.MustCompile(`(?i)<Warning[^>]*>(.*?)</Warning>`), "$1"},
		{regexp.MustCompile(`(?i)<Details[^>]*>(.*?)</Details>`), "$1"},
	}

	jsxSelfClosingRe = regexp.MustCompile(`<[A-Z][A-Za-z0-9]*[^>]*/>`)
	jsxOpenTagRe     = regexp.MustCompile(`<([A-Z][A-Za-z0-9]*)[^>]*>`)

	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
)

// CleanMDX strips MDX-specific syntax from a document body. Import and
// non-default export statements are dropped and common JSX wrapper
// components are unwrapped so their inner content survives.
func CleanMDX(body string) string {
	lines := strings.Split(body, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		if importLineRe.MatchString(line) {
			continue
		}
		if exportLineRe.MatchString(line) && !exportDefRe.MatchString(line) {
			continue
		}
		cleaned = append(cleaned, unwrapJSXLine(line))
	}
	return strings.Join(cleaned, "\n")
}

func unwrapJSXLine(line string) string {
	for _, wrapper := range jsxNamedWrappers {
		line = wrapper.re.ReplaceAllString(line, wrapper.replacement)
	}
	line = jsxSelfClosingRe.ReplaceAllString(line, "")
	return unwrapPairedComponents(line)
}

// unwrapPairedComponents removes <Component ...>inner</Component> pairs while
// keeping the inner content. Components are recognized by their uppercase
// first letter so plain HTML tags pass through untouched. The scan is a
// single left-to-right pass and replacements are not rescanned.
func unwrapPairedComponents(line string) string {
	var out strings.Builder
	remaining := line

	for {
		loc := jsxOpenTagRe.FindStringSubmatchIndex(remaining)
		if loc == nil {
			out.WriteString(remaining)
			return out.String()
		}

		name := remaining[loc[2]:loc[3]]
		closing := "</" + name + ">"
		after := remaining[loc[1]:]

		idx := strings.Index(after, closing)
		if idx < 0 {
			out.WriteString(remaining[:loc[1]])
			remaining = after
			continue
		}

		out.WriteString(remaining[:loc[0]])
		out.WriteString(after[:idx])
		remaining = after[idx+len(closing):]
	}
}

// StripHTMLComments removes <!-- --> comment blocks, including multi-line
// ones.
func StripHTMLComments(body string) string {
	return htmlCommentRe.ReplaceAllString(body, "")
}

var (
	atxHeadingRe    = regexp.MustCompile(`^(#+)\s*(.*)`)
	tildeFenceRe    = regexp.MustCompile(`(?m)^~~~(\w*)`)
	tildeFenceEndRe = regexp.MustCompile(`(?m)^~~~\s*$`)
	fenceLangRe     = regexp.MustCompile("(?m)^(```)([\\w+-]*)(.*)$")
	trailingSpaceRe = regexp.MustCompile(`(?m)[ \t]+$`)
	blankRunRe      = regexp.MustCompile(`\n{4,}`)
)

// NormalizeMarkdown standardizes heading syntax, code fences and spacing so
// emitted documents stay consistent across source repositories.
func NormalizeMarkdown(body string) string {
	body = normalizeHeadings(body)
	body = normalizeCodeFences(body)
	body = normalizeSpacing(body)
	return body
}

// normalizeHeadings converts setext underline headings to ATX style and
// ensures a single space separates the hashes from the title.
func normalizeHeadings(body string) string {
	lines := strings.Split(body, "\n")
	normalized := make([]string, 0, len(lines))

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if i > 0 && stripped != "" && isSetextUnderline(stripped) {
			prev := strings.TrimSpace(lines[i-1])
			if prev != "" && len(normalized) > 0 {
				normalized = normalized[:len(normalized)-1]
				if strings.Contains(stripped, "=") {
					normalized = append(normalized, "# "+prev)
				} else {
					normalized = append(normalized, "## "+prev)
				}
				continue
			}
		}

		if match := atxHeadingRe.FindStringSubmatch(line); match != nil {
			heading := strings.TrimRight(match[1]+" "+strings.TrimSpace(match[2]), " ")
			normalized = append(normalized, heading)
			continue
		}
		normalized = append(normalized, line)
	}
	return strings.Join(normalized, "\n")
}

func isSetextUnderline(line string) bool {
	for _, r := range line {
		if r != '=' && r != '-' {
			return false
		}
	}
	return true
}

// normalizeCodeFences rewrites tilde fences to backticks and lowercases
// language specifiers.
func normalizeCodeFences(body string) string {
	body = tildeFenceRe.ReplaceAllString(body, "```$1")
	body = tildeFenceEndRe.ReplaceAllString(body, "```")

	return fenceLangRe.ReplaceAllStringFunc(body, func(match string) string {
		groups := fenceLangRe.FindStringSubmatch(match)
		return groups[1] + strings.ToLower(groups[2]) + groups[3]
	})
}

// normalizeSpacing strips trailing whitespace, caps consecutive blank lines
// at two, and guarantees a single trailing newline.
func normalizeSpacing(body string) string {
	body = trailingSpaceRe.ReplaceAllString(body, "")
	body = blankRunRe.ReplaceAllString(body, "\n\n\n")
	return strings.TrimRight(body, "\n") + "\n"
}

var (
	boilerplateLinkRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\[Edit this page[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[Edit on GitHub[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[Improve this page[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[← Previous[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[Next →[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[Back to top[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[Share on Twitter[^\]]*\]\([^)]+\)`),
		regexp.MustCompile(`(?i)\[Share on Facebook[^\]]*\]\([^)]+\)`),
	}

	spaceRunRe    = regexp.MustCompile(`(\S)  +`)
	blankPairRe   = regexp.MustCompile(`\n\s*\n\s*\n`)
	markdownURLRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// FixLinks removes boilerplate navigation links and annotates relative links
// with their source path so extracted context keeps enough information to
// resolve them later.
func FixLinks(body string, sourcePath string) string {
	for _, re := range boilerplateLinkRes {
		body = re.ReplaceAllString(body, "")
	}
	body = spaceRunRe.ReplaceAllString(body, "$1 ")
	body = blankPairRe.ReplaceAllString(body, "\n\n")

	if sourcePath == "" {
		return body
	}

	return markdownURLRe.ReplaceAllStringFunc(body, func(match string) string {
		groups := markdownURLRe.FindStringSubmatch(match)
		text, target := groups[1], groups[2]

		if parsed, err := url.Parse(target); err != nil || parsed.Scheme != "" {
			return match
		}
		if strings.HasPrefix(target, "#") {
			return match
		}
		if strings.HasPrefix(target, "./") || strings.HasPrefix(target, "../") {
			return fmt.Sprintf("[%s](%s %q)", text, target, "Relative link from "+sourcePath)
		}
		return match
	})
}

var (
	codeBlockRe = regexp.MustCompile("(?s)(```[\\w+-]*\n)(.*?)(```)")
	jsonBlockRe = regexp.MustCompile("(?is)(```(?:json|jsonc?)\n)(.*?)(```)")
)

// CompressContent shortens oversized code and JSON blocks, keeping the head
// and tail with a marker describing how many lines were omitted. Aggressive
// mode lowers the thresholds and additionally compresses whitespace.
func CompressContent(body string, aggressive bool) string {
	body = compressCodeBlocks(body, aggressive)
	body = compressJSONBlocks(body, aggressive)
	if aggressive {
		body = blankRunRe.ReplaceAllString(body, "\n\n\n")
		body = trailingSpaceRe.ReplaceAllString(body, "")
	}
	return body
}

func compressCodeBlocks(body string, aggressive bool) string {
	threshold, keepStart, keepEnd := 25, 8, 5
	if aggressive {
		threshold, keepStart, keepEnd = 15, 5, 3
	}

	return codeBlockRe.ReplaceAllStringFunc(body, func(match string) string {
		groups := codeBlockRe.FindStringSubmatch(match)
		fenceStart, code, fenceEnd := groups[1], groups[2], groups[3]

		lines := strings.Split(code, "\n")
		if len(lines) <= threshold {
			return match
		}

		omitted := len(lines) - keepStart - keepEnd
		summary := fmt.Sprintf("\n// ... (%d lines omitted for brevity) ...\n", omitted)

		compressed := strings.Join(lines[:keepStart], "\n") + summary + strings.Join(lines[len(lines)-keepEnd:], "\n")
		return fenceStart + compressed + fenceEnd
	})
}

func compressJSONBlocks(body string, aggressive bool) string {
	threshold, keep := 20, 10
	if aggressive {
		threshold, keep = 10, 6
	}

	return jsonBlockRe.ReplaceAllStringFunc(body, func(match string) string {
		groups := jsonBlockRe.FindStringSubmatch(match)
		fenceStart, code, fenceEnd := groups[1], groups[2], groups[3]

		stripped := strings.TrimSpace(code)
		if !strings.HasPrefix(stripped, "{") && !strings.HasPrefix(stripped, "[") {
			return match
		}
		if !strings.HasSuffix(stripped, "}") && !strings.HasSuffix(stripped, "]") {
			return match
		}

		lines := strings.Split(code, "\n")
		if len(lines) <= threshold {
			return match
		}

		omitted := len(lines) - keep
		summary := fmt.Sprintf("  // ... (%d more lines) ...\n", omitted)
		if strings.HasSuffix(stripped, "}") {
			summary += "}\n"
		} else {
			summary += "]\n"
		}

		compressed := strings.Join(lines[:keep], "\n") + "\n" + summary
		return fenceStart + compressed + fenceEnd
	})
}
