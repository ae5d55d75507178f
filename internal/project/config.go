package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-mdc/internal/logging"
	"github.com/goliatone/go-mdc/internal/markdown"
	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// ConfigFileName is the standard project file checked into documentation
// repositories.
const ConfigFileName = "context7.json"

// ErrInvalidConfig wraps schema validation failures for project files.
var ErrInvalidConfig = errors.New("project: invalid configuration")

// DefaultTitle is used when a project file does not name itself.
const DefaultTitle = "Unknown Project"

// schemaJSON constrains the shape of context7.json. Additional properties
// stay legal so newer upstream settings do not break older pipelines.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "settings": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "description": {"type": "string"},
        "docsRepoUrl": {"type": "string"},
        "project": {"type": "string"},
        "branch": {"type": "string"},
        "folders": {"type": "array", "items": {"type": "string"}},
        "excludeFolders": {"type": "array", "items": {"type": "string"}},
        "excludeFiles": {"type": "array", "items": {"type": "string"}},
        "topics": {"type": "array", "items": {"type": "string"}},
        "profile": {"type": "string"},
        "transforms": {"type": "object"}
      },
      "additionalProperties": true
    },
    "tags": {"type": "object"}
  },
  "additionalProperties": true
}`

var projectSchema = compileProjectSchema()

func compileProjectSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("context7.schema.json", strings.NewReader(schemaJSON)); err != nil {
		panic(fmt.Sprintf("project: add schema resource: %v", err))
	}
	return compiler.MustCompile("context7.schema.json")
}

// Settings mirrors the settings block of a context7.json file.
type Settings struct {
	Title          string         `json:"title,omitempty"`
	Description    string         `json:"description,omitempty"`
	DocsRepoURL    string         `json:"docsRepoUrl,omitempty"`
	Project        string         `json:"project,omitempty"`
	Branch         string         `json:"branch,omitempty"`
	Folders        []string       `json:"folders,omitempty"`
	ExcludeFolders []string       `json:"excludeFolders,omitempty"`
	ExcludeFiles   []string       `json:"excludeFiles,omitempty"`
	Topics         []string       `json:"topics,omitempty"`
	Profile        string         `json:"profile,omitempty"`
	Transforms     map[string]any `json:"transforms,omitempty"`
}

// Config is a parsed project configuration.
type Config struct {
	Settings Settings       `json:"settings"`
	Tags     map[string]any `json:"tags,omitempty"`
}

// Default returns the configuration used when no project file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Settings.Title) == "" {
		c.Settings.Title = DefaultTitle
	}
	if strings.TrimSpace(c.Settings.Branch) == "" {
		c.Settings.Branch = "main"
	}
	if strings.TrimSpace(c.Settings.Profile) == "" {
		c.Settings.Profile = markdown.ProfileBalanced
	}
}

// Load reads and validates a project file. A missing file yields Default()
// and no error so conversions can run without a checked-in configuration.
func Load(path string, logger interfaces.Logger) (*Config, error) {
	if logger == nil {
		logger = logging.NoOp()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("no project configuration found, using defaults",
				"config_path", path)
			return Default(), nil
		}
		return nil, fmt.Errorf("project read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded project configuration",
		"config_path", path,
		"title", cfg.Settings.Title,
		"profile", cfg.Settings.Profile)
	return cfg, nil
}

// Parse decodes and validates raw context7.json bytes. Files written without
// the settings wrapper are accepted and wrapped.
func Parse(data []byte) (*Config, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("project parse: %w", err)
	}

	document, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidConfig)
	}
	if _, ok := document["settings"]; !ok {
		document = map[string]any{"settings": document}
	}

	if err := projectSchema.Validate(document); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	encoded, err := json.Marshal(document)
	if err != nil {
		return nil, fmt.Errorf("project encode: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(encoded, &cfg); err != nil {
		return nil, fmt.Errorf("project decode: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Detect looks for a project file near sourceDir: the directory itself, its
// parent, then a .context7 subdirectory. Returns the first match or "".
func Detect(sourceDir string) string {
	dir := filepath.Clean(sourceDir)
	candidates := []string{
		filepath.Join(dir, ConfigFileName),
		filepath.Join(filepath.Dir(dir), ConfigFileName),
		filepath.Join(dir, ".context7", ConfigFileName),
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Repo returns the "owner/name" repository derived from the project path.
func (c *Config) Repo() string {
	return strings.TrimPrefix(strings.TrimSpace(c.Settings.Project), "/")
}

// IncludePatterns expands the configured folders into loader include globs.
// Without folders the whole tree is eligible.
func (c *Config) IncludePatterns() []string {
	folders := make([]string, 0, len(c.Settings.Folders))
	for _, folder := range c.Settings.Folders {
		folder = strings.Trim(strings.TrimSpace(folder), "/")
		if folder != "" {
			folders = append(folders, folder)
		}
	}
	if len(folders) == 0 {
		return []string{"**/*.md", "**/*.mdx"}
	}

	patterns := make([]string, 0, len(folders)*4)
	for _, folder := range folders {
		patterns = append(patterns,
			folder+"/*.md",
			folder+"/**/*.md",
			folder+"/*.mdx",
			folder+"/**/*.mdx",
		)
	}
	return patterns
}

// commonExcludes drop build artifacts and vendored trees regardless of the
// project's own exclusions.
var commonExcludes = []string{
	"node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	".next/**",
	".nuxt/**",
	".vite/**",
	".turbo/**",
	"coverage/**",
	"__pycache__/**",
	"*.min.js",
	"*.min.css",
}

// ExcludePatterns merges folder and file exclusions with the common noise
// directories.
func (c *Config) ExcludePatterns() []string {
	patterns := make([]string, 0, len(c.Settings.ExcludeFolders)+len(c.Settings.ExcludeFiles)+len(commonExcludes))
	for _, folder := range c.Settings.ExcludeFolders {
		folder = strings.Trim(strings.TrimSpace(folder), "/")
		if folder != "" {
			patterns = append(patterns, folder+"/**")
		}
	}
	for _, file := range c.Settings.ExcludeFiles {
		if file = strings.TrimSpace(file); file != "" {
			patterns = append(patterns, file)
		}
	}
	return append(patterns, commonExcludes...)
}

// TransformOptions maps the project transform toggles onto pipeline options.
// Unknown toggle names and non-boolean values are ignored.
func (c *Config) TransformOptions() markdown.TransformOptions {
	opts := markdown.DefaultTransformOptions()
	if profile := strings.TrimSpace(c.Settings.Profile); profile != "" {
		opts.Profile = profile
	}

	for name, raw := range c.Settings.Transforms {
		enabled, ok := raw.(bool)
		if !ok {
			continue
		}
		switch name {
		case "cleanMdx":
			opts.StripJSX = enabled
		case "stripComments":
			opts.StripHTMLComments = enabled
		case "normalizeHeadings":
			opts.NormalizeHeadings = enabled
		case "collapseBlankLines":
			opts.CollapseBlankLines = enabled
		}
	}
	return opts
}
