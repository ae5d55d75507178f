package intelligence

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// IndexFileName is the JSON Lines intelligence index written to the content
// root. Each line summarizes one document's analysis results.
const IndexFileName = "intelligence.jsonl"

type indexEntry struct {
	Slug         string         `json:"slug"`
	Title        string         `json:"title"`
	Path         string         `json:"path"`
	Intelligence map[string]any `json:"intelligence"`
}

// mergeIntelligenceIndex folds entries into the index file at path. Existing
// slugs are updated in place, keeping their original line position; new slugs
// append. The whole file is rewritten atomically from the merged view.
func mergeIntelligenceIndex(path string, entries []indexEntry) error {
	ordered, bySlug, err := readIntelligenceIndex(path)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if _, exists := bySlug[entry.Slug]; !exists {
			ordered = append(ordered, entry.Slug)
		}
		bySlug[entry.Slug] = entry
	}

	var buf bytes.Buffer
	for _, slug := range ordered {
		line, err := json.Marshal(bySlug[slug])
		if err != nil {
			return fmt.Errorf("marshal index entry %q: %w", slug, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write intelligence index: %w", err)
	}
	return nil
}

// readIntelligenceIndex loads the current index, preserving line order. A
// missing file yields an empty index; a malformed line aborts the merge so a
// partially understood index is never rewritten.
func readIntelligenceIndex(path string) ([]string, map[string]indexEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, map[string]indexEntry{}, nil
		}
		return nil, nil, fmt.Errorf("open intelligence index: %w", err)
	}
	defer file.Close()

	var ordered []string
	bySlug := map[string]indexEntry{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry indexEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, nil, fmt.Errorf("parse intelligence index line: %w", err)
		}
		if _, exists := bySlug[entry.Slug]; !exists {
			ordered = append(ordered, entry.Slug)
		}
		bySlug[entry.Slug] = entry
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read intelligence index: %w", err)
	}
	return ordered, bySlug, nil
}
