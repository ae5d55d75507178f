package emit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// IndexFileName is the manifest maintained alongside emitted documents, one
// JSON line per document.
const IndexFileName = "index.jsonl"

// indexEntry is a single manifest line.
type indexEntry struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Path        string   `json:"path"`
	Repo        string   `json:"repo,omitempty"`
	Ref         string   `json:"ref,omitempty"`
	Topics      []string `json:"topics"`
	Tokens      int      `json:"tokens"`
	ContentHash string   `json:"content_hash"`
	FetchedAt   string   `json:"fetched_at,omitempty"`
}

// updateIndex folds entry into the manifest, replacing any previous line for
// the same slug in place so re-runs diff cleanly. The whole file is rewritten
// on every update.
func (e *Emitter) updateIndex(entry indexEntry) error {
	if entry.Topics == nil {
		entry.Topics = []string{}
	}

	indexPath := filepath.Join(e.outputDir, e.indexFile)
	entries := e.readIndex(indexPath)

	replaced := false
	for i := range entries {
		if entries[i].Slug == entry.Slug {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}

	var buf bytes.Buffer
	for _, item := range entries {
		line, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("marshal index entry %s: %w", item.Slug, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(indexPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write index %s: %w", indexPath, err)
	}
	return nil
}

// readIndex loads the existing manifest. A missing file yields an empty
// index, and malformed lines are dropped with a warning so one bad line does
// not poison the run.
func (e *Emitter) readIndex(indexPath string) []indexEntry {
	file, err := os.Open(indexPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("failed to read existing index",
				"index_path", indexPath, "error", err.Error())
		}
		return nil
	}
	defer file.Close()

	var entries []indexEntry

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry indexEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			e.logger.Warn("dropping malformed index line",
				"index_path", indexPath, "error", err.Error())
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		e.logger.Warn("failed to scan existing index",
			"index_path", indexPath, "error", err.Error())
	}
	return entries
}
