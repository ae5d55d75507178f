package intelligence

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-mdc/pkg/interfaces"
)

// StateFileName is the analysis state file written to the content root. It
// maps document paths to the content hash seen on their last analysis and
// powers incremental runs.
const StateFileName = ".intelligence-state.json"

type stateEntry struct {
	ContentHash  string `json:"content_hash"`
	LastAnalyzed string `json:"last_analyzed"`
}

type analysisState map[string]stateEntry

// loadAnalysisState reads the state file at path. A missing file is the
// normal first run case and yields an empty state; corrupt state is dropped
// with a warning so a full reanalysis can rebuild it.
func loadAnalysisState(path string, logger interfaces.Logger) analysisState {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not read analysis state", "path", path, "error", err.Error())
		}
		return analysisState{}
	}

	var state analysisState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("could not parse analysis state", "path", path, "error", err.Error())
		return analysisState{}
	}
	if state == nil {
		state = analysisState{}
	}
	return state
}

func saveAnalysisState(path string, state analysisState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write analysis state: %w", err)
	}
	return nil
}

func contentHash(content string) string {
	digest := sha256.Sum256([]byte(content))
	return hex.EncodeToString(digest[:])
}
