package watchlist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"StockPercentile/internal/model"
)

// Entry is the last refresh result kept for one symbol.
type Entry struct {
	Band         model.Band `json:"band"`
	Percentile1Y *float64   `json:"percentile1y,omitempty"`
	RefreshedAt  time.Time  `json:"refreshedAt"`
}

// State is the on-disk watchlist.
type State struct {
	Symbols   []string         `json:"symbols"`
	Last      map[string]Entry `json:"last"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// LoadState reads the watchlist from a JSON file. Returns nil, nil if the file doesn't exist.
func LoadState(filePath string) (*State, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	if state.Last == nil {
		state.Last = make(map[string]Entry)
	}
	return &state, nil
}

// SaveState writes the watchlist through a temp file so a crash never leaves half a file.
func SaveState(filePath string, state *State) error {
	state.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
