// Package history records local run summaries per project.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdidvp/pourfix/internal/domain"
)

// File is where runs are recorded, relative to the project root.
const File = ".pourfix/history/runs.json"

// MaxEntries bounds the history; the oldest runs are dropped first.
const MaxEntries = 200

// FileHistory implements domain.RunHistory as a JSON array on disk.
type FileHistory struct {
	max int
}

func New() *FileHistory {
	return &FileHistory{max: MaxEntries}
}

// WithMax overrides the retained entry count.
func (h *FileHistory) WithMax(n int) *FileHistory {
	h.max = n
	return h
}

func (h *FileHistory) Save(projectPath string, entry domain.HistoryEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	if h.max > 0 && len(entries) > h.max {
		entries = entries[len(entries)-h.max:]
	}

	fp := filepath.Join(projectPath, File)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fp, data, 0644)
}

func (h *FileHistory) Load(projectPath string) ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, File))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", File, err)
	}
	return entries, nil
}
