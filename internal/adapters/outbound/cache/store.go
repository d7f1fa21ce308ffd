// Package cache persists detection results under the project's .pourfix
// directory so repeated plans over an unchanged tree skip detection.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/abdidvp/pourfix/internal/domain"
)

// Store is a file-based implementation of domain.CacheStore.
type Store struct{}

func New() *Store {
	return &Store{}
}

// Load reads a project cache from disk. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath string) (*domain.DetectionCache, error) {
	data, err := os.ReadFile(cachePath(projectPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var c domain.DetectionCache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save writes a project cache to disk, creating directories as needed.
func (s *Store) Save(c *domain.DetectionCache) error {
	if err := os.MkdirAll(cacheDir(c.ProjectPath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(cachePath(c.ProjectPath), data, 0o644)
}

// Invalidate removes the cache file for the given project path.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.Remove(cachePath(projectPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".pourfix", "cache")
}

func cachePath(projectPath string) string {
	return filepath.Join(cacheDir(projectPath), "detect.json")
}
