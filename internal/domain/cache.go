package domain

// DetectionCache holds the defects found in a project together with the
// fingerprints they were computed from.
type DetectionCache struct {
	ProjectPath string            `json:"project_path"`
	ConfigHash  string            `json:"config_hash"`
	FileHashes  map[string]string `json:"file_hashes"`
	Defects     []Defect          `json:"defects"`
}

// IsInvalidated reports whether the config or any source file changed since
// the cache was written. Added and removed files count as changes.
func (c *DetectionCache) IsInvalidated(configHash string, fileHashes map[string]string) bool {
	if c.ConfigHash != configHash || len(c.FileHashes) != len(fileHashes) {
		return true
	}
	for path, h := range fileHashes {
		if c.FileHashes[path] != h {
			return true
		}
	}
	return false
}
