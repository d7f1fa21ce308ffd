package scanner

import (
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	".pourfix":     true,
	"vendor":       true,
}

// FileScanner implements domain.SourceScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan lists supported web source files under projectPath. Paths are
// relative and slash-separated, in walk order.
func (s *FileScanner) Scan(projectPath string, excludePaths ...string) (*domain.ScanResult, error) {
	absPath, err := filepath.Abs(projectPath)
	if err != nil {
		return nil, err
	}

	extraSkip := make(map[string]bool, len(excludePaths))
	for _, p := range excludePaths {
		extraSkip[strings.Trim(filepath.ToSlash(p), "/")] = true
	}

	result := &domain.ScanResult{RootPath: absPath}

	err = filepath.WalkDir(absPath, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == absPath {
			return nil
		}

		rel, _ := filepath.Rel(absPath, p)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if skipDirs[d.Name()] || extraSkip[d.Name()] || extraSkip[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		if extraSkip[rel] || !d.Type().IsRegular() {
			return nil
		}

		switch Kind(rel) {
		case KindMarkup:
			result.Markup = append(result.Markup, rel)
		case KindScript:
			result.Scripts = append(result.Scripts, rel)
		case KindStyle:
			result.Styles = append(result.Styles, rel)
		default:
			return nil
		}
		result.Files = append(result.Files, rel)
		return nil
	})

	return result, err
}

// File kinds.
const (
	KindMarkup = "markup"
	KindScript = "script"
	KindStyle  = "style"
)

// Kind classifies a path by extension, returning "" for unsupported files.
func Kind(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if !slices.Contains(domain.SupportedExtensions, ext) {
		return ""
	}
	switch ext {
	case ".html", ".htm":
		return KindMarkup
	case ".css":
		return KindStyle
	default:
		return KindScript
	}
}

// IsJSX reports whether the file may contain JSX markup.
func IsJSX(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".jsx", ".tsx":
		return true
	}
	return false
}
