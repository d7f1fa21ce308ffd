// Package workspace stores per-job file trees and artifacts on local disk:
//
//	<data_dir>/<job_id>/upload.zip
//	<data_dir>/<job_id>/original/
//	<data_dir>/<job_id>/fixed/
//	<data_dir>/<job_id>/fixed.zip
package workspace

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// Artifact names inside a job directory.
const (
	UploadName  = "upload.zip"
	PackageName = "fixed.zip"
	originalDir = "original"
	fixedDir    = "fixed"
)

// ErrInvalidArchive is returned for archives that violate Limits.
var ErrInvalidArchive = errors.New("invalid archive")

// Limits bounds what an uploaded archive may contain.
type Limits struct {
	MaxFiles      int
	MaxTotalBytes int64
	MaxNameLength int
	MaxDepth      int
	// MinCompressionRatio flags archives whose compressed/uncompressed ratio
	// is below it once they exceed BombCheckBytes.
	MinCompressionRatio float64
	BombCheckBytes      int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxFiles:            1000,
		MaxTotalBytes:       100 << 20,
		MaxNameLength:       255,
		MaxDepth:            10,
		MinCompressionRatio: 0.01,
		BombCheckBytes:      1 << 20,
	}
}

// Store implements domain.Workspace on the local filesystem.
type Store struct {
	dataDir string
	limits  Limits
	scanner domain.SourceScanner
}

func New(dataDir string, scanner domain.SourceScanner) *Store {
	return &Store{dataDir: dataDir, limits: DefaultLimits(), scanner: scanner}
}

// WithLimits returns a copy of s using l.
func (s *Store) WithLimits(l Limits) *Store {
	c := *s
	c.limits = l
	return &c
}

func (s *Store) JobDir(jobID string) string {
	return filepath.Join(s.dataDir, jobID)
}

func (s *Store) OriginalRoot(jobID string) string {
	return filepath.Join(s.JobDir(jobID), originalDir)
}

func (s *Store) FixedRoot(jobID string) string {
	return filepath.Join(s.JobDir(jobID), fixedDir)
}

// ArtifactPath returns the path of a named artifact in the job directory.
func (s *Store) ArtifactPath(jobID, name string) string {
	return filepath.Join(s.JobDir(jobID), name)
}

// IngestZip saves the upload and extracts its web source files into the
// original tree. It returns the number of files extracted.
func (s *Store) IngestZip(ctx context.Context, jobID string, r io.Reader) (int, error) {
	if err := checkJobID(jobID); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(s.OriginalRoot(jobID), 0o755); err != nil {
		return 0, fmt.Errorf("creating job dir: %w", err)
	}

	uploadPath := s.ArtifactPath(jobID, UploadName)
	out, err := os.Create(uploadPath)
	if err != nil {
		return 0, fmt.Errorf("saving upload: %w", err)
	}
	if _, err := io.Copy(out, io.LimitReader(r, s.limits.MaxTotalBytes+1)); err != nil {
		out.Close()
		return 0, fmt.Errorf("saving upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("saving upload: %w", err)
	}

	zr, err := zip.OpenReader(uploadPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer zr.Close()

	entries, err := s.checkArchive(zr.File)
	if err != nil {
		return 0, err
	}

	root := s.OriginalRoot(jobID)
	for _, f := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := extract(f, filepath.Join(root, filepath.FromSlash(f.Name))); err != nil {
			return 0, err
		}
	}
	return len(entries), nil
}

// checkArchive validates every entry and returns the ones to extract.
func (s *Store) checkArchive(files []*zip.File) ([]*zip.File, error) {
	if len(files) > s.limits.MaxFiles {
		return nil, fmt.Errorf("%w: %d entries exceeds limit of %d", ErrInvalidArchive, len(files), s.limits.MaxFiles)
	}

	var (
		keep        []*zip.File
		total       uint64
		totalPacked uint64
	)
	for _, f := range files {
		name := f.Name
		if len(name) > s.limits.MaxNameLength {
			return nil, fmt.Errorf("%w: entry name too long", ErrInvalidArchive)
		}
		if unsafeName(name) {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidArchive, name, domain.ErrUnsafePath)
		}
		if strings.Count(strings.Trim(name, "/"), "/") > s.limits.MaxDepth {
			return nil, fmt.Errorf("%w: %q nested too deeply", ErrInvalidArchive, name)
		}
		if f.FileInfo().IsDir() || !f.Mode().IsRegular() || !supported(name) {
			continue
		}
		total += f.UncompressedSize64
		totalPacked += f.CompressedSize64
		keep = append(keep, f)
	}

	if total > uint64(s.limits.MaxTotalBytes) {
		return nil, fmt.Errorf("%w: uncompressed size %d exceeds limit of %d", ErrInvalidArchive, total, s.limits.MaxTotalBytes)
	}
	if total > uint64(s.limits.BombCheckBytes) &&
		float64(totalPacked)/float64(total) < s.limits.MinCompressionRatio {
		return nil, fmt.Errorf("%w: suspicious compression ratio", ErrInvalidArchive)
	}
	return keep, nil
}

func extract(f *zip.File, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	n, err := io.Copy(out, io.LimitReader(rc, int64(f.UncompressedSize64)+1))
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if uint64(n) > f.UncompressedSize64 {
		return fmt.Errorf("%w: %s larger than declared", ErrInvalidArchive, f.Name)
	}
	return nil
}

// IngestDir copies the supported files of a local tree into the original
// tree. It returns the number of files copied.
func (s *Store) IngestDir(ctx context.Context, jobID, src string, excludePaths ...string) (int, error) {
	if err := checkJobID(jobID); err != nil {
		return 0, err
	}
	scan, err := s.scanner.Scan(src, excludePaths...)
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", src, err)
	}
	if err := copyFiles(ctx, scan.RootPath, s.OriginalRoot(jobID), scan.Files); err != nil {
		return 0, err
	}
	return len(scan.Files), nil
}

// OriginalFiles lists the web source files of the original tree.
func (s *Store) OriginalFiles(_ context.Context, jobID string) ([]string, error) {
	scan, err := s.scanner.Scan(s.OriginalRoot(jobID))
	if err != nil {
		return nil, err
	}
	return scan.Files, nil
}

// PrepareWorkingCopy replaces the fixed tree with a fresh copy of the
// original tree and returns its root.
func (s *Store) PrepareWorkingCopy(ctx context.Context, jobID string) (string, error) {
	fixed := s.FixedRoot(jobID)
	if err := os.RemoveAll(fixed); err != nil {
		return "", err
	}
	files, err := s.OriginalFiles(ctx, jobID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(fixed, 0o755); err != nil {
		return "", err
	}
	if err := copyFiles(ctx, s.OriginalRoot(jobID), fixed, files); err != nil {
		return "", err
	}
	return fixed, nil
}

// Package zips the fixed tree into fixed.zip and returns its path.
func (s *Store) Package(ctx context.Context, jobID string) (string, error) {
	root := s.FixedRoot(jobID)
	dst := s.ArtifactPath(jobID, PackageName)

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	zw := zip.NewWriter(out)

	err = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.ToSlash(rel), Method: zip.Deflate})
		if err != nil {
			return err
		}
		in, err := os.Open(p)
		if err != nil {
			return err
		}
		defer in.Close()
		_, err = io.Copy(w, in)
		return err
	})
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("packaging %s: %w", jobID, err)
	}
	return dst, nil
}

// Remove deletes everything stored for a job.
func (s *Store) Remove(jobID string) error {
	if err := checkJobID(jobID); err != nil {
		return err
	}
	return os.RemoveAll(s.JobDir(jobID))
}

func copyFiles(ctx context.Context, srcRoot, dstRoot string, files []string) error {
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := filepath.Join(srcRoot, filepath.FromSlash(rel))
		dst := filepath.Join(dstRoot, filepath.FromSlash(rel))
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("copying %s: %w", rel, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func unsafeName(name string) bool {
	if strings.HasPrefix(name, "/") || strings.Contains(name, "\\") || filepath.IsAbs(name) {
		return true
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range domain.SupportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

func checkJobID(jobID string) error {
	if jobID == "" || jobID == "." || jobID == ".." || strings.ContainsAny(jobID, `/\`) {
		return fmt.Errorf("job id %q: %w", jobID, domain.ErrUnsafePath)
	}
	return nil
}
