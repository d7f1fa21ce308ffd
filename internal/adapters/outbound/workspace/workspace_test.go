package workspace_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/scanner"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/workspace"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDir = "../../../../testdata/web/site"

func buildZip(t *testing.T, files map[string]string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return &buf
}

func newStore(t *testing.T) *workspace.Store {
	return workspace.New(t.TempDir(), scanner.New())
}

func TestIngestZip_ExtractsWebSources(t *testing.T) {
	s := newStore(t)
	zipped := buildZip(t, map[string]string{
		"site/index.html":     "<html></html>",
		"site/app/App.tsx":    "export {}",
		"site/notes.txt":      "ignored",
		"site/styles/app.css": "a{}",
	})

	n, err := s.IngestZip(context.Background(), "job1", zipped)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	files, err := s.OriginalFiles(context.Background(), "job1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"site/index.html", "site/app/App.tsx", "site/styles/app.css"}, files)
	assert.FileExists(t, s.ArtifactPath("job1", workspace.UploadName))
	assert.NoFileExists(t, filepath.Join(s.OriginalRoot("job1"), "site", "notes.txt"))
}

func TestIngestZip_RejectsTraversal(t *testing.T) {
	s := newStore(t)
	zipped := buildZip(t, map[string]string{"../evil.html": "<p>x</p>"})

	_, err := s.IngestZip(context.Background(), "job1", zipped)
	require.Error(t, err)
	assert.ErrorIs(t, err, workspace.ErrInvalidArchive)
	assert.ErrorIs(t, err, domain.ErrUnsafePath)
}

func TestIngestZip_RejectsTooManyFiles(t *testing.T) {
	limits := workspace.DefaultLimits()
	limits.MaxFiles = 2
	s := newStore(t).WithLimits(limits)
	zipped := buildZip(t, map[string]string{"a.html": "a", "b.html": "b", "c.html": "c"})

	_, err := s.IngestZip(context.Background(), "job1", zipped)
	assert.ErrorIs(t, err, workspace.ErrInvalidArchive)
}

func TestIngestZip_RejectsOversizedContent(t *testing.T) {
	limits := workspace.DefaultLimits()
	limits.MaxTotalBytes = 64
	limits.BombCheckBytes = 1 << 30
	s := newStore(t).WithLimits(limits)
	zipped := buildZip(t, map[string]string{"big.html": strings.Repeat("x", 4096)})

	_, err := s.IngestZip(context.Background(), "job1", zipped)
	assert.ErrorIs(t, err, workspace.ErrInvalidArchive)
}

func TestIngestZip_RejectsCompressionBomb(t *testing.T) {
	limits := workspace.DefaultLimits()
	limits.BombCheckBytes = 1024
	s := newStore(t).WithLimits(limits)
	zipped := buildZip(t, map[string]string{"bomb.html": strings.Repeat("a", 1<<20)})

	_, err := s.IngestZip(context.Background(), "job1", zipped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compression ratio")
}

func TestIngestZip_RejectsGarbage(t *testing.T) {
	_, err := newStore(t).IngestZip(context.Background(), "job1", strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, workspace.ErrInvalidArchive)
}

func TestIngestZip_RejectsUnsafeJobID(t *testing.T) {
	_, err := newStore(t).IngestZip(context.Background(), "../x", buildZip(t, nil))
	assert.ErrorIs(t, err, domain.ErrUnsafePath)
}

func TestPrepareWorkingCopy_IsFreshCopy(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.IngestDir(ctx, "job1", fixtureDir)
	require.NoError(t, err)

	root, err := s.PrepareWorkingCopy(ctx, "job1")
	require.NoError(t, err)
	assert.Equal(t, s.FixedRoot("job1"), root)

	target := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(target, []byte("changed"), 0o644))

	root, err = s.PrepareWorkingCopy(ctx, "job1")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}

func TestIngestDir_SkipsDependencies(t *testing.T) {
	s := newStore(t)
	n, err := s.IngestDir(context.Background(), "job1", fixtureDir)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.NoDirExists(t, filepath.Join(s.OriginalRoot("job1"), "node_modules"))
}

func TestPackage_ZipsFixedTree(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.IngestDir(ctx, "job1", fixtureDir)
	require.NoError(t, err)
	_, err = s.PrepareWorkingCopy(ctx, "job1")
	require.NoError(t, err)

	path, err := s.Package(ctx, "job1")
	require.NoError(t, err)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "index.html")
	assert.Contains(t, names, "src/components/Card.jsx")
	assert.Len(t, names, 5)
}

func TestRemove(t *testing.T) {
	s := newStore(t)
	_, err := s.IngestDir(context.Background(), "job1", fixtureDir)
	require.NoError(t, err)

	require.NoError(t, s.Remove("job1"))
	assert.NoDirExists(t, s.JobDir("job1"))
}
