package gitinfo_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/gitinfo"
)

func commitFixture(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "site"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site", "index.html"), []byte("<html></html>"), 0644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("site/index.html")
	require.NoError(t, err)
	hash, err := wt.Commit("init", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, hash.String()
}

func TestRepo_CommitHash(t *testing.T) {
	dir, want := commitFixture(t)
	g := gitinfo.New()

	assert.True(t, g.IsGitRepo(dir))
	hash, err := g.CommitHash(dir)
	require.NoError(t, err)
	assert.Equal(t, want, hash)
	assert.Len(t, hash, 40)
}

func TestRepo_SubdirectoryResolvesRepo(t *testing.T) {
	dir, want := commitFixture(t)
	hash, err := gitinfo.New().CommitHash(filepath.Join(dir, "site"))
	require.NoError(t, err)
	assert.Equal(t, want, hash)
}

func TestRepo_NotARepo(t *testing.T) {
	dir := t.TempDir()
	g := gitinfo.New()
	assert.False(t, g.IsGitRepo(dir))
	_, err := g.CommitHash(dir)
	assert.Error(t, err)
}

func TestRepo_EmptyRepoHasNoHead(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	_, err = gitinfo.New().CommitHash(dir)
	assert.ErrorContains(t, err, "resolving HEAD")
}

func TestShort(t *testing.T) {
	assert.Equal(t, "0123456", gitinfo.Short("0123456789abcdef"))
	assert.Equal(t, "abc", gitinfo.Short("abc"))
}
