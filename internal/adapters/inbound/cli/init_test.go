package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/config"
)

func TestInitCmd_CreatesConfigFile(t *testing.T) {
	tmpDir := t.TempDir()

	out, err := execute("init", tmpDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created .pourfix.yaml")

	data, err := os.ReadFile(filepath.Join(tmpDir, ".pourfix.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# pourfix configuration")
	assert.Contains(t, string(data), "concurrency: 4")

	cfg, err := config.New().Load(tmpDir)
	require.NoError(t, err)
	assert.True(t, cfg.FallbackEnabled())
	assert.Empty(t, cfg.Skip.Validators)
}

func TestInitCmd_NativeAndNoLLM(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := execute("init", tmpDir, "--native", "--no-llm", "--exclude", "vendor-js,legacy")
	require.NoError(t, err)

	cfg, err := config.New().Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"typescript", "eslint"}, cfg.Skip.Validators)
	assert.False(t, cfg.FallbackEnabled())
	assert.Equal(t, []string{"vendor-js", "legacy"}, cfg.ExcludePaths)
}

func TestInitCmd_FailsIfExists(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".pourfix.yaml"), []byte("existing"), 0o644))

	_, err := execute("init", tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitCmd_ForceOverwrites(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".pourfix.yaml"), []byte("old"), 0o644))

	_, err := execute("init", tmpDir, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(tmpDir, ".pourfix.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "concurrency:")
	assert.NotEqual(t, "old", string(data))
}
