package cli_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/domain"
)

const patchPage = "<html>\n<body>\n  <img src=\"a.png\">\n</body>\n</html>\n"

func writeFixes(t *testing.T, fixes []domain.Fix) string {
	t.Helper()
	data, err := json.Marshal(fixes)
	require.NoError(t, err)
	return writeFile(t, t.TempDir(), "fixes.json", string(data))
}

func imgFix() []domain.Fix {
	return []domain.Fix{{
		IssueID:    "img_1",
		FilePath:   "index.html",
		LineStart:  3,
		LineEnd:    3,
		BeforeCode: `<img src="a.png">`,
		AfterCode:  `<img src="a.png" alt="Logo">`,
		Confidence: 0.8,
	}}
}

func TestPatchCommand_Applies(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "index.html", patchPage)
	fixes := writeFixes(t, imgFix())

	out, err := execute("patch", dir, "--fixes", fixes, "--json")
	require.NoError(t, err)

	var res struct {
		Patches domain.ApplyReport `json:"patches"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 1, res.Patches.SuccessfulPatches)
	assert.Equal(t, 1, res.Patches.FilesWritten)

	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<img src="a.png" alt="Logo">`)
}

func TestPatchCommand_DryRunLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	page := writeFile(t, dir, "index.html", patchPage)
	fixes := writeFixes(t, imgFix())

	out, err := execute("patch", dir, "--fixes", fixes, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Patch (dry run)")
	assert.Contains(t, out, "1 applied")

	data, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Equal(t, patchPage, string(data))
}

func TestPatchCommand_Explain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.html", patchPage)
	fixes := writeFixes(t, imgFix())

	out, err := execute("patch", dir, "--fixes", fixes, "--dry-run", "--explain", "--json")
	require.NoError(t, err)

	var res struct {
		Analysis []struct {
			IssueID     string `json:"issue_id"`
			UnifiedDiff string `json:"unified_diff"`
			Safety      struct {
				Safe bool `json:"safe"`
			} `json:"safety"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Analysis, 1)
	assert.Equal(t, "img_1", res.Analysis[0].IssueID)
	assert.Contains(t, res.Analysis[0].UnifiedDiff, `+<img src="a.png" alt="Logo">`)
	assert.True(t, res.Analysis[0].Safety.Safe)
}

func TestPatchCommand_RequiresFixes(t *testing.T) {
	_, err := execute("patch", t.TempDir())
	assert.Error(t, err)
}

func TestPatchCommand_BadFixesFile(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "fixes.json", "{not json")

	_, err := execute("patch", filepath.Join(dir), "--fixes", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}
