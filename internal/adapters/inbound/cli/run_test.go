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

func TestRunCommand_JSONLeavesProjectUntouched(t *testing.T) {
	dir := copyFixture(t)
	before, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)

	out, err := execute("run", dir, "--json", "--native", "--no-llm")
	require.NoError(t, err)

	var rep domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.NotEmpty(t, rep.JobID)
	assert.Positive(t, rep.Summary.TotalIssues)
	assert.Positive(t, rep.Summary.AppliedFixes)
	require.NotNil(t, rep.WorkPlan)

	after, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	fixed, err := os.ReadFile(filepath.Join(dir, ".pourfix", "jobs", rep.JobID, "fixed", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(fixed), `alt="Descriptive text for image"`)
	assert.FileExists(t, filepath.Join(dir, ".pourfix", "jobs", rep.JobID, "report.sarif"))
}

func TestRunCommand_RecordsHistory(t *testing.T) {
	dir := copyFixture(t)

	_, err := execute("run", dir, "--native", "--no-llm")
	require.NoError(t, err)

	out, err := execute("history", dir, "--json")
	require.NoError(t, err)
	var entries []domain.HistoryEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Positive(t, entries[0].TotalIssues)

	out, err = execute("history", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Run History")
}

func TestRunCommand_NoHistory(t *testing.T) {
	dir := copyFixture(t)

	_, err := execute("run", dir, "--native", "--no-llm", "--no-history")
	require.NoError(t, err)

	out, err := execute("history", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No run history found.")
}

func TestRunCommand_TUI(t *testing.T) {
	dir := copyFixture(t)

	out, err := execute("run", dir, "--native", "--no-llm")
	require.NoError(t, err)
	assert.Contains(t, out, "pourfix")
	assert.Contains(t, out, "Fixed files:")
}

func TestRunCommand_CIFailsWhenIssuesRemain(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "styles/broken.css", ".card {\n  padding: 4px;\n")

	_, err := execute("run", dir, "--native", "--no-llm", "--ci")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue(s) remain")
}

func TestRunCommand_CIPassesOnCleanTree(t *testing.T) {
	dir := t.TempDir()
	about, err := os.ReadFile(filepath.Join(fixtureDir, "about.html"))
	require.NoError(t, err)
	writeFile(t, dir, "about.html", string(about))

	_, err = execute("run", dir, "--native", "--no-llm", "--ci")
	assert.NoError(t, err)
}

func TestRunCommand_CIMinCompliance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "styles/broken.css", ".card {\n  padding: 4px;\n")

	_, err := execute("run", dir, "--native", "--no-llm", "--ci", "--min-compliance", "0.5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum 50%")
}

func TestPlanCommand_JSON(t *testing.T) {
	out, err := execute("plan", fixtureDir, "--json", "--no-cache")
	require.NoError(t, err)

	var p domain.WorkPlan
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.Positive(t, p.TotalIssues)
	assert.NotEmpty(t, p.Assignments)
}

func TestPlanCommand_RespectsSkippedRules(t *testing.T) {
	dir := copyFixture(t)
	writeFile(t, dir, ".pourfix.yaml", "skip:\n  rules: [img-alt]\n")

	out, err := execute("plan", dir, "--json")
	require.NoError(t, err)

	var p domain.WorkPlan
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	for _, a := range p.Assignments {
		for _, task := range a.Tasks {
			assert.NotEqual(t, "img-alt", task.RuleID)
		}
	}
}

func TestPlanCommand_WritesDetectionCache(t *testing.T) {
	dir := copyFixture(t)

	_, err := execute("plan", dir, "--json")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, ".pourfix", "cache", "detect.json"))
}

func TestPlanCommand_TUI(t *testing.T) {
	out, err := execute("plan", fixtureDir, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Work Plan")
}

func TestValidateCommand_FailsOnFixture(t *testing.T) {
	out, err := execute("validate", fixtureDir, "--native", "--json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	var v domain.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.False(t, v.Passed)
	assert.Equal(t, []string{"axe", "html", "css"}, v.Summary.ToolsUsed)
}

func TestValidateCommand_PassesOnCleanTree(t *testing.T) {
	dir := t.TempDir()
	about, err := os.ReadFile(filepath.Join(fixtureDir, "about.html"))
	require.NoError(t, err)
	writeFile(t, dir, "about.html", string(about))

	out, err := execute("validate", dir, "--native")
	require.NoError(t, err)
	assert.Contains(t, out, "1 files checked")
}

func TestValidateCommand_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".pourfix.yaml", "skip:\n  validators: [lighthouse]\n")

	_, err := execute("validate", dir, "--native")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid .pourfix.yaml")
}
