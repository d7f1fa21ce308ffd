package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/application"
	"github.com/abdidvp/pourfix/internal/domain"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	return root
}

func readTree(t *testing.T, root string, names ...string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		require.NoError(t, err)
		out[name] = string(data)
	}
	return out
}

var patchTree = map[string]string{
	"index.html":      "<html>\n<body>\n<img src=\"a.png\">\n<input type=\"text\">\n</body>\n</html>\n",
	"styles/main.css": ".muted {\n  color: #777;\n}\n",
}

func patchFixes() []domain.Fix {
	return []domain.Fix{
		{IssueID: "img", FilePath: "index.html", LineStart: 3, LineEnd: 3,
			BeforeCode: `<img src="a.png">`, AfterCode: `<img src="a.png" alt="Logo">`},
		{IssueID: "css", FilePath: "styles/main.css", LineStart: 2, LineEnd: 2,
			BeforeCode: "color: #777;", AfterCode: "color: #777; /* review contrast */"},
		{IssueID: "input", FilePath: "index.html", LineStart: 4, LineEnd: 4,
			BeforeCode: `<input type="text">`, AfterCode: `<input type="text" aria-label="Search">`},
	}
}

func TestPatchService_AppliesAndCopiesFlagsBack(t *testing.T) {
	root := writeTree(t, patchTree)
	fixes := patchFixes()

	report, err := application.NewPatchService(nil, 2).Apply(context.Background(), root, fixes)
	require.NoError(t, err)

	assert.Equal(t, 3, report.SuccessfulPatches)
	assert.Equal(t, 2, report.FilesWritten)
	for _, f := range fixes {
		assert.True(t, f.Applied, f.IssueID)
	}

	got := readTree(t, root, "index.html", "styles/main.css")
	assert.Contains(t, got["index.html"], `alt="Logo"`)
	assert.Contains(t, got["index.html"], `aria-label="Search"`)
	assert.Contains(t, got["styles/main.css"], "color: #777; /* review contrast */")

	// Outcomes are grouped by file in first-seen order.
	var ids []string
	for _, d := range report.Details {
		ids = append(ids, d.FixID)
	}
	assert.Equal(t, []string{"img", "input", "css"}, ids)
}

func TestPatchService_OrderIndependentAcrossFiles(t *testing.T) {
	a := writeTree(t, patchTree)
	b := writeTree(t, patchTree)

	fixes := patchFixes()
	reversed := []domain.Fix{fixes[1], fixes[0], fixes[2]}

	svc := application.NewPatchService(nil, 4)
	_, err := svc.Apply(context.Background(), a, fixes)
	require.NoError(t, err)
	_, err = svc.Apply(context.Background(), b, reversed)
	require.NoError(t, err)

	assert.Equal(t, readTree(t, a, "index.html", "styles/main.css"), readTree(t, b, "index.html", "styles/main.css"))
}

func TestPatchService_Idempotent(t *testing.T) {
	root := writeTree(t, patchTree)
	svc := application.NewPatchService(nil, 2)

	_, err := svc.Apply(context.Background(), root, patchFixes())
	require.NoError(t, err)
	first := readTree(t, root, "index.html", "styles/main.css")

	report, err := svc.Apply(context.Background(), root, patchFixes())
	require.NoError(t, err)
	assert.Equal(t, first, readTree(t, root, "index.html", "styles/main.css"))
	assert.Equal(t, 3, report.SkippedPatches)
	assert.Zero(t, report.FilesWritten)
}

func TestPatchService_MissingAndUnsafePaths(t *testing.T) {
	root := writeTree(t, patchTree)
	fixes := []domain.Fix{
		{IssueID: "gone", FilePath: "missing.html", BeforeCode: "a", AfterCode: "b"},
		{IssueID: "escape", FilePath: "../outside.html", BeforeCode: "a", AfterCode: "b"},
		{IssueID: "abs", FilePath: "/etc/passwd", BeforeCode: "a", AfterCode: "b"},
	}

	report, err := application.NewPatchService(nil, 2).Apply(context.Background(), root, fixes)
	require.NoError(t, err)
	require.Len(t, report.Details, 3)
	assert.Equal(t, 3, report.FailedPatches)
	assert.Equal(t, domain.ReasonFileNotFound, report.Details[0].Reason)
	assert.Equal(t, domain.ReasonInvalidPath, report.Details[1].Reason)
	assert.Equal(t, domain.ReasonInvalidPath, report.Details[2].Reason)
}

func TestSafeJoin(t *testing.T) {
	root := t.TempDir()

	p, err := application.SafeJoin(root, "src/app.jsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "src", "app.jsx"), p)

	for _, bad := range []string{"", "../x", "a/../../x", "/abs", `a\b`} {
		_, err := application.SafeJoin(root, bad)
		assert.ErrorIs(t, err, domain.ErrUnsafePath, bad)
	}
}
