package residual_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/classify"
	"github.com/abdidvp/pourfix/internal/domain/residual"
)

func numbered(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("l%d", i+1)
	}
	return strings.Join(lines, "\n")
}

func reader(files map[string]string) residual.ReadFunc {
	return func(p string) (string, error) {
		content, ok := files[p]
		if !ok {
			return "", errors.New("missing")
		}
		return content, nil
	}
}

func TestConvert_BuildsDefectFromError(t *testing.T) {
	conv := residual.NewConverter(classify.Default(), reader(map[string]string{
		"pages/index.html": numbered(20),
	}))

	defects := conv.Convert([]domain.ValidationResult{{
		FilePath: "pages/index.html",
		Passed:   false,
		Errors:   []string{"Line 10: Images missing alt attributes"},
	}})

	require.Len(t, defects, 1)
	d := defects[0]
	assert.Equal(t, "residual_pages/index.html_10_img-alt", d.ID)
	assert.Equal(t, 10, d.LineStart)
	assert.Equal(t, 10, d.LineEnd)
	assert.Equal(t, domain.CategoryPerceivable, d.Category)
	assert.Equal(t, domain.SeverityHigh, d.Severity)
	assert.Equal(t, "img-alt", d.RuleID)
	assert.Equal(t, "Residual issue: Line 10: Images missing alt attributes", d.Description)
	assert.Equal(t, "l7\nl8\nl9\nl10\nl11\nl12\nl13", d.CodeSnippet)
}

func TestConvert_SkipsPassingSystemAndWarnings(t *testing.T) {
	conv := residual.NewConverter(nil, reader(map[string]string{"a.css": "a {"}))

	defects := conv.Convert([]domain.ValidationResult{
		{FilePath: "ok.html", Passed: true},
		{FilePath: domain.SystemFilePath, Passed: false, Errors: []string{"eslint validation failed: boom"}},
		{FilePath: "a.css", Passed: false, Warnings: []string{"Potential contrast issue at line 1"}},
	})

	assert.Empty(t, defects)
}

func TestConvert_DefaultsToLineOneAndDedups(t *testing.T) {
	conv := residual.NewConverter(nil, reader(map[string]string{"a.html": "<html>\n<body>"}))

	defects := conv.Convert([]domain.ValidationResult{
		{FilePath: "a.html", Errors: []string{"Missing <head> section", "Missing <head> section"}},
		{FilePath: "a.html", Errors: []string{"Missing <head> section"}},
	})

	require.Len(t, defects, 1)
	assert.Equal(t, 1, defects[0].LineStart)
	assert.Equal(t, "<html>\n<body>", defects[0].CodeSnippet)
	assert.Equal(t, "residual_a.html_1_unknown", defects[0].ID)
}

func TestConvert_UnreadableFileKeepsDefect(t *testing.T) {
	conv := residual.NewConverter(nil, reader(nil))

	defects := conv.Convert([]domain.ValidationResult{
		{FilePath: "gone.html", Errors: []string{"Line 2: Invalid role value"}},
	})

	require.Len(t, defects, 1)
	assert.Empty(t, defects[0].CodeSnippet)
	assert.Equal(t, domain.CategoryRobust, defects[0].Category)
}

func TestLineOf(t *testing.T) {
	assert.Equal(t, 12, residual.LineOf("Line 12: x"))
	assert.Equal(t, 4, residual.LineOf("Unclosed CSS rule at line 4"))
	assert.Equal(t, 1, residual.LineOf("no number here"))
	assert.Equal(t, 1, residual.LineOf("Line 0: zero"))
}

func TestSnippet_ClampsAtEdges(t *testing.T) {
	lines := strings.Split(numbered(5), "\n")

	assert.Equal(t, "l1\nl2\nl3\nl4", residual.Snippet(lines, 1))
	assert.Equal(t, "l2\nl3\nl4\nl5", residual.Snippet(lines, 5))
	assert.Empty(t, residual.Snippet(nil, 3))
}
