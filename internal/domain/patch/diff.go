package patch

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/abdidvp/pourfix/internal/domain"
)

// UnifiedDiff renders a three-line-context unified diff of before and after
// labelled with path. Identical inputs produce an empty string.
func UnifiedDiff(before, after, path string) string {
	if before == after {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

// InlineChange is one inserted or removed span in an inline diff.
type InlineChange struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// InlineDiff returns the character-level insertions and deletions turning
// before into after, cleaned up to semantic boundaries.
func InlineDiff(before, after string) []InlineChange {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(before, after, false))

	var changes []InlineChange
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			changes = append(changes, InlineChange{Type: "added", Text: d.Text})
		case diffmatchpatch.DiffDelete:
			changes = append(changes, InlineChange{Type: "removed", Text: d.Text})
		}
	}
	return changes
}

// Complexity describes how invasive a patch is.
type Complexity struct {
	BeforeLines  int     `json:"before_lines"`
	AfterLines   int     `json:"after_lines"`
	AddedLines   int     `json:"added_lines"`
	RemovedLines int     `json:"removed_lines"`
	Similarity   float64 `json:"similarity"`
	Score        float64 `json:"complexity_score"`
	Level        string  `json:"level"`
}

// Metadata bundles every view of a single fix.
type Metadata struct {
	IssueID     string              `json:"issue_id"`
	FilePath    string              `json:"file_path"`
	Confidence  float64             `json:"confidence"`
	Applied     bool                `json:"applied"`
	UnifiedDiff string              `json:"unified_diff"`
	Inline      []InlineChange      `json:"inline_changes"`
	Complexity  Complexity          `json:"complexity"`
	Safety      domain.SafetyReport `json:"safety"`
}

// Analyze produces diff, complexity and safety metadata for fix.
func Analyze(fix domain.Fix) Metadata {
	unified := UnifiedDiff(fix.BeforeCode, fix.AfterCode, fix.FilePath)
	return Metadata{
		IssueID:     fix.IssueID,
		FilePath:    fix.FilePath,
		Confidence:  fix.Confidence,
		Applied:     fix.Applied,
		UnifiedDiff: unified,
		Inline:      InlineDiff(fix.BeforeCode, fix.AfterCode),
		Complexity:  measure(fix.BeforeCode, fix.AfterCode, unified),
		Safety:      ValidatePatchSafety(fix.BeforeCode, fix.AfterCode),
	}
}

func measure(before, after, unified string) Complexity {
	c := Complexity{
		BeforeLines: countLines(before),
		AfterLines:  countLines(after),
		Similarity:  Ratio(before, after),
	}
	for _, line := range strings.Split(unified, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			c.AddedLines++
		case strings.HasPrefix(line, "-"):
			c.RemovedLines++
		}
	}
	c.Score = float64(c.AddedLines+c.RemovedLines) / float64(max(c.BeforeLines, 1))
	switch {
	case c.Score < 0.1:
		c.Level = "simple"
	case c.Score < 0.3:
		c.Level = "moderate"
	default:
		c.Level = "complex"
	}
	return c
}
