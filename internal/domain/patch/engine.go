// Package patch applies proposed fixes to file content using a cascade of
// increasingly lenient matching strategies.
package patch

import (
	"sort"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

const (
	DefaultChunkSize = 500
	DefaultChunkStep = 250
	DefaultThreshold = 0.6
)

// SimilarityFunc scores two strings in [0,1].
type SimilarityFunc func(a, b string) float64

// Engine applies fixes to the content of a single file. It holds no state
// between calls; the same inputs always produce the same output.
type Engine struct {
	ChunkSize  int
	ChunkStep  int
	Threshold  float64
	Similarity SimilarityFunc
}

// NewEngine returns an Engine with the default fuzzy parameters.
func NewEngine() *Engine {
	return &Engine{
		ChunkSize:  DefaultChunkSize,
		ChunkStep:  DefaultChunkStep,
		Threshold:  DefaultThreshold,
		Similarity: Ratio,
	}
}

// ApplyFixes applies fixes to content in descending line_start order and
// returns the new content plus one outcome per fix, index-aligned with fixes.
// Applied is set on fixes that matched exactly, line-aware or by rebasing
// onto a line an earlier fix in the same call already rewrote.
func (e *Engine) ApplyFixes(content string, fixes []domain.Fix) (string, []domain.PatchOutcome) {
	order := make([]int, len(fixes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return fixes[order[a]].LineStart > fixes[order[b]].LineStart
	})

	outcomes := make([]domain.PatchOutcome, len(fixes))
	touched := make(map[int]bool)
	for _, idx := range order {
		fix := &fixes[idx]
		var out domain.PatchOutcome
		content, out = e.apply(content, fix, touched[fix.LineStart])
		if out.Status == domain.PatchSuccess {
			touched[fix.LineStart] = true
		}
		outcomes[idx] = out
	}
	return content, outcomes
}

func (e *Engine) apply(content string, fix *domain.Fix, lineTouched bool) (string, domain.PatchOutcome) {
	out := domain.PatchOutcome{FixID: fix.IssueID, FilePath: fix.FilePath}

	if fix.BeforeCode == "" {
		out.Status = domain.PatchFailed
		out.Reason = domain.ReasonEmptyBeforeCode
		return content, out
	}

	// An after text that extends its before text would match again.
	if strings.Contains(fix.AfterCode, fix.BeforeCode) && afterInPlace(content, fix) {
		out.Status = domain.PatchSkipped
		out.Method = domain.MethodAlreadyApplied
		return content, out
	}

	// 1. Exact substring, first occurrence unless one starts on the fix's
	// own lines.
	if i := exactIndex(content, fix); i >= 0 {
		fix.Applied = true
		out.Status = domain.PatchSuccess
		out.Method = domain.MethodExactReplacement
		return content[:i] + fix.AfterCode + content[i+len(fix.BeforeCode):], out
	}

	// 2. Line range with whitespace-insensitive comparison.
	if next, ok := replaceLineRange(content, fix); ok {
		fix.Applied = true
		out.Status = domain.PatchSuccess
		out.Method = domain.MethodLineAware
		return next, out
	}

	// The replacement is already in place; fuzzy matching would rewrite
	// fixed text.
	if (fix.AfterCode != "" && strings.Contains(content, fix.AfterCode)) || editOnLines(content, fix) {
		out.Status = domain.PatchSkipped
		out.Method = domain.MethodAlreadyApplied
		return content, out
	}

	// Another fix on this line already rewrote it; replay this fix's edit
	// on top of that one.
	if lineTouched {
		if next, ok := rebaseLineRange(content, fix); ok {
			fix.Applied = true
			out.Status = domain.PatchSuccess
			out.Method = domain.MethodLineRebase
			return next, out
		}
	}

	// 3. Best overlapping chunk above the similarity threshold.
	if next, ratio, ok := e.replaceBestChunk(content, fix); ok {
		out.Status = domain.PatchFuzzySuccess
		out.Method = domain.MethodFuzzyMatching
		out.Confidence = ratio
		return next, out
	}

	out.Status = domain.PatchFailed
	out.Reason = domain.ReasonNoMatchFound
	return content, out
}

// lineRange returns the 0-indexed bounds of the fix's lines in lines.
func lineRange(lines []string, fix *domain.Fix) (int, int, bool) {
	start := fix.LineStart - 1
	end := fix.LineEnd - 1
	if end < start {
		end = start
	}
	if start < 0 || end >= len(lines) {
		return 0, 0, false
	}
	return start, end, true
}

func replaceLineRange(content string, fix *domain.Fix) (string, bool) {
	lines := strings.Split(content, "\n")
	start, end, ok := lineRange(lines, fix)
	if !ok {
		return "", false
	}

	target := strings.Join(lines[start:end+1], "\n")
	if strings.TrimSpace(target) != strings.TrimSpace(fix.BeforeCode) {
		return "", false
	}

	after := strings.Split(fix.AfterCode, "\n")
	if indent := leadingSpace(lines[start]); indent != "" && leadingSpace(after[0]) == "" {
		after[0] = indent + after[0]
	}
	return splice(lines, start, end, after), true
}

func splice(lines []string, start, end int, with []string) string {
	spliced := make([]string, 0, len(lines)-(end-start+1)+len(with))
	spliced = append(spliced, lines[:start]...)
	spliced = append(spliced, with...)
	spliced = append(spliced, lines[end+1:]...)
	return strings.Join(spliced, "\n")
}

func (e *Engine) replaceBestChunk(content string, fix *domain.Fix) (string, float64, bool) {
	lines := strings.Split(content, "\n")
	size, step := e.ChunkSize, e.ChunkStep
	if size <= 0 {
		size = DefaultChunkSize
	}
	if step <= 0 {
		step = DefaultChunkStep
	}
	similarity := e.Similarity
	if similarity == nil {
		similarity = Ratio
	}

	best, bestEnd := -1, 0
	bestRatio := e.Threshold
	for start := 0; start < len(lines); start += step {
		end := min(start+size, len(lines))
		ratio := similarity(fix.BeforeCode, strings.Join(lines[start:end], "\n"))
		// Strictly greater: the threshold is exclusive and ties keep the
		// earliest chunk.
		if ratio > bestRatio {
			best, bestEnd, bestRatio = start, end, ratio
		}
	}
	if best < 0 {
		return "", 0, false
	}

	spliced := make([]string, 0, len(lines))
	spliced = append(spliced, lines[:best]...)
	spliced = append(spliced, strings.Split(fix.AfterCode, "\n")...)
	spliced = append(spliced, lines[bestEnd:]...)
	return strings.Join(spliced, "\n"), bestRatio, true
}

func leadingSpace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
