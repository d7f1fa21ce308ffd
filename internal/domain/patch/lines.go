package patch

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/abdidvp/pourfix/internal/domain"
)

// exactIndex returns the offset of the fix's before text in content. An
// occurrence starting on the fix's own lines wins over the first one, so
// repeated snippets such as two identical CSS declarations each get their
// own fix.
func exactIndex(content string, fix *domain.Fix) int {
	first := strings.Index(content, fix.BeforeCode)
	if first < 0 {
		return -1
	}
	lo, hi, ok := lineSpan(content, fix.LineStart, fix.LineEnd)
	if !ok || (first >= lo && first < hi) {
		return first
	}
	if i := strings.Index(content[lo:], fix.BeforeCode); i >= 0 && lo+i < hi {
		return lo + i
	}
	return first
}

// lineSpan returns the byte offsets covering 1-indexed lines from through to.
// A range running past the last line is clamped to the end of content.
func lineSpan(content string, from, to int) (int, int, bool) {
	if from < 1 {
		return 0, 0, false
	}
	if to < from {
		to = from
	}
	lo, hi, line := -1, len(content), 1
	if from == 1 {
		lo = 0
	}
	for i := 0; i < len(content); i++ {
		if content[i] != '\n' {
			continue
		}
		if line == to {
			hi = i
			break
		}
		line++
		if line == from {
			lo = i + 1
		}
	}
	if lo < 0 {
		return 0, 0, false
	}
	return lo, hi, true
}

// fixWindow returns the fix's lines of content, widened to the number of
// lines its after text spans.
func fixWindow(content string, fix *domain.Fix) (string, bool) {
	span := max(fix.LineEnd-fix.LineStart, strings.Count(fix.AfterCode, "\n"))
	lo, hi, ok := lineSpan(content, fix.LineStart, fix.LineStart+span)
	if !ok {
		return "", false
	}
	return content[lo:hi], true
}

// afterInPlace reports whether the fix's after text already sits on its
// lines. Fixes without a usable line range fall back to the whole content.
func afterInPlace(content string, fix *domain.Fix) bool {
	if w, ok := fixWindow(content, fix); ok {
		return strings.Contains(w, fix.AfterCode)
	}
	return strings.Contains(content, fix.AfterCode)
}

// editOnLines reports whether an insert-only fix has every one of its
// insertions present on its lines already.
func editOnLines(content string, fix *domain.Fix) bool {
	w, ok := fixWindow(content, fix)
	if !ok {
		return false
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(fix.BeforeCode, fix.AfterCode, false))

	inserted := false
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			return false
		case diffmatchpatch.DiffInsert:
			if !strings.Contains(w, d.Text) {
				return false
			}
			inserted = true
		}
	}
	return inserted
}

// rebaseLineRange replays the before to after edit on the fix's current
// lines. Every hunk must apply.
func rebaseLineRange(content string, fix *domain.Fix) (string, bool) {
	lines := strings.Split(content, "\n")
	start, end, ok := lineRange(lines, fix)
	if !ok {
		return "", false
	}
	target := strings.Join(lines[start:end+1], "\n")

	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(fix.BeforeCode, fix.AfterCode)
	if len(patches) == 0 {
		return "", false
	}
	rebased, applied := dmp.PatchApply(patches, target)
	for _, ok := range applied {
		if !ok {
			return "", false
		}
	}
	if rebased == target {
		return "", false
	}
	return splice(lines, start, end, strings.Split(rebased, "\n")), true
}
