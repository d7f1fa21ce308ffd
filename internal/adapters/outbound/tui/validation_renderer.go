package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// RenderValidation formats a validation report.
func RenderValidation(v *domain.ValidationReport) string {
	var b strings.Builder
	s := v.Summary
	pct := int(s.ComplianceScore*100 + 0.5)

	verdict := passStyle.Render("passed")
	if !v.Passed {
		verdict = failStyle.Render(fmt.Sprintf("%d issues", v.RemainingIssues))
	}
	b.WriteString(boxStyle.Render(titleStyle.Render("Validation") + "  " + verdict + "\n" +
		dimStyle.Render(fmt.Sprintf("%d files checked · %d with issues · %d%% compliant",
			s.TotalFilesChecked, s.FilesWithIssues, pct))))
	b.WriteString("\n")

	if len(s.ToolsUsed) > 0 {
		b.WriteString("\n  " + dimStyle.Render("checkers: "+strings.Join(s.ToolsUsed, ", ")) + "\n")
	}
	if len(s.IssuesByType) > 0 {
		types := make([]string, 0, len(s.IssuesByType))
		for k := range s.IssuesByType {
			types = append(types, k)
		}
		sort.Strings(types)
		parts := make([]string, len(types))
		for i, k := range types {
			parts[i] = fmt.Sprintf("%s %d", k, s.IssuesByType[k])
		}
		b.WriteString("  " + dimStyle.Render("by type: "+strings.Join(parts, " · ")) + "\n")
	}
	b.WriteString("\n")
	renderFailing(&b, v)
	return b.String()
}

// RenderApplyReport formats patch outcomes.
func RenderApplyReport(r *domain.ApplyReport, dryRun bool) string {
	var b strings.Builder
	title := "Patch"
	if dryRun {
		title = "Patch (dry run)"
	}
	fmt.Fprintf(&b, "\n  %s  %s  %s  %s  %s\n\n", titleStyle.Render(title),
		passStyle.Render(fmt.Sprintf("%d applied", r.SuccessfulPatches)),
		warnStyle.Render(fmt.Sprintf("%d fuzzy", r.FuzzyMatches)),
		failStyle.Render(fmt.Sprintf("%d failed", r.FailedPatches)),
		skipStyle.Render(fmt.Sprintf("%d skipped", r.SkippedPatches)))

	for _, d := range r.Details {
		var icon string
		switch d.Status {
		case domain.PatchSuccess:
			icon = passStyle.Render("●")
		case domain.PatchFuzzySuccess:
			icon = warnStyle.Render("●")
		case domain.PatchFailed:
			icon = failStyle.Render("●")
		default:
			icon = skipStyle.Render("○")
		}
		detail := d.Method
		if d.Reason != "" {
			detail = d.Reason
		}
		if d.Status == domain.PatchFuzzySuccess {
			detail += fmt.Sprintf(" %.2f", d.Confidence)
		}
		fmt.Fprintf(&b, "    %s %s %s  %s\n", icon, padRight(d.FixID, 28),
			fileStyle.Render(d.FilePath), faintStyle.Render(detail))
	}
	return b.String()
}
