package tui

import (
	"fmt"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// RenderWorkPlan formats a work plan with its per-category tasks.
func RenderWorkPlan(p *domain.WorkPlan) string {
	var b strings.Builder

	header := titleStyle.Render("Work Plan") + "  " +
		dimStyle.Render(fmt.Sprintf("%d issues · ~%.1f min · %s complexity",
			p.TotalIssues, p.EstimatedTotalMinutes, p.Resources.ComplexityLevel))
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n")

	if len(p.Assignments) == 0 {
		b.WriteString("\n  " + passStyle.Render("Nothing to fix.") + "\n")
		return b.String()
	}

	for _, a := range p.Assignments {
		b.WriteString("\n")
		deps := ""
		if len(a.DependsOn) > 0 {
			names := make([]string, len(a.DependsOn))
			for i, d := range a.DependsOn {
				names[i] = string(d)
			}
			deps = faintStyle.Render("after " + strings.Join(names, ", "))
		}
		fmt.Fprintf(&b, "  %s %s  %s\n",
			sectionStyle.Render(padRight(string(a.Category), 16)),
			dimStyle.Render(fmt.Sprintf("%d issues · ~%.1f min · complexity %.2f", a.TotalIssues, a.EstimatedMinutes, a.ComplexityScore)),
			deps)
		for _, t := range a.Tasks {
			fmt.Fprintf(&b, "    %s %s  %s\n", severityTag(t.Severity),
				fileStyle.Render(fmt.Sprintf("%s:%d", t.FilePath, t.LineStart)),
				dimStyle.Render(t.Description))
		}
	}

	if len(p.PriorityMatrix) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Priority") + "\n")
		for _, e := range p.PriorityMatrix {
			fmt.Fprintf(&b, "    %s %s\n", catNameStyle.Render(padRight(string(e.Category), 16)),
				dimStyle.Render(fmt.Sprintf("score %d  order %d  (%dH %dM %dL)",
					e.PriorityScore, e.RecommendedOrder, e.High, e.Medium, e.Low)))
		}
	}

	if n := len(p.FileDependencies.FilesWithMultipleCategories); n > 0 {
		b.WriteString("\n  " + hintStyle.Render(fmt.Sprintf("%d files are touched by more than one category.", n)) + "\n")
	}
	if p.UnassignedIssues > 0 {
		b.WriteString("  " + warnStyle.Render(fmt.Sprintf("%d issues have no category and were not assigned.", p.UnassignedIssues)) + "\n")
	}
	return b.String()
}
