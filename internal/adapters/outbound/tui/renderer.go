// Package tui renders pipeline results for the terminal.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/pourfix/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	lime      = lipgloss.Color("#A3E635")
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	catNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderRunReport formats a completed run.
func RenderRunReport(r *domain.RunReport) string {
	var b strings.Builder
	s := r.Summary

	// ── Header ──
	pct := int(s.ComplianceScore*100 + 0.5)
	title := headerStyle.Render("pourfix")
	subtitle := dimStyle.Render("Accessibility Remediation")
	scoreLine := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(pct)).
		Render(fmt.Sprintf("%d%% compliant", pct))
	status := passStyle.Render("validation passed")
	if !s.ValidationPassed {
		status = failStyle.Render(fmt.Sprintf("%d issues remaining", s.RemainingIssues))
	}
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreLine + "  " + status))
	b.WriteString("\n\n")

	// ── Totals ──
	fmt.Fprintf(&b, "  %s %s   %s %s   %s %s   %s %s\n",
		dimStyle.Render("issues"), titleStyle.Render(fmt.Sprint(s.TotalIssues)),
		dimStyle.Render("fixes"), titleStyle.Render(fmt.Sprint(s.TotalFixes)),
		dimStyle.Render("applied"), passStyle.Render(fmt.Sprint(s.AppliedFixes)),
		dimStyle.Render("fuzzy"), warnStyle.Render(fmt.Sprint(s.FuzzyMatches)),
	)
	if s.FailedPatches > 0 || s.DroppedDefects > 0 {
		fmt.Fprintf(&b, "  %s %s   %s %s\n",
			dimStyle.Render("failed"), failStyle.Render(fmt.Sprint(s.FailedPatches)),
			dimStyle.Render("dropped"), skipStyle.Render(fmt.Sprint(s.DroppedDefects)),
		)
	}
	b.WriteString("\n")

	// ── Categories ──
	for _, c := range s.Categories {
		rate := int(c.SuccessRate*100 + 0.5)
		name := catNameStyle.Render(padRight(string(c.Category), 16))
		fmt.Fprintf(&b, "  %s %s  %s  %s\n", name, coloredBar(rate, 20),
			lipgloss.NewStyle().Bold(true).Foreground(scoreColor(rate)).Render(fmt.Sprintf("%3d%%", rate)),
			dimStyle.Render(fmt.Sprintf("%d/%d applied", c.Applied, c.Issues)))
	}

	if s.Residual != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "  %s  %s\n", sectionStyle.Render("Residual round"),
			dimStyle.Render(fmt.Sprintf("%d residual issues, %d rerouted, %d applied, remaining %d → %d",
				s.Residual.ResidualIssues, s.Residual.ReroutedFixes, s.Residual.SuccessfulReroutes,
				s.Residual.RemainingBefore, s.Residual.RemainingAfter)))
	}

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n\n")

	final := r.Validation
	if r.Residual != nil && r.Residual.Validation != nil {
		final = r.Residual.Validation
	}
	if final != nil {
		renderFailing(&b, final)
	}
	b.WriteString("\n")
	return b.String()
}

func renderFailing(b *strings.Builder, v *domain.ValidationReport) {
	failing := v.FailingResults()
	if len(failing) == 0 {
		b.WriteString("  " + passStyle.Render("No remaining issues.") + "\n")
		return
	}

	errCount, warnCount := 0, 0
	for _, r := range failing {
		errCount += len(r.Errors)
		warnCount += len(r.Warnings)
	}
	b.WriteString("  " + titleStyle.Render("Remaining") + "  ")
	if errCount > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errCount)) + "  ")
	}
	if warnCount > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warnCount)))
	}
	b.WriteString("\n\n")

	for _, r := range failing {
		fmt.Fprintf(b, "    %s %s\n", fileStyle.Render(r.FilePath), faintStyle.Render(r.Validator))
		for _, e := range r.Errors {
			fmt.Fprintf(b, "      %s %s\n", errorTagStyle.Render("error"), dimStyle.Render(e))
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(b, "      %s %s\n", warnTagStyle.Render("warn "), dimStyle.Render(w))
		}
	}
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return errorTagStyle.Render("high  ")
	case domain.SeverityMedium:
		return warnTagStyle.Render("medium")
	default:
		return infoTagStyle.Render("low   ")
	}
}

func coloredBar(pct, width int) string {
	filled := max(0, min(pct*width/100, width))
	empty := width - filled

	color := scoreColor(pct)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(pct int) lipgloss.Color {
	switch {
	case pct >= 80:
		return success
	case pct >= 60:
		return lime
	case pct >= 40:
		return warning
	default:
		return danger
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats recorded runs, oldest first.
func RenderHistory(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		date := e.Timestamp
		if len(date) > 10 {
			date = date[:10]
		}

		pct := int(e.ComplianceScore*100 + 0.5)
		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(date),
			faintStyle.Render(hash),
			lipgloss.NewStyle().Foreground(scoreColor(pct)).Render(fmt.Sprintf("%3d%%", pct)),
			dimStyle.Render(fmt.Sprintf("%d issues, %d fixed, %d remaining", e.TotalIssues, e.AppliedFixes, e.RemainingIssues)),
		)
		if i > 0 {
			diff := e.RemainingIssues - entries[i-1].RemainingIssues
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
