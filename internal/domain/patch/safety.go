package patch

import (
	"math"
	"regexp"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

var (
	scriptTagRe = regexp.MustCompile(`(?i)<script[^>]*>`)
	jsURLRe     = regexp.MustCompile(`(?i)javascript:`)
)

// ValidatePatchSafety flags risky before/after pairs. It is advisory and
// never blocks application.
func ValidatePatchSafety(before, after string) domain.SafetyReport {
	var issues []string

	if after == "" {
		issues = append(issues, "Patch removes all content")
	}
	if len(after) > len(before)*10 {
		issues = append(issues, "Patch significantly increases size")
	}
	if float64(countLines(after)) < float64(countLines(before))*0.5 {
		issues = append(issues, "Patch removes more than 50% of lines")
	}
	if scriptTagRe.MatchString(after) && !scriptTagRe.MatchString(before) {
		issues = append(issues, "Patch adds script tags")
	}
	if jsURLRe.MatchString(after) && !jsURLRe.MatchString(before) {
		issues = append(issues, "Patch adds javascript: URLs")
	}

	report := domain.SafetyReport{
		Safe:           len(issues) == 0,
		SafetyScore:    math.Max(0, 1-0.2*float64(len(issues))),
		Issues:         issues,
		Recommendation: domain.RecommendSafe,
	}
	if !report.Safe {
		report.Recommendation = domain.RecommendReview
	}
	return report
}

// countLines counts lines the way a trailing newline does not open a new one.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return len(strings.Split(strings.TrimSuffix(s, "\n"), "\n"))
}
