// Package classify maps free-text diagnostics to categories, severities,
// rule ids and report buckets using ordered keyword tables.
package classify

import (
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

// Row maps any of its keywords to a bucket. Rows are tried in order.
type Row[T any] struct {
	Keywords []string
	Bucket   T
}

// Table is an ordered keyword table with a fallback bucket.
type Table[T any] struct {
	Rows    []Row[T]
	Default T
}

// Match returns the bucket of the first row with a keyword contained in
// text, compared case-insensitively.
func (t Table[T]) Match(text string) T {
	lower := strings.ToLower(text)
	for _, row := range t.Rows {
		for _, kw := range row.Keywords {
			if strings.Contains(lower, kw) {
				return row.Bucket
			}
		}
	}
	return t.Default
}

// Report buckets for validation issues.
const (
	TypeImage    = "image"
	TypeAria     = "aria"
	TypeKeyboard = "keyboard"
	TypeContrast = "contrast"
	TypeHeading  = "heading"
	TypeForm     = "form"
	TypeLink     = "link"
	TypeSyntax   = "syntax"
	TypeOther    = "other"
)

// UnknownRule is the rule id assigned when no keyword matches.
const UnknownRule = "unknown"

// Classifier bundles the tables used by residual conversion and validation
// reporting. Swap a table to change a heuristic without touching callers.
type Classifier struct {
	Category       Table[domain.Category]
	Severity       Table[domain.Severity]
	RuleID         Table[string]
	IssueType      Table[string]
	ReportSeverity Table[domain.Severity]
}

// Default returns the built-in tables.
func Default() *Classifier {
	return &Classifier{
		Category: Table[domain.Category]{
			Rows: []Row[domain.Category]{
				{Keywords: []string{"alt", "color", "contrast", "text", "image", "visual"}, Bucket: domain.CategoryPerceivable},
				{Keywords: []string{"keyboard", "focus", "click", "button", "input", "aria-label", "tabindex"}, Bucket: domain.CategoryOperable},
				{Keywords: []string{"heading", "form", "label", "instruction", "error", "language"}, Bucket: domain.CategoryUnderstandable},
				{Keywords: []string{"role", "aria-", "semantic", "html", "valid"}, Bucket: domain.CategoryRobust},
			},
			Default: domain.CategoryOperable,
		},
		Severity: Table[domain.Severity]{
			Rows: []Row[domain.Severity]{
				{Keywords: []string{"error", "required", "missing", "invalid"}, Bucket: domain.SeverityHigh},
				{Keywords: []string{"warning", "suggest", "recommend"}, Bucket: domain.SeverityMedium},
			},
			Default: domain.SeverityLow,
		},
		RuleID: Table[string]{
			Rows: []Row[string]{
				{Keywords: []string{"alt"}, Bucket: "img-alt"},
				{Keywords: []string{"aria-label"}, Bucket: "aria-label"},
				{Keywords: []string{"heading"}, Bucket: "heading-order"},
				{Keywords: []string{"color"}, Bucket: "color-contrast"},
				{Keywords: []string{"focus"}, Bucket: "focus-visible"},
				{Keywords: []string{"role"}, Bucket: "role"},
			},
			Default: UnknownRule,
		},
		IssueType: Table[string]{
			Rows: []Row[string]{
				{Keywords: []string{"alt", "image", "img"}, Bucket: TypeImage},
				{Keywords: []string{"aria", "role"}, Bucket: TypeAria},
				{Keywords: []string{"keyboard", "focus", "tab"}, Bucket: TypeKeyboard},
				{Keywords: []string{"color", "contrast"}, Bucket: TypeContrast},
				{Keywords: []string{"heading", "h1", "h2", "h3"}, Bucket: TypeHeading},
				{Keywords: []string{"form", "input", "label"}, Bucket: TypeForm},
				{Keywords: []string{"link", "anchor"}, Bucket: TypeLink},
				{Keywords: []string{"syntax", "parse", "unclosed", "unexpected"}, Bucket: TypeSyntax},
			},
			Default: TypeOther,
		},
		ReportSeverity: Table[domain.Severity]{
			Rows: []Row[domain.Severity]{
				{Keywords: []string{"critical", "error", "missing alt", "no label", "keyboard trap", "color contrast", "focus management"}, Bucket: domain.SeverityHigh},
				{Keywords: []string{"warning", "aria", "semantic", "heading", "form"}, Bucket: domain.SeverityMedium},
			},
			Default: domain.SeverityLow,
		},
	}
}

// CategoryOf infers the POUR category of a diagnostic.
func (c *Classifier) CategoryOf(msg string) domain.Category { return c.Category.Match(msg) }

// SeverityOf infers a defect severity from a diagnostic.
func (c *Classifier) SeverityOf(msg string) domain.Severity { return c.Severity.Match(msg) }

// RuleIDOf infers the rule id a remediator should key on.
func (c *Classifier) RuleIDOf(msg string) string { return c.RuleID.Match(msg) }

// IssueTypeOf buckets a validation message for reporting.
func (c *Classifier) IssueTypeOf(msg string) string { return c.IssueType.Match(msg) }

// ReportSeverityOf rates a validation message for reporting.
func (c *Classifier) ReportSeverityOf(msg string) domain.Severity {
	return c.ReportSeverity.Match(msg)
}
