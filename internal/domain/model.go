package domain

import "strings"

// Category is one of the four POUR buckets defects are routed by.
type Category string

const (
	CategoryPerceivable    Category = "perceivable"
	CategoryOperable       Category = "operable"
	CategoryUnderstandable Category = "understandable"
	CategoryRobust         Category = "robust"
)

// Categories lists the POUR categories in dispatch and reporting order.
var Categories = []Category{
	CategoryPerceivable,
	CategoryOperable,
	CategoryUnderstandable,
	CategoryRobust,
}

// ParseCategory normalizes s and reports whether it names a known category.
// Unknown values are never coerced into a bucket.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return c, false
}

// Valid reports whether c is one of the four POUR categories.
func (c Category) Valid() bool {
	_, ok := ParseCategory(string(c))
	return ok
}

// Severity levels for defects.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Severities lists severities from most to least urgent.
var Severities = []Severity{SeverityHigh, SeverityMedium, SeverityLow}

// Rank orders severities for sorting: high=0, medium=1, low=2, unknown=3.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// Defect is a single detected accessibility problem. Defects are created by
// detection or by residual conversion and are never mutated afterwards.
type Defect struct {
	ID          string   `json:"id"`
	FilePath    string   `json:"file_path"`
	LineStart   int      `json:"line_start"`
	LineEnd     int      `json:"line_end"`
	Category    Category `json:"category"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	CodeSnippet string   `json:"code_snippet"`
	RuleID      string   `json:"rule_id,omitempty"`
}

type dedupKey struct {
	file   string
	line   int
	ruleID string
}

// DedupDefects collapses defects sharing (file_path, line_start, rule_id).
// The first occurrence wins and input order is otherwise preserved.
func DedupDefects(defects []Defect) []Defect {
	seen := make(map[dedupKey]bool, len(defects))
	out := make([]Defect, 0, len(defects))
	for _, d := range defects {
		k := dedupKey{file: d.FilePath, line: d.LineStart, ruleID: d.RuleID}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

// Fix is a proposed before/after transformation for exactly one Defect.
type Fix struct {
	IssueID     string  `json:"issue_id"`
	FilePath    string  `json:"file_path"`
	LineStart   int     `json:"line_start"`
	LineEnd     int     `json:"line_end"`
	BeforeCode  string  `json:"before_code"`
	AfterCode   string  `json:"after_code"`
	Diff        string  `json:"diff"`
	Confidence  float64 `json:"confidence"`
	Applied     bool    `json:"applied"`
	Method      string  `json:"method,omitempty"`
	Explanation string  `json:"explanation,omitempty"`
}
