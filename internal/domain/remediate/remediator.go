// Package remediate turns defects into fixes. Each POUR category owns a
// table of deterministic transforms keyed by rule id; defects with rules no
// transform recognizes go to a generic FixSuggester.
package remediate

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/patch"
)

// MethodGeneric marks fixes produced by the fallback suggester.
const MethodGeneric = "generic"

// Transform rewrites a snippet. It reports false when the snippet does not
// have the shape the rule expects.
type Transform func(code, filePath string) (string, bool)

// Rule is a deterministic transform with a fixed confidence.
type Rule struct {
	ID         string
	Confidence float64
	Transform  Transform
}

// Remediator fixes the defects of a single category.
type Remediator struct {
	category domain.Category
	rules    map[string]Rule
	fallback domain.FixSuggester
}

// New creates a Remediator for category with the given rules. fallback may
// be nil, in which case unrecognized rules produce no fix.
func New(category domain.Category, rules []Rule, fallback domain.FixSuggester) *Remediator {
	table := make(map[string]Rule, len(rules))
	for _, r := range rules {
		table[r.ID] = r
	}
	return &Remediator{category: category, rules: table, fallback: fallback}
}

// All returns the four category remediators in POUR order.
func All(fallback domain.FixSuggester) []*Remediator {
	return []*Remediator{
		NewPerceivable(fallback),
		NewOperable(fallback),
		NewUnderstandable(fallback),
		NewRobust(fallback),
	}
}

// Category implements domain.Remediator.
func (r *Remediator) Category() domain.Category { return r.category }

// Rules returns the recognized rule ids, sorted.
func (r *Remediator) Rules() []string {
	ids := make([]string, 0, len(r.rules))
	for id := range r.rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FixIssues implements domain.Remediator. Defects of other categories are
// ignored. A failed fallback call only loses that defect's fix.
func (r *Remediator) FixIssues(ctx context.Context, defects []domain.Defect) ([]domain.Fix, error) {
	var fixes []domain.Fix
	for _, d := range defects {
		if err := ctx.Err(); err != nil {
			return fixes, err
		}
		if d.Category != r.category {
			continue
		}

		if rule, ok := r.rules[d.RuleID]; ok {
			after, ok := rule.Transform(d.CodeSnippet, d.FilePath)
			if ok && after != d.CodeSnippet {
				fixes = append(fixes, newFix(d, d.CodeSnippet, after, rule.Confidence, rule.ID))
			}
			continue
		}

		if r.fallback == nil {
			continue
		}
		fix, err := r.suggest(ctx, d)
		if err != nil {
			slog.WarnContext(ctx, "generic remediation failed",
				"category", r.category, "issue_id", d.ID, "rule_id", d.RuleID, "error", err)
			continue
		}
		if fix != nil {
			fixes = append(fixes, *fix)
		}
	}
	return fixes, nil
}

func (r *Remediator) suggest(ctx context.Context, d domain.Defect) (*domain.Fix, error) {
	s, err := r.fallback.SuggestFix(ctx, r.category, d)
	if err != nil || s == nil {
		return nil, err
	}
	before := s.BeforeCode
	if strings.TrimSpace(before) == "" {
		before = d.CodeSnippet
	}
	if s.AfterCode == "" || s.AfterCode == before {
		return nil, nil
	}
	fix := newFix(d, before, s.AfterCode, clamp(s.Confidence), MethodGeneric)
	fix.Explanation = s.Explanation
	return &fix, nil
}

func newFix(d domain.Defect, before, after string, confidence float64, method string) domain.Fix {
	return domain.Fix{
		IssueID:    d.ID,
		FilePath:   d.FilePath,
		LineStart:  d.LineStart,
		LineEnd:    max(d.LineEnd, d.LineStart),
		BeforeCode: before,
		AfterCode:  after,
		Diff:       patch.UnifiedDiff(before, after, d.FilePath),
		Confidence: confidence,
		Method:     method,
	}
}

func clamp(v float64) float64 {
	return min(max(v, 0), 1)
}
