// Package plan derives an informational work plan from a defect set.
package plan

import (
	"sort"

	"github.com/abdidvp/pourfix/internal/domain"
)

// Strategy is the only execution strategy the coordinator uses.
const Strategy = "sequential_by_priority"

var severityMultiplier = map[domain.Severity]float64{
	domain.SeverityHigh:   2.0,
	domain.SeverityMedium: 1.0,
	domain.SeverityLow:    0.5,
}

var categoryWeight = map[domain.Category]int{
	domain.CategoryPerceivable:    1,
	domain.CategoryOperable:       2,
	domain.CategoryUnderstandable: 3,
	domain.CategoryRobust:         4,
}

var dependencies = map[domain.Category][]domain.Category{
	domain.CategoryPerceivable:    {},
	domain.CategoryOperable:       {domain.CategoryPerceivable},
	domain.CategoryUnderstandable: {domain.CategoryPerceivable, domain.CategoryOperable},
	domain.CategoryRobust:         {domain.CategoryPerceivable, domain.CategoryOperable, domain.CategoryUnderstandable},
}

var validationRules = map[domain.Category][]string{
	domain.CategoryPerceivable: {
		"images have non-empty alt text or are marked decorative",
		"text meets a 4.5:1 contrast ratio",
		"non-text content has a text alternative",
	},
	domain.CategoryOperable: {
		"interactive elements are reachable by keyboard",
		"focus is visible on every focusable element",
		"form controls have accessible names",
	},
	domain.CategoryUnderstandable: {
		"heading levels increase by at most one",
		"the document declares its language",
		"form errors are identified programmatically",
	},
	domain.CategoryRobust: {
		"ARIA roles and properties are valid",
		"markup parses without structural errors",
		"landmarks use semantic elements",
	},
}

var categorySkills = map[domain.Category][]string{
	domain.CategoryPerceivable:    {"alt-text", "color-contrast", "media-alternatives"},
	domain.CategoryOperable:       {"focus-management", "keyboard-navigation"},
	domain.CategoryUnderstandable: {"content-structure", "form-design"},
	domain.CategoryRobust:         {"aria", "semantic-html"},
}

// Generate builds a WorkPlan from defects. It is pure: the same input always
// yields the same plan. Defects with unknown categories are only counted.
func Generate(defects []domain.Defect) *domain.WorkPlan {
	byCategory := make(map[domain.Category][]domain.Defect)
	unassigned := 0
	for _, d := range defects {
		if !d.Category.Valid() {
			unassigned++
			continue
		}
		byCategory[d.Category] = append(byCategory[d.Category], d)
	}

	p := &domain.WorkPlan{
		TotalIssues:      len(defects),
		UnassignedIssues: unassigned,
		Strategy:         Strategy,
		Assignments:      []domain.Assignment{},
		PriorityMatrix:   []domain.PriorityEntry{},
	}

	for _, cat := range domain.Categories {
		group := byCategory[cat]
		if len(group) == 0 {
			continue
		}
		a := assign(cat, group)
		p.Assignments = append(p.Assignments, a)
		p.PriorityMatrix = append(p.PriorityMatrix, priority(cat, a.IssuesBySeverity))
		p.EstimatedTotalMinutes += a.EstimatedMinutes
	}

	p.FileDependencies = fileDependencies(byCategory)
	p.Resources = resources(len(defects), len(p.Assignments))
	return p
}

func assign(cat domain.Category, group []domain.Defect) domain.Assignment {
	a := domain.Assignment{
		Category:         cat,
		Agent:            string(cat) + "_agent",
		TotalIssues:      len(group),
		IssuesBySeverity: make(map[domain.Severity]int),
		IssuesByFile:     make(map[string]int),
		DependsOn:        append([]domain.Category{}, dependencies[cat]...),
		ValidationRules:  validationRules[cat],
		SuccessCriteria: []string{
			"all assigned issues have a proposed fix",
			"patched files pass validation",
			"no new accessibility issues are introduced",
		},
	}

	snippetLen := 0
	for _, d := range group {
		a.IssuesBySeverity[d.Severity]++
		a.IssuesByFile[d.FilePath]++
		snippetLen += len(d.CodeSnippet)
		a.EstimatedMinutes += 0.5 * multiplier(d.Severity) * lengthFactor(d.CodeSnippet)
		a.Tasks = append(a.Tasks, task(cat, d))
	}

	sort.SliceStable(a.Tasks, func(i, j int) bool {
		return a.Tasks[i].Severity.Rank() < a.Tasks[j].Severity.Rank()
	})

	n := float64(len(group))
	a.ComplexityScore = 0.4*min(float64(a.IssuesBySeverity[domain.SeverityHigh])/n, 1) +
		0.3*min(float64(len(a.IssuesByFile))/10, 1) +
		0.3*min(float64(snippetLen)/n/1000, 1)
	return a
}

func task(cat domain.Category, d domain.Defect) domain.Task {
	skills := append([]string{}, categorySkills[cat]...)
	if d.RuleID != "" {
		skills = append(skills, d.RuleID)
	}
	sort.Strings(skills)
	return domain.Task{
		IssueID:          d.ID,
		FilePath:         d.FilePath,
		LineStart:        d.LineStart,
		LineEnd:          d.LineEnd,
		Severity:         d.Severity,
		Description:      d.Description,
		RuleID:           d.RuleID,
		EstimatedMinutes: multiplier(d.Severity) * lengthFactor(d.CodeSnippet),
		RequiredSkills:   dedupSorted(skills),
		ValidationChecks: []string{
			"snippet is replaced in " + d.FilePath,
			"validators report no new issues for " + d.FilePath,
		},
	}
}

func priority(cat domain.Category, counts map[domain.Severity]int) domain.PriorityEntry {
	e := domain.PriorityEntry{
		Category: cat,
		High:     counts[domain.SeverityHigh],
		Medium:   counts[domain.SeverityMedium],
		Low:      counts[domain.SeverityLow],
	}
	e.PriorityScore = e.High*3 + e.Medium*2 + e.Low
	e.RecommendedOrder = e.PriorityScore * categoryWeight[cat]
	return e
}

func fileDependencies(byCategory map[domain.Category][]domain.Defect) domain.FileDependencies {
	cats := make(map[string]map[domain.Category]bool)
	for cat, group := range byCategory {
		for _, d := range group {
			if cats[d.FilePath] == nil {
				cats[d.FilePath] = make(map[domain.Category]bool)
			}
			cats[d.FilePath][cat] = true
		}
	}
	deps := domain.FileDependencies{TotalFiles: len(cats), FilesWithMultipleCategories: []string{}}
	for file, set := range cats {
		if len(set) > 1 {
			deps.FilesWithMultipleCategories = append(deps.FilesWithMultipleCategories, file)
		}
	}
	sort.Strings(deps.FilesWithMultipleCategories)
	return deps
}

func resources(total, agents int) domain.ResourceEstimate {
	r := domain.ResourceEstimate{
		ConcurrentAgents: agents,
		ValidationTools:  append([]string{}, domain.ValidValidators...),
	}
	switch {
	case total == 0:
		r.ComplexityLevel = "None"
	case total < 10:
		r.ComplexityLevel = "Low"
	case total < 50:
		r.ComplexityLevel = "Medium"
	default:
		r.ComplexityLevel = "High"
	}
	return r
}

func multiplier(s domain.Severity) float64 {
	if m, ok := severityMultiplier[s]; ok {
		return m
	}
	return 1.0
}

// lengthFactor adds 50% for snippets over 500 characters and 20% over 200.
func lengthFactor(snippet string) float64 {
	switch n := len(snippet); {
	case n > 500:
		return 1.5
	case n > 200:
		return 1.2
	}
	return 1.0
}

func dedupSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}
