package domain

// WorkPlan is a read-only planning artifact derived from a defect set.
// It has no effect on execution.
type WorkPlan struct {
	TotalIssues           int              `json:"total_issues"`
	UnassignedIssues      int              `json:"unassigned_issues"`
	Strategy              string           `json:"strategy"`
	EstimatedTotalMinutes float64          `json:"estimated_total_minutes"`
	Assignments           []Assignment     `json:"assignments"`
	PriorityMatrix        []PriorityEntry  `json:"priority_matrix"`
	FileDependencies      FileDependencies `json:"file_dependencies"`
	Resources             ResourceEstimate `json:"resource_requirements"`
}

// Assignment is the planned work for one category.
type Assignment struct {
	Category         Category         `json:"category"`
	Agent            string           `json:"agent"`
	TotalIssues      int              `json:"total_issues"`
	IssuesBySeverity map[Severity]int `json:"issues_by_severity"`
	IssuesByFile     map[string]int   `json:"issues_by_file"`
	EstimatedMinutes float64          `json:"estimated_minutes"`
	ComplexityScore  float64          `json:"complexity_score"`
	DependsOn        []Category       `json:"depends_on"`
	Tasks            []Task           `json:"tasks"`
	SuccessCriteria  []string         `json:"success_criteria"`
	ValidationRules  []string         `json:"validation_rules"`
}

// Task is one planned defect fix.
type Task struct {
	IssueID          string   `json:"issue_id"`
	FilePath         string   `json:"file_path"`
	LineStart        int      `json:"line_start"`
	LineEnd          int      `json:"line_end"`
	Severity         Severity `json:"severity"`
	Description      string   `json:"description"`
	RuleID           string   `json:"rule_id,omitempty"`
	EstimatedMinutes float64  `json:"estimated_minutes"`
	RequiredSkills   []string `json:"required_skills"`
	ValidationChecks []string `json:"validation_checks"`
}

// PriorityEntry ranks one category by severity-weighted urgency.
type PriorityEntry struct {
	Category         Category `json:"category"`
	High             int      `json:"high"`
	Medium           int      `json:"medium"`
	Low              int      `json:"low"`
	PriorityScore    int      `json:"priority_score"`
	RecommendedOrder int      `json:"recommended_order"`
}

// FileDependencies records files touched by more than one category.
type FileDependencies struct {
	TotalFiles                  int      `json:"total_files"`
	FilesWithMultipleCategories []string `json:"files_with_multiple_categories"`
}

// ResourceEstimate sizes the run.
type ResourceEstimate struct {
	ConcurrentAgents int      `json:"concurrent_agents"`
	ValidationTools  []string `json:"validation_tools"`
	ComplexityLevel  string   `json:"complexity_level"`
}
