package domain

import "time"

// CategoryStats summarizes one POUR category across a run.
type CategoryStats struct {
	Category    Category `json:"category"`
	Issues      int      `json:"issues"`
	Fixes       int      `json:"fixes"`
	Applied     int      `json:"applied"`
	SuccessRate float64  `json:"success_rate"`
}

// ResidualStats describes the single residual round, when one ran.
type ResidualStats struct {
	ResidualIssues     int            `json:"residual_issues"`
	ReroutedFixes      int            `json:"rerouted_fixes"`
	SuccessfulReroutes int            `json:"successful_reroutes"`
	FailedReroutes     int            `json:"failed_reroutes"`
	RemainingBefore    int            `json:"remaining_before"`
	RemainingAfter     int            `json:"remaining_after"`
	FinalPassed        bool           `json:"final_validation_passed"`
	IssuesByCategory   map[string]int `json:"issues_by_category"`
	DroppedDefects     int            `json:"dropped_defects"`
}

// RunSummary is the job-level summary exposed through status polling.
type RunSummary struct {
	TotalIssues      int             `json:"total_issues"`
	TotalFixes       int             `json:"total_fixes"`
	AppliedFixes     int             `json:"applied_fixes"`
	FuzzyMatches     int             `json:"fuzzy_matches"`
	FailedPatches    int             `json:"failed_patches"`
	DroppedDefects   int             `json:"dropped_defects"`
	Categories       []CategoryStats `json:"categories"`
	ValidationPassed bool            `json:"validation_passed"`
	RemainingIssues  int             `json:"remaining_issues"`
	ComplianceScore  float64         `json:"compliance_score"`
	EstimatedMinutes float64         `json:"estimated_minutes"`
	Residual         *ResidualStats  `json:"residual,omitempty"`
}

// RunReport is the full structured report persisted when a job completes.
type RunReport struct {
	JobID       string            `json:"job_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	CommitHash  string            `json:"commit_hash,omitempty"`
	Summary     RunSummary        `json:"summary"`
	WorkPlan    *WorkPlan         `json:"work_plan"`
	Defects     []Defect          `json:"defects"`
	Fixes       []Fix             `json:"fixes"`
	Patches     ApplyReport       `json:"patches"`
	Validation  *ValidationReport `json:"validation"`
	Residual    *ResidualRound    `json:"residual,omitempty"`
}

// ResidualRound records the defects, fixes and outcomes of the residual pass.
type ResidualRound struct {
	Defects    []Defect          `json:"defects"`
	Fixes      []Fix             `json:"fixes"`
	Patches    ApplyReport       `json:"patches"`
	Validation *ValidationReport `json:"validation"`
	Stats      ResidualStats     `json:"stats"`
}

// HistoryEntry is one recorded local run.
type HistoryEntry struct {
	Timestamp       string  `json:"timestamp"`
	CommitHash      string  `json:"commit_hash,omitempty"`
	TotalIssues     int     `json:"total_issues"`
	AppliedFixes    int     `json:"applied_fixes"`
	RemainingIssues int     `json:"remaining_issues"`
	ComplianceScore float64 `json:"compliance_score"`
}
