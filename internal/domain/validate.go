package domain

// SystemFilePath is the synthetic file path used when a checker itself fails.
const SystemFilePath = "system"

// ValidationResult is one checker's verdict for one file.
type ValidationResult struct {
	FilePath  string   `json:"file_path"`
	Validator string   `json:"validator,omitempty"`
	Passed    bool     `json:"passed"`
	Errors    []string `json:"errors"`
	Warnings  []string `json:"warnings"`
}

// IssueCount returns the number of errors and warnings on the result.
func (r ValidationResult) IssueCount() int {
	return len(r.Errors) + len(r.Warnings)
}

// ValidationReport is the normalized output of the validation layer.
type ValidationReport struct {
	Passed          bool               `json:"passed"`
	RemainingIssues int                `json:"remaining_issues"`
	Results         []ValidationResult `json:"results"`
	Summary         ValidationSummary  `json:"summary"`
}

// ValidationSummary aggregates results for reporting. The type and severity
// buckets are heuristic and never gate anything.
type ValidationSummary struct {
	TotalFilesChecked int            `json:"total_files_checked"`
	FilesWithIssues   int            `json:"files_with_issues"`
	IssuesByType      map[string]int `json:"issues_by_type"`
	IssuesBySeverity  map[string]int `json:"issues_by_severity"`
	ToolsUsed         []string       `json:"tools_used"`
	ComplianceScore   float64        `json:"compliance_score"`
}

// FailingResults returns the results with passed=false, in order.
func (r *ValidationReport) FailingResults() []ValidationResult {
	var out []ValidationResult
	for _, res := range r.Results {
		if !res.Passed {
			out = append(out, res)
		}
	}
	return out
}
