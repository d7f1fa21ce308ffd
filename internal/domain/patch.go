package domain

// PatchStatus classifies the outcome of one fix application.
type PatchStatus string

const (
	PatchSuccess      PatchStatus = "success"
	PatchFuzzySuccess PatchStatus = "fuzzy_success"
	PatchFailed       PatchStatus = "failed"
	PatchSkipped      PatchStatus = "skipped"
)

// Patch methods and failure reasons reported in PatchOutcome.
const (
	MethodExactReplacement = "exact_replacement"
	MethodLineAware        = "line_aware"
	MethodLineRebase       = "line_rebase"
	MethodFuzzyMatching    = "fuzzy_matching"
	MethodAlreadyApplied   = "already_applied"

	ReasonNoMatchFound    = "no_match_found"
	ReasonEmptyBeforeCode = "empty_before_code"
	ReasonFileNotFound    = "file_not_found"
	ReasonInvalidPath     = "invalid_path"
	ReasonFileError       = "file_error"
)

// PatchOutcome is the per-fix result reported by the patch engine.
type PatchOutcome struct {
	FixID      string      `json:"fix_id"`
	FilePath   string      `json:"file_path"`
	Status     PatchStatus `json:"status"`
	Method     string      `json:"method,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
}

// ApplyReport aggregates patch outcomes across a file tree.
type ApplyReport struct {
	SuccessfulPatches int            `json:"successful_patches"`
	FuzzyMatches      int            `json:"fuzzy_matches"`
	FailedPatches     int            `json:"failed_patches"`
	SkippedPatches    int            `json:"skipped_patches"`
	FilesWritten      int            `json:"files_written"`
	Details           []PatchOutcome `json:"details"`
}

// Add records an outcome and updates the counters.
func (r *ApplyReport) Add(o PatchOutcome) {
	switch o.Status {
	case PatchSuccess:
		r.SuccessfulPatches++
	case PatchFuzzySuccess:
		r.FuzzyMatches++
	case PatchFailed:
		r.FailedPatches++
	case PatchSkipped:
		r.SkippedPatches++
	}
	r.Details = append(r.Details, o)
}

// Merge folds other into r.
func (r *ApplyReport) Merge(other *ApplyReport) {
	if other == nil {
		return
	}
	for _, o := range other.Details {
		r.Add(o)
	}
	r.FilesWritten += other.FilesWritten
}

// SafetyReport is the advisory verdict of the patch safety check.
type SafetyReport struct {
	Safe           bool     `json:"safe"`
	SafetyScore    float64  `json:"safety_score"`
	Issues         []string `json:"issues"`
	Recommendation string   `json:"recommendation"`
}

// Safety recommendations.
const (
	RecommendSafe   = "safe"
	RecommendReview = "review_required"
)
