package domain

import (
	"context"
	"errors"
)

var (
	// ErrJobNotFound is returned by JobStore.Get for unknown ids.
	ErrJobNotFound = errors.New("job not found")
	// ErrReportNotFound is returned when no report was persisted for a job.
	ErrReportNotFound = errors.New("report not found")
	// ErrValidatorUnavailable marks a checker whose external tool is missing.
	ErrValidatorUnavailable = errors.New("validator unavailable")
	// ErrUnsafePath marks a path that escapes its root.
	ErrUnsafePath = errors.New("path escapes root")
)

// SourceScanner lists the web source files under a directory.
type SourceScanner interface {
	Scan(root string, excludePaths ...string) (*ScanResult, error)
}

// ScanResult holds the web source files found under RootPath, relative and
// slash-separated.
type ScanResult struct {
	RootPath string   `json:"root_path"`
	Files    []string `json:"files"`
	Markup   []string `json:"markup"`
	Scripts  []string `json:"scripts"`
	Styles   []string `json:"styles"`
}

// Detector finds defects in files under root.
type Detector interface {
	Detect(ctx context.Context, root string, files []string) ([]Defect, error)
}

// Remediator turns defects of one category into fixes.
type Remediator interface {
	Category() Category
	FixIssues(ctx context.Context, defects []Defect) ([]Fix, error)
}

// Suggestion is a fix proposed by a generic remediation backend.
type Suggestion struct {
	BeforeCode  string  `json:"before_code"`
	AfterCode   string  `json:"after_code"`
	Confidence  float64 `json:"confidence"`
	Explanation string  `json:"explanation"`
}

// FixSuggester is the generic fallback for defects no rule recognizes.
type FixSuggester interface {
	SuggestFix(ctx context.Context, category Category, defect Defect) (*Suggestion, error)
}

// Validator runs one independent check over a file tree.
type Validator interface {
	Name() string
	Validate(ctx context.Context, root string) ([]ValidationResult, error)
}

// JobStore is the key-value home of job state.
type JobStore interface {
	Get(ctx context.Context, id string) (*Job, error)
	Set(ctx context.Context, job *Job) error
	Delete(ctx context.Context, id string) error
}

// Workspace owns the per-job file trees and artifacts.
type Workspace interface {
	OriginalRoot(jobID string) string
	FixedRoot(jobID string) string
	OriginalFiles(ctx context.Context, jobID string) ([]string, error)
	PrepareWorkingCopy(ctx context.Context, jobID string) (string, error)
	Package(ctx context.Context, jobID string) (string, error)
}

// ReportWriter persists and reloads final run reports.
type ReportWriter interface {
	Write(ctx context.Context, report *RunReport) error
	Load(ctx context.Context, jobID string) (*RunReport, error)
}

// ConfigLoader loads project configuration.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// RunHistory stores local run summaries per project.
type RunHistory interface {
	Save(projectPath string, entry HistoryEntry) error
	Load(projectPath string) ([]HistoryEntry, error)
}

// GitInfo reads repository metadata.
type GitInfo interface {
	IsGitRepo(projectPath string) bool
	CommitHash(projectPath string) (string, error)
}

// CacheStore persists detection results between local runs.
type CacheStore interface {
	Load(projectPath string) (*DetectionCache, error)
	Save(cache *DetectionCache) error
	Invalidate(projectPath string) error
}
