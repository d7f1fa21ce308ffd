package domain

import (
	"maps"
	"time"
)

// JobStatus is the coordinator state of a job.
type JobStatus string

const (
	JobUploaded   JobStatus = "uploaded"
	JobPlanning   JobStatus = "planning"
	JobFixing     JobStatus = "fixing"
	JobValidating JobStatus = "validating"
	JobComplete   JobStatus = "complete"
	JobError      JobStatus = "error"
)

// Progress reported on entering each state.
var stageProgress = map[JobStatus]int{
	JobUploaded:   0,
	JobPlanning:   20,
	JobFixing:     40,
	JobValidating: 80,
	JobComplete:   100,
	JobError:      0,
}

// Progress returns the progress percentage associated with s.
func (s JobStatus) Progress() int {
	return stageProgress[s]
}

// IsTerminal reports whether no further transitions are possible.
func (s JobStatus) IsTerminal() bool {
	return s == JobComplete || s == JobError
}

// CanTransition reports whether moving from s to next is allowed.
// ERROR is reachable from every non-terminal state.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == JobError {
		return true
	}
	switch s {
	case JobUploaded:
		return next == JobPlanning
	case JobPlanning:
		return next == JobFixing
	case JobFixing:
		return next == JobValidating
	case JobValidating:
		return next == JobComplete
	}
	return false
}

// Job is the polled state of one pipeline run.
type Job struct {
	ID          string      `json:"job_id"`
	Status      JobStatus   `json:"status"`
	Progress    int         `json:"progress"`
	Message     string      `json:"message"`
	Summary     *RunSummary `json:"summary,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Clone returns a copy that shares no mutable state with j.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Summary != nil {
		s := *j.Summary
		s.Categories = append([]CategoryStats(nil), j.Summary.Categories...)
		if j.Summary.Residual != nil {
			r := *j.Summary.Residual
			r.IssuesByCategory = maps.Clone(r.IssuesByCategory)
			s.Residual = &r
		}
		c.Summary = &s
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
