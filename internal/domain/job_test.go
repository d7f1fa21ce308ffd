package domain_test

import (
	"testing"
	"time"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestJobStatus_Progress(t *testing.T) {
	assert.Equal(t, 0, domain.JobUploaded.Progress())
	assert.Equal(t, 20, domain.JobPlanning.Progress())
	assert.Equal(t, 40, domain.JobFixing.Progress())
	assert.Equal(t, 80, domain.JobValidating.Progress())
	assert.Equal(t, 100, domain.JobComplete.Progress())
	assert.Equal(t, 0, domain.JobError.Progress())
}

func TestJobStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.JobStatus
		want     bool
	}{
		{domain.JobUploaded, domain.JobPlanning, true},
		{domain.JobPlanning, domain.JobFixing, true},
		{domain.JobFixing, domain.JobValidating, true},
		{domain.JobValidating, domain.JobComplete, true},
		{domain.JobUploaded, domain.JobFixing, false},
		{domain.JobValidating, domain.JobFixing, false},
		{domain.JobPlanning, domain.JobError, true},
		{domain.JobFixing, domain.JobError, true},
		{domain.JobComplete, domain.JobError, false},
		{domain.JobError, domain.JobPlanning, false},
		{domain.JobComplete, domain.JobPlanning, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransition(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.True(t, domain.JobComplete.IsTerminal())
	assert.True(t, domain.JobError.IsTerminal())
	assert.False(t, domain.JobValidating.IsTerminal())
}

func TestJob_CloneIsIndependent(t *testing.T) {
	now := time.Now()
	j := &domain.Job{
		ID:          "j1",
		Status:      domain.JobComplete,
		CompletedAt: &now,
		Summary: &domain.RunSummary{
			TotalIssues: 2,
			Categories:  []domain.CategoryStats{{Category: domain.CategoryRobust, Issues: 2}},
			Residual: &domain.ResidualStats{ResidualIssues: 1,
				IssuesByCategory: map[string]int{"robust": 1}},
		},
	}

	c := j.Clone()
	c.Summary.TotalIssues = 9
	c.Summary.Categories[0].Issues = 9
	c.Summary.Residual.ResidualIssues = 9
	c.Summary.Residual.IssuesByCategory["robust"] = 9
	c.Summary.Residual.IssuesByCategory["operable"] = 3

	assert.Equal(t, 2, j.Summary.TotalIssues)
	assert.Equal(t, 2, j.Summary.Categories[0].Issues)
	assert.Equal(t, 1, j.Summary.Residual.ResidualIssues)
	assert.Equal(t, map[string]int{"robust": 1}, j.Summary.Residual.IssuesByCategory)
	assert.Nil(t, (*domain.Job)(nil).Clone())
}
