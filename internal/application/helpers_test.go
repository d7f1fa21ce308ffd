package application_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abdidvp/pourfix/internal/domain"
)

// fakeRemediator emits one fix per defect after an optional delay.
type fakeRemediator struct {
	category domain.Category
	delay    time.Duration
	err      error
}

func (f *fakeRemediator) Category() domain.Category { return f.category }

func (f *fakeRemediator) FixIssues(ctx context.Context, defects []domain.Defect) ([]domain.Fix, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	fixes := make([]domain.Fix, 0, len(defects))
	for _, d := range defects {
		fixes = append(fixes, domain.Fix{IssueID: d.ID, FilePath: d.FilePath, LineStart: d.LineStart, LineEnd: d.LineEnd})
	}
	return fixes, nil
}

// scriptedValidator returns one scripted response per call; the last one
// repeats.
type scriptedValidator struct {
	name  string
	mu    sync.Mutex
	calls int
	steps []validatorStep
}

type validatorStep struct {
	results []domain.ValidationResult
	err     error
}

func (v *scriptedValidator) Name() string { return v.name }

func (v *scriptedValidator) Validate(_ context.Context, _ string) ([]domain.ValidationResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := min(v.calls, len(v.steps)-1)
	v.calls++
	return v.steps[i].results, v.steps[i].err
}

func (v *scriptedValidator) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func failing(file string, errs ...string) domain.ValidationResult {
	return domain.ValidationResult{FilePath: file, Passed: false, Errors: errs, Warnings: []string{}}
}

func passing(file string) domain.ValidationResult {
	return domain.ValidationResult{FilePath: file, Passed: true, Errors: []string{}, Warnings: []string{}}
}

type failingDetector struct{}

func (failingDetector) Detect(context.Context, string, []string) ([]domain.Defect, error) {
	return nil, errors.New("boom")
}

type staticDetector struct {
	defects []domain.Defect
}

func (d staticDetector) Detect(context.Context, string, []string) ([]domain.Defect, error) {
	return d.defects, nil
}
