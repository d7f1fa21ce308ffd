package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/logger"
)

// Runner executes the pipeline for a job.
type Runner interface {
	Run(ctx context.Context, jobID string, opts RunOptions) (*domain.RunReport, error)
}

// JobService creates jobs and runs them in the background. Callers poll
// Status; a started job is never cancelled.
type JobService struct {
	store  domain.JobStore
	runner Runner
	now    func() time.Time
	newID  func() string
	wg     sync.WaitGroup
}

func NewJobService(store domain.JobStore, runner Runner) *JobService {
	return &JobService{
		store:  store,
		runner: runner,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create registers a new job in the uploaded state.
func (s *JobService) Create(ctx context.Context) (*domain.Job, error) {
	now := s.now().UTC()
	job := &domain.Job{
		ID:        s.newID(),
		Status:    domain.JobUploaded,
		Progress:  domain.JobUploaded.Progress(),
		Message:   "Files uploaded successfully",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Set(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	return job, nil
}

// Start runs the job on a context detached from the caller's.
func (s *JobService) Start(ctx context.Context, jobID string) {
	bg := logger.WithLogFields(context.WithoutCancel(ctx), logger.LogFields{JobID: jobID})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				slog.ErrorContext(bg, "job panicked", "error", err)
				if ferr := FailJob(bg, s.store, jobID, err, s.now); ferr != nil {
					slog.ErrorContext(bg, "recording job failure", "error", ferr)
				}
			}
		}()
		if _, err := s.runner.Run(bg, jobID, RunOptions{}); err != nil {
			slog.WarnContext(bg, "job ended with error", "error", err)
		}
	}()
}

// Wait blocks until every started job has finished.
func (s *JobService) Wait() {
	s.wg.Wait()
}

// Status returns the last recorded state of a job.
func (s *JobService) Status(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.store.Get(ctx, jobID)
}

// Fail moves a job that never started into the error state.
func (s *JobService) Fail(ctx context.Context, jobID string, cause error) error {
	return FailJob(ctx, s.store, jobID, cause, s.now)
}
