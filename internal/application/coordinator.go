package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/classify"
	"github.com/abdidvp/pourfix/internal/domain/plan"
	"github.com/abdidvp/pourfix/internal/domain/residual"
	"github.com/abdidvp/pourfix/internal/logger"
)

// Stage messages reported while a job runs.
const (
	msgPlanning   = "Analyzing accessibility issues"
	msgFixing     = "Applying accessibility fixes"
	msgValidating = "Validating fixed files"
	msgResidual   = "Re-routing residual issues"
	msgComplete   = "Processing complete"
)

// CoordinatorDeps wires a Coordinator.
type CoordinatorDeps struct {
	Store      domain.JobStore
	Workspace  domain.Workspace
	Detector   domain.Detector
	Router     *Router
	Patcher    *PatchService
	Validator  *ValidateService
	Reports    domain.ReportWriter
	Classifier *classify.Classifier
	Config     domain.ProjectConfig
	Now        func() time.Time
}

// RunOptions carries per-run metadata recorded in the report.
type RunOptions struct {
	CommitHash string
}

// Coordinator drives one job through planning, fixing, validation and at
// most one residual round.
type Coordinator struct {
	store      domain.JobStore
	workspace  domain.Workspace
	detector   domain.Detector
	router     *Router
	patcher    *PatchService
	validator  *ValidateService
	reports    domain.ReportWriter
	classifier *classify.Classifier
	cfg        domain.ProjectConfig
	now        func() time.Time
}

func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	c := &Coordinator{
		store:      deps.Store,
		workspace:  deps.Workspace,
		detector:   deps.Detector,
		router:     deps.Router,
		patcher:    deps.Patcher,
		validator:  deps.Validator,
		reports:    deps.Reports,
		classifier: deps.Classifier,
		cfg:        deps.Config.WithDefaults(),
		now:        deps.Now,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.classifier == nil {
		c.classifier = classify.Default()
	}
	if c.patcher == nil {
		c.patcher = NewPatchService(nil, c.cfg.Concurrency)
	}
	return c
}

// Run executes the pipeline for jobID. On failure the job is moved to the
// error state and the error is returned.
func (c *Coordinator) Run(ctx context.Context, jobID string, opts RunOptions) (*domain.RunReport, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{JobID: jobID, Component: "pourfix.coordinator"})
	sc := logger.StartSpan(ctx, "coordinator.run")
	defer sc.End()
	ctx = sc.Context()

	report, err := c.run(ctx, jobID, opts)
	if err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "job failed", "error", err)
		if ferr := FailJob(ctx, c.store, jobID, err, c.now); ferr != nil {
			slog.ErrorContext(ctx, "recording job failure", "error", ferr)
		}
		return nil, err
	}
	return report, nil
}

func (c *Coordinator) run(ctx context.Context, jobID string, opts RunOptions) (*domain.RunReport, error) {
	report := &domain.RunReport{JobID: jobID, CommitHash: opts.CommitHash}

	// 1. Planning
	if err := c.transition(ctx, jobID, domain.JobPlanning, msgPlanning, nil); err != nil {
		return nil, err
	}
	defects, err := c.stage(ctx, domain.JobPlanning, func(ctx context.Context) ([]domain.Defect, error) {
		files, err := c.workspace.OriginalFiles(ctx, jobID)
		if err != nil {
			return nil, fmt.Errorf("listing files: %w", err)
		}
		found, err := c.detector.Detect(ctx, c.workspace.OriginalRoot(jobID), files)
		if err != nil {
			return nil, fmt.Errorf("detecting issues: %w", err)
		}
		return c.dropSkipped(ctx, domain.DedupDefects(found)), nil
	})
	if err != nil {
		return nil, err
	}
	report.Defects = defects
	report.WorkPlan = plan.Generate(defects)

	// 2. Fixing
	if err := c.transition(ctx, jobID, domain.JobFixing, msgFixing, nil); err != nil {
		return nil, err
	}
	root, err := c.workspace.PrepareWorkingCopy(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("preparing working copy: %w", err)
	}
	fixes, dropped, patches, err := c.remediate(logger.WithLogFields(ctx, logger.LogFields{Stage: string(domain.JobFixing)}), root, defects)
	if err != nil {
		return nil, err
	}
	report.Fixes = fixes
	report.Patches = *patches

	// 3. Validating
	if err := c.transition(ctx, jobID, domain.JobValidating, msgValidating, nil); err != nil {
		return nil, err
	}
	vctx := logger.WithLogFields(ctx, logger.LogFields{Stage: string(domain.JobValidating)})
	validation, err := c.validator.Validate(vctx, root, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	report.Validation = validation

	// 4. One residual round, no convergence check.
	if validation.RemainingIssues > 0 {
		if err := c.transition(ctx, jobID, domain.JobValidating, msgResidual, nil); err != nil {
			return nil, err
		}
		round, err := c.residualRound(vctx, root, validation)
		if err != nil {
			return nil, err
		}
		report.Residual = round
	}

	// 5. Complete
	report.GeneratedAt = c.now().UTC()
	report.Summary = summarize(report, dropped)
	if c.reports != nil {
		if err := c.reports.Write(ctx, report); err != nil {
			return nil, fmt.Errorf("writing report: %w", err)
		}
	}
	if _, err := c.workspace.Package(ctx, jobID); err != nil {
		return nil, fmt.Errorf("packaging fixed files: %w", err)
	}
	summary := report.Summary
	if err := c.transition(ctx, jobID, domain.JobComplete, msgComplete, &summary); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "job complete",
		"issues", summary.TotalIssues, "applied", summary.AppliedFixes, "remaining", summary.RemainingIssues)
	return report, nil
}

// dropSkipped removes defects whose rule is disabled in the project config.
func (c *Coordinator) dropSkipped(ctx context.Context, defects []domain.Defect) []domain.Defect {
	if len(c.cfg.Skip.Rules) == 0 {
		return defects
	}
	kept := defects[:0:0]
	for _, d := range defects {
		if !c.cfg.IsSkippedRule(d.RuleID) {
			kept = append(kept, d)
		}
	}
	if n := len(defects) - len(kept); n > 0 {
		slog.DebugContext(ctx, "skipped defects by config", "count", n)
	}
	return kept
}

func (c *Coordinator) stage(ctx context.Context, status domain.JobStatus, fn func(context.Context) ([]domain.Defect, error)) ([]domain.Defect, error) {
	sc := logger.StartSpan(ctx, "coordinator."+string(status))
	defer sc.End()
	out, err := fn(logger.WithLogFields(sc.Context(), logger.LogFields{Stage: string(status)}))
	sc.RecordError(err)
	return out, err
}

// remediate dispatches defects and applies the resulting fixes under root.
func (c *Coordinator) remediate(ctx context.Context, root string, defects []domain.Defect) ([]domain.Fix, int, *domain.ApplyReport, error) {
	sc := logger.StartSpan(ctx, "coordinator.remediate")
	defer sc.End()
	ctx = sc.Context()

	dispatch, err := c.router.Dispatch(ctx, defects)
	if err != nil {
		sc.RecordError(err)
		return nil, 0, nil, fmt.Errorf("routing defects: %w", err)
	}
	patches, err := c.patcher.Apply(ctx, root, dispatch.Fixes)
	if err != nil {
		sc.RecordError(err)
		return nil, 0, nil, err
	}
	return dispatch.Fixes, dispatch.Dropped, patches, nil
}

func (c *Coordinator) residualRound(ctx context.Context, root string, before *domain.ValidationReport) (*domain.ResidualRound, error) {
	conv := residual.NewConverter(c.classifier, func(p string) (string, error) {
		abs, err := SafeJoin(root, p)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(abs)
		return string(data), err
	})
	defects := conv.Convert(before.Results)

	fixes, dropped, patches, err := c.remediate(ctx, root, defects)
	if err != nil {
		return nil, fmt.Errorf("residual round: %w", err)
	}
	after, err := c.validator.Validate(ctx, root, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("residual validation: %w", err)
	}

	stats := domain.ResidualStats{
		ResidualIssues:     len(defects),
		ReroutedFixes:      len(fixes),
		SuccessfulReroutes: patches.SuccessfulPatches + patches.FuzzyMatches,
		FailedReroutes:     patches.FailedPatches,
		RemainingBefore:    before.RemainingIssues,
		RemainingAfter:     after.RemainingIssues,
		FinalPassed:        after.Passed,
		IssuesByCategory:   make(map[string]int),
		DroppedDefects:     dropped,
	}
	for _, d := range defects {
		stats.IssuesByCategory[string(d.Category)]++
	}
	slog.InfoContext(ctx, "residual round complete",
		"residual_issues", stats.ResidualIssues, "remaining_before", stats.RemainingBefore, "remaining_after", stats.RemainingAfter)

	return &domain.ResidualRound{
		Defects:    defects,
		Fixes:      fixes,
		Patches:    *patches,
		Validation: after,
		Stats:      stats,
	}, nil
}

// transition moves a job to next, enforcing the state machine.
func (c *Coordinator) transition(ctx context.Context, jobID string, next domain.JobStatus, msg string, summary *domain.RunSummary) error {
	job, err := c.store.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("loading job: %w", err)
	}
	if job.Status != next && !job.Status.CanTransition(next) {
		return fmt.Errorf("invalid transition %s -> %s", job.Status, next)
	}
	now := c.now().UTC()
	job.Status = next
	job.Progress = next.Progress()
	job.Message = msg
	job.UpdatedAt = now
	if summary != nil {
		job.Summary = summary
	}
	if next.IsTerminal() {
		job.CompletedAt = &now
	}
	if err := c.store.Set(ctx, job); err != nil {
		return fmt.Errorf("saving job: %w", err)
	}
	slog.DebugContext(ctx, "job transition", "status", next, "progress", job.Progress)
	return nil
}

// FailJob moves a non-terminal job to the error state with the cause preserved.
func FailJob(ctx context.Context, store domain.JobStore, jobID string, cause error, now func() time.Time) error {
	job, err := store.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return nil
	}
	t := now().UTC()
	job.Status = domain.JobError
	job.Progress = domain.JobError.Progress()
	job.Message = "processing failed: " + cause.Error()
	job.UpdatedAt = t
	job.CompletedAt = &t
	return store.Set(ctx, job)
}

func summarize(r *domain.RunReport, dropped int) domain.RunSummary {
	s := domain.RunSummary{
		TotalIssues:    len(r.Defects),
		TotalFixes:     len(r.Fixes),
		FuzzyMatches:   r.Patches.FuzzyMatches,
		FailedPatches:  r.Patches.FailedPatches,
		DroppedDefects: dropped,
	}
	if r.WorkPlan != nil {
		s.EstimatedMinutes = r.WorkPlan.EstimatedTotalMinutes
	}

	categoryOf := make(map[string]domain.Category, len(r.Defects))
	stats := make(map[domain.Category]*domain.CategoryStats)
	for _, cat := range domain.Categories {
		stats[cat] = &domain.CategoryStats{Category: cat}
	}
	for _, d := range r.Defects {
		categoryOf[d.ID] = d.Category
		if st, ok := stats[d.Category]; ok {
			st.Issues++
		}
	}
	for _, f := range r.Fixes {
		st, ok := stats[categoryOf[f.IssueID]]
		if !ok {
			continue
		}
		st.Fixes++
		if f.Applied {
			st.Applied++
			s.AppliedFixes++
		}
	}
	for _, cat := range domain.Categories {
		st := stats[cat]
		if st.Issues > 0 {
			st.SuccessRate = float64(st.Applied) / float64(st.Issues)
		}
		s.Categories = append(s.Categories, *st)
	}

	if r.Residual != nil {
		rs := r.Residual.Stats
		s.Residual = &rs
		s.FuzzyMatches += r.Residual.Patches.FuzzyMatches
		s.FailedPatches += r.Residual.Patches.FailedPatches
		s.DroppedDefects += rs.DroppedDefects
		for _, f := range r.Residual.Fixes {
			if f.Applied {
				s.AppliedFixes++
			}
		}
	}

	final := r.Validation
	if r.Residual != nil && r.Residual.Validation != nil {
		final = r.Residual.Validation
	}
	if final != nil {
		s.ValidationPassed = final.Passed
		s.RemainingIssues = final.RemainingIssues
		s.ComplianceScore = final.Summary.ComplianceScore
	}
	return s
}
