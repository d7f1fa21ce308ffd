package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/classify"
	"github.com/abdidvp/pourfix/internal/logger"
)

// ErrValidationUnavailable is returned when every configured checker failed.
var ErrValidationUnavailable = errors.New("validation subsystem unavailable")

// ValidateService runs the configured checkers over a file tree and
// aggregates their results into a ValidationReport.
type ValidateService struct {
	validators []domain.Validator
	classifier *classify.Classifier
}

func NewValidateService(validators []domain.Validator, classifier *classify.Classifier) *ValidateService {
	if classifier == nil {
		classifier = classify.Default()
	}
	return &ValidateService{validators: validators, classifier: classifier}
}

type checkerRun struct {
	name        string
	results     []domain.ValidationResult
	err         error
	unavailable bool
}

// Validate runs every checker not skipped by cfg. A checker error becomes a
// failing result for the system path; it never stops the other checkers.
func (s *ValidateService) Validate(ctx context.Context, root string, cfg domain.ProjectConfig) (*domain.ValidationReport, error) {
	var active []domain.Validator
	for _, v := range s.validators {
		if !cfg.IsSkippedValidator(v.Name()) {
			active = append(active, v)
		}
	}

	runs := make([]checkerRun, len(active))
	var g errgroup.Group
	for i, v := range active {
		g.Go(func() error {
			vctx := logger.WithLogFields(ctx, logger.LogFields{Component: "pourfix.validator." + v.Name()})
			results, err := v.Validate(vctx, root)
			runs[i] = checkerRun{name: v.Name(), results: results, err: err}
			if errors.Is(err, domain.ErrValidatorUnavailable) {
				runs[i].unavailable = true
				slog.InfoContext(vctx, "validator unavailable, skipping", "error", err)
			} else if err != nil {
				slog.WarnContext(vctx, "validator failed", "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &domain.ValidationReport{Results: []domain.ValidationResult{}}
	var tools []string
	ran, failed := 0, 0
	for _, run := range runs {
		if run.unavailable {
			continue
		}
		ran++
		if run.err != nil {
			failed++
			report.Results = append(report.Results, domain.ValidationResult{
				FilePath:  domain.SystemFilePath,
				Validator: run.name,
				Passed:    false,
				Errors:    []string{fmt.Sprintf("%s validation failed: %v", run.name, run.err)},
				Warnings:  []string{},
			})
			continue
		}
		tools = append(tools, run.name)
		for _, res := range run.results {
			if res.Validator == "" {
				res.Validator = run.name
			}
			report.Results = append(report.Results, res)
		}
	}
	if ran > 0 && failed == ran {
		return nil, fmt.Errorf("%w: all %d validators failed", ErrValidationUnavailable, ran)
	}

	for _, res := range report.FailingResults() {
		report.RemainingIssues += res.IssueCount()
	}
	report.Passed = report.RemainingIssues == 0
	report.Summary = s.summarize(report.Results, tools)
	return report, nil
}

func (s *ValidateService) summarize(results []domain.ValidationResult, tools []string) domain.ValidationSummary {
	sum := domain.ValidationSummary{
		IssuesByType:     make(map[string]int),
		IssuesBySeverity: make(map[string]int),
		ToolsUsed:        tools,
	}
	if sum.ToolsUsed == nil {
		sum.ToolsUsed = []string{}
	}

	checked := make(map[string]bool)
	withIssues := make(map[string]bool)
	for _, res := range results {
		if res.FilePath == domain.SystemFilePath {
			continue
		}
		checked[res.FilePath] = true
		if !res.Passed {
			withIssues[res.FilePath] = true
		}
		for _, msg := range append(append([]string{}, res.Errors...), res.Warnings...) {
			sum.IssuesByType[s.classifier.IssueTypeOf(msg)]++
			sum.IssuesBySeverity[string(s.classifier.ReportSeverityOf(msg))]++
		}
	}

	sum.TotalFilesChecked = len(checked)
	sum.FilesWithIssues = len(withIssues)
	sum.ComplianceScore = 1.0
	if sum.TotalFilesChecked > 0 {
		sum.ComplianceScore = float64(sum.TotalFilesChecked-sum.FilesWithIssues) / float64(sum.TotalFilesChecked)
	}
	return sum
}
