// Package report persists run reports as JSON and SARIF next to the job's
// workspace.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/residual"
)

const (
	JSONName  = "report.json"
	SARIFName = "report.sarif"

	toolName = "pourfix"
	toolURI  = "https://github.com/abdidvp/pourfix"
)

// Store implements domain.ReportWriter under <dataDir>/<job_id>/.
type Store struct {
	dataDir string
}

func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// JSONPath returns where the JSON report for jobID lives.
func (s *Store) JSONPath(jobID string) string {
	return filepath.Join(s.dataDir, jobID, JSONName)
}

// SARIFPath returns where the SARIF report for jobID lives.
func (s *Store) SARIFPath(jobID string) string {
	return filepath.Join(s.dataDir, jobID, SARIFName)
}

func (s *Store) Write(ctx context.Context, r *domain.RunReport) error {
	if r == nil || r.JobID == "" {
		return fmt.Errorf("report has no job id")
	}
	if err := os.MkdirAll(filepath.Join(s.dataDir, r.JobID), 0755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(s.JSONPath(r.JobID), data, 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	doc, err := BuildSARIF(r)
	if err != nil {
		return err
	}
	if err := writeSARIF(s.SARIFPath(r.JobID), doc); err != nil {
		return fmt.Errorf("writing sarif report: %w", err)
	}
	return nil
}

func writeSARIF(path string, doc *sarif.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = doc.PrettyWrite(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (s *Store) Load(ctx context.Context, jobID string) (*domain.RunReport, error) {
	data, err := os.ReadFile(s.JSONPath(jobID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	var r domain.RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding report: %w", err)
	}
	return &r, nil
}

// FinalValidation returns the last validation pass of a run: the residual
// round's when one ran.
func FinalValidation(r *domain.RunReport) *domain.ValidationReport {
	if r.Residual != nil && r.Residual.Validation != nil {
		return r.Residual.Validation
	}
	return r.Validation
}

// BuildSARIF converts the issues still failing after the final validation
// pass into a SARIF 2.1.0 log. Each checker becomes one rule.
func BuildSARIF(r *domain.RunReport) (*sarif.Report, error) {
	doc, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("creating sarif report: %w", err)
	}
	run := sarif.NewRunWithInformationURI(toolName, toolURI)

	final := FinalValidation(r)
	if final != nil {
		rules := map[string]bool{}
		for _, res := range final.FailingResults() {
			ruleID := res.Validator
			if ruleID == "" {
				ruleID = "validation"
			}
			if !rules[ruleID] {
				run.AddRule(ruleID).
					WithDescription(ruleID + " accessibility check").
					WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})
				rules[ruleID] = true
			}
			for _, msg := range res.Errors {
				run.AddResult(newResult(ruleID, "error", res.FilePath, msg))
			}
			for _, msg := range res.Warnings {
				run.AddResult(newResult(ruleID, "warning", res.FilePath, msg))
			}
		}
	}

	for _, f := range unappliedFixes(r) {
		run.AddRule("unapplied-fix").
			WithDescription("A proposed fix was not applied and needs review")
		run.AddResult(newResult("unapplied-fix", "note", f.FilePath,
			fmt.Sprintf("Line %d: fix for %s was not applied", max(f.LineStart, 1), f.IssueID)))
	}

	doc.AddRun(run)
	return doc, nil
}

func newResult(ruleID, level, path, msg string) *sarif.Result {
	loc := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(path)).
			WithRegion(sarif.NewRegion().WithStartLine(residual.LineOf(msg))),
	)
	return sarif.NewRuleResult(ruleID).
		WithMessage(sarif.NewTextMessage(msg)).
		WithLevel(level).
		WithLocations([]*sarif.Location{loc})
}

func unappliedFixes(r *domain.RunReport) []domain.Fix {
	var out []domain.Fix
	collect := func(fixes []domain.Fix) {
		for _, f := range fixes {
			if !f.Applied {
				out = append(out, f)
			}
		}
	}
	collect(r.Fixes)
	if r.Residual != nil {
		collect(r.Residual.Fixes)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}
