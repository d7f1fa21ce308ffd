package application_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/pourfix/internal/application"
	"github.com/abdidvp/pourfix/internal/domain"
)

func checker(name string, results []domain.ValidationResult, err error) *scriptedValidator {
	return &scriptedValidator{name: name, steps: []validatorStep{{results: results, err: err}}}
}

func TestValidateService_AggregatesInCheckerOrder(t *testing.T) {
	svc := application.NewValidateService([]domain.Validator{
		checker("axe", []domain.ValidationResult{
			failing("index.html", "Line 9: Images must have alternate text (image-alt)"),
			passing("about.html"),
		}, nil),
		checker("css", []domain.ValidationResult{
			{FilePath: "main.css", Passed: false, Errors: []string{}, Warnings: []string{"Potential contrast issue at line 2: dark text without background"}},
		}, nil),
	}, nil)

	report, err := svc.Validate(context.Background(), t.TempDir(), domain.DefaultConfig())
	require.NoError(t, err)

	assert.False(t, report.Passed)
	assert.Equal(t, 2, report.RemainingIssues)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "axe", report.Results[0].Validator)
	assert.Equal(t, "css", report.Results[2].Validator)

	s := report.Summary
	assert.Equal(t, 3, s.TotalFilesChecked)
	assert.Equal(t, 2, s.FilesWithIssues)
	assert.InDelta(t, 1.0/3.0, s.ComplianceScore, 1e-9)
	assert.Equal(t, []string{"axe", "css"}, s.ToolsUsed)
	assert.Equal(t, 1, s.IssuesByType["image"])
	assert.Equal(t, 1, s.IssuesByType["contrast"])
}

func TestValidateService_UnavailableIsSkipped(t *testing.T) {
	svc := application.NewValidateService([]domain.Validator{
		checker("eslint", nil, fmt.Errorf("npx: %w", domain.ErrValidatorUnavailable)),
		checker("html", []domain.ValidationResult{passing("index.html")}, nil),
	}, nil)

	report, err := svc.Validate(context.Background(), t.TempDir(), domain.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Len(t, report.Results, 1)
	assert.Equal(t, []string{"html"}, report.Summary.ToolsUsed)
}

func TestValidateService_CheckerErrorBecomesSystemResult(t *testing.T) {
	svc := application.NewValidateService([]domain.Validator{
		checker("typescript", nil, errors.New("tsc crashed")),
		checker("html", []domain.ValidationResult{passing("index.html")}, nil),
	}, nil)

	report, err := svc.Validate(context.Background(), t.TempDir(), domain.DefaultConfig())
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	sys := report.Results[0]
	assert.Equal(t, domain.SystemFilePath, sys.FilePath)
	assert.Equal(t, []string{"typescript validation failed: tsc crashed"}, sys.Errors)
	assert.False(t, report.Passed)
	assert.Equal(t, 1, report.RemainingIssues)
	// The system result is not a checked file.
	assert.Equal(t, 1, report.Summary.TotalFilesChecked)
	assert.InDelta(t, 1.0, report.Summary.ComplianceScore, 1e-9)
}

func TestValidateService_AllCheckersFailing(t *testing.T) {
	svc := application.NewValidateService([]domain.Validator{
		checker("axe", nil, errors.New("a")),
		checker("html", nil, errors.New("b")),
	}, nil)

	_, err := svc.Validate(context.Background(), t.TempDir(), domain.DefaultConfig())
	assert.ErrorIs(t, err, application.ErrValidationUnavailable)
}

func TestValidateService_SkipsConfiguredCheckers(t *testing.T) {
	css := checker("css", []domain.ValidationResult{failing("main.css", "Unclosed CSS rule at line 1")}, nil)
	svc := application.NewValidateService([]domain.Validator{
		checker("html", []domain.ValidationResult{passing("index.html")}, nil),
		css,
	}, nil)

	cfg := domain.DefaultConfig()
	cfg.Skip.Validators = []string{"css"}
	report, err := svc.Validate(context.Background(), t.TempDir(), cfg)
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Zero(t, css.Calls())
}

func TestValidateService_NothingChecked(t *testing.T) {
	svc := application.NewValidateService([]domain.Validator{checker("css", nil, nil)}, nil)

	report, err := svc.Validate(context.Background(), t.TempDir(), domain.DefaultConfig())
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.InDelta(t, 1.0, report.Summary.ComplianceScore, 1e-9)
}
