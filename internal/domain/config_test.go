package domain_test

import (
	"testing"

	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, domain.DefaultConcurrency, cfg.Concurrency)
	assert.Empty(t, cfg.ExcludePaths)
	assert.True(t, cfg.FallbackEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestWithDefaults_FillsConcurrency(t *testing.T) {
	cfg := domain.ProjectConfig{}.WithDefaults()
	assert.Equal(t, domain.DefaultConcurrency, cfg.Concurrency)

	cfg = domain.ProjectConfig{Concurrency: 8}.WithDefaults()
	assert.Equal(t, 8, cfg.Concurrency)
}

func TestIsSkippedValidator(t *testing.T) {
	cfg := domain.ProjectConfig{Skip: domain.SkipConfig{Validators: []string{"eslint"}}}
	assert.True(t, cfg.IsSkippedValidator("eslint"))
	assert.False(t, cfg.IsSkippedValidator("axe"))
}

func TestIsSkippedRule(t *testing.T) {
	cfg := domain.ProjectConfig{Skip: domain.SkipConfig{Rules: []string{"color-contrast"}}}
	assert.True(t, cfg.IsSkippedRule("color-contrast"))
	assert.False(t, cfg.IsSkippedRule("img-alt"))
}

func TestFallbackEnabled_ExplicitFalse(t *testing.T) {
	off := false
	cfg := domain.ProjectConfig{LLMFallback: &off}
	assert.False(t, cfg.FallbackEnabled())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  domain.ProjectConfig
		msg  string
	}{
		{
			name: "unknown validator",
			cfg:  domain.ProjectConfig{Skip: domain.SkipConfig{Validators: []string{"pa11y"}}},
			msg:  "unknown validator",
		},
		{
			name: "all validators skipped",
			cfg:  domain.ProjectConfig{Skip: domain.SkipConfig{Validators: domain.ValidValidators}},
			msg:  "cannot skip all validators",
		},
		{
			name: "unknown rule",
			cfg:  domain.ProjectConfig{Skip: domain.SkipConfig{Rules: []string{"blink"}}},
			msg:  "unknown rule",
		},
		{
			name: "negative concurrency",
			cfg:  domain.ProjectConfig{Concurrency: -1},
			msg:  "concurrency must be >= 0",
		},
		{
			name: "compliance out of range",
			cfg:  domain.ProjectConfig{MinCompliance: 1.5},
			msg:  "min_compliance",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}
