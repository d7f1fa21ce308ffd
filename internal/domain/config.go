package domain

import "fmt"

// Validator names recognized in configuration.
const (
	ValidatorTypeScript = "typescript"
	ValidatorESLint     = "eslint"
	ValidatorAxe        = "axe"
	ValidatorHTML       = "html"
	ValidatorCSS        = "css"
)

// ValidValidators enumerates all checker names.
var ValidValidators = []string{
	ValidatorTypeScript, ValidatorESLint, ValidatorAxe, ValidatorHTML, ValidatorCSS,
}

// ValidDetectorRules enumerates the rule ids the heuristic detector emits.
var ValidDetectorRules = []string{
	"img-alt", "label", "aria-label", "role",
	"heading-order", "language-identification", "color-contrast",
}

// SupportedExtensions lists the source file types the pipeline accepts.
var SupportedExtensions = []string{".html", ".htm", ".js", ".jsx", ".ts", ".tsx", ".css"}

// ProjectConfig holds project-level configuration loaded from .pourfix.yaml.
type ProjectConfig struct {
	ExcludePaths  []string   `yaml:"exclude_paths"  json:"exclude_paths,omitempty"`
	Skip          SkipConfig `yaml:"skip"           json:"skip,omitempty"`
	Concurrency   int        `yaml:"concurrency"    json:"concurrency,omitempty"`
	LLMFallback   *bool      `yaml:"llm_fallback"   json:"llm_fallback,omitempty"`
	MinCompliance float64    `yaml:"min_compliance" json:"min_compliance,omitempty"`
}

// SkipConfig lists validators and detector rules to disable.
type SkipConfig struct {
	Validators []string `yaml:"validators" json:"validators,omitempty"`
	Rules      []string `yaml:"rules"      json:"rules,omitempty"`
}

// DefaultConcurrency bounds parallel file patching and checking.
const DefaultConcurrency = 4

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{Concurrency: DefaultConcurrency}
}

// WithDefaults fills zero values from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}

// IsSkippedValidator reports whether the named checker is disabled.
func (c ProjectConfig) IsSkippedValidator(name string) bool {
	return contains(c.Skip.Validators, name)
}

// IsSkippedRule reports whether the named detector rule is disabled.
func (c ProjectConfig) IsSkippedRule(rule string) bool {
	return contains(c.Skip.Rules, rule)
}

// FallbackEnabled reports whether unrecognized rules go to the generic remediator.
func (c ProjectConfig) FallbackEnabled() bool {
	return c.LLMFallback == nil || *c.LLMFallback
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	// 1. skip.validators must be known
	for _, v := range c.Skip.Validators {
		if !contains(ValidValidators, v) {
			return fmt.Errorf("unknown validator %q in skip.validators", v)
		}
	}

	// 2. cannot skip every validator
	if len(c.Skip.Validators) > 0 && len(c.Skip.Validators) >= len(ValidValidators) {
		return fmt.Errorf("cannot skip all validators (must have at least one active)")
	}

	// 3. skip.rules must be known detector rules
	for _, r := range c.Skip.Rules {
		if !contains(ValidDetectorRules, r) {
			return fmt.Errorf("unknown rule %q in skip.rules", r)
		}
	}

	// 4. concurrency must be non-negative
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must be >= 0, got %d", c.Concurrency)
	}

	// 5. min_compliance is a fraction
	if c.MinCompliance < 0 || c.MinCompliance > 1 {
		return fmt.Errorf("min_compliance must be between 0 and 1, got %.2f", c.MinCompliance)
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
