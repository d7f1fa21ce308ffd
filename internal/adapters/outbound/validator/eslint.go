package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	"github.com/abdidvp/pourfix/internal/domain"
)

var eslintRules = []string{
	"jsx-a11y/alt-text: error",
	"jsx-a11y/aria-props: error",
	"jsx-a11y/aria-proptypes: error",
	"jsx-a11y/aria-unsupported-elements: error",
	"jsx-a11y/role-has-required-aria-props: error",
	"jsx-a11y/role-supports-aria-props: error",
	"jsx-a11y/click-events-have-key-events: warn",
	"jsx-a11y/no-static-element-interactions: warn",
}

// ESLint runs eslint with the jsx-a11y plugin over script files.
type ESLint struct {
	runner CommandRunner
}

func NewESLint(runner CommandRunner) *ESLint {
	return &ESLint{runner: runner}
}

func (e *ESLint) Name() string { return domain.ValidatorESLint }

func (e *ESLint) Validate(ctx context.Context, root string) ([]domain.ValidationResult, error) {
	files, err := scan(root)
	if err != nil {
		return nil, err
	}
	if len(files.Scripts) == 0 {
		return nil, nil
	}

	args := []string{"eslint", "--no-eslintrc", "--format", "json",
		"--env", "browser,es6",
		"--parser-options", `{"ecmaVersion":2020,"sourceType":"module","ecmaFeatures":{"jsx":true}}`,
		"--plugin", "jsx-a11y"}
	for _, r := range eslintRules {
		args = append(args, "--rule", r)
	}
	args = append(args, files.Scripts...)

	out, runErr := e.runner.Run(ctx, Command{Name: "npx", Args: args, Dir: root})
	if runErr != nil {
		if errors.Is(runErr, domain.ErrValidatorUnavailable) || ctx.Err() != nil {
			return nil, runErr
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("running eslint: %w", runErr)
		}
	}

	reports, err := ParseESLint(out)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("eslint failed: %s", firstLine(string(out)))
		}
		return nil, err
	}

	byFile := make(map[string]domain.ValidationResult, len(reports))
	for _, r := range reports {
		rel := relPath(root, r.FilePath)
		byFile[rel] = result(e.Name(), rel, r.Errors, r.Warnings)
	}
	results := make([]domain.ValidationResult, 0, len(files.Scripts))
	for _, f := range files.Scripts {
		if r, ok := byFile[f]; ok {
			results = append(results, r)
			continue
		}
		results = append(results, result(e.Name(), f, nil, nil))
	}
	return results, nil
}

// ESLintFile is one file entry of eslint's JSON formatter, reduced to
// formatted errors and warnings.
type ESLintFile struct {
	FilePath string
	Errors   []string
	Warnings []string
}

type eslintOutput struct {
	FilePath string `json:"filePath"`
	Messages []struct {
		RuleID   string `json:"ruleId"`
		Severity int    `json:"severity"`
		Message  string `json:"message"`
		Line     int    `json:"line"`
	} `json:"messages"`
}

// ParseESLint decodes eslint JSON output. Anything before the opening
// bracket, such as npx notices, is ignored.
func ParseESLint(out []byte) ([]ESLintFile, error) {
	start := bytes.IndexByte(out, '[')
	if start < 0 {
		return nil, fmt.Errorf("eslint produced no JSON output")
	}
	var raw []eslintOutput
	if err := json.NewDecoder(bytes.NewReader(out[start:])).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing eslint output: %w", err)
	}

	files := make([]ESLintFile, 0, len(raw))
	for _, r := range raw {
		f := ESLintFile{FilePath: r.FilePath}
		for _, m := range r.Messages {
			msg := fmt.Sprintf("Line %d: %s", m.Line, m.Message)
			if m.RuleID != "" {
				msg += " (" + m.RuleID + ")"
			}
			switch m.Severity {
			case 2:
				f.Errors = append(f.Errors, msg)
			case 1:
				f.Warnings = append(f.Warnings, msg)
			}
		}
		files = append(files, f)
	}
	return files, nil
}
