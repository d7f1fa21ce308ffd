package validator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdidvp/pourfix/internal/domain"
)

var tscDiagnostic = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\): error TS(\d+): (.*)$`)

// TypeScript runs the compiler in no-emit mode over .ts and .tsx files.
// Only syntactic diagnostics (TS1xxx) are reported; type errors depend on
// dependencies the bundle does not ship.
type TypeScript struct {
	runner CommandRunner
}

func NewTypeScript(runner CommandRunner) *TypeScript {
	return &TypeScript{runner: runner}
}

func (t *TypeScript) Name() string { return domain.ValidatorTypeScript }

func (t *TypeScript) Validate(ctx context.Context, root string) ([]domain.ValidationResult, error) {
	files, err := scan(root)
	if err != nil {
		return nil, err
	}
	var targets []string
	for _, f := range files.Scripts {
		if hasExt(f, ".ts", ".tsx") {
			targets = append(targets, f)
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}

	args := []string{"tsc", "--noEmit", "--pretty", "false", "--jsx", "preserve",
		"--target", "ES2020", "--module", "ESNext", "--skipLibCheck", "--noResolve"}
	out, runErr := t.runner.Run(ctx, Command{Name: "npx", Args: append(args, targets...), Dir: root})
	if runErr != nil {
		if errors.Is(runErr, domain.ErrValidatorUnavailable) || ctx.Err() != nil {
			return nil, runErr
		}
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("running tsc: %w", runErr)
		}
	}

	byFile, parsed := ParseTSC(string(out))
	if runErr != nil && parsed == 0 {
		return nil, fmt.Errorf("tsc failed: %s", firstLine(string(out)))
	}

	results := make([]domain.ValidationResult, 0, len(targets))
	for _, f := range targets {
		results = append(results, result(t.Name(), f, byFile[f], nil))
	}
	return results, nil
}

// ParseTSC groups syntactic compiler diagnostics by file as "Line N: msg".
// It also returns the number of diagnostic lines recognized, including
// semantic ones that are not reported.
func ParseTSC(output string) (map[string][]string, int) {
	byFile := make(map[string][]string)
	parsed := 0
	for _, line := range strings.Split(output, "\n") {
		m := tscDiagnostic.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		parsed++
		code, _ := strconv.Atoi(m[4])
		if code < 1000 || code >= 2000 {
			continue
		}
		file := relPath("", m[1])
		byFile[file] = append(byFile[file], fmt.Sprintf("Line %s: %s", m[2], m[5]))
	}
	return byFile, parsed
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "no output"
	}
	return s
}
