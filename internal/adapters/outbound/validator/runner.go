// Package validator implements the independent checkers run over a patched
// tree. External tools run through a CommandRunner; the DOM, HTML and CSS
// checks are Go-native.
package validator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/scanner"
	"github.com/abdidvp/pourfix/internal/domain"
)

// Command is an external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// CommandRunner runs a command and returns its combined output.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	command := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	if cmd.Dir != "" {
		command.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		command.Env = append(os.Environ(), cmd.Env...)
	}
	out, err := command.CombinedOutput()
	if errors.Is(err, exec.ErrNotFound) {
		return out, fmt.Errorf("%s: %w", cmd.Name, domain.ErrValidatorUnavailable)
	}
	return out, err
}

// All returns every checker in reporting order.
func All(runner CommandRunner) []domain.Validator {
	return []domain.Validator{
		NewTypeScript(runner),
		NewESLint(runner),
		NewAxe(),
		NewHTML(),
		NewCSS(),
	}
}

// Native returns the checkers that need no external tooling.
func Native() []domain.Validator {
	return []domain.Validator{NewAxe(), NewHTML(), NewCSS()}
}

func scan(root string) (*domain.ScanResult, error) {
	res, err := scanner.New().Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	return res, nil
}

func readFile(root, rel string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func result(name, file string, errs, warns []string) domain.ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	if warns == nil {
		warns = []string{}
	}
	return domain.ValidationResult{
		FilePath:  file,
		Validator: name,
		Passed:    len(errs) == 0,
		Errors:    errs,
		Warnings:  warns,
	}
}

func relPath(root, p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}

func hasExt(name string, exts ...string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
