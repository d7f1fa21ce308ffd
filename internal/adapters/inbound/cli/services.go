package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/cache"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/config"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/detector"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/jobstore"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/llm"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/report"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/scanner"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/validator"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/workspace"
	"github.com/abdidvp/pourfix/internal/application"
	appconfig "github.com/abdidvp/pourfix/internal/config"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/remediate"
)

// pipelineFlags are shared by commands that build a LocalService.
type pipelineFlags struct {
	dataDir string
	native  bool
	noLLM   bool
	noCache bool
}

func (f *pipelineFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Job working directory (default <path>/.pourfix/jobs)")
	cmd.Flags().BoolVar(&f.native, "native", false, "Only run checkers that need no Node.js tooling")
	cmd.Flags().BoolVar(&f.noLLM, "no-llm", false, "Disable the generic remediation fallback")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Always re-run detection instead of reusing .pourfix/cache")
}

// newLocalService wires the outbound adapters for a run against projectPath.
func newLocalService(projectPath string, f pipelineFlags) (*application.LocalService, error) {
	env, err := appconfig.Load()
	if err != nil {
		return nil, err
	}
	loader := config.New()
	proj, err := loader.Load(projectPath)
	if err != nil {
		return nil, err
	}

	var fallback domain.FixSuggester
	if !f.noLLM && env.OpenAI.Enabled() && proj.FallbackEnabled() {
		fallback = llm.New(env.OpenAI)
	}

	validators := validator.All(validator.ExecRunner{})
	if f.native {
		validators = validator.Native()
	}

	dataDir := f.dataDir
	if dataDir == "" {
		dataDir = filepath.Join(projectPath, ".pourfix", "jobs")
	}

	var detections domain.CacheStore
	if !f.noCache {
		detections = cache.New()
	}

	sc := scanner.New()
	return application.NewLocalService(application.LocalDeps{
		Scanner:     sc,
		Detector:    detector.New(),
		Config:      loader,
		Remediators: remediators(fallback),
		Validators:  validators,
		Store:       jobstore.NewMemory(),
		Workspace:   workspace.New(dataDir, sc),
		Reports:     report.New(dataDir),
		Cache:       detections,
	}), nil
}

func remediators(fallback domain.FixSuggester) []domain.Remediator {
	all := remediate.All(fallback)
	out := make([]domain.Remediator, len(all))
	for i, r := range all {
		out[i] = r
	}
	return out
}

func projectPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func renderJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
