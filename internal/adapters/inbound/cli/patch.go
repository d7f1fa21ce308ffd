package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/config"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/tui"
	"github.com/abdidvp/pourfix/internal/application"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/patch"
)

type patchOutput struct {
	Patches  *domain.ApplyReport `json:"patches"`
	Analysis []patch.Metadata    `json:"analysis,omitempty"`
}

func newPatchCmd() *cobra.Command {
	var (
		fixesFile  string
		dryRun     bool
		explain    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "patch [path] --fixes fixes.json",
		Short: "Apply a list of fixes to a source tree",
		Long: "Apply fixes (a JSON array of fix objects) with the exact, line-aware and fuzzy strategies. " +
			"--explain adds a diff, complexity and safety analysis per fix.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(fixesFile)
			if err != nil {
				return fmt.Errorf("reading fixes: %w", err)
			}
			var fixes []domain.Fix
			if err := json.Unmarshal(data, &fixes); err != nil {
				return fmt.Errorf("parsing %s: %w", fixesFile, err)
			}

			cfg, err := config.New().Load(absPath)
			if err != nil {
				return err
			}
			svc := application.NewPatchService(nil, cfg.Concurrency)
			if dryRun {
				svc = svc.DryRun()
			}
			rep, err := svc.Apply(cmd.Context(), absPath, fixes)
			if err != nil {
				return fmt.Errorf("patch failed: %w", err)
			}

			out := patchOutput{Patches: rep}
			if explain {
				for _, f := range fixes {
					out.Analysis = append(out.Analysis, patch.Analyze(f))
				}
			}

			if jsonOutput {
				return renderJSON(cmd, out)
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, tui.RenderApplyReport(rep, dryRun))
			for _, m := range out.Analysis {
				fmt.Fprintf(w, "\n%s (%s, safety %.1f, %s)\n", m.IssueID, m.Complexity.Level, m.Safety.SafetyScore, m.Safety.Recommendation)
				for _, issue := range m.Safety.Issues {
					fmt.Fprintf(w, "  ! %s\n", issue)
				}
				fmt.Fprint(w, m.UnifiedDiff)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fixesFile, "fixes", "", "Path to a JSON array of fixes")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report outcomes without writing files")
	cmd.Flags().BoolVar(&explain, "explain", false, "Include diff, complexity and safety analysis")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("fixes")

	return cmd
}
