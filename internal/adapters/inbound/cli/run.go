package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/gitinfo"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/history"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/tui"
	"github.com/abdidvp/pourfix/internal/application"
	"github.com/abdidvp/pourfix/internal/domain"
)

func newRunCmd() *cobra.Command {
	var (
		jsonOutput    bool
		ciMode        bool
		minCompliance float64
		noHistory     bool
		flags         pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "run [path]",
		Short: "Detect, fix and validate accessibility defects",
		Long: "Copy the project into a job workspace, fix every detected defect, validate the patched tree " +
			"and run one residual round when issues remain. The project itself is left untouched.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}
			svc, err := newLocalService(absPath, flags)
			if err != nil {
				return err
			}

			var opts application.RunOptions
			gi := gitinfo.New()
			if hash, err := gi.CommitHash(absPath); err == nil {
				opts.CommitHash = hash
			}

			rep, err := svc.Run(cmd.Context(), absPath, opts)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}

			if !noHistory {
				entry := domain.HistoryEntry{
					Timestamp:       time.Now().Format(time.RFC3339),
					CommitHash:      rep.CommitHash,
					TotalIssues:     rep.Summary.TotalIssues,
					AppliedFixes:    rep.Summary.AppliedFixes,
					RemainingIssues: rep.Summary.RemainingIssues,
					ComplianceScore: rep.Summary.ComplianceScore,
				}
				_ = history.New().Save(absPath, entry) // best-effort
			}

			if jsonOutput {
				if err := renderJSON(cmd, rep); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderRunReport(rep))
				fmt.Fprintf(cmd.OutOrStdout(), "\n  Fixed files: %s\n", svc.FixedRoot(rep.JobID))
			}

			if !ciMode {
				return nil
			}
			if !cmd.Flags().Changed("min-compliance") {
				cfg, err := svc.Config(absPath)
				if err != nil {
					return err
				}
				minCompliance = cfg.MinCompliance
			}
			return checkCompliance(rep.Summary, minCompliance)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the full run report as JSON")
	cmd.Flags().BoolVar(&ciMode, "ci", false, "CI mode: exit 1 when issues remain or compliance is below --min-compliance")
	cmd.Flags().Float64Var(&minCompliance, "min-compliance", 0, "Minimum compliance score (0-1) for CI mode")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history file")
	flags.bind(cmd)

	return cmd
}

// checkCompliance fails when a threshold is set and not met, or when no
// threshold is set and issues remain.
func checkCompliance(s domain.RunSummary, threshold float64) error {
	if threshold > 0 {
		if s.ComplianceScore < threshold {
			return fmt.Errorf("compliance %.0f%% is below minimum %.0f%%", s.ComplianceScore*100, threshold*100)
		}
		return nil
	}
	if !s.ValidationPassed {
		return fmt.Errorf("%d issue(s) remain after remediation", s.RemainingIssues)
	}
	return nil
}
