package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/tui"
)

func newPlanCmd() *cobra.Command {
	var (
		jsonOutput bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "plan [path]",
		Short: "Show the remediation work plan without changing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}
			svc, err := newLocalService(absPath, pipelineFlags{noLLM: true, native: true, noCache: noCache})
			if err != nil {
				return err
			}
			p, err := svc.Plan(cmd.Context(), absPath)
			if err != nil {
				return fmt.Errorf("planning failed: %w", err)
			}
			if jsonOutput {
				return renderJSON(cmd, p)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderWorkPlan(p))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the work plan as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Always re-run detection instead of reusing .pourfix/cache")
	return cmd
}
