package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/tui"
)

func newValidateCmd() *cobra.Command {
	var (
		jsonOutput bool
		native     bool
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Run the accessibility checkers over a source tree",
		Long:  "Run every enabled checker over the tree as it is on disk. Exits 1 when any checker reports an error.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}
			svc, err := newLocalService(absPath, pipelineFlags{noLLM: true, native: native})
			if err != nil {
				return err
			}

			result, err := svc.Validate(cmd.Context(), absPath)
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			if jsonOutput {
				if err := renderJSON(cmd, result); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderValidation(result))
			}

			if !result.Passed {
				return fmt.Errorf("validation failed: %d issue(s) remaining", result.RemainingIssues)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the validation report as JSON")
	cmd.Flags().BoolVar(&native, "native", false, "Only run checkers that need no Node.js tooling")
	return cmd
}
