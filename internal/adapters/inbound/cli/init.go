package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdidvp/pourfix/internal/adapters/outbound/config"
	"github.com/abdidvp/pourfix/internal/domain"
)

const configHeader = "# pourfix configuration\n# skip.validators: typescript, eslint, axe, html, css\n\n"

func newInitCmd() *cobra.Command {
	var (
		force   bool
		native  bool
		noLLM   bool
		exclude []string
	)

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .pourfix.yaml configuration file",
		Long:  "Create a .pourfix.yaml with the default settings, optionally disabling the Node.js checkers or the generic remediation fallback.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath(args)
			if err != nil {
				return err
			}

			dest := filepath.Join(absPath, config.FileName)
			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
				}
			}

			cfg := domain.DefaultConfig()
			cfg.ExcludePaths = exclude
			if native {
				cfg.Skip.Validators = []string{domain.ValidatorTypeScript, domain.ValidatorESLint}
			}
			if noLLM {
				off := false
				cfg.LLMFallback = &off
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("rendering config: %w", err)
			}
			if err := os.WriteFile(dest, append([]byte(configHeader), data...), 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", config.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .pourfix.yaml")
	cmd.Flags().BoolVar(&native, "native", false, "Skip the typescript and eslint checkers")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "Disable the generic remediation fallback")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Paths to exclude from scanning")

	return cmd
}
