package cli

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/abdidvp/pourfix/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the pourfix MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var (
		path  string
		flags pipelineFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start pourfix MCP server (stdio)",
		Long:  "Start the pourfix MCP server using stdio transport so coding assistants can plan, validate, check patches and run remediation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := projectPath([]string{path})
			if err != nil {
				return err
			}
			svc, err := newLocalService(absPath, flags)
			if err != nil {
				return err
			}
			return server.ServeStdio(mcpadapter.NewPourfixMCPServer(absPath, svc))
		},
	}

	cmd.Flags().StringVar(&path, "path", ".", "Project path (defaults to current working directory)")
	flags.bind(cmd)

	return cmd
}
