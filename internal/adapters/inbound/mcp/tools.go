package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/pourfix/internal/application"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/patch"
)

// registerTools registers all pourfix MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, svc *application.LocalService) {
	// 1. pourfix_plan
	s.AddTool(
		mcplib.NewTool("pourfix_plan",
			mcplib.WithDescription("Detect accessibility defects and return the work plan (assignments by POUR category, priorities, estimates) as JSON"),
		),
		handlePlan(projectPath, svc),
	)

	// 2. pourfix_validate
	s.AddTool(
		mcplib.NewTool("pourfix_validate",
			mcplib.WithDescription("Run the accessibility checkers over the project as it is on disk and return the validation report"),
		),
		handleValidate(projectPath, svc),
	)

	// 3. pourfix_check_patch
	s.AddTool(
		mcplib.NewTool("pourfix_check_patch",
			mcplib.WithDescription("Analyze a before/after code pair: unified diff, inline changes, complexity and safety verdict"),
			mcplib.WithString("before_code", mcplib.Required(), mcplib.Description("Original code")),
			mcplib.WithString("after_code", mcplib.Required(), mcplib.Description("Proposed replacement")),
			mcplib.WithString("file_path", mcplib.Description("File the code belongs to, used to label the diff")),
		),
		handleCheckPatch(),
	)

	// 4. pourfix_run
	s.AddTool(
		mcplib.NewTool("pourfix_run",
			mcplib.WithDescription("Run the full detect, fix, validate pipeline over a copy of the project and return the summary and fixed tree location"),
		),
		handleRun(projectPath, svc),
	)
}

func handlePlan(projectPath string, svc *application.LocalService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		p, err := svc.Plan(ctx, projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("planning failed: %v", err)), nil
		}
		return jsonResult(p)
	}
}

func handleValidate(projectPath string, svc *application.LocalService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		report, err := svc.Validate(ctx, projectPath)
		if err != nil {
			return errorResult(fmt.Sprintf("validate failed: %v", err)), nil
		}
		return jsonResult(report)
	}
}

func handleCheckPatch() server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		before, err := request.RequireString("before_code")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		after, err := request.RequireString("after_code")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		filePath, _ := request.GetArguments()["file_path"].(string)
		if filePath == "" {
			filePath = "snippet"
		}
		fix := domain.Fix{
			FilePath:   filePath,
			BeforeCode: before,
			AfterCode:  after,
		}
		return jsonResult(patch.Analyze(fix))
	}
}

type runResult struct {
	JobID     string            `json:"job_id"`
	FixedRoot string            `json:"fixed_root"`
	Summary   domain.RunSummary `json:"summary"`
}

func handleRun(projectPath string, svc *application.LocalService) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		rep, err := svc.Run(ctx, projectPath, application.RunOptions{})
		if err != nil {
			return errorResult(fmt.Sprintf("run failed: %v", err)), nil
		}
		return jsonResult(runResult{
			JobID:     rep.JobID,
			FixedRoot: svc.FixedRoot(rep.JobID),
			Summary:   rep.Summary,
		})
	}
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
