package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpadapter "github.com/abdidvp/pourfix/internal/adapters/inbound/mcp"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/config"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/detector"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/jobstore"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/report"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/scanner"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/validator"
	"github.com/abdidvp/pourfix/internal/adapters/outbound/workspace"
	"github.com/abdidvp/pourfix/internal/application"
	"github.com/abdidvp/pourfix/internal/domain"
	"github.com/abdidvp/pourfix/internal/domain/patch"
	"github.com/abdidvp/pourfix/internal/domain/remediate"
)

func newService(t *testing.T) *application.LocalService {
	t.Helper()
	dataDir := t.TempDir()
	sc := scanner.New()
	var rems []domain.Remediator
	for _, r := range remediate.All(nil) {
		rems = append(rems, r)
	}
	return application.NewLocalService(application.LocalDeps{
		Scanner:     sc,
		Detector:    detector.New(),
		Config:      config.New(),
		Remediators: rems,
		Validators:  validator.Native(),
		Store:       jobstore.NewMemory(),
		Workspace:   workspace.New(dataDir, sc),
		Reports:     report.New(dataDir),
	})
}

func TestNewPourfixMCPServer(t *testing.T) {
	s := mcpadapter.NewPourfixMCPServer(".", newService(t))
	require.NotNil(t, s)
}

func TestMCPServerHasTools(t *testing.T) {
	s := mcpadapter.NewPourfixMCPServer(".", newService(t))

	tools := s.ListTools()
	require.NotNil(t, tools)

	expectedTools := []string{
		"pourfix_plan",
		"pourfix_validate",
		"pourfix_check_patch",
		"pourfix_run",
	}

	for _, name := range expectedTools {
		_, exists := tools[name]
		assert.True(t, exists, "tool %q should be registered", name)
	}

	assert.Len(t, tools, len(expectedTools), "should have exactly %d tools", len(expectedTools))
}

func TestCheckPatchTool(t *testing.T) {
	s := mcpadapter.NewPourfixMCPServer(".", newService(t))
	tool, ok := s.ListTools()["pourfix_check_patch"]
	require.True(t, ok)

	req := mcplib.CallToolRequest{}
	req.Params.Name = "pourfix_check_patch"
	req.Params.Arguments = map[string]any{
		"before_code": `<img src="logo.png">`,
		"after_code":  `<img src="logo.png" alt="Logo">`,
		"file_path":   "index.html",
	}

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 1)

	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok)

	var meta patch.Metadata
	require.NoError(t, json.Unmarshal([]byte(text.Text), &meta))
	assert.Equal(t, "index.html", meta.FilePath)
	assert.Contains(t, meta.UnifiedDiff, `alt="Logo"`)
	assert.True(t, meta.Safety.Safe)
}

func TestCheckPatchToolRequiresArguments(t *testing.T) {
	s := mcpadapter.NewPourfixMCPServer(".", newService(t))
	tool, ok := s.ListTools()["pourfix_check_patch"]
	require.True(t, ok)

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{"before_code": "x"}

	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
