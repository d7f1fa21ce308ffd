package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/pourfix/internal/application"
)

// NewPourfixMCPServer creates an MCP server with all pourfix tools and
// resources registered against the project at projectPath.
func NewPourfixMCPServer(projectPath string, svc *application.LocalService) *server.MCPServer {
	s := server.NewMCPServer(
		"pourfix",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, svc)
	registerResources(s, projectPath, svc)

	return s
}
