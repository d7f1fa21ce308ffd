package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/abdidvp/pourfix/internal/application"
)

const configURI = "pourfix://config"

func registerResources(s *server.MCPServer, projectPath string, svc *application.LocalService) {
	s.AddResource(
		mcplib.NewResource(
			configURI,
			"Project Config",
			mcplib.WithResourceDescription("Effective .pourfix.yaml configuration with defaults applied"),
			mcplib.WithMIMEType("application/json"),
		),
		handleConfigResource(projectPath, svc),
	)
}

func handleConfigResource(projectPath string, svc *application.LocalService) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		cfg, err := svc.Config(projectPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling config: %w", err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      configURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
