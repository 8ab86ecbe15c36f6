// ABOUTME: MCP server setup for the health-to-calendar engine.
// ABOUTME: Wraps the MCP server with an engine instance for stats and sync tools.
package mcp

import (
	"context"

	"github.com/KishParikh13/HealthToCalendar/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with engine access.
type Server struct {
	mcpServer *mcp.Server
	engine    *engine.Engine
}

// NewServer creates a new MCP server backed by the given engine.
func NewServer(eng *engine.Engine) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "healthcal",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		engine:    eng,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
