package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/btouchard/beacon/internal/hub"
)

// Deps holds shared dependencies injected into MCP handlers.
type Deps struct {
	Hub     *hub.Hub
	Version string
}

// NewServer creates and configures the MCP server with all tools registered.
func NewServer(deps *Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"Beacon",
		deps.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	registerTools(s, deps)

	return s
}
