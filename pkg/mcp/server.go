// Package mcp wraps the mcp-go client and server with the defaults
// Proteus needs: per-request timeouts, retry with backoff and tool
// discovery caching on the client side, and a thin registration
// surface on the server side used by the compensation bridge.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolHandler serves one tool call with decoded arguments.
type ToolHandler func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)

// Server wraps the mcp-go server for the compensation bridge.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server with the given identity.
func NewServer(name, version string) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
	}
}

// AddTool registers a fully described tool with its handler.
func (s *Server) AddTool(tool mcp.Tool, handler ToolHandler) {
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		return handler(ctx, args)
	})
}

// ServeStdio blocks serving the stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP blocks serving the streamable-HTTP transport on addr.
func (s *Server) ServeHTTP(addr string) error {
	return server.NewStreamableHTTPServer(s.mcpServer).Start(addr)
}
