// Package mcp exposes the advisor to MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/product-advisor/internal/advisor"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server backed by a single in-process advisor.
type Server struct {
	advisor *advisor.Advisor
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server. a must already be loaded.
func NewServer(a *advisor.Advisor) *Server {
	s := &Server{advisor: a}

	s.mcp = server.NewMCPServer(
		"product-advisor",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchProductsTool, s.handleSearchProducts)
	s.mcp.AddTool(listSelectionTool, s.handleListSelection)
	s.mcp.AddTool(toggleProductTool, s.handleToggleProduct)
	s.mcp.AddTool(generateRoutineTool, s.handleGenerateRoutine)
	s.mcp.AddTool(askAdvisorTool, s.handleAskAdvisor)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
