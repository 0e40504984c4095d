package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/browser-search/internal/browser"
	"github.com/dshills/browser-search/internal/searcher"
)

const (
	// ServerName is the MCP server name
	ServerName = "browser-search"
)

// Searcher runs one search
type Searcher interface {
	Search(ctx context.Context, req searcher.Request) (*searcher.Response, error)
}

// Discoverer resolves the enabled sources
type Discoverer interface {
	Discover() map[browser.Source]browser.Paths
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	searcher Searcher
	registry Discoverer
}

// NewServer creates a new MCP server instance
func NewServer(s Searcher, registry Discoverer, version string) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(false),
	)

	srv := &Server{
		mcp:      mcpServer,
		searcher: s,
		registry: registry,
	}
	srv.registerTools()

	return srv
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchBrowsersTool(), s.handleSearchBrowsers)
	s.mcp.AddTool(listSourcesTool(), s.handleListSources)
}
