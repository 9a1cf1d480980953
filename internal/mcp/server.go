// ABOUTME: MCP server setup for the lift workout store.
// ABOUTME: Wraps the MCP server with a storage Repository connection.
package mcp

import (
	"context"

	"github.com/harperreed/lift/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	log       *logrus.Entry
}

const instructions = `lift is a strength-training log. Look up exercise IDs with
search_exercises or find_exercises before adding them to a workout. At most one
workout is in progress; read it with get_ongoing_workout and close it with
finish_workout before starting another.`

// NewServer registers the workout tools and resources on a fresh MCP server.
func NewServer(repo storage.Repository, version string) (*Server, error) {
	impl := &mcp.Implementation{Name: "lift", Version: version}
	s := &Server{
		mcpServer: mcp.NewServer(impl, &mcp.ServerOptions{Instructions: instructions}),
		repo:      repo,
		log:       logrus.WithField("component", "mcp"),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving MCP over stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
