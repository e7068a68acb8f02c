// Package mcp exposes the engine over the Model Context Protocol so agent
// hosts can query the knowledge base as tools.
//
// Every tool call runs as the user the server was started for; scope
// filtering happens inside the engine, never here.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/radexhq/radex/internal/access"
	"github.com/radexhq/radex/internal/engine"
)

// Server wraps the MCP SDK server around one engine and one user identity.
type Server struct {
	mcpServer *mcp.Server
	engine    *engine.Engine
	user      access.User
	logger    *slog.Logger
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	User    access.User
}

// NewServer creates an MCP server with all tools registered.
func NewServer(cfg Config, eng *engine.Engine, logger *slog.Logger) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		engine:    eng,
		user:      cfg.User,
		logger:    logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return s, nil
}

// Run starts the MCP server on the given transport. Blocks until the
// transport closes or ctx is canceled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.logger.Info("mcp server starting", "user_id", s.user.ID, "superuser", s.user.Superuser)
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerTools() error {
	if err := s.registerAsk(); err != nil {
		return err
	}
	if err := s.registerSearch(); err != nil {
		return err
	}
	if err := s.registerDatasetTools(); err != nil {
		return err
	}
	return s.registerStats()
}

// textResult builds a plain-text tool response.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errorResult reports a recoverable tool failure to the agent without
// failing the protocol call.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}
