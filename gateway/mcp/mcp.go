// Package mcp exposes the coaching operations as MCP (Model Context Protocol)
// tools over stateless streamable HTTP.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/innerai/pkg/coach"
	"github.com/papercomputeco/innerai/pkg/utils"
)

type Config struct {
	// Coach serves every tool call. Required.
	Coach *coach.Coach

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the reframe, story and chat tools.
func NewServer(c Config) (*Server, error) {
	if c.Coach == nil {
		return nil, errors.New("coach is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "innerai",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        reframeToolName,
		Description: reframeDescription,
	}, s.handleReframe)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        storyToolName,
		Description: storyDescription,
	}, s.handleStory)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        chatToolName,
		Description: chatDescription,
	}, s.handleChat)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
