// Package mcpserver exposes commit matching as Model Context Protocol tools
// over stdio.
package mcpserver

import (
	"context"
	"io"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/remapper/internal/cache"
	"github.com/panbanda/remapper/internal/service/matching"
	"github.com/panbanda/remapper/pkg/config"
)

// Server wraps the MCP server and registers the remapper tools.
type Server struct {
	server *mcp.Server
	config *config.Config
	cache  *cache.Cache
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the configuration used by every tool call.
func WithConfig(cfg *config.Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithCache shares a result cache across tool calls.
func WithCache(c *cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithLogger sets the logger. Stdout carries the protocol, so the logger must
// write elsewhere.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server with all tools and prompts registered.
func NewServer(version string, opts ...Option) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		server: mcp.NewServer(&mcp.Implementation{Name: "remapper", Version: version}, nil),
		config: config.DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) service() *matching.Service {
	return matching.New(
		matching.WithConfig(s.config),
		matching.WithCache(s.cache),
		matching.WithLogger(s.logger),
	)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "match_commit",
		Description: describeMatchCommit(),
	}, s.handleMatchCommit)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "match_history",
		Description: describeMatchHistory(),
	}, s.handleMatchHistory)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_report",
		Description: describeValidateReport(),
	}, s.handleValidateReport)
}
