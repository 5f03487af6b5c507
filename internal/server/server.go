// Package server exposes step resolution, case execution and page snapshots
// as MCP tools.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mj1618/stepwright/internal/executor"
	"github.com/mj1618/stepwright/internal/platform"
	"github.com/mj1618/stepwright/internal/resolver"
	"github.com/mj1618/stepwright/internal/runner"
	"go.uber.org/zap"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
	Version   string
	Run       runner.Config
}

// Server wraps the MCP server with one lazily launched browser session.
// Tool calls are serialized on that session.
type Server struct {
	cfg      Config
	launcher platform.Launcher
	resolver *resolver.Resolver
	executor *executor.Executor
	observer runner.Observer
	logger   *zap.Logger
	newID    func() string

	mu      sync.Mutex
	browser platform.Browser

	mcp *mcpserver.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver reports run_case results, e.g. to a metrics collector.
func WithObserver(o runner.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// New creates a server and registers its tools.
func New(cfg Config, launcher platform.Launcher, res *resolver.Resolver, exec *executor.Executor, opts ...Option) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{
		cfg:      cfg,
		launcher: launcher,
		resolver: res,
		executor: exec,
		logger:   zap.NewNop(),
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcp = mcpserver.NewMCPServer("stepwright", cfg.Version)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve() error {
	switch s.cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		return httpServer.Start(fmt.Sprintf(":%d", s.cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", s.cfg.Transport)
	}
}

// Close releases the browser session, if one was launched.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}

// session returns the live browser, launching a new one when there is none
// or the previous one stopped answering. The caller must hold s.mu.
func (s *Server) session(ctx context.Context) (platform.Browser, error) {
	if s.browser != nil {
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := s.browser.Ping(pctx)
		cancel()
		if err == nil {
			return s.browser, nil
		}
		s.logger.Warn("browser session lost, relaunching", zap.Error(err))
		s.executor.Cache().Invalidate(s.browser)
		_ = s.browser.Close()
		s.browser = nil
	}
	b, err := s.launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	s.browser = b
	return b, nil
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("resolve_step",
			mcp.WithDescription("Translate one natural-language test step into a typed browser action (navigate, input, click, verify, wait) without touching the browser"),
			mcp.WithString("step", mcp.Description("The step text, e.g. '点击登录按钮' or 'navigate to https://example.com'"), mcp.Required()),
		),
		s.handleResolveStep,
	)

	s.mcp.AddTool(
		mcp.NewTool("run_case",
			mcp.WithDescription("Run a test case of natural-language steps in the shared browser session. Steps stop at the first failure; the result lists every executed step."),
			mcp.WithArray("steps", mcp.Description("Ordered step texts"), mcp.Required(), mcp.Items(map[string]interface{}{"type": "string"})),
			mcp.WithString("id", mcp.Description("Case ID (default: MCP)")),
			mcp.WithString("name", mcp.Description("Case name")),
		),
		s.handleRunCase,
	)

	s.mcp.AddTool(
		mcp.NewTool("snapshot",
			mcp.WithDescription("Read the current page: URL, title and the interactive elements the locator can target"),
			mcp.WithString("url", mcp.Description("Navigate here first")),
			mcp.WithString("text", mcp.Description("Filter elements by text content")),
			mcp.WithString("roles", mcp.Description("Filter elements by role (e.g. \"btn,input\")")),
			mcp.WithBoolean("page-text", mcp.Description("Include the visible page text")),
		),
		s.handleSnapshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the current viewport as PNG"),
		),
		s.handleScreenshot,
	)
}
