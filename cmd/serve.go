package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mj1618/stepwright/internal/executor"
	"github.com/mj1618/stepwright/internal/metrics"
	"github.com/mj1618/stepwright/internal/platform"
	"github.com/mj1618/stepwright/internal/resolver"
	"github.com/mj1618/stepwright/internal/server"
	"github.com/mj1618/stepwright/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing stepwright tools",
	Long: `Start a Model Context Protocol (MCP) server with the tools resolve_step,
run_case, snapshot and screenshot. All tools share one browser session,
launched on first use.

Supported transports:
  stdio             Standard I/O (default)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  stepwright serve
  stepwright serve --transport streamable-http --port 8080
  stepwright serve --cache-ttl 0`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("cache-ttl", 500, "Page snapshot cache TTL in milliseconds (0 to disable)")
	serveCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	addBrowserFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	cacheTTLMs, _ := cmd.Flags().GetInt("cache-ttl")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	cfg := appConfig
	applyBrowserFlags(cmd, cfg)

	client, err := newLLMClient(cfg)
	if err != nil {
		return err
	}
	launcher, err := platform.NewLauncher(launchOptions(cfg))
	if err != nil {
		return err
	}
	cache := executor.NewSnapshotCache(msDuration(cacheTTLMs))
	res := resolver.New(client, resolver.WithTimeout(cfg.LLM.Timeout.Duration), resolver.WithLogger(logger))
	exec := executor.New(
		executor.WithClient(client),
		executor.WithTimeout(cfg.Run.ActionTimeout.Duration),
		executor.WithCache(cache),
		executor.WithLogger(logger),
	)

	collector := metrics.NewCollector()
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	srv := server.New(server.Config{
		Transport: transport,
		Port:      port,
		Version:   version.Version,
		Run:       runnerConfig(cfg),
	}, launcher, res, exec, server.WithLogger(logger), server.WithObserver(collector))
	defer srv.Close()

	logger.Info("mcp server starting", zap.String("transport", transport))
	if err := srv.Serve(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
