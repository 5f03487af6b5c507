package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/stepwright/internal/config"
	"github.com/mj1618/stepwright/internal/executor"
	"github.com/mj1618/stepwright/internal/llm"
	"github.com/mj1618/stepwright/internal/platform"
	"github.com/mj1618/stepwright/internal/resolver"
	"github.com/mj1618/stepwright/internal/runner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newLLMClient returns the configured model client, or nil when no API key
// is set. Keyword resolution and the deterministic locator work without one.
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	if !cfg.LLMEnabled() {
		return nil, nil
	}
	c, err := llm.NewOpenAIClient(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout.Duration,
		RateLimit:   cfg.LLM.RateLimit,
		Burst:       cfg.LLM.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}
	return c, nil
}

// engine bundles the resolver and executor built from one config.
type engine struct {
	client   llm.Client
	resolver *resolver.Resolver
	executor *executor.Executor
}

func newEngine(cfg *config.Config, log *zap.Logger) (*engine, error) {
	client, err := newLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	if client == nil {
		log.Info("no LLM API key configured; free-form steps will be unresolved")
	} else {
		log.Info("LLM fallback enabled", zap.String("model", client.ModelName()))
	}
	timeout := cfg.LLM.Timeout.Duration
	return &engine{
		client:   client,
		resolver: resolver.New(client, resolver.WithTimeout(timeout), resolver.WithLogger(log)),
		executor: executor.New(
			executor.WithClient(client),
			executor.WithTimeout(cfg.Run.ActionTimeout.Duration),
			executor.WithLogger(log),
		),
	}, nil
}

func launchOptions(cfg *config.Config) platform.LaunchOptions {
	return platform.LaunchOptions{
		Headless:  cfg.Browser.Headless,
		RemoteURL: cfg.Browser.RemoteURL,
		ExecPath:  cfg.Browser.ExecPath,
		Width:     cfg.Browser.Width,
		Height:    cfg.Browser.Height,
		UserAgent: cfg.Browser.UserAgent,
		Timeout:   cfg.Browser.LaunchTimeout.Duration,
	}
}

func runnerConfig(cfg *config.Config) runner.Config {
	return runner.Config{
		OutputDir:   cfg.Run.OutputDir,
		MaxAttempts: cfg.Run.MaxAttempts,
		RetryDelay:  cfg.Run.RetryDelay.Duration,
		CasePause:   cfg.Run.CasePause.Duration,
		Workers:     cfg.Run.Workers,
	}
}

// launch starts one browser session for the single-page commands.
func launch(ctx context.Context, cfg *config.Config) (platform.Browser, error) {
	launcher, err := platform.NewLauncher(launchOptions(cfg))
	if err != nil {
		return nil, err
	}
	b, err := launcher.Launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	return b, nil
}

// addBrowserFlags adds the flags that override [browser] settings.
func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("headful", false, "Show the browser window")
	cmd.Flags().String("remote-url", "", "Attach to a running browser's DevTools endpoint instead of launching one")
}

// applyBrowserFlags copies explicitly set browser flags into cfg.
func applyBrowserFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("headful") {
		headful, _ := cmd.Flags().GetBool("headful")
		cfg.Browser.Headless = !headful
	}
	if cmd.Flags().Changed("remote-url") {
		cfg.Browser.RemoteURL, _ = cmd.Flags().GetString("remote-url")
	}
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
