// Package config loads stepwright settings from a TOML file, a .env file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "stepwright.toml"

// Config holds all application configuration.
type Config struct {
	Run     RunConfig     `toml:"run"`
	Browser BrowserConfig `toml:"browser"`
	LLM     LLMConfig     `toml:"llm"`
	Report  ReportConfig  `toml:"report"`
	Logging LoggingConfig `toml:"logging"`
}

// RunConfig holds runner settings.
type RunConfig struct {
	OutputDir     string   `toml:"output_dir"`
	MaxAttempts   int      `toml:"max_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
	CasePause     Duration `toml:"case_pause"`
	Workers       int      `toml:"workers"`
	ActionTimeout Duration `toml:"action_timeout"`
}

// BrowserConfig holds browser launch settings.
type BrowserConfig struct {
	Headless      bool     `toml:"headless"`
	RemoteURL     string   `toml:"remote_url"`
	ExecPath      string   `toml:"exec_path"`
	Width         int      `toml:"width"`
	Height        int      `toml:"height"`
	UserAgent     string   `toml:"user_agent"`
	LaunchTimeout Duration `toml:"launch_timeout"`
}

// LLMConfig holds language model settings.
type LLMConfig struct {
	BaseURL     string   `toml:"base_url"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	Temperature float64  `toml:"temperature"`
	MaxTokens   int      `toml:"max_tokens"`
	Timeout     Duration `toml:"timeout"`
	RateLimit   float64  `toml:"rate_limit"`
	Burst       int      `toml:"burst"`
}

// ReportConfig holds report and history settings.
type ReportConfig struct {
	Title       string `toml:"title"`
	HistoryPath string `toml:"history_path"`
	TrendRuns   int    `toml:"trend_runs"`
	MetricsPath string `toml:"metrics_path"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "1.5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			OutputDir:     "reports",
			MaxAttempts:   1,
			RetryDelay:    Duration{time.Second},
			Workers:       1,
			ActionTimeout: Duration{30 * time.Second},
		},
		Browser: BrowserConfig{
			Headless:      true,
			Width:         1280,
			Height:        800,
			LaunchTimeout: Duration{30 * time.Second},
		},
		LLM: LLMConfig{
			BaseURL:   "https://api.deepseek.com/v1",
			Model:     "deepseek-chat",
			MaxTokens: 512,
			Timeout:   Duration{60 * time.Second},
			RateLimit: 2,
			Burst:     1,
		},
		Report: ReportConfig{
			Title:       "UI Test Report",
			HistoryPath: filepath.Join("reports", "history.db"),
			TrendRuns:   10,
			MetricsPath: filepath.Join("reports", "metrics.prom"),
		},
		Logging: LoggingConfig{
			Format: "console",
			Level:  "info",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults when
// the file does not exist. Variables from a .env file in the working
// directory are loaded without overriding the environment, then the
// environment overrides the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from environment variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(name string, dst *int) {
		if v, ok := lookup(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *Duration) {
		if v, ok := lookup(name); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				return
			}
			*dst = b
		}
	}

	str("STEPWRIGHT_OUTPUT_DIR", &c.Run.OutputDir)
	integer("STEPWRIGHT_MAX_ATTEMPTS", &c.Run.MaxAttempts)
	duration("STEPWRIGHT_RETRY_DELAY", &c.Run.RetryDelay)
	duration("STEPWRIGHT_CASE_PAUSE", &c.Run.CasePause)
	integer("STEPWRIGHT_WORKERS", &c.Run.Workers)
	duration("STEPWRIGHT_ACTION_TIMEOUT", &c.Run.ActionTimeout)

	boolean("STEPWRIGHT_HEADLESS", &c.Browser.Headless)
	str("STEPWRIGHT_REMOTE_URL", &c.Browser.RemoteURL)
	str("STEPWRIGHT_CHROME_PATH", &c.Browser.ExecPath)

	str("STEPWRIGHT_HISTORY", &c.Report.HistoryPath)
	str("STEPWRIGHT_METRICS", &c.Report.MetricsPath)

	str("STEPWRIGHT_LOG_FORMAT", &c.Logging.Format)
	str("STEPWRIGHT_LOG_LEVEL", &c.Logging.Level)

	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("LLM_MODEL", &c.LLM.Model)
	str("DEEPSEEK_API_KEY", &c.LLM.APIKey)
	str("LLM_API_KEY", &c.LLM.APIKey)
	duration("LLM_TIMEOUT", &c.LLM.Timeout)

	return errors.Join(errs...)
}

// LLMEnabled reports whether enough is configured to call the model.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != "" && c.LLM.BaseURL != "" && c.LLM.Model != ""
}
