package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/stepwright/internal/config"
	"github.com/mj1618/stepwright/internal/logging"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/mj1618/stepwright/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// appConfig is loaded by the root command before any subcommand runs.
	appConfig = config.Default()
	// logger writes to stderr so structured output on stdout stays clean.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "stepwright",
	Short:         "Run UI test cases written as natural-language steps",
	Long:          "A CLI that translates natural-language test steps into browser actions, runs them in Chrome, and reports the results.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON")
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "Path to the TOML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: console, json (default from config)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")

		path, _ := rootCmd.PersistentFlags().GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if v, _ := rootCmd.PersistentFlags().GetString("log-level"); v != "" {
			cfg.Logging.Level = v
		}
		if v, _ := rootCmd.PersistentFlags().GetString("log-format"); v != "" {
			cfg.Logging.Format = v
		}
		appConfig = cfg

		l, err := logging.NewLogger(cfg.Logging.Format, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		logger = l
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
}
