package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mj1618/stepwright/internal/config"
	"github.com/mj1618/stepwright/internal/history"
	"github.com/mj1618/stepwright/internal/metrics"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/mj1618/stepwright/internal/platform"
	"github.com/mj1618/stepwright/internal/report"
	"github.com/mj1618/stepwright/internal/runner"
	"github.com/mj1618/stepwright/internal/testcase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run [file or directory]",
	Short: "Run test cases and write an HTML report",
	Long: `Load test cases, run each step in a browser, and write the HTML report,
summary JSON, screenshots of failures and metrics into the output directory.

Test cases are read from a JSON or YAML file, or from every such file in a
directory. Without an argument the ./testcase directory is used, falling back
to two built-in sample cases when it is missing or empty.

Exits non-zero when any case fails or the report cannot be written.

Examples:
  stepwright run
  stepwright run testcase/login.yaml --max-attempts 3
  stepwright run testcase --workers 4 --headful
  stepwright run --case TC001,TC002 --output-dir out`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("output-dir", "", "Directory for reports and screenshots (default from config)")
	runCmd.Flags().Int("max-attempts", 0, "Attempts per step for retryable failures, 1-5 (default from config)")
	runCmd.Flags().Duration("retry-delay", 0, "Pause between attempts")
	runCmd.Flags().Duration("case-pause", 0, "Pause between cases")
	runCmd.Flags().Int("workers", 0, "Run cases in parallel on this many browser sessions")
	runCmd.Flags().Duration("action-timeout", 0, "Timeout per browser action")
	runCmd.Flags().String("case", "", "Only run these case IDs (comma-separated)")
	runCmd.Flags().String("title", "", "Report title")
	runCmd.Flags().Bool("no-history", false, "Do not read or record run history")
	addBrowserFlags(runCmd)
}

// errCasesFailed makes the process exit non-zero after a run with failures.
var errCasesFailed = errors.New("test cases failed")

func runRun(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	applyRunFlags(cmd, cfg)
	applyBrowserFlags(cmd, cfg)

	cases, err := loadCases(args)
	if err != nil {
		return err
	}
	if ids, _ := cmd.Flags().GetString("case"); ids != "" {
		cases, err = selectCases(cases, splitList(ids))
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	launcher, err := platform.NewLauncher(launchOptions(cfg))
	if err != nil {
		return err
	}
	collector := metrics.NewCollector()
	r := runner.New(runnerConfig(cfg), eng.resolver, eng.executor, launcher,
		runner.WithLogger(logger),
		runner.WithObserver(collector))

	summary, err := r.Run(ctx, cases)
	if err != nil {
		return err
	}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	var store *history.Store
	if !noHistory && cfg.Report.HistoryPath != "" {
		store, err = history.Open(cfg.Report.HistoryPath)
		if err != nil {
			logger.Warn("run history unavailable", zap.String("path", cfg.Report.HistoryPath), zap.Error(err))
			store = nil
		} else {
			defer store.Close()
		}
	}

	gen := report.Generator{
		OutputDir: cfg.Run.OutputDir,
		Title:     cfg.Report.Title,
		Trend:     trendWith(store, cfg.Report.TrendRuns, summary),
	}
	reportPath, err := gen.Generate(summary)
	if err != nil {
		return err
	}

	// The run context may already be cancelled; bookkeeping still happens.
	if store != nil {
		if err := store.Record(context.Background(), summary, reportPath); err != nil {
			logger.Warn("record run history", zap.Error(err))
		}
	}
	if cfg.Report.MetricsPath != "" {
		if err := collector.Write(cfg.Report.MetricsPath); err != nil {
			logger.Warn("write metrics", zap.String("path", cfg.Report.MetricsPath), zap.Error(err))
		}
	}

	fmt.Fprint(cmd.ErrOrStderr(), renderSummary(summary, reportPath))
	if err := output.Print(output.RunResult{
		Summary:  summary,
		Report:   reportPath,
		PassRate: summary.PassRate(),
		Metrics:  cfg.Report.MetricsPath,
	}); err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", errCasesFailed, summary.Failed, summary.Total)
	}
	if summary.Cancelled {
		return errors.New("run cancelled")
	}
	return nil
}

// applyRunFlags copies explicitly set run flags into cfg.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("output-dir") {
		cfg.Run.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("max-attempts") {
		cfg.Run.MaxAttempts, _ = f.GetInt("max-attempts")
	}
	if f.Changed("retry-delay") {
		cfg.Run.RetryDelay.Duration, _ = f.GetDuration("retry-delay")
	}
	if f.Changed("case-pause") {
		cfg.Run.CasePause.Duration, _ = f.GetDuration("case-pause")
	}
	if f.Changed("workers") {
		cfg.Run.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("action-timeout") {
		cfg.Run.ActionTimeout.Duration, _ = f.GetDuration("action-timeout")
	}
	if f.Changed("title") {
		cfg.Report.Title, _ = f.GetString("title")
	}
}

// loadCases reads the cases named by args. With no argument the default
// directory is used, and the built-in samples stand in when it holds none.
func loadCases(args []string) ([]model.TestCase, error) {
	if len(args) == 1 {
		cases, err := testcase.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("load test cases: %w", err)
		}
		return cases, nil
	}

	cases, err := testcase.Load(testcase.DefaultDir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("test case directory not found, using built-in samples", zap.String("dir", testcase.DefaultDir))
		return testcase.Defaults(), nil
	case err != nil:
		return nil, fmt.Errorf("load test cases: %w", err)
	case len(cases) == 0:
		logger.Warn("no test cases found, using built-in samples", zap.String("dir", testcase.DefaultDir))
		return testcase.Defaults(), nil
	}
	return cases, nil
}

// selectCases keeps the cases whose IDs are listed, in file order.
func selectCases(cases []model.TestCase, ids []string) ([]model.TestCase, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []model.TestCase
	for _, tc := range cases {
		if want[tc.ID] {
			out = append(out, tc)
			delete(want, tc.ID)
		}
	}
	for _, id := range ids {
		if want[id] {
			return nil, fmt.Errorf("no test case with id %q", id)
		}
	}
	return out, nil
}

// trendWith returns up to n runs ending with the current one, oldest first.
// It returns nil when there is no earlier run to compare against.
func trendWith(store *history.Store, n int, summary *model.RunSummary) []model.RunRecord {
	if store == nil || n < 2 {
		return nil
	}
	past, err := store.Trend(context.Background(), n-1)
	if err != nil {
		logger.Warn("read run history", zap.Error(err))
		return nil
	}
	if len(past) == 0 {
		return nil
	}
	return append(past, summary.Record())
}
