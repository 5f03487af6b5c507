package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mj1618/stepwright/internal/history"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/mj1618/stepwright/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportCmd = &cobra.Command{
	Use:   "report <summary.json | run-id>",
	Short: "Re-render the HTML report of a past run",
	Long: `Render the HTML report again from a summary JSON file, or from a run
stored in the history database.

Examples:
  stepwright report reports/summary_20250101_120000.json
  stepwright report 20250101_120000 --output-dir /tmp/out`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().String("output-dir", "", "Where to write the report (default from config)")
	reportCmd.Flags().String("title", "", "Report title")
	reportCmd.Flags().Bool("no-trend", false, "Leave out the history trend chart")
}

// ReportResult is the output of the `report` command.
type ReportResult struct {
	RunID  string `yaml:"run_id" json:"run_id"`
	Report string `yaml:"report" json:"report"`
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	applyRunFlags(cmd, cfg)
	noTrend, _ := cmd.Flags().GetBool("no-trend")
	ctx := cmd.Context()

	var store *history.Store
	if cfg.Report.HistoryPath != "" {
		if _, err := os.Stat(cfg.Report.HistoryPath); err == nil {
			s, err := history.Open(cfg.Report.HistoryPath)
			if err != nil {
				logger.Warn("run history unavailable", zap.Error(err))
			} else {
				store = s
				defer store.Close()
			}
		}
	}

	summary, err := loadRun(ctx, store, args[0])
	if err != nil {
		return err
	}

	gen := report.Generator{OutputDir: cfg.Run.OutputDir, Title: cfg.Report.Title}
	if store != nil && !noTrend && cfg.Report.TrendRuns > 1 {
		trend, err := store.Trend(ctx, cfg.Report.TrendRuns)
		if err != nil {
			logger.Warn("read run history", zap.Error(err))
		} else if len(trend) > 1 {
			gen.Trend = trend
		}
	}
	path, err := gen.Generate(summary)
	if err != nil {
		return err
	}
	return output.Print(ReportResult{RunID: summary.RunID, Report: path})
}

// loadRun treats arg as a summary file when it exists, otherwise as a run ID
// in the history store.
func loadRun(ctx context.Context, store *history.Store, arg string) (*model.RunSummary, error) {
	if _, err := os.Stat(arg); err == nil {
		return report.LoadSummary(arg)
	}
	if store == nil {
		return nil, fmt.Errorf("%s: no such summary file and no run history", arg)
	}
	summary, err := store.Get(ctx, arg)
	if errors.Is(err, history.ErrNotFound) {
		return nil, fmt.Errorf("%s: no such summary file or stored run", arg)
	}
	return summary, err
}
