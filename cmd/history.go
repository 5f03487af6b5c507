package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/stepwright/internal/history"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past runs with their pass rate",
	Long: `List runs recorded in the history database, newest first. With --flaky,
list the cases that both passed and failed across the stored runs instead.

Examples:
  stepwright history --limit 5
  stepwright history --flaky --format json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 20, "Max runs to list")
	historyCmd.Flags().Bool("flaky", false, "List cases with mixed outcomes")
	historyCmd.Flags().String("db", "", "History database (default from config)")
}

// HistoryEntry is one line of `history` output.
type HistoryEntry struct {
	model.RunRecord `yaml:",inline"`
	PassRate        string `yaml:"pass_rate" json:"pass_rate"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	flaky, _ := cmd.Flags().GetBool("flaky")
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = appConfig.Report.HistoryPath
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("no run history at %s", path)
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if flaky {
		stats, err := store.FlakyCases(cmd.Context())
		if err != nil {
			return err
		}
		return output.Print(stats)
	}

	records, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return output.Print(historyEntries(records))
}

func historyEntries(records []model.RunRecord) []HistoryEntry {
	entries := make([]HistoryEntry, len(records))
	for i, r := range records {
		entries[i] = HistoryEntry{RunRecord: r, PassRate: fmt.Sprintf("%.1f%%", r.PassRate()*100)}
	}
	return entries
}
