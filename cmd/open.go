package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <url>",
	Short: "Open a URL in the browser and print the page snapshot",
	Long: `Navigate to a URL, wait for the document to be ready, and print its URL,
title and optionally its visible text. Useful for checking what verify steps
will see.

Examples:
  stepwright open https://www.baidu.com
  stepwright open www.example.com --text --headful`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().Bool("text", false, "Include the visible page text")
	addBrowserFlags(openCmd)
}

// normalizeURL adds https:// to bare hosts.
func normalizeURL(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") || strings.HasPrefix(s, "about:") || strings.HasPrefix(s, "data:") {
		return s
	}
	return "https://" + s
}

func runOpen(cmd *cobra.Command, args []string) error {
	withText, _ := cmd.Flags().GetBool("text")
	cfg := appConfig
	applyBrowserFlags(cmd, cfg)

	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	b, err := launch(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := eng.executor.Execute(ctx, b, model.Navigate(normalizeURL(args[0]))); err != nil {
		return err
	}
	page, err := eng.executor.Cache().Page(ctx, b)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}

	res := output.NewPageResult(page.State, time.Now().Unix())
	if withText {
		res.Text = page.State.Text
	}
	return output.Print(res)
}
