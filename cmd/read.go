package cmd

import (
	"fmt"
	"time"

	"github.com/mj1618/stepwright/internal/locator"
	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/spf13/cobra"
)

var readCmd = &cobra.Command{
	Use:   "read <url>",
	Short: "List the elements input and click steps can target on a page",
	Long: `Open a URL and list the candidate elements the locator extracts from the page,
each with its role, text and CSS selector. With --hint the candidates are
ranked the way an input or click step would rank them.

Examples:
  stepwright read https://www.baidu.com --roles input,btn
  stepwright read https://www.baidu.com --hint 搜索框 --purpose input`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)
	readCmd.Flags().String("roles", "", "Comma-separated roles to include (e.g. \"btn,input,lnk\")")
	readCmd.Flags().String("text", "", "Only include elements whose text contains this")
	readCmd.Flags().String("hint", "", "Rank candidates against a step target such as \"登录按钮\"")
	readCmd.Flags().String("purpose", "click", "Purpose for --hint: click or input")
	readCmd.Flags().Bool("all", false, "Include hidden elements")
	addBrowserFlags(readCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	roles, _ := cmd.Flags().GetString("roles")
	text, _ := cmd.Flags().GetString("text")
	hint, _ := cmd.Flags().GetString("hint")
	purposeName, _ := cmd.Flags().GetString("purpose")
	all, _ := cmd.Flags().GetBool("all")

	purpose, err := parsePurpose(purposeName)
	if err != nil {
		return err
	}
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
	res.Elements = filterCandidates(page.Elements, splitList(roles), text, hint, purpose, all)
	return output.Print(res)
}

func parsePurpose(s string) (locator.Purpose, error) {
	switch s {
	case "click", "":
		return locator.PurposeClick, nil
	case "input":
		return locator.PurposeInput, nil
	default:
		return 0, fmt.Errorf("unsupported purpose: %s (use click or input)", s)
	}
}

// filterCandidates applies the read filters. With a hint the result is the
// locator's ranking, best first.
func filterCandidates(elements []model.Element, roles []string, text, hint string, purpose locator.Purpose, all bool) []model.Element {
	if !all {
		elements = model.FilterVisible(elements)
	}
	elements = model.FilterElements(elements, roles)
	elements = model.FilterByText(elements, text)
	if hint == "" {
		return elements
	}
	matches := locator.Find(elements, hint, purpose)
	ranked := make([]model.Element, len(matches))
	for i, m := range matches {
		ranked[i] = m.Element
	}
	return ranked
}
