package cmd

import (
	"fmt"

	"github.com/mj1618/stepwright/internal/model"
	"github.com/mj1618/stepwright/internal/output"
	"github.com/mj1618/stepwright/internal/resolver"
	"github.com/mj1618/stepwright/internal/testcase"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [step...]",
	Short: "Show how steps translate to browser actions",
	Long: `Resolve natural-language steps into typed actions without opening a browser.
Steps are taken from the arguments, or from every case in --file.

Examples:
  stepwright resolve "导航到 https://www.baidu.com" "点击搜索按钮"
  stepwright resolve --file testcase/search.json --format json`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("file", "", "Resolve every step of the cases in this file or directory")
	resolveCmd.Flags().Bool("no-model", false, "Use keyword rules only, even when an LLM is configured")
}

func runResolve(cmd *cobra.Command, args []string) error {
	steps := args
	if file, _ := cmd.Flags().GetString("file"); file != "" {
		cases, err := testcase.Load(file)
		if err != nil {
			return fmt.Errorf("load test cases: %w", err)
		}
		for _, tc := range cases {
			steps = append(steps, tc.Steps...)
		}
	}
	if len(steps) == 0 {
		return fmt.Errorf("provide steps as arguments or --file")
	}

	res := resolver.New(nil, resolver.WithLogger(logger))
	if noModel, _ := cmd.Flags().GetBool("no-model"); !noModel {
		eng, err := newEngine(appConfig, logger)
		if err != nil {
			return err
		}
		res = eng.resolver
	}

	return output.Print(resolveSteps(cmd, res, steps))
}

func resolveSteps(cmd *cobra.Command, res *resolver.Resolver, steps []string) []output.ResolvedStep {
	out := make([]output.ResolvedStep, 0, len(steps))
	for _, step := range steps {
		rs := output.ResolvedStep{Step: step}
		action, err := res.Resolve(cmd.Context(), step)
		if err != nil {
			rs.ErrorKind = model.KindOf(err)
			rs.Error = err.Error()
		} else {
			rs.Action = &action
		}
		out = append(out, rs)
	}
	return out
}
