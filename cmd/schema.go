package cmd

import (
	"github.com/mj1618/stepwright/internal/testcase"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a test case",
	Long: `Print the JSON Schema every test case must satisfy. A case file may hold one
such object, a list of them, or an object with a "test_cases" list.`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	doc, err := testcase.Schema()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if _, err := out.Write(doc); err != nil {
		return err
	}
	_, err = out.Write([]byte("\n"))
	return err
}
