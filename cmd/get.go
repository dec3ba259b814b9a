package cmd

import (
	"arbor/internal/cli"

	"github.com/spf13/cobra"
)

var (
	getStored bool
	getOutput string
)

// getCmd prints the value at a configuration path. By default it reads the
// desired tree, which is what the documents currently say.
var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the value at a configuration path",
	Long: `Prints the value stored at a dot-separated configuration path, for
example 'agents.alpha.model'. Paths addressing a whole subtree print it as
YAML.

By default the value comes from the documents on disk. Pass --stored to
read the stored snapshot instead, which is useful for inspecting what the
last reconciliation pass recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateOutputFormat(getOutput); err != nil {
		return err
	}

	eng, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	value, err := eng.Get(args[0], !getStored)
	if err != nil {
		return err
	}

	return cli.PrintValue(cmd.OutOrStdout(), value, cli.OutputFormat(getOutput))
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().BoolVar(&getStored, "stored", false, "Read from the stored snapshot instead of the documents")
	getCmd.Flags().StringVarP(&getOutput, "output", "o", "table", "Output format (table, json, yaml)")
}
