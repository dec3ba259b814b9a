package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"arbor/internal/cli"
)

// removeCmd deletes a configuration path from its owning document and
// dispatches the resulting removal events.
var removeCmd = &cobra.Command{
	Use:     "remove <path>",
	Aliases: []string{"rm"},
	Short:   "Remove a configuration path",
	Long: `Removes the value at a dot-separated configuration path from the
document that owns it. Removing a subtree dispatches removal events for
the subtree and every path nested under it. Removing a path that does not
exist is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Remove(args[0]); err != nil {
		return err
	}
	if err := eng.Flush(); err != nil {
		return err
	}

	if !rootQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %s", args[0])))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
