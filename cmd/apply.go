package cmd

import (
	"github.com/spf13/cobra"

	"arbor/internal/cli"
	"arbor/internal/events"
	"arbor/internal/reconciler"
)

var applyVerbose bool

// applyCmd runs one reconciliation pass: every divergence between the
// documents and the stored snapshot is dispatched and the snapshot is
// brought up to date.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply pending document changes to the stored state",
	Long: `Resolves the documents into the desired tree, diffs it against the
stored snapshot and applies every divergence as an ordered series of add,
update and remove events. Removals settle first, then changes, then
additions. A pass that finds the documents untouched since the last run is
skipped outright.

Pass --verbose to print each dispatched change.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var observer func(events.Kind, string)
	if applyVerbose {
		observer = func(kind events.Kind, path string) {
			cli.RenderEvent(out, kind, path)
		}
	}

	eng, err := newEngine(observer)
	if err != nil {
		return err
	}
	defer eng.Close()

	// The spinner and the event echo would fight over the terminal.
	quiet := rootQuiet || applyVerbose

	var res reconciler.PassResult
	err = cli.WithSpinner("Reconciling...", quiet, func() error {
		var passErr error
		res, passErr = eng.ApplyPendingChanges()
		if passErr != nil {
			return passErr
		}
		return eng.Flush()
	})
	if err != nil {
		return err
	}

	if !rootQuiet {
		cli.RenderPassResult(out, res)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().BoolVarP(&applyVerbose, "verbose", "v", false, "Print each dispatched change")
}
