package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"arbor/internal/cli"
	"arbor/internal/reconciler"
)

// errUpdatesPending signals status --check found divergence. Execute maps
// it to ExitCodePending.
var errUpdatesPending = errors.New("updates pending")

var (
	statusOutput string
	statusCheck  bool
)

// statusCmd reports the divergence between the documents and the stored
// snapshot without changing anything.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending changes between the documents and the stored state",
	Long: `Shows which configuration branches would change if a pass ran now,
grouped into added, changed and removed. Paths are reduced to their top
two segments, so many edits under one branch report as one line.

With --check, exits with code 2 when changes are pending. This makes the
command usable as a guard in scripts and CI.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := cli.ValidateOutputFormat(statusOutput); err != nil {
		return err
	}

	eng, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	summary, err := eng.PendingChangeSummary()
	if err != nil {
		return err
	}
	pending := len(summary[reconciler.CategoryAdded]) > 0 ||
		len(summary[reconciler.CategoryChanged]) > 0 ||
		len(summary[reconciler.CategoryRemoved]) > 0

	out := cmd.OutOrStdout()
	switch format := cli.OutputFormat(statusOutput); format {
	case cli.OutputFormatJSON, cli.OutputFormatYAML:
		if err := cli.PrintValue(out, summary, format); err != nil {
			return err
		}
	default:
		if pending {
			cli.RenderSummary(out, summary)
		} else if !rootQuiet {
			fmt.Fprintln(out, cli.FormatSuccess("Documents and stored state are in sync"))
		}
	}

	if statusCheck && pending {
		return errUpdatesPending
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table, json, yaml)")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "Exit with code 2 when changes are pending")
}
