package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"arbor/internal/cli"
	"arbor/internal/events"
	"arbor/internal/reconciler"
	"arbor/internal/watcher"
	"arbor/pkg/logging"
)

var (
	watchDebounce time.Duration
	watchVerbose  bool
)

// watchCmd runs arbor as a long-lived process that reconciles the tree
// whenever a document changes on disk.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the documents and reconcile on every change",
	Long: `Runs one reconciliation pass, then keeps watching the directories of
every resolved document. Edits are soaked for a debounce interval and
applied as a single pass, so an editor writing several files triggers one
reconciliation instead of many.

The process notifies systemd of readiness when run as a service and stops
cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var observer func(events.Kind, string)
	if watchVerbose {
		observer = func(kind events.Kind, path string) {
			cli.RenderEvent(out, kind, path)
		}
	}

	eng, err := newEngine(observer)
	if err != nil {
		return err
	}
	defer eng.Close()

	// Settle once before watching, so the watcher starts from a converged
	// state and a fully resolved file list.
	res, err := eng.ApplyPendingChanges()
	if err != nil {
		return err
	}
	if err := eng.Flush(); err != nil {
		return err
	}
	if !rootQuiet {
		cli.RenderPassResult(out, res)
	}

	w := watcher.New(eng, watcher.Options{
		BaseDir:  rootConfigDir,
		Debounce: watchDebounce,
		OnPass: func(res reconciler.PassResult) {
			if !rootQuiet {
				cli.RenderPassResult(out, res)
			}
		},
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("CLI", "Could not notify the service manager: %v", err)
	} else if sent {
		logging.Debug("CLI", "Service manager notified of readiness")
	}

	if !rootQuiet {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Watching %s, interrupt to stop", rootConfigDir)))
	}

	<-ctx.Done()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if err := w.Stop(); err != nil {
		logging.Warn("CLI", "Watcher stop: %v", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "How long to soak file events before running a pass")
	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Print each dispatched change")
}
