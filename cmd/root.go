package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"arbor/internal/events"
	"arbor/internal/reconciler"
	"arbor/internal/vfs"
	"arbor/pkg/logging"
)

// Exit codes for CLI commands, chosen so that scripts can tell a failed
// command apart from a clean "changes pending" report.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodePending indicates status --check found pending changes.
	ExitCodePending = 2
)

// Global flags shared by every command. They describe which configuration
// tree to operate on and how chatty to be about it.
var (
	rootConfigDir  string
	rootConfigFile string
	rootStorePath  string
	rootDebug      bool
	rootQuiet      bool
	rootStrict     bool
	rootNoCache    bool
)

// rootCmd represents the base command for the arbor application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Reconcile a tree of YAML documents against its stored state",
	Long: `arbor keeps a tree of YAML configuration documents and a stored
snapshot of that tree in sync. Documents pull each other in through an
imports list, edits route back to the document that owns the edited path,
and every divergence between documents and snapshot is dispatched as an
ordered series of add, update and remove events.

Run 'arbor apply' after editing documents, 'arbor watch' to apply edits
as they happen, or 'arbor shell' for an interactive session.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelWarn
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It initializes
// and executes the root command, which in turn handles subcommands and
// flags. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "arbor version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if errors.Is(err, errUpdatesPending) {
		return ExitCodePending
	}
	return ExitCodeError
}

// newEngine builds the engine every command shares, honoring the global
// flags. The observer, when non-nil, receives each dispatched event.
func newEngine(observer func(events.Kind, string)) (*reconciler.Engine, error) {
	storePath := rootStorePath
	if storePath == "" {
		storePath = filepath.Join(rootConfigDir, reconciler.DefaultStorePath)
	}

	return reconciler.New(reconciler.Options{
		FS:                    vfs.NewRoot(rootConfigDir),
		RootFile:              rootConfigFile,
		StorePath:             storePath,
		StrictImports:         rootStrict,
		DisableStalenessCache: rootNoCache,
		Observer:              observer,
	})
}

// init registers the global flags and the subcommands that use constructor
// functions. Commands with their own flags register themselves in their
// files' init functions.
func init() {
	rootCmd.AddCommand(newVersionCmd())

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&rootConfigDir, "config-dir", "C", ".", "Directory holding the configuration documents")
	pf.StringVar(&rootConfigFile, "config", reconciler.DefaultRootFile, "Root document, relative to the configuration directory")
	pf.StringVar(&rootStorePath, "store", "", "Record store path (default: <config-dir>/"+reconciler.DefaultStorePath+")")
	pf.BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	pf.BoolVarP(&rootQuiet, "quiet", "q", false, "Suppress non-essential output")
	pf.BoolVar(&rootStrict, "strict-imports", false, "Fail resolution when an import escapes the configuration directory")
	pf.BoolVar(&rootNoCache, "no-staleness-cache", false, "Diff on every pass regardless of file modification times")
}
