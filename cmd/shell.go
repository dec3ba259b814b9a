package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"arbor/internal/cli"
	"arbor/internal/reconciler"
)

// shellCmd starts an interactive session against one engine instance, so
// repeated commands skip the per-invocation store and resolver setup.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive shell for inspecting and editing the configuration",
	Long: `Starts an interactive shell bound to the configuration directory.
One engine instance serves the whole session, so repeated gets and sets
skip the startup cost of the one-shot commands.

Available commands:
  get <path>           Print the value at a path
  set <path> <value>   Set the value at a path (value parsed as YAML)
  rm <path>            Remove a path
  apply                Run a reconciliation pass
  status               Show pending changes
  files                List the resolved document files
  help                 Show this list
  exit                 Leave the shell`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func runShell(cmd *cobra.Command, args []string) error {
	eng, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	completer := readline.NewPrefixCompleter(
		readline.PcItem("get"),
		readline.PcItem("set"),
		readline.PcItem("rm"),
		readline.PcItem("apply"),
		readline.PcItem("status"),
		readline.PcItem("files"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "arbor> ",
		HistoryFile:         filepath.Join(os.TempDir(), ".arbor_history"),
		AutoComplete:        completer,
		InterruptPrompt:     "^C",
		EOFPrompt:           "exit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return fmt.Errorf("initializing shell: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "arbor shell bound to %s, type 'help' for commands\n", rootConfigDir)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Discard the interrupted line; Ctrl+D or 'exit' leaves.
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("reading shell input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		if err := runShellCommand(out, eng, line); err != nil {
			fmt.Fprintln(out, cli.FormatError(err))
		}
	}

	return nil
}

// runShellCommand dispatches one shell line. Mutating commands flush
// immediately, so killing the shell never loses a confirmed edit.
func runShellCommand(out io.Writer, eng *reconciler.Engine, line string) error {
	fields := strings.Fields(line)

	switch fields[0] {
	case "get":
		if len(fields) != 2 {
			return fmt.Errorf("usage: get <path>")
		}
		value, err := eng.Get(fields[1], true)
		if err != nil {
			return err
		}
		return cli.PrintValue(out, value, cli.OutputFormatTable)

	case "set":
		if len(fields) < 3 {
			return fmt.Errorf("usage: set <path> <value>")
		}
		value, err := parseValue(strings.Join(fields[2:], " "), false)
		if err != nil {
			return err
		}
		if err := eng.Save(fields[1], value); err != nil {
			return err
		}
		if err := eng.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved %s", fields[1])))
		return nil

	case "rm":
		if len(fields) != 2 {
			return fmt.Errorf("usage: rm <path>")
		}
		if err := eng.Remove(fields[1]); err != nil {
			return err
		}
		if err := eng.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed %s", fields[1])))
		return nil

	case "apply":
		res, err := eng.ApplyPendingChanges()
		if err != nil {
			return err
		}
		if err := eng.Flush(); err != nil {
			return err
		}
		cli.RenderPassResult(out, res)
		return nil

	case "status":
		summary, err := eng.PendingChangeSummary()
		if err != nil {
			return err
		}
		pending := len(summary[reconciler.CategoryAdded]) > 0 ||
			len(summary[reconciler.CategoryChanged]) > 0 ||
			len(summary[reconciler.CategoryRemoved]) > 0
		if !pending {
			fmt.Fprintln(out, cli.FormatSuccess("Documents and stored state are in sync"))
			return nil
		}
		cli.RenderSummary(out, summary)
		return nil

	case "files":
		// Resolution fills the file list.
		if _, err := eng.IsUpdatePending(); err != nil {
			return err
		}
		for _, f := range eng.Files() {
			fmt.Fprintln(out, f)
		}
		return nil

	case "help":
		fmt.Fprint(out, `Commands:
  get <path>           Print the value at a path
  set <path> <value>   Set the value at a path (value parsed as YAML)
  rm <path>            Remove a path
  apply                Run a reconciliation pass
  status               Show pending changes
  files                List the resolved document files
  exit                 Leave the shell
`)
		return nil

	default:
		return fmt.Errorf("unknown command %q, type 'help' for commands", fields[0])
	}
}

// filterInput blocks Ctrl+Z, which readline cannot sensibly handle.
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
