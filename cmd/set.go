package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"arbor/internal/cli"
)

var setJSON bool

// setCmd writes a value at a configuration path, routes it into the
// document owning that path and dispatches the resulting change events.
var setCmd = &cobra.Command{
	Use:   "set <path> <value>",
	Short: "Set the value at a configuration path",
	Long: `Sets the value at a dot-separated configuration path and saves it to
the document that owns the path's top-level node. New top-level nodes land
in the root document.

The value is parsed as YAML, so bare scalars keep their type: '8080' is a
number, 'true' a boolean, and quoted strings stay strings. Flow syntax
spells out lists and maps, for example '{model: opus, stream: true}'.
Pass --json to parse the value as JSON instead.`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func runSet(cmd *cobra.Command, args []string) error {
	value, err := parseValue(args[1], setJSON)
	if err != nil {
		return err
	}

	eng, err := newEngine(nil)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.Save(args[0], value); err != nil {
		return err
	}
	if err := eng.Flush(); err != nil {
		return err
	}

	if !rootQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %s", args[0])))
	}
	return nil
}

// parseValue interprets a value argument. A value that parses to nil would
// delete the path, which remove exists for, so it is rejected here.
func parseValue(raw string, asJSON bool) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("empty value, use 'arbor remove' to delete a path")
	}

	var value any
	if asJSON {
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("parsing value as JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return nil, fmt.Errorf("parsing value: %w", err)
		}
	}

	if value == nil {
		return nil, errors.New("value parses to null, use 'arbor remove' to delete a path")
	}
	return value, nil
}

func init() {
	rootCmd.AddCommand(setCmd)

	setCmd.Flags().BoolVar(&setJSON, "json", false, "Parse the value as JSON instead of YAML")
}
