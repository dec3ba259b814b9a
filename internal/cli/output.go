package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	// OutputFormatTable renders values as readable text and summaries as
	// a styled table. This is the default.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatJSON renders output as indented JSON.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML renders output as YAML.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported
// output format. Returns nil if valid, or an error listing valid formats.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format: %q (valid: table, json, yaml)", format)
	}
}

// PrintValue writes a configuration value to w in the requested format.
// In table format scalars print bare and subtrees fall back to YAML, which
// reads better than a one-column table.
func PrintValue(w io.Writer, value any, format OutputFormat) error {
	switch format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding value as JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil

	case OutputFormatYAML:
		return printYAML(w, value)

	default:
		switch value.(type) {
		case nil:
			fmt.Fprintln(w, "null")
			return nil
		case map[string]any, []any:
			return printYAML(w, value)
		default:
			fmt.Fprintln(w, value)
			return nil
		}
	}
}

func printYAML(w io.Writer, value any) error {
	data, err := yaml.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value as YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// FormatError formats an error message for CLI output.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// FormatSuccess formats a success message for CLI output.
func FormatSuccess(msg string) string {
	return fmt.Sprintf("✓ %s", msg)
}

// FormatWarning formats a warning message for CLI output.
func FormatWarning(msg string) string {
	return fmt.Sprintf("⚠ %s", msg)
}
