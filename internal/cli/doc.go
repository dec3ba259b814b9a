// Package cli provides output utilities shared by the arbor commands.
//
// It covers the three concerns every command needs and nothing else:
//
//   - Output formats: values and summaries render as YAML, JSON or a
//     styled table, selected with the --output flag.
//   - Progress: long operations run behind a spinner unless quiet mode
//     is enabled.
//   - Messages: success, warning and error lines share one look across
//     commands.
//
// The package writes to the io.Writer it is handed and never talks to
// the engine directly, which keeps it trivially testable.
package cli
