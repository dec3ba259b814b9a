// Package logging provides a structured logging system for arbor with unified
// log handling and level filtering.
//
// This package implements a logging system built on Go's standard slog package,
// providing consistent logging behavior with structured output and level filtering.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Structured Logging
//
// All log entries include:
//   - Timestamp with nanosecond precision
//   - Log level (Debug, Info, Warn, Error)
//   - Subsystem identifier for categorization
//   - Message content with optional formatting
//   - Optional error information
//
// # Usage Examples
//
//	import "arbor/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Bootstrap", "Application starting up")
//	logging.Debug("Resolver", "Loaded document from %s", path)
//	logging.Warn("Watcher", "Watched directory removed")
//	logging.Error("Store", err, "Failed to persist snapshot")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **Engine**: Reconcile pass orchestration
//   - **Resolver**: Import graph resolution and document loading
//   - **Diff**: Change set computation
//   - **Events**: Handler registration and dispatch
//   - **FileMap**: Node to backing file routing
//   - **Store**: Snapshot persistence
//   - **Staleness**: Modification time tracking
//   - **Watcher**: Filesystem change detection
//
// # Thread Safety
//
// The logging system is fully thread-safe:
//   - Safe concurrent logging from multiple goroutines
//   - Level filtering at handler level for efficiency
//   - No memory allocation for filtered-out messages
package logging
