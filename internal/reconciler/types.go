package reconciler

import (
	"time"

	"arbor/internal/events"
	"arbor/internal/store"
	"arbor/internal/vfs"
)

// Default values applied by New for zero-value options.
const (
	// DefaultRootFile is the root document name inside the configuration
	// filesystem.
	DefaultRootFile = "config.yaml"

	// DefaultStorePath is where the SQLite record store lives when the
	// caller does not supply a store.
	DefaultStorePath = "arbor.db"
)

// Options configures an Engine.
type Options struct {
	// FS is the filesystem holding the configuration documents. Imports
	// cannot escape it. Defaults to the current working directory.
	FS vfs.FS

	// Store persists the snapshot, the file map and staleness payloads.
	// When nil, a SQLite store is opened at StorePath.
	Store store.Store

	// RootFile is the root document path, relative to FS.
	RootFile string

	// StorePath locates the SQLite store used when Store is nil.
	StorePath string

	// StalenessTTL bounds how long a staleness payload stays valid.
	// Defaults to thirty days.
	StalenessTTL time.Duration

	// StrictImports makes an import escaping FS fail the resolution
	// instead of being skipped with a warning.
	StrictImports bool

	// DisableStalenessCache forces every pass to diff, regardless of
	// file modification times.
	DisableStalenessCache bool

	// Observer, when set, is told about every dispatched event before the
	// subscriptions run. It must not call back into the engine.
	Observer func(kind events.Kind, path string)
}

// PassResult summarizes one reconciliation pass.
type PassResult struct {
	// ID identifies the pass in logs.
	ID string

	// Added, Updated and Removed count dispatched events by kind.
	Added   int
	Updated int
	Removed int

	// Processed counts the paths examined, including silent no-ops.
	Processed int

	// Skipped reports that the staleness check elided the pass.
	Skipped bool

	// Duration is the wall time the pass took.
	Duration time.Duration
}

// Total returns the number of events the pass dispatched.
func (r PassResult) Total() int {
	return r.Added + r.Updated + r.Removed
}

// passState is the scope of one pass: its identity and the set of paths
// already dispatched within it.
type passState struct {
	id        string
	processed map[string]bool
	result    PassResult
}
