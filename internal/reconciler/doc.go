// Package reconciler drives the configuration tree toward its desired state.
//
// # Overview
//
// The reconciler owns two representations of one hierarchical configuration
// tree: the desired tree, merged from a root document and its transitive
// imports, and the stored snapshot, the last state known to be applied.
// A reconciliation pass diffs the two and dispatches ordered, idempotent
// change events so subscribers converge on the desired state.
//
// # Architecture
//
// The engine composes the leaf packages:
//
//   - resolver: loads the import graph into a file list and merged tree
//   - diff: classifies divergence into added, changed and removed paths
//   - events: matches processed paths against subscribed patterns
//   - filemap: routes writes to the file owning each top-level node
//   - staleness: skips whole passes while nothing on disk changed
//   - store: persists the snapshot, file map and staleness payloads
//
// # Ordering
//
// A pass processes removals first, then changes, then additions. Within
// each category deeper paths run before shallower ones, and a per-pass
// processed set guarantees no path dispatches twice even when handlers
// re-enter processing for a related path.
//
// # Usage
//
//	engine, err := reconciler.New(reconciler.Options{FS: fs, Store: st})
//	if err != nil {
//	    return err
//	}
//	engine.Subscribe(events.KindUpdate, "plugins.{uid}", onPlugin, nil)
//	result, err := engine.ApplyPendingChanges()
//	if err != nil {
//	    return err
//	}
//	if err := engine.Flush(); err != nil {
//	    return err
//	}
//
// # Concurrency
//
// An Engine is not safe for concurrent use. Passes run synchronously and
// sequentially; callers that trigger passes from multiple goroutines must
// serialize them externally, one pass at a time per persisted snapshot.
package reconciler
