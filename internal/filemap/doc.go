// Package filemap tracks which backing file owns each top-level node of the
// configuration tree, so writes route to the right document without
// re-scanning the import graph.
//
// Entries appear when a node is first written and are never dropped by
// normal operation. After a full reconciliation pass the map is regenerated
// from the resolved file list, which reconciles it with reality even when
// writes happened ad hoc. Nodes without an entry route to the root file.
//
// The map follows the engine's concurrency contract: one pass at a time, no
// internal locking.
package filemap
