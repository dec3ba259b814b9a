// Package store persists reconciliation state between runs.
//
// The engine keeps three records: the stored snapshot (last-applied tree),
// the node-to-file map, and the staleness payload. All three are opaque
// blobs behind a small key-value interface, so the engine never depends on
// the storage technology.
//
// Two implementations exist: a SQLite-backed store for real use and an
// in-memory store for tests and throwaway runs. Concurrent passes over one
// store are not supported; callers serialize access.
package store
