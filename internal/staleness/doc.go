// Package staleness decides whether the file tree changed since the last
// reconciliation pass, so unchanged trees skip re-resolving and re-diffing.
//
// The check compares current file modification times against a cached
// payload. The payload is advisory only: a pass skipped on its word is an
// optimization, never a correctness guarantee, and callers that cannot rule
// out out-of-band edits can bypass it.
//
// Payloads live in a two-tier cache: an in-process TTL LRU in front of the
// record store, so repeated passes in one process avoid store reads while
// separate runs still benefit from the last flush.
package staleness
