// Package pathtree implements the nested map structure that backs both the
// desired configuration tree and the stored snapshot, together with the
// dot-separated path addressing used throughout arbor.
//
// A tree is a map[string]any whose values are either scalars (string, bool,
// nil, numeric kinds produced by the YAML codec) or nested subtrees. Paths
// address nodes as dot-joined segment sequences; segments cannot contain the
// delimiter and no escaping is supported.
//
// All operations are pure with respect to package state: they touch only the
// tree passed in. Get returns nil for any path whose intermediate segments
// are missing or non-subtree. Set creates intermediate subtrees as needed and
// overwrites regardless of the prior value kind, so scalar to subtree
// transitions (and the reverse) are legal. Delete prunes subtrees left empty
// so flattened views never report phantom branches.
package pathtree
