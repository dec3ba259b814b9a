// Package diff computes the ordered change set between the desired tree and
// the stored snapshot.
//
// Both trees are flattened to leaf paths, with the volatile top-level keys
// (dateModified, imports) excluded, and classified into added, changed and
// removed. Every entry is recorded at immediate-parent granularity: the leaf
// path minus its terminal segment, or the path itself when it has a single
// segment. Sibling leaf changes under one parent therefore collapse into a
// single entry, which is the dispatch unit downstream.
//
// Each category is deduplicated and sorted deepest first so child mutations
// are observed before their parent is considered settled. Ties are broken
// lexically to keep output deterministic.
package diff
