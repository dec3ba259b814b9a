// Package resolver builds the desired configuration tree from the root
// document and its transitive imports.
//
// A document's top-level "imports" key lists further documents, each resolved
// relative to the directory of the file that names it. Resolution walks the
// import graph depth first, root document first, and returns both the ordered
// file list and the merged tree. Merging is shallow per top-level key: a
// later file's key replaces an earlier file's key wholesale, never a deep
// merge.
//
// A file reached twice, including through an import cycle, resolves once and
// keeps its first position. Missing files contribute an empty document.
// Imports that escape the configured root are refused by the filesystem
// layer; the policy for them is configurable between skipping the offending
// import and failing the resolution.
//
// Parsed documents are memoized for the resolver's lifetime, so callers that
// re-read files after resolution (file map regeneration, write routing) do
// not re-invoke the parser.
package resolver
