// Package document handles reading and writing the YAML documents that back
// the configuration tree.
//
// Documents decode to the pathtree shape (map[string]any). A missing file is
// not an error: it decodes to an empty document, because a referenced file
// that does not exist yet simply contributes nothing to the merged tree. A
// file that exists but does not parse is fatal to the surrounding pass and
// surfaces as a ParseError.
//
// Two top-level keys are owned by the system rather than by users:
//
//   - "imports" lists further documents to merge (see the resolver)
//   - "dateModified" records the last write stamp
//
// Both are excluded from change detection.
package document
