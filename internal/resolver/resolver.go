package resolver

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"arbor/internal/document"
	"arbor/internal/pathtree"
	"arbor/internal/vfs"
	"arbor/pkg/logging"
)

// PathSafetyError reports an import whose resolved path escapes the
// configured root.
type PathSafetyError struct {
	File   string // file naming the import
	Import string // offending reference
	Err    error
}

func (e PathSafetyError) Error() string {
	return fmt.Sprintf("import %q in %s escapes the configuration root", e.Import, e.File)
}

func (e PathSafetyError) Unwrap() error {
	return e.Err
}

// Result is the outcome of one resolution.
type Result struct {
	// Files lists every resolved document, root first, in depth-first
	// import order. Each file appears once; missing files stay listed so
	// their later appearance is noticed.
	Files []string

	// Tree is the merged desired tree.
	Tree pathtree.Tree
}

// Resolver loads documents and resolves the import graph. Parsed documents
// are memoized for the resolver's lifetime.
type Resolver struct {
	fs     vfs.FS
	strict bool
	docs   map[string]pathtree.Tree
}

// New returns a resolver over fs. With strict set, an import escaping the
// root fails the resolution instead of being skipped.
func New(fs vfs.FS, strict bool) *Resolver {
	return &Resolver{
		fs:     fs,
		strict: strict,
		docs:   make(map[string]pathtree.Tree),
	}
}

// Resolve walks the import graph starting at rootFile and returns the
// ordered file list together with the merged tree.
func (r *Resolver) Resolve(rootFile string) (*Result, error) {
	root := normalize(rootFile)

	visited := make(map[string]bool)
	var files []string
	if err := r.walk(root, visited, &files); err != nil {
		return nil, err
	}

	tree := pathtree.New()
	for _, file := range files {
		doc, err := r.Document(file)
		if err != nil {
			return nil, err
		}
		pathtree.MergeTop(tree, doc)
	}

	logging.Debug("Resolver", "Resolved %d document(s) from %s", len(files), root)
	return &Result{Files: files, Tree: tree}, nil
}

// walk loads file, records it and descends into its imports depth first. A
// file already visited, including through an import cycle, is skipped.
func (r *Resolver) walk(file string, visited map[string]bool, files *[]string) error {
	if visited[file] {
		return nil
	}

	doc, err := r.Document(file)
	if err != nil {
		return err
	}

	visited[file] = true
	*files = append(*files, file)

	for _, ref := range importsOf(file, doc) {
		resolved := resolveRef(file, ref)
		if err := r.walk(resolved, visited, files); err != nil {
			var pse PathSafetyError
			if errors.As(err, &pse) {
				if r.strict {
					return PathSafetyError{File: file, Import: ref, Err: err}
				}
				logging.Warn("Resolver", "Skipping import %q in %s: escapes the configuration root", ref, file)
				continue
			}
			return err
		}
	}

	return nil
}

// Document returns the parsed document for file, loading it on first use.
// Missing files yield an empty document. The returned tree is the memoized
// instance; mutations through it stay visible to later calls.
func (r *Resolver) Document(file string) (pathtree.Tree, error) {
	file = normalize(file)
	if doc, ok := r.docs[file]; ok {
		return doc, nil
	}

	doc, err := document.Load(r.fs, file)
	if err != nil {
		if vfs.IsEscape(err) {
			return nil, PathSafetyError{File: file, Import: file, Err: err}
		}
		return nil, err
	}

	r.docs[file] = doc
	return doc, nil
}

// Forget drops the memoized document for file so the next read hits disk.
func (r *Resolver) Forget(file string) {
	delete(r.docs, normalize(file))
}

// Reset drops every memoized document.
func (r *Resolver) Reset() {
	r.docs = make(map[string]pathtree.Tree)
}

// importsOf extracts the import references of a document. Entries that are
// not strings are dropped with a warning.
func importsOf(file string, doc pathtree.Tree) []string {
	raw, ok := doc[document.ImportsKey]
	if !ok {
		return nil
	}

	list, ok := raw.([]any)
	if !ok {
		logging.Warn("Resolver", "Ignoring %s in %s: expected a list, got %T", document.ImportsKey, file, raw)
		return nil
	}

	refs := make([]string, 0, len(list))
	for _, entry := range list {
		ref, ok := entry.(string)
		if !ok || ref == "" {
			logging.Warn("Resolver", "Ignoring non-string import entry in %s", file)
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

// resolveRef resolves an import reference against the directory of the file
// that names it. References starting with the separator resolve from the
// configuration root.
func resolveRef(file, ref string) string {
	if path.IsAbs(ref) {
		return normalize(ref)
	}
	return normalize(path.Join(path.Dir(file), ref))
}

func normalize(p string) string {
	return path.Clean(strings.TrimPrefix(p, "/"))
}
