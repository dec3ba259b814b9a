package document

import (
	"errors"
	"fmt"
	"os"

	"arbor/internal/pathtree"
	"arbor/internal/vfs"

	"gopkg.in/yaml.v3"
)

const (
	// ImportsKey is the top-level key listing documents to merge into the tree.
	ImportsKey = "imports"
	// DateModifiedKey is the top-level key stamped on writes.
	DateModifiedKey = "dateModified"
)

// VolatileKeys are the top-level keys excluded from change detection.
var VolatileKeys = []string{DateModifiedKey, ImportsKey}

// ParseError reports a document that exists but cannot be decoded. It aborts
// the pass that encountered it.
type ParseError struct {
	Path string
	Err  error
}

func (e ParseError) Error() string {
	return fmt.Sprintf("parsing document %s: %v", e.Path, e.Err)
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// Decode parses raw YAML into a tree. The document root must be a mapping;
// an empty document decodes to an empty tree.
func Decode(path string, data []byte) (pathtree.Tree, error) {
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, ParseError{Path: path, Err: err}
	}
	if tree == nil {
		tree = pathtree.New()
	}
	return tree, nil
}

// Encode renders a tree as YAML. Keys serialize in sorted order so repeated
// writes of the same tree produce identical bytes.
func Encode(tree pathtree.Tree) ([]byte, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// Load reads and decodes the document at path. A missing file yields an
// empty tree, not an error.
func Load(fs vfs.FS, path string) (pathtree.Tree, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return pathtree.New(), nil
		}
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return Decode(path, data)
}

// Save encodes the tree and writes it to path, creating parent directories
// as needed.
func Save(fs vfs.FS, path string, tree pathtree.Tree) error {
	data, err := Encode(tree)
	if err != nil {
		return err
	}
	if err := vfs.WriteFile(fs, path, data); err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	return nil
}
