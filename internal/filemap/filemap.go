package filemap

import (
	"fmt"

	"arbor/internal/document"
	"arbor/internal/pathtree"

	"gopkg.in/yaml.v3"
)

// Map routes top-level nodes to the files that own them.
type Map struct {
	rootFile string
	entries  map[string]string
	dirty    bool
}

// encoded is the persisted form of a Map.
type encoded struct {
	Root  string            `yaml:"root"`
	Nodes map[string]string `yaml:"nodes"`
}

// New returns an empty map whose unmapped nodes route to rootFile.
func New(rootFile string) *Map {
	return &Map{
		rootFile: rootFile,
		entries:  make(map[string]string),
	}
}

// Decode restores a persisted map. The root file comes from the caller, not
// the blob, so a renamed root takes effect on load.
func Decode(rootFile string, data []byte) (*Map, error) {
	var enc encoded
	if err := yaml.Unmarshal(data, &enc); err != nil {
		return nil, fmt.Errorf("decoding file map: %w", err)
	}

	m := New(rootFile)
	for node, file := range enc.Nodes {
		m.entries[node] = file
	}
	return m, nil
}

// Encode renders the map for the record store.
func (m *Map) Encode() ([]byte, error) {
	data, err := yaml.Marshal(encoded{Root: m.rootFile, Nodes: m.entries})
	if err != nil {
		return nil, fmt.Errorf("encoding file map: %w", err)
	}
	return data, nil
}

// MapNode records file as the owner of a top-level node, overwriting any
// previous owner.
func (m *Map) MapNode(node, file string) {
	if node == "" || file == "" {
		return
	}
	if current, ok := m.entries[node]; ok && current == file {
		return
	}
	m.entries[node] = file
	m.dirty = true
}

// Resolve returns the file owning node, or the root file when unmapped.
func (m *Map) Resolve(node string) string {
	if file, ok := m.entries[node]; ok {
		return file
	}
	return m.rootFile
}

// RootFile returns the default routing target.
func (m *Map) RootFile() string {
	return m.rootFile
}

// Regenerate rebuilds the map from scratch out of each file's top-level
// keys, in file order so later files win conflicts. The synthetic imports
// key never maps. docs supplies the parsed document for a file.
func (m *Map) Regenerate(files []string, docs func(string) (pathtree.Tree, error)) error {
	rebuilt := make(map[string]string)
	for _, file := range files {
		doc, err := docs(file)
		if err != nil {
			return fmt.Errorf("regenerating file map: %w", err)
		}
		for node := range doc {
			if node == document.ImportsKey {
				continue
			}
			rebuilt[node] = file
		}
	}

	if !sameEntries(m.entries, rebuilt) {
		m.entries = rebuilt
		m.dirty = true
	}
	return nil
}

// Entries returns a copy of the node-to-file table.
func (m *Map) Entries() map[string]string {
	out := make(map[string]string, len(m.entries))
	for node, file := range m.entries {
		out[node] = file
	}
	return out
}

// Dirty reports whether the map diverged from its persisted form.
func (m *Map) Dirty() bool {
	return m.dirty
}

// MarkClean clears the dirty flag after a successful flush.
func (m *Map) MarkClean() {
	m.dirty = false
}

func sameEntries(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
