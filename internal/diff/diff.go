package diff

import (
	"sort"

	"arbor/internal/document"
	"arbor/internal/pathtree"
)

// ChangeSet holds the paths that differ between desired and stored, at
// immediate-parent granularity, each category deduplicated and sorted
// deepest first.
type ChangeSet struct {
	Added   []string
	Changed []string
	Removed []string
}

// Empty reports whether no change was detected.
func (cs ChangeSet) Empty() bool {
	return len(cs.Added) == 0 && len(cs.Changed) == 0 && len(cs.Removed) == 0
}

// Total returns the number of recorded change units.
func (cs ChangeSet) Total() int {
	return len(cs.Added) + len(cs.Changed) + len(cs.Removed)
}

// Compute diffs desired against stored.
func Compute(desired, stored pathtree.Tree) ChangeSet {
	desiredFlat := pathtree.Flatten(stripVolatile(desired))
	storedFlat := pathtree.Flatten(stripVolatile(stored))

	added := make(map[string]struct{})
	changed := make(map[string]struct{})
	removed := make(map[string]struct{})

	for path, desiredVal := range desiredFlat {
		storedVal, exists := storedFlat[path]
		if !exists {
			added[pathtree.Parent(path)] = struct{}{}
			continue
		}
		if !pathtree.Equal(desiredVal, storedVal) {
			changed[pathtree.Parent(path)] = struct{}{}
		}
		// Visited stored leaves drop out of the working copy; whatever
		// survives the loop is gone from the desired tree.
		delete(storedFlat, path)
	}

	for path := range storedFlat {
		removed[pathtree.Parent(path)] = struct{}{}
	}

	return ChangeSet{
		Added:   ordered(added),
		Changed: ordered(changed),
		Removed: ordered(removed),
	}
}

// stripVolatile returns a shallow copy of tree without the volatile
// top-level keys. Nested keys with the same names are user data and stay.
func stripVolatile(tree pathtree.Tree) pathtree.Tree {
	work := make(pathtree.Tree, len(tree))
	for key, val := range tree {
		if isVolatile(key) {
			continue
		}
		work[key] = val
	}
	return work
}

func isVolatile(key string) bool {
	for _, volatile := range document.VolatileKeys {
		if key == volatile {
			return true
		}
	}
	return false
}

// ordered flattens the set into a slice sorted deepest first, with a lexical
// tiebreak for equal depths.
func ordered(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}

	paths := make([]string, 0, len(set))
	for path := range set {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool {
		di, dj := pathtree.Depth(paths[i]), pathtree.Depth(paths[j])
		if di != dj {
			return di > dj
		}
		return paths[i] < paths[j]
	})

	return paths
}
