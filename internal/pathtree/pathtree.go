package pathtree

// Tree is the nested map structure shared by the desired tree and the stored
// snapshot. It aliases the shape the YAML codec produces so decoded documents
// can be used directly.
type Tree = map[string]any

// New returns an empty tree.
func New() Tree {
	return make(Tree)
}

// Get retrieves the value at path. It returns nil when any segment is
// missing or when an intermediate segment resolves to a scalar.
func Get(tree Tree, path string) any {
	if tree == nil || path == "" {
		return nil
	}

	current := any(tree)
	for _, segment := range Split(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		val, exists := m[segment]
		if !exists {
			return nil
		}
		current = val
	}

	return current
}

// Set writes value at path, creating intermediate subtrees as needed. A
// non-subtree value sitting on an intermediate segment is replaced by a
// subtree so the write always lands.
func Set(tree Tree, path string, value any) {
	if tree == nil || path == "" {
		return
	}

	segments := Split(path)
	current := tree
	for i := 0; i < len(segments)-1; i++ {
		next, ok := current[segments[i]].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segments[i]] = next
		}
		current = next
	}

	current[segments[len(segments)-1]] = value
}

// Delete removes the value at path. It is a no-op if the path is absent.
// Subtrees left empty by the removal are pruned so they never linger as
// phantom branches.
func Delete(tree Tree, path string) bool {
	if tree == nil || path == "" {
		return false
	}

	segments := Split(path)

	// Collect the chain of parents so empties can be pruned afterwards.
	parents := make([]map[string]any, 0, len(segments))
	current := tree
	for i := 0; i < len(segments)-1; i++ {
		parents = append(parents, current)
		next, ok := current[segments[i]].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}

	key := segments[len(segments)-1]
	if _, exists := current[key]; !exists {
		return false
	}
	delete(current, key)

	for i := len(parents) - 1; i >= 0; i-- {
		child, ok := parents[i][segments[i]].(map[string]any)
		if !ok || len(child) > 0 {
			break
		}
		delete(parents[i], segments[i])
	}

	return true
}

// Flatten walks the tree and returns a map of canonical leaf paths to their
// scalar values. Empty subtrees produce no entries.
func Flatten(tree Tree) map[string]any {
	result := make(map[string]any)
	flattenInto(tree, "", result)
	return result
}

func flattenInto(tree map[string]any, prefix string, result map[string]any) {
	for key, val := range tree {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + Delimiter + key
		}

		if nested, ok := val.(map[string]any); ok {
			flattenInto(nested, fullKey, result)
		} else {
			result[fullKey] = val
		}
	}
}

// Unflatten rebuilds a nested tree from a flat path-to-value map.
func Unflatten(flat map[string]any) Tree {
	result := New()
	for path, val := range flat {
		Set(result, path, val)
	}
	return result
}

// Clone returns a deep copy of the tree. Subtrees and slices are copied;
// scalars are shared.
func Clone(tree Tree) Tree {
	if tree == nil {
		return nil
	}
	return cloneMap(tree)
}

// CloneValue returns a deep copy of a single value of any tree kind.
func CloneValue(val any) any {
	return cloneValue(val)
}

func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneSlice(s []any) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

// MergeTop copies every top-level key of src into dst, replacing existing
// entries wholesale. Values are cloned so dst never aliases src.
func MergeTop(dst, src Tree) {
	if dst == nil || src == nil {
		return
	}
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
}

// Equal reports deep structural equality between two values. Numeric kinds
// compare by value across int, int64, uint64 and float64 so trees survive a
// round trip through the YAML codec without spurious differences.
func Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok {
			return false
		}
		return mapsEqual(va, vb)
	case []any:
		vb, ok := b.([]any)
		if !ok {
			return false
		}
		return slicesEqual(va, vb)
	default:
		if na, aNum := asFloat(a); aNum {
			if nb, bNum := asFloat(b); bNum {
				return na == nb
			}
			return false
		}
		return a == b
	}
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !Equal(va, vb) {
			return false
		}
	}
	return true
}

func slicesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
