package pathtree

import "strings"

// Delimiter separates path segments in their canonical string form.
const Delimiter = "."

// Split breaks a canonical path into its segments. An empty path yields nil.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Delimiter)
}

// Join assembles segments into a canonical path.
func Join(segments ...string) string {
	return strings.Join(segments, Delimiter)
}

// Depth returns the number of segments in the path.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Delimiter) + 1
}

// Parent returns the path with its terminal segment removed. A single-segment
// path is its own unit of change, so Parent returns it unchanged.
func Parent(path string) string {
	idx := strings.LastIndex(path, Delimiter)
	if idx < 0 {
		return path
	}
	return path[:idx]
}

// Truncate keeps at most n leading segments of the path.
func Truncate(path string, n int) string {
	if n <= 0 {
		return ""
	}
	segments := Split(path)
	if len(segments) <= n {
		return path
	}
	return Join(segments[:n]...)
}

// First returns the leading segment of the path.
func First(path string) string {
	idx := strings.Index(path, Delimiter)
	if idx < 0 {
		return path
	}
	return path[:idx]
}
