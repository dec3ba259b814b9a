package staleness

import (
	"time"

	"arbor/internal/vfs"
)

// DefaultTTL bounds how long a cached payload stays trusted.
const DefaultTTL = 30 * 24 * time.Hour

// IsStale reports whether the files diverge from the cached modification
// times. An empty cache, a file absent from the cache, a newer modification
// time or a recorded file that disappeared all count as stale. A file that
// was missing at snapshot time and is still missing does not.
func IsStale(fs vfs.FS, cached map[string]time.Time, files []string) bool {
	if len(cached) == 0 {
		return true
	}

	for _, file := range files {
		recorded, ok := cached[file]
		if !ok {
			return true
		}
		current, err := vfs.ModTime(fs, file)
		if err != nil {
			if recorded.IsZero() {
				continue
			}
			return true
		}
		if recorded.IsZero() || current.After(recorded) {
			return true
		}
	}

	return false
}

// Snapshot records the current modification time of every file. Files that
// cannot be inspected are recorded with a zero time, marking them as
// known-missing.
func Snapshot(fs vfs.FS, files []string) map[string]time.Time {
	times := make(map[string]time.Time, len(files))
	for _, file := range files {
		mtime, err := vfs.ModTime(fs, file)
		if err != nil {
			times[file] = time.Time{}
			continue
		}
		times[file] = mtime
	}
	return times
}
