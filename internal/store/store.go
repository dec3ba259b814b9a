package store

// Store is the key-value record store backing the persisted snapshot, the
// node-to-file map and the staleness payload.
type Store interface {
	// Get returns the record for key. The second return is false when the
	// key has never been written.
	Get(key string) ([]byte, bool, error)

	// Set writes the record for key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes the record for key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases underlying resources.
	Close() error
}

// Record keys used by the reconciliation engine.
const (
	KeySnapshot  = "snapshot"
	KeyFileMap   = "filemap"
	KeyStaleness = "staleness"
)
