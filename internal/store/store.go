// ABOUTME: KeyValueStore contract for blob persistence.
// ABOUTME: The sync ledger reads and writes its state through this interface.
package store

// KeyValueStore persists opaque blobs under string keys. The ledger is
// serialized as a single blob, read once at startup and rewritten wholesale
// on every mutation.
type KeyValueStore interface {
	// GetBlob returns the blob stored under key. The second return is false
	// when the key is absent, which is not an error.
	GetBlob(key string) ([]byte, bool, error)

	// SetBlob stores the blob under key, replacing any prior value.
	SetBlob(key string, data []byte) error

	Close() error
}
