// ABOUTME: Charm KV implementation of the KeyValueStore contract.
// ABOUTME: Cloud-synced backend with read-only fallback and sync-after-write.
package store

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/kv"
	badger "github.com/dgraph-io/badger/v3"
)

const (
	charmDBName = "healthcal"
	charmHost   = "charm.2389.dev"
)

// CharmStore persists blobs in Charm KV, synced to Charm Cloud.
type CharmStore struct {
	kv       *kv.KV
	autoSync bool
	mu       sync.Mutex
}

// OpenCharm opens the Charm-backed store, pulling remote state on startup.
// When another process holds the database lock the store opens read-only
// and writes fail with an explanatory error.
func OpenCharm() (*CharmStore, error) {
	if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
		return nil, fmt.Errorf("set charm host: %w", err)
	}

	db, err := kv.OpenWithDefaultsFallback(charmDBName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}

	s := &CharmStore{kv: db, autoSync: true}

	if !db.IsReadOnly() {
		_ = db.Sync()
	}
	return s, nil
}

// GetBlob returns the blob stored under key, or absent.
func (s *CharmStore) GetBlob(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.kv.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return data, true, nil
}

// SetBlob stores the blob under key and syncs to the cloud.
func (s *CharmStore) SetBlob(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kv.IsReadOnly() {
		return fmt.Errorf("cannot write: database is locked by another process (MCP server?)")
	}

	if err := s.kv.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if s.autoSync {
		_ = s.kv.Sync()
	}
	return nil
}

// SetAutoSync enables or disables cloud sync after writes.
func (s *CharmStore) SetAutoSync(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoSync = enabled
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (s *CharmStore) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kv.Reset()
}

// Close closes the KV database connection.
func (s *CharmStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv != nil {
		return s.kv.Close()
	}
	return nil
}
