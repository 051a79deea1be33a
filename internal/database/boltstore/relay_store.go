package boltstore

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

// RelayEntry represents one registered relay.
type RelayEntry struct {
	URL          string    `json:"url"`
	RegisteredAt time.Time `json:"registered_at"`
}

// RelayStore persists the relay registry: the set of relay URLs the pool
// reads from.
type RelayStore struct {
	db *bolt.DB
}

// Register adds a relay URL to the registry.
// If the URL already exists, this is a no-op.
func (s *RelayStore) Register(url string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketRelayRegistry)
		if bucket == nil {
			return nil
		}

		if bucket.Get([]byte(url)) != nil {
			// Already registered, no-op
			return nil
		}

		data, err := json.Marshal(RelayEntry{
			URL:          url,
			RegisteredAt: time.Now(),
		})
		if err != nil {
			return err
		}
		return bucket.Put([]byte(url), data)
	})
}

// Unregister removes a relay URL from the registry.
func (s *RelayStore) Unregister(url string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketRelayRegistry)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(url))
	})
}

// IsRegistered checks if a relay URL is in the registry.
func (s *RelayStore) IsRegistered(url string) bool {
	var registered bool

	s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketRelayRegistry)
		if bucket == nil {
			return nil
		}
		registered = bucket.Get([]byte(url)) != nil
		return nil
	})

	return registered
}

// List returns all registered relay URLs.
func (s *RelayStore) List() []string {
	var urls []string

	s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketRelayRegistry)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			urls = append(urls, string(k))
			return nil
		})
	})

	return urls
}

// ListWithMetadata returns all registered relays with their metadata.
func (s *RelayStore) ListWithMetadata() []RelayEntry {
	var entries []RelayEntry

	s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketRelayRegistry)
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, v []byte) error {
			var entry RelayEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				// Fallback for simple keys without metadata
				entry = RelayEntry{URL: string(k)}
			}
			entries = append(entries, entry)
			return nil
		})
	})

	return entries
}

// Count returns the number of registered relays.
func (s *RelayStore) Count() int {
	count := 0
	s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketRelayRegistry)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})
	return count
}
