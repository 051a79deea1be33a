package boltstore

import (
	"encoding/json"
	"fmt"
	"time"

	"tangled.org/corvid.social/corvid/internal/models"

	bolt "go.etcd.io/bbolt"
)

// storedPrefs wraps a viewer's filter options with bookkeeping metadata.
type storedPrefs struct {
	Options   models.FilterOptions `json:"options"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// PrefsStore persists per-viewer filter preferences. Stored options are
// merged as request defaults; query parameters still win per request.
type PrefsStore struct {
	db *bolt.DB
}

// Save stores the viewer's filter options, replacing any previous set.
// Options are normalized before storage so unknown values never persist.
func (s *PrefsStore) Save(pubkey string, opts models.FilterOptions) error {
	data, err := json.Marshal(storedPrefs{
		Options:   opts.Normalize(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketPreferences)
		if bucket == nil {
			return nil
		}
		return bucket.Put([]byte(pubkey), data)
	})
}

// Get returns the viewer's stored options and whether any were found.
// Unreadable records report as absent rather than failing the request.
func (s *PrefsStore) Get(pubkey string) (models.FilterOptions, bool) {
	var prefs storedPrefs
	found := false

	s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketPreferences)
		if bucket == nil {
			return nil
		}
		data := bucket.Get([]byte(pubkey))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &prefs); err == nil {
			found = true
		}
		return nil
	})

	if !found {
		return models.DefaultFilterOptions(), false
	}
	return prefs.Options.Normalize(), true
}

// Delete removes the viewer's stored options.
func (s *PrefsStore) Delete(pubkey string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketPreferences)
		if bucket == nil {
			return nil
		}
		return bucket.Delete([]byte(pubkey))
	})
}

// Count returns the number of stored preference sets.
func (s *PrefsStore) Count() int {
	count := 0
	s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketPreferences)
		if bucket == nil {
			return nil
		}
		count = bucket.Stats().KeyN
		return nil
	})
	return count
}
