package boltstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelayStore_Register(t *testing.T) {
	store := setupTestStore(t).RelayStore()

	t.Run("register new relay", func(t *testing.T) {
		require.NoError(t, store.Register("wss://relay.example.com"))
		assert.True(t, store.IsRegistered("wss://relay.example.com"))
	})

	t.Run("register is idempotent", func(t *testing.T) {
		require.NoError(t, store.Register("wss://relay2.example.com"))
		require.NoError(t, store.Register("wss://relay2.example.com"))

		count := 0
		for _, url := range store.List() {
			if url == "wss://relay2.example.com" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestRelayStore_Unregister(t *testing.T) {
	store := setupTestStore(t).RelayStore()

	require.NoError(t, store.Register("wss://gone.example.com"))
	require.NoError(t, store.Unregister("wss://gone.example.com"))

	assert.False(t, store.IsRegistered("wss://gone.example.com"))

	// Unregistering a missing relay is a no-op
	require.NoError(t, store.Unregister("wss://never.example.com"))
}

func TestRelayStore_ListWithMetadata(t *testing.T) {
	store := setupTestStore(t).RelayStore()

	require.NoError(t, store.Register("wss://a.example.com"))
	require.NoError(t, store.Register("wss://b.example.com"))

	entries := store.ListWithMetadata()
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.NotEmpty(t, entry.URL)
		assert.False(t, entry.RegisteredAt.IsZero())
	}
	assert.Equal(t, 2, store.Count())
}
