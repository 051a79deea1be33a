package boltstore

import (
	"path/filepath"
	"strings"
	"testing"

	"tangled.org/corvid.social/corvid/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(Options{Path: dbPath})
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func viewer(c string) string {
	return strings.Repeat(c, 64)
}

func TestPrefsStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t).PrefsStore()

	opts := models.DefaultFilterOptions()
	opts.NSFW = models.FlagShow
	opts.Sort = models.SortAscending

	require.NoError(t, store.Save(viewer("a"), opts))

	got, found := store.Get(viewer("a"))
	require.True(t, found)
	assert.Equal(t, models.FlagShow, got.NSFW)
	assert.Equal(t, models.SortAscending, got.Sort)
}

func TestPrefsStore_GetMissing(t *testing.T) {
	store := setupTestStore(t).PrefsStore()

	got, found := store.Get(viewer("b"))
	assert.False(t, found)
	assert.Equal(t, models.DefaultFilterOptions(), got)
}

func TestPrefsStore_SaveNormalizes(t *testing.T) {
	store := setupTestStore(t).PrefsStore()

	opts := models.FilterOptions{NSFW: "whatever", Trust: "bogus"}
	require.NoError(t, store.Save(viewer("c"), opts))

	got, found := store.Get(viewer("c"))
	require.True(t, found)
	assert.Equal(t, models.DefaultFilterOptions().NSFW, got.NSFW)
	assert.Equal(t, models.DefaultFilterOptions().Trust, got.Trust)
}

func TestPrefsStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t).PrefsStore()

	first := models.DefaultFilterOptions()
	first.NSFW = models.FlagShow
	require.NoError(t, store.Save(viewer("d"), first))

	second := models.DefaultFilterOptions()
	second.NSFW = models.FlagOnly
	require.NoError(t, store.Save(viewer("d"), second))

	got, found := store.Get(viewer("d"))
	require.True(t, found)
	assert.Equal(t, models.FlagOnly, got.NSFW)
	assert.Equal(t, 1, store.Count())
}

func TestPrefsStore_Delete(t *testing.T) {
	store := setupTestStore(t).PrefsStore()

	require.NoError(t, store.Save(viewer("e"), models.DefaultFilterOptions()))
	require.NoError(t, store.Delete(viewer("e")))

	_, found := store.Get(viewer("e"))
	assert.False(t, found)
	assert.Zero(t, store.Count())
}
