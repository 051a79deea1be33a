package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItem_IdentifiedBy(t *testing.T) {
	item := Item{
		ID:      "event1",
		Address: "30023:pubkey:post",
	}

	t.Run("matches event id", func(t *testing.T) {
		assert.True(t, item.IdentifiedBy("event1"))
	})

	t.Run("matches addressable id", func(t *testing.T) {
		assert.True(t, item.IdentifiedBy("30023:pubkey:post"))
	})

	t.Run("rejects other ids", func(t *testing.T) {
		assert.False(t, item.IdentifiedBy("event2"))
	})

	t.Run("empty id never matches", func(t *testing.T) {
		assert.False(t, item.IdentifiedBy(""))
		assert.False(t, Item{ID: "event1"}.IdentifiedBy(""))
	})
}

func TestDedupe(t *testing.T) {
	now := time.Now()
	items := []Item{
		{ID: "a", PublishedAt: now},
		{ID: "b", PublishedAt: now.Add(time.Minute)},
		{ID: "a", PublishedAt: now.Add(2 * time.Minute)},
		{ID: "c", PublishedAt: now},
	}

	out := Dedupe(items)
	assert.Len(t, out, 3)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "b", out[1].ID)
	assert.Equal(t, "c", out[2].ID)
	// First occurrence wins
	assert.Equal(t, now, out[0].PublishedAt)
}

func TestFilterOptions_Normalize(t *testing.T) {
	t.Run("valid options pass through", func(t *testing.T) {
		opts := FilterOptions{
			Sort:       SortAscending,
			NSFW:       FlagOnly,
			Repost:     FlagHide,
			Moderation: ModerationOnlyBlocked,
			Trust:      TrustExclude,
			Scope:      ScopeLocal,
		}
		assert.Equal(t, opts, opts.Normalize())
	})

	t.Run("unknown modes fall back to defaults", func(t *testing.T) {
		opts := FilterOptions{
			Sort:       "sideways",
			NSFW:       "maybe",
			Repost:     "",
			Moderation: "anarchy",
			Trust:      "blind",
			Scope:      "mars",
		}
		assert.Equal(t, DefaultFilterOptions(), opts.Normalize())
	})

	t.Run("zero value normalizes to defaults", func(t *testing.T) {
		assert.Equal(t, DefaultFilterOptions(), FilterOptions{}.Normalize())
	})
}

func TestSession_Eligibility(t *testing.T) {
	tests := []struct {
		name       string
		session    Session
		trust      bool
		moderation bool
	}{
		{"anonymous", Session{}, false, false},
		{"plain viewer", Session{Pubkey: "pk"}, false, false},
		{"admin", Session{Pubkey: "pk", IsAdmin: true}, true, true},
		{"owner", Session{Pubkey: "pk", IsOwner: true}, true, true},
		{"enhanced trust only", Session{Pubkey: "pk", EnhancedTrust: true}, true, false},
		{"enhanced moderation only", Session{Pubkey: "pk", EnhancedModeration: true}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.trust, tt.session.TrustEligible())
			assert.Equal(t, tt.moderation, tt.session.ModerationEligible())
		})
	}
}

func TestSession_Authenticated(t *testing.T) {
	assert.False(t, Session{}.Authenticated())
	assert.True(t, Session{Pubkey: "pk"}.Authenticated())
}
