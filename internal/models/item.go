// Package models defines the core data types shared across corvid:
// content items, filter options, and the viewer session context.
package models

import (
	"time"

	"github.com/nbd-wtf/go-nostr"
)

// Item represents a single piece of content aggregated from the relays.
// Identity for de-duplication is the event ID; ownership is by author only.
type Item struct {
	// ID is the event id of the current revision.
	ID string `json:"id"`

	// Address is the stable "kind:pubkey:d" identifier for addressable
	// content. Empty for plain (non-addressable) events.
	Address string `json:"address,omitempty"`

	// Author is the hex-encoded public key of the publishing actor.
	Author string `json:"author"`

	// NSFW is true when the author self-flagged the item.
	NSFW bool `json:"nsfw"`

	// CuratedNSFW is set by the visibility pipeline when the item appears
	// in the curated nsfw registry. Never set by the author.
	CuratedNSFW bool `json:"curated_nsfw,omitempty"`

	// Repost is true when the item wraps another author's event.
	Repost bool `json:"repost"`

	// CuratedRepost is set by the visibility pipeline from the repost registry.
	CuratedRepost bool `json:"curated_repost,omitempty"`

	// Local is true when the item was fetched from the site's own relay.
	Local bool `json:"local,omitempty"`

	PublishedAt time.Time `json:"published_at"`
	EditedAt    time.Time `json:"edited_at,omitempty"`

	Tags nostr.Tags `json:"tags,omitempty"`
}

// IdentifiedBy reports whether the item is addressed by the given content
// identifier, matching either the event id or the addressable id.
func (i Item) IdentifiedBy(id string) bool {
	if id == "" {
		return false
	}
	return i.ID == id || (i.Address != "" && i.Address == id)
}

// Dedupe returns items with duplicate event ids removed, keeping the first
// occurrence of each id. Input order is preserved.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}
