// Package curated models the externally maintained nsfw/repost registries:
// NIP-51 sets of addressable content identifiers published by the site
// curator. Registries are read-only overlays for the visibility pipeline.
package curated

import (
	"github.com/nbd-wtf/go-nostr"
)

// KindSet is the parameterized list set kind carrying a registry (NIP-51).
const KindSet = 30000

// Kind names a curated registry.
type Kind string

const (
	KindNSFW   Kind = "nsfw"
	KindRepost Kind = "repost"
)

// DTag returns the d-tag identifying this registry's set event.
func (k Kind) DTag() string {
	return "corvid-registry-" + string(k)
}

// Registry is a set of addressable content identifiers.
type Registry map[string]struct{}

// Contains reports whether the addressable id is registered.
// A nil registry contains nothing.
func (r Registry) Contains(address string) bool {
	if address == "" {
		return false
	}
	_, ok := r[address]
	return ok
}

// FromEvent extracts a registry from a set event. Only "a" tags count;
// anything else in the set is ignored. A nil or mismatched event yields an
// empty registry, not an error.
func FromEvent(ev *nostr.Event, kind Kind) Registry {
	reg := make(Registry)
	if ev == nil || ev.Kind != KindSet || ev.Tags.GetD() != kind.DTag() {
		return reg
	}
	for _, tag := range ev.Tags {
		if len(tag) >= 2 && tag[0] == "a" && tag[1] != "" {
			reg[tag[1]] = struct{}{}
		}
	}
	return reg
}
