// Package moderation holds mute-list bundles and the site moderator role
// service. Two bundle instances exist per request: the admin bundle (site
// moderator lists, with hard/illegal tiers) and the viewer's personal bundle.
package moderation

// Event kinds and list identifiers used for moderation lists.
const (
	// KindMuteList is the replaceable mute list event (NIP-51 kind 10000).
	KindMuteList = 10000

	// KindSet is the parameterized list set kind used for the admin
	// hard-block and illegal-block tiers (NIP-51 kind 30000).
	KindSet = 30000

	// DTagHardBlock identifies the admin hard-block set. Hard-blocked
	// content can only be seen after the viewer acknowledges a warning.
	DTagHardBlock = "corvid-hard-block"

	// DTagIllegalBlock identifies the admin illegal-block set.
	// Illegal blocks are never user-overridable.
	DTagIllegalBlock = "corvid-illegal-block"
)

// Set is a string set keyed by pubkey, content id, or file hash.
type Set map[string]struct{}

// Has reports membership. A nil Set contains nothing.
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Add inserts v. The receiver must be non-nil.
func (s Set) Add(v string) {
	s[v] = struct{}{}
}

// ListBundle is one actor's moderation lists. The personal bundle only
// populates Authors and Items; the admin bundle carries all tiers.
type ListBundle struct {
	// Authors and Items are the regular mute tier, dismissable by mode.
	Authors Set
	Items   Set

	// HardAuthors and HardItems require an explicit viewer acknowledgment
	// to bypass (handled by the presentation layer).
	HardAuthors Set
	HardItems   Set

	// IllegalAuthors and IllegalItems are applied unconditionally.
	IllegalAuthors Set
	IllegalItems   Set

	// FileHashes blocks attached media by hash.
	FileHashes Set
}

// NewListBundle returns a bundle with all sets allocated.
func NewListBundle() ListBundle {
	return ListBundle{
		Authors:        make(Set),
		Items:          make(Set),
		HardAuthors:    make(Set),
		HardItems:      make(Set),
		IllegalAuthors: make(Set),
		IllegalItems:   make(Set),
		FileHashes:     make(Set),
	}
}

// matches reports whether author or any of the ids hits the given sets.
func matches(authors, items Set, author string, ids ...string) bool {
	if authors.Has(author) {
		return true
	}
	for _, id := range ids {
		if id != "" && items.Has(id) {
			return true
		}
	}
	return false
}

// BlocksRegular reports a hit in the regular mute tier.
func (b ListBundle) BlocksRegular(author string, ids ...string) bool {
	return matches(b.Authors, b.Items, author, ids...)
}

// BlocksHard reports a hit in the hard-block tier.
func (b ListBundle) BlocksHard(author string, ids ...string) bool {
	return matches(b.HardAuthors, b.HardItems, author, ids...)
}

// BlocksIllegal reports a hit in the illegal-block tier.
func (b ListBundle) BlocksIllegal(author string, ids ...string) bool {
	return matches(b.IllegalAuthors, b.IllegalItems, author, ids...)
}

// BlocksAny reports a hit in any tier. Used by the only-blocked mode.
func (b ListBundle) BlocksAny(author string, ids ...string) bool {
	return b.BlocksRegular(author, ids...) ||
		b.BlocksHard(author, ids...) ||
		b.BlocksIllegal(author, ids...)
}

// Bundles pairs the admin and personal mute lists for one request.
type Bundles struct {
	Admin    ListBundle
	Personal ListBundle
}
