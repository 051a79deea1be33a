package moderation

import (
	"github.com/nbd-wtf/go-nostr"
)

// ApplyMuteList folds a kind 10000 mute list event into the bundle's regular
// tier. Malformed pubkeys are dropped, never stored.
func ApplyMuteList(b *ListBundle, ev *nostr.Event) {
	if ev == nil || ev.Kind != KindMuteList {
		return
	}
	applyTags(b.Authors, b.Items, b.FileHashes, ev.Tags)
}

// ApplySet folds a kind 30000 set event into the tier selected by its d tag.
// Sets with an unrecognized d tag are ignored.
func ApplySet(b *ListBundle, ev *nostr.Event) {
	if ev == nil || ev.Kind != KindSet {
		return
	}
	switch ev.Tags.GetD() {
	case DTagHardBlock:
		applyTags(b.HardAuthors, b.HardItems, b.FileHashes, ev.Tags)
	case DTagIllegalBlock:
		applyTags(b.IllegalAuthors, b.IllegalItems, b.FileHashes, ev.Tags)
	}
}

// applyTags routes list tags into the author, item, and file-hash sets.
// "p" tags are actor identities, "e"/"a" tags are content identifiers,
// "x" tags are file hashes.
func applyTags(authors, items, hashes Set, tags nostr.Tags) {
	for _, tag := range tags {
		if len(tag) < 2 || tag[1] == "" {
			continue
		}
		switch tag[0] {
		case "p":
			if nostr.IsValidPublicKey(tag[1]) {
				authors.Add(tag[1])
			}
		case "e", "a":
			items.Add(tag[1])
		case "x":
			hashes.Add(tag[1])
		}
	}
}
