// Package thread reconstructs comment/reply relationships from the
// reference tags attached to events: a live acceptance test for incoming
// candidates and an upward walk through ancestor references.
package thread

import (
	"github.com/nbd-wtf/go-nostr"
)

// RefKind discriminates how a reference tag was marked.
type RefKind string

const (
	// RefPositional is an unmarked reference; its meaning depends on its
	// position among the other unmarked references.
	RefPositional RefKind = "positional"
	RefRoot       RefKind = "root"
	RefReply      RefKind = "reply"
)

// Ref is one parsed reference tag. Tags are parsed once at the boundary so
// the resolution rules operate over typed records instead of raw arrays.
type Ref struct {
	Kind  RefKind
	ID    string
	Relay string
}

// ParseRefs extracts the event references from a tag list, in tag order.
// Malformed event ids are dropped, never kept. Marker values other than
// "root" and "reply" leave the reference positional.
func ParseRefs(tags nostr.Tags) []Ref {
	var refs []Ref
	for _, tag := range tags {
		if len(tag) < 2 || tag[0] != "e" || !nostr.IsValid32ByteHex(tag[1]) {
			continue
		}
		ref := Ref{Kind: RefPositional, ID: tag[1]}
		if len(tag) >= 3 {
			ref.Relay = tag[2]
		}
		if len(tag) >= 4 {
			switch tag[3] {
			case "root":
				ref.Kind = RefRoot
			case "reply":
				ref.Kind = RefReply
			}
		}
		refs = append(refs, ref)
	}
	return refs
}

// Target identifies the displayed document candidates are matched against.
type Target struct {
	// Author is the hex pubkey of the target's author.
	Author string

	// Address is the target's stable addressable id, when it has one.
	Address string

	// EventID is the id of the displayed revision.
	EventID string
}

// Addressable reports whether the target has a stable addressable id.
func (t Target) Addressable() bool {
	return t.Address != ""
}
