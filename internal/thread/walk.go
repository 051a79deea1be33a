package thread

import (
	"context"

	"github.com/nbd-wtf/go-nostr"
)

// Fetcher retrieves a single document by event id. A nil result means the
// document could not be found; that is a normal outcome, not an error.
type Fetcher interface {
	FetchEvent(ctx context.Context, id string) *nostr.Event
}

// Lineage is the result of an ancestor walk: the chain of ancestors from
// nearest to furthest, and whether the walk reached the thread's origin.
type Lineage struct {
	Chain    []*nostr.Event
	Complete bool
}

// Parent returns the nearest ancestor, or nil for an empty chain.
func (l Lineage) Parent() *nostr.Event {
	if len(l.Chain) == 0 {
		return nil
	}
	return l.Chain[0]
}

// Root returns the furthest ancestor reached. It is only the thread root
// when Complete is true.
func (l Lineage) Root() *nostr.Event {
	if len(l.Chain) == 0 {
		return nil
	}
	return l.Chain[len(l.Chain)-1]
}

// WalkAncestors follows references upward from start: fetch the referenced
// document, append it, and advance to that document's own first positional
// reference. The walk ends naturally when a document carries no further
// reference (Complete true), or early when a fetch misses, the context
// expires, or a reference cycles back (Complete false).
func WalkAncestors(ctx context.Context, fetcher Fetcher, start Ref) Lineage {
	if start.ID == "" {
		return Lineage{Complete: true}
	}

	var chain []*nostr.Event
	visited := make(map[string]struct{})
	ref := start

	for {
		if ctx.Err() != nil {
			return Lineage{Chain: chain}
		}
		if _, ok := visited[ref.ID]; ok {
			return Lineage{Chain: chain}
		}
		visited[ref.ID] = struct{}{}

		ev := fetcher.FetchEvent(ctx, ref.ID)
		if ev == nil {
			return Lineage{Chain: chain}
		}
		chain = append(chain, ev)

		next, ok := firstPositional(ev.Tags)
		if !ok {
			return Lineage{Chain: chain, Complete: true}
		}
		ref = next
	}
}

func firstPositional(tags nostr.Tags) (Ref, bool) {
	for _, ref := range ParseRefs(tags) {
		if ref.Kind == RefPositional {
			return ref, true
		}
	}
	return Ref{}, false
}
