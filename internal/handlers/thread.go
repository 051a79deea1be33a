package handlers

import (
	"net/http"

	"tangled.org/corvid.social/corvid/internal/thread"

	"github.com/nbd-wtf/go-nostr"
)

// ThreadEvent is one resolved ancestor in a thread response.
type ThreadEvent struct {
	ID      string `json:"id"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// ThreadResponse is the JSON body for GET /api/thread.
type ThreadResponse struct {
	Target   string        `json:"target"`
	Chain    []ThreadEvent `json:"chain"`
	Parent   *ThreadEvent  `json:"parent,omitempty"`
	Root     *ThreadEvent  `json:"root,omitempty"`
	Complete bool          `json:"complete"`
}

// HandleThread fetches the target event and walks its ancestor references
// upward. A partial chain is a valid response: Complete reports whether the
// walk reached the thread's origin.
func (h *Handler) HandleThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if !nostr.IsValid32ByteHex(id) {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	target := h.fetcher.FetchEvent(ctx, id)
	if target == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	start := startRef(target.Tags)
	lineage := thread.WalkAncestors(ctx, h.fetcher, start)

	resp := ThreadResponse{
		Target:   target.ID,
		Chain:    make([]ThreadEvent, 0, len(lineage.Chain)),
		Complete: lineage.Complete,
	}
	for _, ev := range lineage.Chain {
		resp.Chain = append(resp.Chain, threadEvent(ev))
	}
	if parent := lineage.Parent(); parent != nil {
		pe := threadEvent(parent)
		resp.Parent = &pe
	}
	if lineage.Complete {
		if root := lineage.Root(); root != nil {
			re := threadEvent(root)
			resp.Root = &re
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func threadEvent(ev *nostr.Event) ThreadEvent {
	return ThreadEvent{ID: ev.ID, Author: ev.PubKey, Content: ev.Content}
}

// startRef picks the walk's starting reference: the target's own first
// unmarked reference tag. No reference means the target is a thread root.
func startRef(tags nostr.Tags) thread.Ref {
	for _, ref := range thread.ParseRefs(tags) {
		if ref.Kind == thread.RefPositional {
			return ref
		}
	}
	return thread.Ref{}
}
