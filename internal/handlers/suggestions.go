package handlers

import (
	"net/http"
	"strconv"

	"tangled.org/corvid.social/corvid/internal/suggestions"
)

const (
	defaultSuggestionLimit = 10
	maxSuggestionLimit     = 50
)

// SuggestionsResponse is the JSON body for the follow suggestions endpoint.
type SuggestionsResponse struct {
	Viewer      string                   `json:"viewer"`
	Suggestions []suggestions.Suggestion `json:"suggestions"`
}

// HandleSuggestions serves ranked follow suggestions for the viewer.
func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !session.Authenticated() {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := defaultSuggestionLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n > maxSuggestionLimit {
			n = maxSuggestionLimit
		}
		limit = n
	}

	ranked := h.suggester.ForViewer(r.Context(), session.Pubkey, limit)
	if ranked == nil {
		ranked = []suggestions.Suggestion{}
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Viewer:      session.Pubkey,
		Suggestions: ranked,
	})
}
