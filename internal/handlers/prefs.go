package handlers

import (
	"encoding/json"
	"net/http"

	"tangled.org/corvid.social/corvid/internal/models"

	"github.com/rs/zerolog/log"
)

// PreferencesResponse is the JSON body for GET /api/preferences.
type PreferencesResponse struct {
	Options models.FilterOptions `json:"options"`
	Stored  bool                 `json:"stored"`
}

// HandlePreferencesGet returns the viewer's stored filter options, or the
// defaults when nothing is stored.
func (h *Handler) HandlePreferencesGet(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !session.Authenticated() {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.prefsStore == nil {
		writeError(w, http.StatusServiceUnavailable, "preferences not available")
		return
	}

	opts, found := h.prefsStore.Get(session.Pubkey)
	writeJSON(w, http.StatusOK, PreferencesResponse{Options: opts, Stored: found})
}

// HandlePreferencesPut stores the viewer's filter options as their new
// per-request defaults. Unknown values are normalized away, not rejected.
func (h *Handler) HandlePreferencesPut(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !session.Authenticated() {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if h.prefsStore == nil {
		writeError(w, http.StatusServiceUnavailable, "preferences not available")
		return
	}

	var opts models.FilterOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := h.prefsStore.Save(session.Pubkey, opts); err != nil {
		log.Error().Err(err).Msg("Failed to save preferences")
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}

	writeJSON(w, http.StatusOK, PreferencesResponse{Options: opts.Normalize(), Stored: true})
}
