package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"tangled.org/corvid.social/corvid/internal/database/boltstore"

	"github.com/rs/zerolog/log"
)

// RelaysResponse is the JSON body for GET /api/relays.
type RelaysResponse struct {
	Relays []boltstore.RelayEntry `json:"relays"`
	Count  int                    `json:"count"`
}

// HandleRelaysList returns the relay registry.
func (h *Handler) HandleRelaysList(w http.ResponseWriter, r *http.Request) {
	if h.relayStore == nil {
		writeError(w, http.StatusServiceUnavailable, "relay registry not available")
		return
	}
	entries := h.relayStore.ListWithMetadata()
	writeJSON(w, http.StatusOK, RelaysResponse{Relays: entries, Count: len(entries)})
}

type relayRequest struct {
	URL string `json:"url"`
}

// HandleRelayRegister adds a relay URL to the registry. Admin only.
func (h *Handler) HandleRelayRegister(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !session.IsAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	if h.relayStore == nil {
		writeError(w, http.StatusServiceUnavailable, "relay registry not available")
		return
	}

	var req relayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if !validRelayURL(req.URL) {
		writeError(w, http.StatusBadRequest, "invalid relay URL")
		return
	}

	if err := h.relayStore.Register(req.URL); err != nil {
		log.Error().Err(err).Str("url", req.URL).Msg("Failed to register relay")
		writeError(w, http.StatusInternalServerError, "failed to register relay")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": req.URL})
}

// HandleRelayUnregister removes a relay URL from the registry. Admin only.
func (h *Handler) HandleRelayUnregister(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if !session.IsAdmin {
		writeError(w, http.StatusForbidden, "admin role required")
		return
	}
	if h.relayStore == nil {
		writeError(w, http.StatusServiceUnavailable, "relay registry not available")
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url parameter required")
		return
	}

	if err := h.relayStore.Unregister(url); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Failed to unregister relay")
		writeError(w, http.StatusInternalServerError, "failed to unregister relay")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validRelayURL(url string) bool {
	return strings.HasPrefix(url, "wss://") || strings.HasPrefix(url, "ws://")
}
