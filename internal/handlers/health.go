package handlers

import (
	"net/http"
)

// HealthResponse is the JSON body for GET /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Relays      int    `json:"relays"`
	Preferences int    `json:"preferences"`
	Moderation  bool   `json:"moderation"`
}

// HandleHealth reports liveness and a few cheap counters.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.relayStore != nil {
		resp.Relays = h.relayStore.Count()
	}
	if h.prefsStore != nil {
		resp.Preferences = h.prefsStore.Count()
	}
	if h.moderationService != nil {
		resp.Moderation = h.moderationService.IsEnabled()
	}
	writeJSON(w, http.StatusOK, resp)
}
