package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/nbd-wtf/go-nostr"
)

// TrustResponse is the JSON body for GET /api/trust/{pubkey}.
// Score is rendered as a string because direct relations carry infinite
// scores, which JSON numbers cannot express.
type TrustResponse struct {
	Pubkey    string  `json:"pubkey"`
	Root      string  `json:"root"`
	Score     string  `json:"score"`
	InWoT     bool    `json:"in_wot"`
	Threshold float64 `json:"threshold"`
}

// HandleTrust computes the trust score of a pubkey inside a freshly built
// graph. The graph root is the site owner by default, or the viewer when
// root=personal is requested by an eligible session.
func (h *Handler) HandleTrust(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := h.session(r)

	pubkey := r.PathValue("pubkey")
	if !nostr.IsValidPublicKey(pubkey) {
		writeError(w, http.StatusBadRequest, "invalid pubkey")
		return
	}

	root := h.config.SiteOwner
	threshold := h.config.SiteThreshold
	if r.URL.Query().Get("root") == "personal" && session.Authenticated() && session.TrustEligible() {
		root = session.Pubkey
		threshold = h.config.PersonalThreshold
	}
	if root == "" {
		writeError(w, http.StatusServiceUnavailable, "no trust root configured")
		return
	}

	graph := h.builder.Build(ctx, root)

	writeJSON(w, http.StatusOK, TrustResponse{
		Pubkey:    pubkey,
		Root:      root,
		Score:     formatScore(graph.Score(pubkey)),
		InWoT:     graph.InWoT(threshold, pubkey),
		Threshold: threshold,
	})
}

func formatScore(score float64) string {
	switch {
	case math.IsInf(score, 1):
		return "followed"
	case math.IsInf(score, -1):
		return "muted"
	default:
		return strconv.FormatFloat(score, 'f', -1, 64)
	}
}
