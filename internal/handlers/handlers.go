// Package handlers implements the JSON API over the trust, visibility, and
// thread components. Authentication happens upstream: a fronting proxy
// verifies event signatures and injects the viewer's pubkey as a header,
// so these handlers only derive roles and never check credentials.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"tangled.org/corvid.social/corvid/internal/curated"
	"tangled.org/corvid.social/corvid/internal/database/boltstore"
	"tangled.org/corvid.social/corvid/internal/models"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/suggestions"
	"tangled.org/corvid.social/corvid/internal/thread"
	"tangled.org/corvid.social/corvid/internal/trust"

	"github.com/nbd-wtf/go-nostr"
	"github.com/rs/zerolog/log"
)

// Header names the fronting proxy uses to pass the verified viewer context.
const (
	HeaderViewerPubkey       = "X-Viewer-Pubkey"
	HeaderEnhancedTrust      = "X-Enhanced-Trust"
	HeaderEnhancedModeration = "X-Enhanced-Moderation"
)

// Config holds handler configuration options
type Config struct {
	// SiteOwner is the site operator's pubkey: the root of the site-wide
	// trust graph and the owner role.
	SiteOwner string

	// SiteThreshold and PersonalThreshold are the WoT score cutoffs for
	// the two graphs.
	SiteThreshold     float64
	PersonalThreshold float64

	// FeedLimit caps the relay fetch per feed request. Zero means the
	// default of 200.
	FeedLimit int
}

// Fetcher is the relay collaborator boundary the handlers depend on.
// relay.Client implements it; tests substitute a function-field fake.
type Fetcher interface {
	FetchRelations(ctx context.Context, pubkey string) trust.Relations
	FetchEvent(ctx context.Context, id string) *nostr.Event
	FetchCurated(ctx context.Context, curator string, kind curated.Kind) curated.Registry
	FetchMuteLists(ctx context.Context, admins []string, viewer string) moderation.Bundles
	FetchDeletedIDs(ctx context.Context, items []models.Item) map[string]struct{}
	FetchArticles(ctx context.Context, limit int) []models.Item
	OpenReplyStream(ctx context.Context, target thread.Target) (<-chan *nostr.Event, error)
}

// Handler contains all HTTP handler methods and their dependencies.
// Dependencies are injected via the constructor for better testability.
type Handler struct {
	fetcher   Fetcher
	builder   *trust.Builder
	suggester *suggestions.Service
	config    Config

	// Moderation dependencies (optional)
	moderationService *moderation.Service

	// Persistence (optional)
	prefsStore *boltstore.PrefsStore
	relayStore *boltstore.RelayStore
}

// NewHandler creates a new Handler with all required dependencies.
func NewHandler(fetcher Fetcher, config Config) *Handler {
	if config.FeedLimit <= 0 {
		config.FeedLimit = 200
	}
	return &Handler{
		fetcher:   fetcher,
		builder:   trust.NewBuilder(fetcher),
		suggester: suggestions.NewService(fetcher),
		config:    config,
	}
}

// SetModeration configures the handler with the moderator role service.
func (h *Handler) SetModeration(svc *moderation.Service) {
	h.moderationService = svc
}

// SetStores configures the handler with the preference and relay stores.
func (h *Handler) SetStores(prefs *boltstore.PrefsStore, relays *boltstore.RelayStore) {
	h.prefsStore = prefs
	h.relayStore = relays
}

// session derives the viewer's session from the proxy-injected headers.
// An invalid pubkey yields an anonymous session rather than an error.
func (h *Handler) session(r *http.Request) models.Session {
	pubkey := r.Header.Get(HeaderViewerPubkey)
	if !nostr.IsValidPublicKey(pubkey) {
		return models.Session{}
	}

	s := models.Session{
		Pubkey:             pubkey,
		IsOwner:            pubkey == h.config.SiteOwner,
		EnhancedTrust:      r.Header.Get(HeaderEnhancedTrust) == "1",
		EnhancedModeration: r.Header.Get(HeaderEnhancedModeration) == "1",
	}
	if h.moderationService != nil {
		s.IsAdmin = h.moderationService.IsAdmin(pubkey)
	}
	return s
}

// filterOptions resolves the request's filter options: stored preferences
// (when the viewer has any) overridden by query parameters, normalized.
func (h *Handler) filterOptions(r *http.Request, session models.Session) models.FilterOptions {
	opts := models.DefaultFilterOptions()
	if h.prefsStore != nil && session.Authenticated() {
		if stored, found := h.prefsStore.Get(session.Pubkey); found {
			opts = stored
		}
	}

	q := r.URL.Query()
	if v := q.Get("sort"); v != "" {
		opts.Sort = models.SortOrder(v)
	}
	if v := q.Get("nsfw"); v != "" {
		opts.NSFW = models.FlagMode(v)
	}
	if v := q.Get("reposts"); v != "" {
		opts.Repost = models.FlagMode(v)
	}
	if v := q.Get("moderation"); v != "" {
		opts.Moderation = models.ModerationMode(v)
	}
	if v := q.Get("trust"); v != "" {
		opts.Trust = models.TrustMode(v)
	}
	if v := q.Get("scope"); v != "" {
		opts.Scope = models.SourceScope(v)
	}
	return opts.Normalize()
}

// writeJSON writes a JSON response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
