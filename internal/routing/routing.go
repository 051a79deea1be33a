package routing

import (
	"net/http"

	"tangled.org/corvid.social/corvid/internal/handlers"
	"tangled.org/corvid.social/corvid/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds the configuration needed for setting up routes
type Config struct {
	Handlers *handlers.Handler
	Logger   zerolog.Logger

	// SecureCookies sets the Secure flag on the CSRF cookie.
	SecureCookies bool
}

// SetupRouter creates and configures the HTTP router with all routes and middleware
func SetupRouter(cfg Config) http.Handler {
	h := cfg.Handlers
	mux := http.NewServeMux()

	// Read API
	mux.HandleFunc("GET /api/feed", h.HandleFeed)
	mux.HandleFunc("GET /api/thread", h.HandleThread)
	mux.HandleFunc("GET /api/trust/{pubkey}", h.HandleTrust)
	mux.HandleFunc("GET /api/suggestions", h.HandleSuggestions)
	mux.HandleFunc("GET /api/health", h.HandleHealth)

	// Live reply stream (WebSocket)
	mux.HandleFunc("GET /api/replies/live", h.HandleRepliesLive)

	// Viewer preferences
	mux.HandleFunc("GET /api/preferences", h.HandlePreferencesGet)
	mux.HandleFunc("PUT /api/preferences", h.HandlePreferencesPut)

	// Relay registry (modification is admin only)
	mux.HandleFunc("GET /api/relays", h.HandleRelaysList)
	mux.HandleFunc("POST /api/relays", h.HandleRelayRegister)
	mux.HandleFunc("DELETE /api/relays", h.HandleRelayUnregister)

	// Prometheus metrics
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply middleware in order (outermost first, innermost last)
	var handler http.Handler = mux

	// 1. CSRF protection for the mutating endpoints
	csrfConfig := middleware.DefaultCSRFConfig()
	csrfConfig.SecureCookie = cfg.SecureCookies
	handler = middleware.CSRFMiddleware(csrfConfig)(handler)

	// 2. Logging middleware (outermost - wraps everything)
	handler = middleware.LoggingMiddleware(cfg.Logger)(handler)

	return handler
}
