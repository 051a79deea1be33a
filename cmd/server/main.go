package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tangled.org/corvid.social/corvid/internal/database/boltstore"
	"tangled.org/corvid.social/corvid/internal/handlers"
	"tangled.org/corvid.social/corvid/internal/metrics"
	"tangled.org/corvid.social/corvid/internal/moderation"
	"tangled.org/corvid.social/corvid/internal/relay"
	"tangled.org/corvid.social/corvid/internal/routing"
	"tangled.org/corvid.social/corvid/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure zerolog
	// Set log level from environment (default: info)
	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Use pretty console logging in development, JSON in production
	if os.Getenv("LOG_FORMAT") == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	log.Info().Msg("Starting Corvid")

	ctx := context.Background()

	// Initialize tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	tp, err := tracing.Init(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("Tracer shutdown failed")
			}
		}()
	}

	// Get port from env or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "18920"
	}

	// Initialize BoltDB store for viewer preferences and the relay registry
	dbPath := os.Getenv("CORVID_DB_PATH")
	if dbPath == "" {
		// Default to XDG data directory or home directory for development
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get home directory")
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
		dbPath = filepath.Join(dataDir, "corvid", "corvid.db")
	}

	store, err := boltstore.Open(boltstore.Options{
		Path: dbPath,
	})
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open database")
	}
	defer store.Close()

	log.Info().Str("path", dbPath).Msg("Database opened")

	prefsStore := store.PrefsStore()
	relayStore := store.RelayStore()

	// Assemble the read-relay set: CORVID_RELAYS (comma-separated),
	// an optional relay list file, and admin-registered relays from the DB.
	relayURLs := splitRelays(os.Getenv("CORVID_RELAYS"))
	if relayFile := os.Getenv("CORVID_RELAYS_FILE"); relayFile != "" {
		fromFile, err := loadRelayURLs(relayFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", relayFile).Msg("Failed to load relay list")
		}
		log.Info().
			Int("count", len(fromFile)).
			Str("file", relayFile).
			Strs("relays", fromFile).
			Msg("Loaded relays from file")
		relayURLs = append(relayURLs, fromFile...)
	}
	relayURLs = dedupeRelays(append(relayURLs, relayStore.List()...))

	if len(relayURLs) == 0 {
		log.Fatal().Msg("No relays configured (set CORVID_RELAYS or register relays)")
	}

	localRelay := os.Getenv("CORVID_LOCAL_RELAY")

	client := relay.NewClient(ctx, relay.Config{
		Relays:     relayURLs,
		LocalRelay: localRelay,
	})

	log.Info().
		Strs("relays", relayURLs).
		Str("local_relay", localRelay).
		Msg("Relay client initialized")

	// Moderation admin list (optional)
	moderationService, err := moderation.NewService(os.Getenv("CORVID_MODERATION_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load moderation config")
	}
	if moderationService.IsEnabled() {
		log.Info().
			Int("admins", len(moderationService.Admins())).
			Msg("Moderation enabled")
	}

	siteOwner := os.Getenv("CORVID_SITE_OWNER")
	if siteOwner == "" {
		log.Warn().Msg("CORVID_SITE_OWNER not set; site trust graph disabled")
	}

	h := handlers.NewHandler(client, handlers.Config{
		SiteOwner:         siteOwner,
		SiteThreshold:     envFloat("CORVID_SITE_THRESHOLD", 0),
		PersonalThreshold: envFloat("CORVID_PERSONAL_THRESHOLD", 0),
	})
	h.SetModeration(moderationService)
	h.SetStores(prefsStore, relayStore)

	// Periodic gauge refresh for /metrics
	metrics.StartCollector(ctx, metrics.StatsSource{
		RelayCount:      relayStore.Count,
		PreferenceCount: prefsStore.Count,
	}, 30*time.Second)

	// Determine if we should use secure cookies (default: false for development)
	secureCookies := os.Getenv("SECURE_COOKIES") == "true"

	handler := routing.SetupRouter(routing.Config{
		Handlers:      h,
		Logger:        log.Logger,
		SecureCookies: secureCookies,
	})

	log.Info().
		Str("address", "0.0.0.0:"+port).
		Str("url", "http://localhost:"+port).
		Bool("secure_cookies", secureCookies).
		Str("database", dbPath).
		Msg("Starting HTTP server")

	if err := http.ListenAndServe("0.0.0.0:"+port, handler); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}

// splitRelays parses a comma-separated relay list, dropping empty entries.
func splitRelays(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadRelayURLs reads relay URLs from a file, one per line.
// Blank lines and lines starting with # are skipped, as are lines that
// are not ws:// or wss:// URLs.
func loadRelayURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "ws://") && !strings.HasPrefix(line, "wss://") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return urls, nil
}

func dedupeRelays(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	var out []string
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("var", key).Str("value", v).Msg("Invalid float in environment, using default")
		return fallback
	}
	return f
}
