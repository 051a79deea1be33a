package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corvid_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "corvid_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "path"})
)

// Relay metrics
var (
	RelayFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corvid_relay_fetches_total",
		Help: "Total number of relay fetch operations",
	}, []string{"operation", "status"})

	RelayFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "corvid_relay_fetch_duration_seconds",
		Help:    "Relay fetch duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})
)

// Trust graph metrics
var (
	TrustBuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corvid_trust_builds_total",
		Help: "Total number of trust graph builds",
	})

	TrustBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "corvid_trust_build_duration_seconds",
		Help:    "Trust graph build duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)

// Visibility pipeline metrics
var (
	PipelineRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "corvid_pipeline_runs_total",
		Help: "Total number of visibility pipeline runs",
	})

	PipelineItemsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corvid_pipeline_items_removed_total",
		Help: "Total number of items removed, by pipeline stage",
	}, []string{"stage"})
)

// Reply stream metrics
var (
	ReplyStreamsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corvid_reply_streams_open",
		Help: "Number of currently open live reply streams",
	})

	ReplyCandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "corvid_reply_candidates_total",
		Help: "Total number of reply candidates evaluated",
	}, []string{"decision"})
)

// Business metrics (gauges updated periodically by collector)
var (
	RegisteredRelaysTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corvid_registered_relays_total",
		Help: "Total number of relays in the registry",
	})

	StoredPreferencesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "corvid_stored_preferences_total",
		Help: "Total number of stored viewer preference sets",
	})
)

// NormalizePath reduces high-cardinality path labels by replacing dynamic
// segments with placeholders. This keeps the metric label space bounded.
func NormalizePath(path string) string {
	segments := splitPath(path)
	if len(segments) < 2 {
		return path
	}

	if segments[0] == "api" {
		switch segments[1] {
		case "trust":
			if len(segments) == 3 {
				return "/api/trust/:pubkey"
			}
		case "thread":
			if len(segments) == 3 {
				return "/api/thread/:id"
			}
		}
	}

	return path
}

func splitPath(path string) []string {
	// Skip leading slash
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	var segments []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			if i > start {
				segments = append(segments, path[start:i])
			}
			start = i + 1
		}
	}
	if start < len(path) {
		segments = append(segments, path[start:])
	}
	return segments
}
