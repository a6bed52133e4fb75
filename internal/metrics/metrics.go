package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ForcedLogouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_session_forced_logouts_total",
			Help: "Sessions ended because the backend rejected a request",
		},
		[]string{"status"},
	)

	SuppressedRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: Namespace + "_session_suppressed_rejections_total",
			Help: "Auth failures seen while a forced logout was already in progress",
		},
	)

	ExpirationChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_session_expiration_checks_total",
			Help: "Token expiration checks by result",
		},
		[]string{"result"},
	)

	HandshakeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_handshake_outcomes_total",
			Help: "Google sign in handshakes by outcome",
		},
		[]string{"outcome"},
	)

	TokenVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_token_verifications_total",
			Help: "ID token verification requests handled by the server",
		},
		[]string{"valid"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    Namespace + "_backend_request_duration_seconds",
			Help:    "Latency of calls to the site backend API",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	PreferenceUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: Namespace + "_preference_updates_total",
			Help: "Visitor preference changes",
		},
		[]string{"key", "store"},
	)
)
