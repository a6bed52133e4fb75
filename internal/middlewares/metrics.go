package middlewares

import (
	"ggarquitectos-site/internal/metrics"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const staticEndpointLabel = "static"

func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		duration := time.Since(start).Seconds()

		endpoint := endpointLabel(r)

		metrics.HTTPRequestsTotal.WithLabelValues(
			r.Method,
			endpoint,
			strconv.Itoa(ww.statusCode),
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			r.Method,
			endpoint,
		).Observe(duration)
	})
}

// endpointLabel keeps label cardinality bounded: every asset served by the
// catch-all route shares one label.
func endpointLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return staticEndpointLabel
	}

	pattern := rctx.RoutePattern()
	if pattern == "" || pattern == "/*" {
		return staticEndpointLabel
	}

	return pattern
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
