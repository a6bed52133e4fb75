package session

import (
	"bytes"
	"encoding/json"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/metrics"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultLogoutReason = "session expired"

	maxReasonBody = 64 << 10
	tracerName    = "ggarquitectos-site/internal/session"
)

// Interceptor is an http.RoundTripper that turns 401 and 403 responses into a
// single forced logout. Responses are always handed back to the caller.
type Interceptor struct {
	next   http.RoundTripper
	guard  *LogoutGuard
	logout func()
	bus    *events.Bus
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

var _ http.RoundTripper = (*Interceptor)(nil)

func NewInterceptor(next http.RoundTripper, guard *LogoutGuard, logout func(), bus *events.Bus, logger *slog.Logger) *Interceptor {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Interceptor{
		next:   next,
		guard:  guard,
		logout: logout,
		bus:    bus,
		logger: logger,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
}

func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := i.tracer.Start(req.Context(), "session.guard",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.path", req.URL.Path),
		),
	)
	defer span.End()

	resp, err := i.next.RoundTrip(req.WithContext(ctx))
	if err != nil {
		span.RecordError(err)
		return resp, err
	}

	forced := i.Guard(resp, req)
	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Bool("session.forced_logout", forced),
	)

	return resp, nil
}

func isAuthFailure(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

// Guard inspects resp and, for the first auth failure in a burst, logs the
// session out and broadcasts a ForcedLogout notice. It reports whether that
// happened. resp.Body is left readable.
func (i *Interceptor) Guard(resp *http.Response, req *http.Request) bool {
	if resp == nil || !isAuthFailure(resp.StatusCode) {
		return false
	}

	method, target := requestLabels(req)

	ran := i.guard.Do(func() {
		reason := peekReason(resp)

		if i.logout != nil {
			i.logout()
		}

		metrics.ForcedLogouts.WithLabelValues(statusLabel(resp.StatusCode)).Inc()
		i.logger.Warn("Backend rejected session, logged out",
			"status", resp.StatusCode,
			"method", method,
			"url", target,
			"reason", reason)

		if i.bus != nil {
			events.Publish(i.bus, events.ForcedLogout, events.ForcedLogoutNotice{
				ID:     uuid.NewString(),
				Reason: reason,
				At:     i.now(),
				Status: resp.StatusCode,
				Method: method,
				URL:    target,
			})
		}
	})

	if !ran {
		metrics.SuppressedRejections.Inc()
		i.logger.Debug("Auth failure while logout in progress",
			"status", resp.StatusCode,
			"method", method,
			"url", target)
	}

	return ran
}

func requestLabels(req *http.Request) (string, string) {
	if req == nil || req.URL == nil {
		return "", ""
	}
	return req.Method, req.URL.Redacted()
}

func statusLabel(status int) string {
	if status == http.StatusForbidden {
		return "403"
	}
	return "401"
}

// peekReason reads up to maxReasonBody bytes of the body and puts them back in
// front of whatever was not read.
func peekReason(resp *http.Response) string {
	if resp.Body == nil || resp.Body == http.NoBody {
		return DefaultLogoutReason
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxReasonBody))
	resp.Body = &replayBody{
		Reader: io.MultiReader(bytes.NewReader(buf), resp.Body),
		Closer: resp.Body,
	}
	if err != nil {
		return DefaultLogoutReason
	}

	return reasonFromBody(buf)
}

type replayBody struct {
	io.Reader
	io.Closer
}

func reasonFromBody(body []byte) string {
	var payload struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}

	if err := json.Unmarshal(body, &payload); err != nil {
		return DefaultLogoutReason
	}

	for _, candidate := range []any{payload.Message, payload.Error} {
		if s, ok := candidate.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	return DefaultLogoutReason
}
