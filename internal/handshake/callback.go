package handshake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxRelayBody = 16 << 10

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="referrer" content="no-referrer">
<title>G&amp;G Arquitectos</title>
</head>
<body>
<p id="status">Completing sign in...</p>
<script>
(function () {
  var fragment = window.location.hash.substring(1);
  history.replaceState(null, "", window.location.pathname);
  fetch({{.RelayPath}}, {
    method: "POST",
    headers: { "Content-Type": "application/json" },
    body: JSON.stringify({ fragment: fragment })
  }).catch(function () {}).then(function () {
    document.getElementById("status").textContent = "You can close this window.";
    window.close();
  });
})();
</script>
</body>
</html>
`))

// CallbackServer serves the OAuth redirect target on the loopback interface and
// relays the fragment the browser hands it to the Router.
type CallbackServer struct {
	router    *Router
	logger    *slog.Logger
	origin    string
	address   string
	path      string
	relayPath string

	server *http.Server
}

// NewCallbackServer validates redirectURI, which must be a plain http URL on a
// loopback host with an explicit port.
func NewCallbackServer(redirectURI string, router *Router, logger *slog.Logger) (*CallbackServer, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect uri: %w", err)
	}

	if u.Scheme != "http" {
		return nil, fmt.Errorf("redirect uri must use http on the loopback interface, got %q", u.Scheme)
	}

	host := u.Hostname()
	if !isLoopback(host) {
		return nil, fmt.Errorf("redirect uri host %q is not a loopback address", host)
	}

	if u.Port() == "" {
		return nil, fmt.Errorf("redirect uri must include a port")
	}

	if logger == nil {
		logger = slog.Default()
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return &CallbackServer{
		router:    router,
		logger:    logger,
		origin:    u.Scheme + "://" + u.Host,
		address:   u.Host,
		path:      path,
		relayPath: strings.TrimSuffix(path, "/") + "/relay",
	}, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *CallbackServer) Origin() string {
	return s.origin
}

func (s *CallbackServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(noStore)

	r.Get(s.path, s.handlePage)
	r.Post(s.relayPath, s.handleRelay)

	return r
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

// Start binds the redirect address and serves in the background.
func (s *CallbackServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		s.logger.Debug("Callback server listening", "address", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Callback server failed", "error", err)
		}
	}()

	return nil
}

func (s *CallbackServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *CallbackServer) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := callbackPage.Execute(w, struct{ RelayPath string }{s.relayPath}); err != nil {
		s.logger.Error("Failed to render callback page", "error", err)
	}
}

type relayRequest struct {
	Fragment string `json:"fragment"`
}

func (s *CallbackServer) handleRelay(w http.ResponseWriter, r *http.Request) {
	if origin := r.Header.Get("Origin"); origin != s.origin {
		s.logger.Warn("Rejected callback relay from foreign origin", "origin", origin)
		writeRelayResponse(w, http.StatusForbidden)
		return
	}

	var (
		body relayRequest
		msg  Message
	)
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRelayBody)).Decode(&body); err != nil {
		s.logger.Warn("Malformed callback relay body", "error", err)
		msg = errorMessage(ReasonMalformedFragment, "")
	} else {
		msg = ParseFragment(body.Fragment)
	}

	if !msg.IsSuccess() {
		s.logger.Info("Callback reported a sign in error", "reason", msg.Error)
	}

	s.router.Post(Envelope{
		Origin:       s.origin,
		TargetOrigin: s.router.Origin(),
		Message:      msg,
	})

	writeRelayResponse(w, http.StatusOK)
}

// the page closes itself whatever happened
func writeRelayResponse(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]bool{"close": true})
}
