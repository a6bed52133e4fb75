package auth

import (
	"context"
	"fmt"
	"ggarquitectos-site/internal/backend"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/handshake"
	"ggarquitectos-site/internal/models"
	"ggarquitectos-site/internal/session"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const callbackShutdownTimeout = 5 * time.Second

// ManagerOptions overrides the collaborators the manager would otherwise build
// from config. Zero values fall back to the real implementations.
type ManagerOptions struct {
	Bus       *events.Bus
	Persister session.Persister
	Transport http.RoundTripper
	Browser   handshake.Browser
}

// Manager owns the client session: the store, the expiration monitor, the
// intercepted HTTP client and the Google sign in flow.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	bus         *events.Bus
	store       *session.Store
	guard       *session.LogoutGuard
	monitor     *session.Monitor
	interceptor *session.Interceptor
	httpClient  *http.Client
	client      *backend.Client
	browser     handshake.Browser

	// OnAuthURL is handed to each sign in attempt.
	OnAuthURL func(string)

	loginMu   sync.Mutex
	closeOnce sync.Once
	unsubs    []func()
}

func NewManager(cfg *config.Config, logger *slog.Logger, opts ManagerOptions) (*Manager, error) {
	if cfg.Backend.BaseURL == "" {
		return nil, fmt.Errorf("backend.base_url is required (or set %s)", config.EnvBackendURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	bus := opts.Bus
	if bus == nil {
		bus = events.NewBus(logger)
	}

	persister := opts.Persister
	if persister == nil {
		persister = session.NewFilePersister(cfg.Session.StateFile)
	}

	browser := opts.Browser
	if browser == nil {
		browser = handshake.SystemBrowser{}
	}

	m := &Manager{
		cfg:     cfg,
		logger:  logger,
		bus:     bus,
		store:   session.NewStore(logger.With("component", "session"), persister),
		guard:   session.NewLogoutGuard(cfg.Session.LogoutGrace),
		browser: browser,
	}

	m.interceptor = session.NewInterceptor(
		&backend.BearerTransport{Token: m.store.Token, Proxied: opts.Transport},
		m.guard,
		m.logout,
		bus,
		logger.With("component", "interceptor"),
	)

	m.httpClient = &http.Client{
		Timeout:   cfg.Backend.Timeout,
		Transport: m.interceptor,
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL, m.httpClient, bus, logger.With("component", "backend"))
	if err != nil {
		return nil, err
	}
	client.UseVerifyClient(&http.Client{
		Timeout:   cfg.Backend.Timeout,
		Transport: opts.Transport,
	})
	m.client = client

	m.monitor = session.NewMonitor(session.MonitorConfig{
		Interval:   cfg.Session.CheckInterval,
		WarnBefore: cfg.Session.WarnBefore,
	}, m.logout, bus, logger.With("component", "monitor"))
	m.monitor.Watch(m.store)

	m.unsubs = append(m.unsubs, events.Subscribe(bus, events.UserDeleted, func(n events.UserDeletedNotice) {
		logger.Info("Account deleted, ending session", "user", n.UserID)
		m.logout()
	}))

	return m, nil
}

func (m *Manager) logout() {
	m.store.Logout()
}

func (m *Manager) Bus() *events.Bus {
	return m.bus
}

func (m *Manager) Store() *session.Store {
	return m.store
}

func (m *Manager) Client() *backend.Client {
	return m.client
}

// HTTPClient returns the client every backend call should use. It attaches the
// session token and ends the session when the backend rejects it.
func (m *Manager) HTTPClient() *http.Client {
	return m.httpClient
}

// LoginWithGoogle serves the loopback callback page for the length of one sign
// in attempt. Concurrent attempts are serialized since they share the port.
func (m *Manager) LoginWithGoogle(ctx context.Context) (*models.UserSummary, error) {
	m.loginMu.Lock()
	defer m.loginMu.Unlock()

	origin, err := handshake.OriginOf(m.cfg.Google.RedirectURI)
	if err != nil {
		return nil, err
	}

	router := handshake.NewRouter(origin, m.logger.With("component", "handshake"))

	callback, err := handshake.NewCallbackServer(m.cfg.Google.RedirectURI, router, m.logger.With("component", "callback"))
	if err != nil {
		return nil, err
	}

	if err := callback.Start(); err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), callbackShutdownTimeout)
		defer cancel()
		if err := callback.Shutdown(shutdownCtx); err != nil {
			m.logger.Warn("Failed to stop callback server", "error", err)
		}
	}()

	opener := handshake.NewOpener(m.cfg.Google, m.cfg.Session.HandshakeTimeout, router, m.browser, m.client, m.store, m.logger.With("component", "opener"))
	opener.OnAuthURL = m.OnAuthURL

	user, err := opener.Login(ctx)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Signed in with Google", "user", user.Email, "role", user.Role)
	return user, nil
}

// Logout ends the session locally. It reports whether a session was active.
func (m *Manager) Logout() bool {
	return m.store.Logout()
}

// Close stops the monitor and drops the manager's subscriptions. The persisted
// session is left in place.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.monitor.Stop()
		for _, unsub := range m.unsubs {
			unsub()
		}
	})
}
