package preferences

import (
	"context"
	"encoding/json"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/middlewares"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, bus *events.Bus) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	prefs := newSessionManager(logger, config.PreferencesConfig{
		Store:    "memory",
		Name:     "archsite_prefs",
		Lifetime: time.Hour,
	}, memstore.New())

	base := middlewares.NewAppContext(context.Background(), &config.Config{}, logger, prefs, nil, bus)

	r := chi.NewRouter()
	r.Use(prefs.LoadAndSave)
	r.Use(middlewares.AppContextMiddleware(base))
	r.Get("/show", base.HandlerFunc(func(ctx *middlewares.AppContext) {
		ctx.WriteJSON(http.StatusOK, map[string]bool{"show": ctx.Preferences.ShowDeviceInfo(ctx)})
	}))
	r.Put("/show/{value}", base.HandlerFunc(func(ctx *middlewares.AppContext) {
		err := ctx.Preferences.SetShowDeviceInfo(ctx, chi.URLParam(ctx.Request, "value") == "on")
		assert.NoError(t, err)
		ctx.SetJSONStatus(http.StatusOK, "OK")
	}))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, cookies []*http.Cookie) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readShow(t *testing.T, resp *http.Response) bool {
	t.Helper()
	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["show"]
}

func TestSessionManager_DefaultsToHidden(t *testing.T) {
	srv := newTestServer(t, events.NewBus(nil))

	resp := do(t, http.MethodGet, srv.URL+"/show", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, readShow(t, resp))
}

func TestSessionManager_PersistsAcrossRequests(t *testing.T) {
	bus := events.NewBus(nil)
	var (
		mu      sync.Mutex
		changes []events.PreferenceChange
	)
	events.Subscribe(bus, events.PreferenceChanged, func(c events.PreferenceChange) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
	})

	srv := newTestServer(t, bus)

	resp := do(t, http.MethodPut, srv.URL+"/show/on", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "archsite_prefs", cookies[0].Name)

	assert.True(t, readShow(t, do(t, http.MethodGet, srv.URL+"/show", cookies)))

	// a fresh visitor does not share the flag
	assert.False(t, readShow(t, do(t, http.MethodGet, srv.URL+"/show", nil)))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, changes, 1)
	assert.Equal(t, string(KeyShowDeviceInfo), changes[0].Key)
	assert.True(t, changes[0].Enabled)
}

func TestSessionManager_UnchangedValueIsNotAnnounced(t *testing.T) {
	bus := events.NewBus(nil)
	var published atomic.Int32
	events.Subscribe(bus, events.PreferenceChanged, func(events.PreferenceChange) { published.Add(1) })

	srv := newTestServer(t, bus)

	// hiding an already hidden flag is a no-op
	do(t, http.MethodPut, srv.URL+"/show/off", nil)
	assert.Equal(t, int32(0), published.Load())

	resp := do(t, http.MethodPut, srv.URL+"/show/on", nil)
	cookies := resp.Cookies()
	do(t, http.MethodPut, srv.URL+"/show/on", cookies)
	assert.Equal(t, int32(1), published.Load())

	do(t, http.MethodPut, srv.URL+"/show/off", cookies)
	assert.Equal(t, int32(2), published.Load())
}

func TestNewSessionManager_Stores(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{Preferences: config.PreferencesConfig{Store: "memory", Name: "p", Lifetime: time.Hour}}
	prefs, client, err := NewSessionManager(logger, cfg)
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.Equal(t, "memory", prefs.StoreName())

	cfg.Preferences.Store = "cookie"
	_, _, err = NewSessionManager(logger, cfg)
	assert.ErrorContains(t, err, "unsupported preferences store")

	cfg.Preferences.Store = "redis"
	_, _, err = NewSessionManager(logger, cfg)
	assert.ErrorContains(t, err, "redis configuration is required")
}
