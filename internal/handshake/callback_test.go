package handshake

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCallbackServer(t *testing.T) (*CallbackServer, *Router) {
	t.Helper()
	router := newTestRouter()
	cs, err := NewCallbackServer(testOrigin+"/auth/callback", router, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return cs, router
}

func relay(t *testing.T, cs *CallbackServer, origin, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/callback/relay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rr := httptest.NewRecorder()
	cs.Handler().ServeHTTP(rr, req)
	return rr
}

func assertClose(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	var resp map[string]bool
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp["close"])
}

func TestNewCallbackServer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		errMsg string
	}{
		{"https", "https://127.0.0.1:8765/cb", "must use http"},
		{"public host", "http://example.com:8765/cb", "not a loopback"},
		{"missing port", "http://127.0.0.1/cb", "must include a port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCallbackServer(tt.uri, newTestRouter(), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	for _, ok := range []string{"http://localhost:8765/cb", "http://[::1]:8765/cb", "http://127.0.0.1:8765"} {
		_, err := NewCallbackServer(ok, newTestRouter(), nil)
		assert.NoError(t, err, ok)
	}
}

func TestCallbackServer_ServesPage(t *testing.T) {
	cs, _ := newTestCallbackServer(t)

	rr := httptest.NewRecorder()
	cs.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Body.String(), "window.location.hash")
	assert.Contains(t, rr.Body.String(), "relay")
	assert.Contains(t, rr.Body.String(), "window.close()")
}

func TestCallbackServer_RelaysProviderError(t *testing.T) {
	cs, router := newTestCallbackServer(t)
	p := router.Listen(testOrigin, "state-1")
	defer p.Cancel()

	rr := relay(t, cs, testOrigin, `{"fragment":"error=access_denied&state=state-1"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assertClose(t, rr)

	msg, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TypeAuthError, msg.Type)
	assert.Equal(t, "access_denied", msg.Error)
}

func TestCallbackServer_RelaysSuccess(t *testing.T) {
	cs, router := newTestCallbackServer(t)
	p := router.Listen(testOrigin, "state-1")
	defer p.Cancel()

	rr := relay(t, cs, testOrigin, `{"fragment":"access_token=at&id_token=a.b.c&state=state-1"}`)
	assertClose(t, rr)

	msg, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Message{Type: TypeAuthSuccess, IDToken: "a.b.c", State: "state-1"}, msg)
}

func TestCallbackServer_RejectsForeignOrigin(t *testing.T) {
	cs, router := newTestCallbackServer(t)
	p := router.Listen(testOrigin, "state-1")
	defer p.Cancel()

	for _, origin := range []string{"", "http://evil.example", "http://localhost:8765"} {
		rr := relay(t, cs, origin, `{"fragment":"access_token=at&id_token=a.b.c&state=state-1"}`)
		assert.Equal(t, http.StatusForbidden, rr.Code, origin)
		assertClose(t, rr)
	}

	assert.False(t, resolved(p))
}

func TestCallbackServer_MalformedBody(t *testing.T) {
	cs, router := newTestCallbackServer(t)
	p := router.Listen(testOrigin, "state-1")
	defer p.Cancel()

	rr := relay(t, cs, testOrigin, `{not json`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assertClose(t, rr)

	msg, err := p.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ReasonMalformedFragment, msg.Error)
}
