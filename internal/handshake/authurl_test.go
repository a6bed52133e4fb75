package handshake

import (
	"ggarquitectos-site/internal/config"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthURL(t *testing.T) {
	cfg := config.GoogleConfig{
		ClientID:    "client.apps.googleusercontent.com",
		RedirectURI: "http://127.0.0.1:8765/auth/callback",
		AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
		Scopes:      []string{"openid", "email", "profile"},
	}

	raw := AuthURL(cfg, "state-123", "nonce-456")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "/o/oauth2/v2/auth", u.Path)

	q := u.Query()
	assert.Equal(t, cfg.ClientID, q.Get("client_id"))
	assert.Equal(t, cfg.RedirectURI, q.Get("redirect_uri"))
	assert.Equal(t, "openid email profile", q.Get("scope"))
	assert.Equal(t, "token id_token", q.Get("response_type"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "nonce-456", q.Get("nonce"))
}

func TestAuthURL_AlwaysRequestsOpenID(t *testing.T) {
	cfg := config.GoogleConfig{
		ClientID: "c",
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		Scopes:   []string{"email"},
	}

	u, err := url.Parse(AuthURL(cfg, "s", "n"))
	require.NoError(t, err)
	assert.Equal(t, "openid email", u.Query().Get("scope"))
}

func TestGenerateRandString(t *testing.T) {
	a := GenerateRandString(32)
	b := GenerateRandString(32)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
	assert.NotContains(t, a, "=")
	assert.Len(t, GenerateRandString(0), 43)
}

func TestOriginOf(t *testing.T) {
	origin, err := OriginOf("http://127.0.0.1:8765/auth/callback?x=1")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8765", origin)

	_, err = OriginOf("/relative/path")
	assert.Error(t, err)
}
