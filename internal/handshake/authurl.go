package handshake

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"ggarquitectos-site/internal/config"
	"net/url"
	"slices"

	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"
)

const (
	ResponseTypeImplicit = "token id_token"
	PromptSelectAccount  = "select_account"
)

// AuthURL builds the Google authorization URL for one sign in attempt. The
// openid scope is always requested since an access token alone carries no
// identity.
func AuthURL(cfg config.GoogleConfig, state, nonce string) string {
	scopes := cfg.Scopes
	if !slices.Contains(scopes, oidc.ScopeOpenID) {
		scopes = append([]string{oidc.ScopeOpenID}, scopes...)
	}

	oauth2Config := &oauth2.Config{
		ClientID:    cfg.ClientID,
		Endpoint:    oauth2.Endpoint{AuthURL: cfg.AuthURL},
		RedirectURL: cfg.RedirectURI,
		Scopes:      scopes,
	}

	return oauth2Config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", ResponseTypeImplicit),
		oauth2.SetAuthURLParam("prompt", PromptSelectAccount),
		oauth2.SetAuthURLParam("nonce", nonce),
	)
}

func GenerateRandString(bytes int) string {
	if bytes <= 0 {
		bytes = 32
	}

	b := make([]byte, bytes)
	_, _ = rand.Read(b)

	return base64.RawURLEncoding.EncodeToString(b)
}

// OriginOf returns scheme://host[:port] of rawURL.
func OriginOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q has no origin", rawURL)
	}

	return u.Scheme + "://" + u.Host, nil
}
