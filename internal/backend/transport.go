package backend

import (
	"net/http"
)

// BearerTransport adds the current session token to every request.
type BearerTransport struct {
	Token   func() string
	Proxied http.RoundTripper
}

func (b *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	proxied := b.Proxied
	if proxied == nil {
		proxied = http.DefaultTransport
	}

	if b.Token == nil {
		return proxied.RoundTrip(req)
	}

	tok := b.Token()
	if tok == "" || req.Header.Get("Authorization") != "" {
		return proxied.RoundTrip(req)
	}

	authed := req.Clone(req.Context())
	authed.Header.Set("Authorization", "Bearer "+tok)
	return proxied.RoundTrip(authed)
}
