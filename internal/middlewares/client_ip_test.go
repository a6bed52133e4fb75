package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "::1", ""})
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "127.0.0.1/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())

	_, err = ParseTrustedProxies([]string{"10.0.0.0/33"})
	assert.Error(t, err)

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestClientIPMiddleware(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "::1"})
	require.NoError(t, err)

	tests := []struct {
		name           string
		remoteAddr     string
		headers        map[string]string
		expectedRemote string
	}{
		{
			name:           "direct connection with port",
			remoteAddr:     "203.0.113.1:54321",
			expectedRemote: "203.0.113.1:54321",
		},
		{
			name:           "direct connection without port",
			remoteAddr:     "203.0.113.1",
			expectedRemote: "203.0.113.1:0",
		},
		{
			name:           "untrusted peer cannot spoof headers",
			remoteAddr:     "203.0.113.1:54321",
			headers:        map[string]string{"X-Real-IP": "198.51.100.1", "X-Forwarded-For": "198.51.100.2"},
			expectedRemote: "203.0.113.1:54321",
		},
		{
			name:           "true-client-ip from trusted proxy",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"True-Client-IP": "198.51.100.1", "X-Real-IP": "198.51.100.2"},
			expectedRemote: "198.51.100.1:12345",
		},
		{
			name:           "x-real-ip from trusted proxy",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Real-IP": "  198.51.100.2  "},
			expectedRemote: "198.51.100.2:12345",
		},
		{
			name:           "x-forwarded-for skips trusted hops from the right",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Forwarded-For": "192.0.2.9, 198.51.100.3, 10.0.0.2, 10.0.0.3"},
			expectedRemote: "198.51.100.3:12345",
		},
		{
			name:           "x-forwarded-for made only of trusted hops",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Forwarded-For": "10.0.0.7, 10.0.0.2"},
			expectedRemote: "10.0.0.7:12345",
		},
		{
			name:           "invalid x-forwarded-for falls back to peer",
			remoteAddr:     "10.0.0.1:12345",
			headers:        map[string]string{"X-Forwarded-For": "invalid-ip"},
			expectedRemote: "10.0.0.1:12345",
		},
		{
			name:           "ipv6 trusted peer",
			remoteAddr:     "[::1]:12345",
			headers:        map[string]string{"X-Forwarded-For": "2001:db8::2"},
			expectedRemote: "[2001:db8::2]:12345",
		},
		{
			name:           "invalid remote addr is left alone",
			remoteAddr:     "invalid",
			expectedRemote: "invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured string
			handler := ClientIPMiddleware(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			handler.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.expectedRemote, captured)
		})
	}
}
