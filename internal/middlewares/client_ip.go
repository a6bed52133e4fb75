package middlewares

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParseTrustedProxies turns CIDRs or bare addresses into prefixes.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}

	return prefixes, nil
}

// ClientIPMiddleware rewrites RemoteAddr to the visitor's address. Forwarding
// headers are only believed when the direct peer is one of the trusted proxies.
func ClientIPMiddleware(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if clientIP := extractClientIP(r, trusted); clientIP.IsValid() {
				_, port, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil || port == "" {
					port = "0"
				}
				r.RemoteAddr = net.JoinHostPort(clientIP.String(), port)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func parseHeaderAddr(value string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(value))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

func peerAddr(remoteAddr string) (netip.Addr, bool) {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	return parseHeaderAddr(host)
}

func extractClientIP(r *http.Request, trusted []netip.Prefix) netip.Addr {
	peer, ok := peerAddr(r.RemoteAddr)
	if !ok {
		return netip.Addr{}
	}

	if !isTrusted(peer, trusted) {
		return peer
	}

	for _, header := range []string{"True-Client-IP", "X-Real-IP"} {
		if addr, ok := parseHeaderAddr(r.Header.Get(header)); ok {
			return addr
		}
	}

	// walk X-Forwarded-For from the right, the first hop we do not run is the visitor
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			addr, ok := parseHeaderAddr(hops[i])
			if !ok {
				break
			}
			if !isTrusted(addr, trusted) || i == 0 {
				return addr
			}
		}
	}

	return peer
}
