package middleware

import (
	"net"
	"net/http"
	"strings"
)

// RealIP resolves the client address when the server sits behind a reverse
// proxy. X-Forwarded-For is only honored when the direct peer is one of the
// configured trusted proxies; otherwise the socket address wins, so a client
// cannot spoof its way past the rate limiter or the security-event logs.
type RealIP struct {
	trustedNets []*net.IPNet
	trustedIPs  []net.IP
}

// NewRealIPMiddleware parses the trusted proxy list. Entries can be single
// addresses ("192.168.1.1") or CIDRs ("10.0.0.0/8"); malformed entries are
// ignored.
func NewRealIPMiddleware(trustedProxies []string) *RealIP {
	m := &RealIP{}

	for _, proxy := range trustedProxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if strings.Contains(proxy, "/") {
			if _, network, err := net.ParseCIDR(proxy); err == nil {
				m.trustedNets = append(m.trustedNets, network)
			}
			continue
		}

		if ip := net.ParseIP(proxy); ip != nil {
			m.trustedIPs = append(m.trustedIPs, ip)
		}
	}

	return m
}

// Handler stamps the resolved client address into X-Real-IP, which the
// logging layer and rate limiter read.
func (m *RealIP) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := m.clientIP(r); ip != "" {
			r.Header.Set("X-Real-IP", ip)
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the peer address, or the first X-Forwarded-For entry when
// the peer is a trusted proxy.
func (m *RealIP) clientIP(r *http.Request) string {
	peer := remoteIP(r.RemoteAddr)
	if !m.trusted(peer) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// The first entry in the chain is the original client.
		if idx := strings.Index(xff, ","); idx != -1 {
			xff = xff[:idx]
		}
		return strings.TrimSpace(xff)
	}

	return peer
}

func (m *RealIP) trusted(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, network := range m.trustedNets {
		if network.Contains(ip) {
			return true
		}
	}
	for _, trustedIP := range m.trustedIPs {
		if trustedIP.Equal(ip) {
			return true
		}
	}
	return false
}

// remoteIP strips the port from a RemoteAddr, tolerating bare IPv6 addresses.
func remoteIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
