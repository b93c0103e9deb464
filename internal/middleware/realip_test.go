package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRealIP_HeaderHandling(t *testing.T) {
	tests := []struct {
		name           string
		trustedProxies []string
		remoteAddr     string
		forwardedFor   string
		want           string
	}{
		{
			name:       "direct connection",
			remoteAddr: "203.0.113.7:4567",
			want:       "203.0.113.7",
		},
		{
			name:         "forwarded header from untrusted peer is ignored",
			remoteAddr:   "203.0.113.7:4567",
			forwardedFor: "198.51.100.1",
			want:         "203.0.113.7",
		},
		{
			name:           "forwarded header from trusted proxy wins",
			trustedProxies: []string{"10.0.0.0/8"},
			remoteAddr:     "10.1.2.3:4567",
			forwardedFor:   "198.51.100.1",
			want:           "198.51.100.1",
		},
		{
			name:           "first entry of forwarded chain is the client",
			trustedProxies: []string{"10.1.2.3"},
			remoteAddr:     "10.1.2.3:4567",
			forwardedFor:   "198.51.100.1, 10.9.9.9",
			want:           "198.51.100.1",
		},
		{
			name:           "trusted proxy without forwarded header",
			trustedProxies: []string{"10.0.0.0/8"},
			remoteAddr:     "10.1.2.3:4567",
			want:           "10.1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotRealIP string
			handler := NewRealIPMiddleware(tt.trustedProxies).Handler(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					gotRealIP = r.Header.Get("X-Real-IP")
				}))

			req := httptest.NewRequest(http.MethodGet, "/api/reviews", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if gotRealIP != tt.want {
				t.Errorf("X-Real-IP = %q, want %q", gotRealIP, tt.want)
			}
		})
	}
}

func TestNewRealIPMiddleware_SkipsMalformedEntries(t *testing.T) {
	m := NewRealIPMiddleware([]string{"", "not-an-ip", "10.0.0.0/8", " 192.168.1.1 "})

	if len(m.trustedNets) != 1 {
		t.Errorf("len(trustedNets) = %d, want 1", len(m.trustedNets))
	}
	if len(m.trustedIPs) != 1 {
		t.Errorf("len(trustedIPs) = %d, want 1", len(m.trustedIPs))
	}
}
