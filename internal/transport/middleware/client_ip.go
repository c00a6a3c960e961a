package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/painradar/painradar-backend/pkg/ctxutil"
)

// ClientIP resolves the originating client address and stores it in the
// request context. X-Forwarded-For wins when a trusted proxy sits in front
// of the service; the first entry is the original client.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxutil.WithClientIP(r.Context(), resolveClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resolveClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
