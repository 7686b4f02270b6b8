package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/PoleMap/internal/core"
	"github.com/JonMunkholm/PoleMap/internal/logging"
	"github.com/JonMunkholm/PoleMap/internal/web/middleware"
)

// withClient attaches the caller's IP and User-Agent for the audit trail.
// RemoteAddr has already been rewritten by TrustedRealIP.
func withClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if addr, ok := middleware.ClientAddr(r.RemoteAddr); ok {
			ip = addr.String()
		}
		ctx := core.ContextWithClient(r.Context(), core.ClientInfo{
			IPAddress: ip,
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withSession tags the request's logger with the session in the URL.
func withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithSessionID(r.Context(), sessionID(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "sessionID")
}
