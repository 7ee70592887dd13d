package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wardline/notify-hub/internal/auth"
)

type contextKey string

const sessionClaimsKey contextKey = "sessionClaims"

// SessionAuth enforces a session credential on HTTP endpoints that sit next
// to the socket, like the long-poll fallback.
func SessionAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "session auth disabled", http.StatusUnauthorized)
				return
			}
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := auth.Verify(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaimsFromContext returns the verified session claims if present.
func SessionClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(sessionClaimsKey).(auth.Claims)
	return claims, ok
}

// SharedSecret guards internal endpoints (event emit, token mint) with a
// static bearer secret owned by the web tier.
func SharedSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "internal endpoints disabled", http.StatusUnauthorized)
				return
			}
			header := r.Header.Get("Authorization")
			if header != "Bearer "+secret {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
