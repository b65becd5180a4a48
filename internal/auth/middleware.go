package auth

import (
	"context"
	"net/http"
)

type contextKey struct{}

var usernameKey contextKey

// UsernameFromContext returns the username the middleware attached after
// validating the bearer token.
func UsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(usernameKey).(string)
	return username, ok
}

// Middleware guards a handler behind a live bearer token. Unlike a pure
// JWT check it goes through the service, so revoked tokens are rejected
// even when their signature and expiry still hold.
func Middleware(service *Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		username, err := service.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), usernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
