package middleware

import (
	"context"
	"net/http"

	"github.com/townboard/server/internal/auth"
)

const sessionKey contextKey = "session"

// Session validates the session cookie when present and stores the claims
// in the request context. Requests without a valid session pass through
// anonymously.
func Session(manager *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := manager.FromRequest(r)
			if err == nil {
				ctx := context.WithValue(r.Context(), sessionKey, claims)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects requests that do not carry a valid session.
func RequireSession(manager *auth.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := manager.FromRequest(r)
			if err != nil {
				http.Error(w, "You must be logged in to view this page.", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaims returns the session stored in the request context, or nil
// for anonymous requests.
func SessionClaims(r *http.Request) *auth.SessionClaims {
	if r == nil {
		return nil
	}
	if claims, ok := r.Context().Value(sessionKey).(*auth.SessionClaims); ok {
		return claims
	}
	return nil
}
