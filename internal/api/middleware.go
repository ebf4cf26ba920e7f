// Package api implements the WebCraft HTTP surface using chi: the public
// shell pages, uploaded assets and the guarded REST API.
package api

import (
	"net/http"

	"github.com/starford/webcraft/internal/identity"
)

// AuthMiddleware resolves the Authorization header to a principal and
// stores it in the request context. Requests that do not identify a
// caller are rejected with 401.
func AuthMiddleware(v *identity.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := v.Verify(r.Header.Get("Authorization"))
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), principal)))
		})
	}
}

// principalKey keys rate limiting by caller, falling back to the client
// address.
func principalKey(r *http.Request) string {
	if p, ok := identity.Principal(r.Context()); ok {
		return "user:" + p
	}
	return "ip:" + r.RemoteAddr
}

func rateLimited(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusTooManyRequests, errorBody("rate limit exceeded"))
}
