package middleware

import (
	"net/http"
	"strings"

	"blenderforge/internal/auth"
	"blenderforge/internal/httputil"
)

// Auth verifies a Bearer token when one is present and stores the user's
// identity in the request context. Requests without an Authorization header
// pass through anonymously; handlers that need a user enforce it themselves,
// which keeps the public read endpoints on the same chain.
func Auth(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed Authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, claims.Subject, claims.Email))
		})
	}
}
