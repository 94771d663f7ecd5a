package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nonthaphat/launchkit-api/shared/auth"
)

type contextKey struct{}

// SessionClaimsKey is the context key RequireSession stores validated claims
// under.
var SessionClaimsKey = contextKey{}

// RequireSession guards a route group with session token authentication. The
// token is taken from the Authorization bearer header, falling back to the
// named cookie. Validated claims are stored in the request context; requests
// without a valid token are rejected with 401.
func RequireSession(
	jwtAuth auth.JWTAuthenticator,
	secret string,
	cookieName string,
	newClaims func() jwt.Claims,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r, cookieName)
			if token == "" {
				unauthorized(w)
				return
			}

			claims := newClaims()
			if _, err := jwtAuth.ValidateTokenWithClaims(token, secret, claims); err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), SessionClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims RequireSession stored for this request.
func ClaimsFromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(SessionClaimsKey).(jwt.Claims)
	return claims, ok
}

func extractToken(r *http.Request, cookieName string) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}

	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			return c.Value
		}
	}

	return ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid session token"}` + "\n"))
}
