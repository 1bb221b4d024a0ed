package middleware

import (
	"net/http"
	"strings"

	"namcportal/internal/auth"
	"namcportal/internal/httputil"
)

// publicPaths are served without authentication. Webhook requests carry
// their own HMAC signature instead of a bearer token.
var publicPaths = map[string]bool{
	"/health":               true,
	"/api/webhooks/hubspot": true,
}

// AuthMiddleware verifies the bearer token on every request and attaches the
// parsed claims to the request context. Requests to public paths pass
// through unauthenticated.
func AuthMiddleware(verifier auth.JWTVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing credentials")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, httputil.WithClaims(r, claims))
		})
	}
}

// extractToken pulls the JWT from the Authorization header, falling back to
// the access_token cookie set by the browser client.
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAdmin rejects requests whose claims do not carry the admin portal
// role. It must run after AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := httputil.GetClaims(r)
		if claims == nil || !claims.IsAdmin() {
			httputil.RespondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
