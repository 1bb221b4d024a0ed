package httputil

import (
	"context"
	"net/http"

	"namcportal/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	claimsKey contextKey = "portalClaims"
)

// WithClaims attaches verified portal claims to the request context.
func WithClaims(r *http.Request, claims *models.PortalClaims) *http.Request {
	ctx := context.WithValue(r.Context(), claimsKey, claims)
	return r.WithContext(ctx)
}

// GetClaims retrieves portal claims from context, nil if the request was
// not authenticated.
func GetClaims(r *http.Request) *models.PortalClaims {
	claims, _ := r.Context().Value(claimsKey).(*models.PortalClaims)
	return claims
}

// GetUserID retrieves the authenticated user ID, empty string if not found.
func GetUserID(r *http.Request) string {
	if claims := GetClaims(r); claims != nil {
		return claims.GetUserID()
	}
	return ""
}
