package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"namcportal/internal/domain/models"
	"namcportal/internal/httputil"
)

// parseUUID validates that an identifier is a well-formed UUID.
func parseUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// requireClaims returns the request's verified claims or writes a 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*models.PortalClaims, bool) {
	claims := httputil.GetClaims(r)
	if claims == nil {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}
	return claims, true
}

// requireMember returns the claims when the caller has completed member
// onboarding, or writes a 403.
func requireMember(w http.ResponseWriter, r *http.Request) (*models.PortalClaims, bool) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return nil, false
	}
	if claims.MemberID == "" {
		httputil.RespondError(w, http.StatusForbidden, "complete your member profile first")
		return nil, false
	}
	return claims, true
}

// queryInt reads an integer query parameter, zero when absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// queryBool reads a boolean query parameter, false when absent or malformed.
func queryBool(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}
