package models

import "github.com/golang-jwt/jwt/v5"

// Portal roles carried in the JWT portal_role claim.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// PortalClaims represents the JWT claims issued by the identity provider
// for portal sessions. Tokens are verified against the provider's JWKS.
type PortalClaims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email"`
	Role                 string `json:"role"`        // "authenticated" or "anon"
	PortalRole           string `json:"portal_role"` // "member" or "admin"
	MemberID             string `json:"member_id"`   // portal member row, may be empty pre-onboarding
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *PortalClaims) GetUserID() string {
	return c.Subject
}

// IsAdmin reports whether the token carries the admin portal role.
func (c *PortalClaims) IsAdmin() bool {
	return c.PortalRole == RoleAdmin
}
