package services

import (
	"context"

	"namcportal/internal/domain/models"
)

// CreateMemberRequest represents a request to create a member profile
type CreateMemberRequest struct {
	UserID         string         `json:"-"`
	Company        string         `json:"company"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Specialties    []string       `json:"specialties"`
	City           string         `json:"city"`
	State          string         `json:"state"`
	Website        string         `json:"website"`
	Certifications map[string]any `json:"certifications"`
	IsPublic       *bool          `json:"is_public"`
}

// UpdateMemberRequest represents a partial profile update. Nil pointers
// leave the field untouched.
type UpdateMemberRequest struct {
	Company        *string        `json:"company"`
	FirstName      *string        `json:"first_name"`
	LastName       *string        `json:"last_name"`
	Phone          *string        `json:"phone"`
	Specialties    []string       `json:"specialties"`
	City           *string        `json:"city"`
	State          *string        `json:"state"`
	Website        *string        `json:"website"`
	Certifications map[string]any `json:"certifications"`
	IsPublic       *bool          `json:"is_public"`
}

// MemberService defines business logic operations for the member directory
type MemberService interface {
	// CreateMember creates a profile and flags it for CRM sync
	CreateMember(ctx context.Context, req *CreateMemberRequest) (*models.Member, error)

	// GetMember retrieves a profile; private profiles are only visible to
	// their owner and admins
	GetMember(ctx context.Context, id string, viewer *models.PortalClaims) (*models.Member, error)

	// ListMembers searches the directory
	ListMembers(ctx context.Context, filter *models.MemberFilter, viewer *models.PortalClaims) ([]models.Member, error)

	// UpdateMember applies a partial update (owner or admin)
	UpdateMember(ctx context.Context, id string, req *UpdateMemberRequest, actor *models.PortalClaims) (*models.Member, error)

	// DeleteMember soft-deletes a profile (owner or admin)
	DeleteMember(ctx context.Context, id string, actor *models.PortalClaims) error

	// ScanBusinessCard runs OCR over a card image and extracts profile
	// field suggestions; nothing is persisted
	ScanBusinessCard(ctx context.Context, image []byte) (*models.CardScan, error)
}
