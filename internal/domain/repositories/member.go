package repositories

import (
	"context"

	"namcportal/internal/domain/models"
)

// MemberRepository persists contractor profiles.
type MemberRepository interface {
	Create(ctx context.Context, m *models.Member) error
	GetByID(ctx context.Context, id string) (*models.Member, error)
	GetByUserID(ctx context.Context, userID string) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	GetByHubSpotContactID(ctx context.Context, contactID string) (*models.Member, error)
	List(ctx context.Context, filter *models.MemberFilter) ([]models.Member, error)
	Update(ctx context.Context, m *models.Member) error
	// SoftDelete stamps deleted_at; the row stays for history and sync.
	SoftDelete(ctx context.Context, id string) error
}
