package repositories

import (
	"context"

	"namcportal/internal/domain/models"
)

// ProjectRepository persists bidding opportunities.
type ProjectRepository interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	List(ctx context.Context, filter *models.ProjectFilter) ([]models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	SoftDelete(ctx context.Context, id string) error
}

// BidRepository persists bids. One live bid per member per project is
// enforced both here (partial unique index) and in the service.
type BidRepository interface {
	Create(ctx context.Context, b *models.Bid) error
	GetByID(ctx context.Context, id string) (*models.Bid, error)
	// GetLive returns the member's non-withdrawn bid on the project, or
	// nil when none exists.
	GetLive(ctx context.Context, projectID, memberID string) (*models.Bid, error)
	ListByProject(ctx context.Context, projectID string) ([]models.Bid, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Bid, error)
	Update(ctx context.Context, b *models.Bid) error
}
