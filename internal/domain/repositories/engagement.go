package repositories

import (
	"context"
	"time"

	"namcportal/internal/domain/models"
)

// EngagementRepository persists activity events and computed scores.
type EngagementRepository interface {
	RecordEvent(ctx context.Context, e *models.EngagementEvent) error
	// CountByKind aggregates event counts per kind for one member since
	// the window start. This is the SQL aggregation the score is built on.
	CountByKind(ctx context.Context, memberID string, since time.Time) ([]models.KindCount, error)
	// ActiveMemberIDs returns members with at least one event since the
	// window start, for the nightly recompute.
	ActiveMemberIDs(ctx context.Context, since time.Time) ([]string, error)
	UpsertScore(ctx context.Context, s *models.EngagementScore) error
	GetScore(ctx context.Context, memberID string) (*models.EngagementScore, error)
	// MemberIDsByTiers returns members whose latest score falls in any of
	// the given tiers. Campaign activation fans out through this.
	MemberIDsByTiers(ctx context.Context, tiers []string) ([]string, error)
	TierDistribution(ctx context.Context) ([]models.TierDistribution, error)
}

// CampaignRepository persists learning/outreach campaigns.
type CampaignRepository interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Campaign, error)
	Update(ctx context.Context, c *models.Campaign) error
}
