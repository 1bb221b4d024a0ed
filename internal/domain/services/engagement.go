package services

import (
	"context"

	"namcportal/internal/domain/models"
)

// RecordEventRequest represents one engagement event to record
type RecordEventRequest struct {
	MemberID   string         `json:"member_id"`
	Kind       string         `json:"kind"`
	OccurredAt string         `json:"occurred_at"` // RFC 3339, defaults to now
	Metadata   map[string]any `json:"metadata"`
}

// CreateCampaignRequest represents a learning/outreach campaign
type CreateCampaignRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD, optional
	EndDate     string   `json:"end_date"`   // YYYY-MM-DD, optional
	TargetTiers []string `json:"target_tiers"`
	CreatedBy   string   `json:"-"`
}

// UpdateCampaignRequest represents a partial campaign update
type UpdateCampaignRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Kind        *string  `json:"kind"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	TargetTiers []string `json:"target_tiers"`
}

// EngagementService defines business logic for activity scoring
type EngagementService interface {
	// RecordEvent stores one activity event
	RecordEvent(ctx context.Context, req *RecordEventRequest) (*models.EngagementEvent, error)

	// GetScore serves the member's latest snapshot, from cache when warm
	GetScore(ctx context.Context, memberID string) (*models.EngagementScore, error)

	// ComputeScore aggregates the rolling window, persists the snapshot
	// and refreshes the cache
	ComputeScore(ctx context.Context, memberID string) (*models.EngagementScore, error)

	// RecomputeAll recomputes every member active in the window; run
	// nightly by the worker. Returns the number of members scored.
	RecomputeAll(ctx context.Context) (int, error)

	// Distribution reports member counts per tier (admin dashboard)
	Distribution(ctx context.Context) ([]models.TierDistribution, error)
}

// CampaignService defines business logic for campaigns
type CampaignService interface {
	CreateCampaign(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error)
	GetCampaign(ctx context.Context, id string) (*models.Campaign, error)
	ListCampaigns(ctx context.Context, status string, limit, offset int) ([]models.Campaign, error)
	UpdateCampaign(ctx context.Context, id string, req *UpdateCampaignRequest) (*models.Campaign, error)

	// Activate moves a draft campaign to active and enqueues an in-app
	// notification for every member in the target tiers. Returns the
	// number of notifications queued.
	Activate(ctx context.Context, id string) (*models.Campaign, int, error)
	Complete(ctx context.Context, id string) (*models.Campaign, error)
	Cancel(ctx context.Context, id string) (*models.Campaign, error)
}
