package repositories

import (
	"context"

	"namcportal/internal/domain/models"
)

// SyncStateRepository persists per-member HubSpot sync bookkeeping.
type SyncStateRepository interface {
	// MarkDirty flags the member for the next outbound sync pass,
	// creating the row if needed.
	MarkDirty(ctx context.Context, memberID string) error
	Get(ctx context.Context, memberID string) (*models.SyncState, error)
	// ListDirty returns members awaiting an outbound push.
	ListDirty(ctx context.Context, limit int) ([]models.SyncState, error)
	Update(ctx context.Context, s *models.SyncState) error
}
