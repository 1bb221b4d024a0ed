package services

import (
	"context"

	"namcportal/internal/domain/models"
)

// HubSpotSyncService keeps member profiles and CRM contacts aligned in both
// directions.
type HubSpotSyncService interface {
	// SyncDirty pushes every dirty member to the CRM. Returns the number
	// of members synced; per-member failures are recorded on the sync
	// state row and do not stop the pass.
	SyncDirty(ctx context.Context) (int, error)

	// SyncMember pushes one member immediately.
	SyncMember(ctx context.Context, memberID string) error

	// ApplyContactChanges applies inbound webhook property changes to the
	// matching member profiles. Returns the number of changes applied.
	ApplyContactChanges(ctx context.Context, changes []models.ContactChange) (int, error)
}
