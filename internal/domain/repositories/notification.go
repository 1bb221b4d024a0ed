package repositories

import (
	"context"
	"time"

	"namcportal/internal/domain/models"
)

// NotificationRepository persists the delivery queue.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, ns []models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByMember(ctx context.Context, memberID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, memberID string) (int, error)
	MarkRead(ctx context.Context, id, memberID string) error
	MarkAllRead(ctx context.Context, memberID string) error

	// ClaimDue atomically claims up to limit pending rows due at or before
	// now (FOR UPDATE SKIP LOCKED) so concurrent dispatchers never double
	// deliver.
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error)
	Update(ctx context.Context, n *models.Notification) error
}
