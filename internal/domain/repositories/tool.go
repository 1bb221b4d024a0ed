package repositories

import (
	"context"
	"time"

	"namcportal/internal/domain/models"
)

// ToolRepository persists the lending catalog.
type ToolRepository interface {
	Create(ctx context.Context, t *models.Tool) error
	GetByID(ctx context.Context, id string) (*models.Tool, error)
	List(ctx context.Context, filter *models.ToolFilter) ([]models.Tool, error)
	Update(ctx context.Context, t *models.Tool) error
	SoftDelete(ctx context.Context, id string) error
}

// ReservationRepository persists borrow records.
type ReservationRepository interface {
	Create(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Reservation, error)
	ListByTool(ctx context.Context, toolID string, limit, offset int) ([]models.Reservation, error)
	// CountOverlapping counts active reservations for the tool whose date
	// range intersects [start, end]. Used for the availability check.
	CountOverlapping(ctx context.Context, toolID string, start, end time.Time) (int, error)
	Update(ctx context.Context, r *models.Reservation) error
}
