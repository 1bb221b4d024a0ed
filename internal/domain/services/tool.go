package services

import (
	"context"

	"namcportal/internal/domain/models"
)

// CreateToolRequest represents a request to add a tool to the catalog
type CreateToolRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	DailyRate   float64 `json:"daily_rate"`
	Condition   string  `json:"condition"`
	Quantity    int     `json:"quantity"`
}

// UpdateToolRequest represents a partial tool update
type UpdateToolRequest struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	DailyRate   *float64 `json:"daily_rate"`
	Condition   *string  `json:"condition"`
	Quantity    *int     `json:"quantity"`
	IsActive    *bool    `json:"is_active"`
}

// ReserveRequest represents a reservation request for a date range
type ReserveRequest struct {
	ToolID    string `json:"tool_id"`
	MemberID  string `json:"-"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`   // YYYY-MM-DD
}

// ToolService defines business logic for the lending catalog
type ToolService interface {
	// CreateTool adds a tool (admin only, enforced by the handler)
	CreateTool(ctx context.Context, req *CreateToolRequest) (*models.Tool, error)

	// GetTool retrieves one catalog entry
	GetTool(ctx context.Context, id string) (*models.Tool, error)

	// ListTools searches the catalog
	ListTools(ctx context.Context, filter *models.ToolFilter) ([]models.Tool, error)

	// UpdateTool applies a partial update (admin only)
	UpdateTool(ctx context.Context, id string, req *UpdateToolRequest) (*models.Tool, error)

	// DeleteTool retires a tool from the catalog (admin only)
	DeleteTool(ctx context.Context, id string) error

	// Reserve books a tool when inventory is available for the range
	Reserve(ctx context.Context, req *ReserveRequest) (*models.Reservation, error)

	// Checkout hands the tool over; only confirmed reservations qualify
	Checkout(ctx context.Context, reservationID string, actor *models.PortalClaims) (*models.Reservation, error)

	// Return closes the loan and computes the late fee when the tool
	// comes back after the reservation end date
	Return(ctx context.Context, reservationID string, actor *models.PortalClaims) (*models.Reservation, error)

	// Cancel voids a pending or confirmed reservation
	Cancel(ctx context.Context, reservationID string, actor *models.PortalClaims) (*models.Reservation, error)

	// ListReservations returns the member's borrow history
	ListReservations(ctx context.Context, memberID string, limit, offset int) ([]models.Reservation, error)
}
