package services

import (
	"context"

	"namcportal/internal/domain/models"
	"namcportal/internal/httputil"
)

// CreateProjectRequest represents a request to post a bidding opportunity
type CreateProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Client      string   `json:"client"`
	Location    string   `json:"location"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
	BidDeadline string   `json:"bid_deadline"` // RFC 3339, optional
	CreatedBy   string   `json:"-"`
}

// UpdateProjectRequest represents a partial project update
type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Client      *string  `json:"client"`
	Location    *string  `json:"location"`
	BudgetMin   *float64 `json:"budget_min"`
	BudgetMax   *float64 `json:"budget_max"`
	// Explicit JSON null clears the deadline, absence leaves it alone.
	BidDeadline httputil.OptionalString `json:"bid_deadline"`
}

// SubmitBidRequest represents a member's offer on a project
type SubmitBidRequest struct {
	ProjectID    string   `json:"-"`
	MemberID     string   `json:"-"`
	Amount       float64  `json:"amount"`
	TimelineDays int      `json:"timeline_days"`
	Notes        string   `json:"notes"`
	AIGenerated  bool     `json:"ai_generated"`
	Confidence   *float64 `json:"confidence"`
}

// ProjectService defines business logic for bidding opportunities
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context, filter *models.ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest, actor *models.PortalClaims) (*models.Project, error)

	// Publish opens the project for bids; Close stops them; Award closes
	// the project, marks the winning bid and the rest lost, and creates a
	// HubSpot deal for the winner.
	Publish(ctx context.Context, id string, actor *models.PortalClaims) (*models.Project, error)
	Close(ctx context.Context, id string, actor *models.PortalClaims) (*models.Project, error)
	Award(ctx context.Context, id, bidID string, actor *models.PortalClaims) (*models.Project, error)

	DeleteProject(ctx context.Context, id string, actor *models.PortalClaims) error
}

// BidService defines business logic for bids and the AI bid assist
type BidService interface {
	// SubmitBid records an offer; rejects duplicates and projects not
	// accepting bids
	SubmitBid(ctx context.Context, req *SubmitBidRequest) (*models.Bid, error)

	// GenerateSuggestion produces an advisory amount/timeline/narrative
	// from the heuristic cost model plus an LLM read of the scope; falls
	// back to heuristics alone when the LLM is unavailable
	GenerateSuggestion(ctx context.Context, projectID, memberID string) (*models.BidSuggestion, error)

	ListByProject(ctx context.Context, projectID string, actor *models.PortalClaims) ([]models.Bid, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Bid, error)
	Withdraw(ctx context.Context, bidID string, actor *models.PortalClaims) (*models.Bid, error)
}
