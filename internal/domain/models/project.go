package models

import (
	"time"
)

// Project lifecycle.
const (
	ProjectDraft     = "draft"
	ProjectPublished = "published"
	ProjectClosed    = "closed"
	ProjectAwarded   = "awarded"
)

// Bid lifecycle.
const (
	BidSubmitted   = "submitted"
	BidShortlisted = "shortlisted"
	BidWon         = "won"
	BidLost        = "lost"
	BidWithdrawn   = "withdrawn"
)

// Project is a construction opportunity members can bid on.
type Project struct {
	ID          string     `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Client      string     `json:"client,omitempty" db:"client"`
	Location    string     `json:"location,omitempty" db:"location"`
	BudgetMin   *float64   `json:"budget_min,omitempty" db:"budget_min"`
	BudgetMax   *float64   `json:"budget_max,omitempty" db:"budget_max"`
	BidDeadline *time.Time `json:"bid_deadline,omitempty" db:"bid_deadline"`
	Status      string     `json:"status" db:"status"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// AcceptingBids reports whether a bid may be submitted right now.
func (p *Project) AcceptingBids(now time.Time) bool {
	if p.Status != ProjectPublished {
		return false
	}
	if p.BidDeadline != nil && now.After(*p.BidDeadline) {
		return false
	}
	return true
}

// Bid is a member's offer on a project. At most one live (non-withdrawn)
// bid per member per project.
type Bid struct {
	ID           string    `json:"id" db:"id"`
	ProjectID    string    `json:"project_id" db:"project_id"`
	MemberID     string    `json:"member_id" db:"member_id"`
	Amount       float64   `json:"amount" db:"amount"`
	TimelineDays int       `json:"timeline_days" db:"timeline_days"`
	Notes        string    `json:"notes,omitempty" db:"notes"`
	AIGenerated  bool      `json:"ai_generated" db:"ai_generated"`
	Confidence   *float64  `json:"confidence,omitempty" db:"confidence"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// BidSuggestion is the AI bid-assist output. It is advisory only; the
// member still submits the actual bid.
type BidSuggestion struct {
	Amount       float64 `json:"amount"`
	TimelineDays int     `json:"timeline_days"`
	Confidence   float64 `json:"confidence"`
	Narrative    string  `json:"narrative,omitempty"`
	// Degraded is set when the LLM was unavailable and the suggestion
	// comes from the heuristic cost model alone.
	Degraded bool `json:"degraded"`
}

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Status   string
	Location string
	Query    string
	Limit    int
	Offset   int
}
