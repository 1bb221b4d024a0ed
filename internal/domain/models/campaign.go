package models

import (
	"time"
)

// Campaign lifecycle.
const (
	CampaignDraft     = "draft"
	CampaignActive    = "active"
	CampaignCompleted = "completed"
	CampaignCancelled = "cancelled"
)

// Campaign is a learning or outreach push aimed at members in the given
// engagement tiers. Activation fans out notifications to the targets.
type Campaign struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description,omitempty" db:"description"`
	Kind        string     `json:"kind" db:"kind"` // course, webinar, outreach
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`
	TargetTiers []string   `json:"target_tiers" db:"target_tiers"`
	Status      string     `json:"status" db:"status"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
