package models

import (
	"time"
)

// Engagement event kinds. Weights for each kind live in the embedded
// scoring registry; unknown kinds score zero.
const (
	EventLogin           = "login"
	EventAttendance      = "event_attendance"
	EventToolReservation = "tool_reservation"
	EventBidSubmitted    = "bid_submitted"
	EventCourseCompleted = "course_completed"
	EventWebinar         = "webinar"
	EventReferral        = "referral"
)

// Engagement tiers, ordered.
const (
	TierDormant  = "dormant"
	TierCasual   = "casual"
	TierActive   = "active"
	TierChampion = "champion"
)

// EngagementEvent is one recorded member activity.
type EngagementEvent struct {
	ID         string         `json:"id" db:"id"`
	MemberID   string         `json:"member_id" db:"member_id"`
	Kind       string         `json:"kind" db:"kind"`
	OccurredAt time.Time      `json:"occurred_at" db:"occurred_at"`
	Metadata   map[string]any `json:"metadata,omitempty" db:"metadata"`
}

// EngagementScore is the persisted result of the weighted rolling-window
// aggregation for one member.
type EngagementScore struct {
	MemberID   string    `json:"member_id" db:"member_id"`
	Score      float64   `json:"score" db:"score"`
	Tier       string    `json:"tier" db:"tier"`
	EventCount int       `json:"event_count" db:"event_count"`
	WindowDays int       `json:"window_days" db:"window_days"`
	ComputedAt time.Time `json:"computed_at" db:"computed_at"`
}

// KindCount is one row of the per-kind aggregation feeding the score.
type KindCount struct {
	Kind  string `json:"kind" db:"kind"`
	Count int    `json:"count" db:"count"`
}

// TierDistribution is the admin dashboard breakdown.
type TierDistribution struct {
	Tier  string `json:"tier" db:"tier"`
	Count int    `json:"count" db:"count"`
}
