package models

import (
	"time"
)

// Reservation lifecycle. Checked-out reservations block availability until
// the tool comes back.
const (
	ReservationPending    = "pending"
	ReservationConfirmed  = "confirmed"
	ReservationCheckedOut = "checked_out"
	ReservationReturned   = "returned"
	ReservationCancelled  = "cancelled"
)

// Tool is a lendable item in the tool library.
type Tool struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Category    string     `json:"category" db:"category"`
	Description string     `json:"description,omitempty" db:"description"`
	DailyRate   float64    `json:"daily_rate" db:"daily_rate"`
	Condition   string     `json:"condition" db:"condition"`
	Quantity    int        `json:"quantity" db:"quantity"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Reservation tracks one member borrowing one tool for a date range.
type Reservation struct {
	ID          string     `json:"id" db:"id"`
	ToolID      string     `json:"tool_id" db:"tool_id"`
	MemberID    string     `json:"member_id" db:"member_id"`
	StartDate   time.Time  `json:"start_date" db:"start_date"`
	EndDate     time.Time  `json:"end_date" db:"end_date"`
	Status      string     `json:"status" db:"status"`
	LateFee     float64    `json:"late_fee" db:"late_fee"`
	CheckedOutAt *time.Time `json:"checked_out_at,omitempty" db:"checked_out_at"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty" db:"returned_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Active reports whether the reservation still holds inventory.
func (r *Reservation) Active() bool {
	switch r.Status {
	case ReservationPending, ReservationConfirmed, ReservationCheckedOut:
		return true
	}
	return false
}

// ToolFilter narrows catalog listings.
type ToolFilter struct {
	Query      string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}
