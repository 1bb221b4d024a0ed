package models

import (
	"time"
)

// SyncState is the per-member HubSpot bookkeeping row. A member is marked
// dirty on every local profile change; the sync job clears the flag after a
// successful contact upsert.
type SyncState struct {
	MemberID     string     `json:"member_id" db:"member_id"`
	ContactID    *string    `json:"contact_id,omitempty" db:"contact_id"`
	Dirty        bool       `json:"dirty" db:"dirty"`
	LastSyncedAt *time.Time `json:"last_synced_at,omitempty" db:"last_synced_at"`
	LastError    *string    `json:"last_error,omitempty" db:"last_error"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// ContactChange is one normalized inbound webhook event. Only
// contact.propertyChange events are applied; everything else is skipped.
type ContactChange struct {
	EventID      int64  `json:"event_id"`
	ContactID    string `json:"contact_id"`
	PropertyName string `json:"property_name"`
	Value        string `json:"value"`
	OccurredAt   time.Time `json:"occurred_at"`
}
