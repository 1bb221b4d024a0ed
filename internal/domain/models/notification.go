package models

import (
	"time"
)

// Notification channels.
const (
	ChannelInApp   = "in_app"
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// Notification delivery states. pending → sent → delivered on success;
// pending → (retry × N) → failed on repeated delivery errors. processing
// marks a row claimed by a dispatcher while the attempt is in flight.
const (
	NotificationPending    = "pending"
	NotificationProcessing = "processing"
	NotificationSent       = "sent"
	NotificationDelivered  = "delivered"
	NotificationFailed     = "failed"
)

// Notification is one queued message for one member on one channel. The
// dispatcher polls pending rows whose next_attempt_at has passed.
type Notification struct {
	ID            string         `json:"id" db:"id"`
	MemberID      string         `json:"member_id" db:"member_id"`
	Channel       string         `json:"channel" db:"channel"`
	Subject       string         `json:"subject" db:"subject"`
	Body          string         `json:"body" db:"body"`
	Payload       map[string]any `json:"payload,omitempty" db:"payload"`
	Status        string         `json:"status" db:"status"`
	Attempts      int            `json:"attempts" db:"attempts"`
	MaxAttempts   int            `json:"max_attempts" db:"max_attempts"`
	NextAttemptAt time.Time      `json:"next_attempt_at" db:"next_attempt_at"`
	LastError     *string        `json:"last_error,omitempty" db:"last_error"`
	ReadAt        *time.Time     `json:"read_at,omitempty" db:"read_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the notification has left the queue.
func (n *Notification) Terminal() bool {
	return n.Status == NotificationDelivered || n.Status == NotificationFailed
}
