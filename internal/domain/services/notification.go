package services

import (
	"context"

	"namcportal/internal/domain/models"
)

// EnqueueNotificationRequest represents one message to queue for delivery
type EnqueueNotificationRequest struct {
	MemberID    string         `json:"member_id"`
	Channel     string         `json:"channel"`
	Subject     string         `json:"subject"`
	Body        string         `json:"body"`
	Payload     map[string]any `json:"payload"`
	MaxAttempts int            `json:"max_attempts"` // 0 → default
}

// NotificationService defines business logic for the notification queue
type NotificationService interface {
	// Enqueue validates and stores a pending notification, due immediately
	Enqueue(ctx context.Context, req *EnqueueNotificationRequest) (*models.Notification, error)

	// EnqueueBatch stores one notification per member id, sharing channel
	// and content. Used by campaign fan-out.
	EnqueueBatch(ctx context.Context, memberIDs []string, req *EnqueueNotificationRequest) (int, error)

	ListMine(ctx context.Context, memberID string, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	CountUnread(ctx context.Context, memberID string) (int, error)
	MarkRead(ctx context.Context, id, memberID string) error
	MarkAllRead(ctx context.Context, memberID string) error
}
