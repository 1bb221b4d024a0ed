package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"namcportal/internal/config"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
)

var validChannels = map[string]bool{
	models.ChannelInApp:   true,
	models.ChannelEmail:   true,
	models.ChannelWebhook: true,
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	txManager        repositories.TransactionManager
	logger           *slog.Logger
}

// NewNotificationService creates a new notification queue service
func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// Enqueue validates and stores a pending notification, due immediately
func (s *notificationService) Enqueue(ctx context.Context, req *services.EnqueueNotificationRequest) (*models.Notification, error) {
	if err := s.validateEnqueueRequest(req, true); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	notification := buildNotification(req, req.MemberID, time.Now())

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	s.logger.Debug("notification enqueued",
		"id", notification.ID,
		"member_id", notification.MemberID,
		"channel", notification.Channel,
	)

	return notification, nil
}

// EnqueueBatch stores one notification per member id, sharing channel and
// content. Used by campaign fan-out.
func (s *notificationService) EnqueueBatch(ctx context.Context, memberIDs []string, req *services.EnqueueNotificationRequest) (int, error) {
	if err := s.validateEnqueueRequest(req, false); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if len(memberIDs) == 0 {
		return 0, nil
	}

	now := time.Now()
	notifications := make([]models.Notification, 0, len(memberIDs))
	for _, memberID := range memberIDs {
		notifications = append(notifications, *buildNotification(req, memberID, now))
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.notificationRepo.CreateBatch(ctx, notifications)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("notification batch enqueued",
		"count", len(notifications),
		"channel", req.Channel,
	)

	return len(notifications), nil
}

// ListMine returns the member's notifications, newest first
func (s *notificationService) ListMine(ctx context.Context, memberID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	normalizePage(&limit, &offset)
	return s.notificationRepo.ListByMember(ctx, memberID, unreadOnly, limit, offset)
}

// CountUnread returns the member's unread badge count
func (s *notificationService) CountUnread(ctx context.Context, memberID string) (int, error) {
	return s.notificationRepo.CountUnread(ctx, memberID)
}

// MarkRead stamps one notification read; scoped to the member so nobody can
// mark another member's messages.
func (s *notificationService) MarkRead(ctx context.Context, id, memberID string) error {
	return s.notificationRepo.MarkRead(ctx, id, memberID)
}

// MarkAllRead stamps every unread notification for the member
func (s *notificationService) MarkAllRead(ctx context.Context, memberID string) error {
	return s.notificationRepo.MarkAllRead(ctx, memberID)
}

func buildNotification(req *services.EnqueueNotificationRequest, memberID string, now time.Time) *models.Notification {
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = config.DefaultMaxAttempts
	}

	return &models.Notification{
		MemberID:      memberID,
		Channel:       req.Channel,
		Subject:       req.Subject,
		Body:          req.Body,
		Payload:       req.Payload,
		Status:        models.NotificationPending,
		Attempts:      0,
		MaxAttempts:   maxAttempts,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *notificationService) validateEnqueueRequest(req *services.EnqueueNotificationRequest, requireMember bool) error {
	rules := []*validation.FieldRules{
		validation.Field(&req.Channel, validation.Required),
		validation.Field(&req.Subject, validation.Required, validation.Length(1, config.MaxSubjectLength)),
		validation.Field(&req.Body, validation.Length(0, config.MaxBodyLength)),
	}
	if requireMember {
		rules = append(rules, validation.Field(&req.MemberID, validation.Required))
	}
	if err := validation.ValidateStruct(req, rules...); err != nil {
		return err
	}
	if !validChannels[req.Channel] {
		return fmt.Errorf("unknown channel %q", req.Channel)
	}
	return nil
}
