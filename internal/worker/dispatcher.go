package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

const (
	backoffBase = 30 * time.Second
	backoffCap  = time.Hour
)

// Deliverer sends one notification over a single channel.
type Deliverer interface {
	Deliver(ctx context.Context, n *models.Notification) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, n *models.Notification) error

func (f DelivererFunc) Deliver(ctx context.Context, n *models.Notification) error {
	return f(ctx, n)
}

// Dispatcher polls the notification queue and attempts delivery. The
// repository claim flips rows to processing atomically, so multiple
// dispatcher instances can run side by side without double-delivering.
type Dispatcher struct {
	notificationRepo repositories.NotificationRepository
	deliverers       map[string]Deliverer
	interval         time.Duration
	batchSize        int
	logger           *slog.Logger
}

// NewDispatcher creates a dispatcher. The deliverers map is keyed by
// channel name.
func NewDispatcher(
	notificationRepo repositories.NotificationRepository,
	deliverers map[string]Deliverer,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		notificationRepo: notificationRepo,
		deliverers:       deliverers,
		interval:         interval,
		batchSize:        batchSize,
		logger:           logger,
	}
}

// Run polls until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("notification dispatcher started",
		"interval", d.interval,
		"batch_size", d.batchSize)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		processed, err := d.DispatchOnce(ctx)
		if err != nil {
			d.logger.Error("dispatch pass failed", "error", err)
		} else if processed > 0 {
			d.logger.Info("dispatched notifications", "count", processed)
		}

		select {
		case <-ctx.Done():
			d.logger.Info("notification dispatcher stopping")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// DispatchOnce claims one batch of due notifications and attempts delivery.
// It returns the number of rows processed (delivered, rescheduled or failed).
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	due, err := d.notificationRepo.ClaimDue(ctx, now, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("claim due notifications: %w", err)
	}

	for i := range due {
		n := &due[i]
		if err := d.attempt(ctx, n, now); err != nil {
			d.logger.Error("failed to update notification after attempt",
				"notification_id", n.ID, "error", err)
		}
	}

	return len(due), nil
}

// attempt makes one delivery attempt and persists the outcome.
func (d *Dispatcher) attempt(ctx context.Context, n *models.Notification, now time.Time) error {
	n.Attempts++

	var deliverErr error
	deliverer, ok := d.deliverers[n.Channel]
	if !ok {
		deliverErr = fmt.Errorf("no deliverer registered for channel %q", n.Channel)
	} else {
		deliverErr = deliverer.Deliver(ctx, n)
	}

	if deliverErr == nil {
		n.LastError = nil
		if n.Channel == models.ChannelInApp {
			// In-app rows land in the member's inbox the moment they are
			// written, there is no downstream hop to wait on.
			n.Status = models.NotificationDelivered
		} else {
			n.Status = models.NotificationSent
		}
		return d.notificationRepo.Update(ctx, n)
	}

	msg := deliverErr.Error()
	n.LastError = &msg

	if n.Attempts >= n.MaxAttempts {
		n.Status = models.NotificationFailed
		d.logger.Warn("notification exhausted retries",
			"notification_id", n.ID,
			"channel", n.Channel,
			"attempts", n.Attempts,
			"error", msg)
	} else {
		// Release the processing claim so a later pass retries the row.
		n.Status = models.NotificationPending
		n.NextAttemptAt = now.Add(Backoff(n.Attempts))
		d.logger.Info("notification delivery failed, rescheduled",
			"notification_id", n.ID,
			"channel", n.Channel,
			"attempt", n.Attempts,
			"next_attempt_at", n.NextAttemptAt,
			"error", msg)
	}

	return d.notificationRepo.Update(ctx, n)
}

// Backoff returns the delay before the next attempt after the given number
// of failed attempts: base * 2^(attempts-1), capped.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	// 2^7 * 30s already exceeds the cap, avoid shifting into overflow.
	if attempts > 8 {
		return backoffCap
	}
	delay := backoffBase << (attempts - 1)
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}
