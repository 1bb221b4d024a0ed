package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"namcportal/internal/domain/models"
)

type fakeNotificationRepo struct {
	due     []models.Notification
	updated []models.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	return nil
}

func (f *fakeNotificationRepo) CreateBatch(ctx context.Context, ns []models.Notification) error {
	return nil
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) ListByMember(ctx context.Context, memberID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) CountUnread(ctx context.Context, memberID string) (int, error) {
	return 0, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, memberID string) error {
	return nil
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, memberID string) error {
	return nil
}

// ClaimDue mirrors the repository claim: returned rows are handed out once
// and come back marked processing.
func (f *fakeNotificationRepo) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	due := f.due
	f.due = nil
	for i := range due {
		due[i].Status = models.NotificationProcessing
	}
	return due, nil
}

func (f *fakeNotificationRepo) Update(ctx context.Context, n *models.Notification) error {
	f.updated = append(f.updated, *n)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 30 * time.Second},
		{1, 30 * time.Second},
		{2, time.Minute},
		{3, 2 * time.Minute},
		{4, 4 * time.Minute},
		{7, 32 * time.Minute},
		{8, time.Hour},
		{20, time.Hour},
		{100, time.Hour},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempts); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestDispatchOnceInAppDelivered(t *testing.T) {
	repo := &fakeNotificationRepo{
		due: []models.Notification{
			{ID: "n1", Channel: models.ChannelInApp, Status: models.NotificationPending, MaxAttempts: 5},
		},
	}
	d := NewDispatcher(repo, map[string]Deliverer{
		models.ChannelInApp: InAppDeliverer(),
	}, time.Second, 10, testLogger())

	processed, err := d.DispatchOnce(context.Background())
	if err != nil {
		t.Fatalf("DispatchOnce: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("updates = %d, want 1", len(repo.updated))
	}

	got := repo.updated[0]
	if got.Status != models.NotificationDelivered {
		t.Errorf("status = %q, want %q", got.Status, models.NotificationDelivered)
	}
	if got.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", got.Attempts)
	}
	if got.LastError != nil {
		t.Errorf("last error = %q, want nil", *got.LastError)
	}
}

func TestDispatchOnceFailureReschedules(t *testing.T) {
	repo := &fakeNotificationRepo{
		due: []models.Notification{
			{ID: "n1", Channel: models.ChannelEmail, Status: models.NotificationPending, Attempts: 1, MaxAttempts: 5},
		},
	}
	failing := DelivererFunc(func(ctx context.Context, n *models.Notification) error {
		return errors.New("relay unreachable")
	})
	d := NewDispatcher(repo, map[string]Deliverer{
		models.ChannelEmail: failing,
	}, time.Second, 10, testLogger())

	start := time.Now().UTC()
	if _, err := d.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("DispatchOnce: %v", err)
	}

	got := repo.updated[0]
	// The claim marked the row processing; a reschedule must release it
	// back to pending or no later pass would ever pick it up again.
	if got.Status != models.NotificationPending {
		t.Errorf("status = %q, want pending after reschedule", got.Status)
	}
	if got.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", got.Attempts)
	}
	if got.LastError == nil || *got.LastError != "relay unreachable" {
		t.Errorf("last error = %v, want relay unreachable", got.LastError)
	}
	// Second failure backs off by a minute.
	if got.NextAttemptAt.Before(start.Add(time.Minute)) {
		t.Errorf("next attempt %v scheduled sooner than one minute after %v", got.NextAttemptAt, start)
	}
}

func TestDispatchOnceMaxAttemptsFails(t *testing.T) {
	repo := &fakeNotificationRepo{
		due: []models.Notification{
			{ID: "n1", Channel: models.ChannelEmail, Status: models.NotificationPending, Attempts: 4, MaxAttempts: 5},
		},
	}
	failing := DelivererFunc(func(ctx context.Context, n *models.Notification) error {
		return errors.New("boom")
	})
	d := NewDispatcher(repo, map[string]Deliverer{
		models.ChannelEmail: failing,
	}, time.Second, 10, testLogger())

	if _, err := d.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("DispatchOnce: %v", err)
	}

	got := repo.updated[0]
	if got.Status != models.NotificationFailed {
		t.Errorf("status = %q, want %q", got.Status, models.NotificationFailed)
	}
	if got.Attempts != 5 {
		t.Errorf("attempts = %d, want 5", got.Attempts)
	}
}

func TestDispatchOnceUnknownChannel(t *testing.T) {
	repo := &fakeNotificationRepo{
		due: []models.Notification{
			{ID: "n1", Channel: "carrier_pigeon", Status: models.NotificationPending, MaxAttempts: 1},
		},
	}
	d := NewDispatcher(repo, map[string]Deliverer{}, time.Second, 10, testLogger())

	if _, err := d.DispatchOnce(context.Background()); err != nil {
		t.Fatalf("DispatchOnce: %v", err)
	}

	got := repo.updated[0]
	if got.Status != models.NotificationFailed {
		t.Errorf("status = %q, want %q", got.Status, models.NotificationFailed)
	}
	if got.LastError == nil {
		t.Error("expected last error for unknown channel")
	}
}
