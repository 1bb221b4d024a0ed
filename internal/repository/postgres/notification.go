package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

// PostgresNotificationRepository implements the NotificationRepository interface
type PostgresNotificationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(config *RepositoryConfig) repositories.NotificationRepository {
	return &PostgresNotificationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const notificationColumns = `id, member_id, channel, subject, body, payload,
	status, attempts, max_attempts, next_attempt_at, last_error, read_at,
	created_at, updated_at`

func scanNotification(row interface{ Scan(...any) error }, n *models.Notification) error {
	return row.Scan(
		&n.ID,
		&n.MemberID,
		&n.Channel,
		&n.Subject,
		&n.Body,
		&n.Payload,
		&n.Status,
		&n.Attempts,
		&n.MaxAttempts,
		&n.NextAttemptAt,
		&n.LastError,
		&n.ReadAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
}

// Create inserts one pending notification
func (r *PostgresNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (member_id, channel, subject, body, payload, status,
			attempts, max_attempts, next_attempt_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		n.MemberID,
		n.Channel,
		n.Subject,
		n.Body,
		n.Payload,
		n.Status,
		n.Attempts,
		n.MaxAttempts,
		n.NextAttemptAt,
		n.CreatedAt,
		n.UpdatedAt,
	).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("member %s: %w", n.MemberID, domain.ErrNotFound)
		}
		return fmt.Errorf("create notification: %w", err)
	}

	return nil
}

// CreateBatch inserts many notifications. Callers wrap it in ExecTx; at
// campaign fan-out sizes a row-per-insert loop inside one transaction holds
// up fine.
func (r *PostgresNotificationRepository) CreateBatch(ctx context.Context, ns []models.Notification) error {
	for i := range ns {
		if err := r.Create(ctx, &ns[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a notification
func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, notificationColumns, r.tables.Notifications)

	var n models.Notification
	executor := GetExecutor(ctx, r.pool)
	if err := scanNotification(executor.QueryRow(ctx, query, id), &n); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get notification: %w", err)
	}

	return &n, nil
}

// ListByMember returns a member's notifications, newest first
func (r *PostgresNotificationRepository) ListByMember(ctx context.Context, memberID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	cond := "member_id = $1"
	if unreadOnly {
		cond += " AND read_at IS NULL"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, notificationColumns, r.tables.Notifications, cond)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := scanNotification(rows, &n); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread counts a member's unread notifications
func (r *PostgresNotificationRepository) CountUnread(ctx context.Context, memberID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE member_id = $1 AND read_at IS NULL
	`, r.tables.Notifications)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}

	return count, nil
}

// MarkRead stamps read_at on one of the member's notifications
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, memberID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET read_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND member_id = $2 AND read_at IS NULL
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id, memberID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// MarkAllRead stamps read_at on every unread notification for the member
func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, memberID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET read_at = NOW(), updated_at = NOW()
		WHERE member_id = $1 AND read_at IS NULL
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, memberID); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}

	return nil
}

// ClaimDue claims up to limit due pending rows by flipping them to
// processing in one statement. FOR UPDATE SKIP LOCKED on the inner select
// keeps concurrent dispatchers from grabbing the same rows, and the status
// flip keeps them claimed after the statement ends, so delivery attempts do
// not have to hold a transaction open. Rows stuck in processing past the
// stale window (a dispatcher died mid-attempt) become claimable again.
func (r *PostgresNotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]models.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = 'processing', updated_at = NOW()
		WHERE id IN (
			SELECT id
			FROM %s
			WHERE (status = 'pending' AND next_attempt_at <= $1)
			   OR (status = 'processing' AND updated_at <= $1 - INTERVAL '15 minutes')
			ORDER BY next_attempt_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING %s
	`, r.tables.Notifications, r.tables.Notifications, notificationColumns)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("claim due notifications: %w", err)
	}
	defer rows.Close()

	due := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		if err := scanNotification(rows, &n); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		due = append(due, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due notifications: %w", err)
	}

	return due, nil
}

// Update rewrites the delivery state columns
func (r *PostgresNotificationRepository) Update(ctx context.Context, n *models.Notification) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, attempts = $3, next_attempt_at = $4, last_error = $5,
			read_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Notifications)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		n.ID,
		n.Status,
		n.Attempts,
		n.NextAttemptAt,
		n.LastError,
		n.ReadAt,
	).Scan(&n.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("notification %s: %w", n.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update notification: %w", err)
	}

	return nil
}
