package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

// PostgresSyncStateRepository implements the SyncStateRepository interface
type PostgresSyncStateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSyncStateRepository creates a new sync state repository
func NewSyncStateRepository(config *RepositoryConfig) repositories.SyncStateRepository {
	return &PostgresSyncStateRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// MarkDirty flags the member for the next outbound sync pass
func (r *PostgresSyncStateRepository) MarkDirty(ctx context.Context, memberID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (member_id, dirty, updated_at)
		VALUES ($1, TRUE, NOW())
		ON CONFLICT (member_id) DO UPDATE SET
			dirty = TRUE,
			updated_at = NOW()
	`, r.tables.SyncStates)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, memberID); err != nil {
		return fmt.Errorf("mark dirty: %w", err)
	}

	return nil
}

// Get retrieves the sync row for a member
func (r *PostgresSyncStateRepository) Get(ctx context.Context, memberID string) (*models.SyncState, error) {
	query := fmt.Sprintf(`
		SELECT member_id, contact_id, dirty, last_synced_at, last_error, updated_at
		FROM %s
		WHERE member_id = $1
	`, r.tables.SyncStates)

	var s models.SyncState
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, memberID).Scan(
		&s.MemberID,
		&s.ContactID,
		&s.Dirty,
		&s.LastSyncedAt,
		&s.LastError,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("sync state for member %s: %w", memberID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get sync state: %w", err)
	}

	return &s, nil
}

// ListDirty returns members awaiting an outbound push, oldest first
func (r *PostgresSyncStateRepository) ListDirty(ctx context.Context, limit int) ([]models.SyncState, error) {
	query := fmt.Sprintf(`
		SELECT member_id, contact_id, dirty, last_synced_at, last_error, updated_at
		FROM %s
		WHERE dirty = TRUE
		ORDER BY updated_at ASC
		LIMIT $1
	`, r.tables.SyncStates)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list dirty sync states: %w", err)
	}
	defer rows.Close()

	states := []models.SyncState{}
	for rows.Next() {
		var s models.SyncState
		err := rows.Scan(&s.MemberID, &s.ContactID, &s.Dirty, &s.LastSyncedAt, &s.LastError, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan sync state: %w", err)
		}
		states = append(states, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sync states: %w", err)
	}

	return states, nil
}

// Update rewrites the bookkeeping columns
func (r *PostgresSyncStateRepository) Update(ctx context.Context, s *models.SyncState) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET contact_id = $2, dirty = $3, last_synced_at = $4, last_error = $5,
			updated_at = NOW()
		WHERE member_id = $1
		RETURNING updated_at
	`, r.tables.SyncStates)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		s.MemberID,
		s.ContactID,
		s.Dirty,
		s.LastSyncedAt,
		s.LastError,
	).Scan(&s.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("sync state for member %s: %w", s.MemberID, domain.ErrNotFound)
		}
		return fmt.Errorf("update sync state: %w", err)
	}

	return nil
}
