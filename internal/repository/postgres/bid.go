package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

// PostgresBidRepository implements the BidRepository interface
type PostgresBidRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewBidRepository creates a new bid repository
func NewBidRepository(config *RepositoryConfig) repositories.BidRepository {
	return &PostgresBidRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const bidColumns = `id, project_id, member_id, amount, timeline_days, notes,
	ai_generated, confidence, status, created_at, updated_at`

func scanBid(row interface{ Scan(...any) error }, b *models.Bid) error {
	return row.Scan(
		&b.ID,
		&b.ProjectID,
		&b.MemberID,
		&b.Amount,
		&b.TimelineDays,
		&b.Notes,
		&b.AIGenerated,
		&b.Confidence,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

// Create inserts a bid. A partial unique index on (project_id, member_id)
// WHERE status <> 'withdrawn' backs the one-live-bid rule.
func (r *PostgresBidRepository) Create(ctx context.Context, b *models.Bid) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, member_id, amount, timeline_days, notes,
			ai_generated, confidence, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Bids)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.ProjectID,
		b.MemberID,
		b.Amount,
		b.TimelineDays,
		b.Notes,
		b.AIGenerated,
		b.Confidence,
		b.Status,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      "a live bid already exists for this project",
				ResourceType: "bid",
			}
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", b.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create bid: %w", err)
	}

	return nil
}

// GetByID retrieves a bid
func (r *PostgresBidRepository) GetByID(ctx context.Context, id string) (*models.Bid, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, bidColumns, r.tables.Bids)

	var b models.Bid
	executor := GetExecutor(ctx, r.pool)
	if err := scanBid(executor.QueryRow(ctx, query, id), &b); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("bid %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get bid: %w", err)
	}

	return &b, nil
}

// GetLive returns the member's non-withdrawn bid on the project, nil if none
func (r *PostgresBidRepository) GetLive(ctx context.Context, projectID, memberID string) (*models.Bid, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1 AND member_id = $2 AND status <> 'withdrawn'
	`, bidColumns, r.tables.Bids)

	var b models.Bid
	executor := GetExecutor(ctx, r.pool)
	if err := scanBid(executor.QueryRow(ctx, query, projectID, memberID), &b); err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get live bid: %w", err)
	}

	return &b, nil
}

// ListByProject returns all bids on a project, lowest amount first
func (r *PostgresBidRepository) ListByProject(ctx context.Context, projectID string) ([]models.Bid, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE project_id = $1
		ORDER BY amount ASC
	`, bidColumns, r.tables.Bids)

	return r.list(ctx, query, projectID)
}

// ListByMember returns a member's bids, newest first
func (r *PostgresBidRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Bid, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, bidColumns, r.tables.Bids)

	return r.list(ctx, query, memberID, limit, offset)
}

func (r *PostgresBidRepository) list(ctx context.Context, query string, args ...any) ([]models.Bid, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	bids := []models.Bid{}
	for rows.Next() {
		var b models.Bid
		if err := scanBid(rows, &b); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}

	return bids, nil
}

// Update rewrites the bid state columns
func (r *PostgresBidRepository) Update(ctx context.Context, b *models.Bid) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET amount = $2, timeline_days = $3, notes = $4, status = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Bids)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.ID,
		b.Amount,
		b.TimelineDays,
		b.Notes,
		b.Status,
	).Scan(&b.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("bid %s: %w", b.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update bid: %w", err)
	}

	return nil
}
