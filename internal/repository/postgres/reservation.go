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

// PostgresReservationRepository implements the ReservationRepository interface
type PostgresReservationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(config *RepositoryConfig) repositories.ReservationRepository {
	return &PostgresReservationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const reservationColumns = `id, tool_id, member_id, start_date, end_date, status,
	late_fee, checked_out_at, returned_at, created_at, updated_at`

func scanReservation(row interface{ Scan(...any) error }, res *models.Reservation) error {
	return row.Scan(
		&res.ID,
		&res.ToolID,
		&res.MemberID,
		&res.StartDate,
		&res.EndDate,
		&res.Status,
		&res.LateFee,
		&res.CheckedOutAt,
		&res.ReturnedAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
}

// Create inserts a reservation
func (r *PostgresReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (tool_id, member_id, start_date, end_date, status,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Reservations)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		res.ToolID,
		res.MemberID,
		res.StartDate,
		res.EndDate,
		res.Status,
		res.CreatedAt,
		res.UpdatedAt,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("tool %s: %w", res.ToolID, domain.ErrNotFound)
		}
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetByID retrieves a reservation
func (r *PostgresReservationRepository) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, reservationColumns, r.tables.Reservations)

	var res models.Reservation
	executor := GetExecutor(ctx, r.pool)
	if err := scanReservation(executor.QueryRow(ctx, query, id), &res); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	return &res, nil
}

// ListByMember returns a member's borrow history, newest first
func (r *PostgresReservationRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE member_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, reservationColumns, r.tables.Reservations)

	return r.list(ctx, query, memberID, limit, offset)
}

// ListByTool returns a tool's reservation history, newest first
func (r *PostgresReservationRepository) ListByTool(ctx context.Context, toolID string, limit, offset int) ([]models.Reservation, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE tool_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, reservationColumns, r.tables.Reservations)

	return r.list(ctx, query, toolID, limit, offset)
}

func (r *PostgresReservationRepository) list(ctx context.Context, query string, args ...any) ([]models.Reservation, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	reservations := []models.Reservation{}
	for rows.Next() {
		var res models.Reservation
		if err := scanReservation(rows, &res); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservations: %w", err)
	}

	return reservations, nil
}

// CountOverlapping counts active reservations intersecting [start, end]
func (r *PostgresReservationRepository) CountOverlapping(ctx context.Context, toolID string, start, end time.Time) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE tool_id = $1
		  AND status IN ('pending', 'confirmed', 'checked_out')
		  AND start_date <= $3
		  AND end_date >= $2
	`, r.tables.Reservations)

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, toolID, start, end).Scan(&count); err != nil {
		return 0, fmt.Errorf("count overlapping reservations: %w", err)
	}

	return count, nil
}

// Update rewrites the reservation state columns
func (r *PostgresReservationRepository) Update(ctx context.Context, res *models.Reservation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET status = $2, late_fee = $3, checked_out_at = $4, returned_at = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Reservations)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		res.ID,
		res.Status,
		res.LateFee,
		res.CheckedOutAt,
		res.ReturnedAt,
	).Scan(&res.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("reservation %s: %w", res.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update reservation: %w", err)
	}

	return nil
}
