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

// PostgresEngagementRepository implements the EngagementRepository interface
type PostgresEngagementRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewEngagementRepository creates a new engagement repository
func NewEngagementRepository(config *RepositoryConfig) repositories.EngagementRepository {
	return &PostgresEngagementRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// RecordEvent inserts one activity event
func (r *PostgresEngagementRepository) RecordEvent(ctx context.Context, e *models.EngagementEvent) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (member_id, kind, occurred_at, metadata)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, r.tables.Events)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		e.MemberID,
		e.Kind,
		e.OccurredAt,
		e.Metadata,
	).Scan(&e.ID)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("member %s: %w", e.MemberID, domain.ErrNotFound)
		}
		return fmt.Errorf("record event: %w", err)
	}

	return nil
}

// CountByKind aggregates event counts per kind since the window start
func (r *PostgresEngagementRepository) CountByKind(ctx context.Context, memberID string, since time.Time) ([]models.KindCount, error) {
	query := fmt.Sprintf(`
		SELECT kind, COUNT(*)
		FROM %s
		WHERE member_id = $1 AND occurred_at >= $2
		GROUP BY kind
	`, r.tables.Events)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, memberID, since)
	if err != nil {
		return nil, fmt.Errorf("count events by kind: %w", err)
	}
	defer rows.Close()

	counts := []models.KindCount{}
	for rows.Next() {
		var kc models.KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		counts = append(counts, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}

	return counts, nil
}

// ActiveMemberIDs returns distinct members with events in the window
func (r *PostgresEngagementRepository) ActiveMemberIDs(ctx context.Context, since time.Time) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT member_id
		FROM %s
		WHERE occurred_at >= $1
	`, r.tables.Events)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list active members: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}

	return ids, nil
}

// UpsertScore persists the latest snapshot for one member
func (r *PostgresEngagementRepository) UpsertScore(ctx context.Context, s *models.EngagementScore) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (member_id, score, tier, event_count, window_days, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (member_id) DO UPDATE SET
			score = EXCLUDED.score,
			tier = EXCLUDED.tier,
			event_count = EXCLUDED.event_count,
			window_days = EXCLUDED.window_days,
			computed_at = EXCLUDED.computed_at
	`, r.tables.Scores)

	executor := GetExecutor(ctx, r.pool)
	_, err := executor.Exec(ctx, query,
		s.MemberID,
		s.Score,
		s.Tier,
		s.EventCount,
		s.WindowDays,
		s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	return nil
}

// GetScore returns the latest snapshot for a member
func (r *PostgresEngagementRepository) GetScore(ctx context.Context, memberID string) (*models.EngagementScore, error) {
	query := fmt.Sprintf(`
		SELECT member_id, score, tier, event_count, window_days, computed_at
		FROM %s
		WHERE member_id = $1
	`, r.tables.Scores)

	var s models.EngagementScore
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, memberID).Scan(
		&s.MemberID,
		&s.Score,
		&s.Tier,
		&s.EventCount,
		&s.WindowDays,
		&s.ComputedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("score for member %s: %w", memberID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get score: %w", err)
	}

	return &s, nil
}

// MemberIDsByTiers returns members whose latest tier is in the given set
func (r *PostgresEngagementRepository) MemberIDsByTiers(ctx context.Context, tiers []string) ([]string, error) {
	query := fmt.Sprintf(`
		SELECT member_id
		FROM %s
		WHERE tier = ANY($1)
	`, r.tables.Scores)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, tiers)
	if err != nil {
		return nil, fmt.Errorf("list members by tier: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}

	return ids, nil
}

// TierDistribution counts members per tier
func (r *PostgresEngagementRepository) TierDistribution(ctx context.Context) ([]models.TierDistribution, error) {
	query := fmt.Sprintf(`
		SELECT tier, COUNT(*)
		FROM %s
		GROUP BY tier
		ORDER BY tier
	`, r.tables.Scores)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("tier distribution: %w", err)
	}
	defer rows.Close()

	dist := []models.TierDistribution{}
	for rows.Next() {
		var d models.TierDistribution
		if err := rows.Scan(&d.Tier, &d.Count); err != nil {
			return nil, fmt.Errorf("scan tier row: %w", err)
		}
		dist = append(dist, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tier rows: %w", err)
	}

	return dist, nil
}
