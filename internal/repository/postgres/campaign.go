package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

// PostgresCampaignRepository implements the CampaignRepository interface
type PostgresCampaignRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(config *RepositoryConfig) repositories.CampaignRepository {
	return &PostgresCampaignRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const campaignColumns = `id, name, description, kind, start_date, end_date,
	target_tiers, status, created_by, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }, c *models.Campaign) error {
	return row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Kind,
		&c.StartDate,
		&c.EndDate,
		&c.TargetTiers,
		&c.Status,
		&c.CreatedBy,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
}

// Create inserts a draft campaign
func (r *PostgresCampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, kind, start_date, end_date,
			target_tiers, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, r.tables.Campaigns)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		c.Name,
		c.Description,
		c.Kind,
		c.StartDate,
		c.EndDate,
		c.TargetTiers,
		c.Status,
		c.CreatedBy,
		c.CreatedAt,
		c.UpdatedAt,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}

	return nil
}

// GetByID retrieves a campaign
func (r *PostgresCampaignRepository) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1
	`, campaignColumns, r.tables.Campaigns)

	var c models.Campaign
	executor := GetExecutor(ctx, r.pool)
	if err := scanCampaign(executor.QueryRow(ctx, query, id), &c); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("campaign %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get campaign: %w", err)
	}

	return &c, nil
}

// List returns campaigns, optionally filtered by status, newest first
func (r *PostgresCampaignRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Campaign, error) {
	var (
		query string
		args  []any
	)

	if status != "" {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, campaignColumns, r.tables.Campaigns)
		args = []any{status, limit, offset}
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			ORDER BY created_at DESC
			LIMIT $1 OFFSET $2
		`, campaignColumns, r.tables.Campaigns)
		args = []any{limit, offset}
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := scanCampaign(rows, &c); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate campaigns: %w", err)
	}

	return campaigns, nil
}

// Update rewrites the mutable campaign columns including status
func (r *PostgresCampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, kind = $4, start_date = $5,
			end_date = $6, target_tiers = $7, status = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, r.tables.Campaigns)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		c.ID,
		c.Name,
		c.Description,
		c.Kind,
		c.StartDate,
		c.EndDate,
		c.TargetTiers,
		c.Status,
	).Scan(&c.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("campaign %s: %w", c.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update campaign: %w", err)
	}

	return nil
}
