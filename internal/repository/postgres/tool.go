package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

// PostgresToolRepository implements the ToolRepository interface
type PostgresToolRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewToolRepository creates a new tool repository
func NewToolRepository(config *RepositoryConfig) repositories.ToolRepository {
	return &PostgresToolRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const toolColumns = `id, name, category, description, daily_rate, condition,
	quantity, is_active, created_at, updated_at, deleted_at`

func scanTool(row interface{ Scan(...any) error }, t *models.Tool) error {
	return row.Scan(
		&t.ID,
		&t.Name,
		&t.Category,
		&t.Description,
		&t.DailyRate,
		&t.Condition,
		&t.Quantity,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.DeletedAt,
	)
}

// Create adds a tool to the catalog
func (r *PostgresToolRepository) Create(ctx context.Context, t *models.Tool) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, category, description, daily_rate, condition,
			quantity, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, r.tables.Tools)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		t.Name,
		t.Category,
		t.Description,
		t.DailyRate,
		t.Condition,
		t.Quantity,
		t.IsActive,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create tool: %w", err)
	}

	return nil
}

// GetByID retrieves a tool
func (r *PostgresToolRepository) GetByID(ctx context.Context, id string) (*models.Tool, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, toolColumns, r.tables.Tools)

	var t models.Tool
	executor := GetExecutor(ctx, r.pool)
	if err := scanTool(executor.QueryRow(ctx, query, id), &t); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("tool %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get tool: %w", err)
	}

	return &t, nil
}

// List searches the catalog
func (r *PostgresToolRepository) List(ctx context.Context, filter *models.ToolFilter) ([]models.Tool, error) {
	var (
		conds = []string{"deleted_at IS NULL"}
		args  []any
	)

	if filter.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}

	args = append(args, filter.Limit)
	limitIdx := len(args)
	args = append(args, filter.Offset)
	offsetIdx := len(args)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, toolColumns, r.tables.Tools, strings.Join(conds, " AND "), limitIdx, offsetIdx)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	defer rows.Close()

	tools := []models.Tool{}
	for rows.Next() {
		var t models.Tool
		if err := scanTool(rows, &t); err != nil {
			return nil, fmt.Errorf("scan tool: %w", err)
		}
		tools = append(tools, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tools: %w", err)
	}

	return tools, nil
}

// Update rewrites the mutable catalog columns
func (r *PostgresToolRepository) Update(ctx context.Context, t *models.Tool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, category = $3, description = $4, daily_rate = $5,
			condition = $6, quantity = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Tools)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		t.ID,
		t.Name,
		t.Category,
		t.Description,
		t.DailyRate,
		t.Condition,
		t.Quantity,
		t.IsActive,
	).Scan(&t.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("tool %s: %w", t.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update tool: %w", err)
	}

	return nil
}

// SoftDelete retires a tool
func (r *PostgresToolRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Tools)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete tool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tool %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
