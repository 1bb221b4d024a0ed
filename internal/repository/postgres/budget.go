package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

// PostgresBudgetRepository implements the BudgetRepository interface.
// Allocations live in a JSONB column; expenses are a child table.
type PostgresBudgetRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(config *RepositoryConfig) repositories.BudgetRepository {
	return &PostgresBudgetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const budgetColumns = `id, member_id, project_id, name, period, total_amount,
	allocations, created_at, updated_at, deleted_at`

func scanBudget(row interface{ Scan(...any) error }, b *models.Budget) error {
	return row.Scan(
		&b.ID,
		&b.MemberID,
		&b.ProjectID,
		&b.Name,
		&b.Period,
		&b.TotalAmount,
		&b.Allocations,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.DeletedAt,
	)
}

// Create inserts a budget
func (r *PostgresBudgetRepository) Create(ctx context.Context, b *models.Budget) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (member_id, project_id, name, period, total_amount,
			allocations, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, r.tables.Budgets)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.MemberID,
		b.ProjectID,
		b.Name,
		b.Period,
		b.TotalAmount,
		b.Allocations,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create budget: %w", err)
	}

	return nil
}

// GetByID retrieves a budget
func (r *PostgresBudgetRepository) GetByID(ctx context.Context, id string) (*models.Budget, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND deleted_at IS NULL
	`, budgetColumns, r.tables.Budgets)

	var b models.Budget
	executor := GetExecutor(ctx, r.pool)
	if err := scanBudget(executor.QueryRow(ctx, query, id), &b); err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("budget %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}

	return &b, nil
}

// ListByMember returns a member's budgets, newest first
func (r *PostgresBudgetRepository) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Budget, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE member_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, budgetColumns, r.tables.Budgets)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		var b models.Budget
		if err := scanBudget(rows, &b); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}

	return budgets, nil
}

// Update rewrites the mutable budget columns
func (r *PostgresBudgetRepository) Update(ctx context.Context, b *models.Budget) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, period = $3, total_amount = $4, allocations = $5,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Budgets)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		b.ID,
		b.Name,
		b.Period,
		b.TotalAmount,
		b.Allocations,
	).Scan(&b.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("budget %s: %w", b.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update budget: %w", err)
	}

	return nil
}

// SoftDelete stamps deleted_at
func (r *PostgresBudgetRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Budgets)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("budget %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// AddExpense inserts an expense line
func (r *PostgresBudgetRepository) AddExpense(ctx context.Context, e *models.Expense) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (budget_id, category, amount, incurred_on, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.Expenses)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		e.BudgetID,
		e.Category,
		e.Amount,
		e.IncurredOn,
		e.Memo,
		e.CreatedAt,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("budget %s: %w", e.BudgetID, domain.ErrNotFound)
		}
		return fmt.Errorf("add expense: %w", err)
	}

	return nil
}

// ListExpenses returns all expense lines for a budget, newest first
func (r *PostgresBudgetRepository) ListExpenses(ctx context.Context, budgetID string) ([]models.Expense, error) {
	query := fmt.Sprintf(`
		SELECT id, budget_id, category, amount, incurred_on, memo, created_at
		FROM %s
		WHERE budget_id = $1
		ORDER BY incurred_on DESC, created_at DESC
	`, r.tables.Expenses)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.BudgetID, &e.Category, &e.Amount, &e.IncurredOn, &e.Memo, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// SpentByCategory aggregates expense totals per category
func (r *PostgresBudgetRepository) SpentByCategory(ctx context.Context, budgetID string) (map[string]float64, error) {
	query := fmt.Sprintf(`
		SELECT category, COALESCE(SUM(amount), 0)
		FROM %s
		WHERE budget_id = $1
		GROUP BY category
	`, r.tables.Expenses)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}
	defer rows.Close()

	spent := map[string]float64{}
	for rows.Next() {
		var category string
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("scan expense total: %w", err)
		}
		spent[category] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense totals: %w", err)
	}

	return spent, nil
}
