package repositories

import (
	"context"

	"namcportal/internal/domain/models"
)

// BudgetRepository persists fund plans and their expense lines.
type BudgetRepository interface {
	Create(ctx context.Context, b *models.Budget) error
	GetByID(ctx context.Context, id string) (*models.Budget, error)
	ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Budget, error)
	Update(ctx context.Context, b *models.Budget) error
	SoftDelete(ctx context.Context, id string) error

	AddExpense(ctx context.Context, e *models.Expense) error
	ListExpenses(ctx context.Context, budgetID string) ([]models.Expense, error)
	// SpentByCategory aggregates expense totals per category for the
	// spend-vs-allocation summary.
	SpentByCategory(ctx context.Context, budgetID string) (map[string]float64, error)
}
