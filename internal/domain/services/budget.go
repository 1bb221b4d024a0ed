package services

import (
	"context"

	"namcportal/internal/domain/models"
)

// CreateBudgetRequest represents a request to create a fund plan.
// Allocation percentages must total 100.
type CreateBudgetRequest struct {
	MemberID    string              `json:"-"`
	ProjectID   *string             `json:"project_id"`
	Name        string              `json:"name"`
	Period      string              `json:"period"`
	TotalAmount float64             `json:"total_amount"`
	Allocations []models.Allocation `json:"allocations"`
}

// UpdateBudgetRequest represents a partial budget update. Replacing
// allocations re-runs the 100% check.
type UpdateBudgetRequest struct {
	Name        *string             `json:"name"`
	Period      *string             `json:"period"`
	TotalAmount *float64            `json:"total_amount"`
	Allocations []models.Allocation `json:"allocations"`
}

// AddExpenseRequest represents one expense line against a budget category
type AddExpenseRequest struct {
	BudgetID   string  `json:"-"`
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	IncurredOn string  `json:"incurred_on"` // YYYY-MM-DD
	Memo       string  `json:"memo"`
}

// BudgetService defines business logic for budget dashboards
type BudgetService interface {
	CreateBudget(ctx context.Context, req *CreateBudgetRequest) (*models.Budget, error)
	GetBudget(ctx context.Context, id string, actor *models.PortalClaims) (*models.Budget, error)
	ListBudgets(ctx context.Context, memberID string, limit, offset int) ([]models.Budget, error)
	UpdateBudget(ctx context.Context, id string, req *UpdateBudgetRequest, actor *models.PortalClaims) (*models.Budget, error)
	DeleteBudget(ctx context.Context, id string, actor *models.PortalClaims) error

	AddExpense(ctx context.Context, req *AddExpenseRequest, actor *models.PortalClaims) (*models.Expense, error)
	ListExpenses(ctx context.Context, budgetID string, actor *models.PortalClaims) ([]models.Expense, error)

	// Summary reports allocated vs spent per category
	Summary(ctx context.Context, budgetID string, actor *models.PortalClaims) (*models.BudgetSummary, error)
}
