package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"namcportal/internal/config"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
)

type budgetService struct {
	budgetRepo repositories.BudgetRepository
	logger     *slog.Logger
}

// NewBudgetService creates a new budget dashboard service
func NewBudgetService(budgetRepo repositories.BudgetRepository, logger *slog.Logger) services.BudgetService {
	return &budgetService{
		budgetRepo: budgetRepo,
		logger:     logger,
	}
}

// CreateBudget creates a fund plan. Allocation percentages must total 100.
func (s *budgetService) CreateBudget(ctx context.Context, req *services.CreateBudgetRequest) (*models.Budget, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	budget := &models.Budget{
		MemberID:    req.MemberID,
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Period:      req.Period,
		TotalAmount: req.TotalAmount,
		Allocations: req.Allocations,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.budgetRepo.Create(ctx, budget); err != nil {
		return nil, err
	}

	s.logger.Info("budget created",
		"id", budget.ID,
		"member_id", budget.MemberID,
		"total", budget.TotalAmount,
		"categories", len(budget.Allocations),
	)

	return budget, nil
}

// GetBudget retrieves a fund plan (owner or admin)
func (s *budgetService) GetBudget(ctx context.Context, id string, actor *models.PortalClaims) (*models.Budget, error) {
	return s.getOwnedBudget(ctx, id, actor)
}

// ListBudgets lists the member's fund plans
func (s *budgetService) ListBudgets(ctx context.Context, memberID string, limit, offset int) ([]models.Budget, error) {
	normalizePage(&limit, &offset)
	return s.budgetRepo.ListByMember(ctx, memberID, limit, offset)
}

// UpdateBudget applies a partial update. Replacing allocations re-runs the
// 100% check.
func (s *budgetService) UpdateBudget(ctx context.Context, id string, req *services.UpdateBudgetRequest, actor *models.PortalClaims) (*models.Budget, error) {
	budget, err := s.getOwnedBudget(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		budget.Name = *req.Name
	}
	if req.Period != nil {
		budget.Period = *req.Period
	}
	if req.TotalAmount != nil {
		if *req.TotalAmount <= 0 {
			return nil, fmt.Errorf("%w: total_amount must be positive", domain.ErrValidation)
		}
		budget.TotalAmount = *req.TotalAmount
	}
	if req.Allocations != nil {
		if err := ValidateAllocations(req.Allocations); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		budget.Allocations = req.Allocations
	}
	budget.UpdatedAt = time.Now()

	if err := s.budgetRepo.Update(ctx, budget); err != nil {
		return nil, err
	}

	s.logger.Info("budget updated", "id", budget.ID)

	return budget, nil
}

// DeleteBudget soft-deletes a fund plan
func (s *budgetService) DeleteBudget(ctx context.Context, id string, actor *models.PortalClaims) error {
	if _, err := s.getOwnedBudget(ctx, id, actor); err != nil {
		return err
	}
	if err := s.budgetRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("budget deleted", "id", id)
	return nil
}

// AddExpense records a line item. The category must exist in the plan's
// allocations so the summary stays meaningful.
func (s *budgetService) AddExpense(ctx context.Context, req *services.AddExpenseRequest, actor *models.PortalClaims) (*models.Expense, error) {
	if err := s.validateExpenseRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	budget, err := s.getOwnedBudget(ctx, req.BudgetID, actor)
	if err != nil {
		return nil, err
	}

	if !hasCategory(budget.Allocations, req.Category) {
		return nil, fmt.Errorf("%w: category %q is not in the budget plan", domain.ErrValidation, req.Category)
	}

	incurredOn, err := time.Parse(dateLayout, req.IncurredOn)
	if err != nil {
		return nil, fmt.Errorf("%w: incurred_on must be YYYY-MM-DD", domain.ErrValidation)
	}

	expense := &models.Expense{
		BudgetID:   budget.ID,
		Category:   req.Category,
		Amount:     req.Amount,
		IncurredOn: incurredOn,
		Memo:       req.Memo,
		CreatedAt:  time.Now(),
	}

	if err := s.budgetRepo.AddExpense(ctx, expense); err != nil {
		return nil, err
	}

	s.logger.Info("expense added",
		"budget_id", budget.ID,
		"category", expense.Category,
		"amount", expense.Amount,
	)

	return expense, nil
}

// ListExpenses returns the plan's expense lines
func (s *budgetService) ListExpenses(ctx context.Context, budgetID string, actor *models.PortalClaims) ([]models.Expense, error) {
	if _, err := s.getOwnedBudget(ctx, budgetID, actor); err != nil {
		return nil, err
	}
	return s.budgetRepo.ListExpenses(ctx, budgetID)
}

// Summary reports allocated vs spent per category
func (s *budgetService) Summary(ctx context.Context, budgetID string, actor *models.PortalClaims) (*models.BudgetSummary, error) {
	budget, err := s.getOwnedBudget(ctx, budgetID, actor)
	if err != nil {
		return nil, err
	}

	spent, err := s.budgetRepo.SpentByCategory(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	summary := &models.BudgetSummary{BudgetID: budget.ID}

	for _, alloc := range budget.Allocations {
		allocated := budget.TotalAmount * alloc.Percentage / 100
		categorySpent := spent[alloc.Category]
		summary.Categories = append(summary.Categories, models.CategorySummary{
			Category:   alloc.Category,
			Allocated:  math.Round(allocated*100) / 100,
			Spent:      categorySpent,
			Remaining:  math.Round((allocated-categorySpent)*100) / 100,
			OverBudget: categorySpent > allocated,
		})
		summary.TotalSpent += categorySpent
		delete(spent, alloc.Category)
	}

	// Expenses whose category was later removed from the plan still count
	// toward the total and show up with zero allocation.
	var orphans []string
	for category := range spent {
		orphans = append(orphans, category)
	}
	sort.Strings(orphans)
	for _, category := range orphans {
		summary.Categories = append(summary.Categories, models.CategorySummary{
			Category:   category,
			Spent:      spent[category],
			Remaining:  -spent[category],
			OverBudget: true,
		})
		summary.TotalSpent += spent[category]
	}

	return summary, nil
}

func (s *budgetService) getOwnedBudget(ctx context.Context, id string, actor *models.PortalClaims) (*models.Budget, error) {
	budget, err := s.budgetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (!actor.IsAdmin() && actor.MemberID != budget.MemberID) {
		return nil, &domain.ForbiddenError{Message: "budget belongs to another member"}
	}
	return budget, nil
}

// ValidateAllocations checks the plan's category lines: unique categories,
// positive percentages, and a total of 100 within tolerance.
func ValidateAllocations(allocations []models.Allocation) error {
	if len(allocations) == 0 {
		return fmt.Errorf("at least one allocation is required")
	}
	if len(allocations) > config.MaxAllocations {
		return fmt.Errorf("at most %d allocations are allowed", config.MaxAllocations)
	}

	seen := make(map[string]bool, len(allocations))
	total := 0.0
	for _, alloc := range allocations {
		if alloc.Category == "" {
			return fmt.Errorf("allocation category cannot be empty")
		}
		if seen[alloc.Category] {
			return fmt.Errorf("duplicate allocation category %q", alloc.Category)
		}
		seen[alloc.Category] = true
		if alloc.Percentage <= 0 {
			return fmt.Errorf("allocation percentage for %q must be positive", alloc.Category)
		}
		total += alloc.Percentage
	}

	if math.Abs(total-100) > config.AllocationTolerance {
		return fmt.Errorf("allocation percentages total %.2f, must total 100", total)
	}
	return nil
}

func hasCategory(allocations []models.Allocation, category string) bool {
	for _, alloc := range allocations {
		if alloc.Category == category {
			return true
		}
	}
	return false
}

func (s *budgetService) validateCreateRequest(req *services.CreateBudgetRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.MemberID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Period, validation.Required, validation.Length(1, 50)),
		validation.Field(&req.TotalAmount, validation.Required, validation.Min(0.01)),
	); err != nil {
		return err
	}
	return ValidateAllocations(req.Allocations)
}

func (s *budgetService) validateExpenseRequest(req *services.AddExpenseRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.BudgetID, validation.Required),
		validation.Field(&req.Category, validation.Required),
		validation.Field(&req.Amount, validation.Required, validation.Min(0.01)),
		validation.Field(&req.IncurredOn, validation.Required),
		validation.Field(&req.Memo, validation.Length(0, config.MaxNotesLength)),
	)
}
