package models

import (
	"time"
)

// Budget is a member's fund plan for a period or a project. Allocations are
// stored as a JSONB column; their percentages must total 100.
type Budget struct {
	ID          string       `json:"id" db:"id"`
	MemberID    string       `json:"member_id" db:"member_id"`
	ProjectID   *string      `json:"project_id,omitempty" db:"project_id"`
	Name        string       `json:"name" db:"name"`
	Period      string       `json:"period" db:"period"` // e.g. "2026-Q3"
	TotalAmount float64      `json:"total_amount" db:"total_amount"`
	Allocations []Allocation `json:"allocations" db:"allocations"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time   `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Allocation assigns a percentage of the budget total to a category.
type Allocation struct {
	Category   string  `json:"category"`
	Percentage float64 `json:"percentage"`
}

// Expense is a line item charged against a budget category.
type Expense struct {
	ID         string    `json:"id" db:"id"`
	BudgetID   string    `json:"budget_id" db:"budget_id"`
	Category   string    `json:"category" db:"category"`
	Amount     float64   `json:"amount" db:"amount"`
	IncurredOn time.Time `json:"incurred_on" db:"incurred_on"`
	Memo       string    `json:"memo,omitempty" db:"memo"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// BudgetSummary reports spend against allocation per category.
type BudgetSummary struct {
	BudgetID   string            `json:"budget_id"`
	TotalSpent float64           `json:"total_spent"`
	Categories []CategorySummary `json:"categories"`
}

// CategorySummary is one row of the spend-vs-allocation dashboard.
type CategorySummary struct {
	Category   string  `json:"category"`
	Allocated  float64 `json:"allocated"`
	Spent      float64 `json:"spent"`
	Remaining  float64 `json:"remaining"`
	OverBudget bool    `json:"over_budget"`
}
