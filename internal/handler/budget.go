package handler

import (
	"log/slog"
	"net/http"

	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
)

// BudgetHandler handles budget dashboard HTTP requests
type BudgetHandler struct {
	budgetService services.BudgetService
	logger        *slog.Logger
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(budgetService services.BudgetService, logger *slog.Logger) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// CreateBudget creates a fund plan for the caller
// POST /api/budgets
func (h *BudgetHandler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	var req services.CreateBudgetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.MemberID = claims.MemberID

	budget, err := h.budgetService.CreateBudget(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, budget)
}

// GetBudget retrieves one fund plan
// GET /api/budgets/{id}
func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	budget, err := h.budgetService.GetBudget(r.Context(), id, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, budget)
}

// ListBudgets lists the caller's fund plans
// GET /api/budgets?limit=&offset=
func (h *BudgetHandler) ListBudgets(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	budgets, err := h.budgetService.ListBudgets(r.Context(), claims.MemberID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, budgets)
}

// UpdateBudget applies a partial update
// PATCH /api/budgets/{id}
func (h *BudgetHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	var req services.UpdateBudgetRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	budget, err := h.budgetService.UpdateBudget(r.Context(), id, &req, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, budget)
}

// DeleteBudget soft-deletes a fund plan
// DELETE /api/budgets/{id}
func (h *BudgetHandler) DeleteBudget(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	if err := h.budgetService.DeleteBudget(r.Context(), id, claims); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddExpense records an expense line
// POST /api/budgets/{id}/expenses
func (h *BudgetHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	budgetID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	var req services.AddExpenseRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.BudgetID = budgetID

	expense, err := h.budgetService.AddExpense(r.Context(), &req, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, expense)
}

// ListExpenses lists a plan's expense lines
// GET /api/budgets/{id}/expenses
func (h *BudgetHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	budgetID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	expenses, err := h.budgetService.ListExpenses(r.Context(), budgetID, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, expenses)
}

// GetSummary reports allocated vs spent per category
// GET /api/budgets/{id}/summary
func (h *BudgetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	budgetID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid budget ID format")
		return
	}

	summary, err := h.budgetService.Summary(r.Context(), budgetID, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}
