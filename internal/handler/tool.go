package handler

import (
	"context"
	"log/slog"
	"net/http"

	"namcportal/internal/domain/models"
	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
)

// ToolHandler handles tool lending HTTP requests
type ToolHandler struct {
	toolService services.ToolService
	logger      *slog.Logger
}

// NewToolHandler creates a new tool handler
func NewToolHandler(toolService services.ToolService, logger *slog.Logger) *ToolHandler {
	return &ToolHandler{
		toolService: toolService,
		logger:      logger,
	}
}

// CreateTool adds a tool to the catalog (admin only)
// POST /api/tools
func (h *ToolHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	var req services.CreateToolRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.toolService.CreateTool(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, tool)
}

// GetTool retrieves one catalog entry
// GET /api/tools/{id}
func (h *ToolHandler) GetTool(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid tool ID format")
		return
	}

	tool, err := h.toolService.GetTool(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tool)
}

// ListTools searches the catalog
// GET /api/tools?q=&category=&active_only=&limit=&offset=
func (h *ToolHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	filter := &models.ToolFilter{
		Query:      r.URL.Query().Get("q"),
		Category:   r.URL.Query().Get("category"),
		ActiveOnly: queryBool(r, "active_only"),
		Limit:      queryInt(r, "limit"),
		Offset:     queryInt(r, "offset"),
	}

	tools, err := h.toolService.ListTools(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tools)
}

// UpdateTool applies a partial update (admin only)
// PATCH /api/tools/{id}
func (h *ToolHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid tool ID format")
		return
	}

	var req services.UpdateToolRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tool, err := h.toolService.UpdateTool(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tool)
}

// DeleteTool retires a tool (admin only)
// DELETE /api/tools/{id}
func (h *ToolHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid tool ID format")
		return
	}

	if err := h.toolService.DeleteTool(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reserve books a tool for a date range
// POST /api/tools/{id}/reservations
func (h *ToolHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	toolID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid tool ID format")
		return
	}

	var req services.ReserveRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ToolID = toolID
	req.MemberID = claims.MemberID

	reservation, err := h.toolService.Reserve(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, reservation)
}

// Checkout hands over a confirmed reservation
// POST /api/reservations/{id}/checkout
func (h *ToolHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	h.reservationAction(w, r, h.toolService.Checkout)
}

// Return closes the loan and applies any late fee
// POST /api/reservations/{id}/return
func (h *ToolHandler) Return(w http.ResponseWriter, r *http.Request) {
	h.reservationAction(w, r, h.toolService.Return)
}

// Cancel voids a pending or confirmed reservation
// POST /api/reservations/{id}/cancel
func (h *ToolHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.reservationAction(w, r, h.toolService.Cancel)
}

// ListMyReservations returns the caller's borrow history
// GET /api/reservations?limit=&offset=
func (h *ToolHandler) ListMyReservations(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	reservations, err := h.toolService.ListReservations(r.Context(), claims.MemberID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reservations)
}

func (h *ToolHandler) reservationAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id string, actor *models.PortalClaims) (*models.Reservation, error),
) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid reservation ID format")
		return
	}

	reservation, err := action(r.Context(), id, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reservation)
}
