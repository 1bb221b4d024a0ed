package handler

import (
	"context"
	"log/slog"
	"net/http"

	"namcportal/internal/domain/models"
	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
)

// ProjectHandler handles project bidding HTTP requests
type ProjectHandler struct {
	projectService services.ProjectService
	bidService     services.BidService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService services.ProjectService, bidService services.BidService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		bidService:     bidService,
		logger:         logger,
	}
}

// CreateProject posts a new opportunity (admin only)
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CreatedBy = claims.GetUserID()

	project, err := h.projectService.CreateProject(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject retrieves one opportunity
// GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// ListProjects searches opportunities
// GET /api/projects?status=&location=&q=&limit=&offset=
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	filter := &models.ProjectFilter{
		Status:   r.URL.Query().Get("status"),
		Location: r.URL.Query().Get("location"),
		Query:    r.URL.Query().Get("q"),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}

	projects, err := h.projectService.ListProjects(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// UpdateProject applies a partial update
// PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req services.UpdateProjectRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), id, &req, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// Publish opens the project for bids
// POST /api/projects/{id}/publish
func (h *ProjectHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.projectAction(w, r, h.projectService.Publish)
}

// Close stops bidding
// POST /api/projects/{id}/close
func (h *ProjectHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.projectAction(w, r, h.projectService.Close)
}

// Award picks the winning bid
// POST /api/projects/{id}/award
func (h *ProjectHandler) Award(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req struct {
		BidID string `json:"bid_id"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	bidID, err := parseUUID(req.BidID)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid bid ID format")
		return
	}

	project, err := h.projectService.Award(r.Context(), id, bidID, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject removes a draft
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), id, claims); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SubmitBid records the caller's offer
// POST /api/projects/{id}/bids
func (h *ProjectHandler) SubmitBid(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	projectID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var req services.SubmitBidRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.ProjectID = projectID
	req.MemberID = claims.MemberID

	bid, err := h.bidService.SubmitBid(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, bid)
}

// SuggestBid returns the AI bid-assist suggestion
// POST /api/projects/{id}/bids/generate
func (h *ProjectHandler) SuggestBid(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	projectID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	suggestion, err := h.bidService.GenerateSuggestion(r.Context(), projectID, claims.MemberID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, suggestion)
}

// ListProjectBids returns every bid on a project (owner or admin)
// GET /api/projects/{id}/bids
func (h *ProjectHandler) ListProjectBids(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	projectID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	bids, err := h.bidService.ListByProject(r.Context(), projectID, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bids)
}

// ListMyBids returns the caller's bid history
// GET /api/bids?limit=&offset=
func (h *ProjectHandler) ListMyBids(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	bids, err := h.bidService.ListByMember(r.Context(), claims.MemberID, queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bids)
}

// WithdrawBid pulls the caller's bid
// POST /api/bids/{id}/withdraw
func (h *ProjectHandler) WithdrawBid(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid bid ID format")
		return
	}

	bid, err := h.bidService.Withdraw(r.Context(), id, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, bid)
}

func (h *ProjectHandler) projectAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id string, actor *models.PortalClaims) (*models.Project, error),
) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	project, err := action(r.Context(), id, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}
