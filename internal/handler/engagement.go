package handler

import (
	"context"
	"log/slog"
	"net/http"

	"namcportal/internal/domain/models"
	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
)

// EngagementHandler handles engagement scoring and campaign HTTP requests
type EngagementHandler struct {
	engagementService services.EngagementService
	campaignService   services.CampaignService
	logger            *slog.Logger
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(engagementService services.EngagementService, campaignService services.CampaignService, logger *slog.Logger) *EngagementHandler {
	return &EngagementHandler{
		engagementService: engagementService,
		campaignService:   campaignService,
		logger:            logger,
	}
}

// RecordEvent records an activity event (admin only; services record
// their own events directly)
// POST /api/engagement/events
func (h *EngagementHandler) RecordEvent(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	var req services.RecordEventRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	event, err := h.engagementService.RecordEvent(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, event)
}

// GetMyScore serves the caller's engagement snapshot
// GET /api/engagement/score
func (h *EngagementHandler) GetMyScore(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	score, err := h.engagementService.GetScore(r.Context(), claims.MemberID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, score)
}

// GetMemberScore serves a member's snapshot (admins, or the member itself)
// GET /api/members/{id}/score
func (h *EngagementHandler) GetMemberScore(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	memberID, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid member ID format")
		return
	}
	if !claims.IsAdmin() && claims.MemberID != memberID {
		httputil.RespondError(w, http.StatusForbidden, "Admin access required")
		return
	}

	score, err := h.engagementService.GetScore(r.Context(), memberID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, score)
}

// GetDistribution reports member counts per tier (admin only)
// GET /api/engagement/distribution
func (h *EngagementHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	distribution, err := h.engagementService.Distribution(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, distribution)
}

// CreateCampaign creates a draft campaign (admin only)
// POST /api/learning/campaigns
func (h *EngagementHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req services.CreateCampaignRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CreatedBy = claims.GetUserID()

	campaign, err := h.campaignService.CreateCampaign(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, campaign)
}

// GetCampaign retrieves one campaign
// GET /api/learning/campaigns/{id}
func (h *EngagementHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	campaign, err := h.campaignService.GetCampaign(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, campaign)
}

// ListCampaigns lists campaigns, optionally filtered by status
// GET /api/learning/campaigns?status=&limit=&offset=
func (h *EngagementHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	campaigns, err := h.campaignService.ListCampaigns(r.Context(), r.URL.Query().Get("status"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, campaigns)
}

// UpdateCampaign applies a partial update (admin only)
// PATCH /api/learning/campaigns/{id}
func (h *EngagementHandler) UpdateCampaign(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	var req services.UpdateCampaignRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	campaign, err := h.campaignService.UpdateCampaign(r.Context(), id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, campaign)
}

// ActivateCampaign activates a draft and fans out notifications (admin only)
// POST /api/learning/campaigns/{id}/activate
func (h *EngagementHandler) ActivateCampaign(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	campaign, notified, err := h.campaignService.Activate(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"campaign": campaign,
		"notified": notified,
	})
}

// CompleteCampaign marks an active campaign completed (admin only)
// POST /api/learning/campaigns/{id}/complete
func (h *EngagementHandler) CompleteCampaign(w http.ResponseWriter, r *http.Request) {
	h.campaignAction(w, r, h.campaignService.Complete)
}

// CancelCampaign cancels a draft or active campaign (admin only)
// POST /api/learning/campaigns/{id}/cancel
func (h *EngagementHandler) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	h.campaignAction(w, r, h.campaignService.Cancel)
}

func (h *EngagementHandler) campaignAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id string) (*models.Campaign, error)) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid campaign ID format")
		return
	}

	campaign, err := action(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, campaign)
}
