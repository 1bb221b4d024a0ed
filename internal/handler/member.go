package handler

import (
	"io"
	"log/slog"
	"net/http"

	"namcportal/internal/config"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
)

// MemberHandler handles member directory HTTP requests
type MemberHandler struct {
	memberService services.MemberService
	logger        *slog.Logger
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService services.MemberService, logger *slog.Logger) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		logger:        logger,
	}
}

// CreateMember creates the caller's member profile
// POST /api/members
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	var req services.CreateMemberRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UserID = claims.GetUserID()
	if req.Email == "" {
		req.Email = claims.Email
	}

	member, err := h.memberService.CreateMember(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, member)
}

// GetMember retrieves one profile
// GET /api/members/{id}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid member ID format")
		return
	}

	member, err := h.memberService.GetMember(r.Context(), id, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, member)
}

// ListMembers searches the directory
// GET /api/members?q=&specialty=&city=&state=&include_private=&limit=&offset=
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := &models.MemberFilter{
		Query:          q.Get("q"),
		Specialty:      q.Get("specialty"),
		City:           q.Get("city"),
		State:          q.Get("state"),
		IncludePrivate: queryBool(r, "include_private"),
		Limit:          queryInt(r, "limit"),
		Offset:         queryInt(r, "offset"),
	}

	members, err := h.memberService.ListMembers(r.Context(), filter, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, members)
}

// UpdateMember applies a partial profile update
// PATCH /api/members/{id}
func (h *MemberHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid member ID format")
		return
	}

	var req services.UpdateMemberRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := h.memberService.UpdateMember(r.Context(), id, &req, claims)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, member)
}

// DeleteMember soft-deletes a profile
// DELETE /api/members/{id}
func (h *MemberHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid member ID format")
		return
	}

	if err := h.memberService.DeleteMember(r.Context(), id, claims); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ScanCard extracts profile suggestions from a business-card image
// POST /api/members/scan-card
func (h *MemberHandler) ScanCard(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxImageBytes)
	image, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	}

	scan, err := h.memberService.ScanBusinessCard(r.Context(), image)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, scan)
}
