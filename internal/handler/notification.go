package handler

import (
	"log/slog"
	"net/http"

	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
)

// NotificationHandler handles notification inbox HTTP requests
type NotificationHandler struct {
	notificationService services.NotificationService
	logger              *slog.Logger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService services.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// Enqueue queues a notification for any member (admin only)
// POST /api/notifications
func (h *NotificationHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClaims(w, r); !ok {
		return
	}

	var req services.EnqueueNotificationRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	notification, err := h.notificationService.Enqueue(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, notification)
}

// ListMine lists the caller's notifications, newest first
// GET /api/notifications?unread_only=&limit=&offset=
func (h *NotificationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	notifications, err := h.notificationService.ListMine(r.Context(), claims.MemberID, queryBool(r, "unread_only"), queryInt(r, "limit"), queryInt(r, "offset"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notifications)
}

// CountUnread reports how many delivered notifications are unread
// GET /api/notifications/unread-count
func (h *NotificationHandler) CountUnread(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	count, err := h.notificationService.CountUnread(r.Context(), claims.MemberID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// MarkRead marks one of the caller's notifications read
// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid notification ID format")
		return
	}

	if err := h.notificationService.MarkRead(r.Context(), id, claims.MemberID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead marks every unread notification read
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireMember(w, r)
	if !ok {
		return
	}

	if err := h.notificationService.MarkAllRead(r.Context(), claims.MemberID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
