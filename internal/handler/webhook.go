package handler

import (
	"io"
	"log/slog"
	"net/http"

	"namcportal/internal/domain/services"
	"namcportal/internal/httputil"
	"namcportal/internal/hubspot"
)

// maxWebhookBytes bounds inbound webhook payloads.
const maxWebhookBytes = 1 << 20 // 1 MB

// WebhookHandler receives inbound CRM webhooks
type WebhookHandler struct {
	syncService   services.HubSpotSyncService
	webhookSecret string
	logger        *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(syncService services.HubSpotSyncService, webhookSecret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		syncService:   syncService,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// HandleHubSpot verifies and applies contact property change events.
// Unverified payloads are rejected before parsing.
// POST /api/webhooks/hubspot
func (h *WebhookHandler) HandleHubSpot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	signature := r.Header.Get("X-HubSpot-Signature")
	if !hubspot.VerifySignature(h.webhookSecret, r.Method, r.URL.RequestURI(), body, signature) {
		h.logger.Warn("rejected webhook with invalid signature", "remote_addr", r.RemoteAddr)
		httputil.RespondError(w, http.StatusUnauthorized, "Invalid webhook signature")
		return
	}

	changes := hubspot.ParseContactChanges(body)
	if len(changes) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	applied, err := h.syncService.ApplyContactChanges(r.Context(), changes)
	if err != nil {
		h.logger.Error("failed to apply contact changes", "error", err, "received", len(changes))
		handleError(w, err)
		return
	}

	h.logger.Info("applied webhook contact changes", "received", len(changes), "applied", applied)
	w.WriteHeader(http.StatusNoContent)
}
