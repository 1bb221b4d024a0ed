package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"namcportal/internal/domain/models"
)

type fakeSyncService struct {
	applied [][]models.ContactChange
	err     error
}

func (f *fakeSyncService) SyncDirty(ctx context.Context) (int, error) { return 0, nil }

func (f *fakeSyncService) SyncMember(ctx context.Context, memberID string) error { return nil }

func (f *fakeSyncService) ApplyContactChanges(ctx context.Context, changes []models.ContactChange) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.applied = append(f.applied, changes)
	return len(changes), nil
}

func signWebhook(secret, method, uri string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte(uri))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestHandleHubSpot(t *testing.T) {
	const secret = "test-secret"
	body := []byte(`[{"eventId":42,"subscriptionType":"contact.propertyChange","objectId":1001,"propertyName":"phone","propertyValue":"555-0100","occurredAt":1735689600000}]`)

	tests := []struct {
		name       string
		body       []byte
		signature  string
		wantStatus int
		wantCalls  int
	}{
		{
			name:       "valid signature applies changes",
			body:       body,
			signature:  signWebhook(secret, http.MethodPost, "/api/webhooks/hubspot", body),
			wantStatus: http.StatusNoContent,
			wantCalls:  1,
		},
		{
			name:       "invalid signature rejected",
			body:       body,
			signature:  "bogus",
			wantStatus: http.StatusUnauthorized,
			wantCalls:  0,
		},
		{
			name:       "missing signature rejected",
			body:       body,
			signature:  "",
			wantStatus: http.StatusUnauthorized,
			wantCalls:  0,
		},
		{
			name:       "irrelevant events acknowledged without applying",
			body:       []byte(`[{"eventId":7,"subscriptionType":"deal.creation","objectId":2}]`),
			signature:  signWebhook(secret, http.MethodPost, "/api/webhooks/hubspot", []byte(`[{"eventId":7,"subscriptionType":"deal.creation","objectId":2}]`)),
			wantStatus: http.StatusNoContent,
			wantCalls:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sync := &fakeSyncService{}
			h := NewWebhookHandler(sync, secret, slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)))

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/hubspot", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("X-HubSpot-Signature", tt.signature)
			}
			rec := httptest.NewRecorder()

			h.HandleHubSpot(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if len(sync.applied) != tt.wantCalls {
				t.Errorf("apply calls = %d, want %d", len(sync.applied), tt.wantCalls)
			}
		})
	}
}

func TestHandleHubSpotAppliesParsedChange(t *testing.T) {
	const secret = "s"
	body := []byte(`[{"eventId":42,"subscriptionType":"contact.propertyChange","objectId":1001,"propertyName":"phone","propertyValue":"555-0100","occurredAt":1735689600000}]`)

	sync := &fakeSyncService{}
	h := NewWebhookHandler(sync, secret, slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil)))

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/hubspot", bytes.NewReader(body))
	req.Header.Set("X-HubSpot-Signature", signWebhook(secret, http.MethodPost, "/api/webhooks/hubspot", body))
	rec := httptest.NewRecorder()

	h.HandleHubSpot(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if len(sync.applied) != 1 || len(sync.applied[0]) != 1 {
		t.Fatalf("expected one applied change, got %v", sync.applied)
	}
	change := sync.applied[0][0]
	if change.ContactID != "1001" {
		t.Errorf("ContactID = %q, want %q", change.ContactID, "1001")
	}
	if change.PropertyName != "phone" || change.Value != "555-0100" {
		t.Errorf("unexpected change %+v", change)
	}
}
