package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"namcportal/internal/domain/models"
)

// InAppDeliverer handles the in_app channel. The queue row itself is the
// inbox entry, so delivery is a no-op.
func InAppDeliverer() Deliverer {
	return DelivererFunc(func(ctx context.Context, n *models.Notification) error {
		return nil
	})
}

// relayMessage is the payload posted to downstream relays.
type relayMessage struct {
	MemberID string         `json:"member_id"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// HTTPDeliverer posts notifications to a fixed relay endpoint. Used for the
// email channel, where an external relay owns templating and SMTP.
type HTTPDeliverer struct {
	url        string
	httpClient *http.Client
}

// NewHTTPDeliverer creates a deliverer posting to url.
func NewHTTPDeliverer(url string) *HTTPDeliverer {
	return &HTTPDeliverer{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *HTTPDeliverer) Deliver(ctx context.Context, n *models.Notification) error {
	if d.url == "" {
		return fmt.Errorf("no relay endpoint configured")
	}
	return d.post(ctx, d.url, n)
}

// WebhookDeliverer posts notifications to a per-notification URL carried in
// the payload under "url".
type WebhookDeliverer struct {
	httpClient *http.Client
}

func NewWebhookDeliverer() *WebhookDeliverer {
	return &WebhookDeliverer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (d *WebhookDeliverer) Deliver(ctx context.Context, n *models.Notification) error {
	url, _ := n.Payload["url"].(string)
	if url == "" {
		return fmt.Errorf("webhook notification has no payload url")
	}

	client := &HTTPDeliverer{url: url, httpClient: d.httpClient}
	return client.post(ctx, url, n)
}

func (d *HTTPDeliverer) post(ctx context.Context, url string, n *models.Notification) error {
	body, err := json.Marshal(relayMessage{
		MemberID: n.MemberID,
		Subject:  n.Subject,
		Body:     n.Body,
		Payload:  n.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal relay message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to relay: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}
