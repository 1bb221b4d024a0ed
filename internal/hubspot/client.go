// Package hubspot implements the outbound CRM client and the inbound
// webhook verification for HubSpot contact/deal sync.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"namcportal/internal/domain"
)

const (
	maxRetries     = 3
	defaultBackoff = 2 * time.Second
)

// Contact is the subset of HubSpot contact properties the portal syncs.
type Contact struct {
	Email       string
	FirstName   string
	LastName    string
	Company     string
	Phone       string
	MemberTier  string
	PortalScore float64
}

// Deal mirrors a won project bid into the CRM pipeline.
type Deal struct {
	Name      string
	Amount    float64
	Stage     string
	ContactID string
	CloseDate time.Time
}

// Client talks to the HubSpot v3 CRM API. All requests share a token-bucket
// rate limiter so background sync and interactive requests stay under the
// account's requests-per-second allowance.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// NewClient creates a HubSpot client. rps is the sustained request rate;
// HubSpot private apps allow 10/s, so the default config leaves headroom at 9.
func NewClient(baseURL, accessToken string, rps float64, logger *slog.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     rate.NewLimiter(rate.Limit(rps), int(rps)+1),
		logger:      logger,
	}
}

// UpsertContact creates or updates a CRM contact keyed by email and returns
// the HubSpot contact ID.
func (c *Client) UpsertContact(ctx context.Context, contact Contact) (string, error) {
	if contact.Email == "" {
		return "", fmt.Errorf("contact email is required")
	}

	props := map[string]string{
		"email":            contact.Email,
		"firstname":        contact.FirstName,
		"lastname":         contact.LastName,
		"company":          contact.Company,
		"phone":            contact.Phone,
		"namc_member_tier": contact.MemberTier,
		"namc_engagement":  strconv.FormatFloat(contact.PortalScore, 'f', 1, 64),
	}
	body := map[string]any{"properties": props}

	// The v3 upsert endpoint keys on the email property. Emails can carry
	// path-hostile characters, escape before splicing into the URL.
	path := fmt.Sprintf("/crm/v3/objects/contacts/%s?idProperty=email", url.PathEscape(contact.Email))
	respBody, status, err := c.do(ctx, http.MethodPatch, path, body)
	if err != nil {
		return "", err
	}

	// PATCH on a missing contact returns 404; fall back to create.
	if status == http.StatusNotFound {
		respBody, status, err = c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", body)
		if err != nil {
			return "", err
		}
	}

	if status < 200 || status >= 300 {
		return "", fmt.Errorf("hubspot contact upsert returned %d: %s", status, truncate(respBody))
	}

	id := gjson.GetBytes(respBody, "id").String()
	if id == "" {
		return "", fmt.Errorf("hubspot contact upsert response missing id")
	}
	return id, nil
}

// GetContact fetches a contact's properties by HubSpot contact ID.
func (c *Client) GetContact(ctx context.Context, contactID string) (map[string]string, error) {
	path := fmt.Sprintf("/crm/v3/objects/contacts/%s?properties=email,firstname,lastname,company,phone", url.PathEscape(contactID))
	respBody, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("hubspot get contact returned %d: %s", status, truncate(respBody))
	}

	props := map[string]string{}
	gjson.GetBytes(respBody, "properties").ForEach(func(key, value gjson.Result) bool {
		props[key.String()] = value.String()
		return true
	})
	return props, nil
}

// CreateDeal records a won bid as a CRM deal associated with the member's
// contact. Returns the deal ID.
func (c *Client) CreateDeal(ctx context.Context, deal Deal) (string, error) {
	body := map[string]any{
		"properties": map[string]string{
			"dealname":  deal.Name,
			"amount":    strconv.FormatFloat(deal.Amount, 'f', 2, 64),
			"dealstage": deal.Stage,
			"closedate": deal.CloseDate.UTC().Format(time.RFC3339),
		},
	}
	if deal.ContactID != "" {
		body["associations"] = []map[string]any{
			{
				"to": map[string]string{"id": deal.ContactID},
				"types": []map[string]any{
					{"associationCategory": "HUBSPOT_DEFINED", "associationTypeId": 3},
				},
			},
		}
	}

	respBody, status, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/deals", body)
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("hubspot deal create returned %d: %s", status, truncate(respBody))
	}

	id := gjson.GetBytes(respBody, "id").String()
	if id == "" {
		return "", fmt.Errorf("hubspot deal create response missing id")
	}
	return id, nil
}

// do issues one API request, waiting on the rate limiter first and retrying
// 429 and 5xx responses with the server's Retry-After when present.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, 0, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = readErr
			} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("hubspot returned %d: %s", resp.StatusCode, truncate(respBody))
				if attempt < maxRetries {
					wait := retryAfter(resp, defaultBackoff<<attempt)
					c.logger.Warn("hubspot request throttled, retrying",
						"status", resp.StatusCode,
						"attempt", attempt+1,
						"wait", wait,
					)
					select {
					case <-time.After(wait):
					case <-ctx.Done():
						return nil, 0, ctx.Err()
					}
					continue
				}
			} else {
				return respBody, resp.StatusCode, nil
			}
		}

		if attempt < maxRetries {
			select {
			case <-time.After(defaultBackoff << attempt):
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			}
		}
	}

	return nil, 0, fmt.Errorf("hubspot request failed after %d attempts: %w", maxRetries+1, lastErr)
}

// retryAfter honors the Retry-After header when the server sends one.
func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}

func truncate(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
