// Package vision wraps the Google Cloud Vision REST API for business-card
// OCR. Only text detection is used; images are never stored.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
)

// OCRClient extracts text from images. Implementations must be safe for
// concurrent use.
type OCRClient interface {
	ScanCard(ctx context.Context, image []byte) (*models.CardScan, error)
}

// Client calls the images:annotate endpoint with an API key.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(endpoint, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
		logger:     logger,
	}
}

// ScanCard runs text detection on a business-card image and heuristically
// labels the detected lines. Returns ErrUnavailable when the OCR backend
// cannot be reached, so handlers can map it to 502.
func (c *Client) ScanCard(ctx context.Context, image []byte) (*models.CardScan, error) {
	payload := map[string]any{
		"requests": []map[string]any{
			{
				"image": map[string]string{
					"content": base64.StdEncoding.EncodeToString(image),
				},
				"features": []map[string]any{
					{"type": "TEXT_DETECTION", "maxResults": 1},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling annotate request: %w", err)
	}

	url := c.endpoint + "?key=" + c.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating annotate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("vision request failed", "error", err)
		return nil, domain.ErrUnavailable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading annotate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("vision returned error status", "status", resp.StatusCode)
		return nil, domain.ErrUnavailable
	}

	raw := gjson.GetBytes(respBody, "responses.0.fullTextAnnotation.text").String()
	if raw == "" {
		// No text found is a valid outcome, not an error.
		return &models.CardScan{}, nil
	}

	return ParseCardText(raw), nil
}

var (
	phoneRe   = regexp.MustCompile(`(\+?1[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
	websiteRe = regexp.MustCompile(`(?i)\b(?:https?://)?(?:www\.)?[a-z0-9-]+\.(?:com|net|org|io|build|construction)\b\S*`)
	// Corporate suffixes that mark a line as a company name.
	companyRe = regexp.MustCompile(`(?i)\b(LLC|Inc\.?|Corp\.?|Co\.?|Construction|Builders|Contracting|Electric|Plumbing|Concrete|Group)\b`)
)

// ParseCardText labels the lines of OCR output. The heuristics are
// deliberately simple: the result is a prefill suggestion the member edits
// before submitting.
func ParseCardText(raw string) *models.CardScan {
	scan := &models.CardScan{RawText: raw}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if scan.Email == "" {
			if addr := findEmail(line); addr != "" {
				scan.Email = addr
				continue
			}
		}
		if scan.Phone == "" {
			if m := phoneRe.FindString(line); m != "" {
				scan.Phone = strings.TrimSpace(m)
				continue
			}
		}
		if scan.Company == "" && companyRe.MatchString(line) {
			scan.Company = line
			continue
		}
		if scan.Website == "" {
			if m := websiteRe.FindString(line); m != "" && !strings.Contains(m, "@") {
				scan.Website = m
				continue
			}
		}
		// First unclaimed plain line is usually the person's name.
		if scan.Name == "" && looksLikeName(line) {
			scan.Name = line
		}
	}

	return scan
}

func findEmail(line string) string {
	for _, word := range strings.Fields(line) {
		word = strings.Trim(word, "<>,;:")
		if addr, err := mail.ParseAddress(word); err == nil {
			return addr.Address
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r := rune(w[0])
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return !companyRe.MatchString(line)
}
