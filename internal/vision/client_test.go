package vision

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
)

func TestParseCardText(t *testing.T) {
	raw := "Pat Rivera\nRivera Construction LLC\nProject Manager\npat@riveraconstruction.com\n(415) 555-0100\nwww.riveraconstruction.com"

	scan := ParseCardText(raw)

	if scan.Name != "Pat Rivera" {
		t.Errorf("Name = %q", scan.Name)
	}
	if scan.Company != "Rivera Construction LLC" {
		t.Errorf("Company = %q", scan.Company)
	}
	if scan.Email != "pat@riveraconstruction.com" {
		t.Errorf("Email = %q", scan.Email)
	}
	if scan.Phone != "(415) 555-0100" {
		t.Errorf("Phone = %q", scan.Phone)
	}
	if scan.Website != "www.riveraconstruction.com" {
		t.Errorf("Website = %q", scan.Website)
	}
	if scan.RawText != raw {
		t.Error("RawText should preserve the OCR output")
	}
}

func TestParseCardTextSparse(t *testing.T) {
	scan := ParseCardText("pat@example.com")
	if scan.Email != "pat@example.com" {
		t.Errorf("Email = %q", scan.Email)
	}
	if scan.Name != "" || scan.Company != "" {
		t.Errorf("expected only email, got %+v", scan)
	}
}

func TestScanCard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if gjson.GetBytes(body, "requests.0.features.0.type").String() != "TEXT_DETECTION" {
			t.Error("expected TEXT_DETECTION feature")
		}
		w.Write([]byte(`{"responses":[{"fullTextAnnotation":{"text":"Pat Rivera\npat@example.com"}}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))

	scan, err := client.ScanCard(context.Background(), []byte("fake-image-bytes"))
	if err != nil {
		t.Fatalf("ScanCard() error = %v", err)
	}
	if scan.Name != "Pat Rivera" || scan.Email != "pat@example.com" {
		t.Errorf("unexpected scan: %+v", scan)
	}
}

func TestScanCardNoText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key", slog.New(slog.NewTextHandler(io.Discard, nil)))

	scan, err := client.ScanCard(context.Background(), []byte("blank"))
	if err != nil {
		t.Fatalf("ScanCard() error = %v", err)
	}
	if scan.RawText != "" {
		t.Errorf("expected empty scan, got %+v", scan)
	}
}
