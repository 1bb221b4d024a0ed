package hubspot

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpsertContact(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1234","properties":{"email":"pat@acme.test"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", 100, testLogger())

	id, err := client.UpsertContact(context.Background(), Contact{
		Email:     "pat@acme.test",
		FirstName: "Pat",
		LastName:  "Rivera",
		Company:   "Rivera Construction",
	})
	if err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if id != "1234" {
		t.Errorf("id = %q, want %q", id, "1234")
	}

	props := gotBody["properties"].(map[string]any)
	if props["company"] != "Rivera Construction" {
		t.Errorf("company property = %v", props["company"])
	}
}

func TestUpsertContactCreatesOnMissing(t *testing.T) {
	var posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPost:
			posts.Add(1)
			w.Write([]byte(`{"id":"5678"}`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", 100, testLogger())

	id, err := client.UpsertContact(context.Background(), Contact{Email: "new@acme.test"})
	if err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if id != "5678" {
		t.Errorf("id = %q, want %q", id, "5678")
	}
	if posts.Load() != 1 {
		t.Errorf("create calls = %d, want 1", posts.Load())
	}
}

func TestUpsertContactEscapesEmailInPath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"id":"77"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", 100, testLogger())

	// A slash or question mark in the local part must not split the path.
	if _, err := client.UpsertContact(context.Background(), Contact{Email: "pat/ops?x@acme.test"}); err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	want := "/crm/v3/objects/contacts/" + url.PathEscape("pat/ops?x@acme.test")
	if gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestUpsertContactRequiresEmail(t *testing.T) {
	client := NewClient("http://unused", "test-token", 100, testLogger())
	if _, err := client.UpsertContact(context.Background(), Contact{}); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestDoRetriesOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"id":"42"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", 100, testLogger())

	id, err := client.UpsertContact(context.Background(), Contact{Email: "retry@acme.test"})
	if err != nil {
		t.Fatalf("UpsertContact() error = %v", err)
	}
	if id != "42" {
		t.Errorf("id = %q, want %q", id, "42")
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestCreateDeal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("decoding body: %v", err)
		}
		props := payload["properties"].(map[string]any)
		if props["amount"] != "125000.00" {
			t.Errorf("amount = %v", props["amount"])
		}
		if _, ok := payload["associations"]; !ok {
			t.Error("expected contact association")
		}
		w.Write([]byte(`{"id":"deal-9"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-token", 100, testLogger())

	id, err := client.CreateDeal(context.Background(), Deal{
		Name:      "Westside Corridor Retrofit",
		Amount:    125000,
		Stage:     "closedwon",
		ContactID: "1234",
		CloseDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateDeal() error = %v", err)
	}
	if id != "deal-9" {
		t.Errorf("id = %q, want %q", id, "deal-9")
	}
}
