package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusConflict, "bid already submitted")

	if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
		t.Errorf("Content-Type = %q", got)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}

	var problem map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if problem["type"] != problemTypeBase+"conflict" {
		t.Errorf("type = %v", problem["type"])
	}
	if problem["detail"] != "bid already submitted" {
		t.Errorf("detail = %v", problem["detail"])
	}
	if problem["status"] != float64(http.StatusConflict) {
		t.Errorf("status field = %v", problem["status"])
	}
}

func TestRespondErrorWithExtrasFlattens(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithExtras(rec, http.StatusConflict, "duplicate bid", map[string]interface{}{
		"resource_type": "bid",
		"resource_id":   "bid-42",
	})

	var problem map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if problem["resource_type"] != "bid" || problem["resource_id"] != "bid-42" {
		t.Errorf("extras not flattened to top level: %v", problem)
	}
}

func TestProblemTypeUnknownStatus(t *testing.T) {
	if got := problemType(http.StatusTeapot); got != "about:blank" {
		t.Errorf("problemType(418) = %q", got)
	}
}

func TestOptionalStringStates(t *testing.T) {
	var patch struct {
		Deadline OptionalString `json:"bid_deadline"`
	}

	if err := json.Unmarshal([]byte(`{}`), &patch); err != nil {
		t.Fatal(err)
	}
	if patch.Deadline.Present {
		t.Error("absent field should not be Present")
	}

	patch.Deadline = OptionalString{}
	if err := json.Unmarshal([]byte(`{"bid_deadline":null}`), &patch); err != nil {
		t.Fatal(err)
	}
	if !patch.Deadline.IsNull() {
		t.Error("explicit null should report IsNull")
	}

	patch.Deadline = OptionalString{}
	if err := json.Unmarshal([]byte(`{"bid_deadline":"2026-09-01T00:00:00Z"}`), &patch); err != nil {
		t.Fatal(err)
	}
	if patch.Deadline.IsNull() || !patch.Deadline.Present || *patch.Deadline.Value != "2026-09-01T00:00:00Z" {
		t.Errorf("value field parsed as %+v", patch.Deadline)
	}
}
