package hubspot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"
	"time"
)

func sign(secret, method, uri string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte(uri))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "whk-secret"
	method := "POST"
	uri := "https://portal.example.com/api/webhooks/hubspot"
	body := []byte(`[{"eventId":"1"}]`)

	good := sign(secret, method, uri, body)

	tests := []struct {
		name      string
		secret    string
		signature string
		body      []byte
		want      bool
	}{
		{"valid", secret, good, body, true},
		{"wrong secret", "other", good, body, false},
		{"tampered body", secret, good, []byte(`[{"eventId":"2"}]`), false},
		{"empty signature", secret, "", body, false},
		{"no secret configured", "", good, body, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VerifySignature(tt.secret, method, uri, tt.body, tt.signature)
			if got != tt.want {
				t.Errorf("VerifySignature() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseContactChanges(t *testing.T) {
	body := []byte(`[
		{
			"eventId": "100",
			"subscriptionType": "contact.propertyChange",
			"objectId": 4321,
			"propertyName": "phone",
			"propertyValue": "415-555-0100",
			"occurredAt": 1717200000000
		},
		{
			"eventId": "101",
			"subscriptionType": "contact.creation",
			"objectId": 9999
		},
		{
			"eventId": "102",
			"subscriptionType": "contact.propertyChange",
			"objectId": 4321,
			"propertyName": "company",
			"propertyValue": "Rivera Construction LLC",
			"occurredAt": 1717200001000
		}
	]`)

	changes := ParseContactChanges(body)
	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}

	first := changes[0]
	if first.EventID != 100 || first.ContactID != "4321" || first.PropertyName != "phone" {
		t.Errorf("unexpected first change: %+v", first)
	}
	if first.Value != "415-555-0100" {
		t.Errorf("Value = %q", first.Value)
	}
	wantAt := time.UnixMilli(1717200000000).UTC()
	if !first.OccurredAt.Equal(wantAt) {
		t.Errorf("OccurredAt = %v, want %v", first.OccurredAt, wantAt)
	}

	if changes[1].PropertyName != "company" {
		t.Errorf("second change property = %q", changes[1].PropertyName)
	}
}

func TestParseContactChangesEmpty(t *testing.T) {
	if got := ParseContactChanges([]byte(`[]`)); len(got) != 0 {
		t.Errorf("expected no changes, got %d", len(got))
	}
	if got := ParseContactChanges([]byte(`not json`)); len(got) != 0 {
		t.Errorf("expected no changes for garbage input, got %d", len(got))
	}
}
