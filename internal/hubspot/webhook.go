package hubspot

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/tidwall/gjson"

	"namcportal/internal/domain/models"
)

// VerifySignature checks a HubSpot v2 webhook signature: base64 of
// HMAC-SHA256 over method + uri + body, keyed with the app secret.
// Comparison is constant time.
func VerifySignature(secret, method, uri string, body []byte, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(method))
	mac.Write([]byte(uri))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}

// ParseContactChanges extracts contact.propertyChange events from a webhook
// payload. Other subscription types in the same batch are skipped.
func ParseContactChanges(body []byte) []models.ContactChange {
	var changes []models.ContactChange

	gjson.ParseBytes(body).ForEach(func(_, event gjson.Result) bool {
		if event.Get("subscriptionType").String() != "contact.propertyChange" {
			return true
		}

		occurred := time.UnixMilli(event.Get("occurredAt").Int()).UTC()
		changes = append(changes, models.ContactChange{
			EventID:      event.Get("eventId").Int(),
			ContactID:    event.Get("objectId").String(),
			PropertyName: event.Get("propertyName").String(),
			Value:        event.Get("propertyValue").String(),
			OccurredAt:   occurred,
		})
		return true
	})

	return changes
}
