package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent PATCH field from an explicit JSON
// null (RFC 7396 merge-patch semantics), which a plain *string cannot. The
// project PATCH uses it for bid_deadline: absent leaves the deadline alone,
// null clears it, a string sets it.
type OptionalString struct {
	Present bool
	Value   *string
}

// IsNull reports an explicit JSON null: the field was sent and asks to clear
// the stored value.
func (o OptionalString) IsNull() bool {
	return o.Present && o.Value == nil
}

// UnmarshalJSON runs only when the field appears in the request body, so
// reaching it at all means Present.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
