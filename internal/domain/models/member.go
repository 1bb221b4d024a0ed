package models

import (
	"time"
)

// Member is a contractor profile in the membership directory.
type Member struct {
	ID               string         `json:"id" db:"id"`
	UserID           string         `json:"user_id" db:"user_id"`
	Company          string         `json:"company" db:"company"`
	FirstName        string         `json:"first_name" db:"first_name"`
	LastName         string         `json:"last_name" db:"last_name"`
	Email            string         `json:"email" db:"email"`
	Phone            string         `json:"phone,omitempty" db:"phone"`
	Specialties      []string       `json:"specialties" db:"specialties"`
	City             string         `json:"city,omitempty" db:"city"`
	State            string         `json:"state,omitempty" db:"state"`
	Website          string         `json:"website,omitempty" db:"website"`
	Certifications   map[string]any `json:"certifications,omitempty" db:"certifications"`
	IsPublic         bool           `json:"is_public" db:"is_public"`
	HubSpotContactID *string        `json:"hubspot_contact_id,omitempty" db:"hubspot_contact_id"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// FullName joins first and last name for display and CRM sync.
func (m *Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// MemberFilter narrows directory listings.
type MemberFilter struct {
	Query     string // matches company or name
	Specialty string
	City      string
	State     string
	// IncludePrivate is only honored for admins.
	IncludePrivate bool
	Limit          int
	Offset         int
}

// CardScan is the OCR suggestion produced from a business-card image.
// Nothing is persisted; the client decides what to keep.
type CardScan struct {
	RawText string `json:"raw_text"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Website string `json:"website,omitempty"`
}
