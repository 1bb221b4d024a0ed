package config

// Request and domain limits enforced by service-layer validation.
const (
	// MaxCompanyNameLength caps member company names.
	MaxCompanyNameLength = 200

	// MaxSubjectLength caps notification subjects.
	MaxSubjectLength = 200

	// MaxBodyLength caps notification bodies.
	MaxBodyLength = 10000

	// MaxNotesLength caps bid notes and budget memos.
	MaxNotesLength = 5000

	// MaxSpecialties caps the number of trade specialties per member.
	MaxSpecialties = 20

	// MaxAllocations caps the number of allocation lines per budget.
	MaxAllocations = 25

	// MaxImageBytes caps uploaded business-card images (Vision OCR).
	MaxImageBytes = 8 << 20

	// AllocationTolerance is the rounding slack allowed when allocation
	// percentages are checked against 100.
	AllocationTolerance = 0.01

	// DefaultPageSize and MaxPageSize bound list endpoints.
	DefaultPageSize = 20
	MaxPageSize     = 100

	// DefaultMaxAttempts bounds notification delivery retries.
	DefaultMaxAttempts = 5

	// ScoreWindowDays is the rolling window for engagement scoring.
	ScoreWindowDays = 90
)
