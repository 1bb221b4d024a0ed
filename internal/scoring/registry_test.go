package scoring

import (
	"testing"

	"namcportal/internal/domain/models"
)

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	kinds := []string{
		models.EventLogin,
		models.EventAttendance,
		models.EventToolReservation,
		models.EventBidSubmitted,
		models.EventCourseCompleted,
		models.EventWebinar,
		models.EventReferral,
	}
	for _, kind := range kinds {
		if _, ok := reg.Weight(kind); !ok {
			t.Errorf("Weight(%q) missing from registry", kind)
		}
	}
}

func TestScore(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		name   string
		counts []models.KindCount
		want   float64
	}{
		{
			name:   "no events",
			counts: nil,
			want:   0,
		},
		{
			name: "single kind",
			counts: []models.KindCount{
				{Kind: models.EventBidSubmitted, Count: 2},
			},
			want: 20,
		},
		{
			name: "count capped",
			counts: []models.KindCount{
				{Kind: models.EventLogin, Count: 500},
			},
			want: 20, // cap 20 at 1 point each
		},
		{
			name: "unknown kind ignored",
			counts: []models.KindCount{
				{Kind: "parking_validation", Count: 10},
				{Kind: models.EventWebinar, Count: 1},
			},
			want: 6,
		},
		{
			name: "clamped to 100",
			counts: []models.KindCount{
				{Kind: models.EventLogin, Count: 20},
				{Kind: models.EventAttendance, Count: 6},
				{Kind: models.EventToolReservation, Count: 8},
				{Kind: models.EventBidSubmitted, Count: 5},
				{Kind: models.EventCourseCompleted, Count: 4},
				{Kind: models.EventReferral, Count: 3},
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.Score(tt.counts); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTier(t *testing.T) {
	reg, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	tests := []struct {
		score float64
		want  string
	}{
		{0, models.TierDormant},
		{19.99, models.TierDormant},
		{20, models.TierCasual},
		{49.99, models.TierCasual},
		{50, models.TierActive},
		{79.99, models.TierActive},
		{80, models.TierChampion},
		{100, models.TierChampion},
	}

	for _, tt := range tests {
		if got := reg.Tier(tt.score); got != tt.want {
			t.Errorf("Tier(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
