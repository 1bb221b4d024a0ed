package service

import (
	"strings"
	"testing"

	"namcportal/internal/domain/models"
)

func TestValidateTiers(t *testing.T) {
	tests := []struct {
		name    string
		tiers   []string
		wantErr string
	}{
		{
			name:  "single tier",
			tiers: []string{models.TierDormant},
		},
		{
			name:  "all tiers",
			tiers: []string{models.TierDormant, models.TierCasual, models.TierActive, models.TierChampion},
		},
		{
			name:    "empty",
			tiers:   nil,
			wantErr: "at least one",
		},
		{
			name:    "unknown tier",
			tiers:   []string{"platinum"},
			wantErr: "unknown tier",
		},
		{
			name:    "duplicate tier",
			tiers:   []string{models.TierActive, models.TierActive},
			wantErr: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTiers(tt.tiers)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("validateTiers() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validateTiers() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseOptionalDate(t *testing.T) {
	if got, err := parseOptionalDate(""); err != nil || got != nil {
		t.Errorf("parseOptionalDate(\"\") = %v, %v; want nil, nil", got, err)
	}

	got, err := parseOptionalDate("2026-09-01")
	if err != nil {
		t.Fatalf("parseOptionalDate() error = %v", err)
	}
	if got.Year() != 2026 || got.Month() != 9 || got.Day() != 1 {
		t.Errorf("parseOptionalDate() = %v", got)
	}

	if _, err := parseOptionalDate("09/01/2026"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}
