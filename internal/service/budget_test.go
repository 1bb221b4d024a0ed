package service

import (
	"strings"
	"testing"

	"namcportal/internal/domain/models"
)

func TestValidateAllocations(t *testing.T) {
	tests := []struct {
		name        string
		allocations []models.Allocation
		wantErr     string // empty means valid
	}{
		{
			name: "exact hundred",
			allocations: []models.Allocation{
				{Category: "materials", Percentage: 40},
				{Category: "labor", Percentage: 35},
				{Category: "equipment", Percentage: 15},
				{Category: "contingency", Percentage: 10},
			},
		},
		{
			name: "within tolerance",
			allocations: []models.Allocation{
				{Category: "materials", Percentage: 33.33},
				{Category: "labor", Percentage: 33.33},
				{Category: "equipment", Percentage: 33.34},
			},
		},
		{
			name: "under a hundred",
			allocations: []models.Allocation{
				{Category: "materials", Percentage: 50},
				{Category: "labor", Percentage: 40},
			},
			wantErr: "must total 100",
		},
		{
			name: "over a hundred",
			allocations: []models.Allocation{
				{Category: "materials", Percentage: 60},
				{Category: "labor", Percentage: 50},
			},
			wantErr: "must total 100",
		},
		{
			name:        "empty",
			allocations: nil,
			wantErr:     "at least one",
		},
		{
			name: "duplicate category",
			allocations: []models.Allocation{
				{Category: "materials", Percentage: 50},
				{Category: "materials", Percentage: 50},
			},
			wantErr: "duplicate",
		},
		{
			name: "zero percentage",
			allocations: []models.Allocation{
				{Category: "materials", Percentage: 0},
				{Category: "labor", Percentage: 100},
			},
			wantErr: "must be positive",
		},
		{
			name: "empty category",
			allocations: []models.Allocation{
				{Category: "", Percentage: 100},
			},
			wantErr: "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllocations(tt.allocations)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateAllocations() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateAllocations() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
