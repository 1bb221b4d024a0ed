package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
)

func TestLateFee(t *testing.T) {
	end := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		returnedAt time.Time
		dailyRate  float64
		want       float64
	}{
		{
			name:       "returned early",
			returnedAt: end.AddDate(0, 0, -2),
			dailyRate:  35,
			want:       0,
		},
		{
			name:       "returned on the due date",
			returnedAt: end,
			dailyRate:  35,
			want:       0,
		},
		{
			name:       "one day late",
			returnedAt: end.AddDate(0, 0, 1),
			dailyRate:  35,
			want:       35,
		},
		{
			name:       "partial day rounds up",
			returnedAt: end.Add(6 * time.Hour),
			dailyRate:  35,
			want:       35,
		},
		{
			name:       "a week late",
			returnedAt: end.AddDate(0, 0, 7),
			dailyRate:  50,
			want:       350,
		},
		{
			name:       "free tool accrues nothing",
			returnedAt: end.AddDate(0, 0, 3),
			dailyRate:  0,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LateFee(end, tt.returnedAt, tt.dailyRate); got != tt.want {
				t.Errorf("LateFee() = %v, want %v", got, tt.want)
			}
		})
	}
}

// fakeToolRepo serves a single catalog entry.
type fakeToolRepo struct {
	repositories.ToolRepository
	tool *models.Tool
}

func (f *fakeToolRepo) GetByID(ctx context.Context, id string) (*models.Tool, error) {
	if f.tool == nil || f.tool.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.tool, nil
}

// fakeReservationRepo holds one reservation and a fixed overlap count.
type fakeReservationRepo struct {
	repositories.ReservationRepository
	reservation *models.Reservation
	overlapping int
	created     *models.Reservation
	updated     *models.Reservation
}

func (f *fakeReservationRepo) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	if f.reservation == nil || f.reservation.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.reservation, nil
}

func (f *fakeReservationRepo) CountOverlapping(ctx context.Context, toolID string, start, end time.Time) (int, error) {
	return f.overlapping, nil
}

func (f *fakeReservationRepo) Create(ctx context.Context, r *models.Reservation) error {
	r.ID = "res-new"
	f.created = r
	return nil
}

func (f *fakeReservationRepo) Update(ctx context.Context, r *models.Reservation) error {
	f.updated = r
	return nil
}

// fakeEventRecorder captures engagement events.
type fakeEventRecorder struct {
	repositories.EngagementRepository
	events []*models.EngagementEvent
}

func (f *fakeEventRecorder) RecordEvent(ctx context.Context, e *models.EngagementEvent) error {
	f.events = append(f.events, e)
	return nil
}

// immediateTx runs the function without a real transaction.
type immediateTx struct{}

func (immediateTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func drillTool() *models.Tool {
	return &models.Tool{
		ID:        "tool-1",
		Name:      "Hammer drill",
		Category:  "power",
		DailyRate: 35,
		Quantity:  2,
		IsActive:  true,
	}
}

func memberClaims(memberID string) *models.PortalClaims {
	return &models.PortalClaims{PortalRole: models.RoleMember, MemberID: memberID}
}

func newTestToolService(tools *fakeToolRepo, reservations *fakeReservationRepo, events *fakeEventRecorder) *toolService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewToolService(tools, reservations, events, immediateTx{}, logger).(*toolService)
}

func TestReserve(t *testing.T) {
	t.Run("books when units are available", func(t *testing.T) {
		reservations := &fakeReservationRepo{overlapping: 1}
		events := &fakeEventRecorder{}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, events)

		reservation, err := svc.Reserve(context.Background(), reserveRequest("2026-04-01", "2026-04-05"))
		if err != nil {
			t.Fatalf("Reserve() error = %v", err)
		}
		if reservation.Status != models.ReservationConfirmed {
			t.Errorf("Status = %q, want confirmed", reservation.Status)
		}
		if reservations.created == nil {
			t.Fatal("expected the reservation to be persisted")
		}
		if len(events.events) != 1 || events.events[0].Kind != models.EventToolReservation {
			t.Errorf("events = %v, want one tool_reservation event", events.events)
		}
	})

	t.Run("all units taken", func(t *testing.T) {
		reservations := &fakeReservationRepo{overlapping: 2}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		_, err := svc.Reserve(context.Background(), reserveRequest("2026-04-01", "2026-04-05"))
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
		if reservations.created != nil {
			t.Error("no reservation should be persisted when inventory is exhausted")
		}
	})

	t.Run("inactive tool", func(t *testing.T) {
		tool := drillTool()
		tool.IsActive = false
		svc := newTestToolService(&fakeToolRepo{tool: tool}, &fakeReservationRepo{}, &fakeEventRecorder{})

		if _, err := svc.Reserve(context.Background(), reserveRequest("2026-04-01", "2026-04-05")); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("end before start", func(t *testing.T) {
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, &fakeReservationRepo{}, &fakeEventRecorder{})

		if _, err := svc.Reserve(context.Background(), reserveRequest("2026-04-05", "2026-04-01")); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, &fakeReservationRepo{}, &fakeEventRecorder{})

		if _, err := svc.Reserve(context.Background(), reserveRequest("04/01/2026", "04/05/2026")); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func reserveRequest(start, end string) *services.ReserveRequest {
	return &services.ReserveRequest{
		ToolID:    "tool-1",
		MemberID:  "member-1",
		StartDate: start,
		EndDate:   end,
	}
}

func reservationInStatus(status string) *models.Reservation {
	return &models.Reservation{
		ID:       "res-1",
		ToolID:   "tool-1",
		MemberID: "member-1",
		EndDate:  time.Now().Add(-23 * time.Hour),
		Status:   status,
	}
}

func TestCheckout(t *testing.T) {
	t.Run("confirmed reservation checks out", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationConfirmed)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		reservation, err := svc.Checkout(context.Background(), "res-1", memberClaims("member-1"))
		if err != nil {
			t.Fatalf("Checkout() error = %v", err)
		}
		if reservation.Status != models.ReservationCheckedOut {
			t.Errorf("Status = %q, want checked_out", reservation.Status)
		}
		if reservation.CheckedOutAt == nil {
			t.Error("CheckedOutAt should be stamped")
		}
	})

	t.Run("already checked out is a conflict", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationCheckedOut)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		_, err := svc.Checkout(context.Background(), "res-1", memberClaims("member-1"))
		if !errors.Is(err, domain.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
		var conflict *domain.ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("error = %T, want *ConflictError", err)
		}
		if conflict.ResourceType != "reservation" {
			t.Errorf("ResourceType = %q, want reservation", conflict.ResourceType)
		}
	})

	t.Run("cancelled reservation rejected", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationCancelled)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		if _, err := svc.Checkout(context.Background(), "res-1", memberClaims("member-1")); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})

	t.Run("another member's reservation is forbidden", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationConfirmed)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		_, err := svc.Checkout(context.Background(), "res-1", memberClaims("member-2"))
		var forbidden *domain.ForbiddenError
		if !errors.As(err, &forbidden) {
			t.Errorf("error = %v, want *ForbiddenError", err)
		}
	})

	t.Run("admin may act on any reservation", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationConfirmed)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		admin := &models.PortalClaims{PortalRole: models.RoleAdmin}
		if _, err := svc.Checkout(context.Background(), "res-1", admin); err != nil {
			t.Errorf("Checkout() as admin error = %v", err)
		}
	})
}

func TestReturn(t *testing.T) {
	t.Run("late return charges the fee", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationCheckedOut)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		reservation, err := svc.Return(context.Background(), "res-1", memberClaims("member-1"))
		if err != nil {
			t.Fatalf("Return() error = %v", err)
		}
		if reservation.Status != models.ReservationReturned {
			t.Errorf("Status = %q, want returned", reservation.Status)
		}
		// Under a day past the end date rounds up to one day at 35/day.
		if reservation.LateFee != 35 {
			t.Errorf("LateFee = %v, want 35", reservation.LateFee)
		}
	})

	t.Run("on-time return is free", func(t *testing.T) {
		reservation := reservationInStatus(models.ReservationCheckedOut)
		reservation.EndDate = time.Now().AddDate(0, 0, 3)
		reservations := &fakeReservationRepo{reservation: reservation}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		returned, err := svc.Return(context.Background(), "res-1", memberClaims("member-1"))
		if err != nil {
			t.Fatalf("Return() error = %v", err)
		}
		if returned.LateFee != 0 {
			t.Errorf("LateFee = %v, want 0", returned.LateFee)
		}
	})

	t.Run("only checked-out reservations return", func(t *testing.T) {
		reservations := &fakeReservationRepo{reservation: reservationInStatus(models.ReservationConfirmed)}
		svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

		if _, err := svc.Return(context.Background(), "res-1", memberClaims("member-1")); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("error = %v, want ErrValidation", err)
		}
	})
}

func TestCancelReservation(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "pending cancels", status: models.ReservationPending},
		{name: "confirmed cancels", status: models.ReservationConfirmed},
		{name: "checked out cannot cancel", status: models.ReservationCheckedOut, wantErr: true},
		{name: "returned cannot cancel", status: models.ReservationReturned, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reservations := &fakeReservationRepo{reservation: reservationInStatus(tt.status)}
			svc := newTestToolService(&fakeToolRepo{tool: drillTool()}, reservations, &fakeEventRecorder{})

			reservation, err := svc.Cancel(context.Background(), "res-1", memberClaims("member-1"))
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Errorf("error = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Cancel() error = %v", err)
			}
			if reservation.Status != models.ReservationCancelled {
				t.Errorf("Status = %q, want cancelled", reservation.Status)
			}
		})
	}
}
