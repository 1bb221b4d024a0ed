package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
)

const dateLayout = "2006-01-02"

type toolService struct {
	toolRepo        repositories.ToolRepository
	reservationRepo repositories.ReservationRepository
	engagementRepo  repositories.EngagementRepository
	txManager       repositories.TransactionManager
	logger          *slog.Logger
}

// NewToolService creates a new tool lending service
func NewToolService(
	toolRepo repositories.ToolRepository,
	reservationRepo repositories.ReservationRepository,
	engagementRepo repositories.EngagementRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ToolService {
	return &toolService{
		toolRepo:        toolRepo,
		reservationRepo: reservationRepo,
		engagementRepo:  engagementRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// CreateTool adds a tool to the catalog
func (s *toolService) CreateTool(ctx context.Context, req *services.CreateToolRequest) (*models.Tool, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	tool := &models.Tool{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		DailyRate:   req.DailyRate,
		Condition:   req.Condition,
		Quantity:    req.Quantity,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if err := s.toolRepo.Create(ctx, tool); err != nil {
		return nil, err
	}

	s.logger.Info("tool created", "id", tool.ID, "name", tool.Name, "quantity", tool.Quantity)

	return tool, nil
}

// GetTool retrieves one catalog entry
func (s *toolService) GetTool(ctx context.Context, id string) (*models.Tool, error) {
	return s.toolRepo.GetByID(ctx, id)
}

// ListTools searches the catalog
func (s *toolService) ListTools(ctx context.Context, filter *models.ToolFilter) ([]models.Tool, error) {
	if filter == nil {
		filter = &models.ToolFilter{}
	}
	normalizePage(&filter.Limit, &filter.Offset)
	return s.toolRepo.List(ctx, filter)
}

// UpdateTool applies a partial update
func (s *toolService) UpdateTool(ctx context.Context, id string, req *services.UpdateToolRequest) (*models.Tool, error) {
	tool, err := s.toolRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tool.Name = *req.Name
	}
	if req.Category != nil {
		tool.Category = *req.Category
	}
	if req.Description != nil {
		tool.Description = *req.Description
	}
	if req.DailyRate != nil {
		if *req.DailyRate < 0 {
			return nil, fmt.Errorf("%w: daily rate cannot be negative", domain.ErrValidation)
		}
		tool.DailyRate = *req.DailyRate
	}
	if req.Condition != nil {
		tool.Condition = *req.Condition
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, fmt.Errorf("%w: quantity cannot be negative", domain.ErrValidation)
		}
		tool.Quantity = *req.Quantity
	}
	if req.IsActive != nil {
		tool.IsActive = *req.IsActive
	}
	tool.UpdatedAt = time.Now()

	if err := s.toolRepo.Update(ctx, tool); err != nil {
		return nil, err
	}

	s.logger.Info("tool updated", "id", tool.ID)

	return tool, nil
}

// DeleteTool retires a tool from the catalog
func (s *toolService) DeleteTool(ctx context.Context, id string) error {
	if _, err := s.toolRepo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.toolRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("tool deleted", "id", id)
	return nil
}

// Reserve books a tool when inventory is available for the range
func (s *toolService) Reserve(ctx context.Context, req *services.ReserveRequest) (*models.Reservation, error) {
	if err := s.validateReserveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", domain.ErrValidation)
	}

	tool, err := s.toolRepo.GetByID(ctx, req.ToolID)
	if err != nil {
		return nil, err
	}
	if !tool.IsActive {
		return nil, fmt.Errorf("%w: tool is not available for lending", domain.ErrValidation)
	}

	reservation := &models.Reservation{
		ToolID:    tool.ID,
		MemberID:  req.MemberID,
		StartDate: start,
		EndDate:   end,
		Status:    models.ReservationConfirmed,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	// Availability check and insert run in one transaction so two members
	// cannot both claim the last unit.
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		overlapping, err := s.reservationRepo.CountOverlapping(ctx, tool.ID, start, end)
		if err != nil {
			return err
		}
		if overlapping >= tool.Quantity {
			return &domain.ConflictError{
				Message:      "no units available for the requested dates",
				ResourceType: "reservation",
			}
		}
		if err := s.reservationRepo.Create(ctx, reservation); err != nil {
			return err
		}
		return s.engagementRepo.RecordEvent(ctx, &models.EngagementEvent{
			MemberID:   req.MemberID,
			Kind:       models.EventToolReservation,
			OccurredAt: time.Now(),
			Metadata:   map[string]any{"tool_id": tool.ID, "reservation_id": reservation.ID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tool reserved",
		"reservation_id", reservation.ID,
		"tool_id", tool.ID,
		"member_id", req.MemberID,
		"start", req.StartDate,
		"end", req.EndDate,
	)

	return reservation, nil
}

// Checkout hands the tool over; only confirmed reservations qualify
func (s *toolService) Checkout(ctx context.Context, reservationID string, actor *models.PortalClaims) (*models.Reservation, error) {
	reservation, err := s.getOwnedReservation(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}

	if reservation.Status == models.ReservationCheckedOut {
		return nil, &domain.ConflictError{
			Message:      "reservation is already checked out",
			ResourceType: "reservation",
		}
	}
	if reservation.Status != models.ReservationConfirmed {
		return nil, fmt.Errorf("%w: reservation is %s, expected confirmed", domain.ErrValidation, reservation.Status)
	}

	now := time.Now()
	reservation.Status = models.ReservationCheckedOut
	reservation.CheckedOutAt = &now
	reservation.UpdatedAt = now

	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	s.logger.Info("tool checked out", "reservation_id", reservation.ID)

	return reservation, nil
}

// Return closes the loan and computes the late fee when the tool comes back
// after the reservation end date
func (s *toolService) Return(ctx context.Context, reservationID string, actor *models.PortalClaims) (*models.Reservation, error) {
	reservation, err := s.getOwnedReservation(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}

	if reservation.Status != models.ReservationCheckedOut {
		return nil, fmt.Errorf("%w: reservation is %s, expected checked_out", domain.ErrValidation, reservation.Status)
	}

	tool, err := s.toolRepo.GetByID(ctx, reservation.ToolID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	reservation.Status = models.ReservationReturned
	reservation.ReturnedAt = &now
	reservation.LateFee = LateFee(reservation.EndDate, now, tool.DailyRate)
	reservation.UpdatedAt = now

	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	s.logger.Info("tool returned",
		"reservation_id", reservation.ID,
		"late_fee", reservation.LateFee,
	)

	return reservation, nil
}

// Cancel voids a pending or confirmed reservation
func (s *toolService) Cancel(ctx context.Context, reservationID string, actor *models.PortalClaims) (*models.Reservation, error) {
	reservation, err := s.getOwnedReservation(ctx, reservationID, actor)
	if err != nil {
		return nil, err
	}

	switch reservation.Status {
	case models.ReservationPending, models.ReservationConfirmed:
	default:
		return nil, fmt.Errorf("%w: reservation is %s and cannot be cancelled", domain.ErrValidation, reservation.Status)
	}

	reservation.Status = models.ReservationCancelled
	reservation.UpdatedAt = time.Now()

	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	s.logger.Info("reservation cancelled", "reservation_id", reservation.ID)

	return reservation, nil
}

// ListReservations returns the member's borrow history
func (s *toolService) ListReservations(ctx context.Context, memberID string, limit, offset int) ([]models.Reservation, error) {
	normalizePage(&limit, &offset)
	return s.reservationRepo.ListByMember(ctx, memberID, limit, offset)
}

// LateFee computes the charge for returning after the reservation end date:
// whole days late times the tool's daily rate. A same-day return is free.
func LateFee(endDate, returnedAt time.Time, dailyRate float64) float64 {
	if !returnedAt.After(endDate) {
		return 0
	}
	daysLate := int(math.Ceil(returnedAt.Sub(endDate).Hours() / 24))
	return float64(daysLate) * dailyRate
}

// getOwnedReservation loads a reservation and checks the actor may act on it.
func (s *toolService) getOwnedReservation(ctx context.Context, id string, actor *models.PortalClaims) (*models.Reservation, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || (!actor.IsAdmin() && actor.MemberID != reservation.MemberID) {
		return nil, &domain.ForbiddenError{Message: "reservation belongs to another member"}
	}
	return reservation, nil
}

func (s *toolService) validateCreateRequest(req *services.CreateToolRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Category, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.DailyRate, validation.Min(0.0)),
		validation.Field(&req.Quantity, validation.Required, validation.Min(1)),
	)
}

func (s *toolService) validateReserveRequest(req *services.ReserveRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ToolID, validation.Required),
		validation.Field(&req.MemberID, validation.Required),
		validation.Field(&req.StartDate, validation.Required),
		validation.Field(&req.EndDate, validation.Required),
	)
}
