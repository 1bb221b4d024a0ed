package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"namcportal/internal/config"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
	"namcportal/internal/vision"
)

type memberService struct {
	memberRepo repositories.MemberRepository
	syncRepo   repositories.SyncStateRepository
	txManager  repositories.TransactionManager
	ocr        vision.OCRClient
	logger     *slog.Logger
}

// NewMemberService creates a new member directory service
func NewMemberService(
	memberRepo repositories.MemberRepository,
	syncRepo repositories.SyncStateRepository,
	txManager repositories.TransactionManager,
	ocr vision.OCRClient,
	logger *slog.Logger,
) services.MemberService {
	return &memberService{
		memberRepo: memberRepo,
		syncRepo:   syncRepo,
		txManager:  txManager,
		ocr:        ocr,
		logger:     logger,
	}
}

// CreateMember creates a profile and flags it for CRM sync
func (s *memberService) CreateMember(ctx context.Context, req *services.CreateMemberRequest) (*models.Member, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// One profile per account
	if existing, err := s.memberRepo.GetByUserID(ctx, req.UserID); err == nil {
		return nil, &domain.ConflictError{
			Message:      "a profile already exists for this account",
			ResourceType: "member",
			ResourceID:   existing.ID,
		}
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	member := &models.Member{
		UserID:         req.UserID,
		Company:        req.Company,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Specialties:    req.Specialties,
		City:           req.City,
		State:          req.State,
		Website:        req.Website,
		Certifications: req.Certifications,
		IsPublic:       isPublic,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	// Create the profile and mark it for the next CRM sync pass together
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.memberRepo.Create(ctx, member); err != nil {
			return err
		}
		return s.syncRepo.MarkDirty(ctx, member.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member created",
		"id", member.ID,
		"company", member.Company,
		"email", member.Email,
	)

	return member, nil
}

// GetMember retrieves a profile; private profiles are only visible to their
// owner and admins
func (s *memberService) GetMember(ctx context.Context, id string, viewer *models.PortalClaims) (*models.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !member.IsPublic && !canManageMember(member, viewer) {
		// Hide existence of private profiles from other members
		return nil, &domain.NotFoundError{Message: "member not found"}
	}

	return member, nil
}

// ListMembers searches the directory
func (s *memberService) ListMembers(ctx context.Context, filter *models.MemberFilter, viewer *models.PortalClaims) ([]models.Member, error) {
	if filter == nil {
		filter = &models.MemberFilter{}
	}
	normalizePage(&filter.Limit, &filter.Offset)

	// Only admins may see private profiles
	if viewer == nil || !viewer.IsAdmin() {
		filter.IncludePrivate = false
	}

	return s.memberRepo.List(ctx, filter)
}

// UpdateMember applies a partial update (owner or admin)
func (s *memberService) UpdateMember(ctx context.Context, id string, req *services.UpdateMemberRequest, actor *models.PortalClaims) (*models.Member, error) {
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canManageMember(member, actor) {
		return nil, &domain.ForbiddenError{Message: "only the profile owner or an admin may update it"}
	}

	if req.Company != nil {
		member.Company = *req.Company
	}
	if req.FirstName != nil {
		member.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		member.LastName = *req.LastName
	}
	if req.Phone != nil {
		member.Phone = *req.Phone
	}
	if req.Specialties != nil {
		member.Specialties = req.Specialties
	}
	if req.City != nil {
		member.City = *req.City
	}
	if req.State != nil {
		member.State = *req.State
	}
	if req.Website != nil {
		member.Website = *req.Website
	}
	if req.Certifications != nil {
		member.Certifications = req.Certifications
	}
	if req.IsPublic != nil {
		member.IsPublic = *req.IsPublic
	}
	member.UpdatedAt = time.Now()

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return err
		}
		return s.syncRepo.MarkDirty(ctx, member.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("member updated", "id", member.ID)

	return member, nil
}

// DeleteMember soft-deletes a profile (owner or admin)
func (s *memberService) DeleteMember(ctx context.Context, id string, actor *models.PortalClaims) error {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !canManageMember(member, actor) {
		return &domain.ForbiddenError{Message: "only the profile owner or an admin may delete it"}
	}

	if err := s.memberRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("member deleted", "id", id)
	return nil
}

// ScanBusinessCard runs OCR over a card image and extracts profile field
// suggestions; nothing is persisted
func (s *memberService) ScanBusinessCard(ctx context.Context, image []byte) (*models.CardScan, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: image is required", domain.ErrValidation)
	}
	if len(image) > config.MaxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrValidation, config.MaxImageBytes)
	}

	scan, err := s.ocr.ScanCard(ctx, image)
	if err != nil {
		s.logger.Warn("card scan failed", "error", err)
		return nil, err
	}

	return scan, nil
}

// canManageMember reports whether the actor owns the profile or is an admin.
func canManageMember(member *models.Member, actor *models.PortalClaims) bool {
	if actor == nil {
		return false
	}
	return actor.IsAdmin() || actor.GetUserID() == member.UserID
}

// normalizePage clamps paging inputs to sane defaults.
func normalizePage(limit, offset *int) {
	if *limit <= 0 {
		*limit = config.DefaultPageSize
	}
	if *limit > config.MaxPageSize {
		*limit = config.MaxPageSize
	}
	if *offset < 0 {
		*offset = 0
	}
}

func (s *memberService) validateCreateRequest(req *services.CreateMemberRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Company, validation.Required, validation.Length(1, config.MaxCompanyNameLength)),
		validation.Field(&req.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Specialties, validation.Length(0, config.MaxSpecialties)),
		validation.Field(&req.Website, is.URL),
	)
}

func (s *memberService) validateUpdateRequest(req *services.UpdateMemberRequest) error {
	rules := []*validation.FieldRules{
		validation.Field(&req.Specialties, validation.Length(0, config.MaxSpecialties)),
	}
	if req.Company != nil {
		rules = append(rules, validation.Field(&req.Company, validation.Required, validation.Length(1, config.MaxCompanyNameLength)))
	}
	if req.Website != nil {
		rules = append(rules, validation.Field(&req.Website, is.URL))
	}
	return validation.ValidateStruct(req, rules...)
}
