package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
)

var validTiers = map[string]bool{
	models.TierDormant:  true,
	models.TierCasual:   true,
	models.TierActive:   true,
	models.TierChampion: true,
}

var validCampaignKinds = map[string]bool{
	"course":   true,
	"webinar":  true,
	"outreach": true,
}

type campaignService struct {
	campaignRepo   repositories.CampaignRepository
	engagementRepo repositories.EngagementRepository
	notifier       services.NotificationService
	logger         *slog.Logger
}

// NewCampaignService creates a new learning campaign service
func NewCampaignService(
	campaignRepo repositories.CampaignRepository,
	engagementRepo repositories.EngagementRepository,
	notifier services.NotificationService,
	logger *slog.Logger,
) services.CampaignService {
	return &campaignService{
		campaignRepo:   campaignRepo,
		engagementRepo: engagementRepo,
		notifier:       notifier,
		logger:         logger,
	}
}

// CreateCampaign creates a draft campaign targeting engagement tiers
func (s *campaignService) CreateCampaign(ctx context.Context, req *services.CreateCampaignRequest) (*models.Campaign, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	campaign := &models.Campaign{
		Name:        req.Name,
		Description: req.Description,
		Kind:        req.Kind,
		TargetTiers: req.TargetTiers,
		Status:      models.CampaignDraft,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	var err error
	if campaign.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if campaign.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
	}
	if campaign.StartDate != nil && campaign.EndDate != nil && campaign.EndDate.Before(*campaign.StartDate) {
		return nil, fmt.Errorf("%w: end_date is before start_date", domain.ErrValidation)
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign created",
		"id", campaign.ID,
		"name", campaign.Name,
		"tiers", campaign.TargetTiers,
	)

	return campaign, nil
}

// GetCampaign retrieves one campaign
func (s *campaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

// ListCampaigns lists campaigns, optionally by status
func (s *campaignService) ListCampaigns(ctx context.Context, status string, limit, offset int) ([]models.Campaign, error) {
	normalizePage(&limit, &offset)
	return s.campaignRepo.List(ctx, status, limit, offset)
}

// UpdateCampaign applies a partial update to a draft
func (s *campaignService) UpdateCampaign(ctx context.Context, id string, req *services.UpdateCampaignRequest) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignDraft {
		return nil, fmt.Errorf("%w: only draft campaigns can be edited", domain.ErrValidation)
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.Kind != nil {
		if !validCampaignKinds[*req.Kind] {
			return nil, fmt.Errorf("%w: unknown campaign kind %q", domain.ErrValidation, *req.Kind)
		}
		campaign.Kind = *req.Kind
	}
	if req.StartDate != nil {
		if campaign.StartDate, err = parseOptionalDate(*req.StartDate); err != nil {
			return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation)
		}
	}
	if req.EndDate != nil {
		if campaign.EndDate, err = parseOptionalDate(*req.EndDate); err != nil {
			return nil, fmt.Errorf("%w: end_date must be YYYY-MM-DD", domain.ErrValidation)
		}
	}
	if req.TargetTiers != nil {
		if err := validateTiers(req.TargetTiers); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		campaign.TargetTiers = req.TargetTiers
	}
	campaign.UpdatedAt = time.Now()

	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign updated", "id", campaign.ID)

	return campaign, nil
}

// Activate moves a draft to active and enqueues an in-app notification
// for every member in the target tiers. Returns the number queued.
func (s *campaignService) Activate(ctx context.Context, id string) (*models.Campaign, int, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if campaign.Status != models.CampaignDraft {
		return nil, 0, fmt.Errorf("%w: campaign is %s, expected draft", domain.ErrValidation, campaign.Status)
	}

	memberIDs, err := s.engagementRepo.MemberIDsByTiers(ctx, campaign.TargetTiers)
	if err != nil {
		return nil, 0, err
	}

	campaign.Status = models.CampaignActive
	campaign.UpdatedAt = time.Now()
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, 0, err
	}

	queued := 0
	if len(memberIDs) > 0 {
		queued, err = s.notifier.EnqueueBatch(ctx, memberIDs, &services.EnqueueNotificationRequest{
			Channel: models.ChannelInApp,
			Subject: campaign.Name,
			Body:    campaign.Description,
			Payload: map[string]any{"campaign_id": campaign.ID, "kind": campaign.Kind},
		})
		if err != nil {
			// The campaign is already active; report the fan-out failure
			// without rolling the status back.
			s.logger.Error("campaign fan-out failed", "campaign_id", campaign.ID, "error", err)
			return campaign, queued, err
		}
	}

	s.logger.Info("campaign activated",
		"id", campaign.ID,
		"targets", len(memberIDs),
		"queued", queued,
	)

	return campaign, queued, nil
}

// Complete marks an active campaign finished
func (s *campaignService) Complete(ctx context.Context, id string) (*models.Campaign, error) {
	return s.transition(ctx, id, models.CampaignActive, models.CampaignCompleted)
}

// Cancel voids a draft or active campaign
func (s *campaignService) Cancel(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch campaign.Status {
	case models.CampaignDraft, models.CampaignActive:
	default:
		return nil, fmt.Errorf("%w: campaign is %s and cannot be cancelled", domain.ErrValidation, campaign.Status)
	}

	campaign.Status = models.CampaignCancelled
	campaign.UpdatedAt = time.Now()
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign cancelled", "id", campaign.ID)
	return campaign, nil
}

func (s *campaignService) transition(ctx context.Context, id, from, to string) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != from {
		return nil, fmt.Errorf("%w: campaign is %s, expected %s", domain.ErrValidation, campaign.Status, from)
	}

	campaign.Status = to
	campaign.UpdatedAt = time.Now()
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, err
	}

	s.logger.Info("campaign transitioned", "id", campaign.ID, "from", from, "to", to)
	return campaign, nil
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func validateTiers(tiers []string) error {
	if len(tiers) == 0 {
		return fmt.Errorf("at least one target tier is required")
	}
	seen := make(map[string]bool, len(tiers))
	for _, tier := range tiers {
		if !validTiers[tier] {
			return fmt.Errorf("unknown tier %q", tier)
		}
		if seen[tier] {
			return fmt.Errorf("duplicate tier %q", tier)
		}
		seen[tier] = true
	}
	return nil
}

func (s *campaignService) validateCreateRequest(req *services.CreateCampaignRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Kind, validation.Required),
		validation.Field(&req.CreatedBy, validation.Required),
	); err != nil {
		return err
	}
	if !validCampaignKinds[req.Kind] {
		return fmt.Errorf("unknown campaign kind %q", req.Kind)
	}
	return validateTiers(req.TargetTiers)
}
