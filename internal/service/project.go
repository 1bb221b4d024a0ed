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
	"namcportal/internal/hubspot"
)

// DealCreator is the slice of the HubSpot client the award flow needs.
type DealCreator interface {
	CreateDeal(ctx context.Context, deal hubspot.Deal) (string, error)
}

type projectService struct {
	projectRepo repositories.ProjectRepository
	bidRepo     repositories.BidRepository
	memberRepo  repositories.MemberRepository
	syncRepo    repositories.SyncStateRepository
	notifier    services.NotificationService
	deals       DealCreator
	txManager   repositories.TransactionManager
	logger      *slog.Logger
}

// NewProjectService creates a new project bidding service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	bidRepo repositories.BidRepository,
	memberRepo repositories.MemberRepository,
	syncRepo repositories.SyncStateRepository,
	notifier services.NotificationService,
	deals DealCreator,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo: projectRepo,
		bidRepo:     bidRepo,
		memberRepo:  memberRepo,
		syncRepo:    syncRepo,
		notifier:    notifier,
		deals:       deals,
		txManager:   txManager,
		logger:      logger,
	}
}

// CreateProject posts a new opportunity in draft state
func (s *projectService) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project := &models.Project{
		Title:       req.Title,
		Description: req.Description,
		Client:      req.Client,
		Location:    req.Location,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Status:      models.ProjectDraft,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if req.BidDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, req.BidDeadline)
		if err != nil {
			return nil, fmt.Errorf("%w: bid_deadline must be RFC 3339", domain.ErrValidation)
		}
		project.BidDeadline = &deadline
	}

	if project.BudgetMin != nil && project.BudgetMax != nil && *project.BudgetMin > *project.BudgetMax {
		return nil, fmt.Errorf("%w: budget_min exceeds budget_max", domain.ErrValidation)
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project created", "id", project.ID, "title", project.Title)

	return project, nil
}

// GetProject retrieves one opportunity
func (s *projectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.projectRepo.GetByID(ctx, id)
}

// ListProjects searches posted opportunities
func (s *projectService) ListProjects(ctx context.Context, filter *models.ProjectFilter) ([]models.Project, error) {
	if filter == nil {
		filter = &models.ProjectFilter{}
	}
	normalizePage(&filter.Limit, &filter.Offset)
	return s.projectRepo.List(ctx, filter)
}

// UpdateProject applies a partial update while the project is still a draft
// or published
func (s *projectService) UpdateProject(ctx context.Context, id string, req *services.UpdateProjectRequest, actor *models.PortalClaims) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectAdmin(project, actor); err != nil {
		return nil, err
	}

	if project.Status == models.ProjectAwarded || project.Status == models.ProjectClosed {
		return nil, fmt.Errorf("%w: project is %s and can no longer be edited", domain.ErrValidation, project.Status)
	}

	if req.Title != nil {
		project.Title = *req.Title
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Client != nil {
		project.Client = *req.Client
	}
	if req.Location != nil {
		project.Location = *req.Location
	}
	if req.BudgetMin != nil {
		project.BudgetMin = req.BudgetMin
	}
	if req.BudgetMax != nil {
		project.BudgetMax = req.BudgetMax
	}
	if req.BidDeadline.Present {
		if req.BidDeadline.IsNull() || *req.BidDeadline.Value == "" {
			project.BidDeadline = nil
		} else {
			deadline, err := time.Parse(time.RFC3339, *req.BidDeadline.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: bid_deadline must be RFC 3339", domain.ErrValidation)
			}
			project.BidDeadline = &deadline
		}
	}
	if project.BudgetMin != nil && project.BudgetMax != nil && *project.BudgetMin > *project.BudgetMax {
		return nil, fmt.Errorf("%w: budget_min exceeds budget_max", domain.ErrValidation)
	}
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project updated", "id", project.ID)

	return project, nil
}

// Publish opens the project for bids
func (s *projectService) Publish(ctx context.Context, id string, actor *models.PortalClaims) (*models.Project, error) {
	return s.transition(ctx, id, actor, models.ProjectDraft, models.ProjectPublished)
}

// Close stops bidding without picking a winner
func (s *projectService) Close(ctx context.Context, id string, actor *models.PortalClaims) (*models.Project, error) {
	return s.transition(ctx, id, actor, models.ProjectPublished, models.ProjectClosed)
}

func (s *projectService) transition(ctx context.Context, id string, actor *models.PortalClaims, from, to string) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectAdmin(project, actor); err != nil {
		return nil, err
	}
	if project.Status != from {
		return nil, fmt.Errorf("%w: project is %s, expected %s", domain.ErrValidation, project.Status, from)
	}

	project.Status = to
	project.UpdatedAt = time.Now()

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}

	s.logger.Info("project transitioned", "id", project.ID, "from", from, "to", to)

	return project, nil
}

// Award marks the winning bid, marks the rest lost, closes the project, and
// notifies every bidder. The CRM deal is created outside the transaction;
// a HubSpot outage must not roll back the award.
func (s *projectService) Award(ctx context.Context, id, bidID string, actor *models.PortalClaims) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireProjectAdmin(project, actor); err != nil {
		return nil, err
	}
	if project.Status != models.ProjectPublished && project.Status != models.ProjectClosed {
		return nil, fmt.Errorf("%w: project is %s and cannot be awarded", domain.ErrValidation, project.Status)
	}

	winner, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if winner.ProjectID != project.ID {
		return nil, fmt.Errorf("%w: bid does not belong to this project", domain.ErrValidation)
	}
	if winner.Status == models.BidWithdrawn {
		return nil, fmt.Errorf("%w: bid was withdrawn", domain.ErrValidation)
	}

	bids, err := s.bidRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		for i := range bids {
			bid := &bids[i]
			if bid.Status == models.BidWithdrawn {
				continue
			}
			if bid.ID == winner.ID {
				bid.Status = models.BidWon
			} else {
				bid.Status = models.BidLost
			}
			bid.UpdatedAt = now
			if err := s.bidRepo.Update(ctx, bid); err != nil {
				return err
			}
		}

		project.Status = models.ProjectAwarded
		project.UpdatedAt = now
		return s.projectRepo.Update(ctx, project)
	})
	if err != nil {
		return nil, err
	}

	s.notifyBidders(ctx, project, bids, winner.ID)
	s.createWinnerDeal(ctx, project, winner)

	s.logger.Info("project awarded",
		"project_id", project.ID,
		"winning_bid", winner.ID,
		"bids", len(bids),
	)

	return project, nil
}

// DeleteProject soft-deletes a draft
func (s *projectService) DeleteProject(ctx context.Context, id string, actor *models.PortalClaims) error {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireProjectAdmin(project, actor); err != nil {
		return err
	}
	if project.Status != models.ProjectDraft {
		return fmt.Errorf("%w: only draft projects can be deleted", domain.ErrValidation)
	}
	if err := s.projectRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("project deleted", "id", id)
	return nil
}

// notifyBidders enqueues win/loss notifications. Failures are logged, not
// returned: the award already committed.
func (s *projectService) notifyBidders(ctx context.Context, project *models.Project, bids []models.Bid, winnerID string) {
	for i := range bids {
		bid := &bids[i]
		if bid.Status == models.BidWithdrawn {
			continue
		}

		subject := fmt.Sprintf("Bid update: %s", project.Title)
		body := fmt.Sprintf("Your bid on %q was not selected.", project.Title)
		if bid.ID == winnerID {
			body = fmt.Sprintf("Congratulations! Your bid on %q was selected.", project.Title)
		}

		_, err := s.notifier.Enqueue(ctx, &services.EnqueueNotificationRequest{
			MemberID: bid.MemberID,
			Channel:  models.ChannelInApp,
			Subject:  subject,
			Body:     body,
			Payload:  map[string]any{"project_id": project.ID, "bid_id": bid.ID},
		})
		if err != nil {
			s.logger.Warn("failed to enqueue award notification",
				"bid_id", bid.ID,
				"error", err,
			)
		}
	}
}

// createWinnerDeal mirrors the winning bid into the CRM when the winner's
// contact is already synced.
func (s *projectService) createWinnerDeal(ctx context.Context, project *models.Project, winner *models.Bid) {
	if s.deals == nil {
		return
	}

	member, err := s.memberRepo.GetByID(ctx, winner.MemberID)
	if err != nil {
		s.logger.Warn("award deal skipped, member lookup failed", "member_id", winner.MemberID, "error", err)
		return
	}

	contactID := ""
	if member.HubSpotContactID != nil {
		contactID = *member.HubSpotContactID
	}

	dealID, err := s.deals.CreateDeal(ctx, hubspot.Deal{
		Name:      fmt.Sprintf("%s - %s", project.Title, member.Company),
		Amount:    winner.Amount,
		Stage:     "closedwon",
		ContactID: contactID,
		CloseDate: time.Now(),
	})
	if err != nil {
		s.logger.Warn("award deal creation failed", "project_id", project.ID, "error", err)
		return
	}

	s.logger.Info("award deal created", "project_id", project.ID, "deal_id", dealID)
}

func (s *projectService) requireProjectAdmin(project *models.Project, actor *models.PortalClaims) error {
	if actor == nil || (!actor.IsAdmin() && actor.GetUserID() != project.CreatedBy) {
		return &domain.ForbiddenError{Message: "only the project owner or an admin may manage it"}
	}
	return nil
}

func (s *projectService) validateCreateRequest(req *services.CreateProjectRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Required),
		validation.Field(&req.CreatedBy, validation.Required),
	)
}
