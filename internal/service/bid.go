package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"namcportal/internal/ai"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
)

type bidService struct {
	bidRepo        repositories.BidRepository
	projectRepo    repositories.ProjectRepository
	engagementRepo repositories.EngagementRepository
	narrator       ai.NarrativeGenerator
	txManager      repositories.TransactionManager
	logger         *slog.Logger
}

// NewBidService creates a new bid service. narrator may be nil; suggestions
// then always come from the heuristic model alone.
func NewBidService(
	bidRepo repositories.BidRepository,
	projectRepo repositories.ProjectRepository,
	engagementRepo repositories.EngagementRepository,
	narrator ai.NarrativeGenerator,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.BidService {
	return &bidService{
		bidRepo:        bidRepo,
		projectRepo:    projectRepo,
		engagementRepo: engagementRepo,
		narrator:       narrator,
		txManager:      txManager,
		logger:         logger,
	}
}

// SubmitBid records an offer; rejects duplicates and projects not accepting
// bids
func (s *bidService) SubmitBid(ctx context.Context, req *services.SubmitBidRequest) (*models.Bid, error) {
	if err := s.validateSubmitRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project, err := s.projectRepo.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.AcceptingBids(time.Now()) {
		return nil, fmt.Errorf("%w: project is not accepting bids", domain.ErrValidation)
	}

	if existing, err := s.bidRepo.GetLive(ctx, req.ProjectID, req.MemberID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, &domain.ConflictError{
			Message:      "you already have a live bid on this project",
			ResourceType: "bid",
			ResourceID:   existing.ID,
		}
	}

	bid := &models.Bid{
		ProjectID:    req.ProjectID,
		MemberID:     req.MemberID,
		Amount:       req.Amount,
		TimelineDays: req.TimelineDays,
		Notes:        req.Notes,
		AIGenerated:  req.AIGenerated,
		Confidence:   req.Confidence,
		Status:       models.BidSubmitted,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.bidRepo.Create(ctx, bid); err != nil {
			return err
		}
		return s.engagementRepo.RecordEvent(ctx, &models.EngagementEvent{
			MemberID:   req.MemberID,
			Kind:       models.EventBidSubmitted,
			OccurredAt: time.Now(),
			Metadata:   map[string]any{"project_id": req.ProjectID, "bid_id": bid.ID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("bid submitted",
		"bid_id", bid.ID,
		"project_id", req.ProjectID,
		"member_id", req.MemberID,
		"amount", req.Amount,
	)

	return bid, nil
}

// GenerateSuggestion produces an advisory amount/timeline/narrative. The
// numbers come from the heuristic cost model; the LLM only writes the prose
// and its absence degrades the suggestion instead of failing it.
func (s *bidService) GenerateSuggestion(ctx context.Context, projectID, memberID string) (*models.BidSuggestion, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.AcceptingBids(time.Now()) {
		return nil, fmt.Errorf("%w: project is not accepting bids", domain.ErrValidation)
	}

	suggestion := SuggestBid(project)

	if s.narrator == nil {
		suggestion.Degraded = true
		suggestion.Narrative = fallbackNarrative(project, suggestion)
		return suggestion, nil
	}

	narrative, err := s.narrator.GenerateNarrative(ctx, project, suggestion)
	if err != nil {
		s.logger.Warn("narrative generation failed, serving heuristic suggestion",
			"project_id", projectID,
			"error", err,
		)
		suggestion.Degraded = true
		suggestion.Narrative = fallbackNarrative(project, suggestion)
		return suggestion, nil
	}

	suggestion.Narrative = narrative
	return suggestion, nil
}

// ListByProject returns all bids on a project. Only the project owner and
// admins see other members' bids.
func (s *bidService) ListByProject(ctx context.Context, projectID string, actor *models.PortalClaims) ([]models.Bid, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if actor == nil || (!actor.IsAdmin() && actor.GetUserID() != project.CreatedBy) {
		return nil, &domain.ForbiddenError{Message: "only the project owner or an admin may list bids"}
	}
	return s.bidRepo.ListByProject(ctx, projectID)
}

// ListByMember returns the member's bid history
func (s *bidService) ListByMember(ctx context.Context, memberID string, limit, offset int) ([]models.Bid, error) {
	normalizePage(&limit, &offset)
	return s.bidRepo.ListByMember(ctx, memberID, limit, offset)
}

// Withdraw pulls a submitted or shortlisted bid
func (s *bidService) Withdraw(ctx context.Context, bidID string, actor *models.PortalClaims) (*models.Bid, error) {
	bid, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if actor == nil || (!actor.IsAdmin() && actor.MemberID != bid.MemberID) {
		return nil, &domain.ForbiddenError{Message: "bid belongs to another member"}
	}

	switch bid.Status {
	case models.BidSubmitted, models.BidShortlisted:
	default:
		return nil, fmt.Errorf("%w: bid is %s and cannot be withdrawn", domain.ErrValidation, bid.Status)
	}

	bid.Status = models.BidWithdrawn
	bid.UpdatedAt = time.Now()

	if err := s.bidRepo.Update(ctx, bid); err != nil {
		return nil, err
	}

	s.logger.Info("bid withdrawn", "bid_id", bid.ID)

	return bid, nil
}

// Cost-per-day assumptions behind the heuristic model. Scope keywords shift
// the daily burn; the client's budget range anchors the total when present.
const (
	baseDailyCost   = 2400.0
	baseTimelineDay = 21
)

var scopeFactors = map[string]float64{
	"demolition": 1.15,
	"electrical": 1.25,
	"plumbing":   1.2,
	"hvac":       1.3,
	"concrete":   1.1,
	"roofing":    1.2,
	"seismic":    1.4,
	"retrofit":   1.3,
	"renovation": 1.1,
	"new build":  1.35,
}

// SuggestBid estimates amount, timeline, and confidence for a project. Pure
// function so the model is directly testable.
func SuggestBid(project *models.Project) *models.BidSuggestion {
	desc := strings.ToLower(project.Title + " " + project.Description)

	factor := 1.0
	matched := 0
	for keyword, f := range scopeFactors {
		if strings.Contains(desc, keyword) {
			factor *= f
			matched++
		}
	}

	// Longer descriptions imply a broader scope.
	timeline := baseTimelineDay + len(desc)/200*3
	if timeline > 120 {
		timeline = 120
	}

	amount := baseDailyCost * factor * float64(timeline)

	// Anchor to the client's budget range when it is published: bid at
	// the lower third, never below the minimum.
	confidence := 0.35 + 0.1*float64(matched)
	if project.BudgetMin != nil && project.BudgetMax != nil {
		anchored := *project.BudgetMin + (*project.BudgetMax-*project.BudgetMin)/3
		amount = (amount + anchored) / 2
		if amount < *project.BudgetMin {
			amount = *project.BudgetMin
		}
		if amount > *project.BudgetMax {
			amount = *project.BudgetMax
		}
		confidence += 0.2
	}
	if confidence > 0.9 {
		confidence = 0.9
	}

	return &models.BidSuggestion{
		Amount:       math.Round(amount*100) / 100,
		TimelineDays: timeline,
		Confidence:   math.Round(confidence*100) / 100,
	}
}

func fallbackNarrative(project *models.Project, suggestion *models.BidSuggestion) string {
	return fmt.Sprintf(
		"Estimated $%.2f over %d days based on the published scope of %q. Review against your own cost history before submitting.",
		suggestion.Amount, suggestion.TimelineDays, project.Title,
	)
}

func (s *bidService) validateSubmitRequest(req *services.SubmitBidRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.MemberID, validation.Required),
		validation.Field(&req.Amount, validation.Required, validation.Min(0.01)),
		validation.Field(&req.TimelineDays, validation.Required, validation.Min(1)),
	)
}
