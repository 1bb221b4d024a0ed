package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"namcportal/internal/config"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
	"namcportal/internal/repository/rediscache"
	"namcportal/internal/scoring"
)

type engagementService struct {
	engagementRepo repositories.EngagementRepository
	cache          *rediscache.EngagementCache
	registry       *scoring.Registry
	logger         *slog.Logger
}

// NewEngagementService creates a new engagement scoring service. cache may
// be nil; every read then falls through to Postgres.
func NewEngagementService(
	engagementRepo repositories.EngagementRepository,
	cache *rediscache.EngagementCache,
	registry *scoring.Registry,
	logger *slog.Logger,
) services.EngagementService {
	return &engagementService{
		engagementRepo: engagementRepo,
		cache:          cache,
		registry:       registry,
		logger:         logger,
	}
}

// RecordEvent stores one activity event and invalidates the member's cached
// score so the next read recomputes.
func (s *engagementService) RecordEvent(ctx context.Context, req *services.RecordEventRequest) (*models.EngagementEvent, error) {
	if err := s.validateEventRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	occurredAt := time.Now()
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("%w: occurred_at must be RFC 3339", domain.ErrValidation)
		}
		if parsed.After(time.Now()) {
			return nil, fmt.Errorf("%w: occurred_at cannot be in the future", domain.ErrValidation)
		}
		occurredAt = parsed
	}

	event := &models.EngagementEvent{
		MemberID:   req.MemberID,
		Kind:       req.Kind,
		OccurredAt: occurredAt,
		Metadata:   req.Metadata,
	}

	if err := s.engagementRepo.RecordEvent(ctx, event); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateScore(ctx, req.MemberID); err != nil {
			s.logger.Warn("score cache invalidation failed", "member_id", req.MemberID, "error", err)
		}
	}

	s.logger.Debug("engagement event recorded",
		"member_id", req.MemberID,
		"kind", req.Kind,
	)

	return event, nil
}

// GetScore serves the member's latest snapshot, from cache when warm.
func (s *engagementService) GetScore(ctx context.Context, memberID string) (*models.EngagementScore, error) {
	if s.cache != nil {
		cached, err := s.cache.GetScore(ctx, memberID)
		if err != nil {
			s.logger.Warn("score cache read failed", "member_id", memberID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	score, err := s.engagementRepo.GetScore(ctx, memberID)
	if errors.Is(err, domain.ErrNotFound) {
		// Never scored: compute on demand.
		return s.ComputeScore(ctx, memberID)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetScore(ctx, score); err != nil {
			s.logger.Warn("score cache write failed", "member_id", memberID, "error", err)
		}
	}

	return score, nil
}

// ComputeScore aggregates the rolling window, persists the snapshot and
// refreshes the cache.
func (s *engagementService) ComputeScore(ctx context.Context, memberID string) (*models.EngagementScore, error) {
	since := time.Now().AddDate(0, 0, -config.ScoreWindowDays)

	counts, err := s.engagementRepo.CountByKind(ctx, memberID, since)
	if err != nil {
		return nil, err
	}

	eventCount := 0
	for _, kc := range counts {
		eventCount += kc.Count
	}

	value := s.registry.Score(counts)
	score := &models.EngagementScore{
		MemberID:   memberID,
		Score:      value,
		Tier:       s.registry.Tier(value),
		EventCount: eventCount,
		WindowDays: config.ScoreWindowDays,
		ComputedAt: time.Now(),
	}

	if err := s.engagementRepo.UpsertScore(ctx, score); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetScore(ctx, score); err != nil {
			s.logger.Warn("score cache write failed", "member_id", memberID, "error", err)
		}
	}

	return score, nil
}

// RecomputeAll recomputes every member active in the window; run nightly by
// the worker. Returns the number of members scored.
func (s *engagementService) RecomputeAll(ctx context.Context) (int, error) {
	since := time.Now().AddDate(0, 0, -config.ScoreWindowDays)

	memberIDs, err := s.engagementRepo.ActiveMemberIDs(ctx, since)
	if err != nil {
		return 0, err
	}

	scored := 0
	for _, memberID := range memberIDs {
		if _, err := s.ComputeScore(ctx, memberID); err != nil {
			s.logger.Error("score recompute failed",
				"member_id", memberID,
				"error", err,
			)
			continue
		}
		scored++
	}

	s.logger.Info("engagement recompute finished",
		"members", len(memberIDs),
		"scored", scored,
	)

	return scored, nil
}

// Distribution reports member counts per tier.
func (s *engagementService) Distribution(ctx context.Context) ([]models.TierDistribution, error) {
	if s.cache != nil {
		cached, err := s.cache.GetDistribution(ctx)
		if err != nil {
			s.logger.Warn("distribution cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	dist, err := s.engagementRepo.TierDistribution(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDistribution(ctx, dist); err != nil {
			s.logger.Warn("distribution cache write failed", "error", err)
		}
	}

	return dist, nil
}

func (s *engagementService) validateEventRequest(req *services.RecordEventRequest) error {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.MemberID, validation.Required),
		validation.Field(&req.Kind, validation.Required),
	); err != nil {
		return err
	}
	if _, ok := s.registry.Weight(req.Kind); !ok {
		return fmt.Errorf("unknown event kind %q", req.Kind)
	}
	return nil
}
