package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
	"namcportal/internal/domain/services"
	"namcportal/internal/hubspot"
)

// syncConcurrency bounds parallel CRM calls per pass; the client's rate
// limiter is the real throttle, this just caps in-flight goroutines.
const syncConcurrency = 4

const syncBatchSize = 100

// ContactUpserter is the slice of the HubSpot client the sync needs.
type ContactUpserter interface {
	UpsertContact(ctx context.Context, contact hubspot.Contact) (string, error)
}

type hubspotSyncService struct {
	memberRepo     repositories.MemberRepository
	syncRepo       repositories.SyncStateRepository
	engagementRepo repositories.EngagementRepository
	crm            ContactUpserter
	txManager      repositories.TransactionManager
	logger         *slog.Logger
}

// NewHubSpotSyncService creates the bidirectional CRM sync service
func NewHubSpotSyncService(
	memberRepo repositories.MemberRepository,
	syncRepo repositories.SyncStateRepository,
	engagementRepo repositories.EngagementRepository,
	crm ContactUpserter,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.HubSpotSyncService {
	return &hubspotSyncService{
		memberRepo:     memberRepo,
		syncRepo:       syncRepo,
		engagementRepo: engagementRepo,
		crm:            crm,
		txManager:      txManager,
		logger:         logger,
	}
}

// SyncDirty pushes every dirty member to the CRM. Members are pushed
// concurrently but each failure only marks its own row.
func (s *hubspotSyncService) SyncDirty(ctx context.Context) (int, error) {
	states, err := s.syncRepo.ListDirty(ctx, syncBatchSize)
	if err != nil {
		return 0, err
	}
	if len(states) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)

	synced := 0
	results := make([]error, len(states))
	for i := range states {
		g.Go(func() error {
			results[i] = s.SyncMember(ctx, states[i].MemberID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	for i, err := range results {
		if err != nil {
			s.logger.Warn("member sync failed",
				"member_id", states[i].MemberID,
				"error", err,
			)
			continue
		}
		synced++
	}

	s.logger.Info("hubspot sync pass finished",
		"dirty", len(states),
		"synced", synced,
	)

	return synced, nil
}

// SyncMember pushes one member's profile and engagement tier to the CRM and
// clears the dirty flag.
func (s *hubspotSyncService) SyncMember(ctx context.Context, memberID string) error {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Soft-deleted member: drop the dirty flag silently.
			return s.clearDirty(ctx, memberID, nil)
		}
		return err
	}

	contact := hubspot.Contact{
		Email:     member.Email,
		FirstName: member.FirstName,
		LastName:  member.LastName,
		Company:   member.Company,
		Phone:     member.Phone,
	}

	// Tier and score travel with the contact when the member has one.
	if score, err := s.engagementRepo.GetScore(ctx, memberID); err == nil {
		contact.MemberTier = score.Tier
		contact.PortalScore = score.Score
	}

	contactID, err := s.crm.UpsertContact(ctx, contact)
	if err != nil {
		return s.recordFailure(ctx, memberID, err)
	}

	return s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if member.HubSpotContactID == nil || *member.HubSpotContactID != contactID {
			member.HubSpotContactID = &contactID
			member.UpdatedAt = time.Now()
			if err := s.memberRepo.Update(ctx, member); err != nil {
				return err
			}
		}
		return s.clearDirty(ctx, memberID, &contactID)
	})
}

// ApplyContactChanges applies inbound webhook property changes to the
// matching member profiles.
func (s *hubspotSyncService) ApplyContactChanges(ctx context.Context, changes []models.ContactChange) (int, error) {
	applied := 0

	for _, change := range changes {
		member, err := s.memberRepo.GetByHubSpotContactID(ctx, change.ContactID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("webhook change for unknown contact",
					"contact_id", change.ContactID,
					"property", change.PropertyName,
				)
				continue
			}
			return applied, err
		}

		if !applyContactProperty(member, change.PropertyName, change.Value) {
			continue
		}
		member.UpdatedAt = time.Now()

		// Inbound change only: do not mark dirty, that would echo the
		// same value straight back to the CRM.
		if err := s.memberRepo.Update(ctx, member); err != nil {
			return applied, err
		}
		applied++
	}

	s.logger.Info("webhook changes applied",
		"received", len(changes),
		"applied", applied,
	)

	return applied, nil
}

// applyContactProperty maps a CRM property onto the member profile. Unknown
// properties are ignored.
func applyContactProperty(member *models.Member, property, value string) bool {
	switch property {
	case "firstname":
		member.FirstName = value
	case "lastname":
		member.LastName = value
	case "company":
		member.Company = value
	case "phone":
		member.Phone = value
	default:
		return false
	}
	return true
}

func (s *hubspotSyncService) clearDirty(ctx context.Context, memberID string, contactID *string) error {
	state, err := s.syncRepo.Get(ctx, memberID)
	if err != nil {
		return err
	}
	now := time.Now()
	state.Dirty = false
	state.LastSyncedAt = &now
	state.LastError = nil
	if contactID != nil {
		state.ContactID = contactID
	}
	state.UpdatedAt = now
	return s.syncRepo.Update(ctx, state)
}

func (s *hubspotSyncService) recordFailure(ctx context.Context, memberID string, cause error) error {
	state, err := s.syncRepo.Get(ctx, memberID)
	if err != nil {
		return cause
	}
	msg := cause.Error()
	state.LastError = &msg
	state.UpdatedAt = time.Now()
	if err := s.syncRepo.Update(ctx, state); err != nil {
		s.logger.Warn("failed to record sync error", "member_id", memberID, "error", err)
	}
	return cause
}
