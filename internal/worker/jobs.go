package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"namcportal/internal/domain/services"
)

// Jobs holds the cron-scheduled background jobs.
type Jobs struct {
	engagementService services.EngagementService
	syncService       services.HubSpotSyncService
	cron              *cron.Cron
	logger            *slog.Logger
}

// NewJobs creates the job runner.
func NewJobs(engagementService services.EngagementService, syncService services.HubSpotSyncService, logger *slog.Logger) *Jobs {
	return &Jobs{
		engagementService: engagementService,
		syncService:       syncService,
		cron:              cron.New(),
		logger:            logger,
	}
}

// Register wires the schedules. recomputeSpec and syncSpec are standard
// five-field cron expressions or @every durations.
func (j *Jobs) Register(recomputeSpec, syncSpec string) error {
	if _, err := j.cron.AddFunc(recomputeSpec, j.recomputeScores); err != nil {
		return fmt.Errorf("schedule score recompute %q: %w", recomputeSpec, err)
	}
	if _, err := j.cron.AddFunc(syncSpec, j.syncDirtyMembers); err != nil {
		return fmt.Errorf("schedule crm sync %q: %w", syncSpec, err)
	}
	return nil
}

// Start begins the scheduler in its own goroutine.
func (j *Jobs) Start() {
	j.cron.Start()
	j.logger.Info("cron jobs started")
}

// Stop waits for running jobs to finish.
func (j *Jobs) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("cron jobs stopped")
}

func (j *Jobs) recomputeScores() {
	ctx := context.Background()

	scored, err := j.engagementService.RecomputeAll(ctx)
	if err != nil {
		j.logger.Error("nightly score recompute failed", "error", err)
		return
	}
	j.logger.Info("nightly score recompute finished", "members_scored", scored)
}

func (j *Jobs) syncDirtyMembers() {
	ctx := context.Background()

	synced, err := j.syncService.SyncDirty(ctx)
	if err != nil {
		j.logger.Error("crm sync pass failed", "error", err)
		return
	}
	if synced > 0 {
		j.logger.Info("crm sync pass finished", "members_synced", synced)
	}
}
