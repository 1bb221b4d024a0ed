package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"namcportal/internal/config"
	"namcportal/internal/domain/models"
	"namcportal/internal/hubspot"
	"namcportal/internal/repository/postgres"
	"namcportal/internal/repository/rediscache"
	"namcportal/internal/scoring"
	"namcportal/internal/service"
	"namcportal/internal/worker"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// The worker runs the notification dispatcher and the cron jobs (nightly
// engagement recompute, periodic CRM sync). It shares no process state with
// the API server, both coordinate through Postgres.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logWriter := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "worker", cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logWriter = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("worker starting",
		"environment", cfg.Environment,
		"dispatch_interval", cfg.DispatchInterval,
		"table_prefix", cfg.TablePrefix,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	engagementCache := rediscache.NewEngagementCache(redisClient)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	memberRepo := postgres.NewMemberRepository(repoConfig)
	engagementRepo := postgres.NewEngagementRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	syncRepo := postgres.NewSyncStateRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	registry, err := scoring.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load scoring registry: %v", err)
	}

	crmClient := hubspot.NewClient(cfg.HubSpotBaseURL, cfg.HubSpotAccessToken, cfg.HubSpotRateLimit, logger)

	engagementService := service.NewEngagementService(engagementRepo, engagementCache, registry, logger)
	syncService := service.NewHubSpotSyncService(memberRepo, syncRepo, engagementRepo, crmClient, txManager, logger)

	// Notification dispatcher
	deliverers := map[string]worker.Deliverer{
		models.ChannelInApp:   worker.InAppDeliverer(),
		models.ChannelEmail:   worker.NewHTTPDeliverer(cfg.EmailRelayURL),
		models.ChannelWebhook: worker.NewWebhookDeliverer(),
	}
	dispatcher := worker.NewDispatcher(notificationRepo, deliverers, cfg.DispatchInterval, cfg.DispatchBatchSize, logger)

	// Cron jobs
	jobs := worker.NewJobs(engagementService, syncService, logger)
	if err := jobs.Register(cfg.RecomputeSchedule, cfg.SyncSchedule); err != nil {
		log.Fatalf("Failed to register cron jobs: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	if err := dispatcher.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Dispatcher stopped: %v", err)
	}
	logger.Info("worker stopped")
}
