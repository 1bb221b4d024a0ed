package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"namcportal/internal/ai"
	"namcportal/internal/auth"
	"namcportal/internal/config"
	"namcportal/internal/handler"
	"namcportal/internal/hubspot"
	"namcportal/internal/middleware"
	"namcportal/internal/repository/postgres"
	"namcportal/internal/repository/rediscache"
	"namcportal/internal/scoring"
	"namcportal/internal/service"
	"namcportal/internal/vision"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logWriter := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, "server", cfg.LogMaxFiles)
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

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for portal authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Redis client for the engagement dashboard cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()
	engagementCache := rediscache.NewEngagementCache(redisClient)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	memberRepo := postgres.NewMemberRepository(repoConfig)
	toolRepo := postgres.NewToolRepository(repoConfig)
	reservationRepo := postgres.NewReservationRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	bidRepo := postgres.NewBidRepository(repoConfig)
	budgetRepo := postgres.NewBudgetRepository(repoConfig)
	engagementRepo := postgres.NewEngagementRepository(repoConfig)
	campaignRepo := postgres.NewCampaignRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	syncRepo := postgres.NewSyncStateRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Scoring weight registry (embedded config)
	registry, err := scoring.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load scoring registry: %v", err)
	}

	// External clients
	crmClient := hubspot.NewClient(cfg.HubSpotBaseURL, cfg.HubSpotAccessToken, cfg.HubSpotRateLimit, logger)
	ocrClient := vision.NewClient(cfg.VisionEndpoint, cfg.VisionAPIKey, logger)

	// Bid narrative generation degrades to a template without a key
	var narrator ai.NarrativeGenerator
	if cfg.AnthropicAPIKey != "" {
		narrator, err = ai.NewClaudeGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
		if err != nil {
			log.Fatalf("Failed to create bid narrative generator: %v", err)
		}
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, bid narratives will use the template fallback")
	}

	// Create services
	notificationService := service.NewNotificationService(notificationRepo, txManager, logger)
	memberService := service.NewMemberService(memberRepo, syncRepo, txManager, ocrClient, logger)
	toolService := service.NewToolService(toolRepo, reservationRepo, engagementRepo, txManager, logger)
	projectService := service.NewProjectService(projectRepo, bidRepo, memberRepo, syncRepo, notificationService, crmClient, txManager, logger)
	bidService := service.NewBidService(bidRepo, projectRepo, engagementRepo, narrator, txManager, logger)
	budgetService := service.NewBudgetService(budgetRepo, logger)
	engagementService := service.NewEngagementService(engagementRepo, engagementCache, registry, logger)
	campaignService := service.NewCampaignService(campaignRepo, engagementRepo, notificationService, logger)
	syncService := service.NewHubSpotSyncService(memberRepo, syncRepo, engagementRepo, crmClient, txManager, logger)

	logger.Info("services initialized")

	// Create handlers
	memberHandler := handler.NewMemberHandler(memberService, logger)
	toolHandler := handler.NewToolHandler(toolService, logger)
	projectHandler := handler.NewProjectHandler(projectService, bidService, logger)
	budgetHandler := handler.NewBudgetHandler(budgetService, logger)
	engagementHandler := handler.NewEngagementHandler(engagementService, campaignService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	webhookHandler := handler.NewWebhookHandler(syncService, cfg.HubSpotWebhookSecret, logger)
	healthHandler := handler.NewHealthHandler(pool)

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// adminOnly gates routes that only portal admins may call. Runs after
	// AuthMiddleware, which attaches the claims.
	adminOnly := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Member directory routes
	mux.HandleFunc("POST /api/members", memberHandler.CreateMember)
	mux.HandleFunc("GET /api/members", memberHandler.ListMembers)
	mux.HandleFunc("POST /api/members/scan-card", memberHandler.ScanCard) // Must come before {id} route
	mux.HandleFunc("GET /api/members/{id}", memberHandler.GetMember)
	mux.HandleFunc("PATCH /api/members/{id}", memberHandler.UpdateMember)
	mux.HandleFunc("DELETE /api/members/{id}", memberHandler.DeleteMember)
	mux.HandleFunc("GET /api/members/{id}/score", engagementHandler.GetMemberScore)

	// Tool lending routes
	mux.Handle("POST /api/tools", adminOnly(toolHandler.CreateTool))
	mux.HandleFunc("GET /api/tools", toolHandler.ListTools)
	mux.HandleFunc("GET /api/tools/{id}", toolHandler.GetTool)
	mux.Handle("PATCH /api/tools/{id}", adminOnly(toolHandler.UpdateTool))
	mux.Handle("DELETE /api/tools/{id}", adminOnly(toolHandler.DeleteTool))
	mux.HandleFunc("POST /api/tools/{id}/reservations", toolHandler.Reserve)
	mux.HandleFunc("GET /api/reservations", toolHandler.ListMyReservations)
	mux.HandleFunc("POST /api/reservations/{id}/checkout", toolHandler.Checkout)
	mux.HandleFunc("POST /api/reservations/{id}/return", toolHandler.Return)
	mux.HandleFunc("POST /api/reservations/{id}/cancel", toolHandler.Cancel)

	// Project bidding routes
	mux.Handle("POST /api/projects", adminOnly(projectHandler.CreateProject))
	mux.HandleFunc("GET /api/projects", projectHandler.ListProjects)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.GetProject)
	mux.HandleFunc("PATCH /api/projects/{id}", projectHandler.UpdateProject)
	mux.HandleFunc("DELETE /api/projects/{id}", projectHandler.DeleteProject)
	mux.HandleFunc("POST /api/projects/{id}/publish", projectHandler.Publish)
	mux.HandleFunc("POST /api/projects/{id}/close", projectHandler.Close)
	mux.HandleFunc("POST /api/projects/{id}/award", projectHandler.Award)
	mux.HandleFunc("POST /api/projects/{id}/bids", projectHandler.SubmitBid)
	mux.HandleFunc("GET /api/projects/{id}/bids", projectHandler.ListProjectBids)
	mux.HandleFunc("POST /api/projects/{id}/bids/generate", projectHandler.SuggestBid)
	mux.HandleFunc("GET /api/bids", projectHandler.ListMyBids)
	mux.HandleFunc("POST /api/bids/{id}/withdraw", projectHandler.WithdrawBid)

	// Budget dashboard routes
	mux.HandleFunc("POST /api/budgets", budgetHandler.CreateBudget)
	mux.HandleFunc("GET /api/budgets", budgetHandler.ListBudgets)
	mux.HandleFunc("GET /api/budgets/{id}", budgetHandler.GetBudget)
	mux.HandleFunc("PATCH /api/budgets/{id}", budgetHandler.UpdateBudget)
	mux.HandleFunc("DELETE /api/budgets/{id}", budgetHandler.DeleteBudget)
	mux.HandleFunc("POST /api/budgets/{id}/expenses", budgetHandler.AddExpense)
	mux.HandleFunc("GET /api/budgets/{id}/expenses", budgetHandler.ListExpenses)
	mux.HandleFunc("GET /api/budgets/{id}/summary", budgetHandler.GetSummary)

	// Engagement routes
	mux.Handle("POST /api/engagement/events", adminOnly(engagementHandler.RecordEvent))
	mux.HandleFunc("GET /api/engagement/score", engagementHandler.GetMyScore)
	mux.Handle("GET /api/engagement/distribution", adminOnly(engagementHandler.GetDistribution))

	// Learning campaign routes
	mux.Handle("POST /api/learning/campaigns", adminOnly(engagementHandler.CreateCampaign))
	mux.HandleFunc("GET /api/learning/campaigns", engagementHandler.ListCampaigns)
	mux.HandleFunc("GET /api/learning/campaigns/{id}", engagementHandler.GetCampaign)
	mux.Handle("PATCH /api/learning/campaigns/{id}", adminOnly(engagementHandler.UpdateCampaign))
	mux.Handle("POST /api/learning/campaigns/{id}/activate", adminOnly(engagementHandler.ActivateCampaign))
	mux.Handle("POST /api/learning/campaigns/{id}/complete", adminOnly(engagementHandler.CompleteCampaign))
	mux.Handle("POST /api/learning/campaigns/{id}/cancel", adminOnly(engagementHandler.CancelCampaign))

	// Notification inbox routes
	mux.Handle("POST /api/notifications", adminOnly(notificationHandler.Enqueue))
	mux.HandleFunc("GET /api/notifications", notificationHandler.ListMine)
	mux.HandleFunc("GET /api/notifications/unread-count", notificationHandler.CountUnread)
	mux.HandleFunc("POST /api/notifications/{id}/read", notificationHandler.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", notificationHandler.MarkAllRead)

	// Inbound CRM webhook (signature-verified, bypasses JWT auth)
	mux.HandleFunc("POST /api/webhooks/hubspot", webhookHandler.HandleHubSpot)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.AuthMiddleware(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-HubSpot-Signature"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Shut down cleanly on SIGINT/SIGTERM
	stopCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-stopCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}
