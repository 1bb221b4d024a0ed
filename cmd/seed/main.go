package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"namcportal/internal/auth"
	"namcportal/internal/config"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/services"
	"namcportal/internal/repository/postgres"
	"namcportal/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

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
	engagementRepo := postgres.NewEngagementRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	syncRepo := postgres.NewSyncStateRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services. The seed tool never scans cards, awards deals or
	// generates narratives, so those clients stay nil.
	notificationService := service.NewNotificationService(notificationRepo, txManager, logger)
	memberService := service.NewMemberService(memberRepo, syncRepo, txManager, nil, logger)
	toolService := service.NewToolService(toolRepo, reservationRepo, engagementRepo, txManager, logger)
	projectService := service.NewProjectService(projectRepo, bidRepo, memberRepo, syncRepo, notificationService, nil, txManager, logger)

	// Seed auth users through the identity provider admin API when
	// configured, otherwise invent user IDs (local development against a
	// bare database).
	var adminClient *auth.AdminClient
	if cfg.AuthAdminURL != "" && cfg.AuthServiceKey != "" {
		adminClient = auth.NewAdminClient(cfg.AuthAdminURL, cfg.AuthServiceKey)
		log.Println("🔐 Creating auth users via admin API...")
	} else {
		log.Println("⚠️  AUTH_ADMIN_URL not set, seeding member rows with generated user IDs")
	}

	userID := func(email, role string) string {
		if adminClient == nil {
			return uuid.NewString()
		}
		id, err := adminClient.CreateUser(email, "namc-seed-password", role)
		if err != nil {
			log.Printf("❌ Failed to create auth user %s: %v", email, err)
			return uuid.NewString()
		}
		return id
	}

	adminUserID := userID("admin@namc.test", models.RoleAdmin)

	// Seed member profiles
	log.Println("👥 Seeding member profiles...")
	memberIDs := make([]string, 0, len(seedMembers))
	for _, req := range seedMembers {
		req.UserID = userID(req.Email, models.RoleMember)
		member, err := memberService.CreateMember(ctx, &req)
		if err != nil {
			log.Printf("❌ Failed to create member '%s': %v", req.Email, err)
			continue
		}
		memberIDs = append(memberIDs, member.ID)
		log.Printf("✅ Created member: %s (%s)", member.FullName(), member.Company)
	}

	// Seed the tool library
	log.Println("🔧 Seeding tool library...")
	for _, req := range seedTools {
		tool, err := toolService.CreateTool(ctx, &req)
		if err != nil {
			log.Printf("❌ Failed to create tool '%s': %v", req.Name, err)
			continue
		}
		log.Printf("✅ Created tool: %s (%d available)", tool.Name, tool.Quantity)
	}

	// Seed a published project so bidding works out of the box
	log.Println("🏗️  Seeding sample project...")
	adminClaims := &models.PortalClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: adminUserID},
		PortalRole:       models.RoleAdmin,
	}
	for _, req := range seedProjects {
		req.CreatedBy = adminUserID
		project, err := projectService.CreateProject(ctx, &req)
		if err != nil {
			log.Printf("❌ Failed to create project '%s': %v", req.Title, err)
			continue
		}
		if _, err := projectService.Publish(ctx, project.ID, adminClaims); err != nil {
			log.Printf("❌ Failed to publish project '%s': %v", project.Title, err)
			continue
		}
		log.Printf("✅ Created project: %s", project.Title)
	}

	log.Printf("🎉 Seeding complete! (%d members)", len(memberIDs))
}

func floatPtr(f float64) *float64 { return &f }

var seedMembers = []services.CreateMemberRequest{
	{
		Company:     "Oakland Bay Electric",
		FirstName:   "Denise",
		LastName:    "Carter",
		Email:       "denise@oaklandbayelectric.test",
		Phone:       "(510) 555-0142",
		Specialties: []string{"electrical", "solar"},
		City:        "Oakland",
		State:       "CA",
	},
	{
		Company:     "Ramirez Concrete & Masonry",
		FirstName:   "Luis",
		LastName:    "Ramirez",
		Email:       "luis@ramirezconcrete.test",
		Phone:       "(510) 555-0178",
		Specialties: []string{"concrete", "masonry"},
		City:        "Richmond",
		State:       "CA",
	},
	{
		Company:     "Nguyen Plumbing Co",
		FirstName:   "Thu",
		LastName:    "Nguyen",
		Email:       "thu@nguyenplumbing.test",
		Phone:       "(415) 555-0113",
		Specialties: []string{"plumbing", "hvac"},
		City:        "San Francisco",
		State:       "CA",
	},
}

var seedTools = []services.CreateToolRequest{
	{Name: "Bosch RH540M Rotary Hammer", Category: "demolition", DailyRate: 35, Condition: "good", Quantity: 2},
	{Name: "Topcon RL-H5A Laser Level", Category: "surveying", DailyRate: 25, Condition: "excellent", Quantity: 1},
	{Name: "Honda EU7000is Generator", Category: "power", DailyRate: 60, Condition: "good", Quantity: 3},
	{Name: "Wacker Neuson Plate Compactor", Category: "compaction", DailyRate: 45, Condition: "fair", Quantity: 2},
}

var seedProjects = []services.CreateProjectRequest{
	{
		Title:       "West Oakland Community Center Renovation",
		Description: "Interior renovation of a 12,000 sq ft community center: demolition of existing partitions, new electrical service, ADA-compliant restrooms and finish carpentry throughout.",
		Client:      "City of Oakland",
		Location:    "Oakland, CA",
		BudgetMin:   floatPtr(450000),
		BudgetMax:   floatPtr(620000),
	},
}
