package router

import (
	"context"
	"log"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/trailfund/backend/internal/handlers"
	"github.com/trailfund/backend/internal/middleware"
	"github.com/trailfund/backend/internal/models"
	"github.com/trailfund/backend/internal/notifier"
	"github.com/trailfund/backend/internal/repositories"
	"github.com/trailfund/backend/pkg/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the outbox dispatcher so the caller can run it alongside the server.
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mgClient *mongo.Client, push *messaging.Client, cfg *config.Config, logger *zap.Logger) *notifier.Dispatcher {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.AuditRecord{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	db := mgClient.Database(cfg.MongoDatabase)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to ensure MongoDB indexes: %v", err)
	}
	log.Println("MongoDB indexes ensured.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	campaignRepo := repositories.NewMongoCampaignRepository(db)
	donationRepo := repositories.NewMongoDonationRepository(db)
	requestRepo := repositories.NewMongoRequestRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)
	outboxRepo := repositories.NewMongoOutboxRepository(db)
	reportRepo := repositories.NewMongoReportRepository(db)
	organizationRepo := repositories.NewMongoOrganizationRepository(db)
	auditRepo := repositories.NewPostgresAuditRepository(pgdb)

	n := notifier.New(outboxRepo, logger)
	dispatcher := notifier.NewDispatcher(outboxRepo, notificationRepo, userRepo, push, cfg.OutboxInterval, logger)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, auditRepo, logger)
	userHandler.RegisterUserRoutes(api)
	log.Println("User routes configured.")

	// Friendship routes
	friendshipHandler := handlers.NewFriendshipHandler(userRepo, n)
	friendshipHandler.RegisterFriendshipRoutes(api)
	log.Println("Friendship routes configured.")

	// Donation routes
	donationHandler := handlers.NewDonationHandler(donationRepo, campaignRepo)
	donationHandler.RegisterDonationRoutes(api)
	log.Println("Donation routes configured.")

	// Request routes
	requestHandler := handlers.NewRequestHandler(requestRepo, n)
	requestHandler.RegisterRequestRoutes(api)
	log.Println("Request routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Println("Notification routes configured.")

	// --- Review routes (admin and faculty reviewers) ---
	review := api.Group("", middleware.RequireRole(models.RoleAdmin, models.RoleFaculty))

	campaignHandler := handlers.NewCampaignHandler(campaignRepo, userRepo, auditRepo, n, logger)
	campaignHandler.RegisterCampaignRoutes(review)
	log.Println("Campaign review routes configured.")

	reportHandler := handlers.NewReportHandler(reportRepo, auditRepo, n, logger)
	reportHandler.RegisterReportRoutes(review)
	log.Println("Report routes configured.")

	organizationHandler := handlers.NewOrganizationHandler(organizationRepo, auditRepo, logger)
	organizationHandler.RegisterOrganizationRoutes(review)
	log.Println("Organization routes configured.")

	// --- Admin-only routes ---
	admin := api.Group("", middleware.RequireRole(models.RoleAdmin))
	userHandler.RegisterAdminUserRoutes(admin)
	log.Println("Admin user routes configured.")

	return dispatcher
}
