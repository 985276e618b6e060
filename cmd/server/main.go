package main

import (
	"context"
	"log"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/echo/v4"
	"github.com/trailfund/backend/internal/router"
	"github.com/trailfund/backend/pkg/config"
	"github.com/trailfund/backend/pkg/firebase"
	"github.com/trailfund/backend/validators"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Firebase Cloud Messaging is optional: without credentials, notifications
	// are still persisted but no push is sent.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var push *messaging.Client
	if firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath); err != nil {
		logger.Warn("firebase messaging unavailable, push delivery disabled", zap.Error(err))
	} else {
		push = firebaseApp.MessagingClient
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	dispatcher := router.SetupRoutes(e, db.Postgres, db.Mongo, push, cfg, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Run the outbox dispatcher until shutdown
	go dispatcher.Run(ctx)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
