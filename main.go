package main

import (
	"context"
	"log"
	"time"

	"github.com/asimov86/ecommerce-api/cmd"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/internal/wire"
	"github.com/asimov86/ecommerce-api/pkg/database"
	"github.com/asimov86/ecommerce-api/pkg/mailer"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Drop long-expired sessions left over from previous runs
	cleanCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repos.Session.CleanExpiredSessions(cleanCtx); err != nil {
		logger.Warn("Failed to clean expired sessions", zap.Error(err))
	}
	cancel()

	// Outbound email
	mail := mailer.NewSMTPMailer(config.Email, logger)

	// Wire all dependencies
	app := wire.Wiring(db, repos, mail, config, logger)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
