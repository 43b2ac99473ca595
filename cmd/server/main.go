package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"callinsights/internal/config"
	"callinsights/internal/db"
	"callinsights/internal/logger"
	"callinsights/internal/metrics"
	"callinsights/internal/server"
)

func main() {
	// Load .env if present; real environments set variables directly.
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load()
	log := logger.New()

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("migrations completed")

	// Register Prometheus collectors
	metrics.Init(database, log.WithComponent("metrics"))

	srv := server.New(cfg, log.WithComponent("server"))
	srv.RegisterRoutes(database)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.WithError(err).Error("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server exited")
}
