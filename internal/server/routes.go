package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"callinsights/internal/db"
	"callinsights/internal/handlers/api"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(database *db.DB) {
	agentHandler := api.NewAgentHandler(database, s.Cfg, s.Log)
	metricsHandler := api.NewMetricsHandler(database, s.Cfg, s.Log)
	categoryHandler := api.NewCategoryHandler(database, s.Cfg, s.Log)
	trendHandler := api.NewTrendHandler(database, s.Cfg, s.Log)
	conversationHandler := api.NewConversationHandler(database, s.Cfg, s.Log)
	exportHandler := api.NewExportHandler(database, s.Cfg, s.Log)
	healthHandler := api.NewHealthHandler(database, s.Log)

	s.App.Get("/api/agents", agentHandler.List)
	s.App.Get("/api/metrics", metricsHandler.List)
	s.App.Get("/api/categories", categoryHandler.Histogram)
	s.App.Get("/api/categories/details", categoryHandler.Details)
	s.App.Get("/api/categories/stored", categoryHandler.Stored)
	s.App.Get("/api/trends", trendHandler.Daily)
	s.App.Get("/api/conversations", conversationHandler.List)
	s.App.Get("/api/export/metrics", exportHandler.Metrics)
	s.App.Get("/api/health", healthHandler.Check)

	// Prometheus scrape endpoint
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
