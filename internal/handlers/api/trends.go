package api

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/aggregator"
	"callinsights/internal/config"
	"callinsights/internal/fetcher"
	"callinsights/internal/models"
	"callinsights/internal/validation"
)

// TrendHandler serves the per-day time series.
type TrendHandler struct {
	fetch *fetcher.Fetcher
	cfg   *config.Config
	log   *logrus.Entry
}

// NewTrendHandler creates a new trend handler.
func NewTrendHandler(store Datastore, cfg *config.Config, log *logrus.Entry) *TrendHandler {
	return &TrendHandler{
		fetch: fetcher.New(store, cfg.FetchPageSize, log),
		cfg:   cfg,
		log:   log,
	}
}

// Daily returns one DailyMetric per calendar day in the range, zero-filled
// for days with no conversations.
func (h *TrendHandler) Daily(c fiber.Ctx) error {
	startDate, endDate, err := dateRangeParams(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	startUnix, endUnixExclusive, err := validation.DateRangeBounds(startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}
	start, _ := validation.ParseDate(startDate)
	end, _ := validation.ParseDate(endDate)

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	convs, err := h.fetch.FetchAll(ctx, models.ConversationFilter{
		AgentID:          c.Query("agent_id"),
		StartUnix:        &startUnix,
		EndUnixExclusive: &endUnixExclusive,
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return jsonSuccess(c, fiber.Map{
		"dailyMetrics": aggregator.DailyMetrics(convs, start, end),
	})
}
