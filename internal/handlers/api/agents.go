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

// AgentHandler lists the distinct agents active in a date range.
type AgentHandler struct {
	fetch *fetcher.Fetcher
	cfg   *config.Config
	log   *logrus.Entry
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(store Datastore, cfg *config.Config, log *logrus.Entry) *AgentHandler {
	return &AgentHandler{
		fetch: fetcher.New(store, cfg.FetchPageSize, log),
		cfg:   cfg,
		log:   log,
	}
}

// List returns the distinct agents in the range with conversation counts.
func (h *AgentHandler) List(c fiber.Ctx) error {
	startDate, endDate, err := dateRangeParams(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	startUnix, endUnixExclusive, err := validation.DateRangeBounds(startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	rows, err := h.fetch.FetchAll(ctx, models.ConversationFilter{
		StartUnix:        &startUnix,
		EndUnixExclusive: &endUnixExclusive,
	})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	agents := aggregator.Agents(rows)

	return jsonSuccess(c, fiber.Map{
		"agents": agents,
		"dateRange": fiber.Map{
			"startDate": startDate,
			"endDate":   endDate,
		},
	})
}
