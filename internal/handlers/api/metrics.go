package api

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/aggregator"
	"callinsights/internal/config"
	"callinsights/internal/fetcher"
	"callinsights/internal/models"
	"callinsights/internal/validation"
)

// MetricsHandler serves per-agent metrics for a reporting window.
type MetricsHandler struct {
	fetch *fetcher.Fetcher
	cfg   *config.Config
	log   *logrus.Entry
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(store Datastore, cfg *config.Config, log *logrus.Entry) *MetricsHandler {
	return &MetricsHandler{
		fetch: fetcher.New(store, cfg.FetchPageSize, log),
		cfg:   cfg,
		log:   log,
	}
}

// List returns AgentMetrics for every agent active in the range, or for one
// agent when agent_id is given.
func (h *MetricsHandler) List(c fiber.Ctx) error {
	startDate, endDate, err := dateRangeParams(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	startUnix, endUnixExclusive, err := validation.DateRangeBounds(startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	filter := models.ConversationFilter{
		AgentID:          c.Query("agent_id"),
		StartUnix:        &startUnix,
		EndUnixExclusive: &endUnixExclusive,
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	metrics, err := collectAgentMetrics(ctx, h.fetch, h.log, filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	return jsonSuccess(c, fiber.Map{"metrics": metrics})
}

// collectAgentMetrics discovers the agents active under the filter, then
// computes each agent's metrics concurrently over its own fetched rows. The
// fan-in waits for every agent; an agent whose fetch fails is logged and
// dropped from the result rather than failing the whole request.
func collectAgentMetrics(ctx context.Context, fetch *fetcher.Fetcher, log *logrus.Entry, filter models.ConversationFilter) ([]models.AgentMetrics, error) {
	rows, err := fetch.FetchAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	agents := aggregator.Agents(rows)

	results := make([]*models.AgentMetrics, len(agents))
	var wg sync.WaitGroup
	for i, agent := range agents {
		wg.Add(1)
		go func(i int, agentID string) {
			defer wg.Done()

			agentFilter := filter
			agentFilter.AgentID = agentID
			convs, err := fetch.FetchAll(ctx, agentFilter)
			if err != nil {
				log.WithError(err).WithField("agent_id", agentID).
					Warn("dropping agent from metrics: fetch failed")
				return
			}
			results[i] = aggregator.AgentMetricsFor(convs)
		}(i, agent.AgentID)
	}
	wg.Wait()

	metrics := make([]models.AgentMetrics, 0, len(agents))
	for _, m := range results {
		if m != nil {
			metrics = append(metrics, *m)
		}
	}
	aggregator.SortAgentMetrics(metrics)
	return metrics, nil
}
