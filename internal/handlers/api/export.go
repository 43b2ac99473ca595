package api

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/config"
	"callinsights/internal/export"
	"callinsights/internal/fetcher"
	"callinsights/internal/models"
	"callinsights/internal/validation"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the agent metrics report as a downloadable workbook.
type ExportHandler struct {
	fetch *fetcher.Fetcher
	cfg   *config.Config
	log   *logrus.Entry
}

// NewExportHandler creates a new export handler.
func NewExportHandler(store Datastore, cfg *config.Config, log *logrus.Entry) *ExportHandler {
	return &ExportHandler{
		fetch: fetcher.New(store, cfg.FetchPageSize, log),
		cfg:   cfg,
		log:   log,
	}
}

// Metrics computes the same per-agent metrics as the JSON endpoint and
// streams them back as an xlsx attachment.
func (h *ExportHandler) Metrics(c fiber.Ctx) error {
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

	buf, err := export.AgentMetricsWorkbook(metrics, startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	filename := fmt.Sprintf("agent-metrics_%s_%s.xlsx", startDate, endDate)
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(buf.Bytes())
}
