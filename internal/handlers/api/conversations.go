package api

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/config"
	"callinsights/internal/models"
	"callinsights/internal/validation"
)

// maxListLimit caps the page size of the conversations list view.
const maxListLimit = 100

// ConversationHandler serves the paginated conversation list view. Unlike
// the aggregate endpoints it pages directly against the store with a
// count-based hasMore flag instead of materializing everything.
type ConversationHandler struct {
	store Datastore
	cfg   *config.Config
	log   *logrus.Entry
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(store Datastore, cfg *config.Config, log *logrus.Entry) *ConversationHandler {
	return &ConversationHandler{store: store, cfg: cfg, log: log}
}

// List returns one display page of an agent's conversations, newest first.
func (h *ConversationHandler) List(c fiber.Ctx) error {
	startDate, endDate, err := dateRangeParams(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	agentID := c.Query("agent_id")
	if agentID == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing agent_id parameter")
	}

	startUnix, endUnixExclusive, err := validation.DateRangeBounds(startDate, endDate)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", maxListLimit)
	if limit > maxListLimit {
		limit = maxListLimit
	}

	filter := models.ConversationFilter{
		AgentID:          agentID,
		StartUnix:        &startUnix,
		EndUnixExclusive: &endUnixExclusive,
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	total, err := h.store.CountConversations(ctx, filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	offset := (page - 1) * limit
	convs, err := h.store.ListConversations(ctx, filter, offset, limit)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}
	if convs == nil {
		convs = []models.Conversation{}
	}

	return jsonSuccess(c, fiber.Map{
		"conversations": convs,
		"pagination": models.PaginationInfo{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasMore: offset+len(convs) < total,
		},
	})
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
