package api

import (
	"context"
	"sort"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"callinsights/internal/aggregator"
	"callinsights/internal/classifier"
	"callinsights/internal/config"
	"callinsights/internal/fetcher"
	"callinsights/internal/metrics"
	"callinsights/internal/models"
	"callinsights/internal/taxonomy"
	"callinsights/internal/validation"
)

// CategoryHandler serves the category histogram and drill-down views.
// Categories are recomputed from summary titles on every request; only the
// Stored endpoint reads the precomputed column.
type CategoryHandler struct {
	fetch *fetcher.Fetcher
	cfg   *config.Config
	log   *logrus.Entry
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(store Datastore, cfg *config.Config, log *logrus.Entry) *CategoryHandler {
	return &CategoryHandler{
		fetch: fetcher.New(store, cfg.FetchPageSize, log),
		cfg:   cfg,
		log:   log,
	}
}

// optionalFilter builds a filter from the optional agent_id and date
// parameters. Dates must come as a pair.
func optionalFilter(c fiber.Ctx) (models.ConversationFilter, error) {
	filter := models.ConversationFilter{AgentID: c.Query("agent_id")}

	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" && endDate == "" {
		return filter, nil
	}

	startUnix, endUnixExclusive, err := validation.DateRangeBounds(startDate, endDate)
	if err != nil {
		return filter, err
	}
	filter.StartUnix = &startUnix
	filter.EndUnixExclusive = &endUnixExclusive
	return filter, nil
}

// Histogram classifies every matching conversation and returns the category
// breakdown with counts and percentages.
func (h *CategoryHandler) Histogram(c fiber.Ctx) error {
	filter, err := optionalFilter(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	convs, err := h.fetch.FetchAll(ctx, filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	total, categories := aggregator.CategoryHistogram(convs)
	recordHistogram(categories)

	return jsonSuccess(c, fiber.Map{
		"totalCalls": total,
		"categories": categories,
	})
}

// Details lists the conversations assigned to one category, newest first.
func (h *CategoryHandler) Details(c fiber.Ctx) error {
	category := c.Query("category")
	if category == "" {
		return jsonError(c, fiber.StatusBadRequest, "missing category parameter")
	}
	if !taxonomy.Valid(category) {
		return jsonError(c, fiber.StatusBadRequest, "unknown category: "+category)
	}

	filter, err := optionalFilter(c)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	convs, err := h.fetch.FetchAll(ctx, filter)
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	var matched []models.CategoryConversation
	for _, conv := range convs {
		if classifier.Classify(conv.Title(), conv.CallDurationSecs, conv.MessageCount) != category {
			continue
		}
		title := conv.Title()
		if title == "" {
			title = "No title"
		}
		matched = append(matched, models.CategoryConversation{
			ConversationID:    conv.ConversationID,
			CallSummaryTitle:  title,
			StartTimeUnixSecs: conv.StartTimeUnixSecs,
			AgentName:         conv.AgentName,
		})
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartTimeUnixSecs > matched[j].StartTimeUnixSecs
	})

	return jsonSuccess(c, fiber.Map{
		"category":      category,
		"totalTitles":   len(matched),
		"conversations": matched,
	})
}

// Stored returns the histogram over the precomputed summary_category column,
// considering only rows that have one.
func (h *CategoryHandler) Stored(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.cfg.FetchTimeout)
	defer cancel()

	convs, err := h.fetch.FetchAll(ctx, models.ConversationFilter{CategorizedOnly: true})
	if err != nil {
		return jsonError(c, fiber.StatusInternalServerError, err.Error())
	}

	total, categories := aggregator.StoredCategoryHistogram(convs)

	return jsonSuccess(c, fiber.Map{
		"totalCalls": total,
		"categories": categories,
	})
}

func recordHistogram(categories []models.CategoryCount) {
	counts := make(map[string]int, len(categories))
	for _, cat := range categories {
		if cat.Count > 0 {
			counts[cat.Category] = cat.Count
		}
	}
	metrics.RecordClassifications(counts)
}
