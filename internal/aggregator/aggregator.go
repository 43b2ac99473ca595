// Package aggregator reduces materialized conversation lists into the
// response aggregates. Everything here is a pure function over its inputs;
// fetching and classification side effects live with the callers.
package aggregator

import (
	"math"
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"callinsights/internal/classifier"
	"callinsights/internal/models"
	"callinsights/internal/taxonomy"
)

const dateLayout = "2006-01-02"

// CategoryHistogram classifies every conversation and counts by category.
// Every taxonomy category appears in the result, zero-count included, sorted
// descending by count (ties keep taxonomy order). Percentages are rounded to
// one decimal and are all 0 when the input is empty.
func CategoryHistogram(convs []models.Conversation) (int, []models.CategoryCount) {
	counts := make(map[string]int, len(taxonomy.Names()))
	for _, conv := range convs {
		category := classifier.Classify(conv.Title(), conv.CallDurationSecs, conv.MessageCount)
		counts[category]++
	}
	return len(convs), histogramFromCounts(counts, len(convs), true)
}

// StoredCategoryHistogram counts by the precomputed summary_category column
// instead of reclassifying. Rows without a stored category bucket under the
// catch-all. Only categories actually present appear in the result.
func StoredCategoryHistogram(convs []models.Conversation) (int, []models.CategoryCount) {
	counts := make(map[string]int)
	for _, conv := range convs {
		category := taxonomy.CatchAll
		if conv.SummaryCategory != nil && *conv.SummaryCategory != "" {
			category = *conv.SummaryCategory
		}
		counts[category]++
	}
	return len(convs), histogramFromCounts(counts, len(convs), false)
}

func histogramFromCounts(counts map[string]int, total int, includeAll bool) []models.CategoryCount {
	var out []models.CategoryCount
	seen := make(map[string]bool)
	for _, name := range taxonomy.Names() {
		if includeAll || counts[name] > 0 {
			out = append(out, categoryCount(name, counts[name], total))
			seen[name] = true
		}
	}
	// Stored columns may carry labels from older taxonomy revisions.
	var extra []string
	for name := range counts {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, categoryCount(name, counts[name], total))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

func categoryCount(name string, count, total int) models.CategoryCount {
	pct := 0.0
	if total > 0 {
		pct = round1(float64(count) / float64(total) * 100)
	}
	return models.CategoryCount{Category: name, Count: count, Percentage: pct}
}

// AgentMetricsFor reduces one agent's conversations to its metrics payload.
// Returns nil for an empty group. Hangup and revenue rates are computed over
// the *categorized* rows only (non-null summary_category), so agents with
// many legacy uncategorized rows are not penalized.
func AgentMetricsFor(convs []models.Conversation) *models.AgentMetrics {
	if len(convs) == 0 {
		return nil
	}

	total := len(convs)
	totalDuration := 0
	totalMessages := 0
	successCount := 0
	statusBreakdown := make(map[string]int)
	directionBreakdown := make(map[string]int)

	categorized := 0
	hangups := 0
	revenue := 0

	for _, conv := range convs {
		totalDuration += conv.CallDurationSecs
		totalMessages += conv.MessageCount
		if conv.CallSuccessful != nil && *conv.CallSuccessful == models.CallSuccess {
			successCount++
		}
		statusBreakdown[orUnknown(conv.Status)]++
		directionBreakdown[orUnknown(conv.Direction)]++

		if conv.SummaryCategory != nil {
			categorized++
			switch *conv.SummaryCategory {
			case taxonomy.Hangups:
				hangups++
			case taxonomy.Revenue:
				revenue++
			}
		}
	}

	hangupRate := 0.0
	revenueRate := 0.0
	if categorized > 0 {
		hangupRate = round2(float64(hangups) / float64(categorized) * 100)
		revenueRate = round2(float64(revenue) / float64(categorized) * 100)
	}

	return &models.AgentMetrics{
		AgentID:                convs[0].AgentID,
		AgentName:              convs[0].AgentName,
		TotalConversations:     total,
		AvgCallDuration:        int(math.Round(float64(totalDuration) / float64(total))),
		AvgMessages:            round1(float64(totalMessages) / float64(total)),
		SuccessRate:            round1(float64(successCount) / float64(total) * 100),
		HangupRate:             hangupRate,
		RevenueOpportunityRate: revenueRate,
		StatusBreakdown:        statusBreakdown,
		DirectionBreakdown:     directionBreakdown,
	}
}

// SortAgentMetrics orders metrics by agent display name, locale-aware.
func SortAgentMetrics(metrics []models.AgentMetrics) {
	c := collate.New(language.English)
	sort.SliceStable(metrics, func(i, j int) bool {
		return c.CompareString(metrics[i].AgentName, metrics[j].AgentName) < 0
	})
}

// Agents returns the distinct agents seen in the input with their
// conversation counts, ordered by display name. Rows missing an agent id or
// name are skipped.
func Agents(convs []models.Conversation) []models.Agent {
	index := make(map[string]int)
	var agents []models.Agent
	for _, conv := range convs {
		if conv.AgentID == "" || conv.AgentName == "" {
			continue
		}
		key := conv.AgentID + "_" + conv.AgentName
		i, ok := index[key]
		if !ok {
			i = len(agents)
			index[key] = i
			agents = append(agents, models.Agent{AgentID: conv.AgentID, AgentName: conv.AgentName})
		}
		agents[i].TotalConversations++
	}
	c := collate.New(language.English)
	sort.SliceStable(agents, func(i, j int) bool {
		return c.CompareString(agents[i].AgentName, agents[j].AgentName) < 0
	})
	return agents
}

// DailyMetrics buckets conversations into UTC calendar days and emits one
// entry per day in [start, end] inclusive, zero-filled for idle days, sorted
// ascending by date. A day's hangup rate uses the short-call rule
// (duration < 15s and fewer than 3 messages).
func DailyMetrics(convs []models.Conversation, start, end time.Time) []models.DailyMetric {
	start = start.UTC().Truncate(24 * time.Hour)
	end = end.UTC().Truncate(24 * time.Hour)

	byDay := make(map[string][]models.Conversation)
	for _, conv := range convs {
		day := time.Unix(conv.StartTimeUnixSecs, 0).UTC().Format(dateLayout)
		byDay[day] = append(byDay[day], conv)
	}

	var out []models.DailyMetric
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		dayConvs := byDay[date]
		if len(dayConvs) == 0 {
			out = append(out, models.DailyMetric{Date: date})
			continue
		}

		n := len(dayConvs)
		totalDuration := 0
		totalMessages := 0
		successCount := 0
		hangupCount := 0
		for _, conv := range dayConvs {
			totalDuration += conv.CallDurationSecs
			totalMessages += conv.MessageCount
			if conv.CallSuccessful != nil && *conv.CallSuccessful == models.CallSuccess {
				successCount++
			}
			if conv.CallDurationSecs < taxonomy.HangupMaxDurationSecs && conv.MessageCount < taxonomy.HangupMaxMessages {
				hangupCount++
			}
		}

		out = append(out, models.DailyMetric{
			Date:              date,
			ConversationCount: n,
			AvgDuration:       int(math.Round(float64(totalDuration) / float64(n))),
			AvgMessages:       round1(float64(totalMessages) / float64(n)),
			SuccessRate:       round1(float64(successCount) / float64(n) * 100),
			HangupRate:        round1(float64(hangupCount) / float64(n) * 100),
		})
	}
	return out
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "unknown"
	}
	return *s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
