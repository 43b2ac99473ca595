package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"callinsights/internal/models"
)

const metricsSheet = "Agent Metrics"

var metricsHeader = []string{
	"Agent ID",
	"Agent Name",
	"Total Conversations",
	"Avg Call Duration (s)",
	"Avg Messages",
	"Success Rate (%)",
	"Hangup Rate (%)",
	"Revenue Opportunity Rate (%)",
}

// AgentMetricsWorkbook renders per-agent metrics as an xlsx workbook. The
// date range goes into a title row so exported files are self-describing.
func AgentMetricsWorkbook(metrics []models.AgentMetrics, startDate, endDate string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(metricsSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	title := fmt.Sprintf("Agent metrics %s to %s", startDate, endDate)
	if err := f.SetCellValue(metricsSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}

	for col, name := range metricsHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(metricsSheet, cell, name); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, m := range metrics {
		row := i + 3
		values := []any{
			m.AgentID,
			m.AgentName,
			m.TotalConversations,
			m.AvgCallDuration,
			m.AvgMessages,
			m.SuccessRate,
			m.HangupRate,
			m.RevenueOpportunityRate,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(metricsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf, nil
}
