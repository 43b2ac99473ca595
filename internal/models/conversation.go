package models

import "time"

// Call outcome values stored in the call_successful column.
const (
	CallSuccess = "success"
	CallFailure = "failure"
	CallUnknown = "unknown"
)

// Conversation is a single call/chat record as stored in the conversations
// table. The analytics core only reads these; the ingestion pipeline that
// writes them lives elsewhere.
type Conversation struct {
	ConversationID    string    `json:"conversation_id"`
	AgentID           string    `json:"agent_id"`
	AgentName         string    `json:"agent_name"`
	BranchID          *string   `json:"branch_id,omitempty"`
	StartTimeUnixSecs int64     `json:"start_time_unix_secs"`
	CallDurationSecs  int       `json:"call_duration_secs"`
	MessageCount      int       `json:"message_count"`
	Status            *string   `json:"status,omitempty"`
	CallSuccessful    *string   `json:"call_successful,omitempty"`
	TranscriptSummary *string   `json:"transcript_summary,omitempty"`
	CallSummaryTitle  *string   `json:"call_summary_title,omitempty"`
	Direction         *string   `json:"direction,omitempty"`
	Rating            *string   `json:"rating,omitempty"`
	SummaryCategory   *string   `json:"summary_category,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Title returns the summary title or "" when none was recorded.
func (c *Conversation) Title() string {
	if c.CallSummaryTitle == nil {
		return ""
	}
	return *c.CallSummaryTitle
}

// ConversationFilter selects conversations for fetching. Zero values mean
// "no constraint". Time bounds are a half-open interval in UTC seconds:
// StartUnix inclusive, EndUnixExclusive exclusive.
type ConversationFilter struct {
	AgentID          string
	StartUnix        *int64
	EndUnixExclusive *int64
	Category         string // match the stored summary_category exactly
	CategorizedOnly  bool   // restrict to rows with a non-null summary_category
}

// Agent is a distinct agent seen in a date range.
type Agent struct {
	AgentID            string `json:"agent_id"`
	AgentName          string `json:"agent_name"`
	TotalConversations int    `json:"total_conversations"`
}

// AgentMetrics is the per-agent aggregate for a reporting window. It exists
// only as a response payload and is recomputed per request.
type AgentMetrics struct {
	AgentID                string         `json:"agent_id"`
	AgentName              string         `json:"agent_name"`
	TotalConversations     int            `json:"totalConversations"`
	AvgCallDuration        int            `json:"avgCallDuration"`
	AvgMessages            float64        `json:"avgMessages"`
	SuccessRate            float64        `json:"successRate"`
	HangupRate             float64        `json:"hangupRate"`
	RevenueOpportunityRate float64        `json:"revenueOpportunityRate"`
	StatusBreakdown        map[string]int `json:"statusBreakdown"`
	DirectionBreakdown     map[string]int `json:"directionBreakdown"`
}

// DailyMetric is one calendar day of the trend series. The series always has
// one entry per day in the requested range, zero-filled for idle days.
type DailyMetric struct {
	Date              string  `json:"date"`
	ConversationCount int     `json:"conversationCount"`
	AvgDuration       int     `json:"avgDuration"`
	AvgMessages       float64 `json:"avgMessages"`
	SuccessRate       float64 `json:"successRate"`
	HangupRate        float64 `json:"hangupRate"`
}

// CategoryCount is one slice of the category histogram.
type CategoryCount struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// PaginationInfo describes a page of the conversations list view.
type PaginationInfo struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// CategoryConversation is the drill-down row for one categorized conversation.
type CategoryConversation struct {
	ConversationID    string `json:"conversation_id"`
	CallSummaryTitle  string `json:"call_summary_title"`
	StartTimeUnixSecs int64  `json:"start_time_unix_secs"`
	AgentName         string `json:"agent_name"`
}
