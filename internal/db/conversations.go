package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"

	"callinsights/internal/models"
)

var ErrConversationNotFound = errors.New("conversation not found")

// conversationColumns is the standard column list for conversation queries.
const conversationColumns = `conversation_id, agent_id, agent_name, branch_id,
	start_time_unix_secs, call_duration_secs, message_count, status,
	call_successful, transcript_summary, call_summary_title, direction,
	rating, summary_category, created_at`

// scanConversations scans multiple rows into a slice of Conversations.
func scanConversations(rows pgx.Rows) ([]models.Conversation, error) {
	defer rows.Close()

	var convs []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.ConversationID,
			&conv.AgentID,
			&conv.AgentName,
			&conv.BranchID,
			&conv.StartTimeUnixSecs,
			&conv.CallDurationSecs,
			&conv.MessageCount,
			&conv.Status,
			&conv.CallSuccessful,
			&conv.TranscriptSummary,
			&conv.CallSummaryTitle,
			&conv.Direction,
			&conv.Rating,
			&conv.SummaryCategory,
			&conv.CreatedAt,
		); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}

	return convs, rows.Err()
}

// filterClause builds the WHERE fragment for a conversation filter. Returns
// the clause (starting with " WHERE" or empty) and the collected args.
func filterClause(filter models.ConversationFilter) (string, []any) {
	var sql string
	var args []any

	add := func(cond string, value any) {
		if sql == "" {
			sql = " WHERE "
		} else {
			sql += " AND "
		}
		if value != nil {
			args = append(args, value)
			sql += cond + "$" + strconv.Itoa(len(args))
		} else {
			sql += cond
		}
	}

	if filter.AgentID != "" {
		add("agent_id = ", filter.AgentID)
	}
	if filter.StartUnix != nil {
		add("start_time_unix_secs >= ", *filter.StartUnix)
	}
	if filter.EndUnixExclusive != nil {
		add("start_time_unix_secs < ", *filter.EndUnixExclusive)
	}
	if filter.Category != "" {
		add("summary_category = ", filter.Category)
	}
	if filter.CategorizedOnly {
		add("summary_category IS NOT NULL", nil)
	}

	return sql, args
}

// QueryConversations returns one offset window of matching rows, ordered by
// start time ascending with conversation_id as the tie-break. The order is
// what makes offset pagination deterministic; do not relax it.
func (d *DB) QueryConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error) {
	where, args := filterClause(filter)

	sql := `SELECT ` + conversationColumns + ` FROM conversations` + where +
		` ORDER BY start_time_unix_secs ASC, conversation_id ASC` +
		` OFFSET $` + strconv.Itoa(len(args)+1) +
		` LIMIT $` + strconv.Itoa(len(args)+2)
	args = append(args, offset, limit)

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanConversations(rows)
}

// ListConversations returns one display page of matching rows, newest first.
func (d *DB) ListConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error) {
	where, args := filterClause(filter)

	sql := `SELECT ` + conversationColumns + ` FROM conversations` + where +
		` ORDER BY start_time_unix_secs DESC, conversation_id DESC` +
		` OFFSET $` + strconv.Itoa(len(args)+1) +
		` LIMIT $` + strconv.Itoa(len(args)+2)
	args = append(args, offset, limit)

	rows, err := d.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return scanConversations(rows)
}

// CountConversations returns how many rows match the filter.
func (d *DB) CountConversations(ctx context.Context, filter models.ConversationFilter) (int, error) {
	where, args := filterClause(filter)

	var count int
	err := d.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM conversations`+where, args...).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// AgentCounts returns per-agent row counts, for the metrics collector.
func (d *DB) AgentCounts(ctx context.Context) ([]models.Agent, error) {
	sql := `
		SELECT agent_id, agent_name, COUNT(*)
		FROM conversations
		GROUP BY agent_id, agent_name
		ORDER BY agent_name ASC
	`
	rows, err := d.Pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var a models.Agent
		if err := rows.Scan(&a.AgentID, &a.AgentName, &a.TotalConversations); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

// InsertConversation inserts one conversation row. Used by ingestion tooling
// and test seeding; the analytics surface itself never writes.
func (d *DB) InsertConversation(ctx context.Context, conv *models.Conversation) error {
	sql := `
		INSERT INTO conversations (conversation_id, agent_id, agent_name, branch_id,
			start_time_unix_secs, call_duration_secs, message_count, status,
			call_successful, transcript_summary, call_summary_title, direction,
			rating, summary_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at
	`
	return d.Pool.QueryRow(ctx, sql,
		conv.ConversationID,
		conv.AgentID,
		conv.AgentName,
		conv.BranchID,
		conv.StartTimeUnixSecs,
		conv.CallDurationSecs,
		conv.MessageCount,
		conv.Status,
		conv.CallSuccessful,
		conv.TranscriptSummary,
		conv.CallSummaryTitle,
		conv.Direction,
		conv.Rating,
		conv.SummaryCategory,
	).Scan(&conv.CreatedAt)
}
