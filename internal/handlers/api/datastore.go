package api

import (
	"context"

	"callinsights/internal/models"
)

// Datastore is the conversation store surface the handlers need. *db.DB
// satisfies it; tests substitute fakes.
type Datastore interface {
	QueryConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error)
	ListConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error)
	CountConversations(ctx context.Context, filter models.ConversationFilter) (int, error)
	Ping(ctx context.Context) error
}
