// Package fetcher materializes complete result sets from a page-capped
// store. The backing store silently caps pages at a fixed size, so a single
// query can never be trusted to return everything; the fetcher loops offset
// windows until exhaustion.
package fetcher

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"callinsights/internal/models"
)

// DefaultPageSize matches the store's hard per-request row cap.
const DefaultPageSize = 1000

// Store is the paginated row-query surface the fetcher drives. Pages must be
// returned in a stable order (start time ascending, tie-broken by row id);
// without that, pagination over a concurrently-mutating table can skip or
// duplicate rows between pages.
type Store interface {
	QueryConversations(ctx context.Context, filter models.ConversationFilter, offset, limit int) ([]models.Conversation, error)
}

// Fetcher pulls every row matching a filter, hiding the store's page cap.
type Fetcher struct {
	store    Store
	pageSize int
	log      *logrus.Entry
}

// New creates a Fetcher. pageSize values below 1 fall back to
// DefaultPageSize.
func New(store Store, pageSize int, log *logrus.Entry) *Fetcher {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Fetcher{store: store, pageSize: pageSize, log: log}
}

// FetchAll returns all rows matching the filter. A page returning fewer rows
// than the page size signals exhaustion. Any page failure aborts the whole
// fetch and discards partial results; there is no partial-success contract.
// Callers bound the loop with a context deadline.
func (f *Fetcher) FetchAll(ctx context.Context, filter models.ConversationFilter) ([]models.Conversation, error) {
	var all []models.Conversation
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch aborted at offset %d: %w", offset, err)
		}

		page, err := f.store.QueryConversations(ctx, filter, offset, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}

		all = append(all, page...)
		if f.log != nil {
			f.log.WithFields(logrus.Fields{
				"offset": offset,
				"rows":   len(page),
				"total":  len(all),
			}).Debug("fetched conversation page")
		}

		if len(page) < f.pageSize {
			return all, nil
		}
		offset += f.pageSize
	}
}
