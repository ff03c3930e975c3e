package driven

import (
	"context"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// ProcessedStore persists the ledger of handled emails.
type ProcessedStore interface {
	// Get returns the ledger entry for a Gmail message ID.
	// Returns nil and no error when the message was never recorded.
	Get(ctx context.Context, messageID string) (*domain.ProcessedMessage, error)

	// Record inserts or replaces the entry for the message ID.
	Record(ctx context.Context, rec *domain.ProcessedMessage) error

	// Recent returns the most recent entries, newest first.
	Recent(ctx context.Context, limit int) ([]domain.ProcessedMessage, error)
}

// WatchStateStore persists the Gmail watch registration state.
type WatchStateStore interface {
	// GetWatchState returns the persisted watch state, or nil and no
	// error when no watch was ever registered.
	GetWatchState(ctx context.Context) (*domain.WatchState, error)

	// SaveWatchState persists the watch state.
	SaveWatchState(ctx context.Context, state *domain.WatchState) error
}
