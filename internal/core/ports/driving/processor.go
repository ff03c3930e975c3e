package driving

import (
	"context"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// Notification is a decoded Gmail push notification.
type Notification struct {
	// EmailAddress is the watched mailbox address.
	EmailAddress string
	// HistoryID is the mailbox history position that triggered the
	// notification.
	HistoryID uint64
}

// Processor runs the email triage pipeline.
type Processor interface {
	// HandleNotification drains and processes unread mail in response
	// to a push notification. An error means the notification should
	// be redelivered.
	HandleNotification(ctx context.Context, n Notification) error

	// ProcessUnread drains unread mail without a triggering
	// notification (poll mode). Returns the number of messages that
	// reached a terminal outcome.
	ProcessUnread(ctx context.Context) (int, error)

	// ProcessMessage runs the pipeline for a single message and
	// returns its ledger entry.
	ProcessMessage(ctx context.Context, messageID string) (*domain.ProcessedMessage, error)
}
