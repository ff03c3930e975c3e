package driven

import (
	"context"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// Mailbox provides access to the support inbox.
type Mailbox interface {
	// ListUnread returns the IDs of unread messages matching the
	// configured label filter, newest first.
	ListUnread(ctx context.Context) ([]string, error)

	// Get fetches a message and extracts its headers and text body.
	Get(ctx context.Context, messageID string) (*domain.Email, error)

	// SendReply sends body as a threaded reply to the original email.
	// Returns domain.ErrReplyNotThreadable when the original lacks the
	// sender or Message-ID header.
	SendReply(ctx context.Context, original *domain.Email, body string) error

	// MarkRead removes the unread marker from a message.
	MarkRead(ctx context.Context, messageID string) error
}

// MailboxWatcher manages push notifications for the mailbox.
type MailboxWatcher interface {
	// Watch registers (or renews) the push notification channel and
	// returns the resulting watch state.
	Watch(ctx context.Context) (*domain.WatchState, error)

	// StopWatch tears down the push notification channel.
	StopWatch(ctx context.Context) error
}
