package driven

import (
	"context"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// Notifier forwards emails to the human support channel.
type Notifier interface {
	// ForwardForReview sends a summary of the email to the support
	// chat. Returns domain.ErrNotConfigured when the channel is not
	// set up.
	ForwardForReview(ctx context.Context, email *domain.Email) error
}
