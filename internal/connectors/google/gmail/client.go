package gmail

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nguyencaobach123/automated-email-esi/internal/connectors/google"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

// Ensure Client implements the mailbox ports.
var (
	_ driven.Mailbox        = (*Client)(nil)
	_ driven.MailboxWatcher = (*Client)(nil)
)

// Client implements the mailbox port over the Gmail API.
type Client struct {
	svc         *gmail.Service
	config      Config
	rateLimiter *google.RateLimiter
}

// NewClient creates a Gmail client using the provided token source.
func NewClient(ctx context.Context, ts oauth2.TokenSource, config Config) (*Client, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Client{
		svc:         svc,
		config:      config.normalise(),
		rateLimiter: google.NewRateLimiter(google.DefaultGmailRateLimit),
	}, nil
}

// NewClientWithService creates a client around an existing service.
// Useful for tests with a stubbed HTTP transport.
func NewClientWithService(svc *gmail.Service, config Config) *Client {
	return &Client{
		svc:         svc,
		config:      config.normalise(),
		rateLimiter: google.NewRateLimiter(google.DefaultGmailRateLimit),
	}
}

// ListUnread returns the IDs of unread messages matching the configured
// label filter, inbox-scoped.
func (c *Client) ListUnread(ctx context.Context) ([]string, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := c.config.unreadQuery()
	logger.Debug("listing messages with query %q", query)

	resp, err := c.svc.Users.Messages.List(c.config.UserID).
		Q(query).
		MaxResults(c.config.MaxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", google.WrapError(err))
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}
	logger.Info("found %d unread message(s) matching criteria", len(ids))
	return ids, nil
}

// Get fetches a message in full format and parses it.
func (c *Client) Get(ctx context.Context, messageID string) (*domain.Email, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	msg, err := c.svc.Users.Messages.Get(c.config.UserID, messageID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", messageID, google.WrapError(err))
	}

	email := ParseMessage(msg)
	if email.Body == "" {
		logger.Warn("could not extract body for message %s", messageID)
	}
	return email, nil
}

// SendReply sends body as a threaded reply to the original email.
func (c *Client) SendReply(ctx context.Context, original *domain.Email, body string) error {
	raw, err := BuildReply(original, body)
	if err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	logger.Info("sending reply to %s on thread %s", original.SenderAddress(), original.ThreadID)
	sent, err := c.svc.Users.Messages.Send(c.config.UserID, &gmail.Message{
		Raw:      raw,
		ThreadId: original.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("send reply: %w", google.WrapError(err))
	}

	logger.Info("reply sent, new message ID %s", sent.Id)
	return nil
}

// MarkRead removes the UNREAD label from a message.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	_, err := c.svc.Users.Messages.Modify(c.config.UserID, messageID, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("mark %s as read: %w", messageID, google.WrapError(err))
	}

	logger.Debug("message %s marked as read", messageID)
	return nil
}

// Watch registers push notifications for the mailbox on the configured
// Pub/Sub topic.
func (c *Client) Watch(ctx context.Context) (*domain.WatchState, error) {
	if c.config.TopicName == "" {
		return nil, fmt.Errorf("watch: %w: topic name not set", domain.ErrNotConfigured)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	resp, err := c.svc.Users.Watch(c.config.UserID, &gmail.WatchRequest{
		LabelIds:  c.config.watchLabelIDs(),
		TopicName: c.config.TopicName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("register watch: %w", google.WrapError(err))
	}

	state := &domain.WatchState{
		HistoryID: resp.HistoryId,
		// Expiration is epoch milliseconds.
		Expiration: time.UnixMilli(resp.Expiration),
		RenewedAt:  time.Now(),
	}
	logger.Info("watch registered on %s, expires %s", c.config.TopicName, state.Expiration.Format(time.RFC3339))
	return state, nil
}

// StopWatch tears down the push notification channel.
func (c *Client) StopWatch(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if err := c.svc.Users.Stop(c.config.UserID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("stop watch: %w", google.WrapError(err))
	}
	logger.Info("mailbox watch stopped")
	return nil
}
