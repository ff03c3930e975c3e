package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driving"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

// Config holds Pub/Sub listener configuration.
type Config struct {
	// ProjectID is the Google Cloud project owning the subscription.
	ProjectID string
	// SubscriptionID is the pull subscription attached to the Gmail
	// watch topic.
	SubscriptionID string
	// CredentialsFile is an optional service account key path. Empty
	// uses application default credentials.
	CredentialsFile string
}

// Listener consumes Gmail push notifications from a pull subscription
// and dispatches them to the processor.
type Listener struct {
	client    *pubsub.Client
	config    Config
	processor driving.Processor
}

// NewListener connects to Pub/Sub and prepares the listener.
func NewListener(ctx context.Context, config Config, processor driving.Processor) (*Listener, error) {
	if config.ProjectID == "" || config.SubscriptionID == "" {
		return nil, fmt.Errorf("pubsub listener requires a project ID and subscription ID")
	}

	var opts []option.ClientOption
	if config.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, config.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}

	return &Listener{
		client:    client,
		config:    config,
		processor: processor,
	}, nil
}

// Listen blocks receiving notifications until ctx is cancelled.
// Messages are acked once the processor settles the triggered work and
// nacked on failure so Pub/Sub redelivers them. The processed-message
// ledger keeps redelivery idempotent.
func (l *Listener) Listen(ctx context.Context) error {
	sub := l.client.Subscription(l.config.SubscriptionID)

	// Notifications are mailbox-level signals, not per-message work
	// items. Handling them one at a time avoids concurrent drains of
	// the same unread set.
	sub.ReceiveSettings.MaxOutstandingMessages = 1

	logger.Info("listening for messages on %s...", l.config.SubscriptionID)
	err := sub.Receive(ctx, l.handle)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("receive on %s: %w", l.config.SubscriptionID, err)
	}
	return nil
}

func (l *Listener) handle(ctx context.Context, msg *pubsub.Message) {
	notification, err := DecodeNotification(msg.Data)
	if err != nil {
		// Malformed payloads will never decode; redelivering them
		// only loops. Ack and move on.
		logger.Error("dropping undecodable notification: %v", err)
		msg.Ack()
		return
	}

	logger.Info("received notification for %s (history %d)", notification.EmailAddress, notification.HistoryID)

	if err := l.processor.HandleNotification(ctx, notification); err != nil {
		logger.Error("processing notification failed, nacking for redelivery: %v", err)
		msg.Nack()
		return
	}
	msg.Ack()
}

// Close releases the underlying Pub/Sub client.
func (l *Listener) Close() error {
	return l.client.Close()
}
