package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driven"
	"github.com/nguyencaobach123/automated-email-esi/internal/core/ports/driving"
	"github.com/nguyencaobach123/automated-email-esi/internal/logger"
)

// Ensure Processor implements the driving interface.
var _ driving.Processor = (*Processor)(nil)

// Processor runs the triage pipeline: classify each unread email, search
// the marketplace for matching listings, and either reply automatically
// or forward the email to the support chat.
type Processor struct {
	mailbox     driven.Mailbox
	assistant   driven.Assistant
	marketplace driven.Marketplace
	notifier    driven.Notifier
	ledger      driven.ProcessedStore
}

// NewProcessor creates the pipeline service.
func NewProcessor(
	mailbox driven.Mailbox,
	assistant driven.Assistant,
	marketplace driven.Marketplace,
	notifier driven.Notifier,
	ledger driven.ProcessedStore,
) *Processor {
	return &Processor{
		mailbox:     mailbox,
		assistant:   assistant,
		marketplace: marketplace,
		notifier:    notifier,
		ledger:      ledger,
	}
}

// HandleNotification drains unread mail in response to a push
// notification. An error means the notification should be nacked and
// redelivered; the ledger keeps redelivery idempotent.
func (p *Processor) HandleNotification(ctx context.Context, n driving.Notification) error {
	logger.Info("notification for %s (history ID %d), draining unread mail", n.EmailAddress, n.HistoryID)

	_, err := p.ProcessUnread(ctx)
	return err
}

// ProcessUnread processes every unread message that has not yet reached
// a terminal outcome. Individual failures do not stop the drain; they
// are joined into the returned error so the caller can retry.
func (p *Processor) ProcessUnread(ctx context.Context) (int, error) {
	ids, err := p.mailbox.ListUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unread: %w", err)
	}
	if len(ids) == 0 {
		logger.Info("no unread messages matching criteria")
		return 0, nil
	}

	var (
		settled int
		errs    []error
	)
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return settled, ctx.Err()
		default:
		}

		rec, err := p.ProcessMessage(ctx, id)
		if err != nil {
			logger.Error("processing message %s: %v", id, err)
			errs = append(errs, fmt.Errorf("message %s: %w", id, err))
			continue
		}
		if rec != nil && rec.Outcome.Terminal() {
			settled++
		}
	}

	return settled, errors.Join(errs...)
}

// ProcessMessage runs the pipeline for a single message.
// Returns the existing ledger entry without reprocessing when the
// message already reached a terminal outcome.
func (p *Processor) ProcessMessage(ctx context.Context, messageID string) (*domain.ProcessedMessage, error) {
	prior, err := p.ledger.Get(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}
	if prior != nil && prior.Outcome.Terminal() {
		logger.Debug("message %s already settled (%s), skipping", messageID, prior.Outcome)
		return prior, nil
	}

	logger.Info("--- processing message %s ---", messageID)

	email, err := p.mailbox.Get(ctx, messageID)
	if err != nil {
		return p.recordFailure(ctx, &domain.Email{ID: messageID}, err)
	}

	rec, err := p.triage(ctx, email)
	if err == nil {
		logger.Info("--- finished message %s (%s) ---", messageID, rec.Outcome)
	}
	return rec, err
}

// triage applies the decision tree to a fetched email.
func (p *Processor) triage(ctx context.Context, email *domain.Email) (*domain.ProcessedMessage, error) {
	if email.Body == "" {
		logger.Warn("message %s has no body content, archiving", email.ID)
		return p.settle(ctx, email, domain.OutcomeSkipped)
	}

	classification, err := p.assistant.Classify(ctx, email.Subject, email.Body)
	if err != nil {
		logger.Error("classification failed for %s, forwarding for manual review: %v", email.ID, err)
		return p.forward(ctx, email)
	}

	if classification == domain.ClassificationSpam {
		logger.Info("message %s classified as spam", email.ID)
		return p.settle(ctx, email, domain.OutcomeSpam)
	}

	// Pure FAQ questions have no product to look up; hand them straight
	// to the support team.
	if intent, err := p.assistant.ClassifyIntent(ctx, email.Body); err == nil && intent == domain.IntentFAQ {
		logger.Info("message %s is a general question, forwarding", email.ID)
		return p.forward(ctx, email)
	}

	query, err := p.assistant.PlanSearch(ctx, email.Body)
	if err != nil || query == nil || !query.Valid() {
		logger.Warn("no usable search query for %s, forwarding", email.ID)
		return p.forward(ctx, email)
	}

	logger.Info("searching marketplace for %s: %q", email.ID, query.Keywords)
	listings, err := p.marketplace.Search(ctx, query)
	if err != nil {
		logger.Error("marketplace search failed for %s, forwarding: %v", email.ID, err)
		return p.forward(ctx, email)
	}
	if len(listings) == 0 {
		logger.Info("no listings found for %q, forwarding %s", query.Keywords, email.ID)
		return p.forward(ctx, email)
	}

	logger.Info("found %d listings for %s", len(listings), email.ID)
	sufficient, err := p.assistant.EvaluateListings(ctx, email.Body, listings)
	if err != nil || !sufficient {
		logger.Info("listings insufficient to answer %s, forwarding", email.ID)
		return p.forward(ctx, email)
	}

	reply, err := p.assistant.DraftReply(ctx, email.Subject, email.Body, listings)
	if err != nil {
		// Leave the message unread so the next notification retries it.
		return p.recordFailure(ctx, email, fmt.Errorf("draft reply: %w", err))
	}

	if err := p.mailbox.SendReply(ctx, email, reply); err != nil {
		return p.recordFailure(ctx, email, fmt.Errorf("send reply: %w", err))
	}

	logger.Info("replied to %s with %d listings", email.ID, len(listings))
	return p.settle(ctx, email, domain.OutcomeReplied)
}

// forward hands the email to the support chat. The message is marked
// read only after the forward succeeds.
func (p *Processor) forward(ctx context.Context, email *domain.Email) (*domain.ProcessedMessage, error) {
	if err := p.notifier.ForwardForReview(ctx, email); err != nil {
		return p.recordFailure(ctx, email, fmt.Errorf("forward for review: %w", err))
	}
	logger.Info("forwarded %s to support chat", email.ID)
	return p.settle(ctx, email, domain.OutcomeForwarded)
}

// settle marks the message read and records its terminal outcome.
func (p *Processor) settle(ctx context.Context, email *domain.Email, outcome domain.Outcome) (*domain.ProcessedMessage, error) {
	if err := p.mailbox.MarkRead(ctx, email.ID); err != nil {
		return p.recordFailure(ctx, email, fmt.Errorf("mark read: %w", err))
	}
	return p.record(ctx, email, outcome, nil)
}

// recordFailure records a non-terminal failure and returns the cause.
// The message stays unread so a later notification retries it.
func (p *Processor) recordFailure(ctx context.Context, email *domain.Email, cause error) (*domain.ProcessedMessage, error) {
	if _, recErr := p.record(ctx, email, domain.OutcomeFailed, cause); recErr != nil {
		logger.Error("recording failure for %s: %v", email.ID, recErr)
	}
	return nil, cause
}

func (p *Processor) record(ctx context.Context, email *domain.Email, outcome domain.Outcome, cause error) (*domain.ProcessedMessage, error) {
	rec := &domain.ProcessedMessage{
		ID:          uuid.New().String(),
		MessageID:   email.ID,
		ThreadID:    email.ThreadID,
		Sender:      email.Sender,
		Subject:     email.Subject,
		Outcome:     outcome,
		ProcessedAt: time.Now(),
	}
	if cause != nil {
		rec.Error = cause.Error()
	}
	if err := p.ledger.Record(ctx, rec); err != nil {
		return nil, fmt.Errorf("record outcome: %w", err)
	}
	return rec, nil
}
