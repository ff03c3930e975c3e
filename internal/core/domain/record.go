package domain

import "time"

// Outcome is the terminal disposition of a processed email.
type Outcome string

const (
	// OutcomeReplied means an automatic reply was sent.
	OutcomeReplied Outcome = "replied"
	// OutcomeForwarded means the email went to the support chat for
	// manual handling.
	OutcomeForwarded Outcome = "forwarded"
	// OutcomeSpam means the email was archived as spam.
	OutcomeSpam Outcome = "spam"
	// OutcomeSkipped means the email was archived without action,
	// e.g. it had no body.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means processing ended in an error; the message
	// stays unread for redelivery.
	OutcomeFailed Outcome = "failed"
)

// ProcessedMessage is a ledger entry for one handled email. The ledger
// makes notification redeliveries idempotent: a message already recorded
// with a terminal outcome is never processed twice.
type ProcessedMessage struct {
	// ID is the ledger entry ID.
	ID string
	// MessageID is the Gmail message ID. Unique per entry.
	MessageID string
	// ThreadID is the Gmail thread ID.
	ThreadID string
	// Sender is the From header of the processed email.
	Sender string
	// Subject is the email subject.
	Subject string
	// Outcome records the disposition.
	Outcome Outcome
	// Error holds the failure detail for OutcomeFailed entries.
	Error string
	// ProcessedAt is when the disposition was reached.
	ProcessedAt time.Time
}

// Terminal reports whether the outcome settles the message. Failed
// entries are retried on the next notification.
func (o Outcome) Terminal() bool {
	return o == OutcomeReplied || o == OutcomeForwarded ||
		o == OutcomeSpam || o == OutcomeSkipped
}
