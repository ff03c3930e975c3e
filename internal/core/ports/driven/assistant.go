package driven

import (
	"context"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// Assistant performs the language-model operations of the pipeline.
type Assistant interface {
	// Classify decides whether an email is spam or a customer request.
	Classify(ctx context.Context, subject, body string) (domain.Classification, error)

	// ClassifyIntent decides whether a customer query is a general FAQ
	// or about a specific product.
	ClassifyIntent(ctx context.Context, text string) (domain.Intent, error)

	// PlanSearch derives marketplace search parameters from the email
	// body. Returns domain.ErrNoSearchQuery when no product keywords
	// could be identified.
	PlanSearch(ctx context.Context, body string) (*domain.SearchQuery, error)

	// EvaluateListings judges whether the found listings are relevant
	// and sufficient to answer the email.
	EvaluateListings(ctx context.Context, body string, listings []domain.Listing) (bool, error)

	// DraftReply composes the reply body from the email and listings.
	DraftReply(ctx context.Context, subject, body string, listings []domain.Listing) (string, error)
}
