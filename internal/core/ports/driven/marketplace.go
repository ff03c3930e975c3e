package driven

import (
	"context"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// Marketplace searches an external marketplace for product listings.
type Marketplace interface {
	// Search executes the query and returns matching listings.
	// An empty result is not an error.
	Search(ctx context.Context, query *domain.SearchQuery) ([]domain.Listing, error)
}
