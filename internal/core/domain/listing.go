package domain

// Listing is a marketplace item summary returned from a product search.
type Listing struct {
	// ItemID is the marketplace item identifier.
	ItemID string
	// Title is the listing title.
	Title string
	// WebURL is the public listing page.
	WebURL string
	// Price is the listed price value, as returned by the API.
	Price string
	// Currency is the price currency code.
	Currency string
	// Condition describes the item condition, e.g. "New".
	Condition string
}

// SearchQuery holds marketplace search parameters planned from an email.
// Field names follow the eBay Browse API item_summary/search contract.
type SearchQuery struct {
	// Keywords is the `q` parameter: space-separated for AND,
	// `(a, b)` for OR.
	Keywords string `json:"q"`
	// Filters is the `filter` parameter, e.g. `price:[10..50]`.
	Filters []string `json:"filter,omitempty"`
	// Sort is the `sort` parameter, e.g. `-price`.
	Sort []string `json:"sort,omitempty"`
	// CategoryIDs is the `category_ids` parameter.
	CategoryIDs []string `json:"category_ids,omitempty"`
	// Limit is the page size. Zero means the connector default.
	Limit int `json:"-"`
	// Offset skips results for pagination.
	Offset int `json:"-"`
}

// IsZero reports whether the query carries no parameters at all.
func (q *SearchQuery) IsZero() bool {
	return q.Keywords == "" && len(q.Filters) == 0 && len(q.Sort) == 0 &&
		len(q.CategoryIDs) == 0 && q.Limit == 0 && q.Offset == 0
}

// Valid reports whether the query can be executed. A query with filters
// or sorting but no keywords is rejected, matching the planner contract.
func (q *SearchQuery) Valid() bool {
	return q.Keywords != ""
}
