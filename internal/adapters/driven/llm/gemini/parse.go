package gemini

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

// stripCodeFence removes a markdown ```json fence the model sometimes
// wraps JSON output in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

// rawSearchParams accepts the loose JSON the planner prompt asks for.
// The model emits limit and offset as either strings or numbers, and
// occasionally a bare string where an array is expected.
type rawSearchParams struct {
	Q           string      `json:"q"`
	Filter      stringList  `json:"filter"`
	Sort        stringList  `json:"sort"`
	CategoryIDs stringList  `json:"category_ids"`
	Limit       looseNumber `json:"limit"`
	Offset      looseNumber `json:"offset"`
}

// stringList unmarshals either a JSON array of strings or a single
// string into a slice.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("expected string or array of strings: %s", data)
	}
	if single != "" {
		*l = []string{single}
	}
	return nil
}

// looseNumber unmarshals a JSON number or a numeric string.
type looseNumber int

func (n *looseNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	value, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("expected number: %s", data)
	}
	*n = looseNumber(value)
	return nil
}

// ParseSearchQuery parses the planner's JSON output into a search
// query. An empty object, or parameters without keywords, yield
// domain.ErrNoSearchQuery.
func ParseSearchQuery(text string) (*domain.SearchQuery, error) {
	cleaned := stripCodeFence(text)

	var raw rawSearchParams
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("parse search parameters: %w", err)
	}

	if raw.Q == "" {
		return nil, domain.ErrNoSearchQuery
	}

	return &domain.SearchQuery{
		Keywords:    raw.Q,
		Filters:     raw.Filter,
		Sort:        raw.Sort,
		CategoryIDs: raw.CategoryIDs,
		Limit:       int(raw.Limit),
		Offset:      int(raw.Offset),
	}, nil
}

// formatListings renders listings into the prompt context block, in the
// shape the evaluation and reply prompts expect.
func formatListings(listings []domain.Listing) string {
	var b strings.Builder
	b.WriteString("Các sản phẩm liên quan được tìm thấy trên eBay:\n")
	for i, item := range listings {
		fmt.Fprintf(&b, "--- Sản phẩm %d ---\n", i+1)
		fmt.Fprintf(&b, "Tiêu đề: %s\n", orNA(item.Title))
		fmt.Fprintf(&b, "Giá: %s\n", orNA(formatPrice(item)))
		fmt.Fprintf(&b, "Link: %s\n", orNA(item.WebURL))
		fmt.Fprintf(&b, "Tình trạng: %s\n", orNA(item.Condition))
		b.WriteString("---\n")
	}
	return b.String()
}

func formatPrice(item domain.Listing) string {
	if item.Price == "" {
		return ""
	}
	if item.Currency == "" {
		return item.Price
	}
	return item.Price + " " + item.Currency
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// truncateRunes caps s at max runes. Prompt inputs are truncated so a
// very long email cannot blow the context window.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
