package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyencaobach123/automated-email-esi/internal/core/domain"
)

func TestParseSearchQuery(t *testing.T) {
	query, err := ParseSearchQuery(`{
		"q": "(iphone, ipad)",
		"filter": ["price:[10..50]", "priceCurrency:USD"],
		"sort": ["-price"],
		"category_ids": ["9355"],
		"limit": "25",
		"offset": 10
	}`)
	require.NoError(t, err)

	assert.Equal(t, "(iphone, ipad)", query.Keywords)
	assert.Equal(t, []string{"price:[10..50]", "priceCurrency:USD"}, []string(query.Filters))
	assert.Equal(t, []string{"-price"}, []string(query.Sort))
	assert.Equal(t, []string{"9355"}, []string(query.CategoryIDs))
	assert.Equal(t, 25, query.Limit)
	assert.Equal(t, 10, query.Offset)
}

func TestParseSearchQueryStripsCodeFence(t *testing.T) {
	query, err := ParseSearchQuery("```json\n{\"q\": \"camera\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "camera", query.Keywords)

	query, err = ParseSearchQuery("```\n{\"q\": \"camera\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "camera", query.Keywords)
}

func TestParseSearchQueryNumericLimit(t *testing.T) {
	query, err := ParseSearchQuery(`{"q": "camera", "limit": 50}`)
	require.NoError(t, err)
	assert.Equal(t, 50, query.Limit)
}

func TestParseSearchQuerySingleStringFilter(t *testing.T) {
	// The model occasionally emits a bare string where an array is
	// expected.
	query, err := ParseSearchQuery(`{"q": "camera", "filter": "conditions:{NEW}"}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"conditions:{NEW}"}, []string(query.Filters))
}

func TestParseSearchQueryEmptyObject(t *testing.T) {
	_, err := ParseSearchQuery(`{}`)
	assert.ErrorIs(t, err, domain.ErrNoSearchQuery)
}

func TestParseSearchQueryFiltersWithoutKeywords(t *testing.T) {
	_, err := ParseSearchQuery(`{"filter": ["price:[10..50]"]}`)
	assert.ErrorIs(t, err, domain.ErrNoSearchQuery)
}

func TestParseSearchQueryInvalidJSON(t *testing.T) {
	_, err := ParseSearchQuery("I could not determine any parameters.")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNoSearchQuery)
}

func TestFormatListings(t *testing.T) {
	got := formatListings([]domain.Listing{
		{Title: "Camera", Price: "45.00", Currency: "USD", WebURL: "https://ebay.com/itm/1", Condition: "Used"},
		{Title: "Lens"},
	})

	assert.Contains(t, got, "--- Sản phẩm 1 ---")
	assert.Contains(t, got, "Tiêu đề: Camera")
	assert.Contains(t, got, "Giá: 45.00 USD")
	assert.Contains(t, got, "Tình trạng: Used")
	assert.Contains(t, got, "--- Sản phẩm 2 ---")
	assert.Contains(t, got, "Giá: N/A")
	assert.Contains(t, got, "Link: N/A")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 10))
	assert.Equal(t, "ab", truncateRunes("abcd", 2))
	// Multi-byte runes are not split.
	assert.Equal(t, "chào", truncateRunes("chào bạn", 4))
}
