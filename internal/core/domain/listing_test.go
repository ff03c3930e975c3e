package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchQueryIsZero(t *testing.T) {
	var q SearchQuery
	assert.True(t, q.IsZero())

	q.Keywords = "thinkpad t470"
	assert.False(t, q.IsZero())

	q = SearchQuery{Filters: []string{"conditions:{NEW}"}}
	assert.False(t, q.IsZero())
}

func TestSearchQueryValid(t *testing.T) {
	q := SearchQuery{Keywords: "(iphone, ipad)"}
	assert.True(t, q.Valid())

	// Filters without keywords cannot be executed.
	q = SearchQuery{Filters: []string{"price:[10..50]"}}
	assert.False(t, q.Valid())
}
