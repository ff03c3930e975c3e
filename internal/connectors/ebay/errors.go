package ebay

import (
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the eBay API.
type APIError struct {
	// StatusCode is the HTTP status.
	StatusCode int
	// Body is the raw response body, truncated for logging.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ebay api error: status %d: %s", e.StatusCode, e.Body)
}

// IsAPIError reports whether err is an eBay API error and returns it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
