package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyBody indicates an email carried no extractable body text.
	ErrEmptyBody = errors.New("email body is empty")

	// ErrNotConfigured indicates an integration is missing required
	// credentials or settings and cannot be used.
	ErrNotConfigured = errors.New("integration not configured")

	// ErrAssistantUnavailable indicates the language model service
	// failed or its response was blocked.
	ErrAssistantUnavailable = errors.New("assistant unavailable")

	// ErrNoSearchQuery indicates no usable marketplace search could be
	// derived from the email.
	ErrNoSearchQuery = errors.New("no search query derived")

	// ErrReplyNotThreadable indicates the original email lacks the
	// headers required to send a threaded reply.
	ErrReplyNotThreadable = errors.New("reply not threadable")

	// ErrWatchExpired indicates the Gmail watch has lapsed and must be
	// re-established before push notifications resume.
	ErrWatchExpired = errors.New("mailbox watch expired")

	// ErrRateLimited indicates an API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
