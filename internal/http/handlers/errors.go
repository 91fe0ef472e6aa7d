// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants map to HTTP responses via the fail() helper and
// give clients a stable, machine-readable taxonomy alongside human-readable
// messages. Generic codes mirror common HTTP status semantics; domain codes
// cover business outcomes a status alone cannot convey (a frozen
// conversation is forbidden, but for a very specific reason clients must be
// able to detect).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeUsernameTaken      = "username_taken"
	ErrCodeAccountBanned      = "account_banned"
	ErrCodeConversationFrozen = "conversation_frozen"
	ErrCodeModelUnconfigured  = "model_unconfigured"
	ErrCodeCreateFailed       = "create_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeStreamFailed       = "stream_failed"
)
