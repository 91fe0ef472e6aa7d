// Package services defines the business logic for authentication,
// conversations, chat turns, suggested questions, settings, and the admin
// surface. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

// Authentication errors.
var (
	// ErrUsernameTaken is returned when registering with an existing username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials is returned when a login attempt fails.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserBanned is returned when a banned account attempts to log in or
	// call an authenticated endpoint.
	ErrUserBanned = errors.New("this account has been banned")

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrAdminImmutable is returned when an admin account is targeted by a
	// ban or delete operation.
	ErrAdminImmutable = errors.New("admin accounts cannot be banned or deleted")
)

// Conversation errors.
var (
	// ErrConversationNotFound indicates that the requested conversation does
	// not exist.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrConversationForbidden is returned when a user touches a conversation
	// they do not own.
	ErrConversationForbidden = errors.New("no access to this conversation")

	// ErrConversationFrozen is returned when appending a turn to a
	// conversation sealed by a model-configuration change.
	ErrConversationFrozen = errors.New("the system model has changed; start a new conversation")

	// ErrEmptyPrompt is returned when a chat turn carries an empty prompt.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrTooLong is returned when a chat turn exceeds the configured
	// maximum length.
	ErrTooLong = errors.New("prompt too long")
)

// Configuration errors.
var (
	// ErrAPIKeyMissing is returned when no LLM credential is configured for
	// the requested operation.
	ErrAPIKeyMissing = errors.New("no LLM API key is configured; contact an administrator")
)
