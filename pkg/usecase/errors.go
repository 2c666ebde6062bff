package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Token errors. Both require a new manual authorization through /token.
	ErrNoRefreshToken = errors.New("no refresh token stored")
	ErrRefreshFailed  = errors.New("failed to refresh access token")

	// ErrIncompleteGrant is returned when the provider does not issue both tokens
	ErrIncompleteGrant = errors.New("provider did not issue both tokens")

	// Request errors
	ErrMissingRequestID      = errors.New("Missing request ID")
	ErrApprovalNotConfigured = errors.New("approval API is not configured")

	// ErrUpstreamStatus is returned when a downstream reply cannot be used for a summary
	ErrUpstreamStatus = errors.New("downstream API returned an error status")
)

// Context keys for error values
const (
	CallIDKey    = "call_id"
	OperationKey = "operation"
	StatusKey    = "status"
)
