package service

import "errors"

const (
	// Sync pagination
	SyncPageSize = 100

	// Chart span for the load-trend sparkline
	ChartWeeks = 12
)

// Validation errors for incoming sessions
var (
	ErrNegativeDuration = errors.New("duration must not be negative")
	ErrRatingOutOfRange = errors.New("perceived exertion must be between 0 and 10")
	ErrMissingDay       = errors.New("execution day is required")
)

// ErrUnauthorized marks API calls rejected for missing or revoked credentials
var ErrUnauthorized = errors.New("coaching API rejected the credentials; run 'trainload login'")
