package domain

import "errors"

var (
	// ErrInvalidLength is returned for empty submissions or text outside the length bounds
	ErrInvalidLength = errors.New("invalid submission length")

	// ErrCaptionTooLong is returned when a photo caption would not fit once framed for review
	ErrCaptionTooLong = errors.New("photo caption too long")

	// ErrRateLimited is returned while the sender is still cooling down
	ErrRateLimited = errors.New("sender is rate limited")

	// ErrSuspiciousContent marks submissions dropped without a reply
	ErrSuspiciousContent = errors.New("suspicious content")

	// ErrMalformedDecision is returned for decision tokens that fail to parse
	ErrMalformedDecision = errors.New("malformed decision token")

	// ErrAlreadyDecided is returned when a reviewable unit already reached a terminal state
	ErrAlreadyDecided = errors.New("reviewable unit already decided")

	// ErrDestinationUnavailable is returned when publishing to the public channel fails
	ErrDestinationUnavailable = errors.New("publication destination unavailable")
)
