package repo

import (
	"github.com/ghostnote/confession-relay/internal/biz/domain"
)

// ReviewRepo is the in-memory side cache of posted reviewable units
type ReviewRepo interface {
	// Put records a freshly posted unit as pending
	Put(review *domain.PendingReview)

	// Get returns the cached review for a unit, if still cached
	Get(handle domain.MessageHandle) (*domain.PendingReview, bool)

	// Transition moves a pending unit to a terminal state.
	// Returns false if the unit is not cached or already decided.
	Transition(handle domain.MessageHandle, state domain.ReviewState) bool

	// Revert puts a unit back to pending after a failed decision
	Revert(handle domain.MessageHandle)

	// Settle marks a decided unit as final; it can no longer be reverted
	Settle(handle domain.MessageHandle)

	// Len returns the number of cached units
	Len() int
}
