package data

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/ghostnote/confession-relay/internal/biz/domain"
	"github.com/ghostnote/confession-relay/internal/biz/repo"
)

// reviewRepo implements the review side cache on an expiring LRU.
// Entries are lost on restart; decisions then fall back to the rendered unit.
type reviewRepo struct {
	mu      sync.Mutex
	reviews *expirable.LRU[domain.MessageHandle, *domain.PendingReview]
}

// NewReviewRepo creates a review cache of the given capacity and entry lifetime
func NewReviewRepo(capacity int, ttl time.Duration) repo.ReviewRepo {
	return &reviewRepo{
		reviews: expirable.NewLRU[domain.MessageHandle, *domain.PendingReview](capacity, nil, ttl),
	}
}

// Put records a freshly posted unit
func (r *reviewRepo) Put(review *domain.PendingReview) {
	if review == nil || review.Handle.IsZero() {
		return
	}
	entry := *review
	if entry.State == "" {
		entry.State = domain.ReviewPending
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews.Add(entry.Handle, &entry)
}

// Get returns a copy of the cached review
func (r *reviewRepo) Get(handle domain.MessageHandle) (*domain.PendingReview, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews.Peek(handle)
	if !ok {
		return nil, false
	}
	cp := *review
	return &cp, true
}

// Transition claims a pending unit. Only the first caller wins.
func (r *reviewRepo) Transition(handle domain.MessageHandle, state domain.ReviewState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews.Peek(handle)
	if !ok || review.State.IsTerminal() {
		return false
	}
	review.State = state
	return true
}

// Revert returns a claimed, unsettled unit to pending
func (r *reviewRepo) Revert(handle domain.MessageHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review, ok := r.reviews.Peek(handle); ok && !review.Settled {
		review.State = domain.ReviewPending
	}
}

// Settle marks a decided unit final
func (r *reviewRepo) Settle(handle domain.MessageHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review, ok := r.reviews.Peek(handle); ok && review.State.IsTerminal() {
		review.Settled = true
	}
}

// Len returns the number of cached units
func (r *reviewRepo) Len() int {
	return r.reviews.Len()
}
