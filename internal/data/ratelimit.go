package data

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ghostnote/confession-relay/internal/biz/repo"
)

// rateLimitRepo implements the per-sender cooldown table on a bounded LRU.
// When the table is full the least recently admitted sender is evicted,
// which can only ever admit a sender early, never block one wrongly.
type rateLimitRepo struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     *lru.Cache[int64, time.Time]
}

// NewRateLimitRepo creates a cooldown table holding at most maxEntries senders
func NewRateLimitRepo(cooldown time.Duration, maxEntries int) (repo.RateLimitRepo, error) {
	cache, err := lru.New[int64, time.Time](maxEntries)
	if err != nil {
		return nil, err
	}
	return &rateLimitRepo{cooldown: cooldown, last: cache}, nil
}

// Allowed peeks at the table without recording or touching recency
func (r *rateLimitRepo) Allowed(senderID int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, ok := r.last.Peek(senderID)
	return !ok || now.Sub(last) >= r.cooldown
}

// TryAdmit checks and records in one step so concurrent submissions from
// the same sender admit at most one
func (r *rateLimitRepo) TryAdmit(senderID int64, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if last, ok := r.last.Peek(senderID); ok && now.Sub(last) < r.cooldown {
		return false
	}
	r.last.Add(senderID, now)
	return true
}

// Sweep drops senders whose cooldown has elapsed
func (r *rateLimitRepo) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for _, id := range r.last.Keys() {
		last, ok := r.last.Peek(id)
		if ok && now.Sub(last) >= r.cooldown {
			r.last.Remove(id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked senders
func (r *rateLimitRepo) Len() int {
	return r.last.Len()
}
