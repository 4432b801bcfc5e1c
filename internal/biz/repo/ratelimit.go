package repo

import "time"

// RateLimitRepo is the per-sender cooldown table
// Volatile, never persisted
type RateLimitRepo interface {
	// Allowed reports whether the sender is out of cooldown, without recording
	Allowed(senderID int64, now time.Time) bool

	// TryAdmit atomically checks the cooldown and records now on admission
	TryAdmit(senderID int64, now time.Time) bool

	// Sweep removes entries whose cooldown has elapsed
	Sweep(now time.Time) int

	// Len returns the number of tracked senders
	Len() int
}
