package repo

import "context"

// ClassifierRepo is the optional content classification interface
type ClassifierRepo interface {
	// IsSpam reports whether the text looks like spam or advertising
	IsSpam(ctx context.Context, text string) (bool, error)
}
