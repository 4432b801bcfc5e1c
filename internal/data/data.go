package data

import (
	"time"

	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/infra/openai"
)

// Options sizes the in-memory stores
type Options struct {
	RateLimitCooldown   time.Duration
	RateLimitMaxEntries int
	ReviewCacheSize     int
	ReviewCacheTTL      time.Duration
}

// Repositories contains all repositories
type Repositories struct {
	Gateway    repo.Gateway
	RateLimit  repo.RateLimitRepo
	Review     repo.ReviewRepo
	Classifier repo.ClassifierRepo // nil when disabled
}

// NewRepositories creates all repositories
func NewRepositories(
	telegramClient TelegramAPI,
	classifierClient *openai.Client,
	opts Options,
) (*Repositories, error) {
	rateLimitRepo, err := NewRateLimitRepo(opts.RateLimitCooldown, opts.RateLimitMaxEntries)
	if err != nil {
		return nil, err
	}

	return &Repositories{
		Gateway:    NewTelegramRepo(telegramClient),
		RateLimit:  rateLimitRepo,
		Review:     NewReviewRepo(opts.ReviewCacheSize, opts.ReviewCacheTTL),
		Classifier: NewClassifierRepo(classifierClient),
	}, nil
}
