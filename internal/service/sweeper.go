package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ghostnote/confession-relay/internal/biz/repo"
	"github.com/ghostnote/confession-relay/internal/metrics"
)

// Sweeper periodically drops expired rate limiter entries
type Sweeper struct {
	rateLimitRepo repo.RateLimitRepo
	interval      time.Duration
	logger        *slog.Logger

	now    func() time.Time
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper creates a new sweeper
func NewSweeper(rateLimitRepo repo.RateLimitRepo, interval time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		rateLimitRepo: rateLimitRepo,
		interval:      interval,
		logger:        logger.With("component", "sweeper"),
		now:           time.Now,
	}
}

// Start starts the sweep loop
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("started", "interval", s.interval)
}

// Stop stops the sweep loop and waits for it to exit
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep runs one pass
func (s *Sweeper) Sweep() int {
	removed := s.rateLimitRepo.Sweep(s.now())
	metrics.RateLimitEntriesGauge.Set(float64(s.rateLimitRepo.Len()))
	if removed > 0 {
		s.logger.Debug("swept rate limit entries", "removed", removed, "remaining", s.rateLimitRepo.Len())
	}
	return removed
}
