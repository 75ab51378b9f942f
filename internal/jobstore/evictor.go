package jobstore

import (
	"context"
	"time"

	"reelforge/internal/pkg/logger"
)

// RunEvictionSweep periodically removes in-memory records whose FinishedAt
// predates retention, so the job table does not grow unbounded across a
// long-lived process. KV/blob snapshots are left to expire on their own TTL.
// It blocks until ctx is canceled.
func RunEvictionSweep(ctx context.Context, s *Store, interval, retention time.Duration, log *logger.Logger) {
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("jobstore-evictor")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-retention)
			if n := s.EvictFinishedBefore(cutoff); n > 0 {
				log.Info("evicted finished jobs", "count", n, "cutoff", cutoff)
			}
		}
	}
}
