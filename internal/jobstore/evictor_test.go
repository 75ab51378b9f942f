package jobstore

import (
	"context"
	"testing"
	"time"
)

func TestRunEvictionSweepRemovesStaleFinishedJobs(t *testing.T) {
	s := New(Config{})
	old := time.Now().Add(-time.Hour)
	s.Create(context.Background(), &JobRecord{ID: "stale", Status: StatusCompleted, FinishedAt: &old})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go RunEvictionSweep(ctx, s, 10*time.Millisecond, 30*time.Minute, nil)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := s.Get(context.Background(), "stale"); !ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("expected sweep to evict the stale finished job within the deadline")
}
