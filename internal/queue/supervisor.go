package queue

import (
	"context"
	"fmt"
	"time"

	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/logger"
)

const (
	defaultStallThreshold   = 2
	defaultBreakerCooldown  = 60 * time.Second
	minStalledJobTimeout    = 3 * time.Minute
	stalledTimeoutFactor    = 4
)

// Supervisor detects stuck jobs and trips a circuit breaker on repeated
// stalls. It runs opportunistically: Tick is called on every enqueue rather
// than on an independent timer.
type Supervisor struct {
	state           *State
	store           *jobstore.Store
	stallThreshold  int
	breakerCooldown time.Duration
	log             *logger.Logger
}

func NewSupervisor(state *State, store *jobstore.Store, stallThreshold int, breakerCooldown time.Duration, log *logger.Logger) *Supervisor {
	if stallThreshold <= 0 {
		stallThreshold = defaultStallThreshold
	}
	if breakerCooldown <= 0 {
		breakerCooldown = defaultBreakerCooldown
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &Supervisor{
		state:           state,
		store:           store,
		stallThreshold:  stallThreshold,
		breakerCooldown: breakerCooldown,
		log:             log.WithComponent("supervisor"),
	}
}

// Tick checks the currently processing job against the stall timeout and
// manages the circuit breaker's cooldown. It must run before a worker start
// is attempted.
func (sup *Supervisor) Tick(ctx context.Context) {
	sup.checkStall(ctx)
	sup.checkCooldown()
}

func (sup *Supervisor) stallTimeout() time.Duration {
	timeout := sup.state.AvgDuration() * stalledTimeoutFactor
	if timeout < minStalledJobTimeout {
		return minStalledJobTimeout
	}
	return timeout
}

func (sup *Supervisor) checkStall(ctx context.Context) {
	id := sup.state.ProcessingID()
	if id == "" {
		return
	}

	elapsed := sup.state.ProcessingElapsed()
	timeout := sup.stallTimeout()
	if elapsed < timeout {
		return
	}

	log := sup.log.WithJobID(id)
	log.Error("job exceeded stall timeout, aborting", "elapsed_s", elapsed.Seconds(), "timeout_s", timeout.Seconds())

	finishedAt := time.Now().UTC()
	rec, ok := sup.store.Update(ctx, id, func(r *jobstore.JobRecord) {
		r.Status = jobstore.StatusFailed
		r.Error = fmt.Sprintf("job exceeded %d seconds, aborted by supervisor", int(timeout.Seconds()))
		r.FinishedAt = &finishedAt
	})
	if ok {
		cleanupScratch(rec.Payload, log)
	}

	sup.state.cancelProcessing()
	sup.state.clearProcessing()
	sup.state.bumpGeneration()
	sup.recordStall()
}

func (sup *Supervisor) recordStall() {
	sup.state.mu.Lock()
	sup.state.stallCount++
	count := sup.state.stallCount
	if count >= sup.stallThreshold && sup.state.breakerOpenAt == nil {
		now := time.Now()
		sup.state.breakerOpenAt = &now
		sup.log.Warn("circuit breaker opened", "consecutiveStalls", count)
	}
	sup.state.mu.Unlock()
}

func (sup *Supervisor) checkCooldown() {
	sup.state.mu.Lock()
	openAt := sup.state.breakerOpenAt
	sup.state.mu.Unlock()

	if openAt == nil {
		return
	}
	if time.Since(*openAt) >= sup.breakerCooldown {
		sup.state.resetBreaker()
		sup.log.Info("circuit breaker closed after cooldown")
	}
}

// BreakerOpen reports whether the worker should be withheld from restarting.
func (sup *Supervisor) BreakerOpen() bool {
	sup.state.mu.Lock()
	defer sup.state.mu.Unlock()
	return sup.state.breakerOpenAt != nil
}
