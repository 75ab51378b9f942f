package queue

import (
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/errors"
)

const KindTooManyActiveJobs = "TooManyActiveJobs"

// FairnessLimiter enforces a soft admission cap: an owner with too many
// in-flight jobs cannot enqueue more until some finish. It is an admission
// control, not a rate limit over time.
type FairnessLimiter struct {
	store          *jobstore.Store
	maxActivePerOwner int
}

func NewFairnessLimiter(store *jobstore.Store, maxActivePerOwner int) *FairnessLimiter {
	if maxActivePerOwner <= 0 {
		maxActivePerOwner = 2
	}
	return &FairnessLimiter{store: store, maxActivePerOwner: maxActivePerOwner}
}

// CheckCap returns a TooManyActiveJobs error if owner already has
// maxActivePerOwner jobs pending or processing.
func (f *FairnessLimiter) CheckCap(owner string) error {
	active := f.store.CountActive(owner)
	if active >= f.maxActivePerOwner {
		return errors.New(errors.CodeResourceExhaust, "too many active jobs for this owner").
			WithField("kind", KindTooManyActiveJobs).
			WithField("ownerActiveJobs", active).
			WithField("ownerJobLimit", f.maxActivePerOwner)
	}
	return nil
}

// Limit returns the configured per-owner cap.
func (f *FairnessLimiter) Limit() int { return f.maxActivePerOwner }
