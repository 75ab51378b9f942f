package queue

import (
	"context"
	"math"
	"os"
	"sync"
	"time"

	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/render"
)

// renderFunc matches render.Engine.Render, extracted as a type so tests can
// substitute a fake renderer without shelling out to a real media tool.
type renderFunc func(ctx context.Context, sourcePath, templatePath string, variant render.Variant, meta render.TemplateMetadata) (string, error)

// Worker drives jobs through the pending -> processing -> {completed,failed}
// machine. At most one instance of its loop runs at a time; starting it is
// idempotent.
type Worker struct {
	ctx context.Context

	mu      sync.Mutex
	running bool

	state       *State
	store       *jobstore.Store
	history     *jobstore.HistoryRecorder
	render      renderFunc
	breakerOpen func() bool
	log         *logger.Logger
}

// NewWorker builds a Worker bound to ctx for its entire process lifetime:
// ctx governs the background loop, independent of any single HTTP request
// that happens to trigger EnsureRunning.
func NewWorker(ctx context.Context, state *State, store *jobstore.Store, engine *render.Engine, history *jobstore.HistoryRecorder, sup *Supervisor, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Worker{
		ctx:         ctx,
		state:       state,
		store:       store,
		history:     history,
		render:      engine.Render,
		breakerOpen: sup.BreakerOpen,
		log:         log.WithComponent("worker"),
	}
}

// EnsureRunning starts the worker loop if it is not already running and the
// circuit breaker is not open. Idempotent: a worker already draining the
// queue absorbs this call; newly enqueued jobs still join the pending
// sequence even while the breaker withholds a restart.
func (w *Worker) EnsureRunning() {
	if w.breakerOpen() {
		return
	}

	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.loop()
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		default:
		}

		id, generation, ok := w.state.popNext()
		if !ok {
			// Re-check under w.mu so a job enqueued after popNext came back
			// empty, whose EnsureRunning saw running=true, is still drained.
			w.mu.Lock()
			if w.state.PendingLen() > 0 {
				w.mu.Unlock()
				continue
			}
			w.running = false
			w.mu.Unlock()
			return
		}
		w.processJob(w.ctx, id, generation)
	}
}

func (w *Worker) processJob(parent context.Context, jobID string, generation uint64) {
	log := w.log.WithJobID(jobID)

	rec, ok := w.store.Get(parent, jobID)
	if !ok {
		log.Warn("popped job no longer resolves, skipping")
		w.state.clearProcessing()
		return
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	w.state.setProcessingCancel(cancel)

	startedAt := time.Now().UTC()
	w.store.Update(ctx, jobID, func(r *jobstore.JobRecord) {
		r.Status = jobstore.StatusProcessing
		r.StartedAt = &startedAt
		r.Progress = 5
	})

	pairs := renderPairs(rec.Payload)
	total := len(pairs)
	log.Info("processing job", "totalVariants", total)

	results := make([]jobstore.OutputArtifact, 0, total)
	var failure error

	for _, pair := range pairs {
		if w.state.Generation() != generation {
			log.Warn("worker generation fenced mid-job, aborting")
			return
		}

		meta := render.TemplateMetadata{
			HasAlphaChannel: pair.template.Metadata.HasAlphaChannel,
			IsImage:         isImagePath(pair.template.ScratchPath),
		}

		outputPath, err := w.render(ctx, pair.source.ScratchPath, pair.template.ScratchPath, render.Variant(pair.template.Variant), meta)
		if err != nil {
			failure = err
			break
		}

		results = append(results, jobstore.OutputArtifact{
			Variant:  pair.template.Variant,
			Filename: baseName(outputPath),
			URL:      "/output/" + baseName(outputPath),
		})

		completed := len(results)
		progress := int(math.Min(99, math.Round(float64(completed)/float64(total)*100)))
		w.store.Update(ctx, jobID, func(r *jobstore.JobRecord) {
			r.CompletedVariants = completed
			r.Progress = progress
		})
	}

	if w.state.Generation() != generation {
		// The supervisor already declared this job stuck, wrote its own
		// failure snapshot, and cleaned up scratch files; do not clobber it.
		log.Warn("worker generation fenced after render loop, discarding local result")
		return
	}

	finishedAt := time.Now().UTC()
	duration := finishedAt.Sub(startedAt)

	var final *jobstore.JobRecord
	if failure != nil {
		final, _ = w.store.Update(ctx, jobID, func(r *jobstore.JobRecord) {
			r.Status = jobstore.StatusFailed
			r.Error = failure.Error()
			r.FinishedAt = &finishedAt
			r.TotalVariants = total
		})
		log.Error("job failed", "error", failure.Error(), "duration_ms", duration.Milliseconds())
	} else {
		final, _ = w.store.Update(ctx, jobID, func(r *jobstore.JobRecord) {
			r.Status = jobstore.StatusCompleted
			r.Progress = 100
			r.Result = results
			r.FinishedAt = &finishedAt
			r.TotalVariants = total
			r.CompletedVariants = total
		})
		w.state.recordDuration(duration)
		w.state.resetBreaker()
		log.Info("job completed", "duration_ms", duration.Milliseconds())
	}

	cleanupScratch(rec.Payload, log)
	w.state.clearProcessing()

	if final != nil && w.history != nil {
		w.history.RecordAsync(jobstore.HistoryEntry{
			JobID:             final.ID,
			Owner:             rec.Owner,
			Status:            final.Status,
			TotalVariants:     final.TotalVariants,
			CompletedVariants: final.CompletedVariants,
			CreatedAt:         final.CreatedAt,
			StartedAt:         final.StartedAt,
			FinishedAt:        final.FinishedAt,
			DurationMs:        duration.Milliseconds(),
			ErrorMessage:      final.Error,
		})
	}
}

type renderPair struct {
	source   jobstore.SourceVideoRef
	template jobstore.TemplateRef
}

// renderPairs enumerates source x template combinations in the fixed
// execution order: variants in {vertical, square, landscape} order,
// intersected with templates present, applied to sources in upload order.
func renderPairs(p jobstore.Payload) []renderPair {
	var pairs []renderPair
	for _, v := range render.AllVariants {
		tpl, ok := p.Templates[string(v)]
		if !ok {
			continue
		}
		for _, src := range p.Sources {
			pairs = append(pairs, renderPair{source: src, template: tpl})
		}
	}
	return pairs
}

func cleanupScratch(p jobstore.Payload, log *logger.Logger) {
	for _, src := range p.Sources {
		removeScratch(src.ScratchPath, log)
	}
	for _, tpl := range p.Templates {
		removeScratch(tpl.ScratchPath, log)
	}
}

func removeScratch(path string, log *logger.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("scratch cleanup failed", "path", path, "error", err.Error())
	}
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

func isImagePath(path string) bool {
	ext := ""
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			ext = path[i:]
			break
		}
		if path[i] == '/' {
			break
		}
	}
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".gif", ".bmp":
		return true
	default:
		return false
	}
}
