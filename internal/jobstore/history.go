package jobstore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"reelforge/internal/pkg/logger"
)

// HistoryEntry is a terminal-state snapshot recorded for analytics. It is
// explicitly not the authoritative job store: this table exists so operators
// can query throughput after the in-memory table evicts old jobs.
type HistoryEntry struct {
	JobID             string
	Owner             string
	Status            Status
	TotalVariants     int
	CompletedVariants int
	CreatedAt         time.Time
	StartedAt         *time.Time
	FinishedAt        *time.Time
	DurationMs        int64
	ErrorMessage      string
}

// HistoryRecorder writes terminal job snapshots to Postgres, fire-and-forget.
// A nil pool disables recording entirely without affecting the render path.
type HistoryRecorder struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewHistoryRecorder(pool *pgxpool.Pool, log *logger.Logger) *HistoryRecorder {
	if log == nil {
		log = logger.NewDefault()
	}
	return &HistoryRecorder{pool: pool, log: log.WithComponent("job-history")}
}

// EnsureSchema creates the job_history table if it does not already exist.
func (h *HistoryRecorder) EnsureSchema(ctx context.Context) error {
	if h.pool == nil {
		return nil
	}
	_, err := h.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS job_history (
			job_id             TEXT PRIMARY KEY,
			owner              TEXT NOT NULL,
			status             TEXT NOT NULL,
			total_variants     INT NOT NULL,
			completed_variants INT NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL,
			started_at         TIMESTAMPTZ,
			finished_at        TIMESTAMPTZ,
			duration_ms        BIGINT NOT NULL,
			error_message      TEXT
		)
	`)
	return err
}

// Record persists entry. Failures are logged and swallowed: history is a
// best-effort sink, never a dependency of the render path.
func (h *HistoryRecorder) Record(ctx context.Context, entry HistoryEntry) {
	if h.pool == nil {
		return
	}

	_, err := h.pool.Exec(ctx, `
		INSERT INTO job_history
			(job_id, owner, status, total_variants, completed_variants, created_at, started_at, finished_at, duration_ms, error_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NULLIF($10,''))
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			completed_variants = EXCLUDED.completed_variants,
			finished_at = EXCLUDED.finished_at,
			duration_ms = EXCLUDED.duration_ms,
			error_message = EXCLUDED.error_message
	`,
		entry.JobID, entry.Owner, string(entry.Status), entry.TotalVariants, entry.CompletedVariants,
		entry.CreatedAt, entry.StartedAt, entry.FinishedAt, entry.DurationMs, entry.ErrorMessage,
	)
	if err != nil {
		h.log.Warn("job history write failed", "jobId", entry.JobID, "error", err.Error())
	}
}

// RecordAsync persists entry on a detached context with its own timeout, so
// a slow or unavailable database never blocks the worker loop.
func (h *HistoryRecorder) RecordAsync(entry HistoryEntry) {
	if h.pool == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.Record(ctx, entry)
	}()
}
