package httpapi

import (
	"reelforge/internal/jobstore"
)

// snapshot builds the wire response for rec, filling in the queue-position
// and estimated-wait fields that live in queue.State rather than the job
// record itself.
func (h *Handler) snapshot(jobID string, rec *jobstore.JobRecord, owner string) jobResponse {
	position := h.state.QueuePosition(jobID)
	elapsed := h.state.ProcessingElapsed()
	ahead := position - 1
	if ahead < 0 {
		ahead = 0
	}
	waitMs := h.state.EstimatedWaitMs(string(rec.Status), ahead, elapsed)
	avgMs := h.state.AvgDuration().Milliseconds()

	resp := jobResponse{
		JobID:                     rec.ID,
		Status:                    string(rec.Status),
		Progress:                  rec.Progress,
		QueuePosition:             position,
		EstimatedWaitMs:           waitMs,
		EstimatedWaitSeconds:      waitMs / 1000,
		AverageJobDurationMs:      avgMs,
		AverageJobDurationSeconds: avgMs / 1000,
		OwnerActiveJobs:           h.store.CountActive(owner),
		OwnerJobLimit:             h.fairness.Limit(),
		Metrics: jobMetrics{
			CompletedVariants: rec.CompletedVariants,
			TotalVariants:     rec.TotalVariants,
		},
		CreatedAt: rec.CreatedAt.Format(timeFormat),
		UpdatedAt: rec.UpdatedAt.Format(timeFormat),
		Error:     rec.Error,
	}

	if len(rec.Result) > 0 {
		resp.Result = make([]resultItem, len(rec.Result))
		for i, a := range rec.Result {
			resp.Result[i] = resultItem{Variant: a.Variant, Filename: a.Filename, URL: a.URL}
		}
	}

	return resp
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"
