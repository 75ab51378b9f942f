package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"reelforge/internal/httpkit"
)

// GetProcess handles GET /process/{jobId}: returns the full snapshot of a
// job, or 404 if it resolves in none of the in-memory table, the KV cache,
// or the blob store.
func (h *Handler) GetProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := chi.URLParam(r, "jobId")

	rec, ok := h.store.Get(ctx, jobID)
	if !ok {
		httpkit.WriteErr(w, 404, "NOT_FOUND", "job not found", map[string]any{"jobId": jobID})
		return
	}

	httpkit.WriteJSON(w, 200, h.snapshot(jobID, rec, rec.Owner))
}
