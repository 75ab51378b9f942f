package httpapi

import (
	"context"
	"net/http"
	"time"

	"reelforge/internal/httpkit"
)

// Health handles GET /health. A plain request returns a liveness snapshot;
// ?deep=true also pings the optional KV cache and history sink and reports
// the configured blob store provider (without contacting it); none of these
// tiers is required for the service to accept jobs.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":        "ok",
		"service":       "reelforge-api",
		"queueDepth":    h.state.PendingLen(),
		"processing":    h.state.ProcessingID() != "",
		"breakerOpen":   h.supervisor.BreakerOpen(),
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := map[string]any{
			"redis":   h.checkRedis(ctx),
			"postgres": h.checkPostgres(ctx),
			"storage": h.checkStorage(),
		}
		health["checks"] = checks

		for _, check := range checks {
			if m, ok := check.(map[string]any); ok && m["status"] != "ok" {
				health["status"] = "degraded"
				break
			}
		}
	}

	httpkit.WriteJSON(w, 200, health)
}

func (h *Handler) checkRedis(ctx context.Context) map[string]any {
	if h.rdb == nil {
		return map[string]any{"status": "disabled"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	result := map[string]any{"status": "ok"}
	if err := h.rdb.Ping(checkCtx).Err(); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkPostgres(ctx context.Context) map[string]any {
	if h.pool == nil {
		return map[string]any{"status": "disabled"}
	}
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	result := map[string]any{"status": "ok"}
	if err := h.pool.Ping(checkCtx); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}
	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}

func (h *Handler) checkStorage() map[string]any {
	if h.sp == nil {
		return map[string]any{"status": "disabled"}
	}
	return map[string]any{"status": "ok", "provider": h.sp.Provider()}
}
