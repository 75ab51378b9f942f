package httpapi

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"reelforge/internal/httpkit"
	"reelforge/internal/pkg/middleware"
)

// NewRouter mounts the render-job HTTP surface: health, enqueue, and status.
// The external download/archive endpoints described alongside these live in
// a separate collaborator service and are not mounted here. The whole
// surface is wrapped in an otelhttp span so every request carries a trace.
// Renders run later on the worker's own context, so the Render Engine's
// spans are not children of these request spans.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(h.log))
	r.Use(middleware.Logging(h.log))
	r.Use(middleware.Timeout(90 * time.Second))

	allowedOrigins := envCSV("CORS_ALLOWED_ORIGINS", []string{
		"http://localhost:8081",
		"http://localhost:5173",
	})
	r.Use(httpkit.CORS(httpkit.CORSOptions{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAgeSeconds:    600,
	}))

	r.Get("/health", h.Health)
	r.Post("/process", h.PostProcess)
	r.Get("/process/{jobId}", h.GetProcess)

	return otelhttp.NewHandler(r, "reelforge-api")
}

func envCSV(key string, def []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
