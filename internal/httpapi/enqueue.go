package httpapi

import (
	"net/http"
	"strings"
	"time"

	"reelforge/internal/fingerprint"
	"reelforge/internal/httpkit"
	"reelforge/internal/idgen"
	"reelforge/internal/ingest"
	"reelforge/internal/jobstore"
	"reelforge/internal/pkg/errors"
	"reelforge/internal/render"
)

// PostProcess handles POST /process: validates the payload, ingests every
// referenced asset concurrently, admits the job, and kicks the worker.
func (h *Handler) PostProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	owner := fingerprint.Owner(r)
	log := h.log.WithFields(map[string]any{"owner": owner})

	var req enqueueRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "invalid json body", nil)
		return
	}

	if len(req.Videos) == 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "videos must contain at least one entry", nil)
		return
	}
	if len(req.Templates) == 0 {
		httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "templates must contain at least one entry", nil)
		return
	}

	templates := make(map[render.Variant]ingest.RemoteRef, len(req.Templates))
	for key, t := range req.Templates {
		variant := render.Variant(strings.ToLower(strings.TrimSpace(key)))
		if _, ok := render.GeometryFor(variant); !ok {
			httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "unknown template variant: "+key, map[string]any{"field": "templates." + key})
			return
		}
		templates[variant] = ingest.RemoteRef{
			URL: t.URL, OriginalName: t.OriginalName, Size: t.Size, MimeType: t.MimeType,
		}
	}

	videos := make([]ingest.RemoteRef, len(req.Videos))
	for i, v := range req.Videos {
		if strings.TrimSpace(v.URL) == "" {
			httpkit.WriteErr(w, 400, "VALIDATION_ERROR", "videos[].url is required", nil)
			return
		}
		videos[i] = ingest.RemoteRef{URL: v.URL, OriginalName: v.OriginalName, Size: v.Size, MimeType: v.MimeType}
	}

	if err := h.fairness.CheckCap(owner); err != nil {
		writeAppError(w, err)
		return
	}

	batch, err := h.ingestor.IngestBatch(ctx, videos, templates)
	if err != nil {
		log.Error("ingest batch failed", "error", err.Error())
		writeAppError(w, err)
		return
	}

	payload := jobstore.Payload{
		Sources:   make([]jobstore.SourceVideoRef, len(batch.Sources)),
		Templates: make(map[string]jobstore.TemplateRef, len(batch.Templates)),
	}
	for i, a := range batch.Sources {
		payload.Sources[i] = jobstore.SourceVideoRef{ScratchPath: a.ScratchPath, OriginalName: a.OriginalName}
	}

	for variant, asset := range batch.Templates {
		payload.Templates[string(variant)] = jobstore.TemplateRef{
			Variant:      string(variant),
			ScratchPath:  asset.Asset.ScratchPath,
			OriginalName: asset.Asset.OriginalName,
			Metadata: jobstore.TemplateMetadata{
				HasAlphaChannel: asset.Metadata.HasAlphaChannel,
				Width:           asset.Metadata.Width,
				Height:          asset.Metadata.Height,
				PixelFormat:     asset.Metadata.PixelFormat,
			},
		}
	}

	now := time.Now().UTC()
	totalVariants := len(payload.Sources) * len(payload.Templates)
	rec := &jobstore.JobRecord{
		ID:            idgen.NewJobID(),
		Owner:         owner,
		Status:        jobstore.StatusPending,
		Progress:      0,
		CreatedAt:     now,
		UpdatedAt:     now,
		TotalVariants: totalVariants,
		Payload:       payload,
	}
	h.store.Create(ctx, rec)
	initial := rec.Clone()
	h.state.Enqueue(rec.ID)

	h.supervisor.Tick(ctx)
	h.worker.EnsureRunning()

	log.Info("job enqueued", "jobId", rec.ID, "totalVariants", totalVariants)
	httpkit.WriteJSON(w, 200, h.snapshot(rec.ID, initial, owner))
}

func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errors.Error
	if errors.As(err, &appErr) {
		details := map[string]any{}
		for k, v := range appErr.Fields {
			details[k] = v
		}
		code := string(appErr.Code)
		if kind, ok := appErr.Fields["kind"].(string); ok {
			code = kind
		}
		httpkit.WriteErr(w, appErr.HTTPStatus(), code, appErr.Message, details)
		return
	}
	httpkit.WriteErr(w, 500, "INTERNAL_ERROR", err.Error(), nil)
}
