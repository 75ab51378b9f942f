package ingest

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"reelforge/internal/render"
)

// BatchResult carries every asset a payload needs, ingested concurrently.
type BatchResult struct {
	Sources   []LocalAsset
	Templates map[render.Variant]TemplateAsset
}

// TemplateAsset pairs a downloaded template with its probed metadata.
type TemplateAsset struct {
	Asset    LocalAsset
	Metadata TemplateMetadata
}

// IngestBatch downloads every source and template reference concurrently.
// This fan-out happens strictly before a job record exists, so it never
// competes with the single in-process worker for rendering time — it only
// parallelizes admission.
func (ing *Ingestor) IngestBatch(ctx context.Context, videos []RemoteRef, templates map[render.Variant]RemoteRef) (BatchResult, error) {
	g, gctx := errgroup.WithContext(ctx)

	sources := make([]LocalAsset, len(videos))
	var mu sync.Mutex
	templateAssets := make(map[render.Variant]TemplateAsset, len(templates))

	for i, ref := range videos {
		i, ref := i, ref
		g.Go(func() error {
			asset, err := ing.Ingest(gctx, ref, fmt.Sprintf("source-%d", i))
			if err != nil {
				return err
			}
			sources[i] = asset
			return nil
		})
	}

	for variant, ref := range templates {
		variant, ref := variant, ref
		g.Go(func() error {
			asset, err := ing.Ingest(gctx, ref, "template-"+string(variant))
			if err != nil {
				return err
			}
			meta := ing.ProbeTemplate(gctx, asset.ScratchPath, string(variant))

			mu.Lock()
			templateAssets[variant] = TemplateAsset{Asset: asset, Metadata: meta}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	return BatchResult{Sources: sources, Templates: templateAssets}, nil
}
