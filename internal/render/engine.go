package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"reelforge/internal/pkg/logger"
)

var tracer = otel.Tracer("reelforge/internal/render")

// TemplateMetadata is the subset of probed template properties the engine
// needs to decide overlay ordering and image-vs-video handling.
type TemplateMetadata struct {
	HasAlphaChannel bool
	IsImage         bool
}

// Engine runs the composition pipeline for one source+template+variant.
type Engine struct {
	binary      string
	scratchRoot string
	log         *logger.Logger
}

// Config configures an Engine.
type Config struct {
	Binary      string // path to the media tool (e.g. ffmpeg)
	ScratchRoot string
	Log         *logger.Logger
}

func New(cfg Config) (*Engine, error) {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("render")

	if cfg.Binary == "" {
		return nil, errMissingBinary("")
	}
	if _, err := exec.LookPath(cfg.Binary); err != nil {
		if _, statErr := os.Stat(cfg.Binary); statErr != nil {
			return nil, errMissingBinary(cfg.Binary)
		}
	}

	return &Engine{binary: cfg.Binary, scratchRoot: cfg.ScratchRoot, log: log}, nil
}

// Render composes sourcePath and templatePath for variant and returns the
// scratch path of the resulting MP4.
func (e *Engine) Render(ctx context.Context, sourcePath, templatePath string, variant Variant, meta TemplateMetadata) (string, error) {
	ctx, span := tracer.Start(ctx, "render.Variant", trace.WithAttributes(
		attribute.String("reelforge.variant", string(variant)),
	))
	defer span.End()

	log := e.log.FromContext(ctx)

	geo, ok := GeometryFor(variant)
	if !ok {
		return "", errIOFailure(fmt.Errorf("unknown variant %q", variant), "")
	}

	sourceBase := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	outputName := fmt.Sprintf("%s_%s_%d.mp4", variant, sourceBase, time.Now().UnixMilli())
	outputPath := filepath.Join(e.scratchRoot, outputName)

	spec := CommandSpec{
		Binary:       e.binary,
		SourcePath:   sourcePath,
		TemplatePath: templatePath,
		OutputPath:   outputPath,
		Filter: FilterPlan{
			CanvasWidth:     geo.Width,
			CanvasHeight:    geo.Height,
			PadLeftAligned:  geo.PadLeftAligned,
			TemplateOnTop:   meta.HasAlphaChannel,
			TemplateIsImage: meta.IsImage,
		},
	}

	log.Debug("rendering variant",
		"variant", variant,
		"source", sourcePath,
		"template", templatePath,
		"output", outputPath,
		"templateOnTop", spec.Filter.TemplateOnTop,
	)

	start := time.Now()
	if err := e.run(ctx, spec); err != nil {
		span.RecordError(err)
		return "", err
	}
	log.Info("variant rendered", "variant", variant, "duration_ms", time.Since(start).Milliseconds())

	return outputPath, nil
}

func (e *Engine) run(ctx context.Context, spec CommandSpec) error {
	cmd := exec.CommandContext(ctx, spec.Binary, spec.Argv()...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := tailLines(stderr.String(), 20)
		return errPipelineFailed(err, tail)
	}

	if _, err := os.Stat(spec.OutputPath); err != nil {
		return errIOFailure(err, spec.OutputPath)
	}

	return nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
