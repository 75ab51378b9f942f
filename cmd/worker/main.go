// Command renderprobe exercises the Asset Ingestor and Render Engine
// directly against a single source+template pair, without going through
// the HTTP surface or the in-memory queue. It exists for manual testing of
// the composition pipeline against a real ffmpeg/ffprobe installation.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"reelforge/internal/config"
	"reelforge/internal/ingest"
	"reelforge/internal/pkg/logger"
	"reelforge/internal/render"
)

func main() {
	sourceURL := flag.String("source", "", "URL of the source video")
	templateURL := flag.String("template", "", "URL of the template asset")
	variant := flag.String("variant", "vertical", "output variant: vertical, square, or landscape")
	flag.Parse()

	if *sourceURL == "" || *templateURL == "" {
		fmt.Fprintln(os.Stderr, "usage: renderprobe -source <url> -template <url> [-variant vertical|square|landscape]")
		os.Exit(2)
	}

	v := render.Variant(*variant)
	if _, ok := render.GeometryFor(v); !ok {
		fmt.Fprintf(os.Stderr, "unknown variant %q\n", *variant)
		os.Exit(2)
	}

	log := logger.New(logger.Config{
		Level:       "debug",
		Format:      "text",
		ServiceName: "reelforge-renderprobe",
	})

	scratchRoot := config.Env("SCRATCH_ROOT", "/tmp/reelforge-scratch")
	if err := os.MkdirAll(scratchRoot, 0o755); err != nil {
		log.LogFatal("failed to create scratch directory", err)
	}

	ingestor := ingest.New(ingest.Config{
		ScratchRoot:   scratchRoot,
		AllowInsecure: config.BoolEnv("INGEST_ALLOW_INSECURE", true),
		ProbeBin:      config.Env("FFPROBE_BIN", "ffprobe"),
		Log:           log,
	})

	engine, err := render.New(render.Config{
		Binary:      config.Env("FFMPEG_BIN", "ffmpeg"),
		ScratchRoot: scratchRoot,
		Log:         log,
	})
	if err != nil {
		log.LogFatal("failed to initialize render engine", err)
	}

	ctx := context.Background()

	source, err := ingestor.Ingest(ctx, ingest.RemoteRef{URL: *sourceURL, OriginalName: "source"}, "probe-source")
	if err != nil {
		log.LogFatal("source ingest failed", err)
	}

	template, err := ingestor.Ingest(ctx, ingest.RemoteRef{URL: *templateURL, OriginalName: "template"}, "probe-template")
	if err != nil {
		log.LogFatal("template ingest failed", err)
	}
	probed := ingestor.ProbeTemplate(ctx, template.ScratchPath, string(v))

	outputPath, err := engine.Render(ctx, source.ScratchPath, template.ScratchPath, v, render.TemplateMetadata{
		HasAlphaChannel: probed.HasAlphaChannel,
	})
	if err != nil {
		log.LogFatal("render failed", err)
	}

	fmt.Println(outputPath)
}
