package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"
)

// probeOutput mirrors the subset of an ffprobe-style JSON report this
// ingestor relies on: the first video stream's geometry and pixel format.
type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		PixFmt     string `json:"pix_fmt"`
	} `json:"streams"`
}

// ProbeTemplate inspects path with the configured probe binary and derives
// TemplateMetadata. Probing is best-effort: any failure (missing binary,
// malformed output, no video stream) yields the fail-open default of
// HasAlphaChannel=true rather than an error, since overlay ordering is the
// only decision that depends on it and erring toward "template on top" is
// the safer default for a transparent overlay asset.
func (ing *Ingestor) ProbeTemplate(ctx context.Context, path, label string) TemplateMetadata {
	log := ing.log.FromContext(ctx)

	def := TemplateMetadata{HasAlphaChannel: true}
	if ing.probeBin == "" {
		return def
	}

	cmd := exec.CommandContext(ctx, ing.probeBin,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "v:0",
		path,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		log.Warn("template probe failed, defaulting to alpha=true", "label", label, "error", err.Error())
		return def
	}

	var out probeOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil || len(out.Streams) == 0 {
		log.Warn("template probe produced no usable stream, defaulting to alpha=true", "label", label)
		return def
	}

	s := out.Streams[0]
	meta := TemplateMetadata{
		Width:           s.Width,
		Height:          s.Height,
		PixelFormat:     s.PixFmt,
		HasAlphaChannel: hasAlpha(s.PixFmt),
	}
	return meta
}

func hasAlpha(pixFmt string) bool {
	lower := strings.ToLower(pixFmt)
	if lower == "" {
		return true
	}
	for _, marker := range alphaPixelFormats {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return strings.HasSuffix(lower, "a")
}
