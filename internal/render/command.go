package render

import "fmt"

// CommandSpec is a typed description of one media-tool invocation, rendered
// to an argv slice by a pure function so the filter-graph construction can
// be unit tested without ever shelling out. Only Engine.run turns a
// CommandSpec into a live subprocess.
type CommandSpec struct {
	Binary       string
	SourcePath   string
	TemplatePath string
	OutputPath   string
	Filter       FilterPlan
}

// FilterPlan is the resolved scale/pad/overlay parameters for one render.
type FilterPlan struct {
	CanvasWidth     int
	CanvasHeight    int
	PadLeftAligned  bool
	TemplateOnTop   bool
	TemplateIsImage bool
}

// Argv renders the command spec to a literal argument list for the media
// tool. The filter graph has two input labels: [0:v] is the source video,
// [1:v] is the template. Scaling uses Lanczos; padding carries SAR=1 so
// downstream concatenation/overlay never fights aspect-ratio metadata.
func (c CommandSpec) Argv() []string {
	f := c.Filter

	sourceChain := fmt.Sprintf(
		"[0:v]scale=%d:%d:force_original_aspect_ratio=decrease:flags=lanczos,pad=%d:%d:%s:(oh-ih)/2,setsar=1,format=rgba[src]",
		f.CanvasWidth, f.CanvasHeight, f.CanvasWidth, f.CanvasHeight, padX(f),
	)

	templateChain := fmt.Sprintf(
		"[1:v]scale=%d:%d:force_original_aspect_ratio=decrease:flags=lanczos,setsar=1,format=rgba[tpl]",
		f.CanvasWidth, f.CanvasHeight,
	)

	var overlay string
	if f.TemplateOnTop {
		overlay = "[src][tpl]overlay=0:0:format=auto[outv]"
	} else {
		overlay = "[tpl][src]overlay=0:0:format=auto[outv]"
	}

	filterComplex := sourceChain + ";" + templateChain + ";" + overlay

	args := []string{
		"-y",
		"-i", c.SourcePath,
	}
	if f.TemplateIsImage {
		args = append(args, "-loop", "1")
	}
	args = append(args,
		"-i", c.TemplatePath,
		"-filter_complex", filterComplex,
		"-map", "[outv]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-preset", "slow",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		c.OutputPath,
	)

	return args
}

func padX(f FilterPlan) string {
	if f.PadLeftAligned {
		return "0"
	}
	return "(ow-iw)/2"
}
