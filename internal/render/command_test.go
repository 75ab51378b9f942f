package render

import (
	"strings"
	"testing"
)

func TestArgvContainsFilterGraph(t *testing.T) {
	spec := CommandSpec{
		Binary:       "ffmpeg",
		SourcePath:   "source.mp4",
		TemplatePath: "template.mov",
		OutputPath:   "out.mp4",
		Filter: FilterPlan{
			CanvasWidth:    1080,
			CanvasHeight:   1920,
			PadLeftAligned: false,
			TemplateOnTop:  true,
		},
	}

	argv := spec.Argv()
	joined := strings.Join(argv, " ")

	for _, want := range []string{"-i source.mp4", "-i template.mov", "out.mp4", "-filter_complex"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected argv to contain %q, got: %s", want, joined)
		}
	}

	var filterArg string
	for i, a := range argv {
		if a == "-filter_complex" {
			filterArg = argv[i+1]
			break
		}
	}
	if filterArg == "" {
		t.Fatal("expected a -filter_complex argument")
	}
	if !strings.Contains(filterArg, "[src][tpl]overlay") {
		t.Errorf("expected template-on-top overlay order, got: %s", filterArg)
	}
}

func TestArgvOverlayOrderFollowsAlpha(t *testing.T) {
	base := FilterPlan{CanvasWidth: 1080, CanvasHeight: 1080}

	withAlpha := CommandSpec{Filter: func() FilterPlan { f := base; f.TemplateOnTop = true; return f }()}
	withoutAlpha := CommandSpec{Filter: func() FilterPlan { f := base; f.TemplateOnTop = false; return f }()}

	if !strings.Contains(strings.Join(withAlpha.Argv(), " "), "[src][tpl]overlay") {
		t.Error("expected alpha template to overlay on top of source")
	}
	if !strings.Contains(strings.Join(withoutAlpha.Argv(), " "), "[tpl][src]overlay") {
		t.Error("expected opaque template to sit beneath the source in overlay order")
	}
}

func TestArgvSquareVariantPadsLeftAligned(t *testing.T) {
	left := CommandSpec{Filter: FilterPlan{CanvasWidth: 1080, CanvasHeight: 1080, PadLeftAligned: true}}
	centered := CommandSpec{Filter: FilterPlan{CanvasWidth: 1080, CanvasHeight: 1080, PadLeftAligned: false}}

	leftJoined := strings.Join(left.Argv(), " ")
	centeredJoined := strings.Join(centered.Argv(), " ")

	if !strings.Contains(leftJoined, "pad=1080:1080:0:") {
		t.Errorf("expected left-aligned pad x offset of 0, got: %s", leftJoined)
	}
	if !strings.Contains(centeredJoined, "pad=1080:1080:(ow-iw)/2:") {
		t.Errorf("expected centered pad x offset, got: %s", centeredJoined)
	}
}

func TestArgvLoopsStillImageTemplates(t *testing.T) {
	spec := CommandSpec{Filter: FilterPlan{CanvasWidth: 1080, CanvasHeight: 1080, TemplateIsImage: true}}
	argv := spec.Argv()

	found := false
	for i, a := range argv {
		if a == "-loop" && i+1 < len(argv) && argv[i+1] == "1" {
			found = true
		}
	}
	if !found {
		t.Error("expected -loop 1 for an image template")
	}
}
