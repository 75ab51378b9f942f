package idgen

import (
	"strings"
	"testing"
)

func TestNewJobIDHasExpectedPrefixAndIsUnique(t *testing.T) {
	a := NewJobID()
	b := NewJobID()

	if !strings.HasPrefix(a, "job_") {
		t.Errorf("expected job id to start with job_, got %q", a)
	}
	if a == b {
		t.Error("expected successive job ids to differ")
	}
}

func TestNewScratchNamePreservesExtensionAndSlugifiesLabel(t *testing.T) {
	name := NewScratchName("My Source Video!.MP4", ".mp4")
	if !strings.HasSuffix(name, ".mp4") {
		t.Errorf("expected scratch name to preserve extension, got %q", name)
	}
	if !strings.HasPrefix(name, "my-source-video-mp4_") {
		t.Errorf("expected slugified label prefix, got %q", name)
	}
}

func TestNewScratchNameIsCollisionResistant(t *testing.T) {
	a := NewScratchName("clip", ".mov")
	b := NewScratchName("clip", ".mov")
	if a == b {
		t.Error("expected two scratch names for the same label to differ")
	}
}

func TestSlugFallsBackToAssetForEmptyInput(t *testing.T) {
	if got := slug("   ---   "); got != "asset" {
		t.Errorf("expected fallback slug \"asset\" for an all-punctuation label, got %q", got)
	}
}
