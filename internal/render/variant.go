// Package render builds and executes the media composition pipeline that
// overlays a template asset onto a source video for a given output variant.
package render

// Variant names one of the three supported output canvases.
type Variant string

const (
	Vertical  Variant = "vertical"
	Square    Variant = "square"
	Landscape Variant = "landscape"
)

// AllVariants lists every variant in the fixed execution order the worker
// must follow when a job's templates span more than one of them.
var AllVariants = []Variant{Vertical, Square, Landscape}

// Geometry describes a variant's canvas and how the square variant's pad is
// deliberately left-aligned rather than centered (see PadLeftAligned).
type Geometry struct {
	Width           int
	Height          int
	PadLeftAligned bool
}

// geometries is the per-variant canvas/placement table. The square variant's
// PadLeftAligned=true is a documented product contract: the transparent
// window in square templates is meant to land on the left edge, not centered.
var geometries = map[Variant]Geometry{
	Vertical:  {Width: 1080, Height: 1920, PadLeftAligned: false},
	Square:    {Width: 1080, Height: 1080, PadLeftAligned: true},
	Landscape: {Width: 1920, Height: 1080, PadLeftAligned: false},
}

// GeometryFor returns the canvas geometry for variant, and whether it is known.
func GeometryFor(v Variant) (Geometry, bool) {
	g, ok := geometries[v]
	return g, ok
}
