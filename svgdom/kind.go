package svgdom

import "github.com/benoitkugler/svggeom/svgunit"

// Kind is the closed set of supported elements.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSVG
	KindG
	KindForeignObject
	KindSwitch
	KindA
	KindDefs
	KindTitle
	KindDesc
	KindMask
	KindClipPath
	KindFilter
	KindPattern
	KindLinearGradient
	KindRadialGradient
	KindRect
	KindCircle
	KindEllipse
	KindLine
	KindPolyline
	KindPolygon
	KindPath
	kindCount
)

// unitsAttrs names the attributes selecting the coordinate
// system of an element region (placement) and of its children (content).
type unitsAttrs struct {
	placement, content string
	defaultPlacement   RegionUnits
	defaultContent     CoordinateUnits
}

type kindInfo struct {
	tag string

	visual     bool // participates in the bounds of its parent
	renderable bool // draws its own geometry
	container  bool // geometry is the composition of its children

	units *unitsAttrs

	defaults map[string]svgunit.Length // attribute values when unset
	required []string                  // attributes without default
}

var (
	zero       = svgunit.Number(0)
	fullLength = svgunit.Percent(100)

	regionDefaults = map[string]svgunit.Length{
		"x": svgunit.Percent(-10), "y": svgunit.Percent(-10),
		"width": svgunit.Percent(120), "height": svgunit.Percent(120),
	}
)

var kinds = [kindCount]kindInfo{
	KindUnknown: {tag: ""},
	KindSVG: {tag: "svg", visual: true, container: true,
		defaults: map[string]svgunit.Length{"x": zero, "y": zero, "width": fullLength, "height": fullLength},
	},
	KindG:      {tag: "g", visual: true, container: true},
	KindSwitch: {tag: "switch", visual: true, container: true},
	KindA:      {tag: "a", visual: true, container: true},
	KindForeignObject: {tag: "foreignObject", visual: true, container: true,
		defaults: map[string]svgunit.Length{"x": zero, "y": zero},
		required: []string{"width", "height"},
	},
	KindDefs:  {tag: "defs", container: true},
	KindTitle: {tag: "title"},
	KindDesc:  {tag: "desc"},
	KindMask: {tag: "mask", container: true,
		units:    &unitsAttrs{"maskUnits", "maskContentUnits", ObjectBoundingBoxRegion, UserSpaceOnUse},
		defaults: regionDefaults,
	},
	KindClipPath: {tag: "clipPath", container: true,
		units: &unitsAttrs{"", "clipPathUnits", UserSpaceOnUseRegion, UserSpaceOnUse},
	},
	KindFilter: {tag: "filter", container: true,
		units:    &unitsAttrs{"filterUnits", "primitiveUnits", ObjectBoundingBoxRegion, UserSpaceOnUse},
		defaults: regionDefaults,
	},
	KindPattern: {tag: "pattern", container: true,
		units:    &unitsAttrs{"patternUnits", "patternContentUnits", ObjectBoundingBoxRegion, UserSpaceOnUse},
		defaults: map[string]svgunit.Length{"x": zero, "y": zero, "width": zero, "height": zero},
	},
	KindLinearGradient: {tag: "linearGradient",
		units: &unitsAttrs{"gradientUnits", "gradientUnits", ObjectBoundingBoxRegion, ObjectBoundingBox},
	},
	KindRadialGradient: {tag: "radialGradient",
		units: &unitsAttrs{"gradientUnits", "gradientUnits", ObjectBoundingBoxRegion, ObjectBoundingBox},
	},
	KindRect: {tag: "rect", visual: true, renderable: true,
		defaults: map[string]svgunit.Length{"x": zero, "y": zero, "rx": zero, "ry": zero},
		required: []string{"width", "height"},
	},
	KindCircle: {tag: "circle", visual: true, renderable: true,
		defaults: map[string]svgunit.Length{"cx": zero, "cy": zero, "r": zero},
	},
	KindEllipse: {tag: "ellipse", visual: true, renderable: true,
		defaults: map[string]svgunit.Length{"cx": zero, "cy": zero, "rx": zero, "ry": zero},
	},
	KindLine: {tag: "line", visual: true, renderable: true,
		defaults: map[string]svgunit.Length{"x1": zero, "y1": zero, "x2": zero, "y2": zero},
	},
	KindPolyline: {tag: "polyline", visual: true, renderable: true},
	KindPolygon:  {tag: "polygon", visual: true, renderable: true},
	KindPath:     {tag: "path", visual: true, renderable: true},
}

var kindByTag = func() map[string]Kind {
	out := make(map[string]Kind, kindCount)
	for k := KindSVG; k < kindCount; k++ {
		out[kinds[k].tag] = k
	}
	return out
}()

// KindFromTag returns the kind of the element named `tag`,
// or KindUnknown.
func KindFromTag(tag string) Kind { return kindByTag[tag] }

func (k Kind) String() string {
	if k >= kindCount {
		return "<invalid Kind>"
	}
	if k == KindUnknown {
		return "unknown"
	}
	return kinds[k].tag
}

func (k Kind) info() *kindInfo { return &kinds[k] }

// IsVisual returns true if elements of this kind have visual
// output, and thus contribute to the bounds of their parent.
// Definitions (masks, gradients...) and metadata are not visual.
func (k Kind) IsVisual() bool { return k < kindCount && kinds[k].visual }

// IsRenderable returns true for kinds drawing their own geometry.
// Containers are visual but not renderable: they only aggregate
// the geometry of their children.
func (k Kind) IsRenderable() bool { return k < kindCount && kinds[k].renderable }

// IsContainer returns true for kinds whose geometry is built
// from their children.
func (k Kind) IsContainer() bool { return k < kindCount && kinds[k].container }

// establishesViewport is true for kinds whose children resolve
// percentages against their own width and height.
func (k Kind) establishesViewport() bool { return k == KindSVG }

// lengthAxis returns the reference dimension for the length attribute `name`.
func lengthAxis(name string) (svgunit.Axis, bool) {
	switch name {
	case "x", "width", "cx", "rx", "x1", "x2", "fx":
		return svgunit.Horizontal, true
	case "y", "height", "cy", "ry", "y1", "y2", "fy":
		return svgunit.Vertical, true
	case "r", "fr":
		return svgunit.Diagonal, true
	default:
		return 0, false
	}
}
