package svgdom

import (
	"fmt"
	"math"

	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/benoitkugler/svggeom/svgunit"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

// resolver converts the lengths of an element to user units.
type resolver struct {
	viewport svgunit.Frame // size of the nearest viewport
	// box is set when resolving content in objectBoundingBox units:
	// lengths are then expressed in the unit box mapped onto box,
	// given in user space. The unit box is scaled by k so that
	// fixed point coordinates keep the precision of user units.
	box svgpath.Rect
	k   float64
}

// newBoxResolver returns the resolver of a content in objectBoundingBox
// units, mapped onto `box`, in user space.
func newBoxResolver(viewport svgunit.Frame, box svgpath.Rect) resolver {
	return resolver{viewport: viewport, box: box, k: max(box.W, box.H)}
}

func (r resolver) inBox() bool { return r.box.HasArea() }

// toUser maps the coordinates built with r to user space.
func (r resolver) toUser() rasterx.Matrix2D {
	if !r.inBox() {
		return rasterx.Identity
	}
	return rasterx.Identity.Translate(r.box.X, r.box.Y).Scale(r.box.W/r.k, r.box.H/r.k)
}

func isSizeAttr(name string) bool {
	switch name {
	case "width", "height", "r", "rx", "ry", "fr":
		return true
	}
	return false
}

// length resolves the attribute `name` of e. Unsupported
// units resolve to 0, with an error.
func (r resolver) length(e *Element, name string) (float64, error) {
	l, ok := e.Length(name)
	if !ok {
		return 0, fmt.Errorf("%s: attribute %s: %w", e, name, ErrMissingDimension)
	}
	axis, _ := lengthAxis(name)
	frame := r.viewport
	frame.FontSize = e.FontSize()
	v, err := l.Resolve(axis, frame)
	if err != nil {
		return 0, fmt.Errorf("%s: attribute %s: %w", e, name, err)
	}
	if !r.inBox() {
		return v, nil
	}
	if !l.IsPercent() {
		return v * r.k, nil
	}
	// percentages keep their user space meaning, whatever the
	// content units: convert them back to the unit box
	var origin, extent float64
	switch axis {
	case svgunit.Horizontal:
		origin, extent = r.box.X, r.box.W
	case svgunit.Vertical:
		origin, extent = r.box.Y, r.box.H
	default:
		extent = math.Sqrt((r.box.W*r.box.W + r.box.H*r.box.H) / 2)
	}
	if isSizeAttr(name) {
		origin = 0
	}
	return (v - origin) / extent * r.k, nil
}

// shapeBuilder resolves lengths, remembering the first error.
type shapeBuilder struct {
	e   *Element
	r   resolver
	err error
}

func (b *shapeBuilder) get(name string) float64 {
	v, err := b.r.length(b.e, name)
	if err != nil && b.err == nil {
		b.err = err
	}
	return v
}

// checkRequired returns an error if one of the required
// dimensions of the element is missing.
func (b *shapeBuilder) checkRequired() error {
	for _, name := range b.e.kind.info().required {
		if _, ok := b.e.Length(name); !ok {
			return fmt.Errorf("%s: attribute %s: %w", b.e, name, ErrMissingDimension)
		}
	}
	return nil
}

// build returns the outline of a basic shape, in the element user space.
func (b *shapeBuilder) build() svgpath.Path {
	var p svgpath.Path
	switch b.e.kind {
	case KindRect:
		if b.err = b.checkRequired(); b.err != nil {
			return nil // treated as zero-area
		}
		x, y, w, h := b.get("x"), b.get("y"), b.get("width"), b.get("height")
		if w <= 0 || h <= 0 {
			return nil
		}
		rx, ry := b.get("rx"), b.get("ry")
		svgpath.AddRoundRect(&p, x, y, w, h, rx, ry)
	case KindCircle:
		cx, cy, r := b.get("cx"), b.get("cy"), b.get("r")
		if r <= 0 { // not drawn, but not an error
			return nil
		}
		if b.r.inBox() && b.e.lengthIsPercent("r") {
			// a percentage radius is circular in user space
			fx, fy := b.diagonalRatio()
			svgpath.AddEllipse(&p, cx, cy, r*fx, r*fy)
			break
		}
		svgpath.AddEllipse(&p, cx, cy, r, r)
	case KindEllipse:
		cx, cy, rx, ry := b.get("cx"), b.get("cy"), b.get("rx"), b.get("ry")
		if rx <= 0 || ry <= 0 {
			return nil
		}
		svgpath.AddEllipse(&p, cx, cy, rx, ry)
	case KindLine:
		svgpath.AddLine(&p, b.get("x1"), b.get("y1"), b.get("x2"), b.get("y2"))
	case KindPolyline, KindPolygon:
		points := b.e.points
		if b.r.inBox() {
			points = make([]float64, len(b.e.points))
			for i, v := range b.e.points {
				points[i] = v * b.r.k
			}
		}
		svgpath.AddPolyline(&p, points, b.e.kind == KindPolygon)
	case KindPath:
		if b.r.inBox() {
			// errors are reported when setting the path data
			p, _ = svgpath.ParseScaledPathData(b.e.pathData, b.r.k)
			return p
		}
		return b.e.pathOps
	}
	return p
}

func (e *Element) lengthIsPercent(name string) bool {
	l, _ := e.Length(name)
	return l.IsPercent()
}

// diagonalRatio returns the factors converting a diagonal unit box
// length to horizontal and vertical ones.
func (b *shapeBuilder) diagonalRatio() (float64, float64) {
	w, h := b.r.box.W, b.r.box.H
	diag := math.Sqrt((w*w + h*h) / 2)
	return diag / w, diag / h
}

// userSpace returns the frame in which the attributes of e are resolved:
// the inner frame of the nearest viewport ancestor, or the document viewport.
func (e *Element) userSpace() svgunit.Frame {
	for a := e.parent; a != nil; a = a.parent {
		if a.kind.establishesViewport() {
			return a.innerFrame(resolver{viewport: a.userSpace()})
		}
	}
	return e.doc.ctx.Viewport
}

// innerFrame returns the frame established by a viewport element for its children.
func (e *Element) innerFrame(r resolver) svgunit.Frame {
	if vb := e.viewBox; vb != nil && vb.W > 0 && vb.H > 0 {
		return svgunit.Frame{Width: vb.W, Height: vb.H}
	}
	vp, _ := e.viewportIn(r)
	return svgunit.Frame{Width: vp.W, Height: vp.H}
}

// Viewport returns the rectangle of the viewport established by an `svg`
// or `foreignObject` element, in the user space of its parent.
// The outermost element is placed at the origin, and its default
// width and height are 100% of the document viewport.
// Other kinds return the empty rectangle.
func (e *Element) Viewport() (svgpath.Rect, error) {
	return e.viewportIn(resolver{viewport: e.userSpace()})
}

func (e *Element) viewportIn(r resolver) (svgpath.Rect, error) {
	if !e.kind.establishesViewport() && e.kind != KindForeignObject {
		return svgpath.Rect{}, nil
	}
	b := shapeBuilder{e: e, r: r}
	if err := b.checkRequired(); err != nil {
		return svgpath.Rect{}, err
	}
	x, y, w, h := b.get("x"), b.get("y"), b.get("width"), b.get("height")
	if e.parent == nil {
		x, y = 0, 0
	}
	return svgpath.NewRect(x, y, w, h), b.err
}

// matrix returns the transform from the user space of e to
// the one of its parent.
func (e *Element) matrix(r resolver) rasterx.Matrix2D {
	m := e.transform
	if r.inBox() { // translations are expressed in the unit box
		m.E, m.F = m.E*r.k, m.F*r.k
	}
	if e.kind.establishesViewport() {
		vp, _ := e.viewportIn(r)
		if vb := e.viewBox; vb != nil {
			m = m.Mult(viewBoxTransform(*vb, [4]float64{vp.X, vp.Y, vp.W, vp.H}, e.noAspect))
		} else {
			m = m.Translate(vp.X, vp.Y)
		}
	}
	return m
}

// Matrix returns the transform from the user space of the element
// to the one of its parent, including the viewBox mapping of `svg` elements.
func (e *Element) Matrix() rasterx.Matrix2D {
	return e.matrix(resolver{viewport: e.userSpace()})
}

// compute builds the geometry of e. If cached is true, the children
// geometry is read from their cache; otherwise it is computed with `r`.
func (e *Element) compute(r resolver, cached bool) geometry {
	var g geometry
	switch {
	case !e.kind.IsVisual():
		// definitions and metadata draw nothing by themselves
		return g
	case e.kind.IsContainer():
		g.local, g.localBounds = e.composeChildren(r, cached)
	case e.kind.IsRenderable():
		b := shapeBuilder{e: e, r: r}
		g.local = b.build()
		g.localBounds = g.local.Bounds()
		g.err = b.err
	}
	M := e.matrix(r)
	if M == rasterx.Identity {
		g.path, g.bounds = g.local, g.localBounds
		return g
	}
	g.path = g.local.Transform(M)
	if e.kind.IsContainer() {
		g.bounds = g.localBounds.Transform(M)
	} else {
		g.bounds = g.path.Bounds()
	}
	return g
}

// composeChildren concatenates the paths and unions the bounds of the visual
// children of e. Non visual children are skipped, and the empty
// bounds of a child do not alter the result.
func (e *Element) composeChildren(r resolver, cached bool) (svgpath.Path, svgpath.Rect) {
	var (
		out    svgpath.Path
		bounds svgpath.Rect
	)
	childR := e.childResolver(r)
	for _, c := range e.children {
		if !c.kind.IsVisual() {
			continue
		}
		var cg geometry
		if cached {
			cg = c.geometry()
		} else {
			cg = c.compute(childR, false)
			if cg.err != nil {
				e.doc.logger.Warn("invalid element geometry", zap.Stringer("element", c), zap.Error(cg.err))
			}
		}
		out.Append(cg.path)
		bounds = bounds.Union(cg.bounds)
		if e.kind == KindSwitch { // only the first candidate is rendered
			break
		}
	}
	return out, bounds
}

// childResolver returns the resolver used for the children of e.
func (e *Element) childResolver(r resolver) resolver {
	if e.kind.establishesViewport() {
		return resolver{viewport: e.innerFrame(r)}
	}
	return r
}

// geometry returns the cached geometry, recomputing it if needed.
// Removed elements keep their last state.
func (e *Element) geometry() geometry {
	if e.geom.valid || e.removed {
		return e.geom.value
	}
	g := e.compute(resolver{viewport: e.userSpace()}, true)
	if g.err != nil {
		e.doc.logger.Warn("invalid element geometry", zap.Stringer("element", e), zap.Error(g.err))
	}
	e.geom = cell[geometry]{value: g, valid: true}
	return g
}

// Path returns the geometry drawn by the element, in the user space
// of its parent. Containers return the concatenation of the paths of
// their visual children.
func (e *Element) Path() svgpath.Path { return e.geometry().path }

// Bounds returns the bounding box of the element, in the user space
// of its parent. It is the empty rectangle for elements without
// visual output.
func (e *Element) Bounds() svgpath.Rect { return e.geometry().bounds }

// LocalPath is the same as Path, but in the user space of the element.
func (e *Element) LocalPath() svgpath.Path { return e.geometry().local }

// LocalBounds is the same as Bounds, but in the user space of the element,
// as used by objectBoundingBox units.
func (e *Element) LocalBounds() svgpath.Rect { return e.geometry().localBounds }

// GeometryError returns the isolated failure met when building
// the geometry of the element, if any. Such elements are drawn
// as empty or with the faulty lengths treated as 0.
func (e *Element) GeometryError() error { return e.geometry().err }
