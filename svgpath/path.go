// Implements the drawable geometry produced by the
// document layer: paths made of basic commands in
// fixed point device independent units, and their bounding rectangles.
package svgpath

import (
	"fmt"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

var _ rasterx.Adder = (*Path)(nil) // shapes from rasterx are drawn into paths

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different SVG commands
type Operation interface {
	command() pathCommand
	// transform returns the operation with each point mapped by M
	transform(M rasterx.Matrix2D) Operation
}

type MoveTo fixed.Point26_6

type LineTo fixed.Point26_6

type QuadTo [2]fixed.Point26_6

type CubicTo [3]fixed.Point26_6

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

func (op MoveTo) transform(M rasterx.Matrix2D) Operation {
	return MoveTo(M.TFixed(fixed.Point26_6(op)))
}

func (op LineTo) transform(M rasterx.Matrix2D) Operation {
	return LineTo(M.TFixed(fixed.Point26_6(op)))
}

func (op QuadTo) transform(M rasterx.Matrix2D) Operation {
	return QuadTo{M.TFixed(op[0]), M.TFixed(op[1])}
}

func (op CubicTo) transform(M rasterx.Matrix2D) Operation {
	return CubicTo{M.TFixed(op[0]), M.TFixed(op[1]), M.TFixed(op[2])}
}

func (op Close) transform(rasterx.Matrix2D) Operation { return op }

// Path describes a sequence of basic SVG operations, which should not be nil
// Higher-level shapes may be reduced to a path.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", float32(op.X)/64, float32(op.Y)/64)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", float32(op[0].X)/64, float32(op[0].Y)/64,
				float32(op[1].X)/64, float32(op[1].Y)/64, float32(op[2].X)/64, float32(op[2].Y)/64)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a fixed.Point26_6) {
	*p = append(*p, MoveTo{a.X, a.Y})
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b fixed.Point26_6) {
	*p = append(*p, LineTo{b.X, b.Y})
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c fixed.Point26_6) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d fixed.Point26_6) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Append adds the operations of q at the end of p.
func (p *Path) Append(q Path) {
	*p = append(*p, q...)
}

// Transform returns a new path, with every point mapped by M.
func (p Path) Transform(M rasterx.Matrix2D) Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p))
	for i, op := range p {
		out[i] = op.transform(M)
	}
	return out
}

// AddTo adds the Path p to q, such as a rasterx Filler.
func (p Path) AddTo(q rasterx.Adder) {
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			q.Stop(false) // implicit close if currently in path.
			q.Start(fixed.Point26_6(op))
		case LineTo:
			q.Line(fixed.Point26_6(op))
		case QuadTo:
			q.QuadBezier(op[0], op[1])
		case CubicTo:
			q.CubeBezier(op[0], op[1], op[2])
		case Close:
			q.Stop(true)
		}
	}
	q.Stop(false)
}

// Bounds returns the exact extent of the path, taking
// the extrema of the bezier curves into account.
// An empty path has empty bounds.
func (p Path) Bounds() Rect {
	var (
		out          Rect
		first, point fixed.Point26_6
	)
	for _, op := range p {
		var curve bezier
		switch op := op.(type) {
		case MoveTo:
			point = fixed.Point26_6(op)
			first = point
			continue
		case LineTo:
			curve = line{point, fixed.Point26_6(op)}
			point = fixed.Point26_6(op)
		case QuadTo:
			curve = quadBezier{point, op[0], op[1]}
			point = op[1]
		case CubicTo:
			curve = cubicBezier{point, op[0], op[1], op[2]}
			point = op[2]
		case Close:
			point = first
			continue
		}
		out = out.Union(computeBoundingBox(curve))
	}
	return out
}
