package svgpath

import (
	"math"

	"github.com/srwiley/rasterx"
)

// Rect is an axis aligned rectangle, in user units.
// The zero value is the empty rectangle, which has no area
// and no valid origin. Use NewRect to build a real rectangle,
// possibly of zero size.
type Rect struct {
	X, Y, W, H float64

	valid bool
}

// NewRect returns a real rectangle. Negative sizes
// are normalized so that W and H are always >= 0.
func NewRect(x, y, w, h float64) Rect {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	return Rect{X: x, Y: y, W: w, H: h, valid: true}
}

// IsEmpty returns true for the empty rectangle only:
// a zero sized rectangle at a real origin is not empty.
func (r Rect) IsEmpty() bool { return !r.valid }

// HasArea returns true if r is not empty and has strictly
// positive width and height.
func (r Rect) HasArea() bool { return r.valid && r.W > 0 && r.H > 0 }

// MaxX returns the right edge.
func (r Rect) MaxX() float64 { return r.X + r.W }

// MaxY returns the bottom edge.
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Union returns the smallest rectangle containing r and o.
// The empty rectangle is neutral: unioning it never moves the
// origin of the other rectangle toward (0,0).
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x, y := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	return NewRect(x, y, math.Max(r.MaxX(), o.MaxX())-x, math.Max(r.MaxY(), o.MaxY())-y)
}

// Intersect returns the common part of r and o, which is
// empty if they do not overlap. Rectangles touching on an edge
// yield a zero sized rectangle.
func (r Rect) Intersect(o Rect) Rect {
	if r.IsEmpty() || o.IsEmpty() {
		return Rect{}
	}
	x, y := math.Max(r.X, o.X), math.Max(r.Y, o.Y)
	maxX, maxY := math.Min(r.MaxX(), o.MaxX()), math.Min(r.MaxY(), o.MaxY())
	if maxX < x || maxY < y {
		return Rect{}
	}
	return NewRect(x, y, maxX-x, maxY-y)
}

// Transform returns the bounding rectangle of the
// four corners of r mapped by M.
func (r Rect) Transform(M rasterx.Matrix2D) Rect {
	if r.IsEmpty() {
		return r
	}
	var out Rect
	for _, c := range [4][2]float64{{r.X, r.Y}, {r.MaxX(), r.Y}, {r.MaxX(), r.MaxY()}, {r.X, r.MaxY()}} {
		x, y := M.Transform(c[0], c[1])
		out = out.Union(NewRect(x, y, 0, 0))
	}
	return out
}

// Path returns the closed outline of r, or
// an empty path for the empty rectangle.
func (r Rect) Path() Path {
	if r.IsEmpty() {
		return nil
	}
	var p Path
	AddRect(&p, r.X, r.Y, r.W, r.H)
	return p
}
