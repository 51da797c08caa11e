package svgpath

import (
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// This file implements the transformation from
// high level shapes to their path equivalent.
// The curve approximations are delegated to rasterx.

// toFixedP converts two floats to a fixed point.
func toFixedP(x, y float64) fixed.Point26_6 {
	return rasterx.ToFixedP(x, y)
}

// AddRect adds the outline of the rectangle with top-left corner (x, y).
func AddRect(p *Path, x, y, w, h float64) {
	rasterx.AddRect(x, y, x+w, y+h, 0, p)
}

// AddRoundRect adds a rectangle with rounded corners of radius
// rx in the x axis and ry in the y axis.
// Following SVG, a missing radius (<= 0) takes the value of the other one,
// and radii are clamped to half the size of the rectangle.
func AddRoundRect(p *Path, x, y, w, h, rx, ry float64) {
	if rx <= 0 {
		rx = ry
	}
	if ry <= 0 {
		ry = rx
	}
	if rx > w/2 {
		rx = w / 2
	}
	if ry > h/2 {
		ry = h / 2
	}
	if rx <= 0 || ry <= 0 {
		AddRect(p, x, y, w, h)
		return
	}
	rasterx.AddRoundRect(x, y, x+w, y+h, rx, ry, 0, rasterx.RoundGap, p)
}

// AddEllipse adds an axis aligned ellipse centered at (cx, cy).
func AddEllipse(p *Path, cx, cy, rx, ry float64) {
	rasterx.AddEllipse(cx, cy, rx, ry, 0, p)
}

// AddLine adds the segment (x1, y1) -> (x2, y2).
func AddLine(p *Path, x1, y1, x2, y2 float64) {
	p.Start(toFixedP(x1, y1))
	p.Line(toFixedP(x2, y2))
}

// AddPolyline adds the points given as x, y pairs.
// An odd trailing coordinate is ignored. If close is true,
// the figure is closed, as for polygons.
func AddPolyline(p *Path, points []float64, close bool) {
	if len(points) < 4 {
		return
	}
	p.Start(toFixedP(points[0], points[1]))
	for i := 2; i < len(points)-1; i += 2 {
		p.Line(toFixedP(points[i], points[i+1]))
	}
	p.Stop(close)
}
