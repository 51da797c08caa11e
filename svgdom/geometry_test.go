package svgdom

import (
	"errors"
	"testing"

	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/benoitkugler/svggeom/svgunit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyBoundsAreNotZero(t *testing.T) {
	_, root := newTestDoc(t)
	g := el(t, root, "g")
	assert.True(t, g.Bounds().IsEmpty(), "no visual descendant")
	assert.Nil(t, g.Path())

	el(t, g, "defs")
	el(t, g, "title")
	el(t, g, "g")
	assert.True(t, g.Bounds().IsEmpty())

	// a degenerate line has a real, zero sized, bounding box
	line := el(t, root, "line", "x1", "5", "y1", "5", "x2", "5", "y2", "5")
	assert.Equal(t, svgpath.NewRect(5, 5, 0, 0), line.Bounds())

	// the empty group does not drag the union toward the origin
	rect(t, root, "50", "50", "10", "10")
	assert.Equal(t, svgpath.NewRect(5, 5, 55, 55), root.Bounds())
}

func TestContainerSkipsNonVisualChildren(t *testing.T) {
	tests := []struct {
		name   string
		second func(t *testing.T, container *Element)
	}{
		{"empty group", func(t *testing.T, c *Element) { el(t, c, "g") }},
		{"definitions", func(t *testing.T, c *Element) {
			defs := el(t, c, "defs")
			rect(t, defs, "100", "100", "10", "10")
		}},
		{"mask", func(t *testing.T, c *Element) {
			m := el(t, c, "mask")
			rect(t, m, "-100", "-100", "10", "10")
		}},
		{"zero area rect", func(t *testing.T, c *Element) { rect(t, c, "100", "100", "0", "10") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, root := newTestDoc(t)
			g := el(t, root, "g")
			rect(t, g, "0", "0", "10", "10")
			tt.second(t, g)
			assert.Equal(t, svgpath.NewRect(0, 0, 10, 10), g.Bounds())
		})
	}
}

func TestUnionOrderIndependence(t *testing.T) {
	boxes := [][4]string{
		{"0", "0", "10", "10"},
		{"-5", "20", "1", "1"},
		{"30", "-2", "4", "50"},
		{"7", "7", "1", "1"},
	}
	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	var results []svgpath.Rect
	for _, order := range orders {
		_, root := newTestDoc(t)
		g := el(t, root, "g")
		for _, i := range order {
			b := boxes[i]
			rect(t, g, b[0], b[1], b[2], b[3])
		}
		results = append(results, g.Bounds())
	}
	for _, r := range results {
		assert.Equal(t, svgpath.NewRect(-5, -2, 39, 50), r)
	}

	// nesting does not change the result either
	_, root := newTestDoc(t)
	g1 := el(t, root, "g")
	rect(t, g1, "0", "0", "10", "10")
	g2 := el(t, g1, "g")
	rect(t, g2, "-5", "20", "1", "1")
	g3 := el(t, root, "g")
	rect(t, g3, "30", "-2", "4", "50")
	rect(t, g3, "7", "7", "1", "1")
	assert.Equal(t, results[0], root.Bounds())
}

func TestCompositionPath(t *testing.T) {
	_, root := newTestDoc(t)
	g := el(t, root, "g")
	a := rect(t, g, "0", "0", "10", "10")
	b := el(t, g, "line", "x1", "0", "y1", "0", "x2", "20", "y2", "0")
	el(t, g, "clipPath")

	var expected svgpath.Path
	expected.Append(a.Path())
	expected.Append(b.Path())
	assert.Equal(t, expected, g.Path())
	assert.False(t, g.Kind().IsRenderable())
	assert.True(t, g.Kind().IsVisual())
}

func TestRootDefaultsToViewport(t *testing.T) {
	_, root := newTestDoc(t)
	vp, err := root.Viewport()
	require.NoError(t, err)
	assert.Equal(t, svgpath.NewRect(0, 0, testViewport.Width, testViewport.Height), vp)

	r := rect(t, root, "10%", "10%", "50%", "50%")
	assert.Equal(t, svgpath.NewRect(20, 10, 100, 50), r.Bounds())

	// nested svg: percentages refer to the nearest viewport
	inner := el(t, root, "svg", "x", "10", "y", "10", "width", "50", "height", "20")
	r2 := rect(t, inner, "0", "0", "100%", "100%")
	assert.Equal(t, svgpath.NewRect(0, 0, 50, 20), r2.Bounds())
	assert.Equal(t, svgpath.NewRect(10, 10, 50, 20), inner.Bounds())

	inner.SetWidth(svgunit.Number(80))
	assert.True(t, r2.IsStale(), "the frame of the descendants changed")
	assert.Equal(t, svgpath.NewRect(0, 0, 80, 20), r2.Bounds())
}

func TestViewBox(t *testing.T) {
	_, root := newTestDoc(t)
	require.NoError(t, root.SetAttribute("viewBox", "0 0 100 100"))
	r := rect(t, root, "0", "0", "50%", "100%")
	assert.Equal(t, svgpath.NewRect(0, 0, 50, 100), r.Bounds())
	// xMidYMid meet: scale 1, centered horizontally
	assert.Equal(t, svgpath.NewRect(50, 0, 50, 100), root.Bounds())

	require.NoError(t, root.SetAttribute("preserveAspectRatio", "none"))
	assert.Equal(t, svgpath.NewRect(0, 0, 100, 100), root.Bounds())
}

func TestTransformedBounds(t *testing.T) {
	_, root := newTestDoc(t)
	g := el(t, root, "g", "transform", "translate(10,20)")
	r := rect(t, g, "0", "0", "10", "10")
	require.NoError(t, r.SetAttribute("transform", "scale(2)"))

	assert.Equal(t, svgpath.NewRect(0, 0, 10, 10), r.LocalBounds())
	assert.Equal(t, svgpath.NewRect(0, 0, 20, 20), r.Bounds())
	assert.Equal(t, svgpath.NewRect(0, 0, 20, 20), g.LocalBounds())
	assert.Equal(t, svgpath.NewRect(10, 20, 20, 20), g.Bounds())
}

func TestFontRelativeLengths(t *testing.T) {
	_, root := newTestDoc(t)
	r := rect(t, root, "0", "0", "2em", "2ex")
	assert.Equal(t, svgpath.NewRect(0, 0, 32, 16), r.Bounds())

	require.NoError(t, root.SetAttribute("font-size", "20"))
	g := el(t, root, "g", "font-size", "50%")
	r2 := rect(t, g, "0", "0", "1em", "1em")
	assert.Equal(t, 10., r2.FontSize())
	assert.Equal(t, svgpath.NewRect(0, 0, 10, 10), r2.Bounds())
	assert.Equal(t, svgpath.NewRect(0, 0, 40, 20), r.Bounds())
}

func TestShapes(t *testing.T) {
	_, root := newTestDoc(t)
	c := el(t, root, "circle", "cx", "50", "cy", "50", "r", "10")
	b := c.Bounds()
	assert.InDelta(t, 40, b.X, 0.1)
	assert.InDelta(t, 20, b.W, 0.1)

	e := el(t, root, "ellipse", "cx", "0", "cy", "0", "rx", "10", "ry", "0")
	assert.True(t, e.Bounds().IsEmpty(), "disabled rendering")

	pl := el(t, root, "polyline", "points", "0 0 10 5 -3 2")
	assert.Equal(t, svgpath.NewRect(-3, 0, 13, 5), pl.Bounds())

	p := el(t, root, "path", "d", "M0 0 Q 50 100 100 0")
	b = p.Bounds()
	assert.InDelta(t, 50, b.H, 1e-9)
}

func TestIsolatedFailures(t *testing.T) {
	_, root := newTestDoc(t)
	bad := el(t, root, "rect", "x", "100", "width", "10")
	good := rect(t, root, "0", "0", "10", "10")

	assert.True(t, bad.Bounds().IsEmpty())
	assert.ErrorIs(t, bad.GeometryError(), ErrMissingDimension)
	assert.NoError(t, good.GeometryError())
	assert.Equal(t, svgpath.NewRect(0, 0, 10, 10), root.Bounds())

	fo := el(t, root, "foreignObject", "width", "10")
	_, err := fo.Viewport()
	assert.ErrorIs(t, err, ErrMissingDimension)

	// an out of range unit tag resolves as 0
	good.SetX(svgunit.Length{Value: 5, Unit: 200})
	assert.ErrorIs(t, good.GeometryError(), svgunit.ErrInvalidUnit)
	assert.Equal(t, svgpath.NewRect(0, 0, 10, 10), good.Bounds())
}

func TestForeignObject(t *testing.T) {
	_, root := newTestDoc(t)
	fo := el(t, root, "foreignObject", "x", "5", "y", "5", "width", "50", "height", "50")
	assert.True(t, fo.Kind().IsVisual())
	assert.False(t, fo.Kind().IsRenderable())
	assert.True(t, fo.Bounds().IsEmpty())

	rect(t, fo, "10", "10", "5", "5")
	rect(t, fo, "20", "20", "5", "5")
	assert.Equal(t, svgpath.NewRect(10, 10, 15, 15), fo.Bounds())

	vp, err := fo.Viewport()
	require.NoError(t, err)
	assert.Equal(t, svgpath.NewRect(5, 5, 50, 50), vp)
}

func TestSwitchRendersFirstChild(t *testing.T) {
	_, root := newTestDoc(t)
	s := el(t, root, "switch")
	el(t, s, "desc")
	rect(t, s, "0", "0", "10", "10")
	rect(t, s, "100", "100", "10", "10")
	assert.Equal(t, svgpath.NewRect(0, 0, 10, 10), s.Bounds())
}

func TestKinds(t *testing.T) {
	assert.Equal(t, KindClipPath, KindFromTag("clipPath"))
	assert.Equal(t, KindUnknown, KindFromTag("blink"))
	assert.Equal(t, "foreignObject", KindForeignObject.String())
	for k := KindUnknown; k < kindCount; k++ {
		if k.IsRenderable() {
			assert.True(t, k.IsVisual(), k)
			assert.False(t, k.IsContainer(), k)
		}
	}
	assert.False(t, KindMask.IsVisual())
	assert.False(t, KindUnknown.IsVisual())
}

func TestUnknownElementsAreKept(t *testing.T) {
	_, root := newTestDoc(t)
	u := el(t, root, "blink", "x", "3", "data-foo", "bar")
	rect(t, u, "0", "0", "10", "10")
	assert.Equal(t, KindUnknown, u.Kind())
	assert.Equal(t, "blink", u.Tag())
	v, ok := u.Attribute("data-foo")
	assert.True(t, ok)
	assert.Equal(t, "bar", v)
	assert.True(t, root.Bounds().IsEmpty())
	assert.False(t, errors.Is(u.GeometryError(), ErrMissingDimension))
}
