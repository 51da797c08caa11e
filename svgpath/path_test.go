package svgpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/math/fixed"
)

func TestBoundsEmptyPath(t *testing.T) {
	var p Path
	assert.True(t, p.Bounds().IsEmpty())

	p.Start(toFixedP(10, 10)) // a lone move has no extent
	assert.True(t, p.Bounds().IsEmpty())
}

func TestBoundsCurves(t *testing.T) {
	var p Path
	// the extrema of the curve are inside the hull of the control points
	p.Start(toFixedP(0, 0))
	p.QuadBezier(toFixedP(50, 100), toFixedP(100, 0))
	b := p.Bounds()
	assert.InDelta(t, 0, b.X, 1e-9)
	assert.InDelta(t, 100, b.W, 1e-9)
	assert.InDelta(t, 50, b.H, 1e-9)

	p.Clear()
	p.Start(toFixedP(0, 0))
	p.CubeBezier(toFixedP(0, 100), toFixedP(100, 100), toFixedP(100, 0))
	b = p.Bounds()
	assert.InDelta(t, 75, b.H, 1e-9)
}

func TestBoundsEllipse(t *testing.T) {
	var p Path
	AddEllipse(&p, 50, 50, 20, 10)
	b := p.Bounds()
	assert.InDelta(t, 30, b.X, 0.1)
	assert.InDelta(t, 40, b.Y, 0.1)
	assert.InDelta(t, 40, b.W, 0.1)
	assert.InDelta(t, 20, b.H, 0.1)
}

func TestRoundRectRadii(t *testing.T) {
	var p, q Path
	AddRoundRect(&p, 0, 0, 10, 10, 0, 0)
	AddRect(&q, 0, 0, 10, 10)
	assert.Equal(t, q, p)

	p.Clear()
	AddRoundRect(&p, 0, 0, 10, 20, 50, 0) // clamped
	b := p.Bounds()
	assert.InDelta(t, 0, b.X, 0.05)
	assert.InDelta(t, 0, b.Y, 0.05)
	assert.InDelta(t, 10, b.W, 0.05)
	assert.InDelta(t, 20, b.H, 0.05)
}

func TestPathTransform(t *testing.T) {
	var p Path
	AddRect(&p, 0, 0, 10, 10)
	got := p.Transform(rasterx.Identity.Translate(5, 0)).Bounds()
	assert.Equal(t, NewRect(5, 0, 10, 10), got)
	assert.Nil(t, Path(nil).Transform(rasterx.Identity))
}

type recorder struct{ ops []string }

func (r *recorder) Start(a fixed.Point26_6)         { r.ops = append(r.ops, "start") }
func (r *recorder) Line(b fixed.Point26_6)          { r.ops = append(r.ops, "line") }
func (r *recorder) QuadBezier(b, c fixed.Point26_6) { r.ops = append(r.ops, "quad") }
func (r *recorder) CubeBezier(b, c, d fixed.Point26_6) {
	r.ops = append(r.ops, "cube")
}
func (r *recorder) Stop(closeLoop bool) {
	if closeLoop {
		r.ops = append(r.ops, "close")
	} else {
		r.ops = append(r.ops, "stop")
	}
}

func TestAddTo(t *testing.T) {
	p, err := ParsePathData("M0 0 L10 0 Z M5 5 Q 6 6 7 7")
	require.NoError(t, err)
	var r recorder
	p.AddTo(&r)
	expected := []string{"stop", "start", "line", "close", "stop", "start", "quad", "stop"}
	if diff := cmp.Diff(expected, r.ops); diff != "" {
		t.Errorf("unexpected operations (-want +got):\n%s", diff)
	}
}

func TestParsePathData(t *testing.T) {
	for _, tt := range []struct {
		d        string
		expected string
	}{
		{"M10 10 L20 20", "M10.000,10.000 L20.000,20.000"},
		{"m10,10 l10,10 h5 v-5", "M10.000,10.000 L20.000,20.000 L25.000,20.000 L25.000,15.000"},
		{"M0 0 10 0 10 10z", "M0.000,0.000 L10.000,0.000 L10.000,10.000 Z"},
		{"M1-1L2.5.5", "M1.000,-1.000 L2.500,0.500"},
		{"M0 0 Q 5 5 10 0 T 20 0", "M0.000,0.000 Q5.000,5.000,10.000,0.000 Q15.000,-5.000,20.000,0.000"},
		{"M0 0 C 0 5 5 5 5 0 S 10 -5 10 0", "M0.000,0.000 C0.000,5.000,5.000,5.000,5.000,0.000 C5.000,-5.000,10.000,-5.000,10.000,0.000"},
		{"M0 0 A 0 5 0 0 1 10 0", "M0.000,0.000 L10.000,0.000"},
		{"", ""},
	} {
		p, err := ParsePathData(tt.d)
		require.NoError(t, err, tt.d)
		assert.Equal(t, tt.expected, p.ToSVGPath(), tt.d)
	}
}

func TestParsePathDataArc(t *testing.T) {
	// half circle of radius 10 above the x axis
	p, err := ParsePathData("M0 0 A10 10 0 0 1 20 0")
	require.NoError(t, err)
	b := p.Bounds()
	assert.InDelta(t, 20, b.W, 0.1)
	assert.InDelta(t, 10, b.H, 0.1)

	// compact flags
	q, err := ParsePathData("M0 0 a10 10 0 0120 0")
	require.NoError(t, err)
	assert.Equal(t, p, q)
}

func TestParsePathDataInvalid(t *testing.T) {
	for _, d := range []string{
		"10 10",
		"M10",
		"M0 0 X 5",
		"M0 0 L 1 2 3",
		"M0 0 A 1 1 0 2 0 5 5",
		"M0 0 Z 5",
	} {
		_, err := ParsePathData(d)
		assert.True(t, errors.Is(err, ErrPathData), d)
	}
}

func TestParsePathDataPrefix(t *testing.T) {
	p, err := ParsePathData("M0 0 L10 10 L 5")
	assert.Error(t, err)
	assert.Equal(t, NewRect(0, 0, 10, 10), p.Bounds())
}
