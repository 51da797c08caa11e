package svgpdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/benoitkugler/svggeom/svgparse"
	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/jung-kurt/gofpdf"
	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPDF() *gofpdf.Fpdf {
	pdf := gofpdf.New("", "pt", "", "")
	pdf.SetCompression(false)
	pdf.AddPage()
	return pdf
}

func output(t *testing.T, pdf *gofpdf.Fpdf) string {
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.String()
}

func TestDrawPath(t *testing.T) {
	pdf := newPDF()
	w := NewWriter(pdf, rasterx.Identity)

	var p svgpath.Path
	svgpath.AddPolyline(&p, []float64{0, 0, 10, 0, 10, 10}, true)
	w.DrawPath(p, rasterx.Identity, "D")
	w.DrawPath(nil, rasterx.Identity, "D")
	w.DrawRect(svgpath.Rect{}, rasterx.Identity, "D")
	w.DrawRect(svgpath.NewRect(0, 0, 10, 10), rasterx.Identity.Scale(2, 2), "D")
	assert.NoError(t, pdf.Error())

	out := output(t, pdf)
	assert.Equal(t, 1, strings.Count(out, " re S"), "the empty rectangle is skipped")
	assert.Contains(t, out, "20.00 -20.00 re S")
}

const icon = `<svg width="40" height="40">
	<title>inspection</title>
	<clipPath id="c"><rect width="10" height="10"/></clipPath>
	<g clip-path="url(#c)">
		<rect width="20" height="20"/>
		<circle cx="20" cy="20" r="5"/>
	</g>
	<path d="M0 0 Q 10 10 20 0 C 20 10 30 10 30 0 z"/>
</svg>`

func TestRenderSVGIconToPDF(t *testing.T) {
	var buf bytes.Buffer
	err := RenderSVGIconToPDF(strings.NewReader(icon), &buf, svgparse.Options{Mode: svgparse.StrictErrorMode})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF-"))
	// one bounding box per shape, plus the clip bounds
	assert.Equal(t, 4, strings.Count(out, " re S"))

	err = RenderSVGIconToPDF(strings.NewReader("<svg>"), &buf, svgparse.Options{})
	assert.Error(t, err)
}
