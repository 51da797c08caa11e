// Implements a PDF backend to inspect the geometry of SVG documents,
// by wrapping github.com/jung-kurt/gofpdf: element outlines,
// bounding boxes and mask/clip regions are drawn on a page.
package svgpdf

import (
	"io"

	"github.com/benoitkugler/svggeom/svgdom"
	"github.com/benoitkugler/svggeom/svgparse"
	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/jung-kurt/gofpdf"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/math/fixed"
)

// PointsPerPixel converts user units (px at 96 dpi) to PDF points.
const PointsPerPixel = 72. / 96

var _ rasterx.Adder = pather{} // assert interface conformance

// pather writes the path commands to the current PDF path.
type pather struct {
	pdf *gofpdf.Fpdf
}

func fixedTof(a fixed.Point26_6) (float64, float64) {
	return float64(a.X) / 64, float64(a.Y) / 64
}

func (p pather) Start(a fixed.Point26_6) { p.pdf.MoveTo(fixedTof(a)) }

func (p pather) Line(b fixed.Point26_6) { p.pdf.LineTo(fixedTof(b)) }

func (p pather) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) {
	cx, cy := fixedTof(b)
	x, y := fixedTof(c)
	p.pdf.CurveTo(cx, cy, x, y)
}

func (p pather) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	cx0, cy0 := fixedTof(b)
	cx1, cy1 := fixedTof(c)
	x, y := fixedTof(d)
	p.pdf.CurveBezierCubicTo(cx0, cy0, cx1, cy1, x, y)
}

func (p pather) Stop(closeLoop bool) {
	if closeLoop {
		p.pdf.ClosePath()
	}
}

// Writer draws geometry on the current page of a PDF document.
// M maps the device independent user units to the page unit.
type Writer struct {
	pdf *gofpdf.Fpdf
	M   rasterx.Matrix2D
}

// NewWriter return a writer which will write to the given `pdf`,
// mapping coordinates with M.
func NewWriter(pdf *gofpdf.Fpdf, M rasterx.Matrix2D) *Writer {
	return &Writer{pdf: pdf, M: M}
}

// DrawPath draws `p` mapped by M, with the gofpdf style
// ("D" for outline, "F" for fill, "FD" for both).
// Empty paths are ignored.
func (w *Writer) DrawPath(p svgpath.Path, M rasterx.Matrix2D, style string) {
	if len(p) == 0 {
		return
	}
	p.AddTo(&rasterx.MatrixAdder{Adder: pather{pdf: w.pdf}, M: w.M.Mult(M)})
	w.pdf.DrawPath(style)
}

// DrawRect draws the outline of `r` mapped by M.
// The empty rectangle is ignored.
func (w *Writer) DrawRect(r svgpath.Rect, M rasterx.Matrix2D, style string) {
	if r.IsEmpty() {
		return
	}
	r = r.Transform(w.M.Mult(M))
	w.pdf.Rect(r.X, r.Y, r.W, r.H, style)
}

// DrawRegion strokes the bounds and the paths of `region`,
// and of its parts.
func (w *Writer) DrawRegion(region svgdom.Region, M rasterx.Matrix2D) {
	w.DrawRect(region.Bounds, M, "D")
	for _, p := range region.Paths {
		w.DrawPath(p, M, "D")
	}
	for _, part := range region.Parts {
		w.DrawRegion(part, M)
	}
}

// DrawElement draws, for `e` and its visual descendants, the filled
// outline of the renderable elements, their bounding boxes (red) and
// their visible regions (dashed blue). M maps the user space of
// the parent of `e` to the device independent space.
func (w *Writer) DrawElement(e *svgdom.Element, M rasterx.Matrix2D) {
	if !e.Kind().IsVisual() {
		return
	}
	region, constrained, err := e.VisibleRegion()
	if err != nil {
		e.Document().Logger().Warn("drawing element", zap.Stringer("element", e), zap.Error(err))
	}
	if constrained {
		w.pdf.SetDrawColor(0, 0, 255)
		w.pdf.SetDashPattern([]float64{2, 2}, 0)
		w.DrawRegion(region, M)
		w.pdf.SetDashPattern(nil, 0)
	}

	if e.Kind().IsRenderable() {
		w.pdf.SetFillColor(128, 128, 128)
		w.pdf.SetAlpha(0.5, "")
		w.DrawPath(e.Path(), M, "F")
		w.pdf.SetAlpha(1, "")
		w.pdf.SetDrawColor(255, 0, 0)
		w.DrawRect(e.Bounds(), M, "D")
		return
	}

	childM := M.Mult(e.Matrix())
	for _, c := range e.Children() {
		w.DrawElement(c, childM)
	}
}

// RenderSVGIconToPDF parses the icon and writes the PDF
// inspection of its geometry to `out`, on a page the size
// of the document viewport.
func RenderSVGIconToPDF(icon io.Reader, out io.Writer, opts svgparse.Options) error {
	parsedIcon, err := svgparse.ReadIconStream(icon, opts)
	if err != nil {
		return err
	}
	root := parsedIcon.Doc.Root()
	vp, err := root.Viewport()
	if err != nil {
		return err
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: vp.W * PointsPerPixel, Ht: vp.H * PointsPerPixel},
	})
	pdf.SetCompression(false)
	for _, title := range parsedIcon.Titles {
		pdf.SetTitle(title, true)
	}
	pdf.AddPage()
	pdf.SetLineWidth(0.5)

	w := NewWriter(pdf, rasterx.Identity.Scale(PointsPerPixel, PointsPerPixel))
	w.DrawElement(root, rasterx.Identity)
	return pdf.Output(out)
}
