// Implements a raster backend for the geometry of SVG documents,
// by wrapping rasterx: paths and regions are rendered into
// coverage masks.
package svgraster

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/benoitkugler/svggeom/svgdom"
	"github.com/benoitkugler/svggeom/svgparse"
	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/math/fixed"
)

var _ rasterx.Adder = (*Renderer)(nil) // assert interface conformance

// Renderer accumulates paths and fills them into
// a coverage mask. It is not safe for concurrent use.
type Renderer struct {
	width, height int
	scanner       *rasterx.ScannerGV
	filler        *rasterx.Filler
	dest          *image.Alpha
}

// NewRenderer returns a renderer drawing into a new
// width x height coverage mask.
// Winding is always non-zero, as supported by the scanner.
func NewRenderer(width, height int) *Renderer {
	dest := image.NewAlpha(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, dest, dest.Bounds())
	scanner.SetColor(color.Opaque)
	return &Renderer{
		width: width, height: height,
		scanner: scanner,
		filler:  rasterx.NewFiller(width, height, scanner),
		dest:    dest,
	}
}

// Image returns the coverage mask drawn so far.
func (rd *Renderer) Image() *image.Alpha { return rd.dest }

// Clear cancels the accumulated path.
func (rd *Renderer) Clear() { rd.filler.Clear() }

func (rd *Renderer) Start(a fixed.Point26_6) { rd.filler.Start(a) }

func (rd *Renderer) Line(b fixed.Point26_6) { rd.filler.Line(b) }

func (rd *Renderer) QuadBezier(b fixed.Point26_6, c fixed.Point26_6) { rd.filler.QuadBezier(b, c) }

func (rd *Renderer) CubeBezier(b fixed.Point26_6, c fixed.Point26_6, d fixed.Point26_6) {
	rd.filler.CubeBezier(b, c, d)
}

func (rd *Renderer) Stop(closeLoop bool) { rd.filler.Stop(closeLoop) }

// Fill draws the accumulated path into the mask, and clears it.
func (rd *Renderer) Fill() {
	rd.filler.Draw()
	rd.filler.Clear()
}

// FillPath adds `p` mapped by M and fills it.
func (rd *Renderer) FillPath(p svgpath.Path, M rasterx.Matrix2D) {
	p.AddTo(&rasterx.MatrixAdder{Adder: rd, M: M})
	rd.Fill()
}

// coverage returns a new mask covered by `p` mapped by M.
func (rd *Renderer) coverage(p svgpath.Path, M rasterx.Matrix2D) *image.Alpha {
	out := image.NewAlpha(rd.dest.Rect)
	dest := rd.scanner.Dest
	rd.scanner.Dest = out
	rd.FillPath(p, M)
	rd.scanner.Dest = dest
	return out
}

// RegionMask returns the coverage of `region` mapped by M:
// the product of the coverage of its bounds and of each of its paths,
// and of the union of its parts, if any.
func (rd *Renderer) RegionMask(region svgdom.Region, M rasterx.Matrix2D) *image.Alpha {
	if region.IsEmpty() {
		return image.NewAlpha(rd.dest.Rect)
	}
	out := rd.coverage(region.Bounds.Path(), M)
	for _, p := range region.Paths {
		multiply(out, rd.coverage(p, M))
	}
	if region.Parts != nil {
		union := image.NewAlpha(rd.dest.Rect)
		for _, part := range region.Parts {
			maximum(union, rd.RegionMask(part, M))
		}
		multiply(out, union)
	}
	return out
}

// multiply stores in `dst` the product of the coverages of `dst` and `src`,
// which must have the same bounds.
func multiply(dst, src *image.Alpha) {
	for i, a := range src.Pix {
		dst.Pix[i] = uint8(uint16(dst.Pix[i]) * uint16(a) / 0xff)
	}
}

// maximum stores in `dst` the largest of the coverages of `dst` and `src`,
// which must have the same bounds.
func maximum(dst, src *image.Alpha) {
	for i, a := range src.Pix {
		dst.Pix[i] = max(dst.Pix[i], a)
	}
}

// DrawElement draws the renderable descendants of `e` (or `e` itself),
// restricted by their mask and clip regions and the ones of their ancestors
// up to `e`. M maps the user space of the parent of `e` to the device.
// Elements whose region fails to build are skipped and logged.
func (rd *Renderer) DrawElement(e *svgdom.Element, M rasterx.Matrix2D) {
	rd.drawElement(e, M, nil)
}

func (rd *Renderer) drawElement(e *svgdom.Element, M rasterx.Matrix2D, clip *image.Alpha) {
	if !e.Kind().IsVisual() {
		return
	}
	region, constrained, err := e.VisibleRegion()
	if err != nil {
		e.Document().Logger().Warn("drawing element", zap.Stringer("element", e), zap.Error(err))
	}
	if constrained {
		if region.IsEmpty() {
			return
		}
		mask := rd.RegionMask(region, M)
		if clip != nil {
			multiply(mask, clip)
		}
		clip = mask
	}

	if e.Kind().IsRenderable() {
		cov := rd.coverage(e.Path(), M)
		if clip != nil {
			multiply(cov, clip)
		}
		draw.DrawMask(rd.dest, rd.dest.Rect, image.Opaque, image.Point{}, cov, image.Point{}, draw.Over)
		return
	}

	childM := M.Mult(e.Matrix())
	for _, c := range e.Children() {
		if !c.Kind().IsVisual() {
			continue
		}
		rd.drawElement(c, childM, clip)
		if e.Kind() == svgdom.KindSwitch {
			break
		}
	}
}

// RasterSVGIconToImage parses the icon and draws its geometry
// into a coverage mask the size of the document viewport.
func RasterSVGIconToImage(icon io.Reader, opts svgparse.Options) (*image.Alpha, error) {
	parsedIcon, err := svgparse.ReadIconStream(icon, opts)
	if err != nil {
		return nil, err
	}
	root := parsedIcon.Doc.Root()
	vp, err := root.Viewport()
	if err != nil {
		return nil, err
	}
	renderer := NewRenderer(int(vp.W), int(vp.H))
	renderer.DrawElement(root, rasterx.Identity)
	return renderer.Image(), nil
}
