package svgdom

import (
	"fmt"

	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/benoitkugler/svggeom/svgunit"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

// Region constrains the rendering of an element: only the parts
// inside Bounds and covered by every path of Paths are visible.
// When Parts is not nil, the visible area is further restricted to
// the union of the parts, as for content elements with their own
// mask or clip path.
type Region struct {
	Bounds svgpath.Rect
	Paths  []svgpath.Path
	Parts  []Region
}

// IsEmpty returns true if nothing is visible through the region.
func (r Region) IsEmpty() bool {
	if !r.Bounds.HasArea() {
		return true
	}
	for _, p := range r.Paths {
		if len(p) == 0 {
			return true
		}
	}
	if r.Parts == nil {
		return false
	}
	for _, part := range r.Parts {
		if !part.IsEmpty() {
			return false
		}
	}
	return true
}

// Intersect returns the region visible through both r and o.
func (r Region) Intersect(o Region) Region {
	paths := make([]svgpath.Path, 0, len(r.Paths)+len(o.Paths))
	paths = append(append(paths, r.Paths...), o.Paths...)
	out := Region{Bounds: r.Bounds.Intersect(o.Bounds), Paths: paths}
	switch {
	case r.Parts == nil:
		out.Parts = o.Parts
	case o.Parts == nil:
		out.Parts = r.Parts
	default: // distribute the intersection over the unions
		out.Parts = []Region{}
		for _, a := range r.Parts {
			for _, b := range o.Parts {
				if part := a.Intersect(b); !part.IsEmpty() {
					out.Parts = append(out.Parts, part)
				}
			}
		}
	}
	return out
}

// Transform maps the region by M. Bounds under rotation
// are enlarged to stay axis aligned.
func (r Region) Transform(M rasterx.Matrix2D) Region {
	out := Region{Bounds: r.Bounds.Transform(M), Paths: make([]svgpath.Path, len(r.Paths))}
	for i, p := range r.Paths {
		out.Paths[i] = p.Transform(M)
	}
	if r.Parts != nil {
		out.Parts = make([]Region, len(r.Parts))
		for i, part := range r.Parts {
			out.Parts[i] = part.Transform(M)
		}
	}
	return out
}

// unionRegions returns the region covered by at least one of `parts`.
func unionRegions(parts []Region) Region {
	var (
		kept   []Region
		bounds svgpath.Rect
	)
	for _, part := range parts {
		if part.IsEmpty() {
			continue
		}
		kept = append(kept, part)
		bounds = bounds.Union(part.Bounds)
	}
	switch len(kept) {
	case 0:
		return Region{}
	case 1:
		return kept[0]
	}
	return Region{Bounds: bounds, Parts: kept}
}

func (k Kind) definesRegion() bool {
	switch k {
	case KindMask, KindClipPath, KindFilter, KindPattern:
		return true
	}
	return false
}

// BuildRegion returns the region defined by `def` (a mask, clip path,
// filter or pattern) applied to an element whose bounding box is
// `target`, both expressed in the user space described by `userSpace`.
// The masks and clip paths referenced by `def` itself are intersected
// with the result, and the content elements of the definitions only
// contribute their own visible part. A reference cycle, including one
// going through the content, fails with ErrCyclicReference.
// Region attributes and content in objectBoundingBox units yield an empty
// region when `target` has no area.
func BuildRegion(def *Element, target svgpath.Rect, userSpace svgunit.Frame) (Region, error) {
	if !def.kind.definesRegion() {
		return Region{}, fmt.Errorf("%s does not define a region: %w", def, ErrUnknownReference)
	}
	if _, err := walkDefinitions(def, (*Element).allReferences); err != nil {
		return Region{}, err
	}
	return def.region(target, resolver{viewport: userSpace}), nil
}

// referenceAttrs returns the ids referenced by the mask and clip-path
// attributes of e, with the expected kinds.
func (e *Element) referenceAttrs() [2]struct {
	id   string
	kind Kind
} {
	return [2]struct {
		id   string
		kind Kind
	}{{e.mask, KindMask}, {e.clipPath, KindClipPath}}
}

// references returns the definitions referenced by the mask
// and clip-path attributes of e. Unknown references are ignored.
func (e *Element) references() []*Element {
	var out []*Element
	for _, ref := range e.referenceAttrs() {
		if ref.id == "" {
			continue
		}
		if target := e.doc.ElementByID(ref.id); target != nil && target.kind == ref.kind {
			out = append(out, target)
		}
	}
	return out
}

// allReferences returns the definitions referenced by e and by
// its descendants. Unknown references are logged and ignored.
func (e *Element) allReferences() []*Element {
	var out []*Element
	e.walk(func(c *Element) {
		for _, ref := range c.referenceAttrs() {
			if ref.id == "" {
				continue
			}
			target := c.doc.ElementByID(ref.id)
			if target == nil || target.kind != ref.kind {
				c.doc.logger.Warn("ignoring reference", zap.Stringer("element", c), zap.String("id", ref.id),
					zap.Error(ErrUnknownReference))
				continue
			}
			out = append(out, target)
		}
	})
	return out
}

// walkDefinitions returns `def` and every definition reachable
// through `edges`, each one once. The traversal uses an explicit stack
// and marks indexed on the document arena, so that long chains do not
// grow the call stack.
func walkDefinitions(def *Element, edges func(*Element) []*Element) ([]*Element, error) {
	const (
		unvisited uint8 = iota
		inProgress
		done
	)
	type frame struct {
		el   *Element
		refs []*Element
		next int
	}
	marks := make([]uint8, len(def.doc.elements))
	marks[def.index] = inProgress
	stack := []frame{{el: def, refs: edges(def)}}
	var out []*Element
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.refs) {
			marks[top.el.index] = done
			out = append(out, top.el)
			stack = stack[:len(stack)-1]
			continue
		}
		ref := top.refs[top.next]
		top.next++
		switch marks[ref.index] {
		case inProgress:
			return nil, fmt.Errorf("%s references %s: %w", top.el, ref, ErrCyclicReference)
		case done:
			continue
		}
		marks[ref.index] = inProgress
		stack = append(stack, frame{el: ref, refs: edges(ref)})
	}
	// def is finished last: put it first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// region returns the region defined by e, intersected with the ones of
// the definitions e references. References must be free of cycles.
func (e *Element) region(target svgpath.Rect, r resolver) Region {
	defs, _ := walkDefinitions(e, (*Element).references)
	out := defs[0].ownRegion(target, r)
	for _, other := range defs[1:] {
		out = out.Intersect(other.ownRegion(target, r))
	}
	return out
}

// ownRegion returns the region defined by e alone.
func (e *Element) ownRegion(target svgpath.Rect, r resolver) Region {
	var out Region
	if e.kind != KindClipPath {
		rect, ok := e.regionRect(target, r)
		if !ok {
			return Region{}
		}
		out.Bounds = rect
	}
	if e.kind == KindFilter { // primitives are not geometry
		return out
	}

	content, ok := e.regionContent(target, r)
	if !ok {
		return Region{}
	}
	switch {
	case e.kind == KindClipPath:
		out.Bounds = content.Bounds
	case content.Parts != nil || len(content.Paths) != 1:
		// content elements restricted by their own references
		out.Bounds = out.Bounds.Intersect(content.Bounds)
	}
	out.Paths, out.Parts = content.Paths, content.Parts
	return out
}

// regionRect resolves the x, y, width and height attributes of a definition.
func (e *Element) regionRect(target svgpath.Rect, r resolver) (svgpath.Rect, bool) {
	b := shapeBuilder{e: e, r: r}
	if e.PlacementUnits() == UserSpaceOnUseRegion {
		x, y, w, h := b.get("x"), b.get("y"), b.get("width"), b.get("height")
		if b.err != nil {
			e.doc.logger.Warn("invalid region", zap.Stringer("element", e), zap.Error(b.err))
		}
		if w <= 0 || h <= 0 {
			return svgpath.Rect{}, false
		}
		return svgpath.NewRect(x, y, w, h), true
	}

	if !target.HasArea() {
		return svgpath.Rect{}, false
	}
	var fractions [4]float64
	for i, name := range [4]string{"x", "y", "width", "height"} {
		l, _ := e.Length(name)
		f, err := l.Fraction()
		if err != nil {
			e.doc.logger.Warn("invalid region", zap.Stringer("element", e), zap.Error(err))
		}
		fractions[i] = f
	}
	if fractions[2] <= 0 || fractions[3] <= 0 {
		return svgpath.Rect{}, false
	}
	return svgpath.NewRect(target.X+fractions[0]*target.W, target.Y+fractions[1]*target.H,
		fractions[2]*target.W, fractions[3]*target.H), true
}

// regionContent returns the region covered by the children of a
// definition, in the space of `target`, built with r.
// Content in objectBoundingBox units is built at the scale of the
// target, then mapped onto it.
func (e *Element) regionContent(target svgpath.Rect, r resolver) (Region, bool) {
	cr, M := r, e.matrix(r)
	if e.ContentUnits() == ObjectBoundingBox {
		if !target.HasArea() {
			return Region{}, false
		}
		toUser := r.toUser()
		cr = newBoxResolver(r.viewport, target.Transform(toUser))
		toTarget := cr.toUser()
		if r.inBox() {
			toTarget = toUser.Invert().Mult(toTarget)
		}
		M = M.Mult(toTarget)
	}

	if !e.hasConstrainedContent() {
		content, _ := e.composeChildren(cr, false)
		if M != rasterx.Identity {
			content = content.Transform(M)
		}
		return Region{Bounds: content.Bounds(), Paths: []svgpath.Path{content}}, true
	}
	var parts []Region
	for _, c := range e.children {
		if c.kind.IsVisual() {
			parts = append(parts, c.visiblePart(cr))
		}
	}
	return unionRegions(parts).Transform(M), true
}

// hasConstrainedContent returns true if a descendant of e
// has a mask or a clip path.
func (e *Element) hasConstrainedContent() bool {
	for _, c := range e.children {
		found := false
		c.walk(func(d *Element) { found = found || d.mask != "" || d.clipPath != "" })
		if found {
			return true
		}
	}
	return false
}

// visiblePart returns the region covered by the visual element e,
// restricted by its mask and clip path and the ones of its descendants,
// in the space of its parent, built with r.
func (e *Element) visiblePart(r resolver) Region {
	var (
		out    Region
		target svgpath.Rect // bounding box of e
	)
	if e.kind.IsContainer() && e.hasConstrainedContent() {
		_, target = e.composeChildren(r, false)
		childR := e.childResolver(r)
		var parts []Region
		for _, c := range e.children {
			if !c.kind.IsVisual() {
				continue
			}
			parts = append(parts, c.visiblePart(childR))
			if e.kind == KindSwitch {
				break
			}
		}
		out = unionRegions(parts)
	} else {
		g := e.compute(r, false)
		out = Region{Bounds: g.localBounds, Paths: []svgpath.Path{g.local}}
		target = g.localBounds
	}
	for _, def := range e.references() {
		out = out.Intersect(def.region(target, r))
	}
	return out.Transform(e.matrix(r))
}

// MaskRegion returns the region defined by the mask referenced by e,
// in the user space of e, applied to its local bounds.
// ok is false if e has no mask, or if the reference is unknown (then
// the mask is ignored and an error is returned). A cyclic reference
// returns an empty region and an error: the element is not rendered.
func (e *Element) MaskRegion() (region Region, ok bool, err error) {
	return e.referencedRegion(e.mask, KindMask)
}

// ClipRegion is the same as MaskRegion, for the clip-path attribute.
func (e *Element) ClipRegion() (region Region, ok bool, err error) {
	return e.referencedRegion(e.clipPath, KindClipPath)
}

func (e *Element) referencedRegion(id string, kind Kind) (Region, bool, error) {
	if id == "" {
		return Region{}, false, nil
	}
	def := e.doc.ElementByID(id)
	if def == nil || def.kind != kind {
		err := fmt.Errorf("%s references #%s as a %s: %w", e, id, kind, ErrUnknownReference)
		e.doc.logger.Warn("ignoring reference", zap.Stringer("element", e), zap.Error(err))
		return Region{}, false, err
	}
	userSpace := e.userSpace()
	userSpace.FontSize = e.FontSize()
	region, err := BuildRegion(def, e.LocalBounds(), userSpace)
	if err != nil {
		e.doc.logger.Warn("element not rendered", zap.Stringer("element", e), zap.Error(err))
		return Region{}, true, err
	}
	return region, true, nil
}

// VisibleRegion returns the intersection of the mask and clip regions
// of e, mapped to the user space of its parent. ok is false when
// the element is not constrained.
func (e *Element) VisibleRegion() (Region, bool, error) {
	mask, hasMask, errMask := e.MaskRegion()
	clip, hasClip, errClip := e.ClipRegion()
	err := errMask
	if err == nil {
		err = errClip
	}
	var out Region
	switch {
	case hasMask && hasClip:
		out = mask.Intersect(clip)
	case hasMask:
		out = mask
	case hasClip:
		out = clip
	default:
		return Region{}, false, err
	}
	return out.Transform(e.Matrix()), true, err
}
