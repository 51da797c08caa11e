package svgdom

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/benoitkugler/svggeom/svgpath"
	"github.com/benoitkugler/svggeom/svgunit"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

// AttributeEvent is emitted when an attribute value changes.
type AttributeEvent struct {
	Element *Element
	Name    string
	Value   any // the new value, with its parsed type (svgunit.Length, rasterx.Matrix2D, ...)
}

// Observer is notified of attribute changes, for instance
// by a styling layer.
type Observer func(AttributeEvent)

// ViewBox is the value of the `viewBox` attribute.
type ViewBox struct{ X, Y, W, H float64 }

// cell is a lazily computed value.
type cell[T any] struct {
	value T
	valid bool
}

// geometry is the cached output of an element.
type geometry struct {
	local       svgpath.Path // in the element user space
	localBounds svgpath.Rect
	path        svgpath.Path // in the user space of the parent
	bounds      svgpath.Rect
	err         error // isolated failure, such as a missing dimension
}

// Element is a node of a Document. Elements are created by
// Document.CreateElement and owned by their parent.
type Element struct {
	doc   *Document
	index int // in the document arena
	kind  Kind
	tag   string

	parent   *Element
	children []*Element

	id        string
	lengths   map[string]svgunit.Length
	transform rasterx.Matrix2D
	viewBox   *ViewBox
	noAspect  bool // preserveAspectRatio="none"
	points    []float64
	pathData  string
	pathOps   svgpath.Path
	fontSize  *svgunit.Length
	mask      string // referenced id
	clipPath  string // referenced id
	units     unitsSetting
	others    map[string]string

	geom      cell[geometry]
	observers []Observer
	removed   bool
}

// Kind returns the kind of the element.
func (e *Element) Kind() Kind { return e.kind }

// Tag returns the element name.
func (e *Element) Tag() string { return e.tag }

// ID returns the value of the `id` attribute.
func (e *Element) ID() string { return e.id }

// Parent returns the parent element, or nil for the root
// and detached elements.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the child elements, which must not be modified.
func (e *Element) Children() []*Element { return e.children }

// Document returns the document owning the element.
func (e *Element) Document() *Document { return e.doc }

// IsRemoved returns true once the element has been removed from its tree.
func (e *Element) IsRemoved() bool { return e.removed }

// IsStale returns true if the cached geometry must be
// recomputed on the next query.
func (e *Element) IsStale() bool { return !e.geom.valid }

func (e *Element) String() string {
	if e.id != "" {
		return fmt.Sprintf("<%s id=%q>", e.tag, e.id)
	}
	return fmt.Sprintf("<%s #%d>", e.tag, e.index)
}

// OnAttributeChanged registers an observer for this element.
func (e *Element) OnAttributeChanged(o Observer) {
	e.observers = append(e.observers, o)
}

// changed notifies the observers and, for attributes affecting
// the geometry, invalidates the caches.
func (e *Element) changed(name string, value any, affectsGeometry bool) {
	ev := AttributeEvent{Element: e, Name: name, Value: value}
	for _, o := range e.observers {
		o(ev)
	}
	for _, o := range e.doc.observers {
		o(ev)
	}
	if affectsGeometry {
		e.invalidate(e.changesFrame(name))
	}
}

// changesFrame is true for attributes modifying the reference
// frame used by the descendants of e.
func (e *Element) changesFrame(name string) bool {
	switch name {
	case "font-size":
		return true
	case "width", "height", "viewBox", "preserveAspectRatio":
		return e.kind.establishesViewport()
	}
	return false
}

// invalidate marks e and its ancestors stale, and also its descendants if deep is true.
func (e *Element) invalidate(deep bool) {
	if deep {
		e.walk(func(c *Element) { c.geom.valid = false })
	}
	for a := e; a != nil; a = a.parent {
		a.geom.valid = false
	}
}

// walk calls f on e and its descendants, in document order.
func (e *Element) walk(f func(*Element)) {
	stack := []*Element{e}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f(c)
		for i := len(c.children) - 1; i >= 0; i-- {
			stack = append(stack, c.children[i])
		}
	}
}

// Length returns the value of the length attribute `name`, either
// explicit or defaulted by the element kind. ok is false if the
// attribute is unset and has no default.
func (e *Element) Length(name string) (l svgunit.Length, ok bool) {
	if l, ok = e.lengths[name]; ok {
		return l, true
	}
	l, ok = e.kind.info().defaults[name]
	return l, ok
}

// HasLength returns true if the length attribute `name` is explicitly set.
func (e *Element) HasLength(name string) bool {
	_, ok := e.lengths[name]
	return ok
}

// SetLength updates the length attribute `name`. When the value
// differs from the current one, observers are notified and the
// geometry is invalidated; otherwise nothing happens.
func (e *Element) SetLength(name string, l svgunit.Length) {
	if e.removed {
		return
	}
	current, ok := e.Length(name)
	if e.lengths == nil {
		e.lengths = make(map[string]svgunit.Length)
	}
	e.lengths[name] = l
	if ok && current == l { // explicit now, but same value
		return
	}
	e.changed(name, l, true)
}

// UnsetLength removes the explicit value of `name`, so that the
// kind default applies again.
func (e *Element) UnsetLength(name string) {
	if e.removed {
		return
	}
	current, ok := e.lengths[name]
	if !ok {
		return
	}
	delete(e.lengths, name)
	l, hasDefault := e.Length(name)
	if hasDefault && l == current {
		return
	}
	e.changed(name, l, true)
}

// SetX sets the `x` attribute.
func (e *Element) SetX(l svgunit.Length) { e.SetLength("x", l) }

// SetY sets the `y` attribute.
func (e *Element) SetY(l svgunit.Length) { e.SetLength("y", l) }

// SetWidth sets the `width` attribute.
func (e *Element) SetWidth(l svgunit.Length) { e.SetLength("width", l) }

// SetHeight sets the `height` attribute.
func (e *Element) SetHeight(l svgunit.Length) { e.SetLength("height", l) }

// Transform returns the `transform` attribute, or the identity.
func (e *Element) Transform() rasterx.Matrix2D { return e.transform }

// SetTransform sets the `transform` attribute.
func (e *Element) SetTransform(m rasterx.Matrix2D) {
	if e.removed || m == e.transform {
		return
	}
	e.transform = m
	e.changed("transform", m, true)
}

// ViewBox returns the `viewBox` attribute, if any.
func (e *Element) ViewBox() (ViewBox, bool) {
	if e.viewBox == nil {
		return ViewBox{}, false
	}
	return *e.viewBox, true
}

// SetViewBox sets the `viewBox` attribute.
func (e *Element) SetViewBox(vb ViewBox) {
	if e.removed || (e.viewBox != nil && *e.viewBox == vb) {
		return
	}
	e.viewBox = &vb
	e.changed("viewBox", vb, true)
}

// SetPoints sets the `points` attribute, as x, y pairs.
func (e *Element) SetPoints(points []float64) {
	if e.removed || slices.Equal(points, e.points) {
		return
	}
	e.points = slices.Clone(points)
	e.changed("points", e.points, true)
}

// PathData returns the `d` attribute.
func (e *Element) PathData() string { return e.pathData }

// SetPathData sets the `d` attribute. A malformed value is kept,
// and its valid prefix is drawn, as renderers do.
func (e *Element) SetPathData(d string) error {
	if e.removed || d == e.pathData {
		return nil
	}
	ops, err := svgpath.ParsePathData(d)
	e.pathData, e.pathOps = d, ops
	e.changed("d", d, true)
	return err
}

// FontSize returns the font size in effect for the element,
// in user units.
func (e *Element) FontSize() float64 {
	// collect the explicit values, and resolve them top-down
	var chain []svgunit.Length
	for a := e; a != nil; a = a.parent {
		if a.fontSize != nil {
			chain = append(chain, *a.fontSize)
		}
	}
	size := e.doc.ctx.Viewport.FontSize
	if size <= 0 {
		size = svgunit.DefaultFontSize
	}
	for i := len(chain) - 1; i >= 0; i-- {
		// percentages and em refer to the inherited size
		inherited := svgunit.Frame{Width: size, Height: size, FontSize: size}
		if v, err := chain[i].Resolve(svgunit.Horizontal, inherited); err == nil {
			size = v
		}
	}
	return size
}

// SetFontSize sets the `font-size` property.
func (e *Element) SetFontSize(l svgunit.Length) {
	if e.removed || (e.fontSize != nil && *e.fontSize == l) {
		return
	}
	e.fontSize = &l
	e.changed("font-size", l, true)
}

// Mask returns the id referenced by the `mask` attribute, or an empty string.
func (e *Element) Mask() string { return e.mask }

// SetMask sets the id referenced by the `mask` attribute.
// An empty id removes the reference.
func (e *Element) SetMask(id string) {
	if e.removed || id == e.mask {
		return
	}
	e.mask = id
	e.changed("mask", id, true)
}

// ClipPath returns the id referenced by the `clip-path` attribute, or an empty string.
func (e *Element) ClipPath() string { return e.clipPath }

// SetClipPath sets the id referenced by the `clip-path` attribute.
// An empty id removes the reference.
func (e *Element) SetClipPath(id string) {
	if e.removed || id == e.clipPath {
		return
	}
	e.clipPath = id
	e.changed("clip-path", id, true)
}

// SetID sets the `id` attribute, updating the document index.
func (e *Element) SetID(id string) {
	if e.removed || id == e.id {
		return
	}
	e.doc.unregisterID(e)
	e.id = id
	e.doc.registerID(e)
	e.changed("id", id, false)
}

// Attribute returns the raw value of an attribute without
// geometric meaning (style, class, ...).
func (e *Element) Attribute(name string) (string, bool) {
	v, ok := e.others[name]
	return v, ok
}

// SetAttribute parses and sets the attribute `name`.
// Attributes with a geometric meaning are dispatched to the typed setters,
// the others are stored as is.
// On error, the attribute is left unchanged (except for malformed path data,
// whose valid prefix is kept), and the error is returned for the caller
// to decide whether to abort.
func (e *Element) SetAttribute(name, value string) error {
	if ok, err := e.setUnits(name, value); ok {
		return wrapAttr(name, err)
	}
	switch name {
	case "id":
		e.SetID(value)
	case "transform":
		m, err := ParseTransform(value)
		if err != nil {
			return wrapAttr(name, err)
		}
		e.SetTransform(m)
	case "viewBox":
		nbs, err := svgunit.ParseNumbers(value)
		if err != nil {
			return wrapAttr(name, err)
		}
		if len(nbs) != 4 {
			return wrapAttr(name, errParamMismatch)
		}
		e.SetViewBox(ViewBox{nbs[0], nbs[1], nbs[2], nbs[3]})
	case "preserveAspectRatio":
		noAspect := strings.TrimSpace(value) == "none"
		if !e.removed && noAspect != e.noAspect {
			e.noAspect = noAspect
			e.changed(name, value, true)
		}
	case "points":
		nbs, err := svgunit.ParseNumbers(value)
		if err != nil {
			return wrapAttr(name, err)
		}
		if len(nbs)%2 != 0 {
			return wrapAttr(name, errOddPoints)
		}
		e.SetPoints(nbs)
	case "d":
		return wrapAttr(name, e.SetPathData(value))
	case "font-size":
		l, err := svgunit.ParseLength(value)
		if err != nil {
			return wrapAttr(name, err)
		}
		e.SetFontSize(l)
	case "mask", "clip-path":
		id, err := parseURLReference(value)
		if err != nil {
			return wrapAttr(name, err)
		}
		if name == "mask" {
			e.SetMask(id)
		} else {
			e.SetClipPath(id)
		}
	default:
		if _, isLength := lengthAxis(name); isLength {
			l, err := svgunit.ParseLength(value)
			if err != nil {
				return wrapAttr(name, err)
			}
			e.SetLength(name, l)
			return nil
		}
		if current, ok := e.others[name]; e.removed || (ok && current == value) {
			return nil
		}
		if e.others == nil {
			e.others = make(map[string]string)
		}
		e.others[name] = value
		e.changed(name, value, false)
	}
	return nil
}

func wrapAttr(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("attribute %s: %w", name, err)
}

// parseURLReference parses the form url(#id). "none" gives an empty id.
func parseURLReference(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "none" || v == "" {
		return "", nil
	}
	if !strings.HasPrefix(v, "url(") || !strings.HasSuffix(v, ")") {
		return "", fmt.Errorf("invalid reference %q: %w", v, ErrUnknownReference)
	}
	v = strings.Trim(strings.TrimSpace(v[4:len(v)-1]), `"'`)
	if !strings.HasPrefix(v, "#") || len(v) == 1 {
		return "", fmt.Errorf("only local references are supported, got %q: %w", v, ErrUnknownReference)
	}
	return v[1:], nil
}

// AppendChild adds `child` as the last child of e.
// The child must be a detached element of the same document.
func (e *Element) AppendChild(child *Element) error {
	switch {
	case e.removed || child.removed:
		return errRemoved
	case child.doc != e.doc:
		return fmt.Errorf("appending %s: element from another document", child)
	case child.parent != nil || child == e.doc.root:
		return fmt.Errorf("appending %s: element already in a tree", child)
	}
	for a := e; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("appending %s: element is an ancestor", child)
		}
	}
	child.parent = e
	e.children = append(e.children, child)
	// the frame of the child may have changed
	child.invalidate(true)
	return nil
}

// Clone returns a deep copy of e and its descendants, owned by
// the same document but detached from the tree. The copies have no
// observers and a stale geometry. They keep the id of the originals,
// which Document.ElementByID still returns: use SetID to index a copy.
func (e *Element) Clone() *Element {
	c := e.doc.CreateElement(e.tag)
	c.id = e.id
	c.lengths = maps.Clone(e.lengths)
	c.transform = e.transform
	if e.viewBox != nil {
		vb := *e.viewBox
		c.viewBox = &vb
	}
	c.noAspect = e.noAspect
	c.points = slices.Clone(e.points)
	c.pathData, c.pathOps = e.pathData, slices.Clone(e.pathOps)
	if e.fontSize != nil {
		fs := *e.fontSize
		c.fontSize = &fs
	}
	c.mask, c.clipPath = e.mask, e.clipPath
	c.units = e.units
	c.others = maps.Clone(e.others)
	for _, child := range e.children {
		cc := child.Clone()
		cc.parent = c
		c.children = append(c.children, cc)
	}
	return c
}

// Remove detaches e from its tree. The element and its descendants
// are then frozen: their setters become no-ops, and they are
// dropped from the document.
func (e *Element) Remove() {
	if e.removed {
		return
	}
	if p := e.parent; p != nil {
		p.children = slices.DeleteFunc(p.children, func(c *Element) bool { return c == e })
		p.invalidate(false)
	}
	if e == e.doc.root {
		e.doc.root = nil
	}
	e.parent = nil
	e.walk(func(c *Element) {
		c.removed = true
		c.doc.release(c)
	})
	e.doc.logger.Debug("element removed", zap.Stringer("element", e))
}
