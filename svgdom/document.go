// Implements the SVG document model: elements with typed geometric
// attributes, change notifications, and the lazily computed geometry
// (paths, bounding boxes, mask and clip regions) consumed by the
// rasterizer.
package svgdom

import (
	"errors"

	"github.com/benoitkugler/svggeom/svgunit"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
)

var (
	// ErrCyclicReference is returned when a mask or clip path
	// references itself, directly or transitively.
	ErrCyclicReference = errors.New("cyclic reference")
	// ErrMissingDimension is returned when an element requires
	// a width or height which is not specified.
	ErrMissingDimension = errors.New("missing required dimension")
	// ErrUnknownReference is returned for url(#id) references
	// which do not resolve to an element of the expected kind.
	ErrUnknownReference = errors.New("unknown reference")

	errParamMismatch = errors.New("param mismatch")
	errOddPoints     = errors.New("odd number of coordinates")
	errRemoved       = errors.New("element removed from its document")
)

// Context is the rendering context of a document.
type Context struct {
	// Viewport is the size of the outermost viewport,
	// and the initial font size (DefaultFontSize if zero).
	Viewport svgunit.Frame
}

// Document owns a tree of elements, stored in an arena.
// It is not safe for concurrent use: attribute mutations must be
// serialized with geometry queries.
type Document struct {
	elements  []*Element // nil slots for removed elements
	ids       map[string]*Element
	root      *Element
	ctx       Context
	observers []Observer
	logger    *zap.Logger
}

// NewDocument returns an empty document.
// If logger is nil, nothing is logged.
func NewDocument(ctx Context, logger *zap.Logger) *Document {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document{ids: make(map[string]*Element), ctx: ctx, logger: logger}
}

// CreateElement returns a new detached element, whose kind is
// deduced from `tag`.
func (d *Document) CreateElement(tag string) *Element {
	e := &Element{
		doc:       d,
		index:     len(d.elements),
		kind:      KindFromTag(tag),
		tag:       tag,
		transform: rasterx.Identity,
	}
	d.elements = append(d.elements, e)
	return e
}

// Root returns the root element, or nil.
func (d *Document) Root() *Element { return d.root }

// SetRoot sets the root of the document tree, which must be
// a detached element of d.
func (d *Document) SetRoot(e *Element) error {
	switch {
	case e.doc != d:
		return errors.New("root from another document")
	case e.removed:
		return errRemoved
	case e.parent != nil:
		return errors.New("root must be detached")
	}
	if d.root != nil && d.root != e {
		d.root.Remove()
	}
	d.root = e
	e.invalidate(true)
	return nil
}

// ElementByID returns the element with the given id, or nil.
func (d *Document) ElementByID(id string) *Element { return d.ids[id] }

// Len returns the number of live elements.
func (d *Document) Len() int {
	n := 0
	for _, e := range d.elements {
		if e != nil {
			n++
		}
	}
	return n
}

// Context returns the rendering context.
func (d *Document) Context() Context { return d.ctx }

// SetContext changes the rendering context, invalidating
// every cached geometry.
func (d *Document) SetContext(ctx Context) {
	if ctx == d.ctx {
		return
	}
	d.ctx = ctx
	for _, e := range d.elements {
		if e != nil {
			e.geom.valid = false
		}
	}
}

// OnAttributeChanged registers an observer notified of the
// attribute changes of every element.
func (d *Document) OnAttributeChanged(o Observer) {
	d.observers = append(d.observers, o)
}

// Logger returns the logger used to report isolated element failures.
func (d *Document) Logger() *zap.Logger { return d.logger }

func (d *Document) registerID(e *Element) {
	if e.id == "" {
		return
	}
	if other, ok := d.ids[e.id]; ok && other != e {
		d.logger.Warn("duplicate id", zap.String("id", e.id), zap.Stringer("element", e))
	}
	d.ids[e.id] = e
}

func (d *Document) unregisterID(e *Element) {
	if e.id != "" && d.ids[e.id] == e {
		delete(d.ids, e.id)
	}
}

// release drops a removed element from the arena.
func (d *Document) release(e *Element) {
	d.unregisterID(e)
	d.elements[e.index] = nil
}
