// Reads SVG files into svgdom documents.
// Only the structure and the geometric attributes are interpreted:
// painting properties are kept as raw attribute values.
package svgparse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/benoitkugler/svggeom/svgdom"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// ErrorMode determines how unsupported elements and
// invalid attribute values are handled.
type ErrorMode uint8

const (
	// IgnoreErrorMode silently skips the faulty values.
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode logs the faulty values and skips them.
	WarnErrorMode
	// StrictErrorMode aborts the parsing on the first error.
	StrictErrorMode
)

func (m ErrorMode) String() string {
	switch m {
	case IgnoreErrorMode:
		return "ignore"
	case WarnErrorMode:
		return "warn"
	case StrictErrorMode:
		return "strict"
	default:
		return fmt.Sprintf("<unknown ErrorMode %d>", m)
	}
}

// ParseErrorMode is the inverse of ErrorMode.String.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ignore":
		return IgnoreErrorMode, nil
	case "warn", "":
		return WarnErrorMode, nil
	case "strict":
		return StrictErrorMode, nil
	default:
		return 0, fmt.Errorf("invalid error mode %q", s)
	}
}

var errNoElement = errors.New("invalid svg: no element found")

// Options configures the parsing.
type Options struct {
	Mode ErrorMode
	// Context is the rendering context of the returned document.
	Context svgdom.Context
	// Logger is used by WarnErrorMode, and given to the document.
	// If nil, nothing is logged.
	Logger *zap.Logger
}

// Icon is a parsed SVG file.
type Icon struct {
	Doc          *svgdom.Document
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
}

// properties of the style attribute with a geometric meaning
var styleProperties = map[string]bool{
	"font-size": true,
	"mask":      true,
	"clip-path": true,
}

type iconCursor struct {
	icon   *Icon
	opts   Options
	logger *zap.Logger
	stack  []*svgdom.Element // open elements
	inText svgdom.Kind       // KindTitle or KindDesc when collecting text
}

// handle applies the error mode to `err`, returning
// a non nil error only if the parsing must stop.
func (c *iconCursor) handle(err error) error {
	if err == nil {
		return nil
	}
	switch c.opts.Mode {
	case StrictErrorMode:
		return err
	case WarnErrorMode:
		c.logger.Warn("skipping invalid content", zap.Error(err))
	}
	return nil
}

// ReadIconStream reads the SVG content from the given io.Reader.
// opts.Mode determines if the parser ignores, errors out, or logs a warning
// when it does not handle an element or an attribute value.
// On error, the partial document is returned alongside the error.
func ReadIconStream(stream io.Reader, opts Options) (*Icon, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	icon := &Icon{Doc: svgdom.NewDocument(opts.Context, logger)}
	cursor := &iconCursor{icon: icon, opts: opts, logger: logger}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				if !seenTag {
					return nil, errNoElement
				}
				break
			}
			return icon, err
		}
		switch se := t.(type) {
		case xml.StartElement:
			seenTag = true
			if err = cursor.readStartElement(se); err != nil {
				return icon, err
			}
		case xml.EndElement:
			cursor.stack = cursor.stack[:len(cursor.stack)-1]
			cursor.inText = svgdom.KindUnknown
		case xml.CharData:
			switch cursor.inText {
			case svgdom.KindTitle:
				icon.Titles[len(icon.Titles)-1] += string(se)
			case svgdom.KindDesc:
				icon.Descriptions[len(icon.Descriptions)-1] += string(se)
			}
		}
	}
	return icon, nil
}

// ReadIcon reads the SVG file at `iconFile`.
// See ReadIconStream for the error handling.
func ReadIcon(iconFile string, opts Options) (*Icon, error) {
	fin, errf := os.Open(iconFile)
	if errf != nil {
		return nil, errf
	}
	defer fin.Close()
	return ReadIconStream(fin, opts)
}

func (c *iconCursor) readStartElement(se xml.StartElement) error {
	doc := c.icon.Doc
	e := doc.CreateElement(se.Name.Local)
	if e.Kind() == svgdom.KindUnknown {
		// kept in the tree, without geometry
		if err := c.handle(fmt.Errorf("cannot process svg element %s", se.Name.Local)); err != nil {
			return err
		}
	}

	var style string
	for _, attr := range se.Attr {
		if strings.ToLower(attr.Name.Local) == "style" {
			style = attr.Value
		}
		err := e.SetAttribute(attr.Name.Local, attr.Value)
		if err = c.handle(wrapElement(e, err)); err != nil {
			return err
		}
	}
	// style declarations override the attributes
	if err := c.readStyle(e, style); err != nil {
		return err
	}

	if len(c.stack) == 0 {
		if err := doc.SetRoot(e); err != nil {
			return err
		}
	} else if err := c.stack[len(c.stack)-1].AppendChild(e); err != nil {
		return err
	}
	c.stack = append(c.stack, e)

	c.inText = svgdom.KindUnknown
	switch e.Kind() {
	case svgdom.KindTitle:
		c.icon.Titles = append(c.icon.Titles, "")
		c.inText = svgdom.KindTitle
	case svgdom.KindDesc:
		c.icon.Descriptions = append(c.icon.Descriptions, "")
		c.inText = svgdom.KindDesc
	}
	return nil
}

// readStyle applies the geometric properties found in
// the `style` attribute.
func (c *iconCursor) readStyle(e *svgdom.Element, style string) error {
	for _, pair := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(pair, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if !styleProperties[k] {
			continue
		}
		err := e.SetAttribute(k, strings.TrimSpace(v))
		if err = c.handle(wrapElement(e, err)); err != nil {
			return err
		}
	}
	return nil
}

func wrapElement(e *svgdom.Element, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("element %s: %w", e, err)
}
