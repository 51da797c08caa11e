package svgpath

import (
	"errors"
	"fmt"
	"math"

	"github.com/srwiley/rasterx"
	"github.com/tdewolff/parse/v2/strconv"
)

// ErrPathData is returned for malformed path data (the `d` attribute).
var ErrPathData = errors.New("invalid path data")

// number of arguments for each command
var pathArgs = [...]int{
	'M': 2, 'L': 2, 'H': 1, 'V': 1, 'C': 6,
	'S': 4, 'Q': 4, 'T': 2, 'A': 7, 'Z': 0,
}

// pathCursor holds the state of the path data being compiled
type pathCursor struct {
	path                Path
	placeX, placeY      float64 // current point
	startX, startY      float64 // start of the current sub-path
	cntlPtX, cntlPtY    float64 // last control point, for smooth curves
	lastKey             byte
	points              []float64
	inPath, hasControls bool
	scale               float64
}

// ParsePathData compiles an SVG path data string.
// On error, the path compiled so far is returned alongside the error,
// since renderers draw the valid prefix of a malformed path.
func ParsePathData(d string) (Path, error) {
	return ParseScaledPathData(d, 1)
}

// ParseScaledPathData is the same as ParsePathData, but the coordinates
// are multiplied by `scale` before being converted to fixed point.
func ParseScaledPathData(d string, scale float64) (Path, error) {
	c := pathCursor{scale: scale}
	err := c.compile([]byte(d))
	return c.path, err
}

func isPathSeparator(b byte) bool {
	return b == ' ' || b == ',' || b == '\n' || b == '\r' || b == '\t'
}

func skipSeparators(d []byte, i int) int {
	for i < len(d) && isPathSeparator(d[i]) {
		i++
	}
	return i
}

func (c *pathCursor) compile(d []byte) error {
	i := skipSeparators(d, 0)
	for i < len(d) {
		key := d[i]
		upper := key &^ 0x20 // ASCII upper case
		if int(upper) >= len(pathArgs) || (pathArgs[upper] == 0 && upper != 'Z') {
			return fmt.Errorf("unknown command %q at %d: %w", key, i, ErrPathData)
		}
		i = skipSeparators(d, i+1)
		// read all the numbers up to the next command
		c.points = c.points[:0]
		for i < len(d) {
			if upper == 'A' && (len(c.points)%7 == 3 || len(c.points)%7 == 4) {
				// flags may be written without separators
				if d[i] != '0' && d[i] != '1' {
					return fmt.Errorf("invalid arc flag at %d: %w", i, ErrPathData)
				}
				c.points = append(c.points, float64(d[i]-'0'))
				i = skipSeparators(d, i+1)
				continue
			}
			f, n := strconv.ParseFloat(d[i:])
			if n == 0 {
				break
			}
			c.points = append(c.points, f)
			i = skipSeparators(d, i+n)
		}
		c.scalePoints(upper)
		if err := c.addSegments(key, upper); err != nil {
			return fmt.Errorf("command %q ending at %d: %w", key, i, err)
		}
	}
	return nil
}

// scalePoints applies the cursor scale to the arguments of
// a command, except the arc rotations and flags.
func (c *pathCursor) scalePoints(upper byte) {
	if c.scale == 1 {
		return
	}
	for j := range c.points {
		if upper == 'A' && j%7 >= 2 && j%7 <= 4 {
			continue
		}
		c.points[j] *= c.scale
	}
}

// addSegments handles one command and its (possibly repeated) arguments.
func (c *pathCursor) addSegments(key, upper byte) error {
	l := len(c.points)
	k := pathArgs[upper]
	if k == 0 {
		if l != 0 {
			return ErrPathData
		}
		if c.inPath {
			c.path.Stop(true)
			c.placeX, c.placeY = c.startX, c.startY
			c.inPath = false
		}
		c.lastKey = key
		return nil
	}
	if l == 0 || l%k != 0 {
		return fmt.Errorf("expected a multiple of %d arguments, got %d: %w", k, l, ErrPathData)
	}
	isRel := key != upper
	if upper != 'M' && !c.inPath {
		// drawing after a close starts at the last start point
		c.path.Start(toFixedP(c.placeX, c.placeY))
		c.startX, c.startY = c.placeX, c.placeY
		c.inPath = true
	}
	for i := 0; i < l; i += k {
		pts := c.points[i : i+k]
		if isRel {
			c.makeAbsolute(upper, pts)
		}
		switch upper {
		case 'M':
			if i == 0 {
				c.path.Start(toFixedP(pts[0], pts[1]))
				c.startX, c.startY = pts[0], pts[1]
				c.inPath = true
			} else { // implicit line to
				c.path.Line(toFixedP(pts[0], pts[1]))
			}
			c.placeX, c.placeY = pts[0], pts[1]
			c.hasControls = false
		case 'L':
			c.lineTo(pts[0], pts[1])
		case 'H':
			c.lineTo(pts[0], c.placeY)
		case 'V':
			c.lineTo(c.placeX, pts[0])
		case 'Q':
			c.quadTo(pts[0], pts[1], pts[2], pts[3])
		case 'T':
			cx, cy := c.reflectControl('Q', 'T')
			c.quadTo(cx, cy, pts[0], pts[1])
		case 'C':
			c.cubicTo(pts[0], pts[1], pts[2], pts[3], pts[4], pts[5])
		case 'S':
			cx, cy := c.reflectControl('C', 'S')
			c.cubicTo(cx, cy, pts[0], pts[1], pts[2], pts[3])
		case 'A':
			c.arcTo(pts)
		}
		c.lastKey = upper
	}
	return nil
}

// makeAbsolute offsets relative coordinates by the current point
func (c *pathCursor) makeAbsolute(upper byte, pts []float64) {
	switch upper {
	case 'H':
		pts[0] += c.placeX
	case 'V':
		pts[0] += c.placeY
	case 'A':
		pts[5] += c.placeX
		pts[6] += c.placeY
	default:
		for j := 0; j < len(pts); j += 2 {
			pts[j] += c.placeX
			pts[j+1] += c.placeY
		}
	}
}

// reflectControl returns the reflection of the last control point
// if the previous command was a curve of the same family,
// or the current point otherwise.
func (c *pathCursor) reflectControl(curve, smooth byte) (float64, float64) {
	if c.hasControls && (c.lastKey == curve || c.lastKey == smooth) {
		return 2*c.placeX - c.cntlPtX, 2*c.placeY - c.cntlPtY
	}
	return c.placeX, c.placeY
}

func (c *pathCursor) lineTo(x, y float64) {
	c.path.Line(toFixedP(x, y))
	c.placeX, c.placeY = x, y
	c.hasControls = false
}

func (c *pathCursor) quadTo(cx, cy, x, y float64) {
	c.path.QuadBezier(toFixedP(cx, cy), toFixedP(x, y))
	c.cntlPtX, c.cntlPtY = cx, cy
	c.placeX, c.placeY = x, y
	c.hasControls = true
}

func (c *pathCursor) cubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	c.path.CubeBezier(toFixedP(c1x, c1y), toFixedP(c2x, c2y), toFixedP(x, y))
	c.cntlPtX, c.cntlPtY = c2x, c2y
	c.placeX, c.placeY = x, y
	c.hasControls = true
}

// arcTo expects rx, ry, rotation, large-arc, sweep, x, y
func (c *pathCursor) arcTo(pts []float64) {
	c.hasControls = false
	if pts[5] == c.placeX && pts[6] == c.placeY {
		return // zero length arc: omitted
	}
	ra, rb := math.Abs(pts[0]), math.Abs(pts[1])
	if ra == 0 || rb == 0 {
		c.lineTo(pts[5], pts[6])
		return
	}
	cx, cy := rasterx.FindEllipseCenter(&ra, &rb, pts[2]*math.Pi/180, c.placeX, c.placeY,
		pts[5], pts[6], pts[4] == 0, pts[3] == 0)
	arc := []float64{ra, rb, pts[2], pts[3], pts[4], pts[5], pts[6]}
	c.placeX, c.placeY = rasterx.AddArc(arc, cx, cy, c.placeX, c.placeY, &c.path)
}
