// Implements SVG lengths: a magnitude tagged with a unit,
// resolved to user units against a reference frame.
package svgunit

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// ErrInvalidUnit is returned for unparsable lengths
// or unsupported unit suffixes.
var ErrInvalidUnit = errors.New("invalid unit")

// Unit is the kind of a Length.
type Unit uint8

const (
	UnitNone Unit = iota // bare number, in user units
	UnitPx
	UnitPercent
	UnitPt
	UnitPc
	UnitIn
	UnitMm
	UnitCm
	UnitEm
	UnitEx
	unitCount
)

var unitSuffixes = [...]string{
	UnitNone:    "",
	UnitPx:      "px",
	UnitPercent: "%",
	UnitPt:      "pt",
	UnitPc:      "pc",
	UnitIn:      "in",
	UnitMm:      "mm",
	UnitCm:      "cm",
	UnitEm:      "em",
	UnitEx:      "ex",
}

// toUser converts absolute units to user units, at 96 user units per inch.
var toUser = [...]float64{
	UnitNone: 1,
	UnitPx:   1,
	UnitPt:   96. / 72.,
	UnitPc:   96. / 6.,
	UnitIn:   96.,
	UnitMm:   9.6 / 2.54,
	UnitCm:   96. / 2.54,
}

func (u Unit) String() string {
	if u >= unitCount {
		return fmt.Sprintf("<unknown Unit %d>", u)
	}
	return unitSuffixes[u]
}

// IsAbsolute returns true for units converted by a fixed factor,
// independent of any reference frame.
func (u Unit) IsAbsolute() bool {
	switch u {
	case UnitNone, UnitPx, UnitPt, UnitPc, UnitIn, UnitMm, UnitCm:
		return true
	default:
		return false
	}
}

// Axis selects which dimension of a Frame a percentage refers to.
type Axis uint8

const (
	Horizontal Axis = iota // x, width, rx ...
	Vertical               // y, height, ry ...
	Diagonal               // r, stroke-width ...
)

func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "Horizontal"
	case Vertical:
		return "Vertical"
	case Diagonal:
		return "Diagonal"
	default:
		return "<unknown Axis>"
	}
}

// DefaultFontSize is used for em and ex units when no font size
// is in effect.
const DefaultFontSize = 16.

// Frame is the reference used to resolve relative lengths:
// the size of the nearest viewport and the font size in effect.
type Frame struct {
	Width, Height float64
	FontSize      float64
}

// Reference returns the dimension a percentage along `axis` scales.
func (f Frame) Reference(axis Axis) float64 {
	switch axis {
	case Horizontal:
		return f.Width
	case Vertical:
		return f.Height
	default:
		return math.Sqrt((f.Width*f.Width + f.Height*f.Height) / 2)
	}
}

func (f Frame) fontSize() float64 {
	if f.FontSize <= 0 {
		return DefaultFontSize
	}
	return f.FontSize
}

// Length is an immutable magnitude tagged with its unit.
type Length struct {
	Value float64
	Unit  Unit
}

// Px returns a length in user units.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPx} }

// Percent returns a percentage on a 0-100 scale (50 = 50%).
func Percent(v float64) Length { return Length{Value: v, Unit: UnitPercent} }

// Number returns a bare number.
func Number(v float64) Length { return Length{Value: v} }

func (l Length) String() string {
	return fmt.Sprintf("%g%s", l.Value, l.Unit)
}

// IsPercent returns true for percentages.
func (l Length) IsPercent() bool { return l.Unit == UnitPercent }

// Resolve returns the length in user units. Percentages scale
// the dimension of `frame` selected by `axis`.
func (l Length) Resolve(axis Axis, frame Frame) (float64, error) {
	switch u := l.Unit; {
	case u >= unitCount:
		return 0, fmt.Errorf("resolving %d: %w", u, ErrInvalidUnit)
	case u.IsAbsolute():
		return l.Value * toUser[u], nil
	case u == UnitPercent:
		return l.Value / 100 * frame.Reference(axis), nil
	case u == UnitEm:
		return l.Value * frame.fontSize(), nil
	default: // UnitEx
		return l.Value * frame.fontSize() / 2, nil
	}
}

// Fraction returns the length as a fraction of a unit box,
// as used by objectBoundingBox values: 50% and 0.5 both give 0.5.
func (l Length) Fraction() (float64, error) {
	if l.Unit == UnitPercent {
		return l.Value / 100, nil
	}
	return l.Resolve(Horizontal, Frame{})
}

// ParseLength parses the grammar <number>(%|px|pt|pc|in|mm|cm|em|ex)?
func ParseLength(s string) (Length, error) {
	b := []byte(strings.TrimSpace(s))
	f, n := strconv.ParseFloat(b)
	if n == 0 {
		return Length{}, fmt.Errorf("parsing length %q: %w", s, ErrInvalidUnit)
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Length{}, fmt.Errorf("parsing length %q: out of range: %w", s, ErrInvalidUnit)
	}
	suffix := strings.ToLower(string(b[n:]))
	for u, suf := range unitSuffixes {
		if suf == suffix {
			return Length{Value: f, Unit: Unit(u)}, nil
		}
	}
	return Length{}, fmt.Errorf("parsing length %q: unknown suffix %q: %w", s, suffix, ErrInvalidUnit)
}

// MustParse is like ParseLength but panics on error.
// It simplifies declaring default values.
func MustParse(s string) Length {
	l, err := ParseLength(s)
	if err != nil {
		panic(err)
	}
	return l
}
