package svgunit

import (
	"errors"
	"fmt"
	"math"

	"github.com/tdewolff/parse/v2/strconv"
)

// ErrInvalidNumber is returned for malformed number lists.
var ErrInvalidNumber = errors.New("invalid number")

// ParseNumbers parses a list of numbers separated by
// white space and/or commas, such as the value of
// `points`, `viewBox` or transform arguments.
func ParseNumbers(s string) ([]float64, error) {
	var out []float64
	b := []byte(s)
	i := skipListSeparators(b, 0)
	for i < len(b) {
		f, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return out, fmt.Errorf("at %d in %q: %w", i, s, ErrInvalidNumber)
		}
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return out, fmt.Errorf("at %d in %q: out of range: %w", i, s, ErrInvalidNumber)
		}
		out = append(out, f)
		i = skipListSeparators(b, i+n)
	}
	return out, nil
}

func skipListSeparators(b []byte, i int) int {
	for i < len(b) {
		switch b[i] {
		case ' ', ',', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}
