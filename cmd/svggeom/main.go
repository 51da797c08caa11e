// Command svggeom inspects the geometry of SVG files:
// bounding boxes, mask and clip regions, coverage rasters
// and PDF outlines.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
