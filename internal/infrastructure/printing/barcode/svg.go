package barcode

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// linearSVG draws bar modules as filled rectangles. Bars are laid out in
// module units and stretched to the requested size.
func linearSVG(bars modules, moduleWidth, height float64, color, desc string) string {
	var b bytes.Buffer
	canvas := svg.New(&b)
	canvas.Start(units(float64(len(bars))*moduleWidth), units(height),
		fmt.Sprintf(`viewBox="0 0 %d 1"`, len(bars)), `preserveAspectRatio="none"`)
	canvas.Desc(desc)
	canvas.Group(`id="bars"`, `fill="`+html.EscapeString(color)+`"`, `stroke="none"`)
	for _, run := range darkRuns(bars) {
		canvas.Rect(run[0], 0, run[1]-run[0], 1)
	}
	canvas.Gend()
	canvas.End()
	return b.String()
}

// matrixSVG draws a square module matrix, one path segment per dark run
func matrixSVG(matrix [][]bool) string {
	size := len(matrix)

	var path strings.Builder
	for y, row := range matrix {
		for _, run := range darkRuns(row) {
			w := run[1] - run[0]
			fmt.Fprintf(&path, "M%d %dh%dv1h-%dz", run[0], y, w, w)
		}
	}

	var b bytes.Buffer
	canvas := svg.New(&b)
	canvas.Start(size, size, fmt.Sprintf(`viewBox="0 0 %d %d"`, size, size), `shape-rendering="crispEdges"`)
	canvas.Rect(0, 0, size, size, `fill="#fff"`)
	canvas.Path(path.String(), `fill="#000"`)
	canvas.End()
	return b.String()
}

// darkRuns returns the [start, end) index pairs of consecutive true values
func darkRuns(row []bool) [][2]int {
	var runs [][2]int
	for start := 0; start < len(row); {
		if !row[start] {
			start++
			continue
		}
		end := start
		for end < len(row) && row[end] {
			end++
		}
		runs = append(runs, [2]int{start, end})
		start = end
	}
	return runs
}

func units(v float64) int {
	return max(1, int(math.Round(v)))
}
