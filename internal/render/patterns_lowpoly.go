package render

import "math"

// lowPoly triangulates a jittered grid. The grid carries two extra rows and columns so
// the jittered mesh still covers the right and bottom edges.
func lowPoly(f Frame) Layer {
	s := f.Settings
	m := float64(s.MeshDensity)
	w, h := float64(f.Width), float64(f.Height)
	rows := int(math.Ceil(h/m)) + 2
	cols := int(math.Ceil(w/m)) + 2

	grid := make([][]Point, rows)
	for r := range grid {
		grid[r] = make([]Point, cols)
		for c := range grid[r] {
			grid[r][c] = Point{
				X: float64(c)*m + (f.Rand.Float64()-0.5)*s.MeshVariance,
				Y: float64(r)*m + (f.Rand.Float64()-0.5)*s.MeshVariance,
			}
		}
	}

	return Layer{Shapes: func(yield func(Shape) bool) {
		for r := 0; r < rows-1; r++ {
			for c := 0; c < cols-1; c++ {
				tl, tr := grid[r][c], grid[r][c+1]
				bl, br := grid[r+1][c], grid[r+1][c+1]
				if !yield(f.facet(tl, bl, tr)) || !yield(f.facet(bl, tr, br)) {
					return
				}
			}
		}
	}}
}

// facet is a flat-shaded triangle whose color follows its centroid across the canvas.
func (f Frame) facet(a, b, c Point) Shape {
	cx := (a.X + b.X + c.X) / 3
	cy := (a.Y + b.Y + c.Y) / 3
	t := clamp01((cx/float64(f.Width) + cy/float64(f.Height)) / 2)
	return Shape{
		Kind:   ShapePolygon,
		Points: []Point{a, b, c},
		Paint:  Paint{Color: f.Background.Lerp(f.Foreground, t), Fill: true, Stroke: true, LineWidth: 1},
	}
}
