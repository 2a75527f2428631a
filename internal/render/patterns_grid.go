package render

import (
	"math"

	"github.com/auragen/auragen/internal/settings"
)

// checkerboard colors the top-left and bottom-right quadrants of every 2g tile.
func checkerboard(f Frame) Layer {
	g := f.Settings.GridSize
	fg := f.Foreground
	return Layer{Shader: func(x, y int) (settings.Color, bool) {
		return fg, (x/g+y/g)%2 == 0
	}}
}

func dots(f Frame) Layer {
	g := float64(f.Settings.GridSize)
	radius := g / 4
	paint := fillPaint(f.Foreground)
	w, h := float64(f.Width), float64(f.Height)

	return Layer{Shapes: func(yield func(Shape) bool) {
		for y := g / 2; y-radius < h; y += g {
			for x := g / 2; x-radius < w; x += g {
				if !yield(Shape{Kind: ShapeCircle, Center: Point{x, y}, Radius: radius, Paint: paint}) {
					return
				}
			}
		}
	}}
}

// geometric places one shape per grid cell. The grid starts one cell left of the canvas
// and runs one cell past the right and bottom edges so shapes are never clipped at a seam.
func geometric(f Frame) Layer {
	s := f.Settings
	g := float64(s.GridSize)
	w, h := float64(f.Width), float64(f.Height)
	angle := s.ShapeRotation * math.Pi / 180
	paint := fillPaint(f.Foreground)

	return Layer{Shapes: func(yield func(Shape) bool) {
		row := 0
		for y := 0.0; y < h+g; y += g {
			offset := 0.0
			if s.UseOffset && row%2 == 1 {
				offset = s.OffsetAmount
			}
			for x := -g; x < w+g; x += g {
				center := Point{X: x + offset + g/2, Y: y + g/2}
				if !yield(cellShape(s.ShapeType, center, g, angle, paint)) {
					return
				}
			}
			row++
		}
	}}
}

func cellShape(kind settings.ShapeType, center Point, g, angle float64, paint Paint) Shape {
	var outline []Point
	switch kind {
	case settings.ShapeCircle:
		return Shape{Kind: ShapeCircle, Center: center, Radius: g / 3, Paint: paint}
	case settings.ShapeOctagon:
		side, half := g/4, g/3
		outline = []Point{
			{-side, -half}, {side, -half}, {half, -side}, {half, side},
			{side, half}, {-side, half}, {-half, side}, {-half, -side},
		}
	default:
		r := g / 3
		outline = []Point{{0, -r}, {r, r}, {-r, r}}
	}

	points := make([]Point, len(outline))
	for i, p := range outline {
		points[i] = rotate(Point{X: center.X + p.X, Y: center.Y + p.Y}, center, angle)
	}
	return Shape{Kind: ShapePolygon, Points: points, Paint: paint}
}
