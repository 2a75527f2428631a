package render

import (
	"iter"
	"math"
	"math/rand"

	"github.com/auragen/auragen/internal/settings"
)

// Point is a position in canvas pixels; the origin is the top-left corner.
type Point struct {
	X, Y float64
}

type ShapeKind int

const (
	ShapePolygon ShapeKind = iota
	ShapePolyline
	ShapeCircle
)

// Paint describes how a shape is drawn. A shape may be both filled and stroked.
type Paint struct {
	Color     settings.Color
	Fill      bool
	Stroke    bool
	LineWidth float64
}

// Shape is one vector primitive of a pattern.
type Shape struct {
	Kind   ShapeKind
	Points []Point
	Center Point
	Radius float64
	Paint  Paint
}

// Shader decides the color of a single pixel. Returning false leaves the pixel as is.
// Shaders are called in row-major order, which keeps seeded draws reproducible.
type Shader func(x, y int) (settings.Color, bool)

// Layer is what a pattern produces: an optional per-pixel shader, applied first, and
// vector shapes composited on top in order. Shapes are produced lazily; random draws a
// pattern needs happen before the layer is returned.
type Layer struct {
	Shader Shader
	Shapes iter.Seq[Shape]
}

// Frame is the input every pattern sees: normalized settings, resolved colors and the
// random source of the current render.
type Frame struct {
	Width, Height int
	Settings      settings.Settings
	Background    settings.Color
	Foreground    settings.Color
	Rand          *rand.Rand
}

type patternFunc func(f Frame) Layer

var patterns = map[settings.Pattern]patternFunc{
	settings.Checkerboard: checkerboard,
	settings.Dots:         dots,
	settings.Geometric:    geometric,
	settings.Lines:        lines,
	settings.NoiseGrain:   noiseGrain,
	settings.PerlinNoise:  perlinNoise,
	settings.LowPoly:      lowPoly,
}

// PatternLayer runs the pattern selected by f.Settings. Unknown patterns yield an empty
// layer, leaving only the background.
func PatternLayer(f Frame) Layer {
	fn, ok := patterns[f.Settings.Pattern]
	if !ok {
		return Layer{}
	}
	return fn(f)
}

func fillPaint(c settings.Color) Paint {
	return Paint{Color: c, Fill: true}
}

func rotate(p, center Point, radians float64) Point {
	if radians == 0 {
		return p
	}
	sin, cos := math.Sincos(radians)
	dx, dy := p.X-center.X, p.Y-center.Y
	return Point{X: center.X + dx*cos - dy*sin, Y: center.Y + dx*sin + dy*cos}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
