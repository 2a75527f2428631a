package render

import (
	"math"

	"github.com/auragen/auragen/internal/settings"
)

const (
	sineSampleStep     = 5.0
	triangleSampleStep = 10.0
	trianglePeriodBase = 50.0
)

// lines strokes one horizontal band every grid step. Wave bands are sampled until the
// sample position reaches the right edge so the last segment is never short.
func lines(f Frame) Layer {
	s := f.Settings
	if s.LineWidth <= 0 {
		return Layer{}
	}
	step := float64(s.GridSize)
	w, h := float64(f.Width), float64(f.Height)
	paint := Paint{Color: f.Foreground, Stroke: true, LineWidth: s.LineWidth}

	return Layer{Shapes: func(yield func(Shape) bool) {
		for y := 0.0; y < h+step; y += step {
			if !yield(Shape{Kind: ShapePolyline, Points: band(s, y, w), Paint: paint}) {
				return
			}
		}
	}}
}

// band samples one line centered on y.
func band(s settings.Settings, y, w float64) []Point {
	switch s.LineType {
	case settings.LineSine:
		return wave(y, w, sineSampleStep, func(x float64) float64 {
			return math.Sin(x*s.LineFrequency) * s.LineAmplitude
		})
	case settings.LineTriangle:
		period := trianglePeriodBase / s.LineFrequency
		return wave(y, w, triangleSampleStep, func(x float64) float64 {
			if s.LineFrequency <= 0 || math.Mod(x, period) < period/2 {
				return s.LineAmplitude
			}
			return -s.LineAmplitude
		})
	default:
		return []Point{{0, y}, {w, y}}
	}
}

func wave(y, width, step float64, dy func(x float64) float64) []Point {
	points := []Point{{0, y}}
	for x := 0.0; ; x += step {
		p := Point{X: x, Y: y + dy(x)}
		if p != points[len(points)-1] {
			points = append(points, p)
		}
		if x >= width {
			break
		}
	}
	return points
}
