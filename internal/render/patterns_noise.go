package render

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"github.com/auragen/auragen/internal/settings"
)

const (
	grainLattice = 2
	grainDensity = 0.5

	// minTextureDensity keeps the perlin contrast division finite at density 0.
	minTextureDensity = 1e-6
)

// noiseGrain sets every point of a 2px lattice to the foreground with probability 0.5.
func noiseGrain(f Frame) Layer {
	fg := f.Foreground
	rng := f.Rand
	return Layer{Shader: func(x, y int) (settings.Color, bool) {
		if x%grainLattice != 0 || y%grainLattice != 0 {
			return fg, false
		}
		return fg, rng.Float64() > grainDensity
	}}
}

// perlinNoise blends between the two colors along a coherent noise field. The field is
// seeded from the render's random source, so a fixed seed gives a fixed texture.
func perlinNoise(f Frame) Layer {
	s := f.Settings
	noise := opensimplex.New(f.Rand.Int63())
	scale := 2 * s.NoiseScale
	density := s.TextureDensity
	bg, fg := f.Background, f.Foreground

	return Layer{Shader: func(x, y int) (settings.Color, bool) {
		raw := (noise.Eval2(float64(x)/scale, float64(y)/scale) + 1) / 2
		factor := clamp01((raw - (1 - density)) / math.Max(density, minTextureDensity))
		return bg.Lerp(fg, factor), true
	}}
}
