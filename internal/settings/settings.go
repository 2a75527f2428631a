package settings

import "math"

type Pattern string

const (
	Checkerboard Pattern = "checkerboard"
	Dots         Pattern = "dots"
	Geometric    Pattern = "geometric"
	Lines        Pattern = "lines"
	NoiseGrain   Pattern = "noise_grain"
	PerlinNoise  Pattern = "perlin_noise"
	LowPoly      Pattern = "low_poly"
)

// DefaultLineStep is the band spacing of the lines pattern when no grid size is set.
const DefaultLineStep = 50

// Patterns lists every pattern in the order the UI presents them.
var Patterns = []Pattern{Checkerboard, Dots, Geometric, Lines, NoiseGrain, PerlinNoise, LowPoly}

type ShapeType string

const (
	ShapeTriangle ShapeType = "triangle"
	ShapeCircle   ShapeType = "circle"
	ShapeOctagon  ShapeType = "octagon"
)

var ShapeTypes = []ShapeType{ShapeTriangle, ShapeCircle, ShapeOctagon}

type LineType string

const (
	LineStatic   LineType = "static"
	LineSine     LineType = "sine"
	LineTriangle LineType = "triangle"
)

var LineTypes = []LineType{LineStatic, LineSine, LineTriangle}

// PostProcessing holds the independent post-processing toggles and their intensities.
type PostProcessing struct {
	Pixelate          bool    `json:"pixelate"`
	PixelSize         int     `json:"pixelSize"`
	Scanlines         bool    `json:"scanlines"`
	ScanlineIntensity float64 `json:"scanlineIntensity"`
	Noise             bool    `json:"noise"`
	NoiseIntensity    float64 `json:"noiseIntensity"`
}

// Settings is one fully specified render snapshot.
// Fields that the active pattern does not use are carried along and ignored.
type Settings struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Color1   Color   `json:"color1"`
	Color2   Color   `json:"color2"`
	Inverted bool    `json:"inverted"`
	Pattern  Pattern `json:"pattern"`

	GridSize      int       `json:"gridSize"`
	ShapeType     ShapeType `json:"shapeType"`
	ShapeRotation float64   `json:"shapeRotation"`
	UseOffset     bool      `json:"useOffset"`
	OffsetAmount  float64   `json:"offsetAmount"`

	LineType      LineType `json:"lineType"`
	LineWidth     float64  `json:"lineWidth"`
	LineFrequency float64  `json:"lineFrequency"`
	LineAmplitude float64  `json:"lineAmplitude"`

	NoiseScale     float64 `json:"noiseScale"`
	TextureDensity float64 `json:"textureDensity"`

	MeshDensity  int     `json:"meshDensity"`
	MeshVariance float64 `json:"meshVariance"`

	PostProcessing PostProcessing `json:"postProcessing"`

	// Seed feeds every random draw of a render: noise patterns, mesh jitter and grain.
	Seed int64 `json:"seed"`
}

// Default returns the settings the generator starts with.
func Default() Settings {
	return Settings{
		Width:          1920,
		Height:         1080,
		Color1:         Color{R: 0x0f, G: 0x17, B: 0x2a},
		Color2:         Color{R: 0x38, G: 0xbd, B: 0xf8},
		Pattern:        Checkerboard,
		GridSize:       50,
		ShapeType:      ShapeTriangle,
		LineType:       LineSine,
		LineWidth:      2,
		LineFrequency:  0.05,
		LineAmplitude:  20,
		NoiseScale:     50,
		TextureDensity: 0.5,
		MeshDensity:    50,
		MeshVariance:   20,
		PostProcessing: PostProcessing{
			PixelSize:         10,
			ScanlineIntensity: 0.3,
			NoiseIntensity:    0.1,
		},
		Seed: 1,
	}
}

// Colors resolves the background and foreground colors after inversion.
func (s Settings) Colors() (background, foreground Color) {
	if s.Inverted {
		return s.Color2, s.Color1
	}
	return s.Color1, s.Color2
}

// Normalized returns a copy with the degenerate sizes that would stall or divide by
// zero clamped to 1. Everything else is left as given.
func (s Settings) Normalized() Settings {
	if s.Pattern == Lines && s.GridSize == 0 {
		s.GridSize = DefaultLineStep
	}
	s.GridSize = atLeastOne(s.GridSize)
	s.MeshDensity = atLeastOne(s.MeshDensity)
	s.PostProcessing.PixelSize = atLeastOne(s.PostProcessing.PixelSize)
	if s.NoiseScale < 1 || math.IsNaN(s.NoiseScale) {
		s.NoiseScale = 1
	}
	if s.LineWidth < 0 {
		s.LineWidth = 0
	}
	return s
}

// NextPattern returns the pattern after the current one, wrapping around.
func (s Settings) NextPattern() Pattern {
	for i, p := range Patterns {
		if p == s.Pattern {
			return Patterns[(i+1)%len(Patterns)]
		}
	}
	return Patterns[0]
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}
