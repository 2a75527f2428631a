package settings

import (
	"errors"
	"fmt"
)

// MaxDimension bounds width and height so a single request cannot allocate an unbounded buffer.
const MaxDimension = 8192

// Lower bounds of the size parameters of the active pattern, and the most vector shapes
// one render may produce.
const (
	MinGridSize    = 5
	MinMeshDensity = 10
	MinPixelSize   = 2
	MaxShapes      = 1 << 21
)

var (
	ErrInvalidSize      = errors.New("invalid canvas size")
	ErrInvalidColor     = errors.New("invalid color")
	ErrUnknownPattern   = errors.New("unknown pattern")
	ErrUnknownShapeType = errors.New("unknown shape type")
	ErrUnknownLineType  = errors.New("unknown line type")
	ErrUnknownPreset    = errors.New("unknown preset")
	ErrOutOfRange       = errors.New("parameter out of range")
)

// Validate rejects snapshots the renderer must not be handed: degenerate or oversized
// canvases, unknown patterns, and parameters of the active pattern that are unknown or
// would make the render unbounded. Fields the active pattern does not read are ignored.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, s.Width, s.Height)
	}
	if s.Width > MaxDimension || s.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidSize, s.Width, s.Height, MaxDimension)
	}
	switch s.Pattern {
	case Checkerboard, Dots:
		if err := minimum("gridSize", s.GridSize, MinGridSize); err != nil {
			return err
		}
	case Geometric:
		if !contains(ShapeTypes, s.ShapeType) {
			return fmt.Errorf("%w: %q", ErrUnknownShapeType, s.ShapeType)
		}
		if err := minimum("gridSize", s.GridSize, MinGridSize); err != nil {
			return err
		}
	case Lines:
		if !contains(LineTypes, s.LineType) {
			return fmt.Errorf("%w: %q", ErrUnknownLineType, s.LineType)
		}
		// zero selects the default step
		if s.GridSize != 0 {
			if err := minimum("gridSize", s.GridSize, MinGridSize); err != nil {
				return err
			}
		}
	case LowPoly:
		if err := minimum("meshDensity", s.MeshDensity, MinMeshDensity); err != nil {
			return err
		}
	case NoiseGrain, PerlinNoise:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownPattern, s.Pattern)
	}
	if s.PostProcessing.Pixelate {
		if err := minimum("postProcessing.pixelSize", s.PostProcessing.PixelSize, MinPixelSize); err != nil {
			return err
		}
	}
	if n := s.ShapeCount(); n > MaxShapes {
		return fmt.Errorf("%w: %d shapes exceeds %d, raise the grid or mesh size", ErrOutOfRange, n, MaxShapes)
	}
	return nil
}

// ShapeCount is the number of vector shapes the active pattern draws for s, after
// normalization. Shader patterns draw none.
func (s Settings) ShapeCount() int {
	n := s.Normalized()
	cells := func(size, g, extra int) int { return (size+g-1)/g + extra }
	switch n.Pattern {
	case Dots:
		return cells(n.Width, n.GridSize, 1) * cells(n.Height, n.GridSize, 1)
	case Geometric:
		return cells(n.Width, n.GridSize, 2) * cells(n.Height, n.GridSize, 1)
	case Lines:
		return cells(n.Height, n.GridSize, 1)
	case LowPoly:
		return 2 * cells(n.Width, n.MeshDensity, 1) * cells(n.Height, n.MeshDensity, 1)
	}
	return 0
}

func minimum(name string, v, lo int) error {
	if v < lo {
		return fmt.Errorf("%w: %s %d is below %d", ErrOutOfRange, name, v, lo)
	}
	return nil
}

func contains[T comparable](haystack []T, needle T) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
