package settings

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color is an opaque RGB color, written as #rrggbb.
type Color struct {
	R, G, B uint8
}

// ParseColor accepts #rrggbb and the #rgb shorthand. The leading '#' is optional.
func ParseColor(raw string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, raw)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseColor is ParseColor for literals known to be valid.
func MustParseColor(raw string) Color {
	c, err := ParseColor(raw)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NRGBA returns the color as a fully opaque color.NRGBA.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// Lerp interpolates linearly from c toward to; t is clamped to [0,1].
func (c Color) Lerp(to Color, t float64) Color {
	if t <= 0 {
		return c
	}
	if t >= 1 {
		return to
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*t + 0.5)
	}
	return Color{R: mix(c.R, to.R), G: mix(c.G, to.G), B: mix(c.B, to.B)}
}

func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
