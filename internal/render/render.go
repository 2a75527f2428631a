package render

import (
	"context"
	"image"
	"math/rand"

	"github.com/auragen/auragen/internal/settings"
)

// Rasterize fills a new width x height buffer with the background color and the
// selected pattern. Every pixel of the result is opaque.
func Rasterize(s settings.Settings, rng *rand.Rand) *image.RGBA {
	img, _ := rasterize(context.Background(), s, rng)
	return img
}

func rasterize(ctx context.Context, s settings.Settings, rng *rand.Rand) (*image.RGBA, error) {
	s = s.Normalized()
	bg, fg := s.Colors()
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	fill(img, bg)

	layer := PatternLayer(Frame{
		Width:      s.Width,
		Height:     s.Height,
		Settings:   s,
		Background: bg,
		Foreground: fg,
		Rand:       rng,
	})
	if err := composite(ctx, img, layer); err != nil {
		return nil, err
	}
	return img, nil
}

// Render runs the full pipeline for s: rasterize, then post-process. All randomness comes
// from s.Seed, so equal settings give equal images. The caller validates s beforehand.
func Render(s settings.Settings) *image.RGBA {
	img, _ := RenderContext(context.Background(), s)
	return img
}

// RenderContext is Render with cancellation. A cancelled render returns ctx.Err() and
// no image.
func RenderContext(ctx context.Context, s settings.Settings) (*image.RGBA, error) {
	rng := NewRand(s.Seed)
	img, err := rasterize(ctx, s, rng)
	if err != nil {
		return nil, err
	}
	if err := applyPostFX(ctx, img, s.Normalized().PostProcessing, rng); err != nil {
		return nil, err
	}
	return img, nil
}

// NewRand returns the random source a render with the given seed draws from.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
