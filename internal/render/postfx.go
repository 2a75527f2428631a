package render

import (
	"context"
	"image"
	"math"
	"math/rand"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/auragen/auragen/internal/settings"
)

const (
	scanlineSpacing = 4
	scanlineHeight  = 1.5
)

// ApplyPostFX runs the enabled post-processing stages on img in place, always in the
// order pixelate, scanlines, grain.
func ApplyPostFX(img *image.RGBA, pp settings.PostProcessing, rng *rand.Rand) {
	_ = applyPostFX(context.Background(), img, pp, rng)
}

func applyPostFX(ctx context.Context, img *image.RGBA, pp settings.PostProcessing, rng *rand.Rand) error {
	if pp.Pixelate {
		Pixelate(img, pp.PixelSize)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if pp.Scanlines {
		Scanlines(img, pp.ScanlineIntensity)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if pp.Noise {
		Grain(img, pp.NoiseIntensity, rng)
	}
	return nil
}

// Pixelate reduces img to ceil(w/size) x ceil(h/size) samples and scales it back up,
// both with nearest-neighbor sampling, leaving blocks of roughly size pixels.
func Pixelate(img *image.RGBA, size int) {
	if size <= 1 {
		return
	}
	b := img.Bounds()
	w := (b.Dx() + size - 1) / size
	h := (b.Dy() + size - 1) / size
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), img, b, xdraw.Src, nil)
	xdraw.NearestNeighbor.Scale(img, b, small, small.Bounds(), xdraw.Src, nil)
}

// Scanlines darkens a 1.5px band every fourth row by compositing black over it.
func Scanlines(img *image.RGBA, intensity float64) {
	alpha := clamp01(intensity)
	if alpha == 0 {
		return
	}
	b := img.Bounds()
	dc := gg.NewContextForRGBA(img)
	dc.SetRGBA(0, 0, 0, alpha)
	for y := 0; y < b.Dy(); y += scanlineSpacing {
		dc.DrawRectangle(0, float64(y), float64(b.Dx()), scanlineHeight)
	}
	dc.Fill()
}

// Grain adds one uniform draw in [-0.5, 0.5] scaled by 255*intensity to the red, green
// and blue channels of each pixel. Alpha is left alone.
func Grain(img *image.RGBA, intensity float64, rng *rand.Rand) {
	scale := 255 * intensity
	pix := img.Pix
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			delta := (rng.Float64() - 0.5) * scale
			row[i] = addClamped(row[i], delta)
			row[i+1] = addClamped(row[i+1], delta)
			row[i+2] = addClamped(row[i+2], delta)
		}
	}
}

func addClamped(v uint8, delta float64) uint8 {
	out := math.Round(float64(v) + delta)
	switch {
	case out <= 0:
		return 0
	case out >= 255:
		return 255
	default:
		return uint8(out)
	}
}
