package render

import (
	"context"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"

	"github.com/auragen/auragen/internal/settings"
)

// fill paints the whole buffer with one opaque color.
func fill(img *image.RGBA, c settings.Color) {
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c.NRGBA()}, image.Point{}, draw.Src)
}

// cancelCheckShapes is how many shapes are appended between cancellation checks.
const cancelCheckShapes = 4096

// composite writes a layer into img: the shader pixel by pixel, then the shapes through
// the gg vector rasterizer. Shapes are consumed as they are produced. Cancellation is
// checked once per row and between shape batches.
func composite(ctx context.Context, img *image.RGBA, layer Layer) error {
	if layer.Shader != nil {
		if err := shade(ctx, img, layer.Shader); err != nil {
			return err
		}
	}
	if layer.Shapes == nil {
		return nil
	}

	dc := gg.NewContextForRGBA(img)
	dc.SetLineCap(gg.LineCapButt)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.SetFillRule(gg.FillRuleWinding)

	// Consecutive shapes with the same paint share one path, which turns a grid of
	// thousands of cells into a single rasterizer pass.
	var paint Paint
	pending, seen := 0, 0
	for shape := range layer.Shapes {
		if seen%cancelCheckShapes == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		seen++
		if pending > 0 && shape.Paint != paint {
			drawPath(dc, paint)
			pending = 0
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if pending == 0 {
			dc.ClearPath()
			paint = shape.Paint
		}
		appendPath(dc, shape)
		pending++
	}
	if pending > 0 {
		drawPath(dc, paint)
	}
	return nil
}

func shade(ctx context.Context, img *image.RGBA, shader Shader) error {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			c, ok := shader(x, y)
			if !ok {
				continue
			}
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return nil
}

// drawPath paints the current path with paint and clears it.
func drawPath(dc *gg.Context, paint Paint) {
	dc.SetColor(paint.Color)
	switch {
	case paint.Fill && paint.Stroke && paint.LineWidth > 0:
		dc.FillPreserve()
		dc.SetLineWidth(paint.LineWidth)
		dc.Stroke()
	case paint.Fill:
		dc.Fill()
	case paint.Stroke && paint.LineWidth > 0:
		dc.SetLineWidth(paint.LineWidth)
		dc.Stroke()
	default:
		dc.ClearPath()
	}
}

func appendPath(dc *gg.Context, s Shape) {
	switch s.Kind {
	case ShapeCircle:
		dc.DrawCircle(s.Center.X, s.Center.Y, s.Radius)
	case ShapePolygon, ShapePolyline:
		if len(s.Points) == 0 {
			return
		}
		dc.MoveTo(s.Points[0].X, s.Points[0].Y)
		for _, p := range s.Points[1:] {
			dc.LineTo(p.X, p.Y)
		}
		if s.Kind == ShapePolygon {
			dc.ClosePath()
		}
	}
}
