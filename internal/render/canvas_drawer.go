package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/golang/freetype/truetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/auragen/auragen/internal/render/layout"
)

const defaultTextSize = 24

// CanvasDrawer implements Drawer on an in-memory RGBA canvas. Presenters draw screens
// into it and then copy the canvas to their device.
type CanvasDrawer struct {
	canvas *image.RGBA
	ttFont *truetype.Font
	faces  map[int]font.Face
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
}

func NewCanvasDrawer(width, height int) *CanvasDrawer {
	d := &CanvasDrawer{
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		faces:  map[int]font.Face{},
	}
	if tt, err := truetype.Parse(goregular.TTF); err == nil {
		d.ttFont = tt
	}
	return d
}

// Canvas returns the backing image.
func (d *CanvasDrawer) Canvas() *image.RGBA { return d.canvas }

func (d *CanvasDrawer) Size() (int, int) {
	b := d.canvas.Bounds()
	return b.Dx(), b.Dy()
}

func (d *CanvasDrawer) FillBackground() {
	d.FillRect(d.canvas.Bounds(), Background)
}

func (d *CanvasDrawer) FillRect(rect image.Rectangle, c color.Color) {
	draw.Draw(d.canvas, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func (d *CanvasDrawer) face(size int) font.Face {
	if size <= 0 {
		size = defaultTextSize
	}
	if f, ok := d.faces[size]; ok {
		return f
	}
	var f font.Face = basicfont.Face7x13
	if d.ttFont != nil {
		f = truetype.NewFace(d.ttFont, &truetype.Options{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
	} else if d.Logger != nil {
		d.Logger.Errorf("fb", "no truetype font, using basicfont for size %d", size)
	}
	d.faces[size] = f
	return f
}

func (d *CanvasDrawer) MeasureText(text string, style TextStyle) TextMetrics {
	face := d.face(style.Size)
	m := face.Metrics()
	width := font.MeasureString(face, text).Ceil()
	ascent := m.Ascent.Ceil()
	descent := m.Descent.Ceil()
	return TextMetrics{
		Width:      width,
		Height:     ascent + descent,
		Ascent:     ascent,
		Descent:    descent,
		LineHeight: m.Height.Ceil(),
	}
}

func (d *CanvasDrawer) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	metrics := d.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= metrics.Width / 2
	case TextAlignRight:
		x -= metrics.Width
	}
	c := style.Color
	if c == nil {
		c = Foreground
	}
	drawer := &font.Drawer{
		Dst:  d.canvas,
		Src:  image.NewUniform(c),
		Face: d.face(style.Size),
		Dot:  fixed.P(x, y+metrics.Ascent),
	}
	drawer.DrawString(text)
	return metrics
}

func (d *CanvasDrawer) DrawTextCentered(text string) {
	w, h := d.Size()
	style := TextStyle{Color: Foreground, Size: 48, Align: TextAlignCenter}
	m := d.MeasureText(text, style)
	d.DrawText(text, w/2, (h-m.Height)/2, style)
}

func (d *CanvasDrawer) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	src := img.Bounds()
	var scaler xdraw.Scaler = xdraw.ApproxBiLinear
	target := rect
	switch mode {
	case ScaleModeFit:
		target = layout.FitAspect(rect, src.Dx(), src.Dy())
	case ScaleModePixel:
		target = layout.FitAspect(rect, src.Dx(), src.Dy())
		scaler = xdraw.NearestNeighbor
	case ScaleModeFill:
		src = layout.FitAspect(src, rect.Dx(), rect.Dy())
	}
	if target.Empty() || src.Empty() {
		return
	}
	scaler.Scale(d.canvas, target, img, src, xdraw.Over, nil)
}
