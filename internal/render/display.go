package render

import (
	"context"
	"image"
	"image/color"
)

// Display chrome colors around the rendered image.
var (
	Foreground = color.RGBA{R: 0xe2, G: 0xe8, B: 0xf0, A: 0xff} // #e2e8f0
	Muted      = color.RGBA{R: 0x64, G: 0x74, B: 0x8b, A: 0xff} // #64748b
	Background = color.RGBA{R: 0x02, G: 0x06, B: 0x17, A: 0xff} // #020617
)

// Presenter shows screens on some output and keeps them current.
type Presenter interface {
	Start(ctx context.Context) error
	Stop() error
	SetScreen(screen Screen)
	RunLoop(ctx context.Context, source ViewSource)
	Redraw(view View)
}

// View is everything a screen may draw.
type View struct {
	Result    Result
	HasResult bool
	// Pending is set while a newer snapshot than Result is being rendered.
	Pending  bool
	ShareURL string
}

// ViewSource supplies the current view and signals when it changes.
type ViewSource interface {
	View() View
	Changed() <-chan struct{}
}

type Screen interface {
	Start(ctx context.Context) error
	Stop() error
	Draw(d Drawer, v View)
}

// Drawer is what the presenter hands to screens to draw primitives without exposing the
// output device.
type Drawer interface {
	// Size returns the canvas size in pixels.
	Size() (width int, height int)

	FillBackground()
	FillRect(rect image.Rectangle, c color.Color)

	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y int, style TextStyle) TextMetrics

	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)

	DrawTextCentered(text string)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Size  int // font size in points; 0 means drawer default
	Align TextAlign
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
	// ScaleModePixel fits like ScaleModeFit but samples nearest-neighbor, for QR codes
	// and pixelated renders.
	ScaleModePixel
)

// NoopPresenter discards everything. It is used when no display is attached.
type NoopPresenter struct{}

func (NoopPresenter) Start(ctx context.Context) error                { return nil }
func (NoopPresenter) Stop() error                                    { return nil }
func (NoopPresenter) SetScreen(screen Screen)                        {}
func (NoopPresenter) RunLoop(ctx context.Context, source ViewSource) {}
func (NoopPresenter) Redraw(view View)                               {}
