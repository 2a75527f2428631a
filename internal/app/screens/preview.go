package screens

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/render/layout"
	"github.com/auragen/auragen/internal/settings"
	"github.com/auragen/auragen/internal/state"
)

const (
	previewPaddingPx = 16
	captionHeightPx  = 48
	captionTextSize  = 22
	// The share QR takes this fraction of the shorter screen side.
	qrScreenFraction = 5
)

// DisplayOptions is implemented by *state.DisplayConfig.
type DisplayOptions interface {
	Snapshot() state.DisplayOptions
	MarkDrawn()
}

// PreviewScreen shows the newest render scaled to the screen, a caption with its size
// and pattern, and a QR code of the share link.
type PreviewScreen struct {
	Options DisplayOptions
	Logger  Logger

	mu      sync.Mutex
	qrURL   string
	qrImage image.Image
}

func NewPreviewScreen(options DisplayOptions, logger Logger) *PreviewScreen {
	return &PreviewScreen{Options: options, Logger: logger}
}

func (*PreviewScreen) Start(ctx context.Context) error { return nil }
func (*PreviewScreen) Stop() error                     { return nil }

func (screen *PreviewScreen) Draw(drawer render.Drawer, view render.View) {
	opts := state.DefaultDisplayOptions()
	if screen.Options != nil {
		opts = screen.Options.Snapshot()
		defer screen.Options.MarkDrawn()
	}

	drawer.FillBackground()
	if !view.HasResult {
		drawer.DrawTextCentered("rendering")
		return
	}

	w, h := drawer.Size()
	area := image.Rect(0, 0, w, h)
	var caption image.Rectangle
	if opts.ShowCaption {
		area, caption = layout.SplitHorizontal(area, h-captionHeightPx)
	}

	imageArea := layout.Inset(area, previewPaddingPx)
	drawer.DrawImageInRect(view.Result.Image, imageArea, scaleMode(opts.Scale, view.Result.Settings))

	if opts.ShowShareQR {
		if qr := screen.qrCode(view.ShareURL); qr != nil {
			side := min(w, h) / qrScreenFraction
			drawer.DrawImageInRect(qr, layout.AnchorBottomRight(layout.Inset(area, 2*previewPaddingPx), side, side), render.ScaleModePixel)
		}
	}

	if opts.ShowCaption {
		style := render.TextStyle{Color: render.Foreground, Size: captionTextSize}
		m := drawer.MeasureText("Ag", style)
		y := caption.Min.Y + (caption.Dy()-m.Height)/2
		drawer.DrawText(Caption(view.Result.Settings), caption.Min.X+previewPaddingPx, y, style)
		if view.Pending {
			style.Color = render.Muted
			style.Align = render.TextAlignRight
			drawer.DrawText("rendering", caption.Max.X-previewPaddingPx, y, style)
		}
	}
}

// Caption describes a render as "W × H px · pattern".
func Caption(s settings.Settings) string {
	return fmt.Sprintf("%d × %d px · %s", s.Width, s.Height, strings.ReplaceAll(string(s.Pattern), "_", " "))
}

// scaleMode maps the display option to a drawer mode. Pixelated renders always sample
// nearest-neighbor so their blocks stay sharp.
func scaleMode(mode state.ScaleMode, s settings.Settings) render.ScaleMode {
	switch mode {
	case state.ScaleFill:
		return render.ScaleModeFill
	case state.ScalePixel:
		return render.ScaleModePixel
	}
	if s.PostProcessing.Pixelate || s.Pattern == settings.NoiseGrain {
		return render.ScaleModePixel
	}
	return render.ScaleModeFit
}

func (screen *PreviewScreen) qrCode(url string) image.Image {
	if url == "" {
		return nil
	}
	screen.mu.Lock()
	defer screen.mu.Unlock()
	if url == screen.qrURL {
		return screen.qrImage
	}
	screen.qrURL = url
	img, err := render.GenerateQRCodeImage(url, 0)
	if err != nil {
		if screen.Logger != nil {
			screen.Logger.Errorf("app", "share qr: %v", err)
		}
		img = nil
	}
	screen.qrImage = img
	return img
}
