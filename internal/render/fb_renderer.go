package render

import (
	"context"
	"errors"
	"image"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	fb "github.com/gonutz/framebuffer"
)

const fbRefreshInterval = time.Second

// FBRenderer presents screens on a Linux framebuffer. Screens draw into an offscreen
// canvas of the device's size which is then copied to the device in one pass.
type FBRenderer struct {
	Device string

	fbDev   *fb.Device
	drawer  *CanvasDrawer
	running atomic.Bool

	mu      sync.Mutex
	current Screen

	// drawMu serializes redraws; the canvas is shared.
	drawMu sync.Mutex

	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
}

func NewFBRenderer(device string) *FBRenderer {
	if device == "" {
		device = "/dev/fb0"
	}
	return &FBRenderer{Device: device}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return err
	}
	r.fbDev = dev
	bounds := dev.Bounds()
	if bounds.Empty() {
		dev.Close()
		return errors.New("framebuffer reports an empty screen")
	}
	r.infof("framebuffer %s open, bounds=%dx%d", r.Device, bounds.Dx(), bounds.Dy())

	r.drawer = NewCanvasDrawer(bounds.Dx(), bounds.Dy())
	r.drawer.Logger = r.Logger
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	if r.fbDev != nil {
		r.fbDev.Close()
	}
	return nil
}

// SetScreen sets the screen drawn on the next redraw.
func (r *FBRenderer) SetScreen(screen Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

// Redraw draws the current screen for view and copies it to the framebuffer.
func (r *FBRenderer) Redraw(view View) {
	r.mu.Lock()
	screen := r.current
	r.mu.Unlock()
	if !r.running.Load() || screen == nil || r.fbDev == nil {
		return
	}
	r.drawMu.Lock()
	defer r.drawMu.Unlock()
	r.drawer.FillBackground()
	screen.Draw(r.drawer, view)
	blitToFB(r.fbDev, r.drawer.Canvas())
}

// RunLoop redraws whenever source reports a change, and once a second otherwise so the
// console never shows through.
func (r *FBRenderer) RunLoop(ctx context.Context, source ViewSource) {
	ticker := time.NewTicker(fbRefreshInterval)
	defer ticker.Stop()
	for {
		changed := source.Changed()
		r.Redraw(source.View())
		select {
		case <-ctx.Done():
			return
		case <-changed:
			r.infof("redraw on new frame")
		case <-ticker.C:
		}
	}
}

func (r *FBRenderer) infof(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Infof("fb", format, args...)
	}
}

// blitToFB copies the canvas to the device; both have the same size.
func blitToFB(dev *fb.Device, canvas *image.RGBA) {
	if dev == nil {
		return
	}
	bounds := dev.Bounds()
	draw.Draw(dev, bounds, canvas, canvas.Bounds().Min, draw.Src)
}
