package screens

import (
	"context"
	"errors"
	"sync"

	"github.com/auragen/auragen/internal/render"
)

// ResultWaiter is implemented by *render.Scheduler.
type ResultWaiter interface {
	Wait(ctx context.Context, gen uint64) (render.Result, error)
}

// RenderingScreen is shown until the first frame of a generation is ready, then hands
// over to Next.
type RenderingScreen struct {
	Waiter     ResultWaiter
	Generation uint64
	Next       render.Screen
	App        AppController
	Logger     Logger

	cancel context.CancelFunc

	mu      sync.RWMutex
	message string
}

func NewRenderingScreen(waiter ResultWaiter, generation uint64, next render.Screen, app AppController, logger Logger) *RenderingScreen {
	return &RenderingScreen{
		Waiter:     waiter,
		Generation: generation,
		Next:       next,
		App:        app,
		Logger:     logger,
		message:    "rendering",
	}
}

func (screen *RenderingScreen) Start(ctx context.Context) error {
	if screen.Waiter == nil {
		return errors.New("no render scheduler configured")
	}
	if screen.App == nil || screen.Next == nil {
		return errors.New("no next screen configured")
	}

	screenCtx, cancel := context.WithCancel(ctx)
	screen.cancel = cancel

	go func() {
		res, err := screen.Waiter.Wait(screenCtx, screen.Generation)
		if err != nil {
			// Cancelled: the app is shutting down or the screen was replaced.
			return
		}
		if screen.Logger != nil {
			screen.Logger.Infof("app", "first frame gen=%d ready after %s", res.Generation, res.Elapsed)
		}
		if err := screen.App.SetScreen(screen.Next); err != nil {
			if screen.Logger != nil {
				screen.Logger.Errorf("app", "failed to switch to preview screen: %v", err)
			}
			screen.setMessage("display error")
			screen.App.Exit(err)
		}
	}()

	return nil
}

func (screen *RenderingScreen) Stop() error {
	if screen.cancel != nil {
		screen.cancel()
	}
	return nil
}

func (screen *RenderingScreen) setMessage(message string) {
	screen.mu.Lock()
	screen.message = message
	screen.mu.Unlock()
}

func (screen *RenderingScreen) getMessage() string {
	screen.mu.RLock()
	defer screen.mu.RUnlock()
	return screen.message
}

func (screen *RenderingScreen) Draw(drawer render.Drawer, view render.View) {
	drawer.FillBackground()
	drawer.DrawTextCentered(screen.getMessage())
}
