package screens

import (
	"context"

	"github.com/auragen/auragen/internal/render"
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// AppController is implemented by the host application.
// Screens can switch to another screen or request termination.
type AppController interface {
	SetScreen(screen render.Screen) error
	Exit(err error)
}

// MessageScreen shows a single centered line.
type MessageScreen struct {
	Message string
}

func (MessageScreen) Start(ctx context.Context) error { return nil }
func (MessageScreen) Stop() error                     { return nil }

func (screen MessageScreen) Draw(drawer render.Drawer, view render.View) {
	drawer.FillBackground()
	drawer.DrawTextCentered(screen.Message)
}
