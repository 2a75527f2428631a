//go:build !linux

package system

import "context"

// WatchKeys needs evdev; elsewhere keyboard controls are disabled.
func WatchKeys(ctx context.Context, l logger, codes []uint16, onKey func(code uint16)) {
	if l != nil {
		l.Infof("input", "keyboard controls need linux evdev, disabled")
	}
}
