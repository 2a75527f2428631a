//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const (
	evKey = 0x01

	keyDown = 1
)

// WatchKeys watches Linux evdev devices under /dev/input/event* and calls onKey for
// every press of one of codes. It returns immediately; the readers stop with ctx.
//
// It is best-effort: if no input devices are available, it logs and returns.
func WatchKeys(ctx context.Context, l logger, codes []uint16, onKey func(code uint16)) {
	if onKey == nil || len(codes) == 0 {
		return
	}
	wanted := make(map[uint16]bool, len(codes))
	for _, c := range codes {
		wanted[c] = true
	}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4
	if tvSize <= 0 {
		tvSize, eventSize = 16, 24
	}

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if l != nil {
			l.Infof("input", "no evdev devices found, keyboard controls disabled")
		}
		return
	}
	if l != nil {
		l.Infof("input", "watching %d input devices", len(paths))
	}

	for _, path := range paths {
		go readKeys(ctx, path, tvSize, eventSize, func(code uint16) {
			if wanted[code] {
				onKey(code)
			}
		})
	}
}

func readKeys(ctx context.Context, path string, tvSize, eventSize int, onKey func(code uint16)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 64*eventSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}

		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			if typ == evKey && value == keyDown {
				onKey(code)
			}
		}
	}
}
