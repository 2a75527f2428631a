package render

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/auragen/auragen/internal/settings"
)

// Result is a completed render together with the snapshot that produced it.
type Result struct {
	Settings   settings.Settings
	Image      *image.RGBA
	Generation uint64
	Elapsed    time.Duration
}

// Scheduler serializes renders for one output target. Submitting a snapshot supersedes
// the render in flight: its context is cancelled and its result, if any, is dropped.
type Scheduler struct {
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}

	// RenderFunc defaults to RenderContext.
	RenderFunc func(ctx context.Context, s settings.Settings) (*image.RGBA, error)

	mu         sync.Mutex
	generation uint64
	pending    *settings.Settings
	cancel     context.CancelFunc
	latest     *Result
	changed    chan struct{}
	wake       chan struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		RenderFunc: RenderContext,
		changed:    make(chan struct{}),
		wake:       make(chan struct{}, 1),
	}
}

// Submit queues s and returns its generation. Any render still running is cancelled.
func (s *Scheduler) Submit(snap settings.Settings) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.pending = &snap
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return gen
}

// Latest returns the newest completed render.
func (s *Scheduler) Latest() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Result{}, false
	}
	return *s.latest, true
}

// Changed returns a channel that is closed when a newer result than the current one
// is published. Call it again after it fires.
func (s *Scheduler) Changed() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changed
}

// Wait blocks until a result of at least generation gen is available.
func (s *Scheduler) Wait(ctx context.Context, gen uint64) (Result, error) {
	for {
		changed := s.Changed()
		if res, ok := s.Latest(); ok && res.Generation >= gen {
			return res, nil
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-changed:
		}
	}
}

// Run renders submitted snapshots one at a time until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}

		s.mu.Lock()
		job := s.pending
		gen := s.generation
		s.pending = nil
		jobCtx, cancel := context.WithCancel(ctx)
		s.cancel = cancel
		s.mu.Unlock()

		if job == nil {
			cancel()
			continue
		}
		s.render(jobCtx, *job, gen)
		cancel()
	}
}

func (s *Scheduler) render(ctx context.Context, snap settings.Settings, gen uint64) {
	started := time.Now()
	renderFunc := s.RenderFunc
	if renderFunc == nil {
		renderFunc = RenderContext
	}
	img, err := renderFunc(ctx, snap)
	elapsed := time.Since(started)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.infof("render gen=%d superseded after %s", gen, elapsed)
			return
		}
		s.errorf("render gen=%d failed: %v", gen, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.infof("render gen=%d dropped, gen=%d pending", gen, s.generation)
		return
	}
	s.latest = &Result{Settings: snap, Image: img, Generation: gen, Elapsed: elapsed}
	close(s.changed)
	s.changed = make(chan struct{})
	s.infof("render gen=%d %dx%d %s done in %s", gen, snap.Width, snap.Height, snap.Pattern, elapsed)
}

func (s *Scheduler) infof(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Infof("render", format, args...)
	}
}

func (s *Scheduler) errorf(format string, args ...interface{}) {
	if s.Logger != nil {
		s.Logger.Errorf("render", format, args...)
	}
}
