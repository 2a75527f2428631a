package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/auragen/auragen/internal/app/screens"
	"github.com/auragen/auragen/internal/buttons"
	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/state"
	"github.com/auragen/auragen/internal/system"
	"github.com/auragen/auragen/internal/web"
)

type App struct {
	Store     *state.Store
	Display   *state.DisplayConfig
	Scheduler *render.Scheduler
	Presenter render.Presenter
	Web       web.Server
	Buttons   buttons.Buttons
	Logger    Logger

	// Console switches the VT to graphics mode while the app runs. Only useful with
	// the framebuffer presenter.
	Console bool

	// ShareBaseURL is the base of the share link shown as a QR code. Empty hides it.
	ShareBaseURL string

	mu            sync.Mutex
	screenCtx     context.Context
	currentScreen render.Screen

	viewMu      sync.Mutex
	viewChanged chan struct{}

	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, scheduler *render.Scheduler, presenter render.Presenter, webServer web.Server, buttonDriver buttons.Buttons) *App {
	return &App{
		Store:     store,
		Display:   state.NewDisplayConfig(state.DefaultDisplayOptions()),
		Scheduler: scheduler,
		Presenter: presenter,
		Web:       webServer,
		Buttons:   buttonDriver,
		Logger:    NoopLogger{},
		exitCh:    make(chan error, 1),
	}
}

// Exit requests the app to stop running.
// Any screen can call this to terminate the process via the generic codepath.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Start runs the app until ctx is done or Exit is called: renders follow the store,
// the presenter follows the renders, and the web API and buttons edit the store.
func (app *App) Start(ctx context.Context) error {
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	app.exitOnce.Store(false)
	if app.Logger == nil {
		app.Logger = NoopLogger{}
	}
	if app.Store == nil {
		return errors.New("no settings store configured")
	}
	if app.Scheduler == nil {
		app.Scheduler = render.NewScheduler()
	}
	app.Scheduler.Logger = app.Logger
	if app.Presenter == nil {
		app.Presenter = render.NoopPresenter{}
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}
	if app.Buttons == nil {
		app.Buttons = buttons.NewNoopButtons()
	}
	if app.Display == nil {
		app.Display = state.NewDisplayConfig(state.DefaultDisplayOptions())
	}

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	var stops []func() error
	defer func() {
		cancel()
		app.stopScreen()
		wg.Wait()
		for i := len(stops) - 1; i >= 0; i-- {
			_ = stops[i]()
		}
	}()

	app.mu.Lock()
	app.screenCtx = runCtx
	app.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Scheduler.Run(runCtx)
	}()

	updates, unsubscribe := app.Store.Subscribe()
	stops = append(stops, func() error { unsubscribe(); return nil })
	gen := app.Scheduler.Submit(app.Store.Settings())
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.follow(runCtx, updates)
	}()

	if err := app.Presenter.Start(runCtx); err != nil {
		app.Logger.Errorf("app", "presenter start error: %v", err)
		return err
	}
	stops = append(stops, app.Presenter.Stop)

	if app.Console {
		console := system.Console{Logger: app.Logger}
		console.Acquire()
		stops = append(stops, func() error { console.Release(); return nil })
	}

	preview := screens.NewPreviewScreen(app.Display, app.Logger)
	if err := app.SetScreen(screens.NewRenderingScreen(app.Scheduler, gen, preview, app, app.Logger)); err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Presenter.RunLoop(runCtx, app)
	}()

	if err := app.Web.Start(runCtx); err != nil {
		app.Logger.Errorf("app", "web server start error: %v", err)
		return err
	}
	stops = append(stops, app.Web.Stop)

	if err := app.Buttons.Start(runCtx); err != nil {
		app.Logger.Errorf("app", "buttons start error: %v", err)
		return err
	}
	stops = append(stops, app.Buttons.Stop)
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.handleButtons(runCtx)
	}()

	app.Logger.Infof("app", "running, first render gen=%d", gen)

	var err error
	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-app.exitCh:
	}
	return err
}

// follow submits every new store version for rendering and forwards finished renders
// to the view listeners.
func (app *App) follow(ctx context.Context, updates <-chan uint64) {
	for {
		rendered := app.Scheduler.Changed()
		select {
		case <-ctx.Done():
			return
		case version := <-updates:
			snap := app.Store.Snapshot()
			gen := app.Scheduler.Submit(snap.Settings)
			app.Logger.Infof("app", "settings version=%d submitted as gen=%d", version, gen)
		case <-rendered:
		}
		app.notifyView()
	}
}

func (app *App) handleButtons(ctx context.Context) {
	events := app.Buttons.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			app.Logger.Infof("buttons", "event %s", ev)
			switch ev {
			case buttons.Exit:
				app.Exit(nil)
			case buttons.Reroll:
				app.Store.Reroll()
			case buttons.NextPattern:
				app.Store.NextPattern()
			}
		}
	}
}

// SetScreen stops the current screen and starts screen in its place.
func (app *App) SetScreen(screen render.Screen) error {
	app.mu.Lock()
	prev := app.currentScreen
	app.currentScreen = screen
	ctx := app.screenCtx
	app.mu.Unlock()
	if ctx == nil {
		return errors.New("app not started")
	}

	if prev != nil {
		_ = prev.Stop()
	}
	app.Presenter.SetScreen(screen)
	if err := screen.Start(ctx); err != nil {
		return err
	}
	app.Presenter.Redraw(app.View())
	return nil
}

func (app *App) stopScreen() {
	app.mu.Lock()
	screen := app.currentScreen
	app.currentScreen = nil
	app.mu.Unlock()
	if screen != nil {
		_ = screen.Stop()
	}
}

// View implements render.ViewSource.
func (app *App) View() render.View {
	res, ok := app.Scheduler.Latest()
	view := render.View{Result: res, HasResult: ok, Pending: !ok || res.Settings != app.Store.Settings()}
	if ok {
		view.ShareURL = render.ShareURL(app.ShareBaseURL, res.Settings)
	}
	return view
}

// Changed implements render.ViewSource.
func (app *App) Changed() <-chan struct{} {
	app.viewMu.Lock()
	defer app.viewMu.Unlock()
	if app.viewChanged == nil {
		app.viewChanged = make(chan struct{})
	}
	return app.viewChanged
}

func (app *App) notifyView() {
	app.viewMu.Lock()
	if app.viewChanged != nil {
		close(app.viewChanged)
	}
	app.viewChanged = make(chan struct{})
	app.viewMu.Unlock()
}

// Logger interface and implementations
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

type FileLogger struct{ w io.Writer }

func NewFileLogger(w io.Writer) FileLogger { return FileLogger{w: w} }
func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	writeLog(l.w, "INFO", component, format, args...)
}
func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	writeLog(l.w, "ERROR", component, format, args...)
}

func writeLog(w io.Writer, level, component, format string, args ...interface{}) {
	timestamp := time.Now().Format(time.RFC3339)
	msg := fmt.Sprintf(format, args...)
	_, _ = io.WriteString(w, timestamp+" ["+level+"] "+component+": "+msg+"\n")
}
