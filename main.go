package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/auragen/auragen/internal/app"
	"github.com/auragen/auragen/internal/buttons"
	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/settings"
	"github.com/auragen/auragen/internal/state"
	"github.com/auragen/auragen/internal/system"
	"github.com/auragen/auragen/internal/web"
)

const (
	envStdioLog = "AURAGEN_STDIO_LOG"
	envFBDevice = "AURAGEN_FB"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":80")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	debug := flag.Bool("debug", false, "enable debug logging to ./auragen-debug.log")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via "+envStdioLog)
	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	publicURL := flag.String("public-url", defaults.PublicURL, "base URL used in share links; also configurable via "+web.EnvPublicURL)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	fbDevice := flag.String("fb", envOr(envFBDevice, "/dev/fb0"), "framebuffer device; also configurable via "+envFBDevice)
	noDisplay := flag.Bool("no-display", false, "run without the framebuffer (web UI only)")
	noKeyboard := flag.Bool("no-keyboard", false, "do not read F4/F5/F6 from input devices")
	preset := flag.String("preset", "", "start with this size preset")
	settingsFile := flag.String("settings", "", "start from this settings JSON file")
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv(envStdioLog)
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	var logger app.Logger = app.NoopLogger{}
	if *debug {
		f, err := os.OpenFile("./auragen-debug.log", os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			defer f.Close()
			logger = app.NewFileLogger(f)
			logger.Infof("main", "debug logging enabled")
		} else {
			fmt.Println("debug log open error:", err)
		}
	}

	initial, err := settings.Resolve(*settingsFile, *preset, nil)
	if err != nil {
		fmt.Println("settings error:", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := state.NewStore(initial)
	scheduler := render.NewScheduler()

	var presenter render.Presenter = render.NoopPresenter{}
	if !*noDisplay {
		fbr := render.NewFBRenderer(*fbDevice)
		fbr.Logger = logger
		presenter = fbr
	}

	var btns buttons.Buttons = buttons.NewNoopButtons()
	if !*noKeyboard {
		kb := buttons.NewKeyboard()
		kb.Logger = logger
		btns = kb
	}

	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode, PublicURL: *publicURL})
	server.StaticDir = *staticDir
	server.Logger = logger

	a := app.New(store, scheduler, presenter, server, btns)
	a.Logger = logger
	a.Console = !*noDisplay
	server.Deps = web.APIV1Deps{Settings: store, Display: a.Display, Preview: scheduler}

	a.ShareBaseURL = *publicURL
	if a.ShareBaseURL == "" {
		base, err := system.BaseURL(ctx, system.InterfaceNetInfo{}, *listenAddr)
		if err != nil {
			logger.Errorf("main", "share url: %v", err)
		}
		a.ShareBaseURL = base
	}

	fmt.Println("auragen listening on", *listenAddr)
	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
