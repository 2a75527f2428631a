// Command headless renders auragen backgrounds without a display: once to files, or
// continuously behind the web UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/auragen/auragen/internal/app"
	"github.com/auragen/auragen/internal/app/screens"
	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/settings"
	"github.com/auragen/auragen/internal/state"
	"github.com/auragen/auragen/internal/web"
)

// overrides collects repeated -set key=value flags.
type overrides []string

func (o *overrides) String() string { return strings.Join(*o, ",") }

func (o *overrides) Set(v string) error {
	if !strings.Contains(v, "=") {
		return errors.New("want key=value")
	}
	*o = append(*o, v)
	return nil
}

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	var sets overrides
	preset := flag.String("preset", "", "size preset: "+presetNames())
	settingsFile := flag.String("settings", "", "settings JSON file to start from")
	seed := flag.Int64("seed", 0, "random seed; when unset the seed from the settings is kept")
	flag.Var(&sets, "set", "override one setting, e.g. -set pattern=low_poly (repeatable); keys: "+strings.Join(settings.Keys(), ", "))
	outDir := flag.String("out", "", "write the PNG to this directory and exit")
	serve := flag.Bool("serve", false, "serve the web UI and API instead of exiting")
	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	publicURL := flag.String("public-url", defaults.PublicURL, "base URL used in share links; also configurable via "+web.EnvPublicURL)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	verbose := flag.Bool("v", false, "log to stderr")
	flag.Parse()

	var logger app.Logger = app.NoopLogger{}
	if *verbose {
		logger = app.NewFileLogger(os.Stderr)
	}

	s, err := settings.Resolve(*settingsFile, *preset, sets)
	if err != nil {
		fmt.Println("settings error:", err)
		os.Exit(2)
	}
	if flagSet(flag.CommandLine, "seed") {
		s.Seed = *seed
	}
	if *outDir == "" && !*serve {
		*outDir = "."
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *outDir != "" {
		path, err := render.ExportFile(ctx, *outDir, s)
		if err != nil {
			fmt.Println("export error:", err)
			os.Exit(1)
		}
		logger.Infof("headless", "%s seed=%d", screens.Caption(s), s.Seed)
		fmt.Println(path)
	}
	if !*serve {
		return
	}

	store := state.NewStore(s)
	scheduler := render.NewScheduler()
	server := web.NewHTTPServer(web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode, PublicURL: *publicURL})
	server.StaticDir = *staticDir
	server.Logger = logger

	a := app.New(store, scheduler, render.NoopPresenter{}, server, nil)
	a.Logger = logger
	server.Deps = web.APIV1Deps{Settings: store, Display: a.Display, Preview: scheduler}

	fmt.Println("auragen headless listening on", *listenAddr)
	fmt.Println("API: http://" + displayAddr(*listenAddr) + "/api/v1/")
	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("app error:", err)
		os.Exit(1)
	}
}

// flagSet reports whether the named flag was given when fs was parsed.
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func presetNames() string {
	names := make([]string, 0, len(settings.Presets))
	for _, p := range settings.Presets {
		names = append(names, p.Name)
	}
	return strings.Join(names, " | ")
}

// displayAddr turns a listen address into something a browser can open.
func displayAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
