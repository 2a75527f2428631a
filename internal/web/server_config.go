package web

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvListenAddr = "AURAGEN_LISTEN"
	EnvDevMode    = "AURAGEN_DEV"
	EnvPublicURL  = "AURAGEN_PUBLIC_URL"
)

// ServerConfig contains settings for running the HTTP server.
//
// The intended defaults differ per binary:
// - display appliance: :80
// - headless:          :8080
type ServerConfig struct {
	ListenAddr string
	DevMode    bool
	// PublicURL overrides the base of share links, e.g. when behind a proxy.
	PublicURL string
}

func DefaultServerConfigFromEnv(defaultListenAddr string) (ServerConfig, error) {
	listenAddr := os.Getenv(EnvListenAddr)
	if listenAddr == "" {
		listenAddr = defaultListenAddr
	}

	devMode := false
	if raw := os.Getenv(EnvDevMode); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return ServerConfig{}, fmt.Errorf("%s must be a boolean (got %q): %w", EnvDevMode, raw, err)
		}
		devMode = parsed
	}

	return ServerConfig{ListenAddr: listenAddr, DevMode: devMode, PublicURL: os.Getenv(EnvPublicURL)}, nil
}
