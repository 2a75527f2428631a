package web

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/settings"
	"github.com/auragen/auragen/internal/state"
)

// SettingsStore abstracts the shared settings used by the API.
//
// The concrete implementation is *state.Store.
type SettingsStore interface {
	Snapshot() state.State
	Replace(s settings.Settings) (state.State, error)
	Update(fn func(s *settings.Settings)) (state.State, error)
	Reroll() state.State
	NextPattern() state.State
}

// DisplayOptionsStore abstracts the attached screen's presentation options.
type DisplayOptionsStore interface {
	Snapshot() state.DisplayOptions
	Set(options state.DisplayOptions) error
}

// PreviewSource exposes the newest render of the display pipeline so the preview
// endpoint can reuse it instead of rendering again.
type PreviewSource interface {
	Latest() (render.Result, bool)
}

// sysLogger matches the logging shape used across the app.
// It is intentionally tiny so callers can pass existing loggers without adapters.
type sysLogger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type APIV1Deps struct {
	Settings SettingsStore
	Display  DisplayOptionsStore
	Preview  PreviewSource

	// ExportFunc renders s and writes the PNG. Defaults to render.Export.
	ExportFunc func(ctx context.Context, w io.Writer, s settings.Settings) error

	// PublicURL is the base of share links. When empty the request's Host is used.
	PublicURL string

	// MaxConcurrentRenders bounds how many HTTP renders run at once.
	MaxConcurrentRenders int

	Logger sysLogger
}

const defaultMaxConcurrentRenders = 2

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.Settings == nil {
		out.Settings = state.NewStore(settings.Default())
	}
	if out.Display == nil {
		out.Display = state.NewDisplayConfig(state.DefaultDisplayOptions())
	}
	if out.Preview == nil {
		out.Preview = noPreview{}
	}
	if out.ExportFunc == nil {
		out.ExportFunc = render.Export
	}
	if out.MaxConcurrentRenders <= 0 {
		out.MaxConcurrentRenders = defaultMaxConcurrentRenders
	}
	if out.Logger == nil {
		out.Logger = noopSysLogger{}
	}
	return out
}

// baseURL returns the scheme and host share links point at.
func (d APIV1Deps) baseURL(r *http.Request) string {
	if d.PublicURL != "" {
		return strings.TrimRight(d.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

type noPreview struct{}

func (noPreview) Latest() (render.Result, bool) { return render.Result{}, false }

type noopSysLogger struct{}

func (noopSysLogger) Infof(string, string, ...interface{})  {}
func (noopSysLogger) Errorf(string, string, ...interface{}) {}
