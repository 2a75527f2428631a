package web

import (
	"archive/zip"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/auragen/auragen/internal/settings"
)

const bundleFilename = "auragen-export-bundle.zip"

// renderLimiter bounds concurrent HTTP renders. Waiting callers give up when their
// request context ends.
type renderLimiter chan struct{}

func newRenderLimiter(n int) renderLimiter {
	if n <= 0 {
		n = 1
	}
	return make(renderLimiter, n)
}

func (l renderLimiter) do(ctx context.Context, fn func() error) error {
	select {
	case l <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l }()
	return fn()
}

// handleExportBundle streams a zip holding the current settings rendered at every
// resolution preset, one PNG per preset under its export filename.
func handleExportBundle(w http.ResponseWriter, r *http.Request, deps APIV1Deps, limiter renderLimiter) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	base, err := requestSettings(r, deps)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
		return
	}

	setDownloadHeaders(w, bundleFilename, "application/zip")
	w.WriteHeader(http.StatusOK)

	// Headers are out; failures from here on can only be logged and cut the stream.
	err = limiter.do(r.Context(), func() error {
		return streamPresetBundle(r.Context(), w, base, deps.ExportFunc)
	})
	if err != nil {
		deps.Logger.Errorf("web", "bundle export failed: %v", err)
		return
	}
	deps.Logger.Infof("web", "bundle export of %d presets done", len(settings.Presets))
}

func streamPresetBundle(ctx context.Context, w io.Writer, base settings.Settings, export func(context.Context, io.Writer, settings.Settings) error) error {
	zipWriter := zip.NewWriter(w)
	defer func() { _ = zipWriter.Close() }()

	for _, preset := range settings.Presets {
		s := base
		if err := s.ApplyPreset(preset.Name); err != nil {
			return err
		}
		// PNG data is already deflated.
		hdr := &zip.FileHeader{
			Name:     s.ExportFilename(),
			Method:   zip.Store,
			Modified: time.Now(),
		}
		zw, err := zipWriter.CreateHeader(hdr)
		if err != nil {
			return err
		}
		if err := export(ctx, zw, s); err != nil {
			return err
		}
	}
	return zipWriter.Close()
}
