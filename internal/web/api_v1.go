package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/settings"
	"github.com/auragen/auragen/internal/state"
)

const (
	maxSettingsBodyBytes = 64 << 10

	defaultShareQRSizePx = 256
	minShareQRSizePx     = 64
	maxShareQRSizePx     = 1024
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type settingsResponse struct {
	Settings settings.Settings `json:"settings"`
	Version  uint64            `json:"version"`
	ShareURL string            `json:"shareUrl"`
}

type patternsResponse struct {
	Patterns   []settings.Pattern   `json:"patterns"`
	ShapeTypes []settings.ShapeType `json:"shapeTypes"`
	LineTypes  []settings.LineType  `json:"lineTypes"`
}

type shareResponse struct {
	URL string `json:"url"`
}

func apiV1Router(deps APIV1Deps) http.Handler {
	deps = deps.withDefaults()
	limiter := newRenderLimiter(deps.MaxConcurrentRenders)

	mux := http.NewServeMux()
	mux.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) { handleSettings(w, r, deps) })
	mux.HandleFunc("/reroll", func(w http.ResponseWriter, r *http.Request) {
		handleStoreAction(w, r, deps, deps.Settings.Reroll)
	})
	mux.HandleFunc("/next-pattern", func(w http.ResponseWriter, r *http.Request) {
		handleStoreAction(w, r, deps, deps.Settings.NextPattern)
	})
	mux.HandleFunc("/presets", handlePresets)
	mux.HandleFunc("/patterns", handlePatterns)
	mux.HandleFunc("/display", func(w http.ResponseWriter, r *http.Request) { handleDisplay(w, r, deps) })
	mux.HandleFunc("/render.png", func(w http.ResponseWriter, r *http.Request) {
		handleImage(w, r, deps, limiter, false)
	})
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		handleImage(w, r, deps, limiter, true)
	})
	mux.HandleFunc("/export/bundle.zip", func(w http.ResponseWriter, r *http.Request) {
		handleExportBundle(w, r, deps, limiter)
	})
	mux.HandleFunc("/share", func(w http.ResponseWriter, r *http.Request) { handleShare(w, r, deps) })
	mux.HandleFunc("/share.png", func(w http.ResponseWriter, r *http.Request) { handleShareQR(w, r, deps) })
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusNotFound, "not_found", "not found")
	})
	return mux
}

func handleSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	switch r.Method {
	case http.MethodGet:
		writeSettings(w, r, deps, deps.Settings.Snapshot())

	case http.MethodPut:
		body, ok := readSettingsBody(w, r)
		if !ok {
			return
		}
		s, err := settings.Decode(bytes.NewReader(body), settings.Default())
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		st, err := deps.Settings.Replace(s)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
			return
		}
		deps.Logger.Infof("web", "settings replaced, version=%d", st.Version)
		writeSettings(w, r, deps, st)

	case http.MethodPatch:
		body, ok := readSettingsBody(w, r)
		if !ok {
			return
		}
		// Merged against the value current under the store lock.
		var decodeErr error
		st, err := deps.Settings.Update(func(s *settings.Settings) {
			merged, err := settings.Decode(bytes.NewReader(body), *s)
			if err != nil {
				decodeErr = err
				return
			}
			*s = merged
		})
		if decodeErr != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", decodeErr.Error())
			return
		}
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
			return
		}
		deps.Logger.Infof("web", "settings patched, version=%d", st.Version)
		writeSettings(w, r, deps, st)

	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

func readSettingsBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSettingsBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeAPIError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
			return nil, false
		}
		writeAPIError(w, http.StatusBadRequest, "invalid_body", err.Error())
		return nil, false
	}
	return body, true
}

func handleStoreAction(w http.ResponseWriter, r *http.Request, deps APIV1Deps, action func() state.State) {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeSettings(w, r, deps, action())
}

func handlePresets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, settings.Presets)
}

func handlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, patternsResponse{
		Patterns:   settings.Patterns,
		ShapeTypes: settings.ShapeTypes,
		LineTypes:  settings.LineTypes,
	})
}

func handleDisplay(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, deps.Display.Snapshot())
	case http.MethodPut:
		body, ok := readSettingsBody(w, r)
		if !ok {
			return
		}
		opts := deps.Display.Snapshot()
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&opts); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_json", err.Error())
			return
		}
		if err := deps.Display.Set(opts); err != nil {
			writeAPIError(w, http.StatusBadRequest, "invalid_display", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, opts)
	default:
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	}
}

// requestSettings is the current snapshot with the request's query parameters applied
// on top, validated.
func requestSettings(r *http.Request, deps APIV1Deps) (settings.Settings, error) {
	s := deps.Settings.Snapshot().Settings
	if err := s.ApplyQuery(r.URL.Query()); err != nil {
		return s, err
	}
	return s, s.Validate()
}

func handleImage(w http.ResponseWriter, r *http.Request, deps APIV1Deps, limiter renderLimiter, download bool) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	s, err := requestSettings(r, deps)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "invalid_settings", err.Error())
		return
	}

	var buf bytes.Buffer
	if res, ok := deps.Preview.Latest(); ok && res.Image != nil && res.Settings == s {
		err = render.EncodePNG(&buf, res.Image)
	} else {
		err = limiter.do(r.Context(), func() error {
			return deps.ExportFunc(r.Context(), &buf, s)
		})
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			deps.Logger.Infof("web", "render %s cancelled: %v", r.URL.Path, err)
			return
		}
		deps.Logger.Errorf("web", "render %s failed: %v", r.URL.Path, err)
		writeAPIError(w, http.StatusInternalServerError, "render_failed", err.Error())
		return
	}

	if download {
		setDownloadHeaders(w, s.ExportFilename(), "image/png")
	} else {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Auragen-Seed", strconv.FormatInt(s.Seed, 10))
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(buf.Bytes())
	}
}

func handleShare(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, shareResponse{URL: render.ShareURL(deps.baseURL(r), deps.Settings.Snapshot().Settings)})
}

func handleShareQR(w http.ResponseWriter, r *http.Request, deps APIV1Deps) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
		return
	}
	size := defaultShareQRSizePx
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < minShareQRSizePx || v > maxShareQRSizePx {
			writeAPIError(w, http.StatusBadRequest, "invalid_size",
				"size must be between "+strconv.Itoa(minShareQRSizePx)+" and "+strconv.Itoa(maxShareQRSizePx))
			return
		}
		size = v
	}

	url := render.ShareURL(deps.baseURL(r), deps.Settings.Snapshot().Settings)
	img, err := render.GenerateQRCodeImage(url, size)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, img); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "qr_failed", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func writeSettings(w http.ResponseWriter, r *http.Request, deps APIV1Deps, st state.State) {
	writeJSON(w, http.StatusOK, settingsResponse{
		Settings: st.Settings,
		Version:  st.Version,
		ShareURL: render.ShareURL(deps.baseURL(r), st.Settings),
	})
}

func setDownloadHeaders(w http.ResponseWriter, filename, contentType string) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	cd := mime.FormatMediaType("attachment", map[string]string{"filename": filename})
	w.Header().Set("Content-Disposition", cd)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}
