package web

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auragen/auragen/internal/render"
	"github.com/auragen/auragen/internal/settings"
	"github.com/auragen/auragen/internal/state"
)

func smallSettings() settings.Settings {
	s := settings.Default()
	s.Width, s.Height = 48, 32
	s.GridSize = 8
	return s
}

func newTestServer(t *testing.T, deps APIV1Deps) (*httptest.Server, *state.Store) {
	t.Helper()
	store, ok := deps.Settings.(*state.Store)
	if !ok || store == nil {
		store = state.NewStore(smallSettings())
		deps.Settings = store
	}
	srv := &HTTPServer{Deps: deps, Config: ServerConfig{DevMode: true}}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d: %s", resp.StatusCode, want, body)
	}
}

func expectAPIError(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	expectStatus(t, resp, status)
	if got := decodeJSON[apiError](t, resp); got.Error != code {
		t.Fatalf("error code = %q, want %q (%s)", got.Error, code, got.Message)
	}
}

func TestGetSettings(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/settings", "")
	expectStatus(t, resp, http.StatusOK)
	got := decodeJSON[settingsResponse](t, resp)
	if got.Settings != store.Settings() || got.Version != store.Snapshot().Version {
		t.Fatalf("settings = %+v", got)
	}
	if !strings.HasPrefix(got.ShareURL, ts.URL+"/api/v1/export?") {
		t.Fatalf("share url = %q", got.ShareURL)
	}
}

func TestPatchSettingsMerges(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodPatch, ts.URL+"/api/v1/settings", `{"pattern":"dots","color2":"#f80","postProcessing":{"scanlines":true}}`)
	expectStatus(t, resp, http.StatusOK)

	s := store.Settings()
	if s.Pattern != settings.Dots || s.Color2 != settings.MustParseColor("#ff8800") || !s.PostProcessing.Scanlines {
		t.Fatalf("patched = %+v", s)
	}
	if s.Width != 48 || s.GridSize != 8 {
		t.Fatalf("untouched fields changed: %+v", s)
	}
}

func TestPatchSettingsRejectsInvalid(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{})
	before := store.Snapshot()

	expectAPIError(t, do(t, http.MethodPatch, ts.URL+"/api/v1/settings", `{"width":0}`), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodPatch, ts.URL+"/api/v1/settings", `{"pattern":"plaid"}`), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodPatch, ts.URL+"/api/v1/settings", `{"pattern":"low_poly","meshDensity":1}`), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodPatch, ts.URL+"/api/v1/settings", `{"color1":"blue"}`), http.StatusBadRequest, "invalid_json")
	expectAPIError(t, do(t, http.MethodPatch, ts.URL+"/api/v1/settings", `{"unknown":1}`), http.StatusBadRequest, "invalid_json")

	if store.Snapshot() != before {
		t.Fatal("rejected patches changed the store")
	}
}

func TestPutSettingsReplaces(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodPut, ts.URL+"/api/v1/settings", `{"width":640,"height":480,"pattern":"low_poly"}`)
	expectStatus(t, resp, http.StatusOK)

	want := settings.Default()
	want.Width, want.Height = 640, 480
	want.Pattern = settings.LowPoly
	if got := store.Settings(); got != want {
		t.Fatalf("replaced = %+v", got)
	}
}

func TestRerollAndNextPattern(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{})
	seed := store.Settings().Seed

	resp := do(t, http.MethodPost, ts.URL+"/api/v1/reroll", "")
	expectStatus(t, resp, http.StatusOK)
	if got := decodeJSON[settingsResponse](t, resp); got.Settings.Seed == seed {
		t.Fatal("seed unchanged")
	}

	expectStatus(t, do(t, http.MethodPost, ts.URL+"/api/v1/next-pattern", ""), http.StatusOK)
	if got := store.Settings().Pattern; got != settings.Dots {
		t.Fatalf("pattern = %s", got)
	}

	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/reroll", ""), http.StatusMethodNotAllowed, "method_not_allowed")
}

func TestEnumsAndPresets(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})

	resp := do(t, http.MethodGet, ts.URL+"/api/v1/patterns", "")
	expectStatus(t, resp, http.StatusOK)
	enums := decodeJSON[patternsResponse](t, resp)
	if len(enums.Patterns) != 7 || len(enums.ShapeTypes) != 3 || len(enums.LineTypes) != 3 {
		t.Fatalf("enums = %+v", enums)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/presets", "")
	expectStatus(t, resp, http.StatusOK)
	presets := decodeJSON[[]settings.Preset](t, resp)
	if len(presets) != len(settings.Presets) || presets[1].Width != 3840 {
		t.Fatalf("presets = %+v", presets)
	}
}

func decodePNG(t *testing.T, resp *http.Response) image.Image {
	t.Helper()
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestRenderPNGWithOverrides(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/render.png?width=40&height=30&pattern=lines", "")
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		t.Fatalf("preview should be inline, got %q", cd)
	}
	img := decodePNG(t, resp)
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestRenderPNGRejectsBadQuery(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})
	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/render.png?width=0", ""), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/render.png?gridSize=lots", ""), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/render.png?preset=8k", ""), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/render.png?width=1280&height=720&pattern=low_poly&meshDensity=1", ""), http.StatusBadRequest, "invalid_settings")
	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/render.png?pattern=dots&gridSize=1", ""), http.StatusBadRequest, "invalid_settings")
}

type fixedPreview struct{ res render.Result }

func (p fixedPreview) Latest() (render.Result, bool) { return p.res, true }

func TestRenderPNGReusesPreview(t *testing.T) {
	store := state.NewStore(smallSettings())
	cached := image.NewRGBA(image.Rect(0, 0, 3, 3))
	deps := APIV1Deps{
		Settings: store,
		Preview:  fixedPreview{render.Result{Settings: store.Settings(), Image: cached}},
		ExportFunc: func(context.Context, io.Writer, settings.Settings) error {
			t.Error("rendered although the preview matched")
			return nil
		},
	}
	ts, _ := newTestServer(t, deps)
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/render.png", "")
	expectStatus(t, resp, http.StatusOK)
	if b := decodePNG(t, resp).Bounds(); b.Dx() != 3 {
		t.Fatalf("bounds = %v", b)
	}
}

func TestExportIsAttachment(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/export?seed=9", "")
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename=auragen-export-48x32.png` {
		t.Fatalf("content disposition = %q", cd)
	}
	if seed := resp.Header.Get("X-Auragen-Seed"); seed != "9" {
		t.Fatalf("seed header = %q", seed)
	}
	decodePNG(t, resp)
}

func TestExportMatchesRender(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/export", "")
	expectStatus(t, resp, http.StatusOK)
	got, _ := io.ReadAll(resp.Body)

	var want bytes.Buffer
	if err := render.Export(context.Background(), &want, store.Settings()); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want.Bytes()) {
		t.Fatal("HTTP export differs from a direct export of the same settings")
	}
}

func TestExportBundle(t *testing.T) {
	deps := APIV1Deps{ExportFunc: func(_ context.Context, w io.Writer, s settings.Settings) error {
		_, err := io.WriteString(w, s.ExportFilename())
		return err
	}}
	ts, _ := newTestServer(t, deps)
	resp := do(t, http.MethodGet, ts.URL+"/api/v1/export/bundle.zip", "")
	expectStatus(t, resp, http.StatusOK)
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, bundleFilename) {
		t.Fatalf("content disposition = %q", cd)
	}

	body, _ := io.ReadAll(resp.Body)
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) != len(settings.Presets) {
		t.Fatalf("entries = %d", len(zr.File))
	}
	for i, f := range zr.File {
		want := fmt.Sprintf("auragen-export-%dx%d.png", settings.Presets[i].Width, settings.Presets[i].Height)
		if f.Name != want {
			t.Fatalf("entry %d = %q, want %q", i, f.Name, want)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		content, _ := io.ReadAll(rc)
		rc.Close()
		if string(content) != want {
			t.Fatalf("entry %d content = %q", i, content)
		}
	}
	if zr.File[1].Name != "auragen-export-3840x2160.png" {
		t.Fatalf("4k entry = %q", zr.File[1].Name)
	}
}

func TestShare(t *testing.T) {
	ts, store := newTestServer(t, APIV1Deps{PublicURL: "http://auragen.local/"})
	store.Update(func(s *settings.Settings) { s.Pattern = settings.PerlinNoise })

	resp := do(t, http.MethodGet, ts.URL+"/api/v1/share", "")
	expectStatus(t, resp, http.StatusOK)
	got := decodeJSON[shareResponse](t, resp)
	if !strings.HasPrefix(got.URL, "http://auragen.local/api/v1/export?") || !strings.Contains(got.URL, "pattern=perlin_noise") {
		t.Fatalf("url = %q", got.URL)
	}

	resp = do(t, http.MethodGet, ts.URL+"/api/v1/share.png?size=128", "")
	expectStatus(t, resp, http.StatusOK)
	if b := decodePNG(t, resp).Bounds(); b.Dx() != 128 {
		t.Fatalf("qr bounds = %v", b)
	}

	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/share.png?size=5000", ""), http.StatusBadRequest, "invalid_size")
}

func TestDisplayOptions(t *testing.T) {
	display := state.NewDisplayConfig(state.DefaultDisplayOptions())
	ts, _ := newTestServer(t, APIV1Deps{Display: display})

	resp := do(t, http.MethodPut, ts.URL+"/api/v1/display", `{"scale":"pixel","showShareQR":false}`)
	expectStatus(t, resp, http.StatusOK)
	got := display.Snapshot()
	if got.Scale != state.ScalePixel || got.ShowShareQR || !got.ShowCaption {
		t.Fatalf("display = %+v", got)
	}

	expectAPIError(t, do(t, http.MethodPut, ts.URL+"/api/v1/display", `{"scale":"zoom"}`), http.StatusBadRequest, "invalid_display")
}

func TestUnknownAPIPath(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})
	expectAPIError(t, do(t, http.MethodGet, ts.URL+"/api/v1/nope", ""), http.StatusNotFound, "not_found")
}

func TestStaticUI(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})
	resp := do(t, http.MethodGet, ts.URL+"/", "")
	expectStatus(t, resp, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<title>auragen</title>") {
		t.Fatal("index.html not served")
	}
}

func TestStaticDirMissing(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticUIHandler(t.TempDir()+"/nope").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDevCORSPreflight(t *testing.T) {
	ts, _ := newTestServer(t, APIV1Deps{})
	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/settings", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	expectStatus(t, resp, http.StatusNoContent)
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestHTTPServerStartStop(t *testing.T) {
	srv := NewHTTPServer(ServerConfig{ListenAddr: "127.0.0.1:0"})
	srv.Deps.Settings = state.NewStore(smallSettings())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatal(err)
	}
	resp := do(t, http.MethodGet, "http://"+srv.Addr().String()+"/api/v1/patterns", "")
	expectStatus(t, resp, http.StatusOK)

	if err := srv.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := srv.Start(ctx); err == nil {
		t.Fatal("restart after stop should fail")
	}
}

func TestDefaultServerConfigFromEnv(t *testing.T) {
	t.Setenv(EnvListenAddr, "")
	t.Setenv(EnvDevMode, "true")
	t.Setenv(EnvPublicURL, "http://frame.local")
	cfg, err := DefaultServerConfigFromEnv(":8080")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ListenAddr != ":8080" || !cfg.DevMode || cfg.PublicURL != "http://frame.local" {
		t.Fatalf("config = %+v", cfg)
	}

	t.Setenv(EnvDevMode, "sometimes")
	if _, err := DefaultServerConfigFromEnv(":8080"); err == nil {
		t.Fatal("expected error for non-boolean dev mode")
	}
}
