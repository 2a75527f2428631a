package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/auragen/auragen/internal/settings"
)

var (
	black = settings.Color{}
	white = settings.Color{R: 255, G: 255, B: 255}
)

func testSettings(pattern settings.Pattern, w, h int) settings.Settings {
	s := settings.Default()
	s.Width, s.Height = w, h
	s.Color1, s.Color2 = black, white
	s.Pattern = pattern
	s.Seed = 7
	return s
}

func pixel(img *image.RGBA, x, y int) settings.Color {
	c := img.RGBAAt(x, y)
	return settings.Color{R: c.R, G: c.G, B: c.B}
}

func expectPixel(t *testing.T, img *image.RGBA, x, y int, want settings.Color) {
	t.Helper()
	if got := pixel(img, x, y); got != want {
		t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
	}
}

func TestRasterizeSizeAndOpacity(t *testing.T) {
	for _, pattern := range settings.Patterns {
		t.Run(string(pattern), func(t *testing.T) {
			s := testSettings(pattern, 97, 61)
			s.GridSize = 13
			s.MeshDensity = 11
			s.NoiseScale = 5
			img := Rasterize(s, NewRand(s.Seed))
			if b := img.Bounds(); b.Dx() != 97 || b.Dy() != 61 {
				t.Fatalf("bounds = %v", b)
			}
			for i := 3; i < len(img.Pix); i += 4 {
				if img.Pix[i] != 0xff {
					t.Fatalf("pixel %d not opaque: alpha %d", i/4, img.Pix[i])
				}
			}
		})
	}
}

func TestRasterizeDegenerateSizesTerminate(t *testing.T) {
	for _, pattern := range settings.Patterns {
		s := testSettings(pattern, 20, 20)
		s.GridSize = 0
		s.MeshDensity = 0
		s.NoiseScale = 0
		s.PostProcessing.PixelSize = 0
		s.PostProcessing.Pixelate = true
		if img := Render(s); img == nil {
			t.Fatalf("%s: nil image", pattern)
		}
	}
}

func TestCheckerboard(t *testing.T) {
	s := testSettings(settings.Checkerboard, 200, 200)
	s.GridSize = 50
	img := Rasterize(s, NewRand(1))
	expectPixel(t, img, 10, 10, white)
	expectPixel(t, img, 60, 60, white)
	expectPixel(t, img, 10, 60, black)
	expectPixel(t, img, 60, 10, black)
	expectPixel(t, img, 110, 110, white)
}

func TestInvertedSwapsRoles(t *testing.T) {
	s := testSettings(settings.Checkerboard, 200, 200)
	s.GridSize = 50
	s.Inverted = true
	img := Rasterize(s, NewRand(1))
	expectPixel(t, img, 10, 10, black)
	expectPixel(t, img, 10, 60, white)
}

func TestDots(t *testing.T) {
	s := testSettings(settings.Dots, 200, 200)
	s.GridSize = 50
	img := Rasterize(s, NewRand(1))
	expectPixel(t, img, 25, 25, white)
	expectPixel(t, img, 175, 125, white)
	expectPixel(t, img, 0, 0, black)
	expectPixel(t, img, 50, 50, black)
}

func TestGeometricShapes(t *testing.T) {
	tests := []struct {
		name     string
		shape    settings.ShapeType
		rotation float64
		fg, bg   []image.Point
	}{
		{"circle", settings.ShapeCircle, 0, []image.Point{{50, 50}, {150, 150}}, []image.Point{{0, 0}, {100, 100}}},
		{"triangle", settings.ShapeTriangle, 0, []image.Point{{50, 60}, {25, 80}}, []image.Point{{30, 25}, {0, 0}}},
		{"triangle rotated", settings.ShapeTriangle, 180, []image.Point{{50, 40}, {30, 25}}, []image.Point{{25, 80}}},
		{"octagon", settings.ShapeOctagon, 0, []image.Point{{50, 50}, {25, 50}}, []image.Point{{19, 19}, {0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings(settings.Geometric, 200, 200)
			s.GridSize = 100
			s.ShapeType = tt.shape
			s.ShapeRotation = tt.rotation
			img := Rasterize(s, NewRand(1))
			for _, p := range tt.fg {
				expectPixel(t, img, p.X, p.Y, white)
			}
			for _, p := range tt.bg {
				expectPixel(t, img, p.X, p.Y, black)
			}
		})
	}
}

func TestGeometricRowOffset(t *testing.T) {
	s := testSettings(settings.Geometric, 200, 200)
	s.GridSize = 100
	s.ShapeType = settings.ShapeCircle

	img := Rasterize(s, NewRand(1))
	expectPixel(t, img, 100, 150, black)

	s.UseOffset = true
	s.OffsetAmount = 50
	img = Rasterize(s, NewRand(1))
	expectPixel(t, img, 100, 150, white)
	// even rows stay in place
	expectPixel(t, img, 50, 50, white)
	expectPixel(t, img, 100, 50, black)
}

func TestLinesStatic(t *testing.T) {
	s := testSettings(settings.Lines, 200, 200)
	s.GridSize = 50
	s.LineType = settings.LineStatic
	s.LineWidth = 4
	img := Rasterize(s, NewRand(1))
	for x := 0; x < 200; x++ {
		expectPixel(t, img, x, 50, white)
		expectPixel(t, img, x, 52, black)
		expectPixel(t, img, x, 25, black)
	}
}

func TestLinesZeroGridUsesDefaultStep(t *testing.T) {
	s := testSettings(settings.Lines, 120, 120)
	s.GridSize = 0
	s.LineType = settings.LineStatic
	s.LineWidth = 4
	img := Rasterize(s, NewRand(1))
	expectPixel(t, img, 60, 50, white)
	expectPixel(t, img, 60, 25, black)
}

func TestLinesWavesDrawForeground(t *testing.T) {
	for _, lt := range []settings.LineType{settings.LineSine, settings.LineTriangle} {
		s := testSettings(settings.Lines, 200, 200)
		s.LineType = lt
		s.LineWidth = 3
		img := Rasterize(s, NewRand(1))
		if n := countColor(img, white); n == 0 {
			t.Fatalf("%s: no foreground pixels", lt)
		}
		switch lt {
		case settings.LineSine:
			// band y=50 leaves its rest line rising, peaks near x=31 and dips near x=94
			expectPixel(t, img, 1, 50, white)
			expectPixel(t, img, 32, 69, white)
			expectPixel(t, img, 32, 70, white)
			expectPixel(t, img, 95, 30, white)
			expectPixel(t, img, 32, 50, black)
		case settings.LineTriangle:
			// the triangle wave sits at +amplitude over the first half period
			expectPixel(t, img, 100, 70, white)
		}
	}
}

func TestNoiseGrainLattice(t *testing.T) {
	s := testSettings(settings.NoiseGrain, 100, 100)
	img := Rasterize(s, NewRand(3))
	set := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := pixel(img, x, y)
			if x%2 == 1 || y%2 == 1 {
				if c != black {
					t.Fatalf("off-lattice pixel (%d,%d) = %v", x, y, c)
				}
				continue
			}
			if c == white {
				set++
			}
		}
	}
	// 2500 lattice points at p=0.5
	if set < 1000 || set > 1500 {
		t.Fatalf("lattice points set = %d", set)
	}

	again := Rasterize(s, NewRand(3))
	if !bytes.Equal(img.Pix, again.Pix) {
		t.Fatal("same seed produced different grain")
	}
}

func TestPerlinNoiseInterpolatesBetweenColors(t *testing.T) {
	s := testSettings(settings.PerlinNoise, 80, 60)
	s.NoiseScale = 10
	s.TextureDensity = 0.7
	img := Rasterize(s, NewRand(5))
	var levels = map[uint8]bool{}
	for y := 0; y < 60; y++ {
		for x := 0; x < 80; x++ {
			c := pixel(img, x, y)
			if c.R != c.G || c.G != c.B {
				t.Fatalf("pixel (%d,%d) = %v is off the black-white ramp", x, y, c)
			}
			levels[c.R] = true
		}
	}
	if len(levels) < 3 {
		t.Fatalf("expected a gradient, got %d levels", len(levels))
	}

	other := Rasterize(s, NewRand(6))
	if bytes.Equal(img.Pix, other.Pix) {
		t.Fatal("different seeds produced the same field")
	}
}

func TestLowPolyShadesAcrossCanvas(t *testing.T) {
	s := testSettings(settings.LowPoly, 200, 200)
	s.MeshDensity = 40
	s.MeshVariance = 0
	img := Rasterize(s, NewRand(1))
	tl := pixel(img, 45, 45)
	br := pixel(img, 185, 185)
	if tl.R >= br.R {
		t.Fatalf("top-left %v should be darker than bottom-right %v", tl, br)
	}
}

func TestCompositeStreamsShapes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	drawn := 0
	endless := Layer{Shapes: func(yield func(Shape) bool) {
		for {
			drawn++
			if drawn == 10 {
				cancel()
			}
			shape := Shape{Kind: ShapePolygon, Points: []Point{{0, 0}, {4, 0}, {0, 4}}, Paint: fillPaint(settings.Color{R: uint8(drawn)})}
			if !yield(shape) {
				return
			}
		}
	}}
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := composite(ctx, img, endless); err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if drawn > 10+cancelCheckShapes {
		t.Fatalf("kept producing shapes after cancel: %d", drawn)
	}
}

func TestLowPolyAtMinimumMesh(t *testing.T) {
	s := testSettings(settings.LowPoly, 320, 200)
	s.MeshDensity = settings.MinMeshDensity
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	img := Render(s)
	if countColor(img, black) == 320*200 {
		t.Fatal("no facets drawn")
	}
}

func TestRenderDeterministicForSeed(t *testing.T) {
	s := testSettings(settings.LowPoly, 120, 90)
	s.MeshVariance = 30
	s.PostProcessing.Noise = true
	a := Render(s)
	b := Render(s)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatal("same settings produced different images")
	}
	s.Seed++
	c := Render(s)
	if bytes.Equal(a.Pix, c.Pix) {
		t.Fatal("seed change had no effect")
	}
}

func TestRenderContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img, err := RenderContext(ctx, testSettings(settings.PerlinNoise, 50, 50))
	if err != context.Canceled || img != nil {
		t.Fatalf("got img=%v err=%v", img != nil, err)
	}
}

func TestPNGRoundTrip(t *testing.T) {
	s := testSettings(settings.PerlinNoise, 64, 48)
	s.PostProcessing.Scanlines = true
	s.PostProcessing.Noise = true
	img := Render(s)

	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("bounds = %v", decoded.Bounds())
	}
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			got := color.RGBAModel.Convert(decoded.At(x, y)).(color.RGBA)
			if want := img.RGBAAt(x, y); got != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestExportRejectsInvalidSettings(t *testing.T) {
	s := testSettings(settings.Dots, 0, 10)
	var buf bytes.Buffer
	if err := Export(context.Background(), &buf, s); err == nil {
		t.Fatal("expected error")
	}
	if buf.Len() != 0 {
		t.Fatal("wrote output for invalid settings")
	}
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	s := testSettings(settings.Dots, 30, 20)
	path, err := ExportFile(context.Background(), dir, s)
	if err != nil {
		t.Fatal(err)
	}
	if want := dir + "/auragen-export-30x20.png"; path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
}

func countColor(img *image.RGBA, c settings.Color) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if pixel(img, x, y) == c {
				n++
			}
		}
	}
	return n
}
