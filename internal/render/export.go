package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/auragen/auragen/internal/settings"
)

var pngEncoder = png.Encoder{CompressionLevel: png.DefaultCompression}

// EncodePNG writes img as a lossless PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := pngEncoder.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Export validates s, renders it and writes the PNG to w.
func Export(ctx context.Context, w io.Writer, s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	img, err := RenderContext(ctx, s)
	if err != nil {
		return err
	}
	return EncodePNG(w, img)
}

// ExportFile renders s into dir under its export filename and returns the written path.
func ExportFile(ctx context.Context, dir string, s settings.Settings) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, s.ExportFilename())
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if err := Export(ctx, f, s); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
