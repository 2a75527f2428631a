package render

import (
	"image"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/auragen/auragen/internal/settings"
)

const defaultQRCodeSizePx = 256

// GenerateQRCodeImage returns a QR code image for the given payload.
// If payload is empty, it returns (nil, nil).
func GenerateQRCodeImage(payload string, sizePx int) (image.Image, error) {
	if payload == "" {
		return nil, nil
	}
	if sizePx <= 0 {
		sizePx = defaultQRCodeSizePx
	}

	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}

	return qrCode.Image(sizePx), nil
}

// ShareURL links to the export endpoint under baseURL with the fields of s that differ
// from the defaults in the query, so scanning it downloads the same image.
func ShareURL(baseURL string, s settings.Settings) string {
	if baseURL == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/api/v1/export?" + s.DiffQuery(settings.Default()).Encode()
}
