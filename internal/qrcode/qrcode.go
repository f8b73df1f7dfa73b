// Package qrcode renders deep links as PNG QR codes.
package qrcode

import (
	"encoding/base64"
	"strings"

	qr "github.com/skip2/go-qrcode"

	"github.com/stem-workshop/certificates/pkg/apperr"
)

const (
	DefaultSize = 100
	MinSize     = 64
	MaxSize     = 1024
)

// Options controls the rendered image.
type Options struct {
	Size   int  // edge length in pixels, clamped to [MinSize, MaxSize]
	Border bool // keep the quiet zone around the symbol
}

// ClampSize maps a requested edge length onto the supported range; zero or less means default.
func ClampSize(size int) int {
	switch {
	case size <= 0:
		return DefaultSize
	case size < MinSize:
		return MinSize
	case size > MaxSize:
		return MaxSize
	}
	return size
}

// Encode returns url as a PNG QR code. The same input always yields the same bytes.
func Encode(url string, opts Options) ([]byte, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.New(apperr.KindEncode, "Invalid URL")
	}
	code, err := qr.New(url, qr.Medium)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEncode, "Failed to encode QR code", err)
	}
	code.DisableBorder = !opts.Border
	png, err := code.PNG(ClampSize(opts.Size))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindEncode, "Failed to encode QR code", err)
	}
	return png, nil
}

// EncodeDataURL is Encode wrapped as a data:image/png;base64 URL for inline <img> use.
func EncodeDataURL(url string, opts Options) (string, error) {
	png, err := Encode(url, opts)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
