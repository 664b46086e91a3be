// Package imaging decodes uploaded ID card images and stages them on disk for OCR.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/servconnect/mlservices/internal/domain"
)

// jpegQuality matches what the OCR engine was tuned against
const jpegQuality = 95

// DefaultMaxPixels bounds the decoded size of an uploaded image
const DefaultMaxPixels = 40_000_000

// Stager writes decoded images to temporary JPEG files.
type Stager struct {
	tempDir   string
	maxPixels int
}

// NewStager creates a stager writing into tempDir ("" uses the OS default).
// Images larger than maxPixels are rejected before decoding; maxPixels <= 0 uses DefaultMaxPixels.
func NewStager(tempDir string, maxPixels int) *Stager {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Stager{tempDir: tempDir, maxPixels: maxPixels}
}

// StageBase64 decodes a base64 image and writes it as an RGB JPEG.
// The returned cleanup removes the file and must always be called.
func (s *Stager) StageBase64(encoded string) (string, func(), error) {
	data, err := decodeBase64(encoded)
	if err != nil {
		return "", func() {}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", func() {}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(s.maxPixels) {
		return "", func() {}, fmt.Errorf("%w: image is %dx%d, limit is %d pixels", domain.ErrImageDecode, cfg.Width, cfg.Height, s.maxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", func() {}, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}

	f, err := os.CreateTemp(s.tempDir, "idcard-*.jpg")
	if err != nil {
		return "", func() {}, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if err := jpeg.Encode(f, FlattenOnWhite(img), &jpeg.Options{Quality: jpegQuality}); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, fmt.Errorf("failed to encode staged image: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, fmt.Errorf("failed to write staged image: %w", err)
	}

	return f.Name(), cleanup, nil
}

// FlattenOnWhite composites img over an opaque white background.
func FlattenOnWhite(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(out, b, img, b.Min, draw.Over)
	return out
}

// decodeBase64 accepts plain or data-URL base64, padded or not.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if idx := strings.Index(s, ","); idx >= 0 {
			s = s[idx+1:]
		}
	}
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}
