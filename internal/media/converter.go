// Package media turns uploaded images into size-capped JPEG data URLs that can be
// stored inline with the record that shows them.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

const (
	DefaultMaxWidth       = 1000
	DefaultQuality        = 70
	DefaultMaxUploadBytes = 10 << 20
	DefaultMaxOutputBytes = 1 << 20
	DefaultMaxPixels      = 40_000_000

	dataURLPrefix = "data:image/jpeg;base64,"
)

var (
	ErrImageProcessing = errors.New("image could not be processed")
	ErrImageTooLarge   = errors.New("image is too large")
)

type Config struct {
	MaxWidth       int
	Quality        int
	MaxUploadBytes int64
	MaxOutputBytes int64
	MaxPixels      int64
}

// Converter decodes JPEG, PNG and GIF uploads, scales them down to MaxWidth and
// re-encodes them as JPEG.
type Converter struct {
	cfg Config
}

func NewConverter(cfg Config) *Converter {
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = DefaultQuality
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.MaxOutputBytes <= 0 {
		cfg.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	return &Converter{cfg: cfg}
}

// Convert returns the upload as a data:image/jpeg;base64 URL
func (c *Converter) Convert(ctx context.Context, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, c.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read upload: %v", ErrImageProcessing, err)
	}
	if int64(len(raw)) > c.cfg.MaxUploadBytes {
		return "", fmt.Errorf("%w: upload exceeds %d bytes", ErrImageTooLarge, c.cfg.MaxUploadBytes)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrImageProcessing, err)
	}
	if pixels := int64(header.Width) * int64(header.Height); pixels > c.cfg.MaxPixels {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, header.Width, header.Height, c.cfg.MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrImageProcessing, err)
	}

	if img.Bounds().Dx() > c.cfg.MaxWidth {
		img = resize.Resize(uint(c.cfg.MaxWidth), 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: c.cfg.Quality}); err != nil {
		return "", fmt.Errorf("%w: encode: %v", ErrImageProcessing, err)
	}

	encoded := dataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes())
	if int64(len(encoded)) > c.cfg.MaxOutputBytes {
		return "", fmt.Errorf("%w: converted image is %d bytes", ErrImageTooLarge, len(encoded))
	}
	return encoded, nil
}
