package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, dataURL string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(dataURL, dataURLPrefix))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(dataURL, dataURLPrefix))
	require.NoError(t, err)
	img, err := jpeg.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	return img
}

func TestConverter_Convert_Downscales(t *testing.T) {
	c := NewConverter(Config{})

	out, err := c.Convert(context.Background(), bytes.NewReader(pngBytes(t, 1600, 800)))

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
	img := decodeDataURL(t, out)
	assert.Equal(t, 1000, img.Bounds().Dx())
	assert.Equal(t, 500, img.Bounds().Dy())
}

func TestConverter_Convert_KeepsSmallImages(t *testing.T) {
	c := NewConverter(Config{})

	out, err := c.Convert(context.Background(), bytes.NewReader(pngBytes(t, 120, 90)))

	require.NoError(t, err)
	img := decodeDataURL(t, out)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())
}

func TestConverter_Convert_GIF(t *testing.T) {
	palette := color.Palette{color.Black, color.White}
	img := image.NewPaletted(image.Rect(0, 0, 40, 20), palette)
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))

	out, err := NewConverter(Config{}).Convert(context.Background(), &buf)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "data:image/jpeg;base64,"))
}

func TestConverter_Convert_NotAnImage(t *testing.T) {
	_, err := NewConverter(Config{}).Convert(context.Background(), strings.NewReader("plain text"))

	assert.ErrorIs(t, err, ErrImageProcessing)
}

func TestConverter_Convert_UploadTooLarge(t *testing.T) {
	c := NewConverter(Config{MaxUploadBytes: 100})

	_, err := c.Convert(context.Background(), bytes.NewReader(pngBytes(t, 64, 64)))

	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestConverter_Convert_OutputTooLarge(t *testing.T) {
	c := NewConverter(Config{MaxOutputBytes: 64})

	_, err := c.Convert(context.Background(), bytes.NewReader(pngBytes(t, 64, 64)))

	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestConverter_Convert_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter(Config{}).Convert(ctx, bytes.NewReader(pngBytes(t, 8, 8)))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestConverter_Convert_RejectsHugeDimensions(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 7000, 7000))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.Less(t, buf.Len(), DefaultMaxUploadBytes)

	_, err := NewConverter(Config{}).Convert(context.Background(), &buf)

	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestConverter_Convert_CustomPixelBudget(t *testing.T) {
	c := NewConverter(Config{MaxPixels: 100 * 100})

	_, err := c.Convert(context.Background(), bytes.NewReader(pngBytes(t, 120, 90)))
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = c.Convert(context.Background(), bytes.NewReader(pngBytes(t, 100, 100)))
	assert.NoError(t, err)
}
