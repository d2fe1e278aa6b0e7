package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

func page(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func TestResize(t *testing.T) {
	tests := []struct {
		name       string
		src        image.Image
		width      int
		wantWidth  int
		wantHeight int
	}{
		{"downscale portrait", page(1275, 1650), 700, 700, 905},
		{"upscale", page(100, 50), 180, 180, 90},
		{"very wide keeps one row", page(5000, 1), 180, 180, 1},
		{"empty source", page(0, 0), 180, 0, 0},
		{"zero width", page(10, 10), 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resize(tt.src, tt.width)
			assert.Equal(t, tt.wantWidth, got.Bounds().Dx())
			assert.Equal(t, tt.wantHeight, got.Bounds().Dy())
		})
	}
}

func TestEncode(t *testing.T) {
	img := page(20, 10)

	data, err := Encode(img, domain.ImageFormatPNG)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())

	data, err = Encode(img, domain.ImageFormatJPEG)
	require.NoError(t, err)
	_, err = jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	_, err = Encode(img, domain.ImageFormat("gif"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestThumbnails(t *testing.T) {
	set, err := Thumbnails(page(1275, 1650), domain.ImageFormatPNG)
	require.NoError(t, err)

	widths := map[string][]byte{"large": set.Large, "normal": set.Normal, "small": set.Small}
	want := map[string]int{
		"large":  domain.LargeImageWidth,
		"normal": domain.NormalImageWidth,
		"small":  domain.SmallImageWidth,
	}
	for name, data := range widths {
		cfg, err := png.DecodeConfig(bytes.NewReader(data))
		require.NoError(t, err, name)
		assert.Equal(t, want[name], cfg.Width, name)
	}
}
