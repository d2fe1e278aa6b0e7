// Package imaging scales rendered pages and encodes them as page images.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// JPEGQuality is the encoder quality for jpeg page images.
const JPEGQuality = 85

// Set holds one page encoded at the three viewer widths.
type Set struct {
	Large  []byte
	Normal []byte
	Small  []byte
}

// Resize scales src to width, keeping the aspect ratio.
func Resize(src image.Image, width int) image.Image {
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || width <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Encode writes img in the given format.
func Encode(img image.Image, format domain.ImageFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case domain.ImageFormatPNG:
		err = png.Encode(&buf, img)
	case domain.ImageFormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		return nil, fmt.Errorf("%w: unknown image format %q", domain.ErrInvalidInput, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// Thumbnails scales a rendered page to the large, normal and small widths
// and encodes each. The small image is scaled from the normal one.
func Thumbnails(page image.Image, format domain.ImageFormat) (Set, error) {
	large := Resize(page, domain.LargeImageWidth)
	normal := Resize(large, domain.NormalImageWidth)
	small := Resize(normal, domain.SmallImageWidth)

	var set Set
	var err error
	if set.Large, err = Encode(large, format); err != nil {
		return Set{}, err
	}
	if set.Normal, err = Encode(normal, format); err != nil {
		return Set{}, err
	}
	if set.Small, err = Encode(small, format); err != nil {
		return Set{}, err
	}
	return set, nil
}
