// Package raster wraps the image operations exposed by the PixGonz
// backend: the phase 1 point/filter operations, the phase 2 color adjust,
// and the legacy no-profile display correction. Decoding accepts PNG, JPEG,
// GIF, BMP, TIFF and WebP; responses are always encoded as PNG.
package raster

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"io"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when the uploaded bytes cannot be decoded as an
// image in any supported format.
var ErrDecode = errors.New("raster: could not decode image")

// Decode reads an image in any supported format and normalizes it to NRGBA
// with the origin at (0, 0).
func Decode(r io.Reader) (*image.NRGBA, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, ErrDecode
	}
	return ToNRGBA(img), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToNRGBA copies img into a zero-origin NRGBA image.
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok && nrgba.Bounds().Min == (image.Point{}) {
		return nrgba
	}
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
