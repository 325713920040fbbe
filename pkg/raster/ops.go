package raster

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Brightness multiplies every channel by factor (>1 brighter, <1 darker),
// matching the multiplicative semantics of the original enhancer.
func Brightness(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.R = mul8(c.R, factor)
		c.G = mul8(c.G, factor)
		c.B = mul8(c.B, factor)
		return c
	})
}

// Contrast adjusts contrast by a multiplicative factor (1.0 identity).
func Contrast(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustContrast(img, (factor-1)*100)
}

// Saturation adjusts colorfulness by a multiplicative factor (1.0 identity).
func Saturation(img image.Image, factor float64) *image.NRGBA {
	return imaging.AdjustSaturation(img, (factor-1)*100)
}

// Rotate rotates the image counter-clockwise by angle degrees. With expand
// the canvas grows to fit the rotated image (black fill); without it the
// result is cropped back to the original dimensions.
func Rotate(img image.Image, angle float64, expand bool) *image.NRGBA {
	rotated := imaging.Rotate(img, angle, color.Black)
	if expand {
		return rotated
	}
	bounds := img.Bounds()
	return imaging.CropCenter(rotated, bounds.Dx(), bounds.Dy())
}

// Grayscale converts the image to grayscale, keeping RGB channels.
func Grayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// Blur applies a gaussian blur with the given radius.
func Blur(img image.Image, radius float64) *image.NRGBA {
	if radius <= 0 {
		return imaging.Clone(img)
	}
	return imaging.Blur(img, radius)
}

// Sharpen applies a sharpening filter.
func Sharpen(img image.Image) *image.NRGBA {
	return imaging.Sharpen(img, 2.0)
}

// ApplyMask blends img over black using mask as per-pixel opacity. The mask
// is resized to the image dimensions and read as grayscale: white keeps the
// pixel, black drops it.
func ApplyMask(img image.Image, mask image.Image) *image.NRGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	gray := imaging.Grayscale(imaging.Resize(mask, w, h, imaging.Lanczos))
	src := ToNRGBA(img)

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i+3 < len(src.Pix); i += 4 {
		opacity := float64(gray.Pix[i]) / 255
		dst.Pix[i] = mul8(src.Pix[i], opacity)
		dst.Pix[i+1] = mul8(src.Pix[i+1], opacity)
		dst.Pix[i+2] = mul8(src.Pix[i+2], opacity)
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// HueRotate shifts the hue of every pixel by degrees, wrapping around the
// color circle.
func HueRotate(img image.Image, degrees float64) *image.NRGBA {
	if degrees == 0 {
		return imaging.Clone(img)
	}
	src := ToNRGBA(img)
	dst := image.NewNRGBA(src.Bounds())
	for i := 0; i+3 < len(src.Pix); i += 4 {
		c := colorful.Color{
			R: float64(src.Pix[i]) / 255,
			G: float64(src.Pix[i+1]) / 255,
			B: float64(src.Pix[i+2]) / 255,
		}
		hue, s, v := c.Hsv()
		hue = math.Mod(hue+degrees, 360)
		if hue < 0 {
			hue += 360
		}
		c = colorful.Hsv(hue, s, v)
		dst.Pix[i] = clamp8(math.Round(c.R * 255))
		dst.Pix[i+1] = clamp8(math.Round(c.G * 255))
		dst.Pix[i+2] = clamp8(math.Round(c.B * 255))
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// ColorAdjust applies the phase 2 combined adjustment: brightness scaled by
// the intensity percentage, then contrast, saturation and hue rotation.
// All factors default to identity (1.0 for multipliers, 0 for hue and
// intensity).
func ColorAdjust(img image.Image, brightness, contrast, saturation, hueDegrees, intensityPct float64) *image.NRGBA {
	effectiveBrightness := brightness * (1 + intensityPct/100)

	out := imaging.Clone(img)
	if effectiveBrightness != 1.0 {
		out = Brightness(out, effectiveBrightness)
	}
	if contrast != 1.0 {
		out = Contrast(out, contrast)
	}
	if saturation != 1.0 {
		out = Saturation(out, saturation)
	}
	if hueDegrees != 0 {
		out = HueRotate(out, hueDegrees)
	}
	return out
}

// AutoContrast stretches each channel's observed range to [0, 255].
func AutoContrast(img image.Image) *image.NRGBA {
	src := ToNRGBA(img)

	var lo, hi [3]int
	for ch := 0; ch < 3; ch++ {
		lo[ch], hi[ch] = 255, 0
	}
	for i := 0; i+3 < len(src.Pix); i += 4 {
		for ch := 0; ch < 3; ch++ {
			v := int(src.Pix[i+ch])
			if v < lo[ch] {
				lo[ch] = v
			}
			if v > hi[ch] {
				hi[ch] = v
			}
		}
	}

	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	for ch := 0; ch < 3; ch++ {
		span := hi[ch] - lo[ch]
		if span <= 0 {
			continue
		}
		for i := ch; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = clamp8(math.Round(float64(int(dst.Pix[i])-lo[ch]) * 255 / float64(span)))
		}
	}
	return dst
}

// SaturationCorrection is the legacy no-profile display correction:
// autocontrast plus a slight saturation boost.
func SaturationCorrection(img image.Image) *image.NRGBA {
	return Saturation(AutoContrast(img), 1.1)
}

// Process dispatches the generic /process operation keywords used by the
// frontend. Unknown operations return an untouched copy.
func Process(img image.Image, phase, operation string) *image.NRGBA {
	operation = strings.ToLower(operation)

	switch {
	case strings.Contains(operation, "brightness"):
		factor := 0.7
		if strings.Contains(operation, "increase") {
			factor = 1.5
		}
		return Brightness(img, factor)

	case strings.Contains(operation, "contrast"):
		factor := 0.7
		if strings.Contains(operation, "increase") {
			factor = 1.5
		}
		return Contrast(img, factor)

	case strings.Contains(operation, "segmentation"):
		// Crude global threshold at mid gray.
		gray := imaging.Grayscale(img)
		dst := image.NewNRGBA(gray.Bounds())
		for i := 0; i+3 < len(gray.Pix); i += 4 {
			v := uint8(0)
			if gray.Pix[i] > 128 {
				v = 255
			}
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = v, v, v
			dst.Pix[i+3] = gray.Pix[i+3]
		}
		return dst

	case strings.Contains(operation, "display"), strings.Contains(operation, "autocorrect"):
		return SaturationCorrection(img)
	}

	return imaging.Clone(img)
}

func mul8(v uint8, factor float64) uint8 {
	return clamp8(math.Round(float64(v) * factor))
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
