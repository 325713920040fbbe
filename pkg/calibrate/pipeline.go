// Package calibrate adjusts images for the color characteristics of a target
// display technology. A calibration run is a fixed chain of per-pixel
// transforms: saturation remapping for the display's vibrancy, gamma
// correction with the standard display gamma, and a white point shift toward
// the profile's target color temperature. Without a target display the
// package falls back to a generic auto enhancement (contrast stretch plus
// gray-world color balance).
package calibrate

import (
	"image"
	"image/draw"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// Gamma is the display gamma used by the correction stage. 2.2 is the
	// standard gamma shared by all supported display technologies.
	Gamma = 2.2

	// ReferenceTemperature is the neutral white point in Kelvin. A profile
	// targeting exactly this temperature gets an identity temperature stage.
	ReferenceTemperature = 6500.0

	// temperatureSlope converts a Kelvin delta from the reference white
	// point into a red/blue channel multiplier: the channels are scaled by
	// 1 -/+ delta/temperatureSlope. The Kelvin delta is divided by twice the
	// reference temperature so the mapping is linear, symmetric around zero,
	// and stays well inside [0, 2] for any realistic display temperature.
	temperatureSlope = 2 * ReferenceTemperature
)

// stage is a single pipeline step. Stages allocate their own output and
// leave the input untouched; channel values are clamped to [0, 255] and
// rounded before handoff so errors cannot compound across stages.
type stage func(*image.NRGBA) *image.NRGBA

// Calibrate applies display calibration to img and returns the result as a
// new image. The input is never modified and the output always has the same
// dimensions as the input.
//
// When displayType is empty, a generic auto enhancement is applied instead
// of a profile pipeline. When displayType does not resolve to a known
// profile, an UnsupportedDisplayTypeError is returned.
func Calibrate(img image.Image, displayType string) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrInvalidImage
	}

	if strings.TrimSpace(displayType) == "" {
		return AutoEnhance(img)
	}

	profile, err := ResolveProfile(displayType)
	if err != nil {
		return nil, err
	}

	out := toNRGBA(img)
	for _, s := range stages(profile) {
		out = s(out)
	}
	return out, nil
}

// AutoEnhance is the fallback applied when no display type is given: a
// per-channel contrast stretch to the full [0, 255] range followed by a
// gray-world color balance that neutralizes the average cast.
func AutoEnhance(img image.Image) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrInvalidImage
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrInvalidImage
	}
	out := contrastStretch(toNRGBA(img))
	out = grayWorldBalance(out)
	return out, nil
}

// stages returns the transform chain for a profile, in application order.
func stages(p Profile) []stage {
	params := p.Parameters()
	return []stage{
		saturationStage(params.SaturationFactor),
		gammaStage(Gamma),
		temperatureStage(params.ColorTemperature),
	}
}

// saturationStage scales the HSL saturation channel of every pixel by
// factor, clamping the scaled saturation to [0, 1]. Hue and lightness are
// left alone; alpha passes through.
func saturationStage(factor float64) stage {
	return func(src *image.NRGBA) *image.NRGBA {
		dst := image.NewNRGBA(src.Bounds())
		forEachPixel(src, dst, func(r, g, b float64) (float64, float64, float64) {
			c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}
			h, s, l := c.Hsl()
			s = clampUnit(s * factor)
			c = colorful.Hsl(h, s, l)
			return c.R * 255, c.G * 255, c.B * 255
		})
		return dst
	}
}

// gammaStage applies out = 255 * (in/255)^(1/gamma) to every channel
// through a lookup table.
func gammaStage(gamma float64) stage {
	invGamma := 1.0 / gamma
	var lut [256]uint8
	for i := range lut {
		lut[i] = clamp8(math.Round(255 * math.Pow(float64(i)/255, invGamma)))
	}
	return func(src *image.NRGBA) *image.NRGBA {
		dst := image.NewNRGBA(src.Bounds())
		copy(dst.Pix, src.Pix)
		for i := 0; i+3 < len(dst.Pix); i += 4 {
			dst.Pix[i] = lut[dst.Pix[i]]
			dst.Pix[i+1] = lut[dst.Pix[i+1]]
			dst.Pix[i+2] = lut[dst.Pix[i+2]]
		}
		return dst
	}
}

// temperatureStage shifts red and blue in opposite directions proportional
// to the distance between targetKelvin and the neutral reference. Warmer
// targets (below the reference) boost red and cut blue; cooler targets do
// the opposite. A target equal to the reference is the identity.
func temperatureStage(targetKelvin float64) stage {
	delta := targetKelvin - ReferenceTemperature
	redScale := 1 - delta/temperatureSlope
	blueScale := 1 + delta/temperatureSlope

	var redLUT, blueLUT [256]uint8
	for i := range redLUT {
		redLUT[i] = clamp8(math.Round(float64(i) * redScale))
		blueLUT[i] = clamp8(math.Round(float64(i) * blueScale))
	}
	return func(src *image.NRGBA) *image.NRGBA {
		dst := image.NewNRGBA(src.Bounds())
		copy(dst.Pix, src.Pix)
		for i := 0; i+3 < len(dst.Pix); i += 4 {
			dst.Pix[i] = redLUT[dst.Pix[i]]
			dst.Pix[i+2] = blueLUT[dst.Pix[i+2]]
		}
		return dst
	}
}

// contrastStretch remaps each channel so its darkest and lightest observed
// values stretch to 0 and 255. A channel with a single value is left as is.
func contrastStretch(src *image.NRGBA) *image.NRGBA {
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

	var luts [3][256]uint8
	for ch := 0; ch < 3; ch++ {
		span := hi[ch] - lo[ch]
		for i := range luts[ch] {
			if span <= 0 {
				luts[ch][i] = uint8(i)
				continue
			}
			luts[ch][i] = clamp8(math.Round(float64(i-lo[ch]) * 255 / float64(span)))
		}
	}

	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i] = luts[0][dst.Pix[i]]
		dst.Pix[i+1] = luts[1][dst.Pix[i+1]]
		dst.Pix[i+2] = luts[2][dst.Pix[i+2]]
	}
	return dst
}

// grayWorldBalance scales each channel so the channel means converge on the
// overall mean, neutralizing the average color toward gray.
func grayWorldBalance(src *image.NRGBA) *image.NRGBA {
	var sums [3]float64
	var count float64
	for i := 0; i+3 < len(src.Pix); i += 4 {
		sums[0] += float64(src.Pix[i])
		sums[1] += float64(src.Pix[i+1])
		sums[2] += float64(src.Pix[i+2])
		count++
	}
	if count == 0 {
		out := image.NewNRGBA(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}

	means := [3]float64{sums[0] / count, sums[1] / count, sums[2] / count}
	overall := (means[0] + means[1] + means[2]) / 3

	var luts [3][256]uint8
	for ch := 0; ch < 3; ch++ {
		scale := 1.0
		if means[ch] > 0 {
			scale = overall / means[ch]
		}
		for i := range luts[ch] {
			luts[ch][i] = clamp8(math.Round(float64(i) * scale))
		}
	}

	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i] = luts[0][dst.Pix[i]]
		dst.Pix[i+1] = luts[1][dst.Pix[i+1]]
		dst.Pix[i+2] = luts[2][dst.Pix[i+2]]
	}
	return dst
}

// forEachPixel runs fn over the RGB channels of every pixel in src, writing
// the clamped, rounded result into dst. Alpha is copied unchanged.
func forEachPixel(src, dst *image.NRGBA, fn func(r, g, b float64) (float64, float64, float64)) {
	for i := 0; i+3 < len(src.Pix); i += 4 {
		r, g, b := fn(float64(src.Pix[i]), float64(src.Pix[i+1]), float64(src.Pix[i+2]))
		dst.Pix[i] = clamp8(math.Round(r))
		dst.Pix[i+1] = clamp8(math.Round(g))
		dst.Pix[i+2] = clamp8(math.Round(b))
		dst.Pix[i+3] = src.Pix[i+3]
	}
}

func toNRGBA(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
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

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
