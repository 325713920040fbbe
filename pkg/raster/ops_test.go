package raster

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(100 + (x*10)%50),
				G: uint8(110 + (y*10)%40),
				B: uint8(120 + ((x + y) * 5 % 30)),
				A: 255,
			})
		}
	}
	return img
}

func TestBrightness(t *testing.T) {
	src := gradientImage(4, 4)

	brighter := Brightness(src, 1.5)
	if brighter.Pix[0] <= src.Pix[0] {
		t.Fatalf("factor 1.5 should brighten: got %d, had %d", brighter.Pix[0], src.Pix[0])
	}

	same := Brightness(src, 1.0)
	if !bytes.Equal(same.Pix, src.Pix) {
		t.Fatalf("factor 1.0 should be the identity")
	}

	darker := Brightness(src, 0.5)
	if darker.Pix[0] >= src.Pix[0] {
		t.Fatalf("factor 0.5 should darken: got %d, had %d", darker.Pix[0], src.Pix[0])
	}
}

func TestRotateDimensions(t *testing.T) {
	src := gradientImage(4, 2)

	expanded := Rotate(src, 90, true)
	if got := expanded.Bounds(); got.Dx() != 2 || got.Dy() != 4 {
		t.Fatalf("90 degree rotation with expand should swap dimensions, got %v", got)
	}

	clipped := Rotate(src, 45, false)
	if got := clipped.Bounds(); got.Dx() != 4 || got.Dy() != 2 {
		t.Fatalf("rotation without expand should keep dimensions, got %v", got)
	}
}

func TestGrayscale(t *testing.T) {
	src := gradientImage(3, 3)
	out := Grayscale(src)
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if out.Pix[i] != out.Pix[i+1] || out.Pix[i+1] != out.Pix[i+2] {
			t.Fatalf("grayscale pixel should have equal channels, got %d %d %d",
				out.Pix[i], out.Pix[i+1], out.Pix[i+2])
		}
	}
}

func TestApplyMask(t *testing.T) {
	src := gradientImage(4, 4)

	black := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 3; i < len(black.Pix); i += 4 {
		black.Pix[i] = 255
	}
	masked := ApplyMask(src, black)
	for i := 0; i+3 < len(masked.Pix); i += 4 {
		if masked.Pix[i] != 0 || masked.Pix[i+1] != 0 || masked.Pix[i+2] != 0 {
			t.Fatalf("black mask should produce a black image")
		}
	}

	white := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range white.Pix {
		white.Pix[i] = 255
	}
	kept := ApplyMask(src, white)
	if !bytes.Equal(kept.Pix, src.Pix) {
		t.Fatalf("white mask should keep the original image")
	}
}

func TestHueRotate(t *testing.T) {
	red := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	red.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	green := HueRotate(red, 120)
	if got := green.NRGBAAt(0, 0); got.G != 255 || got.R != 0 {
		t.Fatalf("rotating red by 120 degrees should give green, got %v", got)
	}

	full := HueRotate(red, 360)
	if got := full.NRGBAAt(0, 0); got.R != 255 || got.G != 0 || got.B != 0 {
		t.Fatalf("rotating by 360 degrees should be the identity, got %v", got)
	}
}

func TestColorAdjustIdentity(t *testing.T) {
	src := gradientImage(4, 4)
	out := ColorAdjust(src, 1.0, 1.0, 1.0, 0, 0)
	if !bytes.Equal(out.Pix, src.Pix) {
		t.Fatalf("identity arguments should leave the image unchanged")
	}
}

func TestAutoContrast(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 100, G: 100, B: 100, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 150, G: 150, B: 150, A: 255})

	out := AutoContrast(src)
	if got := out.NRGBAAt(0, 0); got.R != 0 {
		t.Fatalf("darkest value should stretch to 0, got %d", got.R)
	}
	if got := out.NRGBAAt(1, 0); got.R != 255 {
		t.Fatalf("lightest value should stretch to 255, got %d", got.R)
	}
}

func TestProcessKeywords(t *testing.T) {
	src := gradientImage(4, 4)

	brighter := Process(src, "phase1", "brightness_increase")
	if brighter.Pix[0] <= src.Pix[0] {
		t.Fatalf("brightness_increase should brighten")
	}

	seg := Process(src, "phase2", "segmentation")
	for i := 0; i+3 < len(seg.Pix); i += 4 {
		if v := seg.Pix[i]; v != 0 && v != 255 {
			t.Fatalf("segmentation output should be binary, got %d", v)
		}
	}

	copied := Process(src, "phase1", "no_such_operation")
	if !bytes.Equal(copied.Pix, src.Pix) {
		t.Fatalf("unknown operation should return an untouched copy")
	}
	if &copied.Pix[0] == &src.Pix[0] {
		t.Fatalf("unknown operation should still return a copy, not the input")
	}
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	src := gradientImage(5, 3)
	encoded, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG returned error: %v", err)
	}

	decoded, err := Decode(bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !bytes.Equal(decoded.Pix, src.Pix) {
		t.Fatalf("PNG round trip should preserve pixels")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatalf("expected decode error for garbage input")
	}
}
