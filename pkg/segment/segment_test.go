package segment

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// twoToneImage returns an image whose left half is dark and right half is
// bright, a trivially separable input for every method.
func twoToneImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 30, G: 30, B: 30, A: 255}
			if x >= w/2 {
				c = color.NRGBA{R: 220, G: 220, B: 220, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestThreshold(t *testing.T) {
	src := twoToneImage(8, 4)
	out := Threshold(src, 128)

	if got := out.NRGBAAt(0, 0); got.R != 0 {
		t.Fatalf("dark side should threshold to black, got %v", got)
	}
	if got := out.NRGBAAt(7, 0); got.R != 255 {
		t.Fatalf("bright side should threshold to white, got %v", got)
	}
	for i := 0; i+3 < len(out.Pix); i += 4 {
		if v := out.Pix[i]; v != 0 && v != 255 {
			t.Fatalf("threshold output must be binary, got %d", v)
		}
	}
}

func TestKMeansSeparatesTones(t *testing.T) {
	src := twoToneImage(16, 8)
	out := KMeans(src, 2, 10)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("dimensions changed: got %v, want %v", out.Bounds(), src.Bounds())
	}

	dark := out.NRGBAAt(0, 0)
	bright := out.NRGBAAt(15, 0)
	if dark == bright {
		t.Fatalf("two clearly separated tones should map to different clusters")
	}

	// Every pixel must be painted with one of the two cluster colors.
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			if got := out.NRGBAAt(x, y); got != dark && got != bright {
				t.Fatalf("pixel (%d,%d) = %v is neither cluster color", x, y, got)
			}
		}
	}
}

func TestKMeansDeterministic(t *testing.T) {
	src := twoToneImage(16, 8)
	a := KMeans(src, 3, 10)
	b := KMeans(src, 3, 10)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Fatalf("k-means should be deterministic for identical inputs")
	}
}

func TestRegionsSmoothing(t *testing.T) {
	src := twoToneImage(12, 6)
	out := Regions(src, 2, 3)

	if out.Bounds() != src.Bounds() {
		t.Fatalf("dimensions changed: got %v, want %v", out.Bounds(), src.Bounds())
	}

	// After smoothing, the interior of each half should be uniform.
	left := out.NRGBAAt(1, 3)
	if got := out.NRGBAAt(2, 2); got != left {
		t.Fatalf("left region interior should be uniform, got %v and %v", got, left)
	}
	right := out.NRGBAAt(10, 3)
	if got := out.NRGBAAt(9, 2); got != right {
		t.Fatalf("right region interior should be uniform, got %v and %v", got, right)
	}
}

func TestSegmentDispatch(t *testing.T) {
	src := twoToneImage(8, 4)

	bin := Segment(src, "Threshold", 128)
	if v := bin.Pix[0]; v != 0 {
		t.Fatalf("threshold dispatch should binarize, got %d", v)
	}

	copied := Segment(src, "does-not-exist", 128)
	if !bytes.Equal(copied.Pix, src.Pix) {
		t.Fatalf("unknown method should return an untouched copy")
	}

	// The input itself must never be modified.
	if src.NRGBAAt(0, 0).R != 30 {
		t.Fatalf("segmentation mutated its input")
	}
}
