// Package segment implements the lightweight segmentation methods offered
// by the phase 2 endpoint: a global threshold, a sampled k-means color
// clustering, and a region-smoothed variant of the k-means labeling.
package segment

import (
	"image"
	"math/rand"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// defaultSeed makes segmentation deterministic for identical inputs.
	defaultSeed = 1

	kmeansSampleLimit  = 10000
	regionsSampleLimit = 8000
)

type rgb struct {
	r, g, b int
}

// Segment dispatches a segmentation method by name. Unknown methods return
// an untouched copy of the input.
func Segment(img image.Image, method string, threshold int) *image.NRGBA {
	switch strings.ToLower(method) {
	case "threshold":
		return Threshold(img, threshold)
	case "kmeans":
		return KMeans(img, 4, 10)
	case "watershed":
		return Regions(img, 6, 4)
	}
	return imaging.Clone(img)
}

// Threshold converts the image to grayscale and applies a global threshold,
// producing a binary black/white image.
func Threshold(img image.Image, threshold int) *image.NRGBA {
	gray := imaging.Grayscale(img)
	dst := image.NewNRGBA(gray.Bounds())
	for i := 0; i+3 < len(gray.Pix); i += 4 {
		v := uint8(0)
		if int(gray.Pix[i]) > threshold {
			v = 255
		}
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2] = v, v, v
		dst.Pix[i+3] = gray.Pix[i+3]
	}
	return dst
}

// KMeans clusters pixel colors into k groups and paints every pixel with
// its cluster's mean color. Large images are sampled when estimating the
// cluster centers, then all pixels are assigned to the nearest center.
func KMeans(img image.Image, k, maxIters int) *image.NRGBA {
	src := imaging.Clone(img)
	pixels := collectPixels(src)
	if len(pixels) == 0 || k <= 0 {
		return src
	}

	rng := rand.New(rand.NewSource(defaultSeed))
	sample := samplePixels(pixels, kmeansSampleLimit, rng)
	centers := refineCenters(initialCenters(sample, k, rng), sample, maxIters)

	paintNearest(src, pixels, centers)
	return src
}

// Regions produces a region-like segmentation: k-means cluster seeding
// followed by majority-vote smoothing passes over 3x3 neighborhoods, so
// cluster boundaries coalesce into contiguous regions.
func Regions(img image.Image, k, iterations int) *image.NRGBA {
	src := imaging.Clone(img)
	pixels := collectPixels(src)
	if len(pixels) == 0 || k <= 0 {
		return src
	}

	rng := rand.New(rand.NewSource(defaultSeed))
	sample := samplePixels(pixels, regionsSampleLimit, rng)
	centers := refineCenters(initialCenters(sample, k, rng), sample, 6)

	labels := make([]int, len(pixels))
	for i, px := range pixels {
		labels[i] = nearestCenter(px, centers)
	}

	w := src.Bounds().Dx()
	h := src.Bounds().Dy()
	counts := make([]int, len(centers))
	for it := 0; it < iterations; it++ {
		next := make([]int, len(labels))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for i := range counts {
					counts[i] = 0
				}
				for yy := max(0, y-1); yy < min(h, y+2); yy++ {
					for xx := max(0, x-1); xx < min(w, x+2); xx++ {
						counts[labels[yy*w+xx]]++
					}
				}
				best := 0
				for i := range counts {
					if counts[i] > counts[best] {
						best = i
					}
				}
				next[y*w+x] = best
			}
		}
		labels = next
	}

	for i, l := range labels {
		pixels[i] = centers[l]
	}
	writePixels(src, pixels)
	return src
}

func collectPixels(img *image.NRGBA) []rgb {
	n := img.Bounds().Dx() * img.Bounds().Dy()
	pixels := make([]rgb, 0, n)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		pixels = append(pixels, rgb{int(img.Pix[i]), int(img.Pix[i+1]), int(img.Pix[i+2])})
	}
	return pixels
}

func writePixels(img *image.NRGBA, pixels []rgb) {
	for i, px := range pixels {
		img.Pix[i*4] = uint8(px.r)
		img.Pix[i*4+1] = uint8(px.g)
		img.Pix[i*4+2] = uint8(px.b)
	}
}

func samplePixels(pixels []rgb, limit int, rng *rand.Rand) []rgb {
	var sample []rgb
	if len(pixels) > limit {
		step := len(pixels) / limit
		for i := 0; i < len(pixels); i += step {
			sample = append(sample, pixels[i])
		}
	} else {
		sample = append(sample, pixels...)
	}
	rng.Shuffle(len(sample), func(i, j int) {
		sample[i], sample[j] = sample[j], sample[i]
	})
	return sample
}

func initialCenters(sample []rgb, k int, rng *rand.Rand) []rgb {
	centers := make([]rgb, k)
	for i := range centers {
		centers[i] = sample[i%len(sample)]
	}
	return centers
}

func refineCenters(centers, sample []rgb, maxIters int) []rgb {
	for it := 0; it < maxIters; it++ {
		clusters := make([][]rgb, len(centers))
		for _, px := range sample {
			idx := nearestCenter(px, centers)
			clusters[idx] = append(clusters[idx], px)
		}

		changed := false
		for i, cl := range clusters {
			if len(cl) == 0 {
				continue
			}
			var sr, sg, sb int
			for _, px := range cl {
				sr += px.r
				sg += px.g
				sb += px.b
			}
			mean := rgb{sr / len(cl), sg / len(cl), sb / len(cl)}
			if mean != centers[i] {
				centers[i] = mean
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return centers
}

func nearestCenter(px rgb, centers []rgb) int {
	best, bestDist := 0, -1
	for i, c := range centers {
		dr, dg, db := px.r-c.r, px.g-c.g, px.b-c.b
		d := dr*dr + dg*dg + db*db
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func paintNearest(img *image.NRGBA, pixels []rgb, centers []rgb) {
	for i, px := range pixels {
		pixels[i] = centers[nearestCenter(px, centers)]
	}
	writePixels(img, pixels)
}
