package validation

import (
	"fmt"
	"image"
)

// StrategySSIM is the name of the structural similarity strategy.
const StrategySSIM = "ssim"

// SSIM constants for 8-bit dynamic range (L=255, K1=0.01, K2=0.03).
const (
	ssimC1     = (0.01 * 255) * (0.01 * 255)
	ssimC2     = (0.03 * 255) * (0.03 * 255)
	ssimWindow = 8
)

// SSIMStrategy computes a structural similarity score over single-channel
// intensity representations of both images. It requires identical
// dimensions; a mismatch is an error for the pipeline to capture, never a
// silent resize.
type SSIMStrategy struct{}

// Name returns the strategy identifier.
func (SSIMStrategy) Name() string { return StrategySSIM }

// Compare returns the mean SSIM over non-overlapping windows, in [0, 1].
func (SSIMStrategy) Compare(a, b image.Image, _ Config) (float64, error) {
	if a.Bounds().Dx() != b.Bounds().Dx() || a.Bounds().Dy() != b.Bounds().Dy() {
		return 0, fmt.Errorf("dimension mismatch: %dx%d vs %dx%d",
			a.Bounds().Dx(), a.Bounds().Dy(), b.Bounds().Dx(), b.Bounds().Dy())
	}
	ga := grayscale(a)
	gb := grayscale(b)
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, fmt.Errorf("empty image %dx%d", w, h)
	}

	var total float64
	var windows int
	for y := 0; y < h; y += ssimWindow {
		for x := 0; x < w; x += ssimWindow {
			ww := min(ssimWindow, w-x)
			wh := min(ssimWindow, h-y)
			total += ssimWindowScore(ga, gb, w, x, y, ww, wh)
			windows++
		}
	}
	score := total / float64(windows)
	// Numeric noise can push the score a hair outside [0, 1].
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}

// ssimWindowScore computes the SSIM of one window of two grayscale planes
// of row stride w.
func ssimWindowScore(a, b []float64, stride, x0, y0, w, h int) float64 {
	n := float64(w * h)

	var meanA, meanB float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			meanA += a[y*stride+x]
			meanB += b[y*stride+x]
		}
	}
	meanA /= n
	meanB /= n

	var varA, varB, cov float64
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			da := a[y*stride+x] - meanA
			db := b[y*stride+x] - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	varA /= n
	varB /= n
	cov /= n

	num := (2*meanA*meanB + ssimC1) * (2*cov + ssimC2)
	den := (meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2)
	return num / den
}

// grayscale converts an image to a luminance plane (ITU-R BT.601 weights)
// with values in [0, 255].
func grayscale(img image.Image) []float64 {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := make([]float64, w*h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			out[i] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			i++
		}
	}
	return out
}
