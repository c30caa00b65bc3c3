package validation

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// StrategyPixel is the name of the legacy-compatible pixel comparison
// strategy.
const StrategyPixel = "pixel"

// PixelStrategy counts matching pixels after tolerance. Unlike the SSIM
// strategy it reconciles a dimension mismatch by resizing the second image
// to the first image's dimensions, so it always returns a numeric score.
type PixelStrategy struct{}

// Name returns the strategy identifier.
func (PixelStrategy) Name() string { return StrategyPixel }

// Compare returns the fraction of pixels whose largest per-channel delta
// is within cfg.PixelThreshold, in [0, 1].
func (PixelStrategy) Compare(a, b image.Image, cfg Config) (float64, error) {
	ra := toRGBA(a)
	rb := toRGBA(b)
	if ra.Bounds() != rb.Bounds() {
		scaled := image.NewRGBA(ra.Bounds())
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), rb, rb.Bounds(), xdraw.Src, nil)
		rb = scaled
	}

	w, h := ra.Bounds().Dx(), ra.Bounds().Dy()
	if w == 0 || h == 0 {
		return 0, nil
	}
	threshold := cfg.PixelThreshold
	matching := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pixelWithin(ra, rb, x, y, threshold) {
				matching++
			}
		}
	}
	return float64(matching) / float64(w*h), nil
}

// pixelWithin reports whether the largest RGB channel delta at (x, y) is
// within threshold.
func pixelWithin(a, b *image.RGBA, x, y, threshold int) bool {
	ia := a.PixOffset(a.Bounds().Min.X+x, a.Bounds().Min.Y+y)
	ib := b.PixOffset(b.Bounds().Min.X+x, b.Bounds().Min.Y+y)
	for c := 0; c < 3; c++ {
		d := int(a.Pix[ia+c]) - int(b.Pix[ib+c])
		if d < 0 {
			d = -d
		}
		if d > threshold {
			return false
		}
	}
	return true
}

// toRGBA converts an image to *image.RGBA without copying when possible.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	xdraw.Draw(out, out.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return out
}
