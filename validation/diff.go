package validation

import (
	"image"
	"image/color"
	"image/png"
	"os"

	xdraw "golang.org/x/image/draw"
)

// writeDiffImage renders a visualization of where two images differ:
// matching pixels are kept as dimmed grayscale, differing pixels are
// highlighted in red. When dimensions differ the second image is compared
// at the first image's size.
func writeDiffImage(a, b image.Image, threshold int, path string) error {
	ra := toRGBA(a)
	rb := toRGBA(b)
	if ra.Bounds() != rb.Bounds() {
		scaled := image.NewRGBA(ra.Bounds())
		xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), rb, rb.Bounds(), xdraw.Src, nil)
		rb = scaled
	}

	bounds := ra.Bounds()
	diff := image.NewRGBA(bounds)
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if pixelWithin(ra, rb, x, y, threshold) {
				i := ra.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				gray := uint8((int(ra.Pix[i]) + int(ra.Pix[i+1]) + int(ra.Pix[i+2])) / 6)
				diff.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{gray, gray, gray, 255})
			} else {
				diff.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{255, 0, 0, 255})
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, diff); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
