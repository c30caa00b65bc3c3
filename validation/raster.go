package validation

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// loadComparable loads a validation input as a raster image. PDF inputs
// are rasterized to their first page at the given DPI; everything else is
// decoded as an image file.
func loadComparable(path string, dpi int) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return rasterizePDF(path, dpi)
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// rasterizePDF renders the first page of a PDF at the given DPI.
func rasterizePDF(path string, dpi int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = doc.Close() }()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", path)
	}
	if dpi <= 0 {
		dpi = 300
	}
	img, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", path, err)
	}
	return img, nil
}
