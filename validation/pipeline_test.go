package validation

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeTestPNG writes a w x h image filled with fill, with an optional
// square patch of patch color in the top-left quadrant.
func writeTestPNG(t *testing.T, path string, w, h int, fill color.Color, patch color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, fill)
		}
	}
	if patch != nil {
		for y := 0; y < h/2; y++ {
			for x := 0; x < w/2; x++ {
				img.Set(x, y, patch)
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestValidateIdentical(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, color.Black)
	writeTestPNG(t, b, 64, 64, color.White, color.Black)

	p := NewPipeline(DefaultConfig())
	res := p.Validate(a, b)
	if !res.Passed {
		t.Errorf("identical images failed: score %v, error %q", res.Score, res.ErrorMessage)
	}
	if res.Score < 0.99 {
		t.Errorf("Score = %v, want >= 0.99", res.Score)
	}
	if res.StrategyUsed != StrategySSIM {
		t.Errorf("StrategyUsed = %q, want %q", res.StrategyUsed, StrategySSIM)
	}
}

func TestValidateDifferent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, nil)
	writeTestPNG(t, b, 64, 64, color.Black, nil)

	p := NewPipeline(DefaultConfig())
	res := p.Validate(a, b)
	if res.Passed {
		t.Errorf("all-white vs all-black passed with score %v", res.Score)
	}
	if res.ErrorMessage != "" {
		t.Errorf("unexpected strategy error: %q", res.ErrorMessage)
	}
}

func TestValidateDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, nil)
	writeTestPNG(t, b, 32, 32, color.White, nil)

	p := NewPipeline(DefaultConfig())
	res := p.Validate(a, b)
	if res.Passed {
		t.Error("dimension mismatch passed")
	}
	if res.Score != 0 {
		t.Errorf("Score = %v, want 0", res.Score)
	}
	if !strings.Contains(res.ErrorMessage, "dimension mismatch") {
		t.Errorf("ErrorMessage = %q, want dimension mismatch", res.ErrorMessage)
	}

	// The pixel strategy resizes instead; same pair scores numerically.
	res = p.ValidateWith(StrategyPixel, a, b)
	if res.ErrorMessage != "" {
		t.Errorf("pixel strategy errored: %q", res.ErrorMessage)
	}
	if !res.Passed {
		t.Errorf("resized comparison of identical fills failed: score %v", res.Score)
	}
}

func TestValidateStrict(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, nil)
	writeTestPNG(t, b, 32, 32, color.White, nil)

	p := NewPipeline(DefaultConfig())
	res, err := p.ValidateStrict(a, b)
	if err == nil {
		t.Fatal("expected an error for dimension mismatch")
	}
	if res.Passed {
		t.Error("strict result passed despite mismatch")
	}

	writeTestPNG(t, b, 64, 64, color.White, nil)
	if _, err := p.ValidateStrict(a, b); err != nil {
		t.Errorf("ValidateStrict on matching pair: %v", err)
	}
}

func TestValidateMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	writeTestPNG(t, a, 16, 16, color.White, nil)

	p := NewPipeline(DefaultConfig())
	res := p.Validate(a, filepath.Join(dir, "nope.png"))
	if res.Passed || res.ErrorMessage == "" {
		t.Errorf("missing file: Passed=%v ErrorMessage=%q", res.Passed, res.ErrorMessage)
	}
}

func TestValidateUnknownStrategy(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	res := p.ValidateWith("telepathy", "a.png", "b.png")
	if res.Passed || !strings.Contains(res.ErrorMessage, "telepathy") {
		t.Errorf("unknown strategy: Passed=%v ErrorMessage=%q", res.Passed, res.ErrorMessage)
	}
	if err := p.SetPrimary("telepathy"); err == nil {
		t.Error("SetPrimary accepted an unregistered strategy")
	}
}

func TestSetPrimary(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	if p.Primary() != StrategySSIM {
		t.Fatalf("default primary = %q, want %q", p.Primary(), StrategySSIM)
	}
	if err := p.SetPrimary(StrategyPixel); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, nil)
	writeTestPNG(t, b, 64, 64, color.White, nil)
	res := p.Validate(a, b)
	if res.StrategyUsed != StrategyPixel {
		t.Errorf("StrategyUsed = %q, want %q", res.StrategyUsed, StrategyPixel)
	}
}

func TestValidateIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, color.Black)
	writeTestPNG(t, b, 64, 64, color.White, color.RGBA{R: 30, G: 30, B: 30, A: 255})

	p := NewPipeline(DefaultConfig())
	first := p.Validate(a, b)
	second := p.Validate(a, b)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated validation differs (-first +second):\n%s", diff)
	}
}

func TestDiffImageGeneration(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	writeTestPNG(t, a, 64, 64, color.White, nil)
	writeTestPNG(t, b, 64, 64, color.White, color.Black)

	cfg := DefaultConfig()
	cfg.GenerateDiffImages = true
	p := NewPipeline(cfg)
	res := p.Validate(a, b)
	if res.DiffImagePath == "" {
		t.Fatal("no diff image written for a differing pair")
	}
	f, err := os.Open(res.DiffImagePath)
	if err != nil {
		t.Fatalf("open diff image: %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := png.DecodeConfig(f); err != nil {
		t.Errorf("diff image is not a PNG: %v", err)
	}
}

func TestValidateAll(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.png")
	b := filepath.Join(dir, "b.png")
	c := filepath.Join(dir, "c.png")
	writeTestPNG(t, a, 32, 32, color.White, nil)
	writeTestPNG(t, b, 32, 32, color.White, nil)
	writeTestPNG(t, c, 32, 32, color.Black, nil)

	p := NewPipeline(DefaultConfig())
	pairs := []Pair{{A: a, B: b}, {A: a, B: c}, {A: a, B: filepath.Join(dir, "missing.png")}}
	results, err := p.ValidateAll(context.Background(), pairs, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(pairs) {
		t.Fatalf("got %d results, want %d", len(results), len(pairs))
	}
	if !results[0].Passed {
		t.Errorf("pair 0: matching images failed: %+v", results[0])
	}
	if results[1].Passed {
		t.Errorf("pair 1: opposite fills passed: %+v", results[1])
	}
	if results[2].ErrorMessage == "" {
		t.Errorf("pair 2: missing file produced no error: %+v", results[2])
	}
}

func TestValidateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(DefaultConfig())
	_, err := p.ValidateAll(ctx, []Pair{{A: "a.png", B: "b.png"}}, 1)
	if err == nil {
		t.Error("expected a cancellation error")
	}
}
