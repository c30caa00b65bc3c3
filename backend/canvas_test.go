package backend

import (
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmartin-sub/pdfrebuilder"
	"github.com/mmartin-sub/pdfrebuilder/fonts"
)

func layeredDoc() *pdfrebuilder.DocumentModel {
	red := &pdfrebuilder.Color{R: 1}
	return &pdfrebuilder.DocumentModel{
		Version: "1.0",
		Pages: []pdfrebuilder.Page{
			{
				Size: [2]float64{200, 100},
				Layers: []pdfrebuilder.Layer{
					{
						ID: "fg", Name: "foreground", Visible: true,
						Elements: []pdfrebuilder.Element{
							{Type: pdfrebuilder.ElementText, Text: "Hello", FontName: "Anything",
								FontSize: 12, BBox: [4]float64{10, 10, 100, 25}},
							{Type: pdfrebuilder.ElementLine, BBox: [4]float64{0, 50, 200, 50},
								Color: red, StrokeWidth: 1},
						},
					},
					{
						ID: "hidden", Name: "watermark", Visible: false,
						Elements: []pdfrebuilder.Element{
							{Type: pdfrebuilder.ElementText, Text: "DRAFT", FontName: "Anything",
								FontSize: 48, BBox: [4]float64{20, 20, 180, 80}},
						},
					},
					{
						ID: "bg", Name: "background", Visible: true,
						Elements: []pdfrebuilder.Element{
							{Type: pdfrebuilder.ElementRect, BBox: [4]float64{0, 0, 200, 100},
								FillColor: &pdfrebuilder.Color{R: 1, G: 1, B: 1}},
						},
					},
				},
			},
		},
	}
}

func TestCanvasCanRender(t *testing.T) {
	r := NewCanvasRenderer()
	tests := []struct {
		name   string
		doc    *pdfrebuilder.DocumentModel
		format string
		want   bool
	}{
		{name: "png ok", doc: layeredDoc(), format: "png", want: true},
		{name: "pdf ok", doc: layeredDoc(), format: "pdf", want: true},
		{name: "unsupported format", doc: layeredDoc(), format: "docx", want: false},
		{name: "nil document", doc: nil, format: "png", want: false},
		{name: "zero pages", doc: &pdfrebuilder.DocumentModel{}, format: "png", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.CanRender(tt.doc, tt.format); got != tt.want {
				t.Errorf("CanRender = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanvasEmptyDocument(t *testing.T) {
	r := NewCanvasRenderer()
	err := r.Render(context.Background(), &RenderTarget{
		Document:     &pdfrebuilder.DocumentModel{},
		OutputPath:   filepath.Join(t.TempDir(), "out.png"),
		OutputFormat: "png",
	})
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err = %v, want ErrEmptyDocument", err)
	}
}

func TestCanvasUnsupportedFormat(t *testing.T) {
	r := NewCanvasRenderer()
	err := r.Render(context.Background(), &RenderTarget{
		Document:     layeredDoc(),
		OutputPath:   filepath.Join(t.TempDir(), "out.docx"),
		OutputFormat: "docx",
	})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestCanvasRenderPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	err := Dispatch(context.Background(), BackendCanvas, &RenderTarget{
		Document:   layeredDoc(),
		OutputPath: out,
		DPI:        72,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer func() { _ = f.Close() }()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		t.Errorf("empty raster output: %dx%d", cfg.Width, cfg.Height)
	}
}

func TestCanvasBackgroundOption(t *testing.T) {
	doc := &pdfrebuilder.DocumentModel{
		Pages: []pdfrebuilder.Page{{Size: [2]float64{100, 100}}},
	}
	out := filepath.Join(t.TempDir(), "out.png")
	err := Dispatch(context.Background(), BackendCanvas, &RenderTarget{
		Document:   doc,
		OutputPath: out,
		DPI:        72,
		Options:    map[string]any{OptionBackground: 0xFF0000},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	b := img.Bounds()
	cr, cg, cb, _ := img.At(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2).RGBA()
	if cr>>8 != 255 || cg>>8 != 0 || cb>>8 != 0 {
		t.Errorf("center pixel = (%d, %d, %d), want red background",
			cr>>8, cg>>8, cb>>8)
	}
}

func TestCanvasRenderWithResolver(t *testing.T) {
	manual := t.TempDir()
	if err := os.WriteFile(filepath.Join(manual, "base.ttf"), fonts.BuiltinFontData(), 0o644); err != nil {
		t.Fatal(err)
	}
	resolver := fonts.NewResolver(fonts.Config{
		ManualDir:     manual,
		DownloadedDir: t.TempDir(),
		Provider:      failingProvider{},
	})

	out := filepath.Join(t.TempDir(), "out.png")
	err := Dispatch(context.Background(), BackendCanvas, &RenderTarget{
		Document:   layeredDoc(),
		OutputPath: out,
		DPI:        72,
		Resolver:   resolver,
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	// The requested font does not exist, so rendering progressed through
	// a substitution rather than failing.
	if resolver.Tracker().Len() == 0 {
		t.Error("expected a substitution record for the unknown font")
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

// failingProvider keeps renders offline.
type failingProvider struct{}

func (failingProvider) Fetch(context.Context, string, string) ([]string, error) {
	return nil, errors.New("offline")
}
